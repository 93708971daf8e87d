package entry

import "errors"

// MaxDecimals bounds the minor-unit scale of a mint.
const MaxDecimals = 18

// Mint defines a token. Transfers must quote Decimals to be accepted.
type Mint struct {
	ID       [20]byte `codec:"id"`
	Issuer   [20]byte `codec:"issuer"`
	Sequence uint32   `codec:"sequence"`
	Decimals uint8    `codec:"decimals"`
	Supply   uint64   `codec:"supply"`
	Deposit  uint64   `codec:"deposit"`
}

func (m *Mint) Type() Type {
	return TypeMint
}

func (m *Mint) Validate() error {
	if m.ID == [20]byte{} {
		return errors.New("mint ID is required")
	}
	if m.Decimals > MaxDecimals {
		return errors.New("decimals out of range")
	}
	return nil
}
