package entry

import "errors"

// Holding is a token balance of one owner for one mint. Escrow vaults are
// holdings whose owner is an option contract's derived address.
type Holding struct {
	Owner   [20]byte `codec:"owner"`
	Mint    [20]byte `codec:"mint"`
	Amount  uint64   `codec:"amount"`
	Funder  [20]byte `codec:"funder"`
	Deposit uint64   `codec:"deposit"`
}

func (h *Holding) Type() Type {
	return TypeHolding
}

func (h *Holding) Validate() error {
	if h.Owner == [20]byte{} {
		return errors.New("holding owner is required")
	}
	if h.Mint == [20]byte{} {
		return errors.New("holding mint is required")
	}
	return nil
}
