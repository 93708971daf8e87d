package entry

import "errors"

// AccountRoot holds an account's native balance. Storage deposits for every
// entry an account funds are taken from, and refunded to, this balance.
type AccountRoot struct {
	Account    [20]byte `codec:"account"`
	Sequence   uint32   `codec:"sequence"`
	Balance    uint64   `codec:"balance"`
	OwnerCount uint32   `codec:"owner_count"`
}

func (a *AccountRoot) Type() Type {
	return TypeAccountRoot
}

func (a *AccountRoot) Validate() error {
	if a.Account == [20]byte{} {
		return errors.New("account ID is required")
	}
	return nil
}
