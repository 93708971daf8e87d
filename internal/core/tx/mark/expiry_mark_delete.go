package mark

import (
	"errors"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeExpiryMarkDelete, func() tx.Transaction {
		return &ExpiryMarkDelete{BaseTx: *tx.NewBaseTx(tx.TypeExpiryMarkDelete, "")}
	})
}

// ExpiryMarkDelete removes the mark for an expiry. Only the account that
// funded the mark may remove it, and it gets the deposit back.
type ExpiryMarkDelete struct {
	tx.BaseTx

	Expiry int64 `json:"Expiry"`
}

func NewExpiryMarkDelete(account string, expiry int64) *ExpiryMarkDelete {
	return &ExpiryMarkDelete{
		BaseTx: *tx.NewBaseTx(tx.TypeExpiryMarkDelete, account),
		Expiry: expiry,
	}
}

func (m *ExpiryMarkDelete) TxType() tx.Type {
	return tx.TypeExpiryMarkDelete
}

func (m *ExpiryMarkDelete) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Expiry <= 0 {
		return errors.New("temBAD_EXPIRATION: Expiry is required")
	}
	return nil
}

func (m *ExpiryMarkDelete) Apply(ctx *tx.ApplyContext) tx.Result {
	k := keylet.ExpiryMark(m.Expiry)
	var mark entry.ExpiryMark
	found, err := ctx.ReadEntry(k, &mark)
	if err != nil {
		return ctx.Fail(err)
	}
	if !found {
		return tx.TecNO_ENTRY
	}
	if mark.Funder != ctx.AccountID {
		return tx.TecNO_PERMISSION
	}

	if err := ctx.View.Erase(k); err != nil {
		return ctx.Fail(err)
	}
	return ctx.Refund(mark.Funder, mark.Deposit)
}
