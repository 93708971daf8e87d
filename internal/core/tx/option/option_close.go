package option

import (
	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/settlement"
	"github.com/LeJamon/coveredcall/internal/core/token"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/sirupsen/logrus"
)

func init() {
	tx.Register(tx.TypeOptionClose, func() tx.Transaction {
		return &OptionClose{BaseTx: *tx.NewBaseTx(tx.TypeOptionClose, "")}
	})
}

// OptionClose drains both vaults to the seller and deletes the option. Any
// account may send it once the option can no longer pay the buyer.
type OptionClose struct {
	tx.BaseTx

	Option string `json:"Option"`
}

func NewOptionClose(account, option string) *OptionClose {
	return &OptionClose{
		BaseTx: *tx.NewBaseTx(tx.TypeOptionClose, account),
		Option: option,
	}
}

func (o *OptionClose) TxType() tx.Type {
	return tx.TypeOptionClose
}

func (o *OptionClose) Validate() error {
	if err := o.BaseTx.Validate(); err != nil {
		return err
	}
	_, err := decodeOption(o.Option)
	return err
}

// closable reports whether the buyer can no longer gain from the option.
func closable(ctx *tx.ApplyContext, c *contract, base, quote *entry.Mint) (bool, tx.Result) {
	o := c.entry
	if ctx.UnixNow() > o.Expiry || o.Exercised || !o.IsBought() {
		return true, tx.TesSUCCESS
	}
	if ctx.Config.SettlementPolicy == tx.PolicyPhysical {
		return false, tx.TesSUCCESS
	}

	// a mark at or below the strike means the option expires worthless
	mark, err := c.readMark(ctx)
	if err != nil {
		return false, ctx.Fail(err)
	}
	if mark == nil || !mark.IsMarked() {
		return false, tx.TesSUCCESS
	}
	strike, err := c.strike(base, quote, mark)
	if err != nil {
		return false, tx.TesSUCCESS
	}
	return !settlement.InTheMoney(strike, mark.Price), tx.TesSUCCESS
}

func (o *OptionClose) Apply(ctx *tx.ApplyContext) tx.Result {
	key, err := decodeOption(o.Option)
	if err != nil {
		return ctx.Fail(err)
	}
	c, r := loadContract(ctx, key)
	if !r.IsSuccess() {
		return r
	}

	base, quote, r := c.mints(ctx)
	if !r.IsSuccess() {
		return r
	}

	ok, r := closable(ctx, c, base, quote)
	if !r.IsSuccess() {
		return r
	}
	if !ok {
		return tx.TecOPTION_CANNOT_BE_CLOSED_YET
	}

	seller := c.entry.Seller
	drained := make(map[string]uint64, 2)
	for _, v := range []struct {
		name  string
		vault token.Account
		mint  *entry.Mint
	}{
		{"base", c.baseVault(), base},
		{"quote", c.quoteVault(), quote},
	} {
		bal, err := token.Balance(ctx, v.vault)
		if err != nil {
			return ctx.Fail(err)
		}
		if bal > 0 {
			r := token.Transfer(ctx, v.vault, token.HoldingOf(seller, v.mint.ID), bal, v.mint.Decimals, c.auth)
			if !r.IsSuccess() {
				return r
			}
		}
		if r := token.CloseHolding(ctx, v.vault, c.auth); !r.IsSuccess() {
			return r
		}
		drained[v.name] = bal
	}

	if err := ctx.View.Erase(c.key); err != nil {
		return ctx.Fail(err)
	}
	if r := ctx.Refund(seller, c.entry.Deposit); !r.IsSuccess() {
		return r
	}

	ctx.Log.WithFields(logrus.Fields{
		"option":     o.Option,
		"base_paid":  drained["base"],
		"quote_paid": drained["quote"],
	}).Info("option closed")
	return tx.TesSUCCESS
}
