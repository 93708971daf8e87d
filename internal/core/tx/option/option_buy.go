package option

import (
	"github.com/LeJamon/coveredcall/internal/core/token"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/sirupsen/logrus"
)

func init() {
	tx.Register(tx.TypeOptionBuy, func() tx.Transaction {
		return &OptionBuy{BaseTx: *tx.NewBaseTx(tx.TypeOptionBuy, "")}
	})
}

// OptionBuy pays the premium, in the quote mint, into the option's quote
// vault. Only the option's buyer may send it.
type OptionBuy struct {
	tx.BaseTx

	// Option is the option's ledger index (required)
	Option string `json:"Option"`

	Premium uint64 `json:"Premium,string"`
}

func NewOptionBuy(buyer, option string, premium uint64) *OptionBuy {
	return &OptionBuy{
		BaseTx:  *tx.NewBaseTx(tx.TypeOptionBuy, buyer),
		Option:  option,
		Premium: premium,
	}
}

func (o *OptionBuy) TxType() tx.Type {
	return tx.TypeOptionBuy
}

func (o *OptionBuy) Validate() error {
	if err := o.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := decodeOption(o.Option); err != nil {
		return err
	}
	return nil
}

func (o *OptionBuy) Apply(ctx *tx.ApplyContext) tx.Result {
	key, err := decodeOption(o.Option)
	if err != nil {
		return ctx.Fail(err)
	}
	c, r := loadContract(ctx, key)
	if !r.IsSuccess() {
		return r
	}

	if ctx.AccountID != c.entry.Buyer {
		return tx.TecNO_PERMISSION
	}
	if c.entry.IsBought() {
		return tx.TecOPTION_ALREADY_BOUGHT
	}
	if ctx.UnixNow() > c.entry.Expiry {
		return tx.TecOPTION_EXPIRED
	}

	quote, r := token.ReadMint(ctx, c.entry.QuoteMint)
	if !r.IsSuccess() {
		return r
	}
	r = token.Transfer(ctx,
		token.HoldingOf(ctx.AccountID, c.entry.QuoteMint),
		c.quoteVault(),
		o.Premium, quote.Decimals, token.SignerAuthority(ctx.AccountID))
	if !r.IsSuccess() {
		return r
	}

	c.entry.SetPremium(o.Premium)
	if r := c.save(ctx); !r.IsSuccess() {
		return r
	}

	ctx.Log.WithFields(logrus.Fields{
		"option":  o.Option,
		"premium": o.Premium,
	}).Info("option bought")
	return tx.TesSUCCESS
}
