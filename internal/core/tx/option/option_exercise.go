package option

import (
	"errors"

	"github.com/LeJamon/coveredcall/internal/core/settlement"
	"github.com/LeJamon/coveredcall/internal/core/token"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/sirupsen/logrus"
)

func init() {
	tx.Register(tx.TypeOptionExercise, func() tx.Transaction {
		return &OptionExercise{BaseTx: *tx.NewBaseTx(tx.TypeOptionExercise, "")}
	})
}

// OptionExercise exercises a bought option under the engine's settlement
// policy. Only the option's buyer may send it.
type OptionExercise struct {
	tx.BaseTx

	Option string `json:"Option"`
}

func NewOptionExercise(buyer, option string) *OptionExercise {
	return &OptionExercise{
		BaseTx: *tx.NewBaseTx(tx.TypeOptionExercise, buyer),
		Option: option,
	}
}

func (o *OptionExercise) TxType() tx.Type {
	return tx.TypeOptionExercise
}

func (o *OptionExercise) Validate() error {
	if err := o.BaseTx.Validate(); err != nil {
		return err
	}
	_, err := decodeOption(o.Option)
	return err
}

func (o *OptionExercise) Apply(ctx *tx.ApplyContext) tx.Result {
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
	if !c.entry.IsBought() {
		return tx.TecOPTION_NOT_PURCHASED
	}
	if c.entry.Exercised {
		return tx.TecOPTION_ALREADY_EXERCISED
	}

	switch ctx.Config.SettlementPolicy {
	case tx.PolicyPhysical:
		r = exercisePhysical(ctx, c)
	default:
		r = exerciseOracle(ctx, c)
	}
	if !r.IsSuccess() {
		return r
	}

	c.entry.Exercised = true
	return c.save(ctx)
}

// exercisePhysical swaps QuoteAmount from the buyer for the whole base
// vault, up to and including expiry.
func exercisePhysical(ctx *tx.ApplyContext, c *contract) tx.Result {
	if ctx.UnixNow() > c.entry.Expiry {
		return tx.TecOPTION_EXPIRED
	}

	base, quote, r := c.mints(ctx)
	if !r.IsSuccess() {
		return r
	}

	r = token.Transfer(ctx,
		token.HoldingOf(ctx.AccountID, c.entry.QuoteMint), c.quoteVault(),
		c.entry.QuoteAmount, quote.Decimals, token.SignerAuthority(ctx.AccountID))
	if !r.IsSuccess() {
		return r
	}

	r = token.Transfer(ctx,
		c.baseVault(), token.HoldingOf(ctx.AccountID, c.entry.BaseMint),
		c.entry.BaseAmount, base.Decimals, c.auth)
	if !r.IsSuccess() {
		return r
	}

	ctx.Log.WithField("option", tx.EncodeID(c.key.Key[:])).Info("option exercised physically")
	return tx.TesSUCCESS
}

// exerciseOracle pays the buyer the in-the-money share of the base vault,
// priced by the expiry mark, at or after expiry.
func exerciseOracle(ctx *tx.ApplyContext, c *contract) tx.Result {
	if ctx.UnixNow() < c.entry.Expiry {
		return tx.TecOPTION_NOT_EXPIRED
	}

	mark, err := c.readMark(ctx)
	if err != nil {
		return ctx.Fail(err)
	}
	if mark == nil || !mark.IsMarked() {
		return tx.TecOPTION_NOT_MARKED
	}

	base, quote, r := c.mints(ctx)
	if !r.IsSuccess() {
		return r
	}
	strike, err := c.strike(base, quote, mark)
	if err != nil {
		if errors.Is(err, settlement.ErrOverflow) {
			return tx.TecOVERSIZE
		}
		return ctx.Fail(err)
	}

	sellerShare, buyerShare := settlement.Settlements(strike, mark.Price, c.entry.BaseAmount)
	if buyerShare > 0 {
		r = token.Transfer(ctx,
			c.baseVault(), token.HoldingOf(ctx.AccountID, c.entry.BaseMint),
			buyerShare, base.Decimals, c.auth)
		if !r.IsSuccess() {
			return r
		}
	}

	ctx.Log.WithFields(logrus.Fields{
		"option":       tx.EncodeID(c.key.Key[:]),
		"strike":       strike,
		"mark":         mark.Price,
		"seller_share": sellerShare,
		"buyer_share":  buyerShare,
	}).Info("option exercised against mark")
	return tx.TesSUCCESS
}
