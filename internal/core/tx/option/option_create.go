package option

import (
	"errors"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/token"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/sirupsen/logrus"
)

func init() {
	tx.Register(tx.TypeOptionCreate, func() tx.Transaction {
		return &OptionCreate{BaseTx: *tx.NewBaseTx(tx.TypeOptionCreate, "")}
	})
}

// OptionCreate writes a covered call. Account is the seller; BaseAmount of
// BaseMint moves from the seller into the option's base vault.
type OptionCreate struct {
	tx.BaseTx

	Buyer string `json:"Buyer"`

	BaseMint  string `json:"BaseMint"`
	QuoteMint string `json:"QuoteMint"`

	BaseAmount  uint64 `json:"BaseAmount,string"`
	QuoteAmount uint64 `json:"QuoteAmount,string"`

	// Expiry in unix seconds, must be in the future
	Expiry int64 `json:"Expiry"`
}

func NewOptionCreate(seller, buyer, baseMint, quoteMint string, baseAmount, quoteAmount uint64, expiry int64) *OptionCreate {
	return &OptionCreate{
		BaseTx:      *tx.NewBaseTx(tx.TypeOptionCreate, seller),
		Buyer:       buyer,
		BaseMint:    baseMint,
		QuoteMint:   quoteMint,
		BaseAmount:  baseAmount,
		QuoteAmount: quoteAmount,
		Expiry:      expiry,
	}
}

func (o *OptionCreate) TxType() tx.Type {
	return tx.TypeOptionCreate
}

// Terms returns the addressing terms of the option this transaction
// creates.
func (o *OptionCreate) Terms() (keylet.OptionTerms, error) {
	seller, err := o.GetCommon().AccountID()
	if err != nil {
		return keylet.OptionTerms{}, err
	}
	buyer, err := tx.DecodeAddress("Buyer", o.Buyer)
	if err != nil {
		return keylet.OptionTerms{}, err
	}
	base, err := tx.DecodeID("BaseMint", o.BaseMint)
	if err != nil {
		return keylet.OptionTerms{}, err
	}
	quote, err := tx.DecodeID("QuoteMint", o.QuoteMint)
	if err != nil {
		return keylet.OptionTerms{}, err
	}
	return keylet.OptionTerms{
		Seller:      seller,
		Buyer:       buyer,
		BaseMint:    base,
		QuoteMint:   quote,
		BaseAmount:  o.BaseAmount,
		QuoteAmount: o.QuoteAmount,
		Expiry:      o.Expiry,
	}, nil
}

func (o *OptionCreate) Validate() error {
	if err := o.BaseTx.Validate(); err != nil {
		return err
	}
	terms, err := o.Terms()
	if err != nil {
		return err
	}
	if terms.BaseMint == terms.QuoteMint {
		return errors.New("temMALFORMED: BaseMint and QuoteMint must differ")
	}
	if o.BaseAmount == 0 || o.QuoteAmount == 0 {
		return errors.New("temBAD_AMOUNT: BaseAmount and QuoteAmount must be positive")
	}
	if o.Expiry <= 0 {
		return errors.New("temBAD_EXPIRATION: Expiry is required")
	}
	return nil
}

func (o *OptionCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	if o.Expiry <= ctx.UnixNow() {
		return tx.TecEXPIRY_IN_PAST
	}

	terms, err := o.Terms()
	if err != nil {
		return ctx.Fail(err)
	}
	k, salt, err := keylet.Option(terms)
	if err != nil {
		return ctx.Fail(err)
	}

	exists, err := ctx.View.Exists(k)
	if err != nil {
		return ctx.Fail(err)
	}
	if exists {
		return tx.TecDUPLICATE
	}

	base, r := token.ReadMint(ctx, terms.BaseMint)
	if !r.IsSuccess() {
		return r
	}
	if _, r := token.ReadMint(ctx, terms.QuoteMint); !r.IsSuccess() {
		return r
	}

	deposit := ctx.Config.Deposits.Option
	if r := ctx.Charge(terms.Seller, deposit); !r.IsSuccess() {
		return r
	}

	contract := &entry.OptionContract{
		Seller:      terms.Seller,
		Buyer:       terms.Buyer,
		BaseMint:    terms.BaseMint,
		QuoteMint:   terms.QuoteMint,
		BaseAmount:  terms.BaseAmount,
		QuoteAmount: terms.QuoteAmount,
		Expiry:      terms.Expiry,
		CreatedAt:   ctx.UnixNow(),
		Salt:        salt,
		Deposit:     deposit,
	}
	if err := ctx.InsertEntry(k, contract); err != nil {
		return ctx.Fail(err)
	}

	r = token.Transfer(ctx,
		token.HoldingOf(terms.Seller, terms.BaseMint),
		token.VaultOf(k, terms.BaseMint),
		terms.BaseAmount, base.Decimals, token.SignerAuthority(ctx.AccountID))
	if !r.IsSuccess() {
		return r
	}

	ctx.Log.WithFields(logrus.Fields{
		"option": tx.EncodeID(k.Key[:]),
		"salt":   salt,
		"expiry": terms.Expiry,
	}).Info("option created")
	return tx.TesSUCCESS
}
