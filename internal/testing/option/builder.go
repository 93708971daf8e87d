// Package option provides builders for covered call transactions.
package option

import (
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	optiontx "github.com/LeJamon/coveredcall/internal/core/tx/option"
	"github.com/LeJamon/coveredcall/internal/testing"
)

// CreateBuilder provides a fluent interface for building OptionCreate transactions.
type CreateBuilder struct {
	seller      *testing.Account
	buyer       *testing.Account
	baseMint    [20]byte
	quoteMint   [20]byte
	baseAmount  uint64
	quoteAmount uint64
	expiry      int64
	sequence    *uint32
}

// Create starts an option written by seller for buyer: baseAmount of
// baseMint for quoteAmount of quoteMint.
func Create(seller, buyer *testing.Account, baseMint, quoteMint [20]byte, baseAmount, quoteAmount uint64) *CreateBuilder {
	return &CreateBuilder{
		seller:      seller,
		buyer:       buyer,
		baseMint:    baseMint,
		quoteMint:   quoteMint,
		baseAmount:  baseAmount,
		quoteAmount: quoteAmount,
	}
}

// ExpiryTime sets the expiry.
func (b *CreateBuilder) ExpiryTime(t time.Time) *CreateBuilder {
	b.expiry = t.Unix()
	return b
}

// Expiry sets the expiry in unix seconds.
func (b *CreateBuilder) Expiry(unix int64) *CreateBuilder {
	b.expiry = unix
	return b
}

// Sequence sets an explicit sequence number.
func (b *CreateBuilder) Sequence(seq uint32) *CreateBuilder {
	b.sequence = &seq
	return b
}

// Terms returns the addressing terms of the option being built.
func (b *CreateBuilder) Terms() keylet.OptionTerms {
	return keylet.OptionTerms{
		Seller:      b.seller.ID,
		Buyer:       b.buyer.ID,
		BaseMint:    b.baseMint,
		QuoteMint:   b.quoteMint,
		BaseAmount:  b.baseAmount,
		QuoteAmount: b.quoteAmount,
		Expiry:      b.expiry,
	}
}

// Key returns the ledger key the option will be stored under.
func (b *CreateBuilder) Key() keylet.Keylet {
	k, _, err := keylet.Option(b.Terms())
	if err != nil {
		panic(err)
	}
	return k
}

// Build constructs the OptionCreate transaction.
func (b *CreateBuilder) Build() tx.Transaction {
	o := optiontx.NewOptionCreate(b.seller.Address, b.buyer.Address,
		tx.EncodeID(b.baseMint[:]), tx.EncodeID(b.quoteMint[:]),
		b.baseAmount, b.quoteAmount, b.expiry)
	if b.sequence != nil {
		o.Sequence = *b.sequence
	}
	return o
}

// ID renders an option key for the Option field.
func ID(k keylet.Keylet) string {
	return tx.EncodeID(k.Key[:])
}

// Buy builds an OptionBuy paying premium minor units of the quote mint.
func Buy(buyer *testing.Account, k keylet.Keylet, premium uint64) tx.Transaction {
	return optiontx.NewOptionBuy(buyer.Address, ID(k), premium)
}

// Exercise builds an OptionExercise.
func Exercise(buyer *testing.Account, k keylet.Keylet) tx.Transaction {
	return optiontx.NewOptionExercise(buyer.Address, ID(k))
}

// Close builds an OptionClose sent by account.
func Close(account *testing.Account, k keylet.Keylet) tx.Transaction {
	return optiontx.NewOptionClose(account.Address, ID(k))
}

// BaseVault returns the base vault keylet of an option.
func BaseVault(k keylet.Keylet, baseMint [20]byte) keylet.Keylet {
	return keylet.Vault(k, baseMint)
}

// QuoteVault returns the quote vault keylet of an option.
func QuoteVault(k keylet.Keylet, quoteMint [20]byte) keylet.Keylet {
	return keylet.Vault(k, quoteMint)
}
