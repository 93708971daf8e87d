// Package option implements the covered-call lifecycle: create, buy,
// exercise and close.
package option

import (
	"fmt"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/settlement"
	"github.com/LeJamon/coveredcall/internal/core/token"
	"github.com/LeJamon/coveredcall/internal/core/tx"
)

// contract is a loaded option together with the capability over its vaults.
type contract struct {
	key   keylet.Keylet
	entry *entry.OptionContract
	terms keylet.OptionTerms
	auth  token.Authority
}

func (c *contract) baseVault() token.Account {
	return token.VaultOf(c.key, c.entry.BaseMint)
}

func (c *contract) quoteVault() token.Account {
	return token.VaultOf(c.key, c.entry.QuoteMint)
}

// loadContract reads the option at key. The stored terms must derive the
// key they are stored under.
func loadContract(ctx *tx.ApplyContext, key [32]byte) (*contract, tx.Result) {
	k := keylet.Keylet{Type: entry.TypeOptionContract, Key: key}

	var o entry.OptionContract
	found, err := ctx.ReadEntry(k, &o)
	if err != nil {
		return nil, ctx.Fail(err)
	}
	if !found {
		return nil, tx.TecNO_ENTRY
	}

	terms := keylet.TermsOf(&o)
	if keylet.OptionWithSalt(terms, o.Salt).Key != key {
		return nil, ctx.Fail(fmt.Errorf("option %X does not derive from its terms", key))
	}

	return &contract{
		key:   k,
		entry: &o,
		terms: terms,
		auth:  token.DerivedAuthority(terms, o.Salt),
	}, tx.TesSUCCESS
}

func (c *contract) save(ctx *tx.ApplyContext) tx.Result {
	if err := ctx.UpdateEntry(c.key, c.entry); err != nil {
		return ctx.Fail(err)
	}
	return tx.TesSUCCESS
}

// mints loads both mint definitions of the contract.
func (c *contract) mints(ctx *tx.ApplyContext) (base, quote *entry.Mint, r tx.Result) {
	if base, r = token.ReadMint(ctx, c.entry.BaseMint); !r.IsSuccess() {
		return nil, nil, r
	}
	if quote, r = token.ReadMint(ctx, c.entry.QuoteMint); !r.IsSuccess() {
		return nil, nil, r
	}
	return base, quote, tx.TesSUCCESS
}

// strike prices the contract in the scale of mark.
func (c *contract) strike(base, quote *entry.Mint, mark *entry.ExpiryMark) (uint64, error) {
	return settlement.CalcStrike(c.entry.BaseAmount, c.entry.QuoteAmount, settlement.Scale{
		BaseDecimals:  base.Decimals,
		QuoteDecimals: quote.Decimals,
		Exponent:      mark.Exponent,
	})
}

// readMark returns the mark for the contract's expiry, nil when absent.
func (c *contract) readMark(ctx *tx.ApplyContext) (*entry.ExpiryMark, error) {
	var m entry.ExpiryMark
	found, err := ctx.ReadEntry(keylet.ExpiryMark(c.entry.Expiry), &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

// decodeOption decodes the Option field shared by buy, exercise and close.
func decodeOption(s string) ([32]byte, error) {
	return tx.DecodeHash("Option", s)
}
