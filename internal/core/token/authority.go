// Package token moves balances between holdings on behalf of transaction
// handlers.
package token

import "github.com/LeJamon/coveredcall/internal/core/ledger/keylet"

// Authority is the capability to debit holdings of one owner. It can only
// be obtained from this package.
type Authority interface {
	// Owner is the account whose holdings may be debited.
	Owner() [20]byte
	sealed()
}

type signerAuthority struct {
	account [20]byte
}

func (a signerAuthority) Owner() [20]byte { return a.account }
func (signerAuthority) sealed()           {}

// SignerAuthority grants the verified signer of the transaction being
// applied authority over its own holdings.
func SignerAuthority(account [20]byte) Authority {
	return signerAuthority{account: account}
}

type derivedAuthority struct {
	address [20]byte
}

func (a derivedAuthority) Owner() [20]byte { return a.address }
func (derivedAuthority) sealed()           {}

// DerivedAuthority rebuilds the authority of an option's derived address
// from its terms and salt. It only controls the option's vaults when the
// seeds are the option's own.
func DerivedAuthority(terms keylet.OptionTerms, salt uint8) Authority {
	return derivedAuthority{address: keylet.OptionAddress(keylet.OptionWithSalt(terms, salt))}
}
