// Package mark provides builders for expiry mark transactions.
package mark

import (
	"time"

	"github.com/LeJamon/coveredcall/internal/core/tx"
	marktx "github.com/LeJamon/coveredcall/internal/core/tx/mark"
	"github.com/LeJamon/coveredcall/internal/testing"
)

// Set builds an ExpiryMarkSet for expiry.
func Set(account *testing.Account, expiry time.Time) tx.Transaction {
	return marktx.NewExpiryMarkSet(account.Address, expiry.Unix())
}

// Delete builds an ExpiryMarkDelete for expiry.
func Delete(account *testing.Account, expiry time.Time) tx.Transaction {
	return marktx.NewExpiryMarkDelete(account.Address, expiry.Unix())
}
