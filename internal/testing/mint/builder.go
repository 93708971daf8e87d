// Package mint provides builders for token transactions.
package mint

import (
	"github.com/LeJamon/coveredcall/internal/core/tx"
	minttx "github.com/LeJamon/coveredcall/internal/core/tx/mint"
	"github.com/LeJamon/coveredcall/internal/testing"
)

// Create builds a MintCreate.
func Create(issuer *testing.Account, decimals uint8) tx.Transaction {
	return minttx.NewMintCreate(issuer.Address, decimals)
}

// To builds a MintTo issuing amount of mintID to dest.
func To(issuer *testing.Account, mintID [20]byte, dest *testing.Account, amount uint64) tx.Transaction {
	return minttx.NewMintTo(issuer.Address, tx.EncodeID(mintID[:]), dest.Address, amount)
}
