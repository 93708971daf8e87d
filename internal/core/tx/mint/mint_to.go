package mint

import (
	"errors"

	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/token"
	"github.com/LeJamon/coveredcall/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeMintTo, func() tx.Transaction {
		return &MintTo{BaseTx: *tx.NewBaseTx(tx.TypeMintTo, "")}
	})
}

// MintTo issues new supply of a mint into Destination's holding. Only the
// mint's issuer may send it.
type MintTo struct {
	tx.BaseTx

	// Mint is the hex mint ID (required)
	Mint string `json:"Mint"`

	// Destination receives the tokens (required)
	Destination string `json:"Destination"`

	// Amount in minor units (required, positive)
	Amount uint64 `json:"Amount,string"`
}

func NewMintTo(account, mintID, destination string, amount uint64) *MintTo {
	return &MintTo{
		BaseTx:      *tx.NewBaseTx(tx.TypeMintTo, account),
		Mint:        mintID,
		Destination: destination,
		Amount:      amount,
	}
}

func (m *MintTo) TxType() tx.Type {
	return tx.TypeMintTo
}

func (m *MintTo) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := tx.DecodeID("Mint", m.Mint); err != nil {
		return err
	}
	if _, err := tx.DecodeAddress("Destination", m.Destination); err != nil {
		return err
	}
	if m.Amount == 0 {
		return errors.New("temBAD_AMOUNT: Amount must be positive")
	}
	return nil
}

func (m *MintTo) Apply(ctx *tx.ApplyContext) tx.Result {
	mintID, err := tx.DecodeID("Mint", m.Mint)
	if err != nil {
		return ctx.Fail(err)
	}
	dest, err := tx.DecodeAddress("Destination", m.Destination)
	if err != nil {
		return ctx.Fail(err)
	}

	exists, err := ctx.View.Exists(keylet.Account(dest))
	if err != nil {
		return ctx.Fail(err)
	}
	if !exists {
		return tx.TecNO_ENTRY
	}

	return token.Issue(ctx, token.HoldingOf(dest, mintID), m.Amount)
}
