// Package mint implements the transactions that create fungible tokens and
// issue their supply.
package mint

import (
	"fmt"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/sirupsen/logrus"
)

func init() {
	tx.Register(tx.TypeMintCreate, func() tx.Transaction {
		return &MintCreate{BaseTx: *tx.NewBaseTx(tx.TypeMintCreate, "")}
	})
}

// MintCreate defines a new token issued by Account. The mint ID is derived
// from the issuer and the transaction sequence.
type MintCreate struct {
	tx.BaseTx

	// Decimals is the number of minor-unit digits (required, at most 18)
	Decimals uint8 `json:"Decimals"`
}

func NewMintCreate(account string, decimals uint8) *MintCreate {
	return &MintCreate{
		BaseTx:   *tx.NewBaseTx(tx.TypeMintCreate, account),
		Decimals: decimals,
	}
}

func (m *MintCreate) TxType() tx.Type {
	return tx.TypeMintCreate
}

func (m *MintCreate) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Decimals > entry.MaxDecimals {
		return fmt.Errorf("temMALFORMED: Decimals cannot exceed %d", entry.MaxDecimals)
	}
	return nil
}

func (m *MintCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	seq := ctx.Account.Sequence
	id := keylet.MintID(ctx.AccountID, seq)
	k := keylet.Mint(id)

	exists, err := ctx.View.Exists(k)
	if err != nil {
		return ctx.Fail(err)
	}
	if exists {
		return tx.TecDUPLICATE
	}

	deposit := ctx.Config.Deposits.Mint
	if r := ctx.Charge(ctx.AccountID, deposit); !r.IsSuccess() {
		return r
	}

	mint := &entry.Mint{
		ID:       id,
		Issuer:   ctx.AccountID,
		Sequence: seq,
		Decimals: m.Decimals,
		Deposit:  deposit,
	}
	if err := ctx.InsertEntry(k, mint); err != nil {
		return ctx.Fail(err)
	}

	ctx.Log.WithFields(logrus.Fields{
		"mint":     tx.EncodeID(id[:]),
		"decimals": m.Decimals,
	}).Debug("mint created")
	return tx.TesSUCCESS
}
