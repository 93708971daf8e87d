package tx

import (
	"fmt"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/oracle"
	"github.com/sirupsen/logrus"
)

// ApplyContext provides all the state and helpers needed to apply a transaction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// Account is the signer's account root. The engine writes it back after
	// a successful apply; use Charge and Refund rather than editing Balance.
	Account *entry.AccountRoot

	// AccountID is the decoded source account ID
	AccountID [20]byte

	// Config holds engine configuration (deposits, settlement policy, windows)
	Config EngineConfig

	// TxHash is the hash of the current transaction
	TxHash [32]byte

	// Now is the clock reading taken when the transaction started applying
	Now time.Time

	// Oracle answers price queries
	Oracle oracle.Reader

	Log *logrus.Entry
}

// UnixNow returns Now in unix seconds.
func (ctx *ApplyContext) UnixNow() int64 {
	return ctx.Now.Unix()
}

// ReadEntry decodes the entry at k into e. It reports false when the entry
// does not exist.
func (ctx *ApplyContext) ReadEntry(k keylet.Keylet, e entry.Entry) (bool, error) {
	data, err := ctx.View.Read(k)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", k.Type, err)
	}
	if data == nil {
		return false, nil
	}
	if err := entry.DecodeInto(data, e); err != nil {
		return false, err
	}
	return true, nil
}

// InsertEntry encodes and inserts a new entry.
func (ctx *ApplyContext) InsertEntry(k keylet.Keylet, e entry.Entry) error {
	data, err := entry.Encode(e)
	if err != nil {
		return err
	}
	return ctx.View.Insert(k, data)
}

// UpdateEntry encodes and overwrites an existing entry.
func (ctx *ApplyContext) UpdateEntry(k keylet.Keylet, e entry.Entry) error {
	data, err := entry.Encode(e)
	if err != nil {
		return err
	}
	return ctx.View.Update(k, data)
}

// Fail logs an internal error and returns tefINTERNAL.
func (ctx *ApplyContext) Fail(err error) Result {
	if ctx.Log != nil {
		ctx.Log.WithError(err).Error("internal error while applying transaction")
	}
	return TefINTERNAL
}

// accountRoot returns the root for id, reading it through the view unless
// it is the signer.
func (ctx *ApplyContext) accountRoot(id [20]byte) (*entry.AccountRoot, bool, error) {
	if id == ctx.AccountID {
		return ctx.Account, true, nil
	}
	var root entry.AccountRoot
	found, err := ctx.ReadEntry(keylet.Account(id), &root)
	if err != nil || !found {
		return nil, false, err
	}
	return &root, false, nil
}

// Charge takes a storage deposit from payer's native balance and counts the
// new owned entry.
func (ctx *ApplyContext) Charge(payer [20]byte, amount uint64) Result {
	root, isSigner, err := ctx.accountRoot(payer)
	if err != nil {
		return ctx.Fail(err)
	}
	if root == nil {
		return TecNO_ENTRY
	}
	if root.Balance < amount {
		return TecINSUFFICIENT_RESERVE
	}

	root.Balance -= amount
	root.OwnerCount++

	if !isSigner {
		if err := ctx.UpdateEntry(keylet.Account(payer), root); err != nil {
			return ctx.Fail(err)
		}
	}
	return TesSUCCESS
}

// Refund returns a storage deposit to funder and releases the owned entry.
func (ctx *ApplyContext) Refund(funder [20]byte, amount uint64) Result {
	root, isSigner, err := ctx.accountRoot(funder)
	if err != nil {
		return ctx.Fail(err)
	}
	if root == nil {
		return ctx.Fail(fmt.Errorf("deposit funder %x has no account", funder))
	}

	root.Balance += amount
	if root.OwnerCount > 0 {
		root.OwnerCount--
	}

	if !isSigner {
		if err := ctx.UpdateEntry(keylet.Account(funder), root); err != nil {
			return ctx.Fail(err)
		}
	}
	return TesSUCCESS
}
