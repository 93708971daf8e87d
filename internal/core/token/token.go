package token

import (
	"fmt"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
)

// Account locates a holding and the owner and mint it belongs to.
type Account struct {
	Key   keylet.Keylet
	Owner [20]byte
	Mint  [20]byte
}

// HoldingOf returns the ordinary holding of owner for mint.
func HoldingOf(owner, mint [20]byte) Account {
	return Account{Key: keylet.Holding(owner, mint), Owner: owner, Mint: mint}
}

// VaultOf returns the escrow vault of an option for mint.
func VaultOf(option keylet.Keylet, mint [20]byte) Account {
	return Account{Key: keylet.Vault(option, mint), Owner: keylet.OptionAddress(option), Mint: mint}
}

// ReadMint loads a mint definition.
func ReadMint(ctx *tx.ApplyContext, mintID [20]byte) (*entry.Mint, tx.Result) {
	var m entry.Mint
	found, err := ctx.ReadEntry(keylet.Mint(mintID), &m)
	if err != nil {
		return nil, ctx.Fail(err)
	}
	if !found {
		return nil, tx.TecNO_ENTRY
	}
	return &m, tx.TesSUCCESS
}

// Balance returns the amount held by acct, zero when it does not exist.
func Balance(ctx *tx.ApplyContext, acct Account) (uint64, error) {
	var h entry.Holding
	found, err := ctx.ReadEntry(acct.Key, &h)
	if err != nil || !found {
		return 0, err
	}
	return h.Amount, nil
}

// OpenHolding creates an empty holding for acct if it does not exist. The
// storage deposit is charged to funder and refunded to it on close.
func OpenHolding(ctx *tx.ApplyContext, acct Account, funder [20]byte) tx.Result {
	exists, err := ctx.View.Exists(acct.Key)
	if err != nil {
		return ctx.Fail(err)
	}
	if exists {
		return tx.TesSUCCESS
	}

	if _, r := ReadMint(ctx, acct.Mint); !r.IsSuccess() {
		return r
	}

	deposit := ctx.Config.Deposits.Holding
	if r := ctx.Charge(funder, deposit); !r.IsSuccess() {
		return r
	}

	h := &entry.Holding{
		Owner:   acct.Owner,
		Mint:    acct.Mint,
		Funder:  funder,
		Deposit: deposit,
	}
	if err := ctx.InsertEntry(acct.Key, h); err != nil {
		return ctx.Fail(err)
	}
	return tx.TesSUCCESS
}

// CloseHolding erases an empty holding owned by auth and refunds its
// deposit to whoever funded it.
func CloseHolding(ctx *tx.ApplyContext, acct Account, auth Authority) tx.Result {
	var h entry.Holding
	found, err := ctx.ReadEntry(acct.Key, &h)
	if err != nil {
		return ctx.Fail(err)
	}
	if !found {
		return tx.TesSUCCESS
	}
	if h.Owner != auth.Owner() {
		return tx.TecNO_PERMISSION
	}
	if h.Amount != 0 {
		return tx.TecHAS_OBLIGATIONS
	}

	if err := ctx.View.Erase(acct.Key); err != nil {
		return ctx.Fail(err)
	}
	return ctx.Refund(h.Funder, h.Deposit)
}

// Transfer moves amount of a mint from one holding to another. decimals
// must match the mint, the source must be owned by auth and hold at least
// amount. A missing destination is opened, funded by the signer.
func Transfer(ctx *tx.ApplyContext, from, to Account, amount uint64, decimals uint8, auth Authority) tx.Result {
	if from.Mint != to.Mint {
		return ctx.Fail(fmt.Errorf("transfer between mints %x and %x", from.Mint, to.Mint))
	}

	mint, r := ReadMint(ctx, from.Mint)
	if !r.IsSuccess() {
		return r
	}
	if mint.Decimals != decimals {
		return tx.TecDECIMALS_MISMATCH
	}
	if amount == 0 {
		return OpenHolding(ctx, to, ctx.AccountID)
	}

	var src entry.Holding
	found, err := ctx.ReadEntry(from.Key, &src)
	if err != nil {
		return ctx.Fail(err)
	}
	if !found {
		return tx.TecUNFUNDED
	}
	if src.Owner != auth.Owner() {
		return tx.TecNO_PERMISSION
	}
	if src.Amount < amount {
		return tx.TecUNFUNDED
	}

	if r := OpenHolding(ctx, to, ctx.AccountID); !r.IsSuccess() {
		return r
	}
	if from.Key.Key == to.Key.Key {
		return tx.TesSUCCESS
	}

	var dst entry.Holding
	if _, err := ctx.ReadEntry(to.Key, &dst); err != nil {
		return ctx.Fail(err)
	}
	if dst.Amount+amount < dst.Amount {
		return tx.TecOVERSIZE
	}

	src.Amount -= amount
	dst.Amount += amount

	if err := ctx.UpdateEntry(from.Key, &src); err != nil {
		return ctx.Fail(err)
	}
	if err := ctx.UpdateEntry(to.Key, &dst); err != nil {
		return ctx.Fail(err)
	}
	return tx.TesSUCCESS
}

// Issue creates new supply of mint into to. Only the issuer may issue.
func Issue(ctx *tx.ApplyContext, to Account, amount uint64) tx.Result {
	mint, r := ReadMint(ctx, to.Mint)
	if !r.IsSuccess() {
		return r
	}
	if mint.Issuer != ctx.AccountID {
		return tx.TecNO_PERMISSION
	}
	if mint.Supply+amount < mint.Supply {
		return tx.TecOVERSIZE
	}

	if r := OpenHolding(ctx, to, ctx.AccountID); !r.IsSuccess() {
		return r
	}

	var h entry.Holding
	if _, err := ctx.ReadEntry(to.Key, &h); err != nil {
		return ctx.Fail(err)
	}
	if h.Amount+amount < h.Amount {
		return tx.TecOVERSIZE
	}
	h.Amount += amount
	mint.Supply += amount

	if err := ctx.UpdateEntry(to.Key, &h); err != nil {
		return ctx.Fail(err)
	}
	if err := ctx.UpdateEntry(keylet.Mint(to.Mint), mint); err != nil {
		return ctx.Fail(err)
	}
	return tx.TesSUCCESS
}
