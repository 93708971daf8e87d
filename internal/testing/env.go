package testing

import (
	"context"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/genesis"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/ledger/store"
	feeds "github.com/LeJamon/coveredcall/internal/core/oracle"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	_ "github.com/LeJamon/coveredcall/internal/core/tx/all"
	"github.com/LeJamon/coveredcall/internal/core/tx/mint"
	"github.com/LeJamon/coveredcall/internal/core/tx/oracle"
	"github.com/sirupsen/logrus"
)

// TestEnv manages a test ledger for transaction testing. It owns an
// in-memory store seeded with a genesis, an engine that verifies
// signatures, and a manual clock.
type TestEnv struct {
	t        *testing.T
	store    *store.Store
	engine   *tx.Engine
	clock    *ManualClock
	config   tx.EngineConfig
	accounts map[string]*Account
	receipts []*tx.Receipt
}

// MarkSymbol is the symbol of the feed the harness marks expiries with.
const MarkSymbol = "SOL/USD"

// OracleAccount returns the publisher of the harness mark feed.
func OracleAccount() *Account {
	return NewAccount("pyth")
}

// FeedID derives a feed identifier from a symbol such as "SOL/USD".
func FeedID(symbol string) [32]byte {
	var id [32]byte
	copy(id[:], symbol)
	return id
}

// DefaultConfig returns the default engine configuration with the mark
// feed pinned to OracleAccount's MarkSymbol feed.
func DefaultConfig() tx.EngineConfig {
	cfg := tx.DefaultEngineConfig()
	cfg.MarkFeed = feeds.Feed{Publisher: OracleAccount().ID, ID: FeedID(MarkSymbol)}
	return cfg
}

// NewTestEnv creates a new test environment with DefaultConfig (oracle
// settlement).
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvWithConfig(t, DefaultConfig())
}

// NewTestEnvWithPolicy creates a test environment settling options under p.
func NewTestEnvWithPolicy(t *testing.T, p tx.SettlementPolicy) *TestEnv {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SettlementPolicy = p
	return NewTestEnvWithConfig(t, cfg)
}

// NewTestEnvWithConfig creates a new test environment with a custom engine configuration.
func NewTestEnvWithConfig(t *testing.T, cfg tx.EngineConfig) *TestEnv {
	t.Helper()
	return NewTestEnvWithOptions(t, cfg)
}

// NewTestEnvWithOptions is NewTestEnvWithConfig with extra engine options,
// such as observers, applied after the harness defaults.
func NewTestEnvWithOptions(t *testing.T, cfg tx.EngineConfig, opts ...tx.EngineOption) *TestEnv {
	t.Helper()

	s := store.NewMemory()
	if _, err := genesis.Apply(context.Background(), s, genesis.DefaultConfig()); err != nil {
		t.Fatalf("Failed to create genesis ledger: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &TestEnv{
		t:        t,
		store:    s,
		clock:    NewManualClock(),
		config:   cfg,
		accounts: make(map[string]*Account),
	}
	defaults := []tx.EngineOption{
		tx.WithClock(env.clock),
		tx.WithLogger(logrus.NewEntry(logger)),
		tx.WithObserver(tx.ObserverFunc(func(r *tx.Receipt) {
			env.receipts = append(env.receipts, r)
		})),
	}
	env.engine = tx.NewEngine(s, cfg, append(defaults, opts...)...)

	master := MasterAccount()
	env.accounts[master.Address] = master
	return env
}

// Fund creates each account with DefaultFunding taken from the master account.
func (e *TestEnv) Fund(accounts ...*Account) {
	e.t.Helper()
	for _, acc := range accounts {
		e.FundAmount(acc, DefaultFunding)
	}
}

// FundAmount creates acc, or tops it up, with amount native units taken
// from the master account. Funding is written directly to the store.
func (e *TestEnv) FundAmount(acc *Account, amount uint64) {
	e.t.Helper()
	e.accounts[acc.Address] = acc

	master := MasterAccount()
	masterRoot := e.accountRoot(master)
	if masterRoot == nil || masterRoot.Balance < amount {
		e.t.Fatalf("master account cannot fund %s with %d", acc.Name, amount)
	}
	masterRoot.Balance -= amount

	root := e.accountRoot(acc)
	action := tx.ActionModify
	if root == nil {
		root = &entry.AccountRoot{Account: acc.ID, Sequence: 1}
		action = tx.ActionInsert
	}
	root.Balance += amount

	e.commit(
		e.change(tx.ActionModify, keylet.Account(master.ID), masterRoot),
		e.change(action, keylet.Account(acc.ID), root),
	)
}

func (e *TestEnv) change(action tx.Action, k keylet.Keylet, en entry.Entry) tx.Change {
	data, err := entry.Encode(en)
	if err != nil {
		e.t.Fatalf("Failed to encode %s: %v", k.Type, err)
	}
	return tx.Change{Action: action, Key: k.Key, Data: data}
}

func (e *TestEnv) commit(changes ...tx.Change) {
	if err := e.store.Commit(context.Background(), changes); err != nil {
		e.t.Fatalf("Failed to commit test state: %v", err)
	}
}

// Submit signs a transaction with the key of its Account and applies it.
// A zero Sequence is filled from the account's current sequence.
func (e *TestEnv) Submit(txn tx.Transaction) TxResult {
	e.t.Helper()

	common := txn.GetCommon()
	signer, ok := e.accounts[common.Account]
	if !ok {
		e.t.Fatalf("Unknown account %s; fund it before submitting", common.Account)
	}
	return e.SubmitSignedWith(txn, signer)
}

// SubmitSignedWith signs txn with signer's key whatever its Account says.
func (e *TestEnv) SubmitSignedWith(txn tx.Transaction, signer *Account) TxResult {
	e.t.Helper()

	common := txn.GetCommon()
	if common.Sequence == 0 {
		if root := e.accountRoot(e.findAccountByAddress(common.Account)); root != nil {
			common.Sequence = root.Sequence
		}
	}
	if err := tx.Sign(txn, signer.Key); err != nil {
		e.t.Fatalf("Failed to sign transaction: %v", err)
	}
	return e.SubmitRaw(txn)
}

// SubmitRaw applies txn exactly as given.
func (e *TestEnv) SubmitRaw(txn tx.Transaction) TxResult {
	e.t.Helper()
	return resultFrom(e.engine.Apply(context.Background(), txn))
}

func (e *TestEnv) findAccountByAddress(address string) *Account {
	if acc, ok := e.accounts[address]; ok {
		return acc
	}
	return nil
}

func (e *TestEnv) accountRoot(acc *Account) *entry.AccountRoot {
	if acc == nil {
		return nil
	}
	var root entry.AccountRoot
	if !e.readEntry(keylet.Account(acc.ID), &root) {
		return nil
	}
	return &root
}

func (e *TestEnv) readEntry(k keylet.Keylet, en entry.Entry) bool {
	e.t.Helper()
	data, err := e.store.Read(k)
	if err != nil {
		e.t.Fatalf("Failed to read %s: %v", k.Type, err)
	}
	if data == nil {
		return false
	}
	if err := entry.DecodeInto(data, en); err != nil {
		e.t.Fatalf("Failed to decode %s: %v", k.Type, err)
	}
	return true
}

// Balance returns the native balance of an account, zero if it does not exist.
func (e *TestEnv) Balance(acc *Account) uint64 {
	e.t.Helper()
	if root := e.accountRoot(acc); root != nil {
		return root.Balance
	}
	return 0
}

// Seq returns the next sequence number of an account.
func (e *TestEnv) Seq(acc *Account) uint32 {
	e.t.Helper()
	if root := e.accountRoot(acc); root != nil {
		return root.Sequence
	}
	return 0
}

// OwnerCount returns how many deposit-bearing entries an account funds.
func (e *TestEnv) OwnerCount(acc *Account) uint32 {
	e.t.Helper()
	if root := e.accountRoot(acc); root != nil {
		return root.OwnerCount
	}
	return 0
}

// Exists reports whether an account exists in the ledger.
func (e *TestEnv) Exists(acc *Account) bool {
	return e.accountRoot(acc) != nil
}

// CreateMint submits MintCreate for issuer and returns the new mint ID.
func (e *TestEnv) CreateMint(issuer *Account, decimals uint8) [20]byte {
	e.t.Helper()
	id := keylet.MintID(issuer.ID, e.Seq(issuer))
	result := e.Submit(mint.NewMintCreate(issuer.Address, decimals))
	if !result.IsSuccess() {
		e.t.Fatalf("MintCreate failed: %s", result.Code)
	}
	return id
}

// MintTo issues amount minor units of mintID from issuer to dest.
func (e *TestEnv) MintTo(issuer *Account, mintID [20]byte, dest *Account, amount uint64) {
	e.t.Helper()
	result := e.Submit(mint.NewMintTo(issuer.Address, tx.EncodeID(mintID[:]), dest.Address, amount))
	if !result.IsSuccess() {
		e.t.Fatalf("MintTo failed: %s", result.Code)
	}
}

// PublishPrice sets a price feed of publisher.
func (e *TestEnv) PublishPrice(publisher *Account, feedID [32]byte, price int64, exponent int32, publishTime time.Time) TxResult {
	e.t.Helper()
	return e.Submit(oracle.NewPriceFeedSet(publisher.Address, FeedIDHex(feedID), price, 0, exponent, publishTime.Unix()))
}

// FeedIDHex renders a feed ID for a transaction field.
func FeedIDHex(id [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

// TokenBalance returns acc's holding of mintID, zero when it has none.
func (e *TestEnv) TokenBalance(acc *Account, mintID [20]byte) uint64 {
	e.t.Helper()
	return e.HoldingBalance(keylet.Holding(acc.ID, mintID))
}

// HoldingBalance returns the amount held at k, zero when it does not exist.
func (e *TestEnv) HoldingBalance(k keylet.Keylet) uint64 {
	e.t.Helper()
	var h entry.Holding
	if !e.readEntry(k, &h) {
		return 0
	}
	return h.Amount
}

// Option returns the option stored at key, nil when absent.
func (e *TestEnv) Option(key keylet.Keylet) *entry.OptionContract {
	e.t.Helper()
	var o entry.OptionContract
	if !e.readEntry(key, &o) {
		return nil
	}
	return &o
}

// Mark returns the mark for expiry, nil when absent.
func (e *TestEnv) Mark(expiry int64) *entry.ExpiryMark {
	e.t.Helper()
	var m entry.ExpiryMark
	if !e.readEntry(keylet.ExpiryMark(expiry), &m) {
		return nil
	}
	return &m
}

// LedgerEntryExists reports whether an entry exists at k.
func (e *TestEnv) LedgerEntryExists(k keylet.Keylet) bool {
	e.t.Helper()
	ok, err := e.store.Exists(k)
	if err != nil {
		e.t.Fatalf("Failed to check entry: %v", err)
	}
	return ok
}

// Snapshot returns every committed entry keyed by its index.
func (e *TestEnv) Snapshot() map[[32]byte]string {
	e.t.Helper()
	out := make(map[[32]byte]string)
	err := e.store.Entries(context.Background(), func(key [32]byte, data []byte) error {
		out[key] = string(data)
		return nil
	})
	if err != nil {
		e.t.Fatalf("Failed to snapshot ledger: %v", err)
	}
	return out
}

// Receipts returns every receipt the engine produced, in order.
func (e *TestEnv) Receipts() []*tx.Receipt {
	return e.receipts
}

// Store returns the committed ledger state.
func (e *TestEnv) Store() *store.Store {
	return e.store
}

// Engine returns the engine transactions are applied through.
func (e *TestEnv) Engine() *tx.Engine {
	return e.engine
}

// Config returns the engine configuration.
func (e *TestEnv) Config() tx.EngineConfig {
	return e.config
}

// Now returns the current test time.
func (e *TestEnv) Now() time.Time {
	return e.clock.Now()
}

// AdvanceTime moves the test clock forward.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.clock.Advance(d)
}

// SetTime sets the test clock.
func (e *TestEnv) SetTime(t time.Time) {
	e.clock.Set(t)
}
