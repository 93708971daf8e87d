package tx

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/oracle"
	"github.com/sirupsen/logrus"
)

// Clock provides the current time to the engine.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Journal persists a receipt for every processed transaction.
type Journal interface {
	Record(ctx context.Context, r *Receipt) error
}

// Observer is notified after every processed transaction.
type Observer interface {
	OnApplied(r *Receipt)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(r *Receipt)

func (f ObserverFunc) OnApplied(r *Receipt) {
	f(r)
}

// Engine processes transactions against a ledger
type Engine struct {
	// mu serializes transactions; a busy engine rejects instead of queueing
	mu sync.Mutex

	store     Store
	config    EngineConfig
	clock     Clock
	oracle    oracle.Reader
	journal   Journal
	observers []Observer
	log       *logrus.Entry
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

func WithClock(c Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

func WithOracle(r oracle.Reader) EngineOption {
	return func(e *Engine) { e.oracle = r }
}

func WithJournal(j Journal) EngineOption {
	return func(e *Engine) { e.journal = j }
}

func WithObserver(o Observer) EngineOption {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

func WithLogger(l *logrus.Entry) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates a new transaction engine
func NewEngine(store Store, config EngineConfig, opts ...EngineOption) *Engine {
	e := &Engine{
		store:  store,
		config: config,
		clock:  SystemClock{},
		oracle: oracle.NewLedgerReader(),
		log:    logrus.WithField("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Store returns the committed ledger state.
func (e *Engine) Store() Store {
	return e.store
}

// AffectedNode describes one entry touched by a transaction
type AffectedNode struct {
	NodeType        string
	LedgerEntryType string
	LedgerIndex     string
}

// Metadata tracks changes made by a transaction
type Metadata struct {
	AffectedNodes     []AffectedNode
	TransactionResult Result
}

// MarshalJSON nests each node under its node type and renders the result
// code by name.
func (m Metadata) MarshalJSON() ([]byte, error) {
	nodes := make([]AffectedNode, len(m.AffectedNodes))
	copy(nodes, m.AffectedNodes)
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].LedgerIndex < nodes[j].LedgerIndex
	})

	affected := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		affected = append(affected, map[string]any{
			n.NodeType: map[string]any{
				"LedgerEntryType": n.LedgerEntryType,
				"LedgerIndex":     n.LedgerIndex,
			},
		})
	}

	return json.Marshal(map[string]any{
		"AffectedNodes":     affected,
		"TransactionResult": m.TransactionResult.String(),
	})
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result

	// Applied indicates if the transaction was applied to the ledger
	Applied bool

	// Hash identifies the transaction
	Hash [32]byte

	// Metadata contains the changes made by the transaction
	Metadata *Metadata

	// Message is a human-readable result message
	Message string
}

// Receipt is what the journal and observers see for each transaction.
type Receipt struct {
	Hash      [32]byte
	Type      Type
	Account   string
	Sequence  uint32
	Result    Result
	Metadata  *Metadata
	Tx        json.RawMessage
	AppliedAt time.Time
}

// HashHex returns the transaction hash in upper-case hex.
func (r *Receipt) HashHex() string {
	return strings.ToUpper(hex.EncodeToString(r.Hash[:]))
}

// Apply processes a transaction and applies it to the ledger. A call made
// while another transaction is applying returns terRETRY.
func (e *Engine) Apply(ctx context.Context, t Transaction) ApplyResult {
	if !e.mu.TryLock() {
		return ApplyResult{Result: TerRETRY, Message: TerRETRY.Message()}
	}
	defer e.mu.Unlock()

	now := e.clock.Now()
	hash, err := TransactionHash(t)
	if err != nil {
		e.log.WithError(err).Warn("failed to hash transaction")
		return ApplyResult{Result: TemMALFORMED, Message: err.Error()}
	}

	log := e.log.WithFields(logrus.Fields{
		"tx_type": t.TxType().String(),
		"account": t.GetCommon().Account,
		"tx_hash": strings.ToUpper(hex.EncodeToString(hash[:])),
	})

	metadata := &Metadata{AffectedNodes: []AffectedNode{}}
	result := e.apply(ctx, t, hash, now, metadata, log)
	metadata.TransactionResult = result

	log = log.WithField("result", result.String())
	if result.IsSuccess() {
		log.Info("transaction applied")
	} else {
		log.Debug("transaction rejected")
	}

	e.record(ctx, t, hash, result, metadata, now, log)

	return ApplyResult{
		Result:   result,
		Applied:  result.IsApplied(),
		Hash:     hash,
		Metadata: metadata,
		Message:  result.Message(),
	}
}

func (e *Engine) apply(ctx context.Context, t Transaction, hash [32]byte, now time.Time, metadata *Metadata, log *logrus.Entry) Result {
	// Step 1: Preflight checks (syntax validation)
	if err := t.Validate(); err != nil {
		log.WithError(err).Debug("preflight failed")
		return ParseValidationError(err)
	}

	appliable, ok := t.(Appliable)
	if !ok {
		return TemUNKNOWN
	}

	// Step 2: Signature
	if !e.config.SkipSignatureVerification {
		if err := VerifySignature(t); err != nil {
			log.WithError(err).Debug("signature check failed")
			if errors.Is(err, ErrMissingSignature) {
				return TemBAD_SIGNATURE
			}
			return TefBAD_SIGNATURE
		}
	}

	// Step 3: Source account and sequence
	common := t.GetCommon()
	accountID, err := common.AccountID()
	if err != nil {
		return TemBAD_SRC_ACCOUNT
	}

	table := NewApplyStateTable(e.store)
	applyCtx := &ApplyContext{
		View:      table,
		AccountID: accountID,
		Config:    e.config,
		TxHash:    hash,
		Now:       now,
		Oracle:    e.oracle,
		Log:       log,
	}

	account := &entry.AccountRoot{}
	found, err := applyCtx.ReadEntry(keylet.Account(accountID), account)
	if err != nil {
		return applyCtx.Fail(err)
	}
	if !found {
		return TerNO_ACCOUNT
	}

	switch {
	case common.Sequence < account.Sequence:
		return TefPAST_SEQ
	case common.Sequence > account.Sequence:
		return TerPRE_SEQ
	}
	applyCtx.Account = account

	// Step 4: Apply the transaction
	result := appliable.Apply(applyCtx)
	if !result.IsSuccess() {
		return result
	}

	account.Sequence++
	if err := applyCtx.UpdateEntry(keylet.Account(accountID), account); err != nil {
		return applyCtx.Fail(err)
	}

	// Step 5: Commit all tracked changes in one batch
	changes, generated := table.Changes()
	if err := e.store.Commit(ctx, changes); err != nil {
		return applyCtx.Fail(err)
	}
	metadata.AffectedNodes = generated.AffectedNodes

	return TesSUCCESS
}

func (e *Engine) record(ctx context.Context, t Transaction, hash [32]byte, result Result, metadata *Metadata, now time.Time, log *logrus.Entry) {
	raw, err := ToJSON(t)
	if err != nil {
		log.WithError(err).Warn("failed to encode transaction for journal")
	}

	receipt := &Receipt{
		Hash:      hash,
		Type:      t.TxType(),
		Account:   t.GetCommon().Account,
		Sequence:  t.GetCommon().Sequence,
		Result:    result,
		Metadata:  metadata,
		Tx:        raw,
		AppliedAt: now,
	}

	if e.journal != nil {
		if err := e.journal.Record(ctx, receipt); err != nil {
			log.WithError(err).Error("failed to record transaction in journal")
		}
	}
	for _, o := range e.observers {
		o.OnApplied(receipt)
	}
}
