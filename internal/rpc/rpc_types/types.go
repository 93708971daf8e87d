package rpc_types

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/genesis"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/storage/journal"
)

const (
	ApiVersion1       = 1
	ApiVersion2       = 2
	DefaultApiVersion = ApiVersion1
)

type Role int

const (
	RoleGuest Role = iota
	RoleAdmin
)

// RpcContext contains request-specific information
type RpcContext struct {
	Context    context.Context
	Role       Role
	ApiVersion int
	ClientIP   string
	Services   *ServiceContainer
}

// MethodHandler is implemented by every RPC method
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
	RequiredRole() Role
	SupportedApiVersions() []int
}

// MethodRegistry maps method names to handlers. It is shared by the HTTP
// and WebSocket front ends.
type MethodRegistry struct {
	mu      sync.RWMutex
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names in sorted order.
func (r *MethodRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// LedgerReader is the committed state the read methods need.
type LedgerReader interface {
	tx.ReadView
	Entries(ctx context.Context, fn func(key [32]byte, data []byte) error) error
}

// Submitter applies transactions.
type Submitter interface {
	Apply(ctx context.Context, t tx.Transaction) tx.ApplyResult
	Config() tx.EngineConfig
}

// TxHistory looks up journaled transactions.
type TxHistory interface {
	Get(ctx context.Context, hash [32]byte) (*journal.Record, error)
	ByAccount(ctx context.Context, account string, limit int) ([]journal.Record, error)
	Count(ctx context.Context) (int64, error)
}

// ServiceContainer holds what handlers read from and write to. History is
// nil when the journal is disabled.
type ServiceContainer struct {
	Ledger    LedgerReader
	Engine    Submitter
	History   TxHistory
	Genesis   *genesis.Info
	StartTime time.Time
	Version   string
	// Now is the clock used for price freshness in read methods.
	Now func() time.Time
}

// Clock returns the current time, falling back to the wall clock.
func (s *ServiceContainer) Clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// WebSocketResponse is the envelope for replies on a WebSocket connection.
type WebSocketResponse struct {
	Type       string      `json:"type"`
	ID         interface{} `json:"id,omitempty"`
	Status     string      `json:"status,omitempty"`
	Result     interface{} `json:"result,omitempty"`
	ApiVersion int         `json:"api_version,omitempty"`
}

// Stream names accepted by subscribe.
const (
	StreamTransactions = "transactions"
	StreamAccounts     = "accounts"
)
