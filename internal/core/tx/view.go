package tx

import (
	"context"

	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
)

// ReadView provides read access to ledger state. Read returns nil data for
// a missing entry.
type ReadView interface {
	Read(k keylet.Keylet) ([]byte, error)
	Exists(k keylet.Keylet) (bool, error)
}

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	ReadView

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error
}

// Store is the committed ledger state. Commit writes every change or none.
type Store interface {
	ReadView
	Commit(ctx context.Context, changes []Change) error
}

// Change is one entry write produced by a transaction.
type Change struct {
	Action Action
	Key    [32]byte
	// Data is nil for erasures.
	Data []byte
}
