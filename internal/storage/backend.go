// Package storage selects the key/value backend the ledger lives in.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/LeJamon/coveredcall/internal/storage/database"
	"github.com/LeJamon/coveredcall/internal/storage/database/leveldb"
	"github.com/LeJamon/coveredcall/internal/storage/database/memory"
	"github.com/LeJamon/coveredcall/internal/storage/database/pebble"
)

const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Backends returns the supported backend names.
func Backends() []string {
	names := []string{BackendPebble, BackendLevelDB, BackendMemory}
	sort.Strings(names)
	return names
}

// OpenDB opens the named backend. Disk backends live under dir/ledger.db.
func OpenDB(backend, dir string) (database.DB, error) {
	switch backend {
	case BackendMemory:
		return memory.NewDB(), nil
	case BackendPebble, BackendLevelDB:
		if dir == "" {
			return nil, fmt.Errorf("%s backend requires a data directory", backend)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		path := filepath.Join(dir, "ledger.db")
		if backend == BackendPebble {
			return pebble.Open(path)
		}
		return leveldb.Open(path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", backend)
	}
}
