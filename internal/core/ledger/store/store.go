// Package store keeps committed ledger entries in a database.DB, framed by
// a compressor and fronted by an LRU cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/storage/compression"
	"github.com/LeJamon/coveredcall/internal/storage/database"
	"github.com/LeJamon/coveredcall/internal/storage/database/memory"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	entryPrefix = 'e'
	metaPrefix  = 'm'

	DefaultCacheSize = 4096
)

// Options configures a Store.
type Options struct {
	// Compression names a registered compressor. Empty means lz4.
	Compression string
	// CacheSize is the number of decoded entries kept in memory.
	CacheSize int
}

// Store is the committed ledger state.
type Store struct {
	mu    sync.RWMutex
	db    database.DB
	comp  compression.Compressor
	cache *lru.Cache[[32]byte, []byte]

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ tx.Store = (*Store)(nil)

// New wraps db. The store owns db and closes it on Close.
func New(db database.DB, opts Options) (*Store, error) {
	if opts.Compression == "" {
		opts.Compression = "lz4"
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}

	comp, err := compression.Get(opts.Compression)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[[32]byte, []byte](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Store{db: db, comp: comp, cache: cache}, nil
}

// NewMemory returns a store over an in-memory database.
func NewMemory() *Store {
	s, err := New(memory.NewDB(), Options{})
	if err != nil {
		panic(err)
	}
	return s
}

func entryKey(key [32]byte) []byte {
	out := make([]byte, 0, 33)
	out = append(out, entryPrefix)
	return append(out, key[:]...)
}

func metaKey(name string) []byte {
	return append([]byte{metaPrefix}, name...)
}

func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readLocked(k.Key)
}

func (s *Store) readLocked(key [32]byte) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return data, nil
	}
	s.misses.Add(1)

	raw, err := s.db.Read(context.Background(), entryKey(key))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read entry %X: %w", key, err)
	}

	data, err := s.comp.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decompress entry %X: %w", key, err)
	}
	s.cache.Add(key, data)
	return data, nil
}

func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// Commit writes every change in one batch. The cache is only touched after
// the batch succeeds.
func (s *Store) Commit(ctx context.Context, changes []tx.Change) error {
	if len(changes) == 0 {
		return nil
	}

	ops := make([]database.BatchOperation, 0, len(changes))
	for _, c := range changes {
		switch c.Action {
		case tx.ActionInsert, tx.ActionModify:
			blob, err := s.comp.Compress(c.Data)
			if err != nil {
				return fmt.Errorf("compress entry %X: %w", c.Key, err)
			}
			ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: entryKey(c.Key), Value: blob})
		case tx.ActionErase:
			ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: entryKey(c.Key)})
		default:
			return fmt.Errorf("unexpected change action %s for %X", c.Action, c.Key)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("commit %d changes: %w", len(ops), err)
	}

	for _, c := range changes {
		if c.Action == tx.ActionErase {
			s.cache.Remove(c.Key)
		} else {
			s.cache.Add(c.Key, c.Data)
		}
	}
	return nil
}

// Entries calls fn for every committed entry in key order.
func (s *Store) Entries(ctx context.Context, fn func(key [32]byte, data []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := s.db.Iterator(ctx, []byte{entryPrefix}, []byte{entryPrefix + 1})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		var key [32]byte
		copy(key[:], it.Key()[1:])

		data, err := s.comp.Decompress(it.Value())
		if err != nil {
			return fmt.Errorf("decompress entry %X: %w", key, err)
		}
		if err := fn(key, data); err != nil {
			return err
		}
	}
	return it.Error()
}

// Meta returns a named metadata value, or nil if unset.
func (s *Store) Meta(ctx context.Context, name string) ([]byte, error) {
	val, err := s.db.Read(ctx, metaKey(name))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	return val, err
}

func (s *Store) SetMeta(ctx context.Context, name string, value []byte) error {
	return s.db.Write(ctx, metaKey(name), value)
}

// CacheStats reports entry cache hits and misses.
type CacheStats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

func (s *Store) CacheStats() CacheStats {
	return CacheStats{Hits: s.hits.Load(), Misses: s.misses.Load(), Len: s.cache.Len()}
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
	return s.db.Close()
}
