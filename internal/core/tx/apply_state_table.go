package tx

import (
	"bytes"
	"encoding/hex"
	"errors"
	"sort"
	"strings"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

func (a Action) String() string {
	switch a {
	case ActionCache:
		return "Cache"
	case ActionInsert:
		return "Insert"
	case ActionModify:
		return "Modify"
	case ActionErase:
		return "Erase"
	default:
		return "Unknown"
	}
}

var (
	ErrEntryExists   = errors.New("entry already exists")
	ErrEntryNotFound = errors.New("entry not found")
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// ApplyStateTable wraps a ReadView and tracks all modifications made while
// applying one transaction. Nothing reaches the base until the engine
// commits the table's changes.
type ApplyStateTable struct {
	base  ReadView
	items map[[32]byte]*TrackedEntry
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base ReadView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if e, exists := t.items[k.Key]; exists {
		if e.Action == ActionErase {
			return nil, nil
		}
		return e.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if e, exists := t.items[k.Key]; exists {
		return e.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if e, exists := t.items[k.Key]; exists {
		if e.Action != ActionErase {
			return ErrEntryExists
		}
		// Re-inserting a deleted entry becomes a modify
		e.Action = ActionModify
		e.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if e, exists := t.items[k.Key]; exists {
		if e.Action == ActionErase {
			return ErrEntryNotFound
		}
		if e.Action == ActionCache {
			e.Action = ActionModify
		}
		// For insert, keep it as insert with new data
		e.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if e, exists := t.items[k.Key]; exists {
		switch e.Action {
		case ActionErase:
			return ErrEntryNotFound
		case ActionInsert:
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		e.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// Changes returns the writes to commit, sorted by key, together with the
// metadata describing them. Cached reads and no-op modifications are
// dropped.
func (t *ApplyStateTable) Changes() ([]Change, *Metadata) {
	keys := make([][32]byte, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	changes := make([]Change, 0, len(keys))
	meta := &Metadata{AffectedNodes: make([]AffectedNode, 0, len(keys))}

	for _, key := range keys {
		e := t.items[key]
		var nodeType string

		switch e.Action {
		case ActionCache:
			continue
		case ActionInsert:
			nodeType = "CreatedNode"
			changes = append(changes, Change{Action: ActionInsert, Key: key, Data: e.Current})
		case ActionModify:
			if bytes.Equal(e.Original, e.Current) {
				continue
			}
			nodeType = "ModifiedNode"
			changes = append(changes, Change{Action: ActionModify, Key: key, Data: e.Current})
		case ActionErase:
			nodeType = "DeletedNode"
			changes = append(changes, Change{Action: ActionErase, Key: key})
		}

		data := e.Current
		if data == nil {
			data = e.Original
		}
		entryType := "Unknown"
		if typ, err := entry.TypeOf(data); err == nil {
			entryType = typ.String()
		}

		meta.AffectedNodes = append(meta.AffectedNodes, AffectedNode{
			NodeType:        nodeType,
			LedgerEntryType: entryType,
			LedgerIndex:     strings.ToUpper(hex.EncodeToString(key[:])),
		})
	}

	return changes, meta
}
