// Package genesis builds the initial ledger state: a master account holding
// the native supply plus any pre-funded accounts.
package genesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	addresscodec "github.com/LeJamon/coveredcall/internal/codec/address-codec"
	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/ledger/store"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/crypto"
	common "github.com/LeJamon/coveredcall/internal/crypto/common"
)

const (
	// MasterPassphrase derives the well-known genesis account.
	MasterPassphrase = "masterpassphrase"

	// InitialSupply is the native balance created at genesis.
	InitialSupply uint64 = 100_000_000_000_000_000

	// metaKey is where the genesis summary is stored.
	metaKey = "genesis"
)

var (
	ErrAlreadyInitialized = errors.New("ledger already has a genesis")
	ErrInsufficientSupply = errors.New("funded accounts exceed the initial supply")
)

// hashPrefix is prepended to the genesis state when hashing it.
var hashPrefix = []byte{'L', 'G', 'R', 0x00}

// Account is a pre-funded account.
type Account struct {
	Address string `mapstructure:"address" json:"address"`
	Balance uint64 `mapstructure:"balance" json:"balance"`
}

// Config describes the genesis ledger.
type Config struct {
	Supply    uint64
	Accounts  []Account
	CloseTime time.Time
}

// DefaultConfig returns a genesis with only the master account.
func DefaultConfig() Config {
	return Config{
		Supply:    InitialSupply,
		CloseTime: time.Unix(0, 0).UTC(),
	}
}

// GenerateGenesisAccountID returns the master account ID and address.
func GenerateGenesisAccountID() ([20]byte, string, error) {
	kp := crypto.KeyPairFromPassphrase(MasterPassphrase)
	if kp == nil {
		return [20]byte{}, "", errors.New("failed to derive master key")
	}
	id := kp.AccountID()
	return id, addresscodec.EncodeAccountID(id), nil
}

// Info summarizes a genesis ledger.
type Info struct {
	Hash      string    `json:"hash"`
	Master    string    `json:"master"`
	Accounts  int       `json:"accounts"`
	CloseTime time.Time `json:"close_time"`
}

// Result is the genesis state ready to commit.
type Result struct {
	Info    Info
	Changes []tx.Change
}

// Create builds the genesis state without writing it.
func Create(cfg Config) (*Result, error) {
	masterID, masterAddr, err := GenerateGenesisAccountID()
	if err != nil {
		return nil, err
	}

	balances := map[[20]byte]uint64{}
	remaining := cfg.Supply
	for _, acc := range cfg.Accounts {
		id, err := addresscodec.DecodeAccountID(acc.Address)
		if err != nil {
			return nil, fmt.Errorf("genesis account %q: %w", acc.Address, err)
		}
		if id == masterID {
			return nil, fmt.Errorf("genesis account %q is the master account", acc.Address)
		}
		if _, dup := balances[id]; dup {
			return nil, fmt.Errorf("genesis account %q listed twice", acc.Address)
		}
		if acc.Balance > remaining {
			return nil, ErrInsufficientSupply
		}
		remaining -= acc.Balance
		balances[id] = acc.Balance
	}
	balances[masterID] = remaining

	changes := make([]tx.Change, 0, len(balances))
	for id, bal := range balances {
		data, err := entry.Encode(&entry.AccountRoot{Account: id, Sequence: 1, Balance: bal})
		if err != nil {
			return nil, err
		}
		changes = append(changes, tx.Change{Action: tx.ActionInsert, Key: keylet.Account(id).Key, Data: data})
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].Key[:], changes[j].Key[:]) < 0
	})

	return &Result{
		Info: Info{
			Hash:      strings.ToUpper(fmt.Sprintf("%x", stateHash(changes))),
			Master:    masterAddr,
			Accounts:  len(balances),
			CloseTime: cfg.CloseTime.UTC(),
		},
		Changes: changes,
	}, nil
}

func stateHash(changes []tx.Change) [32]byte {
	parts := make([][]byte, 0, 1+2*len(changes))
	parts = append(parts, hashPrefix)
	for i := range changes {
		parts = append(parts, changes[i].Key[:], changes[i].Data)
	}
	return common.Sha512Half(parts...)
}

// Apply writes the genesis to an empty store.
func Apply(ctx context.Context, s *store.Store, cfg Config) (*Info, error) {
	if existing, err := Load(ctx, s); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, ErrAlreadyInitialized
	}

	res, err := Create(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Commit(ctx, res.Changes); err != nil {
		return nil, fmt.Errorf("failed to commit genesis: %w", err)
	}

	raw, err := json.Marshal(res.Info)
	if err != nil {
		return nil, err
	}
	if err := s.SetMeta(ctx, metaKey, raw); err != nil {
		return nil, fmt.Errorf("failed to record genesis: %w", err)
	}
	return &res.Info, nil
}

// Load returns the recorded genesis, or nil when the store is empty.
func Load(ctx context.Context, s *store.Store) (*Info, error) {
	raw, err := s.Meta(ctx, metaKey)
	if err != nil || raw == nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("corrupt genesis record: %w", err)
	}
	return &info, nil
}
