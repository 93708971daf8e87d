package testing

import (
	"encoding/hex"
	"fmt"
	"strings"

	addresscodec "github.com/LeJamon/coveredcall/internal/codec/address-codec"
	"github.com/LeJamon/coveredcall/internal/core/ledger/genesis"
	"github.com/LeJamon/coveredcall/internal/crypto"
)

// Account represents a test account with keypair and address information.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Address is the base58 address of the account.
	Address string

	// ID is the 20-byte account ID derived from the public key.
	ID [20]byte

	// Key signs transactions sent by the account.
	Key *crypto.KeyPair

	seed []byte
}

// NewAccount creates a new test account with a deterministic keypair derived from the name.
// Using the same name will always produce the same account, making tests reproducible.
func NewAccount(name string) *Account {
	return NewAccountFromPassphrase(name, name)
}

// NewAccountFromPassphrase creates a test account from a specific passphrase.
// This is useful for recreating well-known accounts.
func NewAccountFromPassphrase(name, passphrase string) *Account {
	seed := crypto.SeedFromPassphrase(passphrase)
	kp, err := crypto.KeyPairFromSeed(seed)
	if err != nil {
		panic(err)
	}
	id := kp.AccountID()
	return &Account{
		Name:    name,
		Address: addresscodec.EncodeAccountID(id),
		ID:      id,
		Key:     kp,
		seed:    seed,
	}
}

// MasterAccount returns the genesis account that holds the native supply.
func MasterAccount() *Account {
	return NewAccountFromPassphrase("master", genesis.MasterPassphrase)
}

// PublicKeyHex returns the compressed public key in upper-case hex.
func (a *Account) PublicKeyHex() string {
	return strings.ToUpper(a.Key.PublicKeyHex())
}

// AccountIDHex returns the account ID in upper-case hex.
func (a *Account) AccountIDHex() string {
	return strings.ToUpper(hex.EncodeToString(a.ID[:]))
}

// Secret returns the encoded seed of the account, as accepted by submit.
func (a *Account) Secret() string {
	return addresscodec.EncodeSeed(a.seed)
}

// Human returns the address of the account.
func (a *Account) Human() string {
	return a.Address
}

func (a *Account) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.Address)
}
