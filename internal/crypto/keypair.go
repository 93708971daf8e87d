package crypto

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"

	common "github.com/LeJamon/coveredcall/internal/crypto/common"
)

// Key-related errors.
var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrSeedTooShort      = errors.New("seed must be at least 16 bytes")
)

// SeedSize is the size of a key derivation seed.
const SeedSize = 16

// KeyPair is a secp256k1 signing key and the account it controls.
type KeyPair struct {
	privateKey *btcec.PrivateKey
	publicKey  *btcec.PublicKey
}

// NewKeyPair creates a new random key pair.
func NewKeyPair() (*KeyPair, error) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return &KeyPair{privateKey: privateKey, publicKey: privateKey.PubKey()}, nil
}

// KeyPairFromSeed derives a key pair from a seed of at least 16 bytes.
// The same seed always yields the same key pair.
func KeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) < SeedSize {
		return nil, ErrSeedTooShort
	}

	hash := sha512.Sum512(seed)
	privateKey, _ := btcec.PrivKeyFromBytes(hash[:32])

	return &KeyPair{privateKey: privateKey, publicKey: privateKey.PubKey()}, nil
}

// SeedFromPassphrase derives a seed from an arbitrary passphrase.
func SeedFromPassphrase(passphrase string) []byte {
	hash := sha512.Sum512([]byte(passphrase))
	return hash[:SeedSize]
}

// KeyPairFromPassphrase derives a key pair from an arbitrary passphrase.
func KeyPairFromPassphrase(passphrase string) *KeyPair {
	kp, _ := KeyPairFromSeed(SeedFromPassphrase(passphrase))
	return kp
}

// KeyPairFromPrivateKeyHex parses a hex-encoded 32-byte private key.
func KeyPairFromPrivateKeyHex(privKeyHex string) (*KeyPair, error) {
	if len(privKeyHex) == 66 && privKeyHex[:2] == "00" {
		privKeyHex = privKeyHex[2:]
	}
	if len(privKeyHex) != 64 {
		return nil, ErrInvalidPrivateKey
	}

	privKeyBytes, err := hex.DecodeString(privKeyHex)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}

	privateKey, _ := btcec.PrivKeyFromBytes(privKeyBytes)
	if privateKey == nil {
		return nil, ErrInvalidPrivateKey
	}
	return &KeyPair{privateKey: privateKey, publicKey: privateKey.PubKey()}, nil
}

// PublicKey returns the compressed public key bytes.
func (k *KeyPair) PublicKey() []byte {
	return k.publicKey.SerializeCompressed()
}

// PublicKeyHex returns the compressed public key as upper-case hex.
func (k *KeyPair) PublicKeyHex() string {
	return fmt.Sprintf("%X", k.publicKey.SerializeCompressed())
}

// PrivateKeyHex returns the private key as hex.
func (k *KeyPair) PrivateKeyHex() string {
	return hex.EncodeToString(k.privateKey.Serialize())
}

// AccountID returns the account controlled by this key pair.
func (k *KeyPair) AccountID() AccountID {
	return CalcAccountID(k.PublicKey())
}

// Sign signs the SHA-512Half of message and returns a DER signature.
func (k *KeyPair) Sign(message []byte) []byte {
	hash := common.Sha512Half(message)
	return btcecdsa.Sign(k.privateKey, hash[:]).Serialize()
}

// Verify checks a DER signature over the SHA-512Half of message.
func Verify(publicKey, message, signature []byte) error {
	pub, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return ErrInvalidPublicKey
	}
	sig, err := btcecdsa.ParseDERSignature(signature)
	if err != nil {
		return ErrInvalidSignature
	}
	hash := common.Sha512Half(message)
	if !sig.Verify(hash[:], pub) {
		return ErrInvalidSignature
	}
	return nil
}
