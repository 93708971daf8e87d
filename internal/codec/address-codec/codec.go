// Package addresscodec encodes account ids, mints and derived addresses as
// base58check strings.
package addresscodec

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58/base58"
)

const (
	// AccountPrefix is the version byte for account and contract addresses.
	AccountPrefix byte = 0x1C

	// SeedPrefix is the version byte for encoded key seeds.
	SeedPrefix byte = 0x21

	// ChecksumLen is the length of the base58check checksum.
	ChecksumLen = 4

	accountIDLen = 20
)

var (
	ErrInvalidLength   = errors.New("invalid encoded length")
	ErrInvalidChecksum = errors.New("invalid checksum")
	ErrInvalidPrefix   = errors.New("invalid version prefix")
)

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:ChecksumLen]
}

// Encode base58check-encodes payload with the given version prefix.
func Encode(prefix byte, payload []byte) string {
	buf := make([]byte, 0, 1+len(payload)+ChecksumLen)
	buf = append(buf, prefix)
	buf = append(buf, payload...)
	buf = append(buf, checksum(buf)...)
	return base58.Encode(buf)
}

// Decode reverses Encode, checking the prefix and checksum.
func Decode(prefix byte, encoded string) ([]byte, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("base58 decode: %w", err)
	}
	if len(raw) < 1+ChecksumLen {
		return nil, ErrInvalidLength
	}
	body, sum := raw[:len(raw)-ChecksumLen], raw[len(raw)-ChecksumLen:]
	if !bytes.Equal(checksum(body), sum) {
		return nil, ErrInvalidChecksum
	}
	if body[0] != prefix {
		return nil, ErrInvalidPrefix
	}
	return body[1:], nil
}

// EncodeAccountID encodes a 20-byte account id as an address.
func EncodeAccountID(id [20]byte) string {
	return Encode(AccountPrefix, id[:])
}

// DecodeAccountID parses an address produced by EncodeAccountID.
func DecodeAccountID(address string) ([20]byte, error) {
	var id [20]byte
	payload, err := Decode(AccountPrefix, address)
	if err != nil {
		return id, err
	}
	if len(payload) != accountIDLen {
		return id, ErrInvalidLength
	}
	copy(id[:], payload)
	return id, nil
}

// IsValidAddress reports whether address decodes to an account id.
func IsValidAddress(address string) bool {
	_, err := DecodeAccountID(address)
	return err == nil
}

// EncodeSeed encodes a 16-byte key seed.
func EncodeSeed(seed []byte) string {
	return Encode(SeedPrefix, seed)
}

// DecodeSeed parses a seed produced by EncodeSeed.
func DecodeSeed(encoded string) ([]byte, error) {
	return Decode(SeedPrefix, encoded)
}
