package tx

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// DecodeID decodes a required 40 character hex field such as a mint ID.
func DecodeID(field, s string) ([20]byte, error) {
	var out [20]byte
	if s == "" {
		return out, fmt.Errorf("temMALFORMED: %s is required", field)
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(out) {
		return out, fmt.Errorf("temMALFORMED: %s must be %d hex bytes", field, len(out))
	}
	copy(out[:], b)
	return out, nil
}

// DecodeHash decodes a required 64 character hex field such as a ledger
// index.
func DecodeHash(field, s string) ([32]byte, error) {
	var out [32]byte
	if s == "" {
		return out, fmt.Errorf("temMALFORMED: %s is required", field)
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(out) {
		return out, fmt.Errorf("temMALFORMED: %s must be %d hex bytes", field, len(out))
	}
	copy(out[:], b)
	return out, nil
}

// EncodeID renders an ID the way DecodeID accepts it.
func EncodeID(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}
