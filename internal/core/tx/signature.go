package tx

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/crypto"
	common "github.com/LeJamon/coveredcall/internal/crypto/common"
	"github.com/ugorji/go/codec"
)

var (
	// signingPrefix is prepended to the fields covered by TxnSignature.
	signingPrefix = []byte{'S', 'T', 'X', 0x00}
	// hashPrefix is prepended to the full transaction to form its ID.
	hashPrefix = []byte{'T', 'X', 'N', 0x00}
)

var (
	ErrMissingSignature = errors.New("transaction is not signed")
	ErrSignerMismatch   = errors.New("signing key does not belong to Account")
)

// fields returns the JSON fields of tx with numbers kept exact.
func fields(tx Transaction) (map[string]any, error) {
	raw, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func canonicalBytes(prefix []byte, m map[string]any) ([]byte, error) {
	out := append([]byte{}, prefix...)
	if err := codec.NewEncoderBytes(&out, entry.Handle()).Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}
	return out, nil
}

// SigningBytes returns the canonical bytes covered by the signature: every
// field except TxnSignature.
func SigningBytes(tx Transaction) ([]byte, error) {
	m, err := fields(tx)
	if err != nil {
		return nil, err
	}
	delete(m, "TxnSignature")
	return canonicalBytes(signingPrefix, m)
}

// TransactionHash identifies a transaction, signature included.
func TransactionHash(tx Transaction) ([32]byte, error) {
	m, err := fields(tx)
	if err != nil {
		return [32]byte{}, err
	}
	b, err := canonicalBytes(hashPrefix, m)
	if err != nil {
		return [32]byte{}, err
	}
	return common.Sha512Half(b), nil
}

// Sign fills SigningPubKey and TxnSignature using kp.
func Sign(tx Transaction, kp *crypto.KeyPair) error {
	c := tx.GetCommon()
	c.SigningPubKey = strings.ToUpper(kp.PublicKeyHex())
	c.TxnSignature = ""

	msg, err := SigningBytes(tx)
	if err != nil {
		return err
	}
	c.TxnSignature = strings.ToUpper(hex.EncodeToString(kp.Sign(msg)))
	return nil
}

// VerifySignature checks that TxnSignature is valid and that SigningPubKey
// controls Account.
func VerifySignature(tx Transaction) error {
	c := tx.GetCommon()
	if c.SigningPubKey == "" || c.TxnSignature == "" {
		return ErrMissingSignature
	}

	pub, err := hex.DecodeString(c.SigningPubKey)
	if err != nil {
		return fmt.Errorf("bad SigningPubKey: %w", err)
	}
	sig, err := hex.DecodeString(c.TxnSignature)
	if err != nil {
		return fmt.Errorf("bad TxnSignature: %w", err)
	}

	account, err := c.AccountID()
	if err != nil {
		return err
	}
	if crypto.CalcAccountID(pub) != account {
		return ErrSignerMismatch
	}

	msg, err := SigningBytes(tx)
	if err != nil {
		return err
	}
	return crypto.Verify(pub, msg, sig)
}
