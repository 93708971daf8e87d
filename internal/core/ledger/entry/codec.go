package entry

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"
)

var (
	ErrTruncated    = errors.New("entry data truncated")
	ErrTypeMismatch = errors.New("entry type mismatch")
)

// handle is shared by every encoder; Canonical makes the output stable so
// entries and signing payloads hash the same on every node.
var handle = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.Canonical = true
	h.WriteExt = true
	return h
}()

// Handle returns the canonical MessagePack handle used for ledger data.
func Handle() *codec.MsgpackHandle {
	return handle
}

// Encode serializes an entry as a 2-byte big-endian type tag followed by
// its canonical MessagePack body.
func Encode(e Entry) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", e.Type(), err)
	}

	// The encoder writes from the start of the slice it is given.
	var body []byte
	if err := codec.NewEncoderBytes(&body, handle).Encode(e); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", e.Type(), err)
	}
	out := make([]byte, 2, 2+len(body))
	binary.BigEndian.PutUint16(out, uint16(e.Type()))
	return append(out, body...), nil
}

// TypeOf returns the type tag of serialized entry data.
func TypeOf(data []byte) (Type, error) {
	if len(data) < 2 {
		return 0, ErrTruncated
	}
	return Type(binary.BigEndian.Uint16(data)), nil
}

// Decode parses serialized entry data into a new entry of the right type.
func Decode(data []byte) (Entry, error) {
	t, err := TypeOf(data)
	if err != nil {
		return nil, err
	}

	var e Entry
	switch t {
	case TypeAccountRoot:
		e = &AccountRoot{}
	case TypeMint:
		e = &Mint{}
	case TypeHolding:
		e = &Holding{}
	case TypeOptionContract:
		e = &OptionContract{}
	case TypeExpiryMark:
		e = &ExpiryMark{}
	case TypePriceFeed:
		e = &PriceFeed{}
	default:
		return nil, fmt.Errorf("unknown entry type %s", t)
	}

	if err := DecodeInto(data, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DecodeInto parses serialized entry data into e, which must have the
// matching type.
func DecodeInto(data []byte, e Entry) error {
	t, err := TypeOf(data)
	if err != nil {
		return err
	}
	if t != e.Type() {
		return fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, t, e.Type())
	}
	if err := codec.NewDecoderBytes(data[2:], handle).Decode(e); err != nil {
		return fmt.Errorf("failed to decode %s: %w", t, err)
	}
	return nil
}
