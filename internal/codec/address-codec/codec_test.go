package addresscodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountIDRoundTrip(t *testing.T) {
	var id [20]byte
	for i := range id {
		id[i] = byte(i * 7)
	}

	address := EncodeAccountID(id)
	assert.True(t, IsValidAddress(address))

	decoded, err := DecodeAccountID(address)
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestDecodeRejectsCorruption(t *testing.T) {
	var id [20]byte
	id[0] = 0xAB
	address := EncodeAccountID(id)

	corrupted := []byte(address)
	if corrupted[5] == 'a' {
		corrupted[5] = 'b'
	} else {
		corrupted[5] = 'a'
	}
	_, err := DecodeAccountID(string(corrupted))
	require.Error(t, err)

	_, err = DecodeAccountID(EncodeSeed(make([]byte, 16)))
	require.ErrorIs(t, err, ErrInvalidPrefix)

	_, err = DecodeAccountID(Encode(AccountPrefix, []byte{1, 2, 3}))
	require.ErrorIs(t, err, ErrInvalidLength)

	_, err = DecodeAccountID("0OIl")
	require.Error(t, err)
}

func TestSeedRoundTrip(t *testing.T) {
	seed := []byte("0123456789abcdef")
	decoded, err := DecodeSeed(EncodeSeed(seed))
	require.NoError(t, err)
	assert.Equal(t, seed, decoded)
}
