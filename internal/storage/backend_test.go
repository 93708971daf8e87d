package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDB(t *testing.T) {
	ctx := context.Background()

	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			db, err := OpenDB(backend, t.TempDir())
			require.NoError(t, err)
			defer db.Close()

			require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
			got, err := db.Read(ctx, []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, "v", string(got))
		})
	}
}

func TestOpenDBErrors(t *testing.T) {
	_, err := OpenDB("rocksdb", t.TempDir())
	assert.ErrorContains(t, err, "unknown storage backend")

	_, err = OpenDB(BackendPebble, "")
	assert.ErrorContains(t, err, "requires a data directory")
}
