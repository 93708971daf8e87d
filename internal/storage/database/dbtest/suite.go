// Package dbtest holds the behaviour every database.DB backend must share.
package dbtest

import (
	"context"
	"testing"

	"github.com/LeJamon/coveredcall/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh database returned by open.
func Run(t *testing.T, open func(t *testing.T) database.DB) {
	ctx := context.Background()

	t.Run("ReadWriteDelete", func(t *testing.T) {
		db := open(t)

		_, err := db.Read(ctx, []byte("missing"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v1")))
		got, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v2")))
		got, err = db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)

		require.NoError(t, db.Delete(ctx, []byte("k")))
		_, err = db.Read(ctx, []byte("k"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Batch", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Write(ctx, []byte("gone"), []byte("x")))

		err := db.Batch(ctx, []database.BatchOperation{
			{Type: database.BatchPut, Key: []byte("a"), Value: []byte("1")},
			{Type: database.BatchPut, Key: []byte("b"), Value: []byte("2")},
			{Type: database.BatchDelete, Key: []byte("gone")},
		})
		require.NoError(t, err)

		for k, want := range map[string]string{"a": "1", "b": "2"} {
			got, err := db.Read(ctx, []byte(k))
			require.NoError(t, err)
			assert.Equal(t, want, string(got))
		}
		_, err = db.Read(ctx, []byte("gone"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("BatchRejectsUnknownOp", func(t *testing.T) {
		db := open(t)
		err := db.Batch(ctx, []database.BatchOperation{
			{Type: database.BatchPut, Key: []byte("a"), Value: []byte("1")},
			{Type: database.BatchOpType(42), Key: []byte("b")},
		})
		require.ErrorIs(t, err, database.ErrBatchOperationFailed)

		_, err = db.Read(ctx, []byte("a"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("IteratorRange", func(t *testing.T) {
		db := open(t)
		for _, k := range []string{"d", "a", "c", "b", "e"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("v"+k)))
		}

		collect := func(start, end []byte) []string {
			it, err := db.Iterator(ctx, start, end)
			require.NoError(t, err)
			defer it.Close()

			var keys []string
			for it.Next() {
				keys = append(keys, string(it.Key()))
				assert.Equal(t, "v"+string(it.Key()), string(it.Value()))
			}
			require.NoError(t, it.Error())
			return keys
		}

		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, collect(nil, nil))
		assert.Equal(t, []string{"b", "c"}, collect([]byte("b"), []byte("d")))
		assert.Equal(t, []string{"d", "e"}, collect([]byte("d"), nil))
		assert.Empty(t, collect([]byte("x"), nil))
	})

	t.Run("ReadReturnsCopy", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Write(ctx, []byte("k"), []byte("abc")))

		got, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		got[0] = 'z'

		again, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})
}
