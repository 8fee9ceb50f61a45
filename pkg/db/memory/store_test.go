package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/kvstore/pkg/db"
	"github.com/eigerco/kvstore/pkg/db/dbtest"
)

func TestKVStore(t *testing.T) {
	dbtest.RunKVStoreTests(t, func(t *testing.T) db.KVStore {
		return NewKVStore()
	})
}

func TestTxConflict(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, tx db.Tx)
	}{
		{
			name: "read_then_write",
			prepare: func(t *testing.T, tx db.Tx) {
				_, err := tx.Get([]byte("shared"))
				require.NoError(t, err)
				require.NoError(t, tx.Put([]byte("shared"), []byte("second")))
			},
		},
		{
			name: "blind_write",
			prepare: func(t *testing.T, tx db.Tx) {
				require.NoError(t, tx.Put([]byte("shared"), []byte("second")))
			},
		},
		{
			name: "iterated_key",
			prepare: func(t *testing.T, tx db.Tx) {
				iter, err := tx.NewIterator(nil, db.Forward)
				require.NoError(t, err)
				for iter.Next() {
				}
				require.NoError(t, iter.Close())
				require.NoError(t, tx.Put([]byte("other"), []byte("x")))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := NewKVStore()
			require.NoError(t, store.Put([]byte("shared"), []byte("initial")))

			tx1, err := store.Begin()
			require.NoError(t, err)
			tx2, err := store.Begin()
			require.NoError(t, err)

			tc.prepare(t, tx2)

			require.NoError(t, tx1.Put([]byte("shared"), []byte("first")))
			require.NoError(t, tx1.Commit())

			assert.ErrorIs(t, tx2.Commit(), db.ErrConflict)

			value, err := store.Get([]byte("shared"))
			require.NoError(t, err)
			assert.Equal(t, []byte("first"), value)
		})
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := NewKVStore()
	require.NoError(t, store.Put([]byte("a"), []byte("1")))

	iter, err := store.NewIterator(nil, db.Forward)
	require.NoError(t, err)
	defer iter.Close() //nolint:errcheck

	// Writes after the iterator was created are not observed by it
	require.NoError(t, store.Put([]byte("b"), []byte("2")))

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	assert.Equal(t, []string{"a"}, keys)
}
