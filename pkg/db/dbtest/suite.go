// Package dbtest holds the conformance suite every db.KVStore engine must pass.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/kvstore/pkg/db"
)

// Factory opens a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) db.KVStore

// RunKVStoreTests runs the shared behaviour checks against the engine built by newStore.
func RunKVStoreTests(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store db.KVStore)
	}{
		{name: "basic_put_get", fn: testBasicPutGet},
		{name: "delete_operations", fn: testDelete},
		{name: "forward_iteration", fn: testForwardIteration},
		{name: "reverse_iteration", fn: testReverseIteration},
		{name: "full_range_iteration", fn: testFullRangeIteration},
		{name: "iterator_validity", fn: testIteratorValidity},
		{name: "tx_read_your_writes", fn: testTxReadYourWrites},
		{name: "tx_rollback", fn: testTxRollback},
		{name: "tx_commit", fn: testTxCommit},
		{name: "tx_done", fn: testTxDone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close() //nolint:errcheck

			tc.fn(t, store)
		})
	}

	t.Run("store_closure", func(t *testing.T) {
		testStoreClosure(t, newStore(t))
	})
}

func putAll(t *testing.T, w db.Writer, keys ...string) {
	for _, k := range keys {
		require.NoError(t, w.Put([]byte(k), []byte("value-"+k)))
	}
}

func collect(t *testing.T, r db.Reader, start []byte, dir db.Direction) []string {
	iter, err := r.NewIterator(start, dir)
	require.NoError(t, err)
	defer iter.Close() //nolint:errcheck

	var keys []string
	for iter.Next() {
		value, err := iter.Value()
		require.NoError(t, err)
		assert.Equal(t, "value-"+string(iter.Key()), string(value))
		keys = append(keys, string(iter.Key()))
	}
	return keys
}

func testBasicPutGet(t *testing.T, store db.KVStore) {
	key := []byte("test-key")
	value := []byte("test-value")

	err := store.Put(key, value)
	require.NoError(t, err)

	retrieved, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, retrieved)

	// Overwrite
	err = store.Put(key, []byte("other"))
	require.NoError(t, err)
	retrieved, err = store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("other"), retrieved)

	// Test non-existent key
	_, err = store.Get([]byte("non-existent"))
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func testDelete(t *testing.T, store db.KVStore) {
	key := []byte("delete-test")

	err := store.Put(key, []byte("to-be-deleted"))
	require.NoError(t, err)

	err = store.Delete(key)
	require.NoError(t, err)

	_, err = store.Get(key)
	assert.ErrorIs(t, err, db.ErrNotFound)

	// Deleting twice and deleting a non-existent key should not error
	assert.NoError(t, store.Delete(key))
	assert.NoError(t, store.Delete([]byte("non-existent")))
}

func testForwardIteration(t *testing.T, store db.KVStore) {
	putAll(t, store, "a", "b", "d", "e")

	assert.Equal(t, []string{"b", "d", "e"}, collect(t, store, []byte("b"), db.Forward))
	// Start between keys lands on the next one
	assert.Equal(t, []string{"d", "e"}, collect(t, store, []byte("c"), db.Forward))
	assert.Empty(t, collect(t, store, []byte("f"), db.Forward))
}

func testReverseIteration(t *testing.T, store db.KVStore) {
	putAll(t, store, "a", "b", "d", "e")

	// Start key itself is included
	assert.Equal(t, []string{"d", "b", "a"}, collect(t, store, []byte("d"), db.Reverse))
	// Start between keys lands on the previous one
	assert.Equal(t, []string{"b", "a"}, collect(t, store, []byte("c"), db.Reverse))
	// Start past the end lands on the last key
	assert.Equal(t, []string{"e", "d", "b", "a"}, collect(t, store, []byte("z"), db.Reverse))
	assert.Empty(t, collect(t, store, []byte("0"), db.Reverse))
}

func testFullRangeIteration(t *testing.T, store db.KVStore) {
	putAll(t, store, "c", "a", "d", "b")

	assert.Equal(t, []string{"a", "b", "c", "d"}, collect(t, store, nil, db.Forward))
	assert.Equal(t, []string{"d", "c", "b", "a"}, collect(t, store, nil, db.Reverse))
}

func testIteratorValidity(t *testing.T, store db.KVStore) {
	putAll(t, store, "key1", "key2")

	iter, err := store.NewIterator(nil, db.Forward)
	require.NoError(t, err)
	defer iter.Close() //nolint:errcheck

	// Initial state - iterator is not positioned
	assert.False(t, iter.Valid())

	// First Next() should position at first element
	assert.True(t, iter.Next())
	assert.True(t, iter.Valid())
	assert.Equal(t, "key1", string(iter.Key()))

	assert.True(t, iter.Next())
	assert.Equal(t, "key2", string(iter.Key()))

	// No more elements
	assert.False(t, iter.Next())
	assert.False(t, iter.Valid())

	// Value() should error when invalid
	_, err = iter.Value()
	assert.ErrorIs(t, err, db.ErrIteratorInvalid)
}

func testTxReadYourWrites(t *testing.T, store db.KVStore) {
	putAll(t, store, "a", "c")

	tx, err := store.Begin()
	require.NoError(t, err)
	defer tx.Rollback() //nolint:errcheck

	putAll(t, tx, "b")
	require.NoError(t, tx.Delete([]byte("c")))

	value, err := tx.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, "value-b", string(value))

	_, err = tx.Get([]byte("c"))
	assert.ErrorIs(t, err, db.ErrNotFound)

	assert.Equal(t, []string{"a", "b"}, collect(t, tx, nil, db.Forward))
	assert.Equal(t, []string{"b", "a"}, collect(t, tx, []byte("b"), db.Reverse))

	require.NoError(t, tx.Commit())
}

func testTxRollback(t *testing.T, store db.KVStore) {
	putAll(t, store, "a")

	tx, err := store.Begin()
	require.NoError(t, err)

	putAll(t, tx, "b", "c")
	require.NoError(t, tx.Delete([]byte("a")))
	require.NoError(t, tx.Rollback())

	assert.Equal(t, []string{"a"}, collect(t, store, nil, db.Forward))
}

func testTxCommit(t *testing.T, store db.KVStore) {
	putAll(t, store, "a")

	tx, err := store.Begin()
	require.NoError(t, err)

	putAll(t, tx, "b", "c")
	require.NoError(t, tx.Delete([]byte("a")))
	require.NoError(t, tx.Commit())

	assert.Equal(t, []string{"b", "c"}, collect(t, store, nil, db.Forward))
}

func testTxDone(t *testing.T, store db.KVStore) {
	tx, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	// Operations after commit should fail
	assert.ErrorIs(t, tx.Put([]byte("k"), []byte("v")), db.ErrTxDone)
	assert.ErrorIs(t, tx.Delete([]byte("k")), db.ErrTxDone)
	_, err = tx.Get([]byte("k"))
	assert.ErrorIs(t, err, db.ErrTxDone)
	assert.ErrorIs(t, tx.Commit(), db.ErrTxDone)

	// Rollback after commit is a no-op
	assert.NoError(t, tx.Rollback())
}

func testStoreClosure(t *testing.T, store db.KVStore) {
	err := store.Close()
	require.NoError(t, err)

	// Test operations after close
	_, err = store.Get([]byte("key"))
	assert.ErrorIs(t, err, db.ErrClosed)

	err = store.Put([]byte("key"), []byte("value"))
	assert.ErrorIs(t, err, db.ErrClosed)

	err = store.Delete([]byte("key"))
	assert.ErrorIs(t, err, db.ErrClosed)

	_, err = store.Begin()
	assert.ErrorIs(t, err, db.ErrClosed)

	// Double close should not error
	err = store.Close()
	assert.NoError(t, err)
}
