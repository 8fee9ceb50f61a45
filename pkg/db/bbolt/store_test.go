package bbolt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/kvstore/pkg/db"
	"github.com/eigerco/kvstore/pkg/db/dbtest"
)

func newStore(t *testing.T) db.KVStore {
	store, err := NewKVStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestKVStore(t *testing.T) {
	dbtest.RunKVStoreTests(t, newStore)
}

// bbolt serializes writers, a second writable transaction waits for the first to finish.
func TestTxWritersSerialize(t *testing.T) {
	store := newStore(t)
	defer store.Close() //nolint:errcheck

	key := []byte("shared")
	tx1, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, tx1.Put(key, []byte("first")))

	began := make(chan db.Tx)
	go func() {
		tx2, err := store.Begin()
		if err != nil {
			close(began)
			return
		}
		began <- tx2
	}()

	select {
	case <-began:
		t.Fatal("second writer started while the first was open")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, tx1.Commit())

	tx2, ok := <-began
	require.True(t, ok)
	value, err := tx2.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), value)

	require.NoError(t, tx2.Put(key, []byte("second")))
	require.NoError(t, tx2.Commit())

	value, err = store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)
}
