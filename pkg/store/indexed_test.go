package store

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/kvstore/pkg/crypto"
	"github.com/eigerco/kvstore/pkg/keys"
)

type note struct {
	Text string
}

func (n note) Hash() crypto.Hash {
	return crypto.HashData([]byte(n.Text))
}

func TestIndexedHash(t *testing.T) {
	ts, err := keys.TimestampFromTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	a := NewIndexed(ts, note{Text: "hello"})
	b := NewIndexed(ts, note{Text: "hello"})
	assert.Equal(t, a.Hash(), b.Hash())

	var index [16]byte
	binary.LittleEndian.PutUint64(index[:], ts.Micros())
	valueHash := note{Text: "hello"}.Hash()
	want := crypto.HashData(append(index[:], valueHash[:]...))
	assert.Equal(t, want, a.Hash())

	assert.NotEqual(t, a.Hash(), NewIndexed(ts+1, note{Text: "hello"}).Hash())
	assert.NotEqual(t, a.Hash(), NewIndexed(ts, note{Text: "hello!"}).Hash())
	assert.NotEqual(t, a.Hash(), a.Value.Hash())
}

func TestIndexedKeyOrder(t *testing.T) {
	forEachEngine(t, func(t *testing.T, d *DB) {
		base := keys.Timestamp(1_700_000_000_000_000)
		for _, offset := range []keys.Timestamp{30, 2, 1_000_000, 0} {
			item := NewIndexed(base+offset, note{Text: "n"})
			require.NoError(t, Put(d, keys.Join("notes", item.Key()), item))
		}

		from, to := keys.PrefixRange("notes")
		items, err := ListValues[Indexed[note]](d, from, to, NoLimit)
		require.NoError(t, err)
		require.Len(t, items, 4)
		for i, off := range []keys.Timestamp{0, 2, 30, 1_000_000} {
			assert.Equal(t, base+off, items[i].Index)
		}

		got, err := Get[Indexed[note]](d, keys.Join("notes", (base + 2).Key()))
		require.NoError(t, err)
		assert.Equal(t, items[1].Hash(), got.Hash())
	})
}
