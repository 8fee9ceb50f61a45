package keys

import (
	"math"
	"sort"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/kvstore/pkg/crypto"
)

// assertOrderPreserved checks a <= b iff encode(a) <= encode(b) for every pair.
func assertOrderPreserved[T any](t *testing.T, values []T, lessEq func(a, b T) bool, encode func(T) string) {
	t.Helper()
	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, lessEq(a, b), encode(a) <= encode(b), "a=%v b=%v", a, b)
		}
	}
}

func TestUintEncodingWidth(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		expected string
	}{
		{name: "uint8 zero", encoded: Uint8(0), expected: "00"},
		{name: "uint8 max", encoded: Uint8(math.MaxUint8), expected: "ff"},
		{name: "uint16", encoded: Uint16(0xab), expected: "00ab"},
		{name: "uint32", encoded: Uint32(1), expected: "00000001"},
		{name: "uint64 max", encoded: Uint64(math.MaxUint64), expected: "ffffffffffffffff"},
		{name: "counter", encoded: Counter(42), expected: "000000000000002a"},
		{name: "uint128", encoded: U128(Uint128{Hi: 1, Lo: 2}), expected: "00000000000000010000000000000002"},
		{name: "timestamp", encoded: Timestamp(1_700_000_000_000_000).Key(), expected: "000000000000000000000001700000000000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.encoded)
		})
	}
	assert.Len(t, Timestamp(0).Key(), 39)
	assert.Len(t, Timestamp(math.MaxUint64).Key(), 39)
}

func TestOrderPreservation(t *testing.T) {
	t.Run("uint8", func(t *testing.T) {
		values := []uint8{0, 1, 2, 15, 16, math.MaxUint8 - 1, math.MaxUint8}
		for i := 0; i < 20; i++ {
			values = append(values, gofakeit.Uint8())
		}
		assertOrderPreserved(t, values, func(a, b uint8) bool { return a <= b }, Uint8)
	})

	t.Run("uint16", func(t *testing.T) {
		values := []uint16{0, 1, 0xff, 0x100, math.MaxUint16 - 1, math.MaxUint16}
		for i := 0; i < 20; i++ {
			values = append(values, gofakeit.Uint16())
		}
		assertOrderPreserved(t, values, func(a, b uint16) bool { return a <= b }, Uint16)
	})

	t.Run("uint32", func(t *testing.T) {
		values := []uint32{0, 1, 0xffff, 0x10000, math.MaxUint32 - 1, math.MaxUint32}
		for i := 0; i < 20; i++ {
			values = append(values, gofakeit.Uint32())
		}
		assertOrderPreserved(t, values, func(a, b uint32) bool { return a <= b }, Uint32)
	})

	t.Run("uint64", func(t *testing.T) {
		values := []uint64{0, 1, 9, 10, 0xffffffff, math.MaxUint64 - 1, math.MaxUint64}
		for i := 0; i < 20; i++ {
			values = append(values, gofakeit.Uint64())
		}
		assertOrderPreserved(t, values, func(a, b uint64) bool { return a <= b }, Counter)
	})

	t.Run("uint128", func(t *testing.T) {
		values := []Uint128{
			{}, {Lo: 1}, {Lo: math.MaxUint64}, {Hi: 1},
			{Hi: math.MaxUint64, Lo: math.MaxUint64 - 1}, {Hi: math.MaxUint64, Lo: math.MaxUint64},
		}
		for i := 0; i < 20; i++ {
			values = append(values, Uint128{Hi: gofakeit.Uint64(), Lo: gofakeit.Uint64()})
		}
		assertOrderPreserved(t, values, func(a, b Uint128) bool { return !b.Less(a) }, U128)
	})

	t.Run("timestamp", func(t *testing.T) {
		values := []Timestamp{0, 1, 9, 10, 999_999, 1_000_000, math.MaxUint64 - 1, math.MaxUint64}
		for i := 0; i < 20; i++ {
			ts, err := TimestampFromTime(gofakeit.DateRange(time.Unix(0, 0), time.Now()))
			require.NoError(t, err)
			values = append(values, ts)
		}
		assertOrderPreserved(t, values, func(a, b Timestamp) bool { return a <= b }, Timestamp.Key)
	})

	t.Run("fixed size identifiers", func(t *testing.T) {
		var values []crypto.Hash
		for i := 0; i < 20; i++ {
			values = append(values, crypto.HashData([]byte(gofakeit.Word())))
		}
		values = append(values, crypto.Hash{})
		lessEq := func(a, b crypto.Hash) bool { return string(a[:]) <= string(b[:]) }
		assertOrderPreserved(t, values, lessEq, Display[crypto.Hash])
	})
}

func TestCompositeKeys(t *testing.T) {
	addr := crypto.Address{1}
	ts := Timestamp(5)

	assert.Equal(t, Uint8(1)+"_"+Uint8(2), Tuple(Uint8(1), Uint8(2)))
	assert.Equal(t, addr.String()+"_"+ts.Key()+"_"+Counter(7), Join(Display(addr), ts.Key(), Counter(7)))
	assert.Equal(t, "01_02_03", List([]uint8{1, 2, 3}, Uint8))
	assert.Equal(t, "", List([]uint8{}, Uint8))
	assert.Equal(t, []string{"01", "02"}, Split(Tuple(Uint8(1), Uint8(2))))
}

// Keys sharing a prefix component sort contiguously.
func TestPrefixContiguity(t *testing.T) {
	var all []string
	for _, group := range []uint32{0, 1, 2, math.MaxUint32} {
		for _, seq := range []uint64{0, 1, 255, math.MaxUint64} {
			all = append(all, Tuple(Uint32(group), Counter(seq)))
		}
	}
	sort.Strings(all)

	from, to := PrefixRange(Uint32(1))
	var inRange []string
	for _, k := range all {
		if from <= k && k <= to {
			inRange = append(inRange, k)
		}
	}
	assert.Equal(t, []string{
		Tuple(Uint32(1), Counter(0)),
		Tuple(Uint32(1), Counter(1)),
		Tuple(Uint32(1), Counter(255)),
		Tuple(Uint32(1), Counter(math.MaxUint64)),
	}, inRange)
}

func TestParse(t *testing.T) {
	ts := Timestamp(1_234_567)
	parsed, err := ParseTimestamp(ts.Key())
	require.NoError(t, err)
	assert.Equal(t, ts, parsed)

	v, err := ParseUint64(Counter(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v)

	_, err = ParseTimestamp("12")
	assert.ErrorIs(t, err, ErrInvalidEncoded)
	_, err = ParseUint64("zzzzzzzzzzzzzzzz")
	assert.ErrorIs(t, err, ErrInvalidEncoded)
}

func TestTimestampFromTime(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 123_456_000, time.UTC)
	ts, err := TimestampFromTime(now)
	require.NoError(t, err)
	assert.True(t, now.Equal(ts.Time()))

	_, err = TimestampFromTime(time.Unix(-1, 0))
	assert.ErrorIs(t, err, ErrBeforeEpoch)
}
