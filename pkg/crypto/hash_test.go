package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashConcatMatchesHashData(t *testing.T) {
	a, b := []byte("left"), []byte("right")
	assert.Equal(t, HashData(append(append([]byte{}, a...), b...)), HashConcat(a, b))
}

func TestHexRoundTrip(t *testing.T) {
	h := HashData([]byte("data"))
	parsed, err := HashFromHex(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	addr := Address{0xde, 0xad, 0xbe, 0xef}
	assert.Equal(t, "0xdeadbeef00000000000000000000000000000000", addr.String())
	parsedAddr, err := AddressFromHex(addr.String()[2:])
	require.NoError(t, err)
	assert.Equal(t, addr, parsedAddr)

	_, err = AddressFromHex("0x1234")
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = HashFromHex("0xzz")
	assert.Error(t, err)
}

func TestFromHexErrorsReturnZeroValue(t *testing.T) {
	h, err := HashFromHex("0x" + strings.Repeat("ab", HashSize-1))
	assert.ErrorIs(t, err, ErrInvalidLength)
	assert.Equal(t, Hash{}, h)

	a, err := AddressFromHex(strings.Repeat("cd", AddressSize) + "zz")
	assert.Error(t, err)
	assert.Equal(t, Address{}, a)

	a, err = AddressFromHex(strings.Repeat("cd", AddressSize))
	require.NoError(t, err)
	assert.Equal(t, byte(0xcd), a[AddressSize-1])
}
