package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	HashSize    = 32
	AddressSize = 20
)

var ErrInvalidLength = errors.New("invalid length")

type Hash [HashSize]byte

// Address identifies an account or contract.
type Address [AddressSize]byte

func HashData(data []byte) Hash {
	hash := blake2b.Sum256(data)
	return hash
}

// HashConcat hashes the concatenation of parts without building it in memory first.
func HashConcat(parts ...[]byte) Hash {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	for _, p := range parts {
		h.Write(p)
	}
	var result Hash
	copy(result[:], h.Sum(nil))
	return result
}

// String is the canonical display form, used as the key encoding of a hash.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// HashFromHex parses a 0x prefixed or bare hex string.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	if err := decodeFixed(s, h[:]); err != nil {
		return Hash{}, err
	}
	return h, nil
}

// AddressFromHex parses a 0x prefixed or bare hex string.
func AddressFromHex(s string) (Address, error) {
	var a Address
	if err := decodeFixed(s, a[:]); err != nil {
		return Address{}, err
	}
	return a, nil
}

func decodeFixed(s string, dst []byte) error {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), len(dst))
	}
	copy(dst, b)
	return nil
}
