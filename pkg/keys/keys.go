// Package keys encodes typed values into string keys whose byte-wise order
// matches the natural order of the values, so range scans over encoded keys
// walk the values in order.
//
// The layout is fixed and must stay bit-for-bit stable across releases:
//
//	uint of W bits      lowercase hex, zero padded to W/4 digits
//	counter             16 lowercase hex digits
//	timestamp           microseconds, decimal, zero padded to 39 digits
//	hash, address       the value's String() form
//	tuple, list         parts joined with "_"
package keys

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Delimiter joins the parts of a composite key.
const Delimiter = "_"

// rangeEnd sorts above every printable ASCII byte used by part encodings.
const rangeEnd = "\x7f"

func Uint8(v uint8) string {
	return fmt.Sprintf("%02x", v)
}

func Uint16(v uint16) string {
	return fmt.Sprintf("%04x", v)
}

func Uint32(v uint32) string {
	return fmt.Sprintf("%08x", v)
}

func Uint64(v uint64) string {
	return fmt.Sprintf("%016x", v)
}

// Counter encodes a monotonically increasing 64-bit sequence number.
func Counter(v uint64) string {
	return Uint64(v)
}

// Uint128 is an unsigned 128-bit integer split in two halves.
type Uint128 struct {
	Hi, Lo uint64
}

func (u Uint128) Key() string {
	return fmt.Sprintf("%016x%016x", u.Hi, u.Lo)
}

func (u Uint128) Less(other Uint128) bool {
	return u.Hi < other.Hi || (u.Hi == other.Hi && u.Lo < other.Lo)
}

func U128(v Uint128) string {
	return v.Key()
}

// Display encodes fixed-size identifiers (hashes, addresses) by their display form.
// It only preserves order when every value of T renders to the same length.
func Display[T fmt.Stringer](v T) string {
	return v.String()
}

// Bytes encodes a byte array as lowercase hex, order preserving for equal lengths.
func Bytes(b []byte) string {
	return hex.EncodeToString(b)
}

// Join builds a composite key from already encoded parts.
func Join(parts ...string) string {
	return strings.Join(parts, Delimiter)
}

// Tuple encodes a pair of encoded parts.
func Tuple(u, v string) string {
	return Join(u, v)
}

// List encodes every item with encode and joins the results.
func List[T any](items []T, encode func(T) string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = encode(item)
	}
	return Join(parts...)
}

// Prefix returns the joined parts followed by the delimiter. Every composite key
// that starts with these parts starts with the returned prefix.
func Prefix(parts ...string) string {
	return Join(parts...) + Delimiter
}

// PrefixRange returns inclusive bounds covering every composite key below the parts.
func PrefixRange(parts ...string) (from, to string) {
	prefix := Prefix(parts...)
	return prefix, prefix + rangeEnd
}

// Split breaks a composite key into its encoded parts.
func Split(key string) []string {
	return strings.Split(key, Delimiter)
}
