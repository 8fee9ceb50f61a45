package store

import (
	"encoding/binary"

	"github.com/eigerco/kvstore/pkg/crypto"
	"github.com/eigerco/kvstore/pkg/keys"
)

// Hasher is implemented by values that have a content hash.
type Hasher interface {
	Hash() crypto.Hash
}

// Indexed pairs a value with the timestamp it is ordered by.
type Indexed[T Hasher] struct {
	Index keys.Timestamp `json:"index"`
	Value T              `json:"value"`
}

func NewIndexed[T Hasher](index keys.Timestamp, value T) Indexed[T] {
	return Indexed[T]{Index: index, Value: value}
}

// Hash commits to both the index and the value: blake2b-256 over the
// microsecond count as 16 little-endian bytes followed by the value hash.
func (i Indexed[T]) Hash() crypto.Hash {
	var index [16]byte
	binary.LittleEndian.PutUint64(index[:8], uint64(i.Index))
	valueHash := i.Value.Hash()
	return crypto.HashConcat(index[:], valueHash[:])
}

// Key is the encoded index.
func (i Indexed[T]) Key() string {
	return i.Index.Key()
}
