package db

import "errors"

var (
	ErrClosed          = errors.New("kv-store: database is closed")
	ErrNotFound        = errors.New("kv-store: key not found")
	ErrConflict        = errors.New("kv-store: transaction conflict")
	ErrTxDone          = errors.New("kv-store: transaction already committed or rolled back")
	ErrIteratorInvalid = errors.New("kv-store: iterator is not positioned")
)

const (
	ErrInIteratorCreation = "failed to create iterator: %w"
	ErrIteratorValue      = "failed to get iterator value: %w"
)

// Successor returns the smallest key strictly greater than key.
func Successor(key []byte) []byte {
	next := make([]byte, len(key)+1)
	copy(next, key)
	return next
}
