package db

// Direction selects the order in which an Iterator walks the keyspace.
type Direction uint8

const (
	// Forward walks keys in ascending byte order, starting at the first key >= start.
	Forward Direction = iota
	// Reverse walks keys in descending byte order, starting at the last key <= start.
	Reverse
)

// Reader is the read half of the byte-store capability.
type Reader interface {
	// Get returns ErrNotFound if the key is absent.
	Get(key []byte) ([]byte, error)
	// NewIterator creates a lazy iterator positioned before start.
	// A nil start means the first key (Forward) or the last key (Reverse).
	NewIterator(start []byte, dir Direction) (Iterator, error)
}

// Writer is the write half of the byte-store capability.
type Writer interface {
	Put(key []byte, value []byte) error
	// Delete is idempotent, deleting an absent key is not an error.
	Delete(key []byte) error
}

// ReadWriter is implemented both by a database and by a transaction open
// against it, so callers never need to know which one they hold.
type ReadWriter interface {
	Reader
	Writer
}

// KVStore represents a key-value storage providing basic operations
// for data manipulation, iteration and transactions.
// Writes issued directly on a KVStore are committed immediately.
type KVStore interface {
	ReadWriter
	Begin() (Tx, error)
	Close() error
}

// Tx is an open transaction. Its writes are visible to its own reads and
// become visible to others (and durable) only after Commit.
// Exactly one of Commit or Rollback must be called.
type Tx interface {
	ReadWriter
	Commit() error
	Rollback() error
}

// Iterator provides sequential access over a range of key-value pairs.
// The first call to Next positions the iterator. Iterators must be closed after use.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() ([]byte, error)
	Valid() bool
	Close() error
}
