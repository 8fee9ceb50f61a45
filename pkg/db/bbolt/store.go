package bbolt

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"

	"github.com/eigerco/kvstore/pkg/db"
)

const (
	dbFileName = "data.db"
	rootBucket = "root"
)

type config struct {
	sync    bool
	timeout time.Duration
}

// Option configures a bbolt backed KVStore.
type Option func(*config)

// WithSyncWrites controls whether commits fsync the data file. Enabled by default.
func WithSyncWrites(sync bool) Option {
	return func(c *config) { c.sync = sync }
}

// WithOpenTimeout bounds how long Open waits for the file lock.
func WithOpenTimeout(timeout time.Duration) Option {
	return func(c *config) { c.timeout = timeout }
}

// KVStore implements db.KVStore on top of a single bbolt bucket.
// bbolt allows one writable transaction at a time, so transactions never
// conflict. Beginning a transaction blocks until the current writer finishes,
// and writing through the KVStore from the goroutine holding an open
// transaction deadlocks.
type KVStore struct {
	db     *bbolt.DB
	closed atomic.Bool
}

// NewKVStore opens (creating if needed) the data file inside dir.
func NewKVStore(dir string, opts ...Option) (*KVStore, error) {
	cfg := config{sync: true, timeout: time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	bdb, err := bbolt.Open(filepath.Join(dir, dbFileName), 0o600, &bbolt.Options{
		Timeout: cfg.timeout,
		NoSync:  !cfg.sync,
	})
	if err != nil {
		return nil, err
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		return err
	})
	if err != nil {
		return nil, errors.Join(err, bdb.Close())
	}
	return &KVStore{db: bdb}, nil
}

func (s *KVStore) Get(key []byte) ([]byte, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		value, err = getValue(tx, key)
		return err
	})
	return value, err
}

func (s *KVStore) Put(key, value []byte) error {
	if s.closed.Load() {
		return db.ErrClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return bucket(tx).Put(key, value)
	})
}

func (s *KVStore) Delete(key []byte) error {
	if s.closed.Load() {
		return db.ErrClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return bucket(tx).Delete(key)
	})
}

// NewIterator holds a read-only transaction open until the iterator is closed.
func (s *KVStore) NewIterator(start []byte, dir db.Direction) (db.Iterator, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, err
	}
	return newIterator(tx, start, dir, true), nil
}

func (s *KVStore) Begin() (db.Tx, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	tx, err := s.db.Begin(true)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

func (s *KVStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func bucket(tx *bbolt.Tx) *bbolt.Bucket {
	return tx.Bucket([]byte(rootBucket))
}

// getValue copies the value out, bbolt memory is only valid for the life of the transaction.
func getValue(tx *bbolt.Tx, key []byte) ([]byte, error) {
	value := bucket(tx).Get(key)
	if value == nil {
		return nil, db.ErrNotFound
	}
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}
