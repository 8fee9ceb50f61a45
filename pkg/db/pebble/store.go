package pebble

import (
	"errors"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/eigerco/kvstore/pkg/db"
)

const defaultCacheSize = 64 * 1024 * 1024 // 64MB

type config struct {
	inMemory  bool
	sync      bool
	cacheSize int64
}

// Option configures a pebble backed KVStore.
type Option func(*config)

// WithInMemory keeps all data in an in-memory filesystem, the path is ignored.
func WithInMemory() Option {
	return func(c *config) { c.inMemory = true }
}

// WithSyncWrites controls whether every write is flushed before returning. Enabled by default.
func WithSyncWrites(sync bool) Option {
	return func(c *config) { c.sync = sync }
}

// WithCacheSize sets the block cache size in bytes.
func WithCacheSize(size int64) Option {
	return func(c *config) { c.cacheSize = size }
}

// KVStore implements db.KVStore on top of a pebble database.
type KVStore struct {
	db     *pebble.DB
	wo     *pebble.WriteOptions
	closed atomic.Bool
}

// NewKVStore opens (creating if needed) a pebble database at path.
func NewKVStore(path string, opts ...Option) (*KVStore, error) {
	cfg := config{sync: true, cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	cache := pebble.NewCache(cfg.cacheSize)
	defer cache.Unref()

	pebbleOpts := &pebble.Options{
		Cache:                       cache,
		MemTableSize:                32 * 1024 * 1024, // 32MB
		MemTableStopWritesThreshold: 4,                // at most 128MB of queued memtables
	}
	if cfg.inMemory {
		pebbleOpts.FS = vfs.NewMem()
	}

	pdb, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		return nil, err
	}

	wo := pebble.Sync
	if !cfg.sync {
		wo = pebble.NoSync
	}
	return &KVStore{db: pdb, wo: wo}, nil
}

func (p *KVStore) Get(key []byte) ([]byte, error) {
	if p.closed.Load() {
		return nil, db.ErrClosed
	}
	return get(p.db, key)
}

func (p *KVStore) Put(key, value []byte) error {
	if p.closed.Load() {
		return db.ErrClosed
	}
	return p.db.Set(key, value, p.wo)
}

func (p *KVStore) Delete(key []byte) error {
	if p.closed.Load() {
		return db.ErrClosed
	}
	return p.db.Delete(key, p.wo)
}

func (p *KVStore) NewIterator(start []byte, dir db.Direction) (db.Iterator, error) {
	if p.closed.Load() {
		return nil, db.ErrClosed
	}
	return newIterator(p.db, start, dir)
}

// Begin opens an indexed batch. Pebble has no conflict detection,
// concurrent transactions writing the same key resolve as last committer wins.
func (p *KVStore) Begin() (db.Tx, error) {
	if p.closed.Load() {
		return nil, db.ErrClosed
	}
	return &Tx{batch: p.db.NewIndexedBatch(), wo: p.wo}, nil
}

func (p *KVStore) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.db.Close()
}

func get(r pebble.Reader, key []byte) ([]byte, error) {
	value, closer, err := r.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close() //nolint:errcheck

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}
