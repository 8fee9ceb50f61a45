// Package memory implements db.KVStore over an in-process ordered btree.
// Iterators and transactions work on copy-on-write snapshots of the tree, and
// transactions use optimistic concurrency control: Commit fails with
// db.ErrConflict if any key the transaction read or wrote was committed by
// someone else after the transaction began.
package memory

import (
	"bytes"
	"sync"
	"sync/atomic"

	"github.com/google/btree"

	"github.com/eigerco/kvstore/pkg/db"
)

const degree = 32

type item struct {
	key   []byte
	value []byte
}

func less(a, b item) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// KVStore is a volatile db.KVStore, everything is lost on Close.
type KVStore struct {
	mu       sync.Mutex
	tree     *btree.BTreeG[item]
	version  uint64
	versions map[string]uint64 // commit version of the last write per key
	closed   atomic.Bool
}

func NewKVStore() *KVStore {
	return &KVStore{
		tree:     btree.NewG[item](degree, less),
		versions: make(map[string]uint64),
	}
}

func (s *KVStore) Get(key []byte) ([]byte, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s.tree, key)
}

func (s *KVStore) Put(key, value []byte) error {
	if s.closed.Load() {
		return db.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(map[string]mutation{string(key): {value: value}})
	return nil
}

func (s *KVStore) Delete(key []byte) error {
	if s.closed.Load() {
		return db.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(map[string]mutation{string(key): {deleted: true}})
	return nil
}

func (s *KVStore) NewIterator(start []byte, dir db.Direction) (db.Iterator, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	return newIterator(s.snapshot(), start, dir, nil), nil
}

func (s *KVStore) Begin() (db.Tx, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Tx{
		store:        s,
		snap:         s.tree.Clone(),
		startVersion: s.version,
		reads:        make(map[string]struct{}),
		writes:       make(map[string]mutation),
	}, nil
}

func (s *KVStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Clear(false)
	s.versions = make(map[string]uint64)
	return nil
}

// snapshot clones the tree, Clone is not safe to call concurrently.
func (s *KVStore) snapshot() *btree.BTreeG[item] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone()
}

type mutation struct {
	value   []byte
	deleted bool
}

// apply writes the mutations as one commit version, callers hold s.mu.
func (s *KVStore) apply(writes map[string]mutation) {
	s.version++
	for key, m := range writes {
		if m.deleted {
			s.tree.Delete(item{key: []byte(key)})
		} else {
			s.tree.ReplaceOrInsert(item{key: []byte(key), value: bytes.Clone(m.value)})
		}
		s.versions[key] = s.version
	}
}

func get(tree *btree.BTreeG[item], key []byte) ([]byte, error) {
	found, ok := tree.Get(item{key: key})
	if !ok {
		return nil, db.ErrNotFound
	}
	return bytes.Clone(found.value), nil
}
