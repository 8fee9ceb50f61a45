package memory

import (
	"bytes"
	"sync/atomic"

	"github.com/google/btree"

	"github.com/eigerco/kvstore/pkg/db"
)

// Tx stages writes on a private snapshot of the tree.
type Tx struct {
	store        *KVStore
	snap         *btree.BTreeG[item]
	startVersion uint64
	reads        map[string]struct{}
	writes       map[string]mutation
	done         atomic.Bool
}

func (t *Tx) Get(key []byte) ([]byte, error) {
	if t.done.Load() {
		return nil, db.ErrTxDone
	}
	t.reads[string(key)] = struct{}{}
	return get(t.snap, key)
}

func (t *Tx) Put(key, value []byte) error {
	if t.done.Load() {
		return db.ErrTxDone
	}
	value = bytes.Clone(value)
	t.snap.ReplaceOrInsert(item{key: bytes.Clone(key), value: value})
	t.writes[string(key)] = mutation{value: value}
	return nil
}

func (t *Tx) Delete(key []byte) error {
	if t.done.Load() {
		return db.ErrTxDone
	}
	t.snap.Delete(item{key: key})
	t.writes[string(key)] = mutation{deleted: true}
	return nil
}

// NewIterator iterates a clone of the transaction snapshot, every key it yields joins the read set.
func (t *Tx) NewIterator(start []byte, dir db.Direction) (db.Iterator, error) {
	if t.done.Load() {
		return nil, db.ErrTxDone
	}
	return newIterator(t.snap.Clone(), start, dir, func(key []byte) {
		t.reads[string(key)] = struct{}{}
	}), nil
}

func (t *Tx) Commit() error {
	if !t.done.CompareAndSwap(false, true) {
		return db.ErrTxDone
	}
	s := t.store
	if s.closed.Load() {
		return db.ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range t.reads {
		if s.versions[key] > t.startVersion {
			return db.ErrConflict
		}
	}
	for key := range t.writes {
		if s.versions[key] > t.startVersion {
			return db.ErrConflict
		}
	}
	if len(t.writes) > 0 {
		s.apply(t.writes)
	}
	return nil
}

func (t *Tx) Rollback() error {
	t.done.Store(true)
	return nil
}
