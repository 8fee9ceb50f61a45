package pebble

import (
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"github.com/eigerco/kvstore/pkg/db"
)

// Tx is a transaction backed by an indexed batch, reads observe the batch's own writes.
type Tx struct {
	batch *pebble.Batch
	wo    *pebble.WriteOptions
	done  atomic.Bool
}

func (t *Tx) Get(key []byte) ([]byte, error) {
	if t.done.Load() {
		return nil, db.ErrTxDone
	}
	return get(t.batch, key)
}

func (t *Tx) Put(key, value []byte) error {
	if t.done.Load() {
		return db.ErrTxDone
	}
	return t.batch.Set(key, value, nil)
}

func (t *Tx) Delete(key []byte) error {
	if t.done.Load() {
		return db.ErrTxDone
	}
	return t.batch.Delete(key, nil)
}

func (t *Tx) NewIterator(start []byte, dir db.Direction) (db.Iterator, error) {
	if t.done.Load() {
		return nil, db.ErrTxDone
	}
	return newIterator(t.batch, start, dir)
}

func (t *Tx) Commit() error {
	if !t.done.CompareAndSwap(false, true) {
		return db.ErrTxDone
	}
	if err := t.batch.Commit(t.wo); err != nil {
		t.batch.Close() //nolint:errcheck
		return fmt.Errorf("commit batch: %w", err)
	}
	return t.batch.Close()
}

func (t *Tx) Rollback() error {
	if !t.done.CompareAndSwap(false, true) {
		return nil
	}
	return t.batch.Close()
}
