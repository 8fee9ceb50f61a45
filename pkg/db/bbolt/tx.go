package bbolt

import (
	"sync/atomic"

	"go.etcd.io/bbolt"

	"github.com/eigerco/kvstore/pkg/db"
)

// Tx wraps a writable bbolt transaction.
type Tx struct {
	tx   *bbolt.Tx
	done atomic.Bool
}

func (t *Tx) Get(key []byte) ([]byte, error) {
	if t.done.Load() {
		return nil, db.ErrTxDone
	}
	return getValue(t.tx, key)
}

func (t *Tx) Put(key, value []byte) error {
	if t.done.Load() {
		return db.ErrTxDone
	}
	return bucket(t.tx).Put(key, value)
}

func (t *Tx) Delete(key []byte) error {
	if t.done.Load() {
		return db.ErrTxDone
	}
	return bucket(t.tx).Delete(key)
}

func (t *Tx) NewIterator(start []byte, dir db.Direction) (db.Iterator, error) {
	if t.done.Load() {
		return nil, db.ErrTxDone
	}
	return newIterator(t.tx, start, dir, false), nil
}

func (t *Tx) Commit() error {
	if !t.done.CompareAndSwap(false, true) {
		return db.ErrTxDone
	}
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	if !t.done.CompareAndSwap(false, true) {
		return nil
	}
	return t.tx.Rollback()
}
