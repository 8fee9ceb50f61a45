package badger

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/eigerco/kvstore/pkg/db"
)

// Tx wraps a read-write badger transaction.
type Tx struct {
	txn  *badger.Txn
	done atomic.Bool
}

func (t *Tx) Get(key []byte) ([]byte, error) {
	if t.done.Load() {
		return nil, db.ErrTxDone
	}
	return getValue(t.txn, key)
}

func (t *Tx) Put(key, value []byte) error {
	if t.done.Load() {
		return db.ErrTxDone
	}
	return t.txn.Set(key, value)
}

func (t *Tx) Delete(key []byte) error {
	if t.done.Load() {
		return db.ErrTxDone
	}
	return t.txn.Delete(key)
}

func (t *Tx) NewIterator(start []byte, dir db.Direction) (db.Iterator, error) {
	if t.done.Load() {
		return nil, db.ErrTxDone
	}
	return newIterator(t.txn, start, dir, false), nil
}

func (t *Tx) Commit() error {
	if !t.done.CompareAndSwap(false, true) {
		return db.ErrTxDone
	}
	err := t.txn.Commit()
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %w", db.ErrConflict, err)
	}
	return err
}

func (t *Tx) Rollback() error {
	if !t.done.CompareAndSwap(false, true) {
		return nil
	}
	t.txn.Discard()
	return nil
}
