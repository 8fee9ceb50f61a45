package bbolt

import (
	"bytes"

	"go.etcd.io/bbolt"

	"github.com/eigerco/kvstore/pkg/db"
)

type Iterator struct {
	cursor     *bbolt.Cursor
	tx         *bbolt.Tx
	ownsTx     bool
	start      []byte
	forward    bool
	positioned bool

	key, value []byte
}

func newIterator(tx *bbolt.Tx, start []byte, dir db.Direction, ownsTx bool) *Iterator {
	return &Iterator{
		cursor:  bucket(tx).Cursor(),
		tx:      tx,
		ownsTx:  ownsTx,
		start:   start,
		forward: dir == db.Forward,
	}
}

func (it *Iterator) Next() bool {
	var key, value []byte
	switch {
	case !it.positioned:
		it.positioned = true
		key, value = it.seek()
	case it.forward:
		key, value = it.cursor.Next()
	default:
		key, value = it.cursor.Prev()
	}
	it.set(key, value)
	return it.Valid()
}

func (it *Iterator) seek() ([]byte, []byte) {
	switch {
	case it.start == nil && it.forward:
		return it.cursor.First()
	case it.start == nil:
		return it.cursor.Last()
	}

	key, value := it.cursor.Seek(it.start)
	if it.forward {
		return key, value
	}
	// Seek lands on the first key >= start, step back unless it is start itself
	if key == nil {
		return it.cursor.Last()
	}
	if !bytes.Equal(key, it.start) {
		return it.cursor.Prev()
	}
	return key, value
}

func (it *Iterator) set(key, value []byte) {
	if key == nil {
		it.key, it.value = nil, nil
		return
	}
	it.key = append([]byte(nil), key...)
	it.value = append([]byte{}, value...)
}

func (it *Iterator) Key() []byte {
	return it.key
}

func (it *Iterator) Value() ([]byte, error) {
	if !it.Valid() {
		return nil, db.ErrIteratorInvalid
	}
	return it.value, nil
}

func (it *Iterator) Valid() bool {
	return it.key != nil
}

func (it *Iterator) Close() error {
	if it.ownsTx {
		return it.tx.Rollback()
	}
	return nil
}
