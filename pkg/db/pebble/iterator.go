package pebble

import (
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/eigerco/kvstore/pkg/db"
)

type Iterator struct {
	iter       *pebble.Iterator
	start      []byte
	dir        db.Direction
	positioned bool
}

func newIterator(r pebble.Reader, start []byte, dir db.Direction) (*Iterator, error) {
	iter, err := r.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf(db.ErrInIteratorCreation, err)
	}
	return &Iterator{iter: iter, start: start, dir: dir}, nil
}

func (it *Iterator) Next() bool {
	// If the iterator is un-positioned, seek to the start key
	if !it.positioned {
		it.positioned = true
		return it.seek()
	}
	if it.dir == db.Reverse {
		return it.iter.Prev()
	}
	return it.iter.Next()
}

func (it *Iterator) seek() bool {
	switch {
	case it.dir == db.Forward && it.start == nil:
		return it.iter.First()
	case it.dir == db.Forward:
		return it.iter.SeekGE(it.start)
	case it.start == nil:
		return it.iter.Last()
	default:
		// SeekLT on the successor includes start itself
		return it.iter.SeekLT(db.Successor(it.start))
	}
}

func (it *Iterator) Key() []byte {
	key := it.iter.Key()
	result := make([]byte, len(key))
	copy(result, key)
	return result
}

func (it *Iterator) Value() ([]byte, error) {
	if !it.iter.Valid() {
		return nil, db.ErrIteratorInvalid
	}

	val, err := it.iter.ValueAndErr()
	if err != nil {
		return nil, fmt.Errorf(db.ErrIteratorValue, err)
	}

	result := make([]byte, len(val))
	copy(result, val)
	return result, nil
}

func (it *Iterator) Valid() bool {
	return it.iter.Valid()
}

func (it *Iterator) Close() error {
	return it.iter.Close()
}
