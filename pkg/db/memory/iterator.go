package memory

import (
	"bytes"

	"github.com/google/btree"

	"github.com/eigerco/kvstore/pkg/db"
)

// Iterator walks a private snapshot, each step is a fresh O(log n) seek.
type Iterator struct {
	tree       *btree.BTreeG[item]
	start      []byte
	forward    bool
	positioned bool
	cur        *item
	onKey      func([]byte)
}

func newIterator(tree *btree.BTreeG[item], start []byte, dir db.Direction, onKey func([]byte)) *Iterator {
	return &Iterator{
		tree:    tree,
		start:   start,
		forward: dir == db.Forward,
		onKey:   onKey,
	}
}

func (it *Iterator) Next() bool {
	var found *item
	first := func(i item) bool {
		found = &i
		return false
	}

	switch {
	case !it.positioned:
		it.positioned = true
		switch {
		case it.forward && it.start == nil:
			it.tree.Ascend(first)
		case it.forward:
			it.tree.AscendGreaterOrEqual(item{key: it.start}, first)
		case it.start == nil:
			it.tree.Descend(first)
		default:
			it.tree.DescendLessOrEqual(item{key: it.start}, first)
		}
	case it.cur == nil:
		return false
	case it.forward:
		it.tree.AscendGreaterOrEqual(item{key: db.Successor(it.cur.key)}, first)
	default:
		prev := it.cur.key
		it.tree.DescendLessOrEqual(item{key: prev}, func(i item) bool {
			if bytes.Equal(i.key, prev) {
				return true
			}
			found = &i
			return false
		})
	}

	it.cur = found
	if found != nil && it.onKey != nil {
		it.onKey(found.key)
	}
	return found != nil
}

func (it *Iterator) Key() []byte {
	if it.cur == nil {
		return nil
	}
	return bytes.Clone(it.cur.key)
}

func (it *Iterator) Value() ([]byte, error) {
	if it.cur == nil {
		return nil, db.ErrIteratorInvalid
	}
	return bytes.Clone(it.cur.value), nil
}

func (it *Iterator) Valid() bool {
	return it.cur != nil
}

func (it *Iterator) Close() error {
	it.cur = nil
	return nil
}
