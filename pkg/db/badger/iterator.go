package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/eigerco/kvstore/pkg/db"
)

type Iterator struct {
	it         *badger.Iterator
	txn        *badger.Txn
	ownsTxn    bool
	start      []byte
	positioned bool
}

func newIterator(txn *badger.Txn, start []byte, dir db.Direction, ownsTxn bool) *Iterator {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = dir == db.Reverse
	return &Iterator{
		it:      txn.NewIterator(opts),
		txn:     txn,
		ownsTxn: ownsTxn,
		start:   start,
	}
}

func (it *Iterator) Next() bool {
	if !it.positioned {
		it.positioned = true
		// In reverse mode Seek lands on the largest key <= start
		if it.start == nil {
			it.it.Rewind()
		} else {
			it.it.Seek(it.start)
		}
		return it.it.Valid()
	}
	it.it.Next()
	return it.it.Valid()
}

func (it *Iterator) Key() []byte {
	return it.it.Item().KeyCopy(nil)
}

func (it *Iterator) Value() ([]byte, error) {
	if !it.positioned || !it.it.Valid() {
		return nil, db.ErrIteratorInvalid
	}
	val, err := it.it.Item().ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf(db.ErrIteratorValue, err)
	}
	return val, nil
}

func (it *Iterator) Valid() bool {
	return it.positioned && it.it.Valid()
}

func (it *Iterator) Close() error {
	it.it.Close()
	if it.ownsTxn {
		it.txn.Discard()
	}
	return nil
}
