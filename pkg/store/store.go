// Package store is a typed, transactional layer over an ordered byte store.
//
// Records are serialized with the configured codec and stored under string
// keys (see package keys for order preserving encodings). The same generic
// functions work on a *DB, where every call commits on its own, and on a *Tx,
// where calls are staged until Commit:
//
//	err := d.Update(func(tx *store.Tx) error {
//		acc, err := store.Get[Account](tx, key)
//		if err != nil {
//			return err
//		}
//		acc.Balance += 10
//		return store.Put(tx, key, acc)
//	})
package store

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eigerco/kvstore/pkg/db"
	"github.com/eigerco/kvstore/pkg/serialization/codec"
)

// Handle is satisfied by *DB and *Tx.
type Handle interface {
	store() *Store
}

// Store binds a byte-store capability to a codec. It holds no locks and is as
// safe for concurrent use as the capability underneath.
type Store struct {
	rw       db.ReadWriter
	codec    codec.Codec
	selfHeal bool
	log      zerolog.Logger
}

func (s *Store) store() *Store {
	return s
}

// Get fetches and decodes the record under key.
func Get[D any](h Handle, key string) (D, error) {
	s := h.store()
	var value D

	b, err := s.rw.Get([]byte(key))
	if err != nil {
		return value, fmt.Errorf("get %q: %w", key, err)
	}

	if err := s.codec.Unmarshal(b, &value); err != nil {
		var zero D
		return zero, fmt.Errorf("%w: key %q: %w", ErrDeserialize, key, err)
	}
	return value, nil
}

// Put serializes value and stores it under key. Nothing is written if serialization fails.
func Put[V any](h Handle, key string, value V) error {
	s := h.store()

	b, err := s.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: key %q: %w", ErrSerialize, key, err)
	}
	if err := s.rw.Put([]byte(key), b); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Exists reports whether key holds a value, without decoding it.
func Exists(h Handle, key string) (bool, error) {
	_, err := h.store().rw.Get([]byte(key))
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	return true, nil
}

// Delete removes key, deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if err := s.rw.Delete([]byte(key)); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
