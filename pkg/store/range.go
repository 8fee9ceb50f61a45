package store

import (
	"fmt"
	"unicode/utf8"

	"github.com/eigerco/kvstore/pkg/db"
)

// NoLimit makes List return every entry in range, as does any limit below one.
const NoLimit = 0

// Entry is a decoded record and the key it was stored under.
type Entry[D any] struct {
	Key   string
	Value D
}

// Cursor resumes a paginated scan: pass Next as the new start key and End as the end key.
type Cursor struct {
	Next string
	End  string
}

// Page is one slice of a paginated scan. A nil Cursor means the range is exhausted.
type Page[T any] struct {
	Items  []T
	Cursor *Cursor
}

// scan visits the inclusive range between from and to, ascending when from <= to
// and descending otherwise, until visit returns false.
func (s *Store) scan(from, to string, visit func(key string, value []byte) (bool, error)) (err error) {
	dir := db.Forward
	if from > to {
		dir = db.Reverse
	}

	iter, err := s.rw.NewIterator([]byte(from), dir)
	if err != nil {
		return fmt.Errorf("create iterator: %w", err)
	}
	defer func() {
		if cerr := iter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close iterator: %w", cerr)
		}
	}()

	for iter.Next() {
		k := iter.Key()
		key := string(k)
		if (dir == db.Forward && key > to) || (dir == db.Reverse && key < to) {
			return nil
		}
		if !utf8.Valid(k) {
			return fmt.Errorf("%w: %x", ErrInvalidKeyEncoding, k)
		}

		value, err := iter.Value()
		if err != nil {
			return err
		}
		more, err := visit(key, value)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// List returns up to limit decoded entries in the inclusive range between
// from and to, in scan order (see scan). A limit of NoLimit returns them all.
//
// With self-healing enabled an entry that does not decode as D is deleted
// from the store and skipped. The deletion is permanent, disable self-healing
// with WithSelfHeal(false) to fail with ErrDeserialize instead.
func List[D any](h Handle, from, to string, limit int) ([]Entry[D], error) {
	s := h.store()

	var (
		entries []Entry[D]
		corrupt []string
	)
	err := s.scan(from, to, func(key string, raw []byte) (bool, error) {
		var value D
		if err := s.codec.Unmarshal(raw, &value); err != nil {
			if !s.selfHeal {
				return false, fmt.Errorf("%w: key %q: %w", ErrDeserialize, key, err)
			}
			s.log.Warn().Str("key", key).Err(err).Msg("deleting entry that failed to deserialize")
			corrupt = append(corrupt, key)
			return true, nil
		}
		entries = append(entries, Entry[D]{Key: key, Value: value})
		return limit <= NoLimit || len(entries) < limit, nil
	})
	if err != nil {
		return nil, err
	}

	// Deleted only once the iterator is released, some engines cannot write under an open cursor.
	for _, key := range corrupt {
		if err := s.Delete(key); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// ListValues is List without the keys.
func ListValues[D any](h Handle, from, to string, limit int) ([]D, error) {
	entries, err := List[D](h, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing values: %w", err)
	}
	values := make([]D, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return values, nil
}

// ListKeys returns the keys in range without decoding their values.
func ListKeys(h Handle, from, to string, limit int) ([]string, error) {
	var keys []string
	err := h.store().scan(from, to, func(key string, _ []byte) (bool, error) {
		keys = append(keys, key)
		return limit <= NoLimit || len(keys) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteRange deletes every key in the inclusive range. It is only atomic when
// called on a transaction, and stops at the first failed delete.
func (s *Store) DeleteRange(from, to string) error {
	keys, err := ListKeys(s, from, to, NoLimit)
	if err != nil {
		return fmt.Errorf("list range: %w", err)
	}
	for _, key := range keys {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Paginate returns up to limit entries starting at start, limit must be
// positive. When more entries
// remain before end, the page carries a cursor whose Next is the first key of
// the following page.
func Paginate[D any](h Handle, start, end string, limit int) (Page[Entry[D]], error) {
	if limit < 1 {
		return Page[Entry[D]]{}, ErrInvalidLimit
	}

	entries, err := List[D](h, start, end, limit+1)
	if err != nil {
		return Page[Entry[D]]{}, err
	}

	page := Page[Entry[D]]{Items: entries}
	if len(entries) > limit {
		page.Items = entries[:limit]
		page.Cursor = &Cursor{Next: entries[limit].Key, End: end}
	}
	return page, nil
}

// PaginateValues is Paginate without the keys.
func PaginateValues[D any](h Handle, start, end string, limit int) (Page[D], error) {
	page, err := Paginate[D](h, start, end, limit)
	if err != nil {
		return Page[D]{}, err
	}
	values := make([]D, len(page.Items))
	for i, e := range page.Items {
		values[i] = e.Value
	}
	return Page[D]{Items: values, Cursor: page.Cursor}, nil
}
