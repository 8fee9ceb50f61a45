// Package store keeps the event log of watched contracts on top of the typed store.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/eigerco/kvstore/pkg/crypto"
	"github.com/eigerco/kvstore/pkg/keys"
	kvstore "github.com/eigerco/kvstore/pkg/store"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNoCheckpoint  = errors.New("no checkpoint recorded")
	ErrEventsClosed  = errors.New("events store is closed")
)

// Key prefixes of the records kept by Events.
const (
	prefixEvent = "event"
	prefixMeta  = "meta"
)

var checkpointKey = keys.Join(prefixMeta, "checkpoint")

// Event is a log entry emitted by a contract during a transaction.
type Event struct {
	Emitter  crypto.Address `json:"emitter"`
	Tx       crypto.Hash    `json:"tx"`
	Sequence uint64         `json:"sequence"`
	Data     []byte         `json:"data"`
}

func (e Event) Hash() crypto.Hash {
	var seq [8]byte
	binary.LittleEndian.PutUint64(seq[:], e.Sequence)
	return crypto.HashConcat(e.Emitter[:], e.Tx[:], seq[:], e.Data)
}

// Record is an event together with the time it was observed.
type Record = kvstore.Indexed[Event]

// Events stores records ordered by emitter, then time, then sequence number.
type Events struct {
	db     *kvstore.DB
	closed atomic.Bool
}

// NewEvents creates an events store, it takes ownership of d.
func NewEvents(d *kvstore.DB) *Events {
	return &Events{db: d}
}

func eventKey(emitter crypto.Address, ts keys.Timestamp, seq uint64) string {
	return keys.Join(prefixEvent, keys.Display(emitter), ts.Key(), keys.Counter(seq))
}

// PutEvents stores all events observed at ts atomically and returns their record hashes.
func (s *Events) PutEvents(ts keys.Timestamp, events ...Event) ([]crypto.Hash, error) {
	if s.closed.Load() {
		return nil, ErrEventsClosed
	}

	hashes := make([]crypto.Hash, 0, len(events))
	err := s.db.Update(func(tx *kvstore.Tx) error {
		for _, e := range events {
			record := kvstore.NewIndexed(ts, e)
			if err := kvstore.Put(tx, eventKey(e.Emitter, ts, e.Sequence), record); err != nil {
				return fmt.Errorf("store event: %w", err)
			}
			hashes = append(hashes, record.Hash())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// GetEvent retrieves a single event by its position in the log.
func (s *Events) GetEvent(emitter crypto.Address, ts keys.Timestamp, seq uint64) (Record, error) {
	if s.closed.Load() {
		return Record{}, ErrEventsClosed
	}

	r, err := kvstore.Get[Record](s.db, eventKey(emitter, ts, seq))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return Record{}, ErrEventNotFound
		}
		return Record{}, fmt.Errorf("get event: %w", err)
	}
	return r, nil
}

// EventsByEmitter pages through the events of emitter, oldest first.
// Pass nil to start from the beginning and the returned cursor to continue.
func (s *Events) EventsByEmitter(emitter crypto.Address, cursor *kvstore.Cursor, limit int) (kvstore.Page[Record], error) {
	if s.closed.Load() {
		return kvstore.Page[Record]{}, ErrEventsClosed
	}

	from, to := keys.PrefixRange(prefixEvent, keys.Display(emitter))
	if cursor != nil {
		from, to = cursor.Next, cursor.End
	}
	return kvstore.PaginateValues[Record](s.db, from, to, limit)
}

// EventsBetween returns the events of emitter observed in [from, to], oldest first.
func (s *Events) EventsBetween(emitter crypto.Address, from, to keys.Timestamp) ([]Record, error) {
	if s.closed.Load() {
		return nil, ErrEventsClosed
	}
	if from > to {
		return nil, nil
	}

	start, _ := keys.PrefixRange(prefixEvent, keys.Display(emitter), from.Key())
	_, end := keys.PrefixRange(prefixEvent, keys.Display(emitter), to.Key())
	return kvstore.ListValues[Record](s.db, start, end, kvstore.NoLimit)
}

// LatestEvents returns up to limit of the newest events of emitter, newest first.
func (s *Events) LatestEvents(emitter crypto.Address, limit int) ([]Record, error) {
	if s.closed.Load() {
		return nil, ErrEventsClosed
	}

	from, to := keys.PrefixRange(prefixEvent, keys.Display(emitter))
	return kvstore.ListValues[Record](s.db, to, from, limit)
}

// PruneBefore deletes every event of emitter observed before ts in a single transaction.
func (s *Events) PruneBefore(emitter crypto.Address, ts keys.Timestamp) error {
	if s.closed.Load() {
		return ErrEventsClosed
	}
	if ts == 0 {
		return nil
	}

	from, _ := keys.PrefixRange(prefixEvent, keys.Display(emitter))
	_, to := keys.PrefixRange(prefixEvent, keys.Display(emitter), (ts - 1).Key())
	return s.db.Update(func(tx *kvstore.Tx) error {
		return tx.DeleteRange(from, to)
	})
}

// SetCheckpoint records the last block whose events were fully stored.
func (s *Events) SetCheckpoint(block uint64) error {
	if s.closed.Load() {
		return ErrEventsClosed
	}
	return kvstore.Put(s.db, checkpointKey, block)
}

func (s *Events) Checkpoint() (uint64, error) {
	if s.closed.Load() {
		return 0, ErrEventsClosed
	}

	block, err := kvstore.Get[uint64](s.db, checkpointKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, ErrNoCheckpoint
	}
	return block, err
}

// Close closes the events store
func (s *Events) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
