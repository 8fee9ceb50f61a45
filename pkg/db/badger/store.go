package badger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/eigerco/kvstore/pkg/db"
)

const (
	GCReclaimIntervalDefault = time.Minute * 5
	GCDiscardRatioDefault    = 0.5
)

type config struct {
	inMemory       bool
	sync           bool
	logger         *zerolog.Logger
	gcInterval     time.Duration
	gcDiscardRatio float64
}

// Option configures a badger backed KVStore.
type Option func(*config)

// WithInMemory keeps all data in memory, the directory is ignored.
func WithInMemory() Option {
	return func(c *config) { c.inMemory = true }
}

// WithSyncWrites controls whether every commit is flushed before returning. Enabled by default.
func WithSyncWrites(sync bool) Option {
	return func(c *config) { c.sync = sync }
}

// WithLogger routes badger's internal logging to the given logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = &l }
}

// WithGC sets how often the value log is garbage collected and the discard ratio used.
func WithGC(interval time.Duration, discardRatio float64) Option {
	return func(c *config) {
		c.gcInterval = interval
		c.gcDiscardRatio = discardRatio
	}
}

// KVStore implements db.KVStore on top of badger. Transactions are optimistic,
// Commit fails with db.ErrConflict when a key the transaction read was
// committed by another transaction in the meantime.
type KVStore struct {
	db     *badger.DB
	closed atomic.Bool

	chWg   sync.WaitGroup
	chQuit chan struct{}

	gcInterval     time.Duration
	gcDiscardRatio float64
	log            zerolog.Logger
}

// NewKVStore opens (creating if needed) a badger database in dir.
func NewKVStore(dir string, opts ...Option) (*KVStore, error) {
	cfg := config{
		sync:           true,
		gcInterval:     GCReclaimIntervalDefault,
		gcDiscardRatio: GCDiscardRatioDefault,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	badgerOpts := badger.DefaultOptions(dir).WithSyncWrites(cfg.sync)
	if cfg.inMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	}

	logger := zerolog.Nop()
	if cfg.logger != nil {
		logger = *cfg.logger
	}
	badgerOpts = badgerOpts.WithLogger(zerologAdapter{log: logger})

	bdb, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	store := &KVStore{
		db:             bdb,
		chQuit:         make(chan struct{}, 1),
		gcInterval:     cfg.gcInterval,
		gcDiscardRatio: cfg.gcDiscardRatio,
		log:            logger,
	}
	if !cfg.inMemory {
		store.startGC()
	}
	return store, nil
}

func (s *KVStore) Get(key []byte) ([]byte, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		value, err = getValue(txn, key)
		return err
	})
	return value, err
}

func (s *KVStore) Put(key, value []byte) error {
	if s.closed.Load() {
		return db.ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *KVStore) Delete(key []byte) error {
	if s.closed.Load() {
		return db.ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// NewIterator holds a read-only transaction open until the iterator is closed.
func (s *KVStore) NewIterator(start []byte, dir db.Direction) (db.Iterator, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	txn := s.db.NewTransaction(false)
	return newIterator(txn, start, dir, true), nil
}

func (s *KVStore) Begin() (db.Tx, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	return &Tx{txn: s.db.NewTransaction(true)}, nil
}

func (s *KVStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.stopGC()
	return s.db.Close()
}

func (s *KVStore) startGC() {
	s.chWg.Add(1)

	go func() {
		defer s.chWg.Done()

		ticker := time.NewTicker(s.gcInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.chQuit:
				return

			case <-ticker.C:
				err := s.db.RunValueLogGC(s.gcDiscardRatio)
				if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
					s.log.Warn().Err(err).Msg("value log garbage collection failed")
				}
			}
		}
	}()
}

func (s *KVStore) stopGC() {
	s.chQuit <- struct{}{}
	s.chWg.Wait()
	close(s.chQuit)
}

func getValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// zerologAdapter satisfies badger.Logger.
type zerologAdapter struct {
	log zerolog.Logger
}

func (l zerologAdapter) Errorf(format string, args ...interface{}) {
	l.log.Error().Msg(trimmed(format, args))
}

func (l zerologAdapter) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msg(trimmed(format, args))
}

func (l zerologAdapter) Infof(format string, args ...interface{}) {
	l.log.Info().Msg(trimmed(format, args))
}

func (l zerologAdapter) Debugf(format string, args ...interface{}) {
	l.log.Debug().Msg(trimmed(format, args))
}

func trimmed(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
