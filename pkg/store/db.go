package store

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/eigerco/kvstore/pkg/db"
)

// DB is the bare database. Every typed call on it commits on its own.
type DB struct {
	*Store
	kv      db.KVStore
	cfg     *Config
	cleanup func() error
	closed  atomic.Bool
}

func newDB(kv db.KVStore, cfg *Config) *DB {
	return &DB{
		Store: &Store{
			rw:       kv,
			codec:    cfg.Codec,
			selfHeal: cfg.SelfHeal,
			log:      cfg.Logger,
		},
		kv:  kv,
		cfg: cfg,
	}
}

// Engine returns the engine the database was opened with.
func (d *DB) Engine() Engine {
	return d.cfg.Engine
}

// Close releases the engine and removes the directory of a temporary store.
func (d *DB) Close() error {
	if d.closed.Swap(true) {
		return ErrClosed
	}
	err := d.kv.Close()
	if d.cleanup != nil {
		err = errors.Join(err, d.cleanup())
	}
	return err
}

// Begin opens a transaction. Calls made through it are staged until Commit.
func (d *DB) Begin() (*Tx, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	tx, err := d.kv.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{
		Store: &Store{
			rw:       tx,
			codec:    d.codec,
			selfHeal: d.selfHeal,
			log:      d.log,
		},
		tx: tx,
	}, nil
}

// Update runs fn in a transaction that is committed when fn returns nil and
// rolled back otherwise. A conflict is returned as is, callers decide whether to retry.
func (d *DB) Update(fn func(tx *Tx) error) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// View runs fn in a transaction that is always rolled back.
func (d *DB) View(fn func(tx *Tx) error) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	return fn(tx)
}

// Tx is an open transaction. It must not be shared between goroutines.
type Tx struct {
	*Store
	tx   db.Tx
	done atomic.Bool
}

// Commit makes the staged writes durable and visible. It returns ErrConflict
// when the engine detected a competing writer, in which case nothing was written.
func (t *Tx) Commit() error {
	if t.done.Swap(true) {
		return ErrTxDone
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the staged writes. Calling it after Commit does nothing,
// so it can always be deferred.
func (t *Tx) Rollback() error {
	if t.done.Swap(true) {
		return nil
	}
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
