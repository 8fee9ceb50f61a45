package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/eigerco/kvstore/pkg/db"
	"github.com/eigerco/kvstore/pkg/db/badger"
	"github.com/eigerco/kvstore/pkg/db/bbolt"
	"github.com/eigerco/kvstore/pkg/db/memory"
	"github.com/eigerco/kvstore/pkg/db/pebble"
	"github.com/eigerco/kvstore/pkg/log"
)

// TempRoot is the directory below os.TempDir() holding temporary stores.
const TempRoot = "kvstore"

// Open opens the configured engine and wraps it in a DB.
func Open(opts ...Option) (*DB, error) {
	cfg, err := defaultConfig().applyOptions(opts)
	if err != nil {
		return nil, err
	}

	var cleanup func() error
	if cfg.Temporary && cfg.Engine != EngineMemory {
		dir := filepath.Join(os.TempDir(), TempRoot, uuid.NewString())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create temporary directory: %w", err)
		}
		cfg.Path = dir
		cleanup = func() error { return os.RemoveAll(dir) }
	}
	if cfg.Path == "" && cfg.Engine != EngineMemory {
		return nil, ErrMissingPath
	}

	kv, err := openEngine(cfg)
	if err != nil {
		if cleanup != nil {
			err = errors.Join(err, cleanup())
		}
		return nil, fmt.Errorf("open %s store: %w", cfg.Engine, err)
	}

	cfg.Logger.Debug().
		Str("engine", string(cfg.Engine)).
		Str("path", cfg.Path).
		Bool("sync_writes", cfg.SyncWrites).
		Bool("self_heal", cfg.SelfHeal).
		Msg("store opened")

	d := newDB(kv, cfg)
	d.cleanup = cleanup
	return d, nil
}

// OpenTemporary opens a disposable store that is deleted on Close.
func OpenTemporary(opts ...Option) (*DB, error) {
	return Open(append(opts, WithTemporary())...)
}

// New wraps an engine that is already open. Engine related options are ignored.
func New(kv db.KVStore, opts ...Option) (*DB, error) {
	cfg, err := defaultConfig().applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newDB(kv, cfg), nil
}

func openEngine(cfg *Config) (db.KVStore, error) {
	switch cfg.Engine {
	case EnginePebble:
		return pebble.NewKVStore(cfg.Path, pebble.WithSyncWrites(cfg.SyncWrites))
	case EngineBadger:
		return badger.NewKVStore(cfg.Path,
			badger.WithSyncWrites(cfg.SyncWrites),
			badger.WithLogger(log.Engine.With().Str("engine", string(EngineBadger)).Logger()),
		)
	case EngineBolt:
		return bbolt.NewKVStore(cfg.Path, bbolt.WithSyncWrites(cfg.SyncWrites))
	case EngineMemory:
		return memory.NewKVStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
}
