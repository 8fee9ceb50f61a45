package store

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eigerco/kvstore/pkg/log"
	"github.com/eigerco/kvstore/pkg/serialization/codec"
)

// Engine names an embedded byte-store implementation.
type Engine string

const (
	EnginePebble Engine = "pebble"
	EngineBadger Engine = "badger"
	EngineBolt   Engine = "bbolt"
	EngineMemory Engine = "memory"
)

func ParseEngine(name string) (Engine, error) {
	switch e := Engine(name); e {
	case EnginePebble, EngineBadger, EngineBolt, EngineMemory:
		return e, nil
	case "":
		return EnginePebble, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Config contains the storage configuration parameters.
type Config struct {
	Engine Engine
	// Path is the database directory, ignored for the memory engine and temporary stores.
	Path string
	// Temporary stores live in a random directory below os.TempDir() that is removed on Close.
	Temporary bool
	// SyncWrites flushes every mutation before the call returns.
	SyncWrites bool
	// SelfHeal makes range scans delete entries that fail to deserialize instead
	// of failing the scan. Those entries are lost.
	SelfHeal bool
	Codec    codec.Codec
	Logger   zerolog.Logger
}

func defaultConfig() *Config {
	return &Config{
		Engine:     EnginePebble,
		SyncWrites: true,
		SelfHeal:   true,
		Codec:      &codec.MsgpackCodec{},
		Logger:     log.Storage,
	}
}

func (c *Config) applyOptions(opts []Option) (*Config, error) {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Option is a function that takes a config struct and modifies it
type Option func(c *Config) error

func WithEngine(e Engine) Option {
	return func(c *Config) error {
		engine, err := ParseEngine(string(e))
		if err != nil {
			return err
		}
		c.Engine = engine
		return nil
	}
}

func WithPath(path string) Option {
	return func(c *Config) error {
		c.Path = path
		return nil
	}
}

// WithTemporary opens a disposable store.
func WithTemporary() Option {
	return func(c *Config) error {
		c.Temporary = true
		return nil
	}
}

func WithSyncWrites(enable bool) Option {
	return func(c *Config) error {
		c.SyncWrites = enable
		return nil
	}
}

// WithSelfHeal allows to enable/disable deleting undecodable entries during range scans.
func WithSelfHeal(enable bool) Option {
	return func(c *Config) error {
		c.SelfHeal = enable
		return nil
	}
}

func WithCodec(cd codec.Codec) Option {
	return func(c *Config) error {
		if cd == nil {
			return ErrNilCodec
		}
		c.Codec = cd
		return nil
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}
