// Package config loads the YAML configuration of the kvstore command.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/eigerco/kvstore/pkg/log"
	"github.com/eigerco/kvstore/pkg/serialization/codec"
	"github.com/eigerco/kvstore/pkg/store"
)

type Config struct {
	Engine     string       `yaml:"engine"`
	Path       string       `yaml:"path"`
	Temporary  bool         `yaml:"temporary"`
	SyncWrites bool         `yaml:"sync_writes"`
	SelfHeal   bool         `yaml:"self_heal"`
	Codec      string       `yaml:"codec"`
	Logger     LoggerConfig `yaml:"logger"`
	// Source is the file the config was read from, empty when Default() was used.
	Source string `yaml:"-"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns a baseline development config.
func Default() Config {
	return Config{
		Engine:     string(store.EnginePebble),
		Path:       "./data",
		SyncWrites: true,
		SelfHeal:   true,
		Codec:      codec.MsgpackName,
		Logger: LoggerConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields
// Default() with an empty Source.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Options converts the file settings into store options.
func (c Config) Options() ([]store.Option, error) {
	engine, err := store.ParseEngine(c.Engine)
	if err != nil {
		return nil, err
	}
	cd, ok := codec.ByName(c.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", c.Codec)
	}

	opts := []store.Option{
		store.WithEngine(engine),
		store.WithSyncWrites(c.SyncWrites),
		store.WithSelfHeal(c.SelfHeal),
		store.WithCodec(cd),
	}
	if c.Temporary {
		opts = append(opts, store.WithTemporary())
	} else {
		opts = append(opts, store.WithPath(c.Path))
	}
	return opts, nil
}

// LogOptions converts the logger section into log.Options.
func (c Config) LogOptions() (log.Options, error) {
	level, err := log.ParseLogLevel(c.Logger.Level)
	if err != nil {
		return log.Options{}, err
	}
	opts := log.Options{LogLevel: level, Type: log.ConsoleLogger}
	if c.Logger.JSON {
		opts.Type = log.JSONLogger
	}
	return opts, nil
}
