package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/eigerco/kvstore/internal/config"
	"github.com/eigerco/kvstore/pkg/log"
	"github.com/eigerco/kvstore/pkg/store"
)

const usage = `usage: kvstore [-config file] [-path dir] <command> [args]

commands:
  get <key>
  put <key> <json>
  delete <key>
  list <from> <to> [limit]
  paginate <start> <end> <limit>
  delete-range <from> <to>
`

var errUsage = errors.New("invalid arguments")

// main inspects and edits a store from the command line.
// go run ./cmd/kvstore -config kvstore.yaml list a z
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		log.CLI.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out, logOut io.Writer) error {
	flags := flag.NewFlagSet("kvstore", flag.ContinueOnError)
	configPath := flags.String("config", "kvstore.yaml", "Path to the YAML configuration")
	path := flags.String("path", "", "Database directory, overrides the configuration")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if flags.NArg() == 0 {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *path != "" {
		cfg.Path = *path
	}
	logOpts, err := cfg.LogOptions()
	if err != nil {
		return err
	}
	logOpts.Output = logOut
	log.Init(logOpts)
	if cfg.Source == "" {
		log.CLI.Info().Str("path", *configPath).Msg("config file not found, using default config")
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	d, err := store.Open(opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.CLI.Error().Err(err).Msg("close store")
		}
	}()

	return execute(d, flags.Args(), json.NewEncoder(out))
}

type entry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func execute(d *store.DB, args []string, enc *json.Encoder) error {
	cmd, args := args[0], args[1:]
	switch {
	case cmd == "get" && len(args) == 1:
		v, err := store.Get[any](d, args[0])
		if err != nil {
			return err
		}
		return enc.Encode(entry{Key: args[0], Value: v})

	case cmd == "put" && len(args) == 2:
		var v any
		if err := json.Unmarshal([]byte(args[1]), &v); err != nil {
			return fmt.Errorf("parse value: %w", err)
		}
		return store.Put(d, args[0], v)

	case cmd == "delete" && len(args) == 1:
		return d.Delete(args[0])

	case cmd == "list" && (len(args) == 2 || len(args) == 3):
		limit := store.NoLimit
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("%w: limit: %w", errUsage, err)
			}
			limit = n
		}
		entries, err := store.List[any](d, args[0], args[1], limit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := enc.Encode(entry{Key: e.Key, Value: e.Value}); err != nil {
				return err
			}
		}
		return nil

	case cmd == "paginate" && len(args) == 3:
		limit, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("%w: limit: %w", errUsage, err)
		}
		page, err := store.Paginate[any](d, args[0], args[1], limit)
		if err != nil {
			return err
		}
		for _, e := range page.Items {
			if err := enc.Encode(entry{Key: e.Key, Value: e.Value}); err != nil {
				return err
			}
		}
		if page.Cursor != nil {
			return enc.Encode(map[string]string{"next": page.Cursor.Next, "end": page.Cursor.End})
		}
		return nil

	case cmd == "delete-range" && len(args) == 2:
		return d.Update(func(tx *store.Tx) error {
			return tx.DeleteRange(args[0], args[1])
		})
	}
	return fmt.Errorf("%w: %s", errUsage, cmd)
}
