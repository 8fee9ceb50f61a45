package store

import (
	"errors"

	"github.com/eigerco/kvstore/pkg/db"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = db.ErrNotFound
	// ErrConflict is returned by Commit when the engine detected a competing writer.
	ErrConflict = db.ErrConflict
	// ErrTxDone is returned when a transaction is used after Commit or Rollback.
	ErrTxDone = db.ErrTxDone
	// ErrClosed is returned when the database was closed.
	ErrClosed = db.ErrClosed

	ErrDeserialize        = errors.New("stored bytes do not decode as the requested type")
	ErrSerialize          = errors.New("value could not be serialized")
	ErrInvalidKeyEncoding = errors.New("stored key is not valid utf-8")
	ErrInvalidLimit       = errors.New("page limit must be positive")
	ErrMissingPath        = errors.New("a path is required for persistent engines")
	ErrUnknownEngine      = errors.New("unknown storage engine")
	ErrNilCodec           = errors.New("codec must not be nil")
)
