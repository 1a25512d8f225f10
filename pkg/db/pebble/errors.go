package pebble

import (
	"errors"

	"github.com/eigerco/yeti/pkg/db"
)

var (
	ErrClosed          = errors.New("kv-store: database is closed")
	ErrNotFound        = db.ErrNotFound
	ErrBatchDone       = errors.New("kv-store: batch already committed or closed")
	ErrIteratorInvalid = errors.New("kv-store: iterator is not positioned")

	ErrInIteratorCreation = "kv-store: creating iterator: %w"
	ErrIteratorValue      = "kv-store: reading iterator value: %w"
	ErrOpen               = "kv-store: opening %q: %w"
)
