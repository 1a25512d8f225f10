package db

import "errors"

// ErrNotFound is returned by Get implementations for missing keys
var ErrNotFound = errors.New("kv-store: key not found")
