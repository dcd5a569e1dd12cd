// Package kvstore persists opaque values under string keys. It stands in
// for the browser's local storage: callers load and save whole documents
// by key and never observe partial writes.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the key has never been saved.
var ErrNotFound = errors.New("kvstore: key not found")

// Store loads and saves values by key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by backends that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by backends holding connections.
type Closer interface {
	Close() error
}
