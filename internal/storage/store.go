// Package storage defines the key-value persistence contract shared by every
// backend (memory, file, PostgreSQL) and the read cache that wraps them.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Entry is a single key/value pair written by SetMany.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a string-keyed byte-value store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// SetMany stores every entry. Backends that support transactions apply
	// the batch atomically.
	SetMany(ctx context.Context, entries ...Entry) error
}

// Pinger is implemented by stores backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks s when it implements Pinger and returns nil otherwise.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
