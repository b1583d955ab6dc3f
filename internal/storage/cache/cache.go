// Package cache wraps a storage.Store with an expiring LRU read cache.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/cory-johannsen/quartermaster/internal/storage"
)

// Store is a write-through cache in front of another Store.
type Store struct {
	backend storage.Store
	lru     *expirable.LRU[string, []byte]
}

// New wraps backend with a cache of at most size entries, each living for ttl.
// A ttl of zero disables expiry.
//
// Precondition: backend must be non-nil; size must be > 0.
func New(backend storage.Store, size int, ttl time.Duration) *Store {
	return &Store{
		backend: backend,
		lru:     expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

// Get serves key from the cache, falling back to the backend on a miss.
// Misses that return storage.ErrNotFound are not cached.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := s.lru.Get(key); ok {
		return clone(v), nil
	}
	v, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.lru.Add(key, clone(v))
	return v, nil
}

// Set writes through to the backend and refreshes the cached value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, storage.Entry{Key: key, Value: value})
}

// SetMany writes through to the backend. On failure every key in the batch
// is evicted since the backend state is unknown.
func (s *Store) SetMany(ctx context.Context, entries ...storage.Entry) error {
	if err := s.backend.SetMany(ctx, entries...); err != nil {
		for _, e := range entries {
			s.lru.Remove(e.Key)
		}
		return err
	}
	for _, e := range entries {
		s.lru.Add(e.Key, clone(e.Value))
	}
	return nil
}

// Ping forwards to the backend.
func (s *Store) Ping(ctx context.Context) error {
	return storage.Ping(ctx, s.backend)
}

// Len returns the number of cached entries.
func (s *Store) Len() int { return s.lru.Len() }

// Purge drops every cached entry.
func (s *Store) Purge() { s.lru.Purge() }

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
