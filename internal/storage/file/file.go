// Package file provides a storage.Store that keeps one file per key in a
// directory on local disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/cory-johannsen/quartermaster/internal/storage"
)

const fileExt = ".rec"

// Store persists each key as <dir>/<escaped key>.rec. Writes go through a
// temporary file and a rename so readers never observe a partial value.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// New returns a Store rooted at dir, creating the directory if needed.
//
// Precondition: dir must be non-empty.
// Postcondition: Returns a Store whose directory exists, or a non-nil error.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("file store: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: creating %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+fileExt)
}

// Get reads the file for key.
//
// Postcondition: Returns storage.ErrNotFound when the file does not exist.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("file store: reading %q: %w", key, err)
	}
	return data, nil
}

// Set writes value for key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, storage.Entry{Key: key, Value: value})
}

// SetMany writes every entry in order. Each file is replaced atomically but
// the batch as a whole is not; a failure leaves earlier entries written.
func (s *Store) SetMany(ctx context.Context, entries ...storage.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if err := s.writeFile(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeFile(key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file store: creating temp file for %q: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file store: writing %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file store: closing %q: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file store: renaming %q: %w", key, err)
	}
	return nil
}
