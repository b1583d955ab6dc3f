package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/quartermaster/internal/storage"
)

const upsertSQL = `
	INSERT INTO kv_store (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

// KVStore implements storage.Store on the kv_store table.
type KVStore struct {
	db *pgxpool.Pool
}

// NewKVStore returns a KVStore backed by db.
//
// Precondition: db must be open and the kv_store migration applied.
func NewKVStore(db *pgxpool.Pool) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value for key.
//
// Postcondition: Returns storage.ErrNotFound when no row exists.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying key %q: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.Exec(ctx, upsertSQL, key, value); err != nil {
		return fmt.Errorf("upserting key %q: %w", key, err)
	}
	return nil
}

// SetMany upserts every entry inside one transaction.
//
// Postcondition: Either all entries are stored or none are.
func (s *KVStore) SetMany(ctx context.Context, entries ...storage.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(upsertSQL, e.Key, e.Value)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upserting batch of %d: %w", len(entries), err)
		}
		return nil
	})
}

// Ping checks database connectivity.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
