package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/quartermaster/internal/storage"
	"github.com/cory-johannsen/quartermaster/internal/storage/file"
)

func TestNew_EmptyDir(t *testing.T) {
	_, err := file.New("")
	assert.Error(t, err)
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "saves")
	s, err := file.New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_GetMissing(t *testing.T) {
	s, err := file.New(t.TempDir())
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SetGet(t *testing.T) {
	s, err := file.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "alice", []byte("first")))
	require.NoError(t, s.Set(ctx, "alice", []byte("second")))
	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestStore_KeysAreEscaped(t *testing.T) {
	dir := t.TempDir()
	s, err := file.New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	key := "../escape/attempt"
	require.NoError(t, s.Set(ctx, key, []byte("x")))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")
}

func TestStore_SetManyPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s1, err := file.New(dir)
	require.NoError(t, err)
	require.NoError(t, s1.SetMany(ctx,
		storage.Entry{Key: "bob", Value: []byte("player")},
		storage.Entry{Key: "inventory_bob", Value: []byte("items")},
	))

	s2, err := file.New(dir)
	require.NoError(t, err)
	got, err := s2.Get(ctx, "inventory_bob")
	require.NoError(t, err)
	assert.Equal(t, []byte("items"), got)
}

func TestStore_CancelledContext(t *testing.T) {
	s, err := file.New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Set(ctx, "k", []byte("v")))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
