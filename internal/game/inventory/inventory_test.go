package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/quartermaster/internal/game/inventory"
	"github.com/cory-johannsen/quartermaster/internal/storage"
	"github.com/cory-johannsen/quartermaster/internal/storage/memory"
)

// brokenStore fails every write.
type brokenStore struct{ *memory.Store }

func (brokenStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }
func (brokenStore) SetMany(context.Context, ...storage.Entry) error {
	return errors.New("disk full")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "inventory_alice", inventory.Key("alice"))
}

func TestLoad_MissingIsEmpty(t *testing.T) {
	inv, err := inventory.Load(context.Background(), "alice", memory.New())
	require.NoError(t, err)
	assert.Equal(t, "alice", inv.Owner())
	assert.Equal(t, 0, inv.Snapshot().Len())
}

func TestInventory_AddPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	inv := inventory.New("alice", store)

	require.NoError(t, inv.Add(ctx, item(inventory.QualityCommon, inventory.TypeHelmet, 2)))
	require.NoError(t, inv.Add(ctx, item(inventory.QualityCommon, inventory.TypeHelmet, 3)))

	reloaded, err := inventory.Load(ctx, "alice", store)
	require.NoError(t, err)
	assert.Equal(t, "common:helmet:5", reloaded.String())
}

func TestInventory_RemovePersists(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	inv := inventory.New("alice", store)
	require.NoError(t, inv.Add(ctx, item(inventory.QualityCommon, inventory.TypeSword, 1)))
	require.NoError(t, inv.Remove(ctx, item(inventory.QualityCommon, inventory.TypeSword, 0), 1))

	reloaded, err := inventory.Load(ctx, "alice", store)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Snapshot().Len())
}

func TestInventory_RemoveTooMany(t *testing.T) {
	ctx := context.Background()
	inv := inventory.New("alice", memory.New())
	require.NoError(t, inv.Add(ctx, item(inventory.QualityCommon, inventory.TypeSword, 2)))

	err := inv.Remove(ctx, item(inventory.QualityCommon, inventory.TypeSword, 0), 5)
	assert.ErrorIs(t, err, inventory.ErrInsufficientQuantity)
	assert.True(t, inv.Has(item(inventory.QualityCommon, inventory.TypeSword, 0), 2))
}

func TestInventory_StoreFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	inv := inventory.New("alice", brokenStore{memory.New()})

	err := inv.Add(ctx, item(inventory.QualityCommon, inventory.TypeSword, 1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, inventory.ErrInvalidItem)
	assert.Equal(t, 0, inv.Snapshot().Len())
	assert.Error(t, inv.Save(ctx))
}

func TestLoad_LegacyText(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, "inventory_bob", []byte("common:sword:3,rare:wand:1")))

	inv, err := inventory.Load(ctx, "bob", store)
	require.NoError(t, err)
	assert.True(t, inv.Has(item(inventory.QualityCommon, inventory.TypeSword, 0), 3))

	require.NoError(t, inv.Save(ctx))
	raw, err := store.Get(ctx, "inventory_bob")
	require.NoError(t, err)
	assert.Equal(t, byte(0x08), raw[0], "save upgrades to the record format")
}

func TestLoad_LegacyTextSkipsBadEntries(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	raw := "common:sword:3,rare:wand:-2,epic:boots:NaN,garbage,mythic:helmet:1.9"
	require.NoError(t, store.Set(ctx, "inventory_bob", []byte(raw)))

	inv, err := inventory.Load(ctx, "bob", store)
	require.NoError(t, err)
	assert.Equal(t, "mythic:helmet:1,common:sword:3", inv.String())
	assert.Equal(t, []string{"rare:wand:-2", "epic:boots:NaN", "garbage"}, inv.Dropped())
}

func TestLoad_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	// Version tag followed by a truncated entry.
	require.NoError(t, store.Set(ctx, "inventory_bob", []byte{0x08, 0x01, 0x12, 0x05, 0x0a}))
	_, err := inventory.Load(ctx, "bob", store)
	assert.Error(t, err)
}

func TestInventory_EntryAndReplace(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	inv := inventory.New("carol", store)

	next := inv.Snapshot()
	require.NoError(t, next.Add(item(inventory.QualityEpic, inventory.TypeShield, 1)))
	e := inv.Entry(next)
	assert.Equal(t, "inventory_carol", e.Key)
	require.NoError(t, store.SetMany(ctx, e))
	inv.Replace(next)

	reloaded, err := inventory.Load(ctx, "carol", store)
	require.NoError(t, err)
	assert.Equal(t, inv.String(), reloaded.String())
}
