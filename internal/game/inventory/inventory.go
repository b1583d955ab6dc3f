package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/quartermaster/internal/storage"
)

// KeyPrefix prefixes every inventory key in the store.
const KeyPrefix = "inventory_"

// Key returns the store key for owner's inventory.
func Key(owner string) string { return KeyPrefix + owner }

// Inventory is one player's item ledger bound to a store. Every successful
// mutation is persisted before it returns.
// Inventory is not safe for concurrent use; a session owns it.
type Inventory struct {
	owner    string
	store    storage.Store
	contents *Contents
	dropped  []string
}

// New returns an empty inventory for owner.
//
// Precondition: owner must be non-empty; store must be non-nil.
func New(owner string, store storage.Store) *Inventory {
	return &Inventory{owner: owner, store: store, contents: NewContents()}
}

// Load reads owner's inventory from store. A missing key yields an empty
// inventory. Unreadable legacy triples are skipped and reported by Dropped.
//
// Postcondition: Returns a bound Inventory or a decode/store error.
func Load(ctx context.Context, owner string, store storage.Store) (*Inventory, error) {
	data, err := store.Get(ctx, Key(owner))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return New(owner, store), nil
		}
		return nil, fmt.Errorf("loading inventory for %q: %w", owner, err)
	}
	c, dropped, err := DecodeReport(data)
	if err != nil {
		return nil, fmt.Errorf("decoding inventory for %q: %w", owner, err)
	}
	return &Inventory{owner: owner, store: store, contents: c, dropped: dropped}, nil
}

// Dropped returns the legacy entries Load could not read.
func (inv *Inventory) Dropped() []string { return inv.dropped }

// Owner returns the owning player's name.
func (inv *Inventory) Owner() string { return inv.owner }

// Add merges item and persists.
//
// Postcondition: on any error (validation or store) the inventory is unchanged.
func (inv *Inventory) Add(ctx context.Context, item Item) error {
	return inv.mutate(ctx, func(c *Contents) error { return c.Add(item) })
}

// Remove takes amount units of item's kind and persists.
//
// Postcondition: on any error the inventory is unchanged; insufficient stock
// matches ErrInsufficientQuantity.
func (inv *Inventory) Remove(ctx context.Context, item Item, amount int) error {
	return inv.mutate(ctx, func(c *Contents) error { return c.Remove(item, amount) })
}

func (inv *Inventory) mutate(ctx context.Context, fn func(*Contents) error) error {
	next := inv.contents.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := inv.store.Set(ctx, Key(inv.owner), next.MarshalRecord()); err != nil {
		return fmt.Errorf("saving inventory for %q: %w", inv.owner, err)
	}
	inv.contents = next
	return nil
}

// Has reports whether at least amount units of item's kind are held.
func (inv *Inventory) Has(item Item, amount int) bool {
	return inv.contents.Has(item, amount)
}

// Save writes the current contents.
func (inv *Inventory) Save(ctx context.Context) error {
	if err := inv.store.Set(ctx, Key(inv.owner), inv.contents.MarshalRecord()); err != nil {
		return fmt.Errorf("saving inventory for %q: %w", inv.owner, err)
	}
	return nil
}

// Snapshot returns a copy of the current contents.
func (inv *Inventory) Snapshot() *Contents { return inv.contents.Clone() }

// Entry encodes c as the store entry for this inventory, for batched writes.
func (inv *Inventory) Entry(c *Contents) storage.Entry {
	return storage.Entry{Key: Key(inv.owner), Value: c.MarshalRecord()}
}

// Replace swaps in c after the caller has persisted it.
//
// Precondition: c must already be stored under Key(Owner()).
func (inv *Inventory) Replace(c *Contents) { inv.contents = c }

// String renders the canonical text form of the current contents.
func (inv *Inventory) String() string { return inv.contents.String() }
