package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/quartermaster/internal/game/inventory"
)

func item(q inventory.Quality, t inventory.ItemType, n int) inventory.Item {
	return inventory.Item{Quality: q, Type: t, Amount: n}
}

// genItem draws a valid item with a positive amount.
func genItem() *rapid.Generator[inventory.Item] {
	return rapid.Custom(func(t *rapid.T) inventory.Item {
		return inventory.Item{
			Quality: rapid.SampledFrom(inventory.Qualities()).Draw(t, "quality"),
			Type:    rapid.SampledFrom(inventory.ItemTypes()).Draw(t, "type"),
			Amount:  rapid.IntRange(1, 10_000).Draw(t, "amount"),
		}
	})
}

func genContents(t *rapid.T) *inventory.Contents {
	c := inventory.NewContents()
	for _, it := range rapid.SliceOfN(genItem(), 0, 20).Draw(t, "items") {
		if err := c.Add(it); err != nil {
			t.Fatalf("add %v: %v", it, err)
		}
	}
	return c
}

func TestContents_AddMerges(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeHelmet, 2)))
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeHelmet, 3)))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 5, c.Amount(inventory.QualityCommon, inventory.TypeHelmet))
}

func TestContents_AddDistinctKinds(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeHelmet, 1)))
	require.NoError(t, c.Add(item(inventory.QualityRare, inventory.TypeHelmet, 1)))
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeSword, 1)))
	assert.Equal(t, 3, c.Len())
}

func TestContents_AddInvalidLeavesUnchanged(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeHelmet, 2)))
	before := c.Clone()

	assert.ErrorIs(t, c.Add(item("shiny", inventory.TypeHelmet, 1)), inventory.ErrInvalidItem)
	assert.ErrorIs(t, c.Add(item(inventory.QualityCommon, "axe", 1)), inventory.ErrInvalidItem)
	assert.ErrorIs(t, c.Add(item(inventory.QualityCommon, inventory.TypeHelmet, 0)), inventory.ErrInvalidItem)
	assert.True(t, before.Equal(c))
}

func TestContents_RemoveMoreThanHeld(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeSword, 2)))

	err := c.Remove(item(inventory.QualityCommon, inventory.TypeSword, 0), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrInsufficientQuantity)
	assert.Equal(t, "You don't have enough common sword to remove. You have 2.", err.Error())
	assert.Equal(t, 2, c.Amount(inventory.QualityCommon, inventory.TypeSword))
}

func TestContents_RemoveMissing(t *testing.T) {
	c := inventory.NewContents()
	err := c.Remove(item(inventory.QualityEpic, inventory.TypeShield, 0), 1)
	assert.ErrorIs(t, err, inventory.ErrInsufficientQuantity)
	assert.Equal(t, 0, c.Len())
}

func TestContents_RemoveToZeroDeletesEntry(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeSword, 2)))
	require.NoError(t, c.Remove(item(inventory.QualityCommon, inventory.TypeSword, 0), 1))
	assert.Equal(t, 1, c.Amount(inventory.QualityCommon, inventory.TypeSword))
	require.NoError(t, c.Remove(item(inventory.QualityCommon, inventory.TypeSword, 0), 1))
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Has(item(inventory.QualityCommon, inventory.TypeSword, 0), 0))
}

func TestContents_RemoveNonPositive(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeSword, 2)))
	assert.ErrorIs(t, c.Remove(item(inventory.QualityCommon, inventory.TypeSword, 0), 0), inventory.ErrInvalidItem)
	assert.ErrorIs(t, c.Remove(item(inventory.QualityCommon, inventory.TypeSword, 0), -1), inventory.ErrInvalidItem)
	assert.Equal(t, 2, c.Amount(inventory.QualityCommon, inventory.TypeSword))
}

func TestContents_Has(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityMythic, inventory.TypeRobes, 3)))
	probe := item(inventory.QualityMythic, inventory.TypeRobes, 0)
	assert.True(t, c.Has(probe, 1))
	assert.True(t, c.Has(probe, 3))
	assert.False(t, c.Has(probe, 4))
	assert.False(t, c.Has(item(inventory.QualityCommon, inventory.TypeRobes, 0), 1))
}

func TestContents_ItemsOrder(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityRare, inventory.TypeWand, 1)))
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeWand, 1)))
	require.NoError(t, c.Add(item(inventory.QualityEpic, inventory.TypeHelmet, 1)))

	got := c.Items()
	require.Len(t, got, 3)
	assert.Equal(t, inventory.TypeHelmet, got[0].Type)
	assert.Equal(t, inventory.QualityCommon, got[1].Quality)
	assert.Equal(t, inventory.QualityRare, got[2].Quality)
}

func TestContents_Table(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeSword, 3)))
	tbl := c.Table()
	assert.Equal(t, []string{"Item Type", "Item Quality", "Amount"}, tbl.Header)
	assert.Equal(t, [][]string{{"sword", "common", "3"}}, tbl.Rows)
	assert.True(t, inventory.NewContents().Table().Empty())
}

func TestContents_CloneIsIndependent(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeSword, 3)))
	cp := c.Clone()
	require.NoError(t, cp.Add(item(inventory.QualityCommon, inventory.TypeSword, 3)))
	assert.Equal(t, 3, c.Amount(inventory.QualityCommon, inventory.TypeSword))
	assert.Equal(t, 6, cp.Amount(inventory.QualityCommon, inventory.TypeSword))
}

func TestProperty_AddThenRemove_RestoresState(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genContents(t)
		before := c.Clone()
		it := genItem().Draw(t, "item")

		if err := c.Add(it); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := c.Remove(it, it.Amount); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if !before.Equal(c) {
			t.Fatalf("state changed: before=%q after=%q", before.String(), c.String())
		}
	})
}

func TestProperty_NoZeroEntries(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genContents(t)
		for _, it := range rapid.SliceOfN(genItem(), 0, 20).Draw(t, "removals") {
			_ = c.Remove(it, it.Amount)
		}
		for _, it := range c.Items() {
			if it.Amount <= 0 {
				t.Fatalf("non-positive entry %v", it)
			}
		}
	})
}

func TestProperty_FailedRemoveLeavesUnchanged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genContents(t)
		it := genItem().Draw(t, "item")
		held := c.Amount(it.Quality, it.Type)
		before := c.Clone()

		err := c.Remove(it, held+1)
		if err == nil {
			t.Fatalf("removing %d of %d should fail", held+1, held)
		}
		if !before.Equal(c) {
			t.Fatal("failed remove mutated contents")
		}
	})
}
