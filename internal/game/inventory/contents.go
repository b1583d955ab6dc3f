package inventory

import (
	"sort"
	"strconv"

	"github.com/cory-johannsen/quartermaster/internal/game/view"
)

type slot struct {
	quality  Quality
	itemType ItemType
}

// Contents is the in-memory item ledger: one amount per (quality, type).
// Amounts stored are always positive. Contents does no I/O.
type Contents struct {
	amounts map[slot]int
}

// NewContents returns an empty ledger.
func NewContents() *Contents {
	return &Contents{amounts: make(map[slot]int)}
}

// Add merges item into the ledger.
// It is atomic: on error nothing is modified.
//
// Precondition: none; item is validated here.
// Postcondition: on success the amount under (item.Quality, item.Type) grows
// by item.Amount; on error the error matches ErrInvalidItem.
func (c *Contents) Add(item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	key := slot{item.Quality, item.Type}
	if c.amounts[key] > maxAmount-item.Amount {
		return &ValidationError{Field: "amount", Value: strconv.Itoa(item.Amount), Allowed: "small enough to hold"}
	}
	c.amounts[key] += item.Amount
	return nil
}

// Remove takes amount units of item's (quality, type) out of the ledger.
// The entry is deleted when it reaches zero.
//
// Postcondition: on error nothing is modified; insufficient stock matches
// ErrInsufficientQuantity and a non-positive amount matches ErrInvalidItem.
func (c *Contents) Remove(item Item, amount int) error {
	probe := Item{Quality: item.Quality, Type: item.Type, Amount: amount}
	if err := probe.Validate(); err != nil {
		return err
	}
	key := slot{item.Quality, item.Type}
	held := c.amounts[key]
	if held < amount {
		return &QuantityError{Quality: item.Quality, Type: item.Type, Held: held}
	}
	if held == amount {
		delete(c.amounts, key)
	} else {
		c.amounts[key] = held - amount
	}
	return nil
}

// Has reports whether at least amount units of item's kind are held.
func (c *Contents) Has(item Item, amount int) bool {
	held, ok := c.amounts[slot{item.Quality, item.Type}]
	return ok && held >= amount
}

// Amount returns the held amount for (q, t), zero when absent.
func (c *Contents) Amount(q Quality, t ItemType) int {
	return c.amounts[slot{q, t}]
}

// Len returns the number of distinct entries.
func (c *Contents) Len() int { return len(c.amounts) }

// Items returns every entry ordered by item type then quality tier.
func (c *Contents) Items() []Item {
	out := make([]Item, 0, len(c.amounts))
	for k, n := range c.amounts {
		out = append(out, Item{Quality: k.quality, Type: k.itemType, Amount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := typeRank(out[i].Type), typeRank(out[j].Type)
		if ti != tj {
			return ti < tj
		}
		return qualityRank(out[i].Quality) < qualityRank(out[j].Quality)
	})
	return out
}

// Clone returns an independent copy.
func (c *Contents) Clone() *Contents {
	out := &Contents{amounts: make(map[slot]int, len(c.amounts))}
	for k, v := range c.amounts {
		out.amounts[k] = v
	}
	return out
}

// Equal reports whether both ledgers hold the same entries.
func (c *Contents) Equal(other *Contents) bool {
	if len(c.amounts) != len(other.amounts) {
		return false
	}
	for k, v := range c.amounts {
		if other.amounts[k] != v {
			return false
		}
	}
	return true
}

// Table renders the ledger for display.
func (c *Contents) Table() view.Table {
	t := view.Table{
		Title:  "Inventory",
		Header: []string{"Item Type", "Item Quality", "Amount"},
		Rows:   make([][]string, 0, len(c.amounts)),
	}
	for _, it := range c.Items() {
		t.Rows = append(t.Rows, []string{string(it.Type), string(it.Quality), strconv.Itoa(it.Amount)})
	}
	return t
}
