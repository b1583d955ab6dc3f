// Package pricing maps (item type, quality) to gold prices.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/quartermaster/internal/game/inventory"
	"github.com/cory-johannsen/quartermaster/internal/game/view"
)

// DefaultSellPercent is the buy-back rate applied when none is configured.
const DefaultSellPercent = 50

// ErrOverflow is returned when a total price does not fit in an int.
var ErrOverflow = errors.New("price overflow")

// Table holds base prices per item type and multipliers per quality.
// A Table is immutable after construction and safe for concurrent use.
type Table struct {
	base        map[inventory.ItemType]int
	multipliers map[inventory.Quality]int
	sellPercent int
}

// Default returns the standard price table.
func Default() *Table {
	return &Table{
		base: map[inventory.ItemType]int{
			inventory.TypeSword:      10,
			inventory.TypeHelmet:     18,
			inventory.TypeGloves:     13,
			inventory.TypeChestplate: 25,
			inventory.TypeGreaves:    22,
			inventory.TypeBoots:      16,
			inventory.TypeLeggings:   7,
			inventory.TypeShield:     15,
			inventory.TypeRobes:      44,
			inventory.TypeWand:       1,
		},
		multipliers: map[inventory.Quality]int{
			inventory.QualityCommon:    1,
			inventory.QualityUncommon:  5,
			inventory.QualityRare:      20,
			inventory.QualityEpic:      100,
			inventory.QualityLegendary: 1000,
			inventory.QualityMythic:    100000,
		},
		sellPercent: DefaultSellPercent,
	}
}

// tableFile is the YAML layout of a price table.
type tableFile struct {
	BasePrices         map[string]int `yaml:"base_prices"`
	QualityMultipliers map[string]int `yaml:"quality_multipliers"`
	SellPercent        *int           `yaml:"sell_percent"`
}

// Load reads a YAML price table from path.
//
// Precondition: path must be a readable file.
// Postcondition: Returns a complete, validated Table or a non-nil error.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pricing: cannot read %q: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pricing: %q: %w", path, err)
	}
	return t, nil
}

// Parse decodes a YAML price table. Every item type and quality must be
// priced, every price must be positive, and unknown names are rejected.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing price table: %w", err)
	}

	t := &Table{
		base:        make(map[inventory.ItemType]int, len(f.BasePrices)),
		multipliers: make(map[inventory.Quality]int, len(f.QualityMultipliers)),
		sellPercent: DefaultSellPercent,
	}
	var errs []error
	for name, price := range f.BasePrices {
		it, err := inventory.ParseItemType(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if price <= 0 {
			errs = append(errs, fmt.Errorf("base price for %s must be > 0, got %d", it, price))
		}
		t.base[it] = price
	}
	for name, mult := range f.QualityMultipliers {
		q, err := inventory.ParseQuality(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if mult <= 0 {
			errs = append(errs, fmt.Errorf("multiplier for %s must be > 0, got %d", q, mult))
		}
		t.multipliers[q] = mult
	}
	for _, it := range inventory.ItemTypes() {
		if _, ok := t.base[it]; !ok {
			errs = append(errs, fmt.Errorf("missing base price for %s", it))
		}
	}
	for _, q := range inventory.Qualities() {
		if _, ok := t.multipliers[q]; !ok {
			errs = append(errs, fmt.Errorf("missing multiplier for %s", q))
		}
	}
	if f.SellPercent != nil {
		if *f.SellPercent < 0 || *f.SellPercent > 100 {
			errs = append(errs, fmt.Errorf("sell_percent must be 0-100, got %d", *f.SellPercent))
		}
		t.sellPercent = *f.SellPercent
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid price table: %w", errors.Join(errs...))
	}
	return t, nil
}

// SellPercent returns the buy-back rate.
func (t *Table) SellPercent() int { return t.sellPercent }

// UnitPrice returns base(type) × multiplier(quality).
//
// Postcondition: unknown type or quality returns an error matching
// inventory.ErrInvalidItem.
func (t *Table) UnitPrice(q inventory.Quality, it inventory.ItemType) (int, error) {
	probe := inventory.Item{Quality: q, Type: it}
	if err := probe.ValidateKind(); err != nil {
		return 0, err
	}
	base, mult := t.base[it], t.multipliers[q]
	if base > math.MaxInt/mult {
		return 0, ErrOverflow
	}
	return base * mult, nil
}

// SellUnitPrice returns floor(UnitPrice × sellPercent / 100).
func (t *Table) SellUnitPrice(q inventory.Quality, it inventory.ItemType) (int, error) {
	unit, err := t.UnitPrice(q, it)
	if err != nil {
		return 0, err
	}
	return floorPercent(unit, t.sellPercent), nil
}

// floorPercent returns floor(n × pct / 100) for n ≥ 0 and 0 ≤ pct ≤ 100
// without overflowing the intermediate product.
func floorPercent(n, pct int) int {
	return n/100*pct + n%100*pct/100
}

// BuyTotal returns the cost of item.Amount units.
//
// Postcondition: returns ErrOverflow rather than a wrapped-around total.
func (t *Table) BuyTotal(item inventory.Item) (unit, total int, err error) {
	if err := item.Validate(); err != nil {
		return 0, 0, err
	}
	unit, err = t.UnitPrice(item.Quality, item.Type)
	if err != nil {
		return 0, 0, err
	}
	total, err = multiply(unit, item.Amount)
	return unit, total, err
}

// SellTotal returns the buy-back value of item.Amount units.
func (t *Table) SellTotal(item inventory.Item) (unit, total int, err error) {
	if err := item.Validate(); err != nil {
		return 0, 0, err
	}
	unit, err = t.SellUnitPrice(item.Quality, item.Type)
	if err != nil {
		return 0, 0, err
	}
	total, err = multiply(unit, item.Amount)
	return unit, total, err
}

func multiply(unit, amount int) (int, error) {
	if unit != 0 && amount > math.MaxInt/unit {
		return 0, ErrOverflow
	}
	return unit * amount, nil
}

// Table renders every (type, quality) pair with buy and sell prices.
func (t *Table) Table() view.Table {
	out := view.Table{
		Title:  "Prices",
		Header: []string{"Item Type", "Item Quality", "Buy", "Sell"},
	}
	for _, it := range inventory.ItemTypes() {
		for _, q := range inventory.Qualities() {
			buy, err := t.UnitPrice(q, it)
			if err != nil {
				continue
			}
			sell, _ := t.SellUnitPrice(q, it)
			out.Rows = append(out.Rows, []string{string(it), string(q), strconv.Itoa(buy), strconv.Itoa(sell)})
		}
	}
	return out
}

// Entry is one priced (type, quality) pair.
type Entry struct {
	ItemType inventory.ItemType `json:"item_type"`
	Quality  inventory.Quality  `json:"quality"`
	Buy      int                `json:"buy"`
	Sell     int                `json:"sell"`
}

// Entries lists every priced pair ordered by item type then quality.
func (t *Table) Entries() []Entry {
	var out []Entry
	for _, it := range inventory.ItemTypes() {
		for _, q := range inventory.Qualities() {
			buy, err := t.UnitPrice(q, it)
			if err != nil {
				continue
			}
			sell, _ := t.SellUnitPrice(q, it)
			out = append(out, Entry{ItemType: it, Quality: q, Buy: buy, Sell: sell})
		}
	}
	return out
}
