// Package inventory models equipment items and the per-player inventory that
// holds them, including its text and record encodings.
package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidItem is matched by every item validation failure.
var ErrInvalidItem = errors.New("invalid item")

// ErrInsufficientQuantity is matched when removing more than is held.
var ErrInsufficientQuantity = errors.New("insufficient quantity")

// Quality is an item rarity tier.
type Quality string

// Quality tiers, lowest first.
const (
	QualityCommon    Quality = "common"
	QualityUncommon  Quality = "uncommon"
	QualityRare      Quality = "rare"
	QualityEpic      Quality = "epic"
	QualityLegendary Quality = "legendary"
	QualityMythic    Quality = "mythic"
)

var qualities = []Quality{
	QualityCommon, QualityUncommon, QualityRare,
	QualityEpic, QualityLegendary, QualityMythic,
}

// Qualities returns every tier in ascending order.
func Qualities() []Quality {
	out := make([]Quality, len(qualities))
	copy(out, qualities)
	return out
}

// Valid reports whether q is a known tier.
func (q Quality) Valid() bool { return qualityRank(q) >= 0 }

func qualityRank(q Quality) int {
	for i, v := range qualities {
		if v == q {
			return i
		}
	}
	return -1
}

// ParseQuality normalizes s (trimmed, lowercased) and validates it.
//
// Postcondition: On failure the error matches ErrInvalidItem.
func ParseQuality(s string) (Quality, error) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	if !q.Valid() {
		return "", &ValidationError{Field: "quality", Value: s, Allowed: joinQualities()}
	}
	return q, nil
}

// ItemType is a kind of equipment.
type ItemType string

// Equipment kinds.
const (
	TypeHelmet     ItemType = "helmet"
	TypeGloves     ItemType = "gloves"
	TypeChestplate ItemType = "chestplate"
	TypeGreaves    ItemType = "greaves"
	TypeBoots      ItemType = "boots"
	TypeLeggings   ItemType = "leggings"
	TypeSword      ItemType = "sword"
	TypeShield     ItemType = "shield"
	TypeRobes      ItemType = "robes"
	TypeWand       ItemType = "wand"
)

var itemTypes = []ItemType{
	TypeHelmet, TypeGloves, TypeChestplate, TypeGreaves, TypeBoots,
	TypeLeggings, TypeSword, TypeShield, TypeRobes, TypeWand,
}

// ItemTypes returns every item type in display order.
func ItemTypes() []ItemType {
	out := make([]ItemType, len(itemTypes))
	copy(out, itemTypes)
	return out
}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool { return typeRank(t) >= 0 }

func typeRank(t ItemType) int {
	for i, v := range itemTypes {
		if v == t {
			return i
		}
	}
	return -1
}

// ParseItemType normalizes s (trimmed, lowercased) and validates it.
//
// Postcondition: On failure the error matches ErrInvalidItem.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "item type", Value: s, Allowed: joinTypes()}
	}
	return t, nil
}

// Item is a quantity of one (quality, type) pair.
type Item struct {
	Quality Quality
	Type    ItemType
	Amount  int
}

// String renders the canonical "quality:type:amount" triple.
func (i Item) String() string {
	return fmt.Sprintf("%s:%s:%d", i.Quality, i.Type, i.Amount)
}

// Label renders "quality type" for player-facing messages.
func (i Item) Label() string {
	return fmt.Sprintf("%s %s", i.Quality, i.Type)
}

// ValidateKind checks quality and type only.
//
// Postcondition: Returns nil, or an error matching ErrInvalidItem.
func (i Item) ValidateKind() error {
	if !i.Quality.Valid() {
		return &ValidationError{Field: "quality", Value: string(i.Quality), Allowed: joinQualities()}
	}
	if !i.Type.Valid() {
		return &ValidationError{Field: "item type", Value: string(i.Type), Allowed: joinTypes()}
	}
	return nil
}

// Validate checks quality, type, and that Amount is positive.
//
// Postcondition: Returns nil, or an error matching ErrInvalidItem.
func (i Item) Validate() error {
	if err := i.ValidateKind(); err != nil {
		return err
	}
	if i.Amount <= 0 {
		return &ValidationError{Field: "amount", Value: fmt.Sprint(i.Amount), Allowed: "a positive whole number"}
	}
	return nil
}

// ValidationError describes a field that is outside its allowed set.
type ValidationError struct {
	Field   string
	Value   string
	Allowed string
}

func (e *ValidationError) Error() string {
	if e.Field == "amount" {
		return fmt.Sprintf("Invalid amount: %s. Amount must be %s.", e.Value, e.Allowed)
	}
	return fmt.Sprintf("Invalid %s: %s. Valid %s are: %s", e.Field, e.Value, pluralField(e.Field), e.Allowed)
}

// Is makes ValidationError match ErrInvalidItem.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidItem }

// QuantityError reports a removal larger than the held amount.
type QuantityError struct {
	Quality Quality
	Type    ItemType
	Held    int
}

func (e *QuantityError) Error() string {
	if e.Held == 0 {
		return fmt.Sprintf("You don't have any %s %s in your inventory.", e.Quality, e.Type)
	}
	return fmt.Sprintf("You don't have enough %s %s to remove. You have %d.", e.Quality, e.Type, e.Held)
}

// Is makes QuantityError match ErrInsufficientQuantity.
func (e *QuantityError) Is(target error) bool { return target == ErrInsufficientQuantity }

func pluralField(field string) string {
	if field == "quality" {
		return "qualities"
	}
	return field + "s"
}

func joinQualities() string {
	parts := make([]string, len(qualities))
	for i, q := range qualities {
		parts[i] = string(q)
	}
	return strings.Join(parts, ", ")
}

func joinTypes() string {
	parts := make([]string, len(itemTypes))
	for i, t := range itemTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
