package inventory

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// RecordVersion is the schema version written by MarshalRecord.
const RecordVersion = 1

// Record field numbers.
const (
	fieldVersion protowire.Number = 1
	fieldEntry   protowire.Number = 2

	fieldEntryQuality protowire.Number = 1
	fieldEntryType    protowire.Number = 2
	fieldEntryAmount  protowire.Number = 3
)

// String renders the canonical text form: "quality:type:amount" triples
// joined by commas, in Items order. An empty ledger renders as "".
func (c *Contents) String() string {
	items := c.Items()
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ",")
}

// ParseText decodes the canonical text form. Duplicate kinds are merged and
// zero amounts are dropped.
//
// Postcondition: ParseText(c.String()) is Equal to c for any valid c.
func ParseText(s string) (*Contents, error) {
	c := NewContents()
	if strings.TrimSpace(s) == "" {
		return c, nil
	}
	for _, triple := range strings.Split(s, ",") {
		parts := strings.Split(triple, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("inventory: malformed entry %q", triple)
		}
		q, err := ParseQuality(parts[0])
		if err != nil {
			return nil, fmt.Errorf("inventory: entry %q: %w", triple, err)
		}
		t, err := ParseItemType(parts[1])
		if err != nil {
			return nil, fmt.Errorf("inventory: entry %q: %w", triple, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("inventory: entry %q: bad amount", triple)
		}
		if n == 0 {
			continue
		}
		if err := c.Add(Item{Quality: q, Type: t, Amount: n}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MarshalRecord encodes the ledger as a versioned record in protobuf wire
// format: field 1 version, field 2 repeated entry {1 quality, 2 type, 3 amount}.
func (c *Contents) MarshalRecord() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, RecordVersion)
	for _, it := range c.Items() {
		var e []byte
		e = protowire.AppendTag(e, fieldEntryQuality, protowire.BytesType)
		e = protowire.AppendString(e, string(it.Quality))
		e = protowire.AppendTag(e, fieldEntryType, protowire.BytesType)
		e = protowire.AppendString(e, string(it.Type))
		e = protowire.AppendTag(e, fieldEntryAmount, protowire.VarintType)
		e = protowire.AppendVarint(e, uint64(it.Amount))

		b = protowire.AppendTag(b, fieldEntry, protowire.BytesType)
		b = protowire.AppendBytes(b, e)
	}
	return b
}

// UnmarshalRecord decodes a record written by MarshalRecord. Unknown fields
// are skipped so newer writers stay readable.
func UnmarshalRecord(b []byte) (*Contents, error) {
	c := NewContents()
	var version uint64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("inventory record: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("inventory record: version: %w", protowire.ParseError(m))
			}
			version = v
			b = b[m:]
		case num == fieldEntry && typ == protowire.BytesType:
			raw, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("inventory record: entry: %w", protowire.ParseError(m))
			}
			it, err := unmarshalEntry(raw)
			if err != nil {
				return nil, err
			}
			if it.Amount > 0 {
				if err := c.Add(it); err != nil {
					return nil, fmt.Errorf("inventory record: %w", err)
				}
			}
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("inventory record: field %d: %w", num, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	if version == 0 {
		return nil, errors.New("inventory record: missing version")
	}
	if version > RecordVersion {
		return nil, fmt.Errorf("inventory record: unsupported version %d", version)
	}
	return c, nil
}

func unmarshalEntry(b []byte) (Item, error) {
	var it Item
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Item{}, fmt.Errorf("inventory entry: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldEntryQuality && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(b)
			if m < 0 {
				return Item{}, fmt.Errorf("inventory entry: quality: %w", protowire.ParseError(m))
			}
			it.Quality = Quality(v)
			b = b[m:]
		case num == fieldEntryType && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(b)
			if m < 0 {
				return Item{}, fmt.Errorf("inventory entry: type: %w", protowire.ParseError(m))
			}
			it.Type = ItemType(v)
			b = b[m:]
		case num == fieldEntryAmount && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return Item{}, fmt.Errorf("inventory entry: amount: %w", protowire.ParseError(m))
			}
			if v > uint64(maxAmount) {
				return Item{}, fmt.Errorf("inventory entry: amount %d out of range", v)
			}
			it.Amount = int(v)
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return Item{}, fmt.Errorf("inventory entry: field %d: %w", num, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	return it, nil
}

const maxAmount = int(^uint(0) >> 1)

// Decode reads a stored inventory value in either format: versioned record,
// or the legacy comma-separated text form. Empty input is an empty ledger.
// Unreadable legacy triples are skipped; see DecodeLegacy.
func Decode(b []byte) (*Contents, error) {
	c, _, err := DecodeReport(b)
	return c, err
}

// DecodeReport is Decode that also returns the legacy triples it skipped.
// A malformed versioned record is still an error.
func DecodeReport(b []byte) (*Contents, []string, error) {
	if len(b) == 0 {
		return NewContents(), nil, nil
	}
	if isRecord(b) {
		c, err := UnmarshalRecord(b)
		return c, nil, err
	}
	c, dropped := DecodeLegacy(string(b))
	return c, dropped, nil
}

// DecodeLegacy reads text written by older clients, which could store
// fractional, negative or NaN amounts. Fractional amounts are floored;
// triples that are malformed, name an unknown kind, or hold no positive
// amount are skipped and returned in dropped.
func DecodeLegacy(s string) (c *Contents, dropped []string) {
	c = NewContents()
	if strings.TrimSpace(s) == "" {
		return c, nil
	}
	for _, triple := range strings.Split(s, ",") {
		item, ok := parseLegacyTriple(triple)
		if !ok {
			dropped = append(dropped, triple)
			continue
		}
		if item.Amount == 0 {
			continue
		}
		if err := c.Add(item); err != nil {
			dropped = append(dropped, triple)
		}
	}
	return c, dropped
}

func parseLegacyTriple(triple string) (Item, bool) {
	parts := strings.Split(triple, ":")
	if len(parts) != 3 {
		return Item{}, false
	}
	q, err := ParseQuality(parts[0])
	if err != nil {
		return Item{}, false
	}
	t, err := ParseItemType(parts[1])
	if err != nil {
		return Item{}, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil || math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
		return Item{}, false
	}
	return Item{Quality: q, Type: t, Amount: int(math.Floor(f))}, true
}

// isRecord reports whether b starts with the version tag. Legacy text always
// starts with a printable quality name, never the 0x08 tag byte.
func isRecord(b []byte) bool {
	num, typ, n := protowire.ConsumeTag(b)
	return n > 0 && num == fieldVersion && typ == protowire.VarintType
}
