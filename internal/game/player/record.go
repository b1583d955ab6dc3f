package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// RecordVersion is the schema version written for player records.
const RecordVersion = 1

const (
	fieldVersion protowire.Number = 1
	fieldName    protowire.Number = 2
	fieldLevel   protowire.Number = 3
	fieldGold    protowire.Number = 4
)

// record is the stored form of a player, excluding the inventory.
type record struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Gold  int    `json:"gold"`
}

func (r record) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, RecordVersion)
	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, r.Name)
	b = protowire.AppendTag(b, fieldLevel, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(r.Level)))
	b = protowire.AppendTag(b, fieldGold, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Gold))
	return b
}

// decodeRecord reads either the versioned record or a legacy JSON object.
func decodeRecord(b []byte) (record, error) {
	if len(b) > 0 && b[0] == '{' {
		return decodeLegacy(b)
	}
	return unmarshalRecord(b)
}

// legacyRecord is the JSON written by older clients, whose numbers may be
// fractional, negative or null.
type legacyRecord struct {
	Name  string   `json:"name"`
	Level *float64 `json:"level"`
	Gold  *float64 `json:"gold"`
}

// decodeLegacy floors fractional stats and clamps negative or missing ones
// to zero so a damaged save still loads.
func decodeLegacy(b []byte) (record, error) {
	var lr legacyRecord
	if err := json.Unmarshal(b, &lr); err != nil {
		return record{}, fmt.Errorf("player record: legacy json: %w", err)
	}
	return record{Name: lr.Name, Level: legacyInt(lr.Level), Gold: legacyInt(lr.Gold)}, nil
}

func legacyInt(v *float64) int {
	if v == nil || *v <= 0 {
		return 0
	}
	if *v >= math.MaxInt64 {
		return math.MaxInt
	}
	return int(math.Floor(*v))
}

func unmarshalRecord(b []byte) (record, error) {
	var r record
	var version uint64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return record{}, fmt.Errorf("player record: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return record{}, fmt.Errorf("player record: version: %w", protowire.ParseError(m))
			}
			version = v
			b = b[m:]
		case num == fieldName && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(b)
			if m < 0 {
				return record{}, fmt.Errorf("player record: name: %w", protowire.ParseError(m))
			}
			r.Name = v
			b = b[m:]
		case num == fieldLevel && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return record{}, fmt.Errorf("player record: level: %w", protowire.ParseError(m))
			}
			r.Level = int(protowire.DecodeZigZag(v))
			b = b[m:]
		case num == fieldGold && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return record{}, fmt.Errorf("player record: gold: %w", protowire.ParseError(m))
			}
			if v > uint64(int(^uint(0)>>1)) {
				return record{}, fmt.Errorf("player record: gold %d out of range", v)
			}
			r.Gold = int(v)
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return record{}, fmt.Errorf("player record: field %d: %w", num, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	if version == 0 {
		return record{}, errors.New("player record: missing version")
	}
	if version > RecordVersion {
		return record{}, fmt.Errorf("player record: unsupported version %d", version)
	}
	return r, nil
}
