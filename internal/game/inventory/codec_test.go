package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/quartermaster/internal/game/inventory"
)

func TestString_Canonical(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityRare, inventory.TypeWand, 1)))
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeSword, 3)))
	assert.Equal(t, "common:sword:3,rare:wand:1", c.String())
	assert.Equal(t, "", inventory.NewContents().String())
}

func TestParseText(t *testing.T) {
	c, err := inventory.ParseText("common:sword:3,rare:wand:1,common:sword:2")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Amount(inventory.QualityCommon, inventory.TypeSword))
	assert.Equal(t, 1, c.Amount(inventory.QualityRare, inventory.TypeWand))
}

func TestParseText_Empty(t *testing.T) {
	c, err := inventory.ParseText("")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestParseText_DropsZeroAmounts(t *testing.T) {
	c, err := inventory.ParseText("common:sword:0,epic:boots:2")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestParseText_Malformed(t *testing.T) {
	for _, s := range []string{
		"common:sword",
		"common:sword:3:extra",
		"shiny:sword:1",
		"common:axe:1",
		"common:sword:lots",
		"common:sword:-1",
	} {
		_, err := inventory.ParseText(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestRecord_Empty(t *testing.T) {
	b := inventory.NewContents().MarshalRecord()
	c, err := inventory.UnmarshalRecord(b)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestRecord_MissingVersion(t *testing.T) {
	_, err := inventory.UnmarshalRecord([]byte{})
	assert.Error(t, err)
}

func TestRecord_FutureVersionRejected(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, inventory.RecordVersion+1)
	_, err := inventory.UnmarshalRecord(b)
	assert.Error(t, err)
}

func TestRecord_UnknownFieldsSkipped(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeSword, 3)))
	b := c.MarshalRecord()
	b = protowire.AppendTag(b, 15, protowire.BytesType)
	b = protowire.AppendString(b, "future")

	got, err := inventory.UnmarshalRecord(b)
	require.NoError(t, err)
	assert.True(t, c.Equal(got))
}

func TestRecord_Truncated(t *testing.T) {
	c := inventory.NewContents()
	require.NoError(t, c.Add(item(inventory.QualityCommon, inventory.TypeSword, 3)))
	b := c.MarshalRecord()
	_, err := inventory.UnmarshalRecord(b[:len(b)-2])
	assert.Error(t, err)
}

func TestRecord_InvalidEntryRejected(t *testing.T) {
	var e []byte
	e = protowire.AppendTag(e, 1, protowire.BytesType)
	e = protowire.AppendString(e, "shiny")
	e = protowire.AppendTag(e, 2, protowire.BytesType)
	e = protowire.AppendString(e, "sword")
	e = protowire.AppendTag(e, 3, protowire.VarintType)
	e = protowire.AppendVarint(e, 1)

	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, e)

	_, err := inventory.UnmarshalRecord(b)
	assert.ErrorIs(t, err, inventory.ErrInvalidItem)
}

func TestDecode_AcceptsBothFormats(t *testing.T) {
	legacy, err := inventory.Decode([]byte("common:helmet:2,rare:sword:1"))
	require.NoError(t, err)

	record, err := inventory.Decode(legacy.MarshalRecord())
	require.NoError(t, err)
	assert.True(t, legacy.Equal(record))

	empty, err := inventory.Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestProperty_TextRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genContents(t)
		got, err := inventory.ParseText(c.String())
		if err != nil {
			t.Fatalf("parse %q: %v", c.String(), err)
		}
		if !c.Equal(got) {
			t.Fatalf("round trip mismatch: %q vs %q", c.String(), got.String())
		}
	})
}

func TestProperty_RecordRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genContents(t)
		got, err := inventory.Decode(c.MarshalRecord())
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !c.Equal(got) {
			t.Fatalf("round trip mismatch: %q vs %q", c.String(), got.String())
		}
	})
}

func TestDecodeReport_LegacyFloorsAndSkips(t *testing.T) {
	c, dropped, err := inventory.DecodeReport([]byte("rare:sword:2.9,shiny:sword:1,common:boots:Inf,epic:wand:0"))
	require.NoError(t, err)
	assert.Equal(t, "rare:sword:2", c.String())
	assert.Equal(t, []string{"shiny:sword:1", "common:boots:Inf"}, dropped)

	c, err = inventory.Decode([]byte("garbage"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}
