package wire

import (
	"bytes"
	"testing"

	"github.com/pdulite/pdulite/registry"
	"github.com/pdulite/pdulite/schema"
)

// offsetFixture builds the offset PDU: three offset-to fields pointing at
// targets separated by a variable field, the last target conditionally
// elided.
func offsetFixture(t *testing.T) (*registry.Registry, *schema.PDU) {
	t.Helper()
	reg := registry.NewRegistry()
	mustRegister(t, reg, &schema.PDU{
		Name: "OffsetPdu",
		Fields: []*schema.Field{
			{Name: "offset_a", Kind: schema.KindInteger, Size: 16, OffsetTo: "field_a"},
			{Name: "offset_b", Kind: schema.KindInteger, Size: 16, OffsetTo: "field_b"},
			{Name: "offset_c", Kind: schema.KindInteger, Size: 16, OffsetTo: "field_c"},
			{Name: "field_a", Kind: schema.KindInteger, Size: 8, Default: 0x0E},
			{Name: "size_field", Kind: schema.KindInteger, Size: 16},
			{Name: "variable_field", Kind: schema.KindVariable, SizeRef: "size_field"},
			{Name: "field_b", Kind: schema.KindInteger, Size: 8, Default: 0x0F},
			{Name: "flag_c", Kind: schema.KindInteger, Size: 8},
			{Name: "field_c", Kind: schema.KindInteger, Size: 8, Conditional: "flag_c"},
		},
	})
	pdu, _ := reg.GetPDU("OffsetPdu")
	return reg, pdu
}

func TestSetOffsets(t *testing.T) {
	reg, pdu := offsetFixture(t)
	record := map[string]interface{}{
		"size_field":     uint64(4),
		"variable_field": []byte("test"),
		"flag_c":         uint64(0),
	}

	fixed, err := SetOffsets(record, pdu, reg, "")
	if err != nil {
		t.Fatalf("SetOffsets failed: %v", err)
	}

	if fixed["offset_a"] != uint64(6) {
		t.Errorf("offset_a = %v, want 6", fixed["offset_a"])
	}
	if fixed["offset_b"] != uint64(13) {
		t.Errorf("offset_b = %v, want 13", fixed["offset_b"])
	}
	if fixed["offset_c"] != uint64(0) {
		t.Errorf("offset_c = %v, want 0 for elided target", fixed["offset_c"])
	}

	// The input record is never mutated.
	if _, set := record["offset_a"]; set {
		t.Error("SetOffsets must not mutate its input")
	}
}

func TestEncodePDU_OffsetsWithAbsentTarget(t *testing.T) {
	reg, pdu := offsetFixture(t)
	record := map[string]interface{}{
		"size_field":     uint64(4),
		"variable_field": []byte("test"),
		"flag_c":         uint64(0),
	}

	encoded, err := EncodePDU(record, pdu, reg, "")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	want := []byte{
		0x00, 0x06, // offset_a -> field_a
		0x00, 0x0D, // offset_b -> field_b
		0x00, 0x00, // offset_c -> elided field_c
		0x0E,       // field_a
		0x00, 0x04, // size_field
		't', 'e', 's', 't', // variable_field
		0x0F, // field_b
		0x00, // flag_c
	}
	if !bytes.Equal(encoded, want) {
		t.Fatalf("encoded = % X, want % X", encoded, want)
	}

	// The offsets point where they claim to.
	if encoded[fixedOffset(t, encoded, 0)] != 0x0E {
		t.Errorf("offset_a does not land on field_a")
	}
	if encoded[fixedOffset(t, encoded, 2)] != 0x0F {
		t.Errorf("offset_b does not land on field_b")
	}

	decoded, rest, err := DecodePDU(mustPrototype(t, reg, "OffsetPdu"), encoded, pdu, reg, "")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("expected empty remainder, got % X", rest)
	}
	if decoded["field_c"] != nil {
		t.Errorf("field_c should stay at default, got %v", decoded["field_c"])
	}
}

// fixedOffset reads the big-endian 16-bit offset slot starting at byte pos.
func fixedOffset(t *testing.T, encoded []byte, pos int) int {
	t.Helper()
	return int(encoded[pos])<<8 | int(encoded[pos+1])
}

func TestSetOffsets_TargetPresent(t *testing.T) {
	reg, pdu := offsetFixture(t)
	record := map[string]interface{}{
		"size_field":     uint64(2),
		"variable_field": []byte("hi"),
		"flag_c":         uint64(1),
		"field_c":        uint64(0x7F),
	}

	fixed, err := SetOffsets(record, pdu, reg, "")
	if err != nil {
		t.Fatalf("SetOffsets failed: %v", err)
	}

	// field_c sits after offsets(6) + field_a(1) + size_field(2) +
	// variable(2) + field_b(1) + flag_c(1).
	if fixed["offset_c"] != uint64(13) {
		t.Errorf("offset_c = %v, want 13", fixed["offset_c"])
	}
}

func TestSetOffsets_VersionExcludedTarget(t *testing.T) {
	reg := registry.NewRegistry()
	mustRegister(t, reg, &schema.PDU{
		Name: "VersionedOffsetPdu",
		Fields: []*schema.Field{
			{Name: "offset_n", Kind: schema.KindInteger, Size: 16, OffsetTo: "newField"},
			{Name: "base", Kind: schema.KindInteger, Size: 8, Default: 1},
			{Name: "newField", Kind: schema.KindInteger, Size: 8, Default: 2, Version: ">= 2.0.0"},
		},
	})
	pdu, _ := reg.GetPDU("VersionedOffsetPdu")

	fixed, err := SetOffsets(map[string]interface{}{}, pdu, reg, "1.0.0")
	if err != nil {
		t.Fatalf("SetOffsets failed: %v", err)
	}
	if fixed["offset_n"] != uint64(0) {
		t.Errorf("offset_n = %v, want 0 for version-excluded target", fixed["offset_n"])
	}

	fixed, err = SetOffsets(map[string]interface{}{}, pdu, reg, "2.0.0")
	if err != nil {
		t.Fatalf("SetOffsets failed: %v", err)
	}
	if fixed["offset_n"] != uint64(3) {
		t.Errorf("offset_n = %v, want 3", fixed["offset_n"])
	}
}
