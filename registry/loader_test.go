package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdulite/pdulite/schema"
)

const headerSchema = `
pdus:
  - name: Header
    fields:
      - name: proto_version
        type: integer
        size: 8
        default: 1
      - name: flags
        type: integer
        size: 8
      - name: body_len
        type: integer
        size: 16
      - name: body
        type: variable
        size: body_len
      - name: checksum
        type: integer
        size: 32
        endian: little
        version: ">= 2.0.0"
`

const envelopeSchema = `
pdus:
  - name: Envelope
    fields:
      - name: header
        type: subrecord
        pdu: Header
      - name: trailer
        type: constant
        size: 8
        default: 255
`

func writeSchemaFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write schema file: %v", err)
	}
	return path
}

func TestLoadSchema_SingleFile(t *testing.T) {
	r := NewRegistry()
	path := writeSchemaFile(t, t.TempDir(), "header.yaml", headerSchema)

	if err := r.LoadSchema(path); err != nil {
		t.Fatalf("LoadSchema failed: %v", err)
	}

	pdu, err := r.GetPDU("Header")
	if err != nil {
		t.Fatalf("GetPDU failed: %v", err)
	}

	if len(pdu.Fields) != 5 {
		t.Fatalf("loaded %d fields, want 5", len(pdu.Fields))
	}

	body := pdu.FieldByName("body")
	if body.Kind != schema.KindVariable || body.SizeRef != "body_len" {
		t.Errorf("body = %+v, want variable sized by body_len", body)
	}
	checksum := pdu.FieldByName("checksum")
	if checksum.Endian != schema.LittleEndian || checksum.Version != ">= 2.0.0" {
		t.Errorf("checksum = %+v, want little-endian gated field", checksum)
	}
	if pdu.FieldByName("proto_version").Default != 1 {
		t.Errorf("proto_version default = %v, want 1", pdu.FieldByName("proto_version").Default)
	}
}

func TestLoadSchema_DirectoryWithCrossFileReferences(t *testing.T) {
	r := NewRegistry()
	dir := t.TempDir()
	// The envelope file sorts before the header file; registration must
	// still resolve the subrecord dependency.
	writeSchemaFile(t, dir, "a_envelope.yaml", envelopeSchema)
	writeSchemaFile(t, dir, "z_header.yml", headerSchema)

	if err := r.LoadSchema(dir); err != nil {
		t.Fatalf("LoadSchema failed: %v", err)
	}

	for _, name := range []string{"Header", "Envelope"} {
		if _, err := r.GetPDU(name); err != nil {
			t.Errorf("GetPDU(%s) failed: %v", name, err)
		}
	}
}

func TestLoadSchema_Invalid(t *testing.T) {
	t.Run("missing_path", func(t *testing.T) {
		if err := NewRegistry().LoadSchema(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing path")
		}
	})

	t.Run("bad_yaml", func(t *testing.T) {
		path := writeSchemaFile(t, t.TempDir(), "bad.yaml", "pdus: [pdus: {")
		if err := NewRegistry().LoadSchema(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})

	t.Run("unresolvable_subrecord", func(t *testing.T) {
		path := writeSchemaFile(t, t.TempDir(), "dangling.yaml", `
pdus:
  - name: Dangling
    fields:
      - name: sub
        type: subrecord
        pdu: Nowhere
`)
		if err := NewRegistry().LoadSchema(path); err == nil {
			t.Error("expected error for unresolvable subrecord reference")
		}
	})

	t.Run("invalid_definition", func(t *testing.T) {
		path := writeSchemaFile(t, t.TempDir(), "odd.yaml", `
pdus:
  - name: Odd
    fields:
      - name: n
        type: integer
        size: 12
`)
		if err := NewRegistry().LoadSchema(path); err == nil {
			t.Error("expected definition-time error for misaligned pdu")
		}
	})
}
