package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pdulite/pdulite/schema"
)

func TestEncoder_WriteBits(t *testing.T) {
	tests := []struct {
		name   string
		writes []struct {
			v      uint64
			width  int
			endian schema.Endianness
		}
		want []byte
	}{
		{
			name: "single_byte",
			writes: []struct {
				v      uint64
				width  int
				endian schema.Endianness
			}{
				{0xAB, 8, schema.BigEndian},
			},
			want: []byte{0xAB},
		},
		{
			name: "sub_byte_fields_pack_msb_first",
			writes: []struct {
				v      uint64
				width  int
				endian schema.Endianness
			}{
				{0x1, 12, schema.BigEndian},
				{0x64, 12, schema.BigEndian},
			},
			// 000000000001 000001100100
			want: []byte{0x00, 0x10, 0x64},
		},
		{
			name: "little_endian_swaps_bytes",
			writes: []struct {
				v      uint64
				width  int
				endian schema.Endianness
			}{
				{0x0F, 32, schema.LittleEndian},
			},
			want: []byte{0x0F, 0x00, 0x00, 0x00},
		},
		{
			name: "big_endian_32",
			writes: []struct {
				v      uint64
				width  int
				endian schema.Endianness
			}{
				{0x0F, 32, schema.BigEndian},
			},
			want: []byte{0x00, 0x00, 0x00, 0x0F},
		},
		{
			name: "value_masked_to_width",
			writes: []struct {
				v      uint64
				width  int
				endian schema.Endianness
			}{
				{0xFFF, 4, schema.BigEndian},
				{0x0, 4, schema.BigEndian},
			},
			want: []byte{0xF0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder()
			for _, w := range tt.writes {
				if err := e.WriteBits(w.v, w.width, w.endian); err != nil {
					t.Fatalf("WriteBits failed: %v", err)
				}
			}
			if !bytes.Equal(e.Bytes(), tt.want) {
				t.Errorf("got % X, want % X", e.Bytes(), tt.want)
			}
		})
	}
}

func TestEncoder_WriteBytes_Unaligned(t *testing.T) {
	e := NewEncoder()
	if err := e.WriteBits(0xF, 4, schema.BigEndian); err != nil {
		t.Fatalf("WriteBits failed: %v", err)
	}
	e.WriteBytes([]byte{0xAB, 0xCD})
	if err := e.WriteBits(0x0, 4, schema.BigEndian); err != nil {
		t.Fatalf("WriteBits failed: %v", err)
	}

	want := []byte{0xFA, 0xBC, 0xD0}
	if !bytes.Equal(e.Bytes(), want) {
		t.Errorf("got % X, want % X", e.Bytes(), want)
	}
	if e.BitLen() != 24 {
		t.Errorf("BitLen = %d, want 24", e.BitLen())
	}
}

func TestDecoder_ReadBits_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		v      uint64
		width  int
		endian schema.Endianness
	}{
		{"one_bit", 1, 1, schema.BigEndian},
		{"twelve_bits", 0xABC, 12, schema.BigEndian},
		{"sixteen_little", 0x1234, 16, schema.LittleEndian},
		{"sixty_four", 0xDEADBEEFCAFEF00D, 64, schema.BigEndian},
		{"sixty_four_little", 0xDEADBEEFCAFEF00D, 64, schema.LittleEndian},
		{"native_sixteen", 0x4142, 16, schema.NativeEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder()
			if err := e.WriteBits(tt.v, tt.width, tt.endian); err != nil {
				t.Fatalf("WriteBits failed: %v", err)
			}
			// Pad to a whole byte so the buffer is well formed.
			if pad := (8 - e.BitLen()%8) % 8; pad > 0 {
				if err := e.WriteBits(0, pad, schema.BigEndian); err != nil {
					t.Fatalf("pad failed: %v", err)
				}
			}

			d := NewDecoder(e.Bytes())
			got, err := d.ReadBits(tt.width, tt.endian)
			if err != nil {
				t.Fatalf("ReadBits failed: %v", err)
			}
			if got != tt.v {
				t.Errorf("got %#x, want %#x", got, tt.v)
			}
		})
	}
}

func TestDecoder_ShortInput(t *testing.T) {
	d := NewDecoder([]byte{0xFF})
	if _, err := d.ReadBits(16, schema.BigEndian); !errors.Is(err, ErrShortInput) {
		t.Errorf("expected ErrShortInput, got %v", err)
	}

	d = NewDecoder([]byte{0x01, 0x02})
	if _, err := d.ReadBytes(3); !errors.Is(err, ErrShortInput) {
		t.Errorf("expected ErrShortInput, got %v", err)
	}
}

func TestDecoder_Remaining(t *testing.T) {
	d := NewDecoder([]byte{0x01, 0x02, 0x03})
	if _, err := d.ReadBytes(1); err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	if got := d.Remaining(); !bytes.Equal(got, []byte{0x02, 0x03}) {
		t.Errorf("Remaining = % X, want 02 03", got)
	}
}
