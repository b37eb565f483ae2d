package wire

import (
	"fmt"

	"github.com/pdulite/pdulite/registry"
	"github.com/pdulite/pdulite/schema"
)

// Decoder handles low-level bit-precise wire decoding
type Decoder struct {
	buf      []byte
	pos      int // bit position
	registry *registry.Registry
}

// NewDecoder creates a new wire format decoder
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		buf: data,
		pos: 0,
	}
}

// NewDecoderWithRegistry creates a decoder with a PDU registry
func NewDecoderWithRegistry(data []byte, registry *registry.Registry) *Decoder {
	return &Decoder{
		buf:      data,
		pos:      0,
		registry: registry,
	}
}

// BitsRemaining returns the number of unread bits.
func (d *Decoder) BitsRemaining() int {
	return len(d.buf)*8 - d.pos
}

// Remaining returns the unconsumed tail of the input. Whole PDUs consume an
// integral number of bytes, so the position is byte-aligned here.
func (d *Decoder) Remaining() []byte {
	return d.buf[(d.pos+7)/8:]
}

// ReadBits consumes `width` bits and returns them as an unsigned value,
// honoring the field's endianness the same way WriteBits does.
func (d *Decoder) ReadBits(width int, endian schema.Endianness) (uint64, error) {
	if width <= 0 || width > 64 {
		return 0, fmt.Errorf("illegal bit width %d", width)
	}
	if d.BitsRemaining() < width {
		return 0, fmt.Errorf("need %d bits, have %d: %w", width, d.BitsRemaining(), ErrShortInput)
	}
	var v uint64
	for i := 0; i < width; i++ {
		v = v<<1 | uint64(d.readBit())
	}
	if width%8 == 0 && swapNeeded(endian) {
		v = swapBytes(v, width/8)
	}
	return v, nil
}

// ReadBytes consumes n bytes at the current bit position.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative byte count %d", n)
	}
	if d.BitsRemaining() < n*8 {
		return nil, fmt.Errorf("need %d bytes, have %d bits: %w", n, d.BitsRemaining(), ErrShortInput)
	}
	if d.pos%8 == 0 {
		start := d.pos / 8
		out := make([]byte, n)
		copy(out, d.buf[start:start+n])
		d.pos += n * 8
		return out, nil
	}
	out := make([]byte, n)
	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			b = b<<1 | d.readBit()
		}
		out[i] = b
	}
	return out, nil
}

// SkipBits discards `width` bits.
func (d *Decoder) SkipBits(width int) error {
	if d.BitsRemaining() < width {
		return fmt.Errorf("cannot skip %d bits, have %d: %w", width, d.BitsRemaining(), ErrShortInput)
	}
	d.pos += width
	return nil
}

// readBit consumes a single bit.
func (d *Decoder) readBit() byte {
	b := d.buf[d.pos/8] >> uint(7-d.pos%8) & 1
	d.pos++
	return b
}

// DecodePDU decodes wire bytes using a PDU schema - main entry point.
// The prototype record seeds defaults for virtual, subrecord and gated
// fields; the unconsumed tail is returned alongside the record.
func DecodePDU(prototype map[string]interface{}, data []byte, pdu *schema.PDU, reg *registry.Registry, version string) (map[string]interface{}, []byte, error) {
	decoder := NewDecoderWithRegistry(data, reg)
	pd := NewPDUDecoder(decoder)
	record, err := pd.DecodePDU(prototype, pdu, version)
	if err != nil {
		return nil, nil, err
	}
	return record, decoder.Remaining(), nil
}
