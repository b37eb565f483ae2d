package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/pdulite/pdulite/registry"
	"github.com/pdulite/pdulite/schema"
)

// nativeIsLittle reports the byte order of the host.
var nativeIsLittle = binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 0x0001

// Encoder handles low-level bit-precise wire encoding. Fields are packed
// MSB-first with no inter-field padding.
type Encoder struct {
	buf      []byte
	nbits    int
	registry *registry.Registry
}

// NewEncoder creates a new wire format encoder
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0),
	}
}

// NewEncoderWithRegistry creates an encoder with a PDU registry
func NewEncoderWithRegistry(registry *registry.Registry) *Encoder {
	return &Encoder{
		buf:      make([]byte, 0),
		registry: registry,
	}
}

// Bytes returns the encoded bytes. The schema validator guarantees whole
// PDUs are byte-aligned; a mid-byte tail is padded with zero bits.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// BitLen returns the number of bits written so far.
func (e *Encoder) BitLen() int {
	return e.nbits
}

// Reset clears the encoder buffer
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.nbits = 0
}

// WriteBits appends the low `width` bits of v, honoring the field's
// endianness. Little and native orders apply to byte-aligned widths; widths
// that are not a multiple of 8 are always written big-endian.
func (e *Encoder) WriteBits(v uint64, width int, endian schema.Endianness) error {
	if width <= 0 || width > 64 {
		return fmt.Errorf("illegal bit width %d", width)
	}
	if width < 64 {
		v &= (1 << uint(width)) - 1
	}
	if width%8 == 0 && swapNeeded(endian) {
		v = swapBytes(v, width/8)
	}
	for i := width - 1; i >= 0; i-- {
		e.writeBit(byte(v >> uint(i) & 1))
	}
	return nil
}

// WriteBytes appends raw bytes at the current bit position.
func (e *Encoder) WriteBytes(data []byte) {
	if e.nbits%8 == 0 {
		e.buf = append(e.buf, data...)
		e.nbits += len(data) * 8
		return
	}
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			e.writeBit(b >> uint(i) & 1)
		}
	}
}

// writeBit appends a single bit.
func (e *Encoder) writeBit(bit byte) {
	if e.nbits%8 == 0 {
		e.buf = append(e.buf, 0)
	}
	if bit != 0 {
		e.buf[e.nbits/8] |= 0x80 >> uint(e.nbits%8)
	}
	e.nbits++
}

// swapNeeded reports whether values must be byte-swapped before MSB-first
// emission to honor the requested order.
func swapNeeded(endian schema.Endianness) bool {
	switch endian {
	case schema.LittleEndian:
		return true
	case schema.NativeEndian:
		return nativeIsLittle
	default:
		return false
	}
}

// swapBytes reverses the order of the low n bytes of v.
func swapBytes(v uint64, n int) uint64 {
	var out uint64
	for i := 0; i < n; i++ {
		out = out<<8 | (v >> uint(8*i) & 0xFF)
	}
	return out
}

// EncodePDU encodes a record using its PDU schema - main entry point.
// Offset-to fields are fixed up first, so callers need not populate them.
func EncodePDU(record map[string]interface{}, pdu *schema.PDU, reg *registry.Registry, version string) ([]byte, error) {
	fixed, err := SetOffsets(record, pdu, reg, version)
	if err != nil {
		return nil, err
	}
	encoder := NewEncoderWithRegistry(reg)
	pe := NewPDUEncoder(encoder)
	if err := pe.EncodePDU(fixed, pdu, version); err != nil {
		return nil, err
	}
	return encoder.Bytes(), nil
}
