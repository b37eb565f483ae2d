package wire

import (
	"fmt"

	"github.com/pdulite/pdulite/schema"
)

// IntegerDecoder handles integer, constant and skip decoding operations
type IntegerDecoder struct {
	decoder *Decoder
}

// IntegerEncoder handles integer, constant and skip encoding operations
type IntegerEncoder struct {
	encoder *Encoder
}

// NewIntegerDecoder creates a new integer decoder
func NewIntegerDecoder(d *Decoder) *IntegerDecoder {
	return &IntegerDecoder{decoder: d}
}

// NewIntegerEncoder creates a new integer encoder
func NewIntegerEncoder(e *Encoder) *IntegerEncoder {
	return &IntegerEncoder{encoder: e}
}

// DECODER METHODS

// DecodeInteger decodes an unsigned bit pattern of the field's width.
func (id *IntegerDecoder) DecodeInteger(f *schema.Field) (uint64, error) {
	return id.decoder.ReadBits(f.Bits(), f.ByteOrder())
}

// DecodeConstant verifies that the wire bits match the field's declared
// default. A mismatch is an unrecoverable parse error.
func (id *IntegerDecoder) DecodeConstant(f *schema.Field) error {
	want, err := toUint64(f.Default)
	if err != nil {
		return fmt.Errorf("constant default: %v", err)
	}
	got, err := id.decoder.ReadBits(f.Bits(), f.ByteOrder())
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %#x, got %#x: %w", want, got, ErrConstantMismatch)
	}
	return nil
}

// DecodeSkip consumes a skip field's bits without assigning anything. A
// sibling-sized skip consumes the byte count held in the already-decoded
// sibling slot.
func (id *IntegerDecoder) DecodeSkip(record map[string]interface{}, f *schema.Field) error {
	width, err := skipWidth(record, f)
	if err != nil {
		return err
	}
	if width == 0 {
		return nil
	}
	return id.decoder.SkipBits(width)
}

// ENCODER METHODS

// EncodeInteger encodes an unsigned bit pattern of the field's width.
func (ie *IntegerEncoder) EncodeInteger(v uint64, f *schema.Field) error {
	return ie.encoder.WriteBits(v, f.Bits(), f.ByteOrder())
}

// EncodeConstant emits the field's declared default.
func (ie *IntegerEncoder) EncodeConstant(f *schema.Field) error {
	v, err := toUint64(f.Default)
	if err != nil {
		return fmt.Errorf("constant default: %v", err)
	}
	return ie.encoder.WriteBits(v, f.Bits(), f.ByteOrder())
}

// EncodeSkip emits a skip field's reserved bits from its default, or zeros
// when no default is declared.
func (ie *IntegerEncoder) EncodeSkip(record map[string]interface{}, f *schema.Field) error {
	width, err := skipWidth(record, f)
	if err != nil {
		return err
	}
	if width == 0 {
		return nil
	}
	var v uint64
	if f.Default != nil {
		if v, err = toUint64(f.Default); err != nil {
			return fmt.Errorf("skip default: %v", err)
		}
	}
	for width > 64 {
		ie.encoder.WriteBytes([]byte{0})
		width -= 8
	}
	return ie.encoder.WriteBits(v, width, f.ByteOrder())
}

// skipWidth resolves a skip field's width in bits: either the declared fixed
// width or eight times the byte count in the named sibling slot.
func skipWidth(record map[string]interface{}, f *schema.Field) (int, error) {
	if f.SizeRef == "" {
		return f.Bits(), nil
	}
	v, ok := record[f.SizeRef]
	if !ok || v == nil {
		return 0, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("skip size field %s: %v", f.SizeRef, err)
	}
	return n * 8, nil
}
