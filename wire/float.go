package wire

import (
	"fmt"
	"math"

	"github.com/pdulite/pdulite/schema"
)

// FloatDecoder handles IEEE-754 decoding operations
type FloatDecoder struct {
	decoder *Decoder
}

// FloatEncoder handles IEEE-754 encoding operations
type FloatEncoder struct {
	encoder *Encoder
}

// NewFloatDecoder creates a new float decoder
func NewFloatDecoder(d *Decoder) *FloatDecoder {
	return &FloatDecoder{decoder: d}
}

// NewFloatEncoder creates a new float encoder
func NewFloatEncoder(e *Encoder) *FloatEncoder {
	return &FloatEncoder{encoder: e}
}

// DECODER METHODS

// DecodeFloat decodes a 32- or 64-bit IEEE-754 value at the field's
// endianness.
func (fd *FloatDecoder) DecodeFloat(f *schema.Field) (interface{}, error) {
	bits, err := fd.decoder.ReadBits(f.Bits(), f.ByteOrder())
	if err != nil {
		return nil, err
	}
	switch f.Bits() {
	case 32:
		return math.Float32frombits(uint32(bits)), nil
	case 64:
		return math.Float64frombits(bits), nil
	default:
		return nil, fmt.Errorf("illegal float size %d", f.Bits())
	}
}

// ENCODER METHODS

// EncodeFloat encodes a 32- or 64-bit IEEE-754 value at the field's
// endianness.
func (fe *FloatEncoder) EncodeFloat(v interface{}, f *schema.Field) error {
	var bits uint64
	switch f.Bits() {
	case 32:
		f32, err := toFloat32(v)
		if err != nil {
			return err
		}
		bits = uint64(math.Float32bits(f32))
	case 64:
		f64, err := toFloat64(v)
		if err != nil {
			return err
		}
		bits = math.Float64bits(f64)
	default:
		return fmt.Errorf("illegal float size %d", f.Bits())
	}
	return fe.encoder.WriteBits(bits, f.Bits(), f.ByteOrder())
}

// toFloat32 coerces numeric slot values into a float32.
func toFloat32(v interface{}) (float32, error) {
	switch n := v.(type) {
	case float32:
		return n, nil
	case float64:
		return float32(n), nil
	}
	if u, err := toUint64(v); err == nil {
		return float32(u), nil
	}
	return 0, fmt.Errorf("value must be a float, got %T", v)
}

// toFloat64 coerces numeric slot values into a float64.
func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	}
	if u, err := toUint64(v); err == nil {
		return float64(u), nil
	}
	return 0, fmt.Errorf("value must be a float, got %T", v)
}
