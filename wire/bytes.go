package wire

import (
	"bytes"
	"fmt"

	"github.com/pdulite/pdulite/schema"
)

// BytesDecoder handles binary, string and variable decoding operations
type BytesDecoder struct {
	decoder *Decoder
}

// BytesEncoder handles binary, string and variable encoding operations
type BytesEncoder struct {
	encoder *Encoder
}

// NewBytesDecoder creates a new bytes decoder
func NewBytesDecoder(d *Decoder) *BytesDecoder {
	return &BytesDecoder{decoder: d}
}

// NewBytesEncoder creates a new bytes encoder
func NewBytesEncoder(e *Encoder) *BytesEncoder {
	return &BytesEncoder{encoder: e}
}

// DECODER METHODS

// DecodeBinary consumes exactly the field's declared byte count.
func (bd *BytesDecoder) DecodeBinary(f *schema.Field) ([]byte, error) {
	return bd.decoder.ReadBytes(f.Size)
}

// DecodeString consumes the field's declared byte count and strips trailing
// zero bytes.
func (bd *BytesDecoder) DecodeString(f *schema.Field) (string, error) {
	data, err := bd.decoder.ReadBytes(f.Size)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(data, "\x00")), nil
}

// DecodeVariable consumes the byte count held in the already-decoded sibling
// length slot.
func (bd *BytesDecoder) DecodeVariable(record map[string]interface{}, f *schema.Field) ([]byte, error) {
	length, err := variableLength(record, f)
	if err != nil {
		return nil, err
	}
	return bd.decoder.ReadBytes(length)
}

// ENCODER METHODS

// EncodeBinary writes exactly the field's declared byte count. Short values
// fail; long values are truncated.
func (be *BytesEncoder) EncodeBinary(v interface{}, f *schema.Field) error {
	data, err := toBytes(v)
	if err != nil {
		return err
	}
	if len(data) < f.Size {
		return fmt.Errorf("have %d bytes, need %d: %w", len(data), f.Size, ErrBinaryTooShort)
	}
	be.encoder.WriteBytes(data[:f.Size])
	return nil
}

// EncodeString writes the field's declared byte count, padding short values
// with trailing zero bytes and truncating long ones.
func (be *BytesEncoder) EncodeString(v interface{}, f *schema.Field) error {
	data, err := toBytes(v)
	if err != nil {
		return err
	}
	if len(data) >= f.Size {
		be.encoder.WriteBytes(data[:f.Size])
		return nil
	}
	be.encoder.WriteBytes(data)
	be.encoder.WriteBytes(make([]byte, f.Size-len(data)))
	return nil
}

// EncodeVariable writes exactly the byte count held in the sibling length
// slot, with no padding.
func (be *BytesEncoder) EncodeVariable(record map[string]interface{}, v interface{}, f *schema.Field) error {
	length, err := variableLength(record, f)
	if err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	if v == nil {
		return fmt.Errorf("length field %s is %d: %w", f.SizeRef, length, ErrMissingValue)
	}
	data, err := toBytes(v)
	if err != nil {
		return err
	}
	if len(data) < length {
		return fmt.Errorf("have %d bytes, length field %s says %d: %w", len(data), f.SizeRef, length, ErrBinaryTooShort)
	}
	be.encoder.WriteBytes(data[:length])
	return nil
}

// variableLength reads the sibling length slot of a variable field.
func variableLength(record map[string]interface{}, f *schema.Field) (int, error) {
	v, ok := record[f.SizeRef]
	if !ok || v == nil {
		return 0, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("length field %s: %v", f.SizeRef, err)
	}
	return n, nil
}
