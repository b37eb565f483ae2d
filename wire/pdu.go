package wire

import (
	"fmt"

	"github.com/pdulite/pdulite/schema"
)

// PDUDecoder handles whole-PDU decoding operations
type PDUDecoder struct {
	decoder *Decoder
}

// PDUEncoder handles whole-PDU encoding operations
type PDUEncoder struct {
	encoder *Encoder
}

// NewPDUDecoder creates a new PDU decoder
func NewPDUDecoder(d *Decoder) *PDUDecoder {
	return &PDUDecoder{decoder: d}
}

// NewPDUEncoder creates a new PDU encoder
func NewPDUEncoder(e *Encoder) *PDUEncoder {
	return &PDUEncoder{encoder: e}
}

// ENCODER METHODS

// EncodePDU encodes each field in declaration order through its version and
// conditional gates. Offset-to fields must already be fixed up (the EncodePDU
// entry point in encoder.go does this).
func (pe *PDUEncoder) EncodePDU(record map[string]interface{}, pdu *schema.PDU, version string) error {
	for _, f := range pdu.Fields {
		if err := pe.encodeField(record, f, version); err != nil {
			return wrapWithField(err, f.Name)
		}
	}
	return nil
}

// encodeField applies the version and conditional wrappers, then dispatches
// on the field kind.
func (pe *PDUEncoder) encodeField(record map[string]interface{}, f *schema.Field, version string) error {
	active, err := fieldActive(f, version)
	if err != nil {
		return err
	}
	if !active {
		return nil
	}
	if f.Conditional != "" && isAbsent(record[f.Conditional]) {
		return nil
	}

	switch f.Kind {
	case schema.KindVirtual:
		return nil
	case schema.KindConstant:
		return NewIntegerEncoder(pe.encoder).EncodeConstant(f)
	case schema.KindSkip:
		return NewIntegerEncoder(pe.encoder).EncodeSkip(record, f)
	case schema.KindSubrecord:
		return NewRecordEncoder(pe.encoder).EncodeSubrecord(record[f.Name], f, version)
	case schema.KindVariable:
		v := record[f.Name]
		if f.Encode != nil && v != nil {
			if v, err = f.Encode(v); err != nil {
				return fmt.Errorf("custom encode: %v", err)
			}
		}
		return NewBytesEncoder(pe.encoder).EncodeVariable(record, v, f)
	}

	v, err := effectiveValue(record, f)
	if err != nil {
		return err
	}
	if f.Encode != nil {
		if v, err = f.Encode(v); err != nil {
			return fmt.Errorf("custom encode: %v", err)
		}
	}

	switch f.Kind {
	case schema.KindInteger:
		n, err := toUint64(v)
		if err != nil {
			return err
		}
		return NewIntegerEncoder(pe.encoder).EncodeInteger(n, f)
	case schema.KindFloat:
		return NewFloatEncoder(pe.encoder).EncodeFloat(v, f)
	case schema.KindBinary:
		return NewBytesEncoder(pe.encoder).EncodeBinary(v, f)
	case schema.KindString:
		return NewBytesEncoder(pe.encoder).EncodeString(v, f)
	default:
		return fmt.Errorf("unsupported field kind: %s", f.Kind)
	}
}

// DECODER METHODS

// DecodePDU folds the decoder through each field in declaration order,
// starting from the prototype record. Gated-out fields keep their prototype
// defaults and consume nothing.
func (pd *PDUDecoder) DecodePDU(prototype map[string]interface{}, pdu *schema.PDU, version string) (map[string]interface{}, error) {
	acc := copyRecord(prototype)
	for _, f := range pdu.Fields {
		if err := pd.decodeField(acc, f, version); err != nil {
			return nil, wrapWithField(err, f.Name)
		}
	}
	return acc, nil
}

// decodeField applies the version and conditional wrappers, then dispatches
// on the field kind, mutating the in-progress record.
func (pd *PDUDecoder) decodeField(acc map[string]interface{}, f *schema.Field, version string) error {
	active, err := fieldActive(f, version)
	if err != nil {
		return err
	}
	if !active {
		return nil
	}
	if f.Conditional != "" && isAbsent(acc[f.Conditional]) {
		return nil
	}

	var v interface{}
	switch f.Kind {
	case schema.KindVirtual:
		acc[f.Name] = f.Default
		return nil
	case schema.KindConstant:
		return NewIntegerDecoder(pd.decoder).DecodeConstant(f)
	case schema.KindSkip:
		return NewIntegerDecoder(pd.decoder).DecodeSkip(acc, f)
	case schema.KindSubrecord:
		if v, err = NewRecordDecoder(pd.decoder).DecodeSubrecord(f, version); err != nil {
			return err
		}
		acc[f.Name] = v
		return nil
	case schema.KindInteger:
		v, err = NewIntegerDecoder(pd.decoder).DecodeInteger(f)
	case schema.KindFloat:
		v, err = NewFloatDecoder(pd.decoder).DecodeFloat(f)
	case schema.KindBinary:
		v, err = NewBytesDecoder(pd.decoder).DecodeBinary(f)
	case schema.KindString:
		v, err = NewBytesDecoder(pd.decoder).DecodeString(f)
	case schema.KindVariable:
		v, err = NewBytesDecoder(pd.decoder).DecodeVariable(acc, f)
	default:
		return fmt.Errorf("unsupported field kind: %s", f.Kind)
	}
	if err != nil {
		return err
	}
	if f.Decode != nil {
		if v, err = f.Decode(v); err != nil {
			return fmt.Errorf("custom decode: %v", err)
		}
	}
	acc[f.Name] = v
	return nil
}

// UTILITY METHODS

// effectiveValue resolves a field's slot, falling back to the declared
// default. An empty slot with no default is an encode error.
func effectiveValue(record map[string]interface{}, f *schema.Field) (interface{}, error) {
	if v, ok := record[f.Name]; ok && v != nil {
		return v, nil
	}
	if f.Default != nil {
		return f.Default, nil
	}
	return nil, ErrMissingValue
}

// copyRecord deep-copies a record so decode never mutates the caller's
// prototype. Nested subrecord maps are copied recursively.
func copyRecord(record map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(record))
	for k, v := range record {
		if sub, ok := v.(map[string]interface{}); ok {
			out[k] = copyRecord(sub)
			continue
		}
		out[k] = v
	}
	return out
}
