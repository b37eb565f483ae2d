package wire

import (
	"fmt"

	"github.com/pdulite/pdulite/schema"
)

// RecordDecoder handles nested subrecord decoding operations
type RecordDecoder struct {
	decoder *Decoder
}

// RecordEncoder handles nested subrecord encoding operations
type RecordEncoder struct {
	encoder *Encoder
}

// NewRecordDecoder creates a new subrecord decoder
func NewRecordDecoder(d *Decoder) *RecordDecoder {
	return &RecordDecoder{decoder: d}
}

// NewRecordEncoder creates a new subrecord encoder
func NewRecordEncoder(e *Encoder) *RecordEncoder {
	return &RecordEncoder{encoder: e}
}

// DECODER METHODS

// DecodeSubrecord decodes a nested PDU in place, bit-contiguous with its
// parent. The field's declared default seeds the nested prototype.
func (rd *RecordDecoder) DecodeSubrecord(f *schema.Field, version string) (map[string]interface{}, error) {
	if rd.decoder.registry == nil {
		return nil, fmt.Errorf("registry is required to decode subrecord fields")
	}
	nested, err := rd.decoder.registry.GetPDU(f.PDU)
	if err != nil {
		return nil, fmt.Errorf("failed to get PDU schema for %s: %v", f.PDU, err)
	}
	prototype, err := subrecordPrototype(rd.decoder.registry, f)
	if err != nil {
		return nil, err
	}
	pd := NewPDUDecoder(rd.decoder)
	return pd.DecodePDU(prototype, nested, version)
}

// ENCODER METHODS

// EncodeSubrecord encodes a nested PDU in place, bit-contiguous with its
// parent, at the same runtime version. Offset-to fields of the nested PDU
// are fixed up relative to the nested PDU's own start.
func (re *RecordEncoder) EncodeSubrecord(v interface{}, f *schema.Field, version string) error {
	if re.encoder.registry == nil {
		return fmt.Errorf("registry is required to encode subrecord fields")
	}
	nested, err := re.encoder.registry.GetPDU(f.PDU)
	if err != nil {
		return fmt.Errorf("failed to get PDU schema for %s: %v", f.PDU, err)
	}

	var record map[string]interface{}
	if v == nil {
		if record, err = subrecordPrototype(re.encoder.registry, f); err != nil {
			return err
		}
	} else {
		sub, ok := v.(map[string]interface{})
		if !ok {
			return fmt.Errorf("subrecord value must be map[string]interface{}, got %T", v)
		}
		record = sub
	}

	fixed, err := SetOffsets(record, nested, re.encoder.registry, version)
	if err != nil {
		return err
	}
	pe := NewPDUEncoder(re.encoder)
	return pe.EncodePDU(fixed, nested, version)
}

// subrecordPrototype builds the default record for a subrecord field: the
// nested PDU's prototype overlaid with the field's declared default map.
func subrecordPrototype(reg pduRegistry, f *schema.Field) (map[string]interface{}, error) {
	prototype, err := reg.Prototype(f.PDU)
	if err != nil {
		return nil, fmt.Errorf("failed to build prototype for %s: %v", f.PDU, err)
	}
	if defaults, ok := f.Default.(map[string]interface{}); ok {
		for k, v := range defaults {
			prototype[k] = v
		}
	}
	return prototype, nil
}

// pduRegistry is the slice of the registry the wire package depends on.
type pduRegistry interface {
	Prototype(name string) (map[string]interface{}, error)
}
