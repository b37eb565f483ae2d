package wire

import (
	"fmt"

	"github.com/pdulite/pdulite/registry"
	"github.com/pdulite/pdulite/schema"
)

// SizeofField returns the runtime size in bits of one field for the given
// record, honoring conditional elision and variable sizing. Version gating
// does not apply to single-field queries.
func SizeofField(record map[string]interface{}, pdu *schema.PDU, fieldName string, reg *registry.Registry) (int, error) {
	f := pdu.FieldByName(fieldName)
	if f == nil {
		return 0, fmt.Errorf("pdu %s has no field %s", pdu.Name, fieldName)
	}
	return fieldBits(record, f, reg, "")
}

// SizeofPDU sums per-field runtime sizes, filtering out fields excluded by
// the version predicate and recursing into subrecords. The recursion always
// sums bits, subrecords included; the requested unit is applied once at the
// top.
func SizeofPDU(record map[string]interface{}, pdu *schema.PDU, reg *registry.Registry, version string, unit schema.SizeUnit) (int, error) {
	bits, err := pduBits(record, pdu, reg, version)
	if err != nil {
		return 0, err
	}
	if unit == schema.UnitBytes {
		return bits / 8, nil
	}
	return bits, nil
}

// pduBits sums the runtime bit sizes of all fields under the version filter.
func pduBits(record map[string]interface{}, pdu *schema.PDU, reg *registry.Registry, version string) (int, error) {
	total := 0
	for _, f := range pdu.Fields {
		n, err := fieldBits(record, f, reg, version)
		if err != nil {
			return 0, wrapWithField(err, f.Name)
		}
		total += n
	}
	return total, nil
}

// fieldBits computes one field's runtime bit size against the record.
func fieldBits(record map[string]interface{}, f *schema.Field, reg *registry.Registry, version string) (int, error) {
	active, err := fieldActive(f, version)
	if err != nil {
		return 0, err
	}
	if !active {
		return 0, nil
	}
	if f.Conditional != "" && isAbsent(record[f.Conditional]) {
		return 0, nil
	}

	switch f.Kind {
	case schema.KindVirtual:
		return 0, nil
	case schema.KindVariable:
		length, err := variableLength(record, f)
		if err != nil {
			return 0, err
		}
		return length * 8, nil
	case schema.KindSkip:
		return skipWidth(record, f)
	case schema.KindSubrecord:
		return subrecordBits(record, f, reg, version)
	default:
		return f.Bits(), nil
	}
}

// subrecordBits recurses into a nested PDU, sizing the slot value or the
// nested prototype when the slot is empty.
func subrecordBits(record map[string]interface{}, f *schema.Field, reg *registry.Registry, version string) (int, error) {
	if reg == nil {
		return 0, fmt.Errorf("registry is required to size subrecord fields")
	}
	nested, err := reg.GetPDU(f.PDU)
	if err != nil {
		return 0, fmt.Errorf("failed to get PDU schema for %s: %v", f.PDU, err)
	}
	var sub map[string]interface{}
	if v, ok := record[f.Name].(map[string]interface{}); ok && v != nil {
		sub = v
	} else if sub, err = subrecordPrototype(reg, f); err != nil {
		return 0, err
	}
	return pduBits(sub, nested, reg, version)
}
