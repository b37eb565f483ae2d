package wire

import (
	"fmt"

	"github.com/pdulite/pdulite/registry"
	"github.com/pdulite/pdulite/schema"
)

// SetOffsets fills in every offset-to field with the byte distance from PDU
// start to its target and returns the updated record. Offsets are computed
// in declaration order against the already-updated record, so an offset
// field can itself gate a downstream conditional field. An absent target
// (version-excluded or conditionally elided) yields 0.
func SetOffsets(record map[string]interface{}, pdu *schema.PDU, reg *registry.Registry, version string) (map[string]interface{}, error) {
	out := copyRecord(record)
	for _, f := range pdu.Fields {
		if f.OffsetTo == "" {
			continue
		}
		active, err := fieldActive(f, version)
		if err != nil {
			return nil, err
		}
		if !active {
			continue
		}
		if f.Conditional != "" && isAbsent(out[f.Conditional]) {
			continue
		}
		offset, err := offsetOf(out, pdu, f.OffsetTo, reg, version)
		if err != nil {
			return nil, wrapWithField(err, f.Name)
		}
		out[f.Name] = uint64(offset)
	}
	return out, nil
}

// offsetOf computes the byte distance from PDU start to the target field's
// first bit, or 0 when the target is absent at this version.
func offsetOf(record map[string]interface{}, pdu *schema.PDU, target string, reg *registry.Registry, version string) (int, error) {
	tf := pdu.FieldByName(target)
	if tf == nil {
		return 0, fmt.Errorf("pdu %s has no field %s", pdu.Name, target)
	}

	active, err := fieldActive(tf, version)
	if err != nil {
		return 0, err
	}
	if !active {
		return 0, nil
	}
	if tf.Conditional != "" && isAbsent(record[tf.Conditional]) {
		return 0, nil
	}

	bits := 0
	for _, f := range pdu.Fields {
		if f.Name == target {
			break
		}
		n, err := fieldBits(record, f, reg, version)
		if err != nil {
			return 0, wrapWithField(err, f.Name)
		}
		bits += n
	}
	return bits / 8, nil
}
