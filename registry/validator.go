package registry

import (
	"github.com/pkg/errors"

	"github.com/pdulite/pdulite/schema"
)

// validate runs the definition-time checks over a PDU's field list. Errors
// name the PDU and the offending field.
func (r *Registry) validate(pdu *schema.PDU) error {
	if len(pdu.Fields) == 0 {
		return errors.Errorf("pdu %s: no fields declared", pdu.Name)
	}

	seen := make(map[string]int, len(pdu.Fields))
	fixedBits := 0

	for i, f := range pdu.Fields {
		if f.Name == "" {
			return errors.Errorf("pdu %s: field %d has no name", pdu.Name, i)
		}
		if _, dup := seen[f.Name]; dup {
			return errors.Errorf("pdu %s: duplicate field name %s", pdu.Name, f.Name)
		}

		if err := r.validateField(pdu, f, seen); err != nil {
			return errors.Wrapf(err, "pdu %s, field %s", pdu.Name, f.Name)
		}

		// Variable fields and sibling-sized skips are byte-granular at
		// runtime; subrecords are validated on their own registration.
		if f.OnWire() && f.Kind != schema.KindVariable && f.Kind != schema.KindSubrecord &&
			!(f.Kind == schema.KindSkip && f.SizeRef != "") {
			fixedBits += f.Bits()
		}

		seen[f.Name] = i
	}

	if fixedBits%8 != 0 {
		return errors.Errorf("pdu %s: fixed fields total %d bits, not a multiple of 8", pdu.Name, fixedBits)
	}
	return nil
}

// validateField checks a single field descriptor. The seen map holds the
// names declared before this field, for the ordering rule on sibling
// references.
func (r *Registry) validateField(pdu *schema.PDU, f *schema.Field, seen map[string]int) error {
	switch f.Kind {
	case schema.KindInteger:
		if f.Size < 1 || f.Size > 64 {
			return errors.Errorf("integer size must be 1..64 bits, got %d", f.Size)
		}
	case schema.KindConstant:
		if f.Size < 1 || f.Size > 64 {
			return errors.Errorf("constant size must be 1..64 bits, got %d", f.Size)
		}
		if f.Default == nil {
			return errors.New("constant field requires a default")
		}
	case schema.KindFloat:
		if f.Size != 32 && f.Size != 64 {
			return errors.Errorf("float size must be 32 or 64 bits, got %d", f.Size)
		}
	case schema.KindBinary, schema.KindString:
		if f.Size < 1 {
			return errors.Errorf("%s size must be a positive byte count, got %d", f.Kind, f.Size)
		}
	case schema.KindVariable:
		if err := requireEarlierInteger(pdu, f.SizeRef, seen); err != nil {
			return errors.Wrap(err, "variable size reference")
		}
	case schema.KindSkip:
		if f.SizeRef != "" {
			if err := requireEarlierInteger(pdu, f.SizeRef, seen); err != nil {
				return errors.Wrap(err, "skip size reference")
			}
		} else if f.Size < 1 {
			return errors.Errorf("skip size must be a positive bit width or a sibling name, got %d", f.Size)
		}
	case schema.KindSubrecord:
		if f.PDU == "" {
			return errors.New("subrecord field requires a pdu type name")
		}
		if _, err := r.GetPDU(f.PDU); err != nil {
			return errors.Wrap(err, "subrecord reference")
		}
	case schema.KindVirtual:
		// record-only, nothing to check
	default:
		return errors.Errorf("unknown field kind %q", f.Kind)
	}

	switch f.Endian {
	case "", schema.BigEndian, schema.LittleEndian, schema.NativeEndian:
	default:
		return errors.Errorf("unknown endianness %q", f.Endian)
	}

	if f.Version != "" {
		if _, err := schema.CompileVersionPredicate(f.Version); err != nil {
			return err
		}
	}

	if f.Conditional != "" {
		if _, ok := seen[f.Conditional]; !ok {
			return errors.Errorf("conditional gate %s is not declared earlier in the pdu", f.Conditional)
		}
	}

	if f.OffsetTo != "" {
		if f.Kind != schema.KindInteger {
			return errors.Errorf("offset-to field must be an integer, got %s", f.Kind)
		}
		if pdu.FieldByName(f.OffsetTo) == nil {
			return errors.Errorf("offset target %s does not exist", f.OffsetTo)
		}
	}

	if (f.Encode == nil) != (f.Decode == nil) {
		return errors.New("custom encode and decode must be supplied as a pair")
	}

	return nil
}

// requireEarlierInteger enforces the ordering rule for sibling length
// references: decode resolves them from the in-progress record, so they must
// be declared (and therefore decoded) first.
func requireEarlierInteger(pdu *schema.PDU, name string, seen map[string]int) error {
	if name == "" {
		return errors.New("sibling field name required")
	}
	if _, ok := seen[name]; !ok {
		return errors.Errorf("field %s is not declared earlier in the pdu", name)
	}
	if ref := pdu.FieldByName(name); ref == nil || ref.Kind != schema.KindInteger {
		return errors.Errorf("field %s must be an integer", name)
	}
	return nil
}
