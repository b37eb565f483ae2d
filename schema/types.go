package schema

// FieldKind represents the kind of a PDU field
type FieldKind string

const (
	KindInteger   FieldKind = "integer"
	KindFloat     FieldKind = "float"
	KindBinary    FieldKind = "binary"
	KindString    FieldKind = "string"
	KindConstant  FieldKind = "constant"
	KindSubrecord FieldKind = "subrecord"
	KindVirtual   FieldKind = "virtual"
	KindVariable  FieldKind = "variable"
	KindSkip      FieldKind = "skip"
)

// Endianness represents the byte order of a fixed-width field
type Endianness string

const (
	BigEndian    Endianness = "big"
	LittleEndian Endianness = "little"
	NativeEndian Endianness = "native"
)

// SizeUnit selects the unit returned by whole-PDU size queries
type SizeUnit string

const (
	UnitBits  SizeUnit = "bits"
	UnitBytes SizeUnit = "bytes"
)

// EncodeFunc transforms a field value just before the derived encoder writes
// it at the declared width.
type EncodeFunc func(value interface{}) (interface{}, error)

// DecodeFunc transforms a field value just after the derived decoder reads it.
type DecodeFunc func(value interface{}) (interface{}, error)

// Field represents a single field of a PDU definition
type Field struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`

	// Size is the bit width for integer, float, constant and fixed skip
	// fields, and the byte count for binary and string fields. Zero for
	// subrecord, virtual and variable fields.
	Size int `json:"size,omitempty"`

	// SizeRef names the sibling integer field holding the byte count of a
	// variable field, or of a sibling-sized skip field.
	SizeRef string `json:"size_ref,omitempty"`

	Default interface{} `json:"default,omitempty"`
	Endian  Endianness  `json:"endian,omitempty"`

	// Version is a semver comparator string gating the field's presence on
	// the wire, e.g. ">= 2.0.0" or "~> 2.1".
	Version string `json:"version,omitempty"`

	// Conditional names a sibling field whose absent value (nil, 0, "")
	// elides this field.
	Conditional string `json:"conditional,omitempty"`

	// OffsetTo names a sibling field; this field carries the byte offset from
	// PDU start to that sibling, filled in by SetOffsets before encoding.
	OffsetTo string `json:"offset_to,omitempty"`

	// PDU names the registered nested PDU type for subrecord fields.
	PDU string `json:"pdu,omitempty"`

	// Encode and Decode, when set, override the derived value handling. They
	// must be supplied as a pair. They apply to integer, float, binary, string
	// and variable fields; subrecord, constant, skip and virtual fields ignore
	// them.
	Encode EncodeFunc `json:"-"`
	Decode DecodeFunc `json:"-"`
}

// PDU represents a PDU type definition: an ordered sequence of fields.
// A PDU is immutable once registered.
type PDU struct {
	Name   string   `json:"name"`
	Fields []*Field `json:"fields"`
}

// FieldByName returns the field with the given name, or nil.
func (p *PDU) FieldByName(name string) *Field {
	for _, f := range p.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldIndex returns the declaration index of the named field, or -1.
func (p *PDU) FieldIndex(name string) int {
	for i, f := range p.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// OnWire reports whether the field ever contributes bits to the wire.
// Virtual fields live only in the record.
func (f *Field) OnWire() bool {
	return f.Kind != KindVirtual
}

// InRecord reports whether the field has a slot in the value record.
// Constant and skip fields exist only in the binary.
func (f *Field) InRecord() bool {
	return f.Kind != KindConstant && f.Kind != KindSkip
}

// ByteOrder returns the field's effective endianness, defaulting to big.
func (f *Field) ByteOrder() Endianness {
	if f.Endian == "" {
		return BigEndian
	}
	return f.Endian
}

// Bits returns the declared fixed width of the field in bits. Binary and
// string sizes are declared in bytes; everything else is declared in bits.
// Variable, subrecord and virtual fields have no fixed width and return 0.
func (f *Field) Bits() int {
	switch f.Kind {
	case KindBinary, KindString:
		return f.Size * 8
	case KindVariable, KindSubrecord, KindVirtual:
		return 0
	default:
		return f.Size
	}
}
