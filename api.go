// Package pdulite derives bit-precise binary codecs from declarative PDU
// schemas: ordered, named, bit-sized fields with optional version gates,
// conditional presence and offset-to self-references.
package pdulite

import (
	"fmt"
	"reflect"

	"github.com/pdulite/pdulite/registry"
	"github.com/pdulite/pdulite/schema"
	"github.com/pdulite/pdulite/wire"
)

// ===== SCHEMA-AWARE API =====

// Pdulite provides schema-aware PDU operations without generated code
type Pdulite struct {
	registry *registry.Registry
}

// New creates a new Pdulite instance with an empty registry.
func New() *Pdulite {
	return &Pdulite{
		registry: registry.NewRegistry(),
	}
}

// Register validates and seals a PDU type definition.
func (p *Pdulite) Register(pdu *schema.PDU) error {
	return p.registry.Register(pdu)
}

// LoadSchema loads PDU definitions from a YAML file or directory tree.
func (p *Pdulite) LoadSchema(schemaPath string) error {
	return p.registry.LoadSchema(schemaPath)
}

// Encode serializes a record to wire bytes. Offset-to fields are fixed up
// first, so callers need not populate them. An empty version means
// "current" and includes every gated field.
func (p *Pdulite) Encode(pduType string, record map[string]interface{}, version string) ([]byte, error) {
	pdu, err := p.registry.GetPDU(pduType)
	if err != nil {
		return nil, fmt.Errorf("pdu type not found: %s", pduType)
	}

	return wire.EncodePDU(record, pdu, p.registry, version)
}

// Decode parses wire bytes into a record, returning the unconsumed tail. A
// non-empty tail signals a caller-visible layout mismatch, not an error.
func (p *Pdulite) Decode(pduType string, data []byte, version string) (map[string]interface{}, []byte, error) {
	pdu, err := p.registry.GetPDU(pduType)
	if err != nil {
		return nil, nil, fmt.Errorf("pdu type not found: %s", pduType)
	}

	prototype, err := p.registry.Prototype(pduType)
	if err != nil {
		return nil, nil, err
	}
	return wire.DecodePDU(prototype, data, pdu, p.registry, version)
}

// Sizeof returns the runtime size in bits of one field for the given record.
func (p *Pdulite) Sizeof(pduType string, record map[string]interface{}, fieldName string) (int, error) {
	pdu, err := p.registry.GetPDU(pduType)
	if err != nil {
		return 0, fmt.Errorf("pdu type not found: %s", pduType)
	}

	return wire.SizeofField(record, pdu, fieldName, p.registry)
}

// SizeofPDU returns the whole-PDU runtime size in the requested unit,
// filtering fields excluded at the given version.
func (p *Pdulite) SizeofPDU(pduType string, record map[string]interface{}, version string, unit schema.SizeUnit) (int, error) {
	pdu, err := p.registry.GetPDU(pduType)
	if err != nil {
		return 0, fmt.Errorf("pdu type not found: %s", pduType)
	}

	return wire.SizeofPDU(record, pdu, p.registry, version, unit)
}

// SetOffsets returns a copy of the record with every offset-to field set to
// the byte distance from PDU start to its target. Encode applies this
// automatically.
func (p *Pdulite) SetOffsets(pduType string, record map[string]interface{}, version string) (map[string]interface{}, error) {
	pdu, err := p.registry.GetPDU(pduType)
	if err != nil {
		return nil, fmt.Errorf("pdu type not found: %s", pduType)
	}

	return wire.SetOffsets(record, pdu, p.registry, version)
}

// Prototype returns the empty default record of a PDU type.
func (p *Pdulite) Prototype(pduType string) (map[string]interface{}, error) {
	return p.registry.Prototype(pduType)
}

// Unmarshal decodes wire bytes into a Go struct using reflection. The PDU
// type is taken from the struct's type name and field slots are matched to
// struct fields by name.
func (p *Pdulite) Unmarshal(data []byte, v interface{}, version string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("unmarshal target must be a pointer to struct")
	}

	pduType := rv.Elem().Type().Name()
	result, _, err := p.Decode(pduType, data, version)
	if err != nil {
		return err
	}

	return p.mapToStruct(result, rv.Elem())
}

// mapToStruct maps a decoded record to struct fields
func (p *Pdulite) mapToStruct(record map[string]interface{}, rv reflect.Value) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fieldValue := rv.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		name := field.Tag.Get("pdu")
		if name == "" {
			name = field.Name
		}
		if value, ok := record[name]; ok {
			if err := p.setFieldValue(fieldValue, value); err != nil {
				return fmt.Errorf("failed to set field %s: %v", name, err)
			}
		}
	}
	return nil
}

// setFieldValue sets a struct field with type conversion
func (p *Pdulite) setFieldValue(fieldValue reflect.Value, value interface{}) error {
	if value == nil {
		return nil
	}

	if record, ok := value.(map[string]interface{}); ok && fieldValue.Kind() == reflect.Struct {
		return p.mapToStruct(record, fieldValue)
	}

	sourceValue := reflect.ValueOf(value)
	if sourceValue.Type().AssignableTo(fieldValue.Type()) {
		fieldValue.Set(sourceValue)
		return nil
	}

	if sourceValue.Type().ConvertibleTo(fieldValue.Type()) {
		fieldValue.Set(sourceValue.Convert(fieldValue.Type()))
		return nil
	}

	return fmt.Errorf("cannot convert %T to %s", value, fieldValue.Type())
}

// ===== REGISTRY ACCESS =====

func (p *Pdulite) GetRegistry() *registry.Registry { return p.registry }
func (p *Pdulite) ListPDUs() []string              { return p.registry.ListPDUs() }
