package registry

import (
	"fmt"
	"sort"

	"github.com/pdulite/pdulite/schema"
)

// Registry stores sealed PDU type definitions. We look these up when we need
// to encode, decode or size a PDU, and for subrecord recursion.
type Registry struct {
	pdus map[string]*schema.PDU // name -> sealed definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pdus: make(map[string]*schema.PDU),
	}
}

// Register validates a PDU definition and seals it into the registry. Any
// validation failure is a definition-time error and the type is not
// published. Subrecord references must already be registered, which keeps
// the containment graph a DAG.
func (r *Registry) Register(pdu *schema.PDU) error {
	if pdu == nil || pdu.Name == "" {
		return fmt.Errorf("pdu definition must carry a name")
	}
	if _, exists := r.pdus[pdu.Name]; exists {
		return fmt.Errorf("pdu %s already registered", pdu.Name)
	}
	if err := r.validate(pdu); err != nil {
		return err
	}
	r.pdus[pdu.Name] = pdu
	return nil
}

// GetPDU retrieves a PDU definition by name.
func (r *Registry) GetPDU(name string) (*schema.PDU, error) {
	if pdu, exists := r.pdus[name]; exists {
		return pdu, nil
	}
	return nil, fmt.Errorf("pdu not found: %s", name)
}

// ListPDUs returns all registered PDU names, sorted.
func (r *Registry) ListPDUs() []string {
	names := make([]string, 0, len(r.pdus))
	for name := range r.pdus {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prototype builds the empty default record of a PDU type: one slot per
// non-constant, non-skip field, carrying declared defaults and recursing
// into subrecords. Each call returns a fresh record.
func (r *Registry) Prototype(name string) (map[string]interface{}, error) {
	pdu, err := r.GetPDU(name)
	if err != nil {
		return nil, err
	}

	record := make(map[string]interface{}, len(pdu.Fields))
	for _, f := range pdu.Fields {
		if !f.InRecord() {
			continue
		}
		if f.Kind == schema.KindSubrecord {
			sub, err := r.Prototype(f.PDU)
			if err != nil {
				return nil, err
			}
			if defaults, ok := f.Default.(map[string]interface{}); ok {
				for k, v := range defaults {
					sub[k] = v
				}
			}
			record[f.Name] = sub
			continue
		}
		record[f.Name] = f.Default
	}
	return record, nil
}
