package registry

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pdulite/pdulite/schema"
)

// yamlDocument is the on-disk shape of a PDU schema file.
type yamlDocument struct {
	PDUs []*yamlPDU `yaml:"pdus"`
}

type yamlPDU struct {
	Name   string       `yaml:"name"`
	Fields []*yamlField `yaml:"fields"`
}

type yamlField struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"`
	Size        interface{} `yaml:"size"` // bit/byte count, or sibling name
	Default     interface{} `yaml:"default"`
	Endian      string      `yaml:"endian"`
	Version     string      `yaml:"version"`
	Conditional string      `yaml:"conditional"`
	OffsetTo    string      `yaml:"offset_to"`
	PDU         string      `yaml:"pdu"`
}

// LoadSchema reads PDU definitions from a YAML file, or recursively from
// every .yaml/.yml file under a directory, and registers them. Definitions
// may reference each other across files; registration is ordered so that
// subrecord dependencies resolve. Custom encode/decode pairs cannot be
// declared on disk; use Register for those.
func (r *Registry) LoadSchema(schemaPath string) error {
	info, err := os.Stat(schemaPath)
	if err != nil {
		return errors.Wrap(err, "schema path")
	}

	var pending []*schema.PDU
	load := func(path string) error {
		pdus, err := loadSchemaFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load schema file %s", path)
		}
		pending = append(pending, pdus...)
		return nil
	}

	if !info.IsDir() {
		if err := load(schemaPath); err != nil {
			return err
		}
	} else {
		err = filepath.WalkDir(schemaPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isSchemaFile(path) {
				return nil
			}
			return load(path)
		})
		if err != nil {
			return errors.Wrap(err, "failed to walk schema directory")
		}
	}

	return r.registerAll(pending)
}

// loadSchemaFile parses one YAML schema file into PDU definitions.
func loadSchemaFile(path string) ([]*schema.PDU, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse yaml")
	}

	pdus := make([]*schema.PDU, 0, len(doc.PDUs))
	for _, yp := range doc.PDUs {
		pdu := &schema.PDU{Name: yp.Name}
		for _, yf := range yp.Fields {
			f, err := yf.toField()
			if err != nil {
				return nil, errors.Wrapf(err, "pdu %s, field %s", yp.Name, yf.Name)
			}
			pdu.Fields = append(pdu.Fields, f)
		}
		pdus = append(pdus, pdu)
	}
	return pdus, nil
}

// toField converts the YAML shape into a field descriptor.
func (yf *yamlField) toField() (*schema.Field, error) {
	f := &schema.Field{
		Name:        yf.Name,
		Kind:        schema.FieldKind(yf.Type),
		Default:     yf.Default,
		Endian:      schema.Endianness(yf.Endian),
		Version:     yf.Version,
		Conditional: yf.Conditional,
		OffsetTo:    yf.OffsetTo,
		PDU:         yf.PDU,
	}
	switch size := yf.Size.(type) {
	case nil:
	case int:
		f.Size = size
	case string:
		f.SizeRef = size
	default:
		return nil, errors.Errorf("size must be a number or a sibling name, got %T", yf.Size)
	}
	if sub, ok := yf.Default.(map[string]interface{}); ok {
		f.Default = sub
	}
	return f, nil
}

// registerAll registers definitions in dependency order so subrecord
// references resolve regardless of declaration order across files.
func (r *Registry) registerAll(pending []*schema.PDU) error {
	for len(pending) > 0 {
		progress := false
		var deferred []*schema.PDU
		for _, pdu := range pending {
			if !r.dependenciesMet(pdu) {
				deferred = append(deferred, pdu)
				continue
			}
			if err := r.Register(pdu); err != nil {
				return err
			}
			progress = true
		}
		if !progress {
			names := make([]string, len(deferred))
			for i, pdu := range deferred {
				names[i] = pdu.Name
			}
			return errors.Errorf("unresolvable subrecord references among: %s", strings.Join(names, ", "))
		}
		pending = deferred
	}
	return nil
}

// dependenciesMet reports whether every subrecord reference of the PDU is
// already registered.
func (r *Registry) dependenciesMet(pdu *schema.PDU) bool {
	for _, f := range pdu.Fields {
		if f.Kind != schema.KindSubrecord {
			continue
		}
		if _, err := r.GetPDU(f.PDU); err != nil {
			return false
		}
	}
	return true
}

// isSchemaFile reports whether the path looks like a YAML schema file.
func isSchemaFile(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
