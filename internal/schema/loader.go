package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML document describing entity specifications
type File struct {
	Entities []Specification `yaml:"entities"`
}

// Parse reads specifications from YAML.
// A missing table name defaults to the entity type, as with NewBuilder.
func Parse(r io.Reader) ([]*Specification, error) {
	var f File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	specs := make([]*Specification, 0, len(f.Entities))
	for i := range f.Entities {
		spec := f.Entities[i].clone()
		if spec.TableName == "" {
			spec.TableName = string(spec.EntityType)
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// LoadFile reads specifications from a YAML file
func LoadFile(path string) ([]*Specification, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// RegisterAll registers the specifications and validates the result
func (r *Registry) RegisterAll(specs []*Specification) error {
	for _, spec := range specs {
		if err := r.Register(spec); err != nil {
			return err
		}
	}
	return r.Validate()
}
