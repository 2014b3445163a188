package schema

import (
	"fmt"

	"relkv/internal/domain"
)

// EntityType names a registered record shape
type EntityType string

// RelationalProperty describes one navigable relation on an owning entity.
//
// For a has-one relation (IsCollection false) ForeignKey names the property on
// the owning entity holding the related identifier. For a has-many relation it
// names the property on the related entity holding the owner's identifier.
type RelationalProperty struct {
	Name         string     `json:"name" yaml:"name"`
	RelatedType  EntityType `json:"type" yaml:"type"`
	ForeignKey   string     `json:"foreign_key" yaml:"foreign_key"`
	IsCollection bool       `json:"many,omitempty" yaml:"many,omitempty"`
}

// Specification is the registered metadata for one entity type
type Specification struct {
	EntityType EntityType           `json:"type" yaml:"type"`
	TableName  string               `json:"table" yaml:"table"`
	Identifier string               `json:"identifier" yaml:"identifier"`
	Relations  []RelationalProperty `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// Relation returns the relational property with the given name
func (s *Specification) Relation(name string) (RelationalProperty, bool) {
	for _, rel := range s.Relations {
		if rel.Name == name {
			return rel, true
		}
	}
	return RelationalProperty{}, false
}

// RelationNames returns the names of all relational properties
func (s *Specification) RelationNames() []string {
	names := make([]string, len(s.Relations))
	for i, rel := range s.Relations {
		names[i] = rel.Name
	}
	return names
}

// Validate checks the invariants a specification must satisfy before registration
func (s *Specification) Validate() error {
	if s.EntityType == "" {
		return fmt.Errorf("%w: entity type is empty", domain.ErrInvalidSpecification)
	}
	if s.TableName == "" {
		return fmt.Errorf("%w: %s has an empty table name", domain.ErrInvalidSpecification, s.EntityType)
	}
	if s.Identifier == "" {
		return fmt.Errorf("%w: %s has no identifier", domain.ErrInvalidSpecification, s.EntityType)
	}

	names := make(map[string]bool, len(s.Relations))
	for _, rel := range s.Relations {
		switch {
		case rel.Name == "":
			return fmt.Errorf("%w: %s has a relation without a name", domain.ErrInvalidSpecification, s.EntityType)
		case names[rel.Name]:
			return fmt.Errorf("%w: %s declares relation %s twice", domain.ErrInvalidSpecification, s.EntityType, rel.Name)
		case rel.Name == s.Identifier:
			return fmt.Errorf("%w: %s relation %s shadows the identifier", domain.ErrInvalidSpecification, s.EntityType, rel.Name)
		case rel.RelatedType == "":
			return fmt.Errorf("%w: %s relation %s has no related type", domain.ErrInvalidSpecification, s.EntityType, rel.Name)
		case rel.ForeignKey == "":
			return fmt.Errorf("%w: %s relation %s has no foreign key", domain.ErrInvalidSpecification, s.EntityType, rel.Name)
		}
		names[rel.Name] = true
	}
	return nil
}

// clone returns a deep copy so registered specifications stay immutable
func (s *Specification) clone() *Specification {
	out := *s
	out.Relations = append([]RelationalProperty(nil), s.Relations...)
	return &out
}
