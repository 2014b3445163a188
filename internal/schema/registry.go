package schema

import (
	"fmt"
	"sync"

	"relkv/internal/domain"
)

// Inverse is a has-many relation declared on Owner that targets another type
type Inverse struct {
	Owner    *Specification
	Relation RelationalProperty
}

// Registry maps entity types to their specifications.
// Register is expected at startup; lookups are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	specs  map[EntityType]*Specification
	tables map[string]EntityType
	order  []EntityType
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		specs:  make(map[EntityType]*Specification),
		tables: make(map[string]EntityType),
	}
}

// Register adds a specification. The registry keeps its own copy.
func (r *Registry) Register(spec *Specification) error {
	if spec == nil {
		return fmt.Errorf("%w: nil specification", domain.ErrInvalidSpecification)
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.specs[spec.EntityType]; ok {
		return fmt.Errorf("%w: %s is mapped to table %s",
			domain.ErrDuplicateRegistration, existing.EntityType, existing.TableName)
	}
	if owner, ok := r.tables[spec.TableName]; ok {
		return fmt.Errorf("%w: %s is already mapped to %s",
			domain.ErrDuplicateTableMapping, spec.TableName, owner)
	}

	r.specs[spec.EntityType] = spec.clone()
	r.tables[spec.TableName] = spec.EntityType
	r.order = append(r.order, spec.EntityType)
	return nil
}

// MustRegister registers every specification and panics on the first error
func (r *Registry) MustRegister(specs ...*Specification) *Registry {
	for _, spec := range specs {
		if err := r.Register(spec); err != nil {
			panic(err)
		}
	}
	return r
}

// IsRegistered reports whether the entity type has a specification
func (r *Registry) IsRegistered(entityType EntityType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.specs[entityType]
	return ok
}

// SpecificationFor returns the specification of the entity type
func (r *Registry) SpecificationFor(entityType EntityType) (*Specification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotRegistered, entityType)
	}
	return spec.clone(), nil
}

// All returns every registered specification in registration order
func (r *Registry) All() []*Specification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Specification, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.specs[t].clone())
	}
	return out
}

// Validate checks that every relation targets a registered entity type.
// Registration order is free, so this runs once all types are registered.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.order {
		spec := r.specs[t]
		for _, rel := range spec.Relations {
			if _, ok := r.specs[rel.RelatedType]; !ok {
				return fmt.Errorf("%w: %s.%s references %s",
					domain.ErrNotRegistered, spec.EntityType, rel.Name, rel.RelatedType)
			}
		}
	}
	return nil
}

// InverseCollections returns the has-many relations of all registered types
// whose related type is entityType.
func (r *Registry) InverseCollections(entityType EntityType) []Inverse {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Inverse
	for _, t := range r.order {
		spec := r.specs[t]
		for _, rel := range spec.Relations {
			if rel.IsCollection && rel.RelatedType == entityType {
				out = append(out, Inverse{Owner: spec.clone(), Relation: rel})
			}
		}
	}
	return out
}
