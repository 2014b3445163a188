package schema

import (
	"fmt"

	"relkv/internal/domain"
)

// Builder assembles a Specification with chained calls.
// The first misuse is remembered and reported by Build.
type Builder struct {
	spec     Specification
	tableSet bool
	err      error
}

// NewBuilder starts a specification for the entity type.
// The table name defaults to the entity type name.
func NewBuilder(entityType EntityType) *Builder {
	return &Builder{
		spec: Specification{
			EntityType: entityType,
			TableName:  string(entityType),
		},
	}
}

// UseTableName overrides the default table name. It may be called once.
func (b *Builder) UseTableName(table string) *Builder {
	if b.tableSet {
		b.fail("table name set more than once")
		return b
	}
	b.spec.TableName = table
	b.tableSet = true
	return b
}

// WithIdentifier names the identifier property. It may be called once.
func (b *Builder) WithIdentifier(property string) *Builder {
	if b.spec.Identifier != "" {
		b.fail("identifier set more than once")
		return b
	}
	b.spec.Identifier = property
	return b
}

// HasOne declares that the entity stores the related identifier in foreignKey.
func (b *Builder) HasOne(property string, related EntityType, foreignKey string) *Builder {
	return b.relation(property, related, foreignKey, false)
}

// HasMany declares that related entities store this entity's identifier in foreignKey.
func (b *Builder) HasMany(property string, related EntityType, foreignKey string) *Builder {
	return b.relation(property, related, foreignKey, true)
}

func (b *Builder) relation(property string, related EntityType, foreignKey string, many bool) *Builder {
	if _, exists := b.spec.Relation(property); exists {
		b.fail(fmt.Sprintf("relational property %s declared twice", property))
		return b
	}
	b.spec.Relations = append(b.spec.Relations, RelationalProperty{
		Name:         property,
		RelatedType:  related,
		ForeignKey:   foreignKey,
		IsCollection: many,
	})
	return b
}

// Build returns the specification or the first error recorded by the chain
func (b *Builder) Build() (*Specification, error) {
	if b.err != nil {
		return nil, b.err
	}
	spec := b.spec.clone()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// MustBuild is like Build but panics on error. Intended for package-level setup.
func (b *Builder) MustBuild() *Specification {
	spec, err := b.Build()
	if err != nil {
		panic(err)
	}
	return spec
}

func (b *Builder) fail(msg string) {
	if b.err == nil {
		b.err = fmt.Errorf("%w: %s: %s", domain.ErrInvalidSpecification, b.spec.EntityType, msg)
	}
}
