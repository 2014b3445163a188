package schema

import (
	"errors"
	"strings"
	"testing"

	"relkv/internal/domain"
)

func TestBuilder(t *testing.T) {
	t.Run("defaults table name to entity type", func(t *testing.T) {
		spec, err := NewBuilder("Person").WithIdentifier("id").Build()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if spec.TableName != "Person" {
			t.Errorf("expected table Person, got %s", spec.TableName)
		}
	})

	t.Run("records relations in order", func(t *testing.T) {
		spec := NewBuilder("Address").
			WithIdentifier("id").
			HasOne("person", "Person", "personId").
			HasMany("tags", "Tag", "addressId").
			MustBuild()

		if got := spec.RelationNames(); strings.Join(got, ",") != "person,tags" {
			t.Errorf("unexpected relation order: %v", got)
		}
		rel, ok := spec.Relation("tags")
		if !ok || !rel.IsCollection || rel.ForeignKey != "addressId" {
			t.Errorf("unexpected tags relation: %+v", rel)
		}
	})

	misuse := []struct {
		name    string
		builder *Builder
	}{
		{"missing identifier", NewBuilder("A")},
		{"identifier twice", NewBuilder("A").WithIdentifier("id").WithIdentifier("key")},
		{"table twice", NewBuilder("A").UseTableName("a").UseTableName("b").WithIdentifier("id")},
		{"duplicate relation", NewBuilder("A").WithIdentifier("id").
			HasOne("b", "B", "bId").HasMany("b", "B", "aId")},
	}

	for _, tt := range misuse {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if !errors.Is(err, domain.ErrInvalidSpecification) {
				t.Errorf("expected ErrInvalidSpecification, got %v", err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	doc := `
entities:
  - type: Person
    table: person
    identifier: id
    relations:
      - name: address
        type: Address
        foreign_key: personId
        many: true
  - type: Address
    identifier: id
    relations:
      - name: person
        type: Person
        foreign_key: personId
`
	specs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}
	if specs[1].TableName != "Address" {
		t.Errorf("expected default table Address, got %s", specs[1].TableName)
	}
	if !specs[0].Relations[0].IsCollection {
		t.Error("expected address relation to be a collection")
	}

	r := NewRegistry()
	if err := r.RegisterAll(specs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("entities:\n  - type: A\n    identifier: id\n    colour: red\n"))
	if err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}
