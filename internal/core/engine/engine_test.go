package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"relkv/internal/config"
	"relkv/internal/domain"
)

const testSchema = `
entities:
  - type: Person
    identifier: id
    relations:
      - {name: address, type: Address, foreign_key: personId, many: true}
  - type: Address
    table: addresses
    identifier: id
    relations:
      - {name: person, type: Person, foreign_key: personId}
`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(testSchema), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	schemaPath := writeSchema(t)

	drivers := map[string]func(*config.Config){
		"memory": func(c *config.Config) {},
		"sqlite": func(c *config.Config) {
			c.Backend.Driver = config.DriverSQLite
			c.Backend.SQLite.Path = filepath.Join(t.TempDir(), "relkv.db")
		},
	}

	for name, setup := range drivers {
		t.Run(name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Schema = schemaPath
			setup(cfg)

			e, err := Open(ctx, cfg, nil, nil)
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			defer e.Close()

			people, err := e.Repository("Person")
			if err != nil {
				t.Fatalf("Repository() error: %v", err)
			}
			addresses, err := e.Repository("Address")
			if err != nil {
				t.Fatalf("Repository() error: %v", err)
			}

			if _, err := people.Create(ctx, domain.Record{"id": "1", "name": "John"}); err != nil {
				t.Fatalf("create person: %v", err)
			}
			if _, err := addresses.Create(ctx, domain.Record{"id": "1", "personId": "1"}); err != nil {
				t.Fatalf("create address: %v", err)
			}

			person, err := people.Queryable().Include("address").GetByID(ctx, "1")
			if err != nil {
				t.Fatalf("GetByID() error: %v", err)
			}
			if got := domain.AsRecords(person["address"]); len(got) != 1 || got[0]["id"] != "1" {
				t.Errorf("expected one address with id 1, got %v", person["address"])
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing schema file", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Schema = filepath.Join(t.TempDir(), "absent.yaml")
		if _, err := Open(ctx, cfg, nil, nil); err == nil {
			t.Error("expected error for missing schema")
		}
	})

	t.Run("dangling relation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		doc := "entities:\n  - type: Person\n    identifier: id\n    relations:\n      - {name: pet, type: Dog, foreign_key: dogId}\n"
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Schema = path
		if _, err := Open(ctx, cfg, nil, nil); !errors.Is(err, domain.ErrNotRegistered) {
			t.Errorf("expected ErrNotRegistered, got %v", err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		if _, err := OpenBackend(ctx, config.BackendConfig{Driver: "tape"}); err == nil {
			t.Error("expected error for unknown driver")
		}
	})
}
