package repository

import (
	"context"
	"errors"
	"testing"

	"relkv/internal/domain"
)

type person struct {
	ID        string
	Name      string
	Age       int
	CompanyID string
	Address   []*address
}

type address struct {
	ID       string
	Street   string
	PersonID string
	Person   *person
}

var (
	personFields  = domain.NewAccessors[person]()
	addressFields = domain.NewAccessors[address]()
)

func init() {
	personFields.Add(
		domain.StringField("id", func(p *person) *string { return &p.ID }),
		domain.StringField("name", func(p *person) *string { return &p.Name }),
		domain.IntField("age", func(p *person) *int { return &p.Age }),
		domain.StringField("companyId", func(p *person) *string { return &p.CompanyID }),
		domain.Many("address", func() *domain.Accessors[address] { return addressFields },
			func(p *person) *[]*address { return &p.Address }),
	)
	addressFields.Add(
		domain.StringField("id", func(a *address) *string { return &a.ID }),
		domain.StringField("street", func(a *address) *string { return &a.Street }),
		domain.StringField("personId", func(a *address) *string { return &a.PersonID }),
		domain.One("person", func() *domain.Accessors[person] { return personFields },
			func(a *address) **person { return &a.Person }),
	)
}

func TestTyped_RoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	people := NewTyped[*person](env.repo(t, "Person"), personFields)

	john := &person{ID: "1", Name: "John", Age: 42}
	john.Address = []*address{
		{ID: "a1", Street: "Main", Person: john},
		{ID: "a2", Street: "Side"},
	}
	if _, err := people.Create(ctx, john); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := people.Queryable().Include("address").ThenInclude("person").GetByID(ctx, "1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "John" || got.Age != 42 {
		t.Errorf("unexpected person %+v", got)
	}
	if len(got.Address) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(got.Address))
	}
	for _, a := range got.Address {
		if a.PersonID != "1" {
			t.Errorf("address %s: expected personId 1, got %q", a.ID, a.PersonID)
		}
		if a.Person == nil || a.Person.Name != "John" {
			t.Errorf("address %s: expected person John, got %+v", a.ID, a.Person)
		}
	}
}

func TestTyped_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	people := NewTyped[*person](env.repo(t, "Person"), personFields)
	addresses := NewTyped[*address](env.repo(t, "Address"), addressFields)

	if _, err := people.Create(ctx, &person{ID: "1", Name: "John"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := addresses.CreateOrUpdate(ctx, &address{ID: "a1", PersonID: "1"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := people.Update(ctx, &person{ID: "1", Name: "Johnny"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	all, err := people.Queryable().IncludePath("address").GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 || all[0].Name != "Johnny" || len(all[0].Address) != 1 {
		t.Fatalf("unexpected result %+v", all)
	}

	if err := addresses.Delete(ctx, "a1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if exists, _ := addresses.Exists(ctx, "a1"); exists {
		t.Error("expected a1 to be gone")
	}
	got, err := people.Queryable().Include("address").GetByIDs(ctx, []domain.ID{"1"})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 1 || len(got[0].Address) != 0 {
		t.Errorf("expected person without addresses, got %+v", got)
	}

	if _, err := addresses.Queryable().GetByID(ctx, "a1"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
	if people.Untyped().Specification().TableName != "Person" {
		t.Error("expected Untyped to expose the Person repository")
	}
}
