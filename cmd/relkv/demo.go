package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"relkv/internal/domain"
	"relkv/internal/repository"
	"relkv/internal/schema"
)

type person struct {
	ID      string
	Name    string
	Address []*address
}

type address struct {
	ID       string
	Street   string
	City     string
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
		domain.Many("address", func() *domain.Accessors[address] { return addressFields },
			func(p *person) *[]*address { return &p.Address }),
	)
	addressFields.Add(
		domain.StringField("id", func(a *address) *string { return &a.ID }),
		domain.StringField("street", func(a *address) *string { return &a.Street }),
		domain.StringField("city", func(a *address) *string { return &a.City }),
		domain.StringField("personId", func(a *address) *string { return &a.PersonID }),
		domain.One("person", func() *domain.Accessors[person] { return personFields },
			func(a *address) **person { return &a.Person }),
	)
}

// demoRegistry declares Person has-many Address and Address has-one Person
func demoRegistry() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	specs := []*schema.Specification{}
	for _, b := range []*schema.Builder{
		schema.NewBuilder("Person").WithIdentifier("id").
			HasMany("address", "Address", "personId"),
		schema.NewBuilder("Address").UseTableName("addresses").WithIdentifier("id").
			HasOne("person", "Person", "personId"),
	} {
		spec, err := b.Build()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if err := reg.RegisterAll(specs); err != nil {
		return nil, err
	}
	return reg, nil
}

func newDemoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Write a small Person/Address graph and read it back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := demoRegistry()
			if err != nil {
				return err
			}
			if err := a.open(cmd, reg); err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			peopleRepo, err := a.engine.Repository("Person")
			if err != nil {
				return err
			}
			addressRepo, err := a.engine.Repository("Address")
			if err != nil {
				return err
			}
			people := repository.NewTyped[*person](peopleRepo, personFields)
			addresses := repository.NewTyped[*address](addressRepo, addressFields)

			john := &person{ID: "1", Name: "John"}
			john.Address = []*address{
				{ID: "1", Street: "1 Main St", City: "Springfield"},
				{ID: "2", Street: "9 Side Rd", City: "Shelbyville"},
			}
			if _, err := people.CreateOrUpdate(ctx, john); err != nil {
				return err
			}
			// the nested person is upserted and the foreign key inferred from it
			if _, err := addresses.CreateOrUpdate(ctx, &address{
				ID: "3", Street: "4 Elm St", City: "Ogdenville",
				Person: &person{ID: "2", Name: "Jane"},
			}); err != nil {
				return err
			}

			heading.Fprintln(w, "Person 1 with addresses")
			got, err := people.Queryable().Include("address").GetByID(ctx, "1")
			if err != nil {
				return err
			}
			printPerson(w, got)

			heading.Fprintln(w, "Addresses with their person")
			all, err := addresses.Queryable().Include("person").GetAll(ctx)
			if err != nil {
				return err
			}
			for _, addr := range all {
				owner := "(none)"
				if addr.Person != nil {
					owner = addr.Person.Name
				}
				fmt.Fprintf(w, "  %s %s, %s -> %s\n", addr.ID, addr.Street, addr.City, owner)
			}

			heading.Fprintln(w, "After deleting address 2")
			if err := addresses.Delete(ctx, "2"); err != nil {
				return err
			}
			got, err = people.Queryable().Include("address").GetByID(ctx, "1")
			if err != nil {
				return err
			}
			printPerson(w, got)

			success.Fprintln(w, "✓ demo complete")
			return nil
		},
	}
}

func printPerson(w io.Writer, p *person) {
	fmt.Fprintf(w, "  %s %s\n", p.ID, p.Name)
	for _, addr := range p.Address {
		fmt.Fprintf(w, "    %s %s, %s\n", addr.ID, addr.Street, addr.City)
	}
}
