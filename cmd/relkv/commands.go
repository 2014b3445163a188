package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"relkv/internal/codec"
	"relkv/internal/domain"
	"relkv/internal/repository"
	"relkv/internal/schema"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	muted   = color.New(color.Faint)
)

func newSchemaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show registered entity types",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd, nil); err != nil {
				return err
			}
			defer a.close()

			w := cmd.OutOrStdout()
			muted.Fprintln(w, a.cfg.Summary())
			specs := a.engine.Registry.All()
			if len(specs) == 0 {
				muted.Fprintln(w, "no entity types registered (use --schema)")
				return nil
			}
			for _, spec := range specs {
				printSpecification(w, spec)
			}
			return nil
		},
	}
}

func printSpecification(w io.Writer, spec *schema.Specification) {
	heading.Fprintf(w, "%s", spec.EntityType)
	fmt.Fprintf(w, " table=%s identifier=%s\n", spec.TableName, spec.Identifier)
	for _, rel := range spec.Relations {
		kind := "has-one "
		if rel.IsCollection {
			kind = "has-many"
		}
		fmt.Fprintf(w, "  %s %-12s -> %s via %s\n", kind, rel.Name, rel.RelatedType, rel.ForeignKey)
	}
}

func newPutCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "put <type> [json]",
		Short: "Create or update an entity from a JSON object",
		Long:  "Reads a JSON object from the argument, --file, or stdin and upserts it. Nested relations are written too.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			switch {
			case len(args) == 2:
				src = strings.NewReader(args[1])
			case file != "":
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			rec, err := decodeRecord(src)
			if err != nil {
				return err
			}

			if err := a.open(cmd, nil); err != nil {
				return err
			}
			defer a.close()

			repo, err := a.engine.Repository(schema.EntityType(args[0]))
			if err != nil {
				return err
			}
			id, err := repo.CreateOrUpdate(cmd.Context(), rec)
			if err != nil {
				return err
			}
			success.Fprintf(cmd.OutOrStdout(), "✓ %s %s stored\n", args[0], id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the JSON object from a file")
	return cmd
}

func newGetCommand(a *app) *cobra.Command {
	var includes []string

	cmd := &cobra.Command{
		Use:   "get <type> <id>",
		Short: "Print one entity with its included relations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd, nil); err != nil {
				return err
			}
			defer a.close()

			q, err := a.queryable(args[0], includes)
			if err != nil {
				return err
			}
			rec, err := q.GetByID(cmd.Context(), domain.ID(args[1]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().StringSliceVarP(&includes, "include", "i", nil, "relation path to eager-load, e.g. address.person (repeatable)")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var includes []string

	cmd := &cobra.Command{
		Use:   "list <type>",
		Short: "Print every entity of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd, nil); err != nil {
				return err
			}
			defer a.close()

			q, err := a.queryable(args[0], includes)
			if err != nil {
				return err
			}
			recs, err := q.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}

	cmd.Flags().StringSliceVarP(&includes, "include", "i", nil, "relation path to eager-load (repeatable)")
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete an entity and detach its relations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd, nil); err != nil {
				return err
			}
			defer a.close()

			repo, err := a.engine.Repository(schema.EntityType(args[0]))
			if err != nil {
				return err
			}
			if err := repo.Delete(cmd.Context(), domain.ID(args[1])); err != nil {
				return err
			}
			success.Fprintf(cmd.OutOrStdout(), "✓ %s %s deleted\n", args[0], args[1])
			return nil
		},
	}
}

func newDumpCommand(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write a snapshot of every stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec.ForFormat(format)
			if err != nil {
				return err
			}
			if err := a.open(cmd, nil); err != nil {
				return err
			}
			defer a.close()

			snap, err := codec.Backup(cmd.Context(), a.engine.Backend)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return c.Export(snap, w)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "snapshot format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newRestoreCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Load a snapshot written by dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(args[0]), ".")
			}
			c, err := codec.ForFormat(format)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			snap, err := c.Parse(f)
			if err != nil {
				return err
			}

			if err := a.open(cmd, nil); err != nil {
				return err
			}
			defer a.close()

			if err := codec.Restore(cmd.Context(), a.engine.Backend, snap); err != nil {
				return err
			}
			success.Fprintf(cmd.OutOrStdout(), "✓ restored %d keys\n", len(snap.Entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "snapshot format (default: from file extension)")
	return cmd
}

// queryable builds a Queryable for entityType with dotted include paths applied
func (a *app) queryable(entityType string, includes []string) (*repository.Queryable, error) {
	repo, err := a.engine.Repository(schema.EntityType(entityType))
	if err != nil {
		return nil, err
	}
	q := repo.Queryable()
	for _, path := range includes {
		q = q.IncludePath(path)
	}
	return q, nil
}

func decodeRecord(r io.Reader) (domain.Record, error) {
	var rec domain.Record
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to parse JSON object: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return rec, nil
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
