package repository

import (
	"context"
	"fmt"
	"log/slog"

	"relkv/internal/domain"
	"relkv/internal/index"
	"relkv/internal/logging"
	"relkv/internal/schema"
)

// Repository is the CRUD façade for one entity type
type Repository struct {
	spec     *schema.Specification
	registry *schema.Registry
	store    *index.Store
	log      *slog.Logger
}

// Option configures a Repository
type Option func(*Repository)

// WithLogger sets the logger for write traces
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

// New binds a repository to the registered specification of entityType
func New(registry *schema.Registry, store *index.Store, entityType schema.EntityType, opts ...Option) (*Repository, error) {
	spec, err := registry.SpecificationFor(entityType)
	if err != nil {
		return nil, err
	}

	r := &Repository{
		spec:     spec,
		registry: registry,
		store:    store,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Specification returns the specification the repository is bound to
func (r *Repository) Specification() *schema.Specification {
	return r.spec
}

// related returns a repository for another entity type sharing this one's
// registry, store and logger
func (r *Repository) related(entityType schema.EntityType) (*Repository, error) {
	if entityType == r.spec.EntityType {
		return r, nil
	}
	spec, err := r.registry.SpecificationFor(entityType)
	if err != nil {
		return nil, err
	}
	return &Repository{spec: spec, registry: r.registry, store: r.store, log: r.log}, nil
}

// Create persists a new entity and returns its identifier.
// ErrIndexConstraintViolation is returned, with nothing written, when the
// identifier already exists in the table.
func (r *Repository) Create(ctx context.Context, rec domain.Record) (domain.ID, error) {
	return r.create(ctx, rec, chain{})
}

// Update rewrites the row of an existing entity and re-links its relations.
// The primary index is left untouched: the row is written even when the
// identifier was never created.
func (r *Repository) Update(ctx context.Context, rec domain.Record) error {
	_, err := r.update(ctx, rec, chain{})
	return err
}

// CreateOrUpdate dispatches to Update when the identifier is indexed, else Create
func (r *Repository) CreateOrUpdate(ctx context.Context, rec domain.Record) (domain.ID, error) {
	return r.createOrUpdate(ctx, rec, chain{})
}

// Exists reports whether the identifier is in the primary index
func (r *Repository) Exists(ctx context.Context, id domain.ID) (bool, error) {
	return r.store.HasPrimary(ctx, r.spec.TableName, id)
}

// Delete removes the entity and unwinds its indexes.
// Deleting an identifier with no stored row only clears its index entries.
func (r *Repository) Delete(ctx context.Context, id domain.ID) error {
	table := r.spec.TableName

	row, found, err := r.store.Read(ctx, table, id)
	if err != nil {
		return fmt.Errorf("failed to read %s/%s: %w", table, id, err)
	}
	if err := r.store.Remove(ctx, table, id); err != nil {
		return fmt.Errorf("failed to remove %s/%s: %w", table, id, err)
	}
	if err := r.store.RemovePrimaryIndex(ctx, table, id); err != nil {
		return fmt.Errorf("failed to update primary index of %s: %w", table, err)
	}

	if found {
		links, err := r.links()
		if err != nil {
			return err
		}
		for _, l := range links {
			value, ok := domain.IDOf(row[l.Property])
			if !ok {
				continue
			}
			if err := r.store.RemoveForeignKeyIndex(ctx, l.key(value), id); err != nil {
				return fmt.Errorf("failed to unlink %s/%s from %s: %w", table, id, l.Referenced, err)
			}
		}
	}

	for _, rel := range r.spec.Relations {
		if !rel.IsCollection {
			continue
		}
		relatedSpec, err := r.registry.SpecificationFor(rel.RelatedType)
		if err != nil {
			return err
		}
		fk := index.ForeignKey{
			Referenced: table,
			Owning:     relatedSpec.TableName,
			Property:   rel.ForeignKey,
			Value:      id,
		}
		if err := r.store.RemoveForeignKeyIndexRecord(ctx, fk); err != nil {
			return fmt.Errorf("failed to detach %s of %s/%s: %w", rel.Name, table, id, err)
		}
	}

	r.log.Debug("deleted", "entity", r.spec.EntityType, "id", id, "found", found)
	return nil
}

// Queryable returns a fresh eager-load builder rooted at this entity type
func (r *Repository) Queryable() *Queryable {
	return newQueryable(r.spec, r.registry, r.store, r.log)
}

// ============================================================================
// Write path
// ============================================================================

// chain holds the rows written by one top-level call. Recursive upserts of a
// row already in the chain are skipped so cyclic graphs terminate.
type chain map[string]bool

func (r *Repository) identifier(rec domain.Record) (domain.ID, error) {
	id, err := domain.MustID(rec[r.spec.Identifier])
	if err != nil {
		return "", fmt.Errorf("%s.%s: %w", r.spec.EntityType, r.spec.Identifier, err)
	}
	return id, nil
}

func (r *Repository) createOrUpdate(ctx context.Context, rec domain.Record, c chain) (domain.ID, error) {
	id, err := r.identifier(rec)
	if err != nil {
		return "", err
	}
	if c[index.RowKey(r.spec.TableName, id)] {
		return id, nil
	}

	exists, err := r.Exists(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to read primary index of %s: %w", r.spec.TableName, err)
	}
	if exists {
		return r.update(ctx, rec, c)
	}
	return r.create(ctx, rec, c)
}

func (r *Repository) create(ctx context.Context, rec domain.Record, c chain) (domain.ID, error) {
	table := r.spec.TableName
	id, err := r.identifier(rec)
	if err != nil {
		return "", err
	}

	exists, err := r.Exists(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to read primary index of %s: %w", table, err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s already exists in %s", domain.ErrIndexConstraintViolation, id, table)
	}
	c[index.RowKey(table, id)] = true

	row, err := r.linkSingular(ctx, rec, id, nil, c)
	if err != nil {
		return "", err
	}
	if err := r.store.Write(ctx, table, id, row); err != nil {
		return "", fmt.Errorf("failed to write %s/%s: %w", table, id, err)
	}
	if err := r.store.AddPrimaryIndex(ctx, table, id); err != nil {
		return "", err
	}
	if err := r.cascadeCollections(ctx, rec, c); err != nil {
		return "", err
	}

	r.log.Debug("created", "entity", r.spec.EntityType, "id", id)
	return id, nil
}

func (r *Repository) update(ctx context.Context, rec domain.Record, c chain) (domain.ID, error) {
	table := r.spec.TableName
	id, err := r.identifier(rec)
	if err != nil {
		return "", err
	}
	c[index.RowKey(table, id)] = true

	prior, found, err := r.store.Read(ctx, table, id)
	if err != nil {
		return "", fmt.Errorf("failed to read %s/%s: %w", table, id, err)
	}

	row, err := r.linkSingular(ctx, rec, id, prior, c)
	if err != nil {
		return "", err
	}
	if err := r.store.Write(ctx, table, id, row); err != nil {
		return "", fmt.Errorf("failed to write %s/%s: %w", table, id, err)
	}
	if err := r.cascadeCollections(ctx, rec, c); err != nil {
		return "", err
	}

	r.log.Debug("updated", "entity", r.spec.EntityType, "id", id, "existed", found)
	return id, nil
}

// linkSingular upserts nested has-one objects, builds the pure row and
// records this entity in every foreign-key index its row participates in.
// When prior is set, links whose value changed are removed from the old entry.
func (r *Repository) linkSingular(ctx context.Context, rec domain.Record, id domain.ID, prior domain.Record, c chain) (domain.Record, error) {
	row := rec.Without(r.spec.RelationNames()...)

	for _, rel := range r.spec.Relations {
		if rel.IsCollection {
			continue
		}
		nested, ok := domain.AsRecord(rec[rel.Name])
		if !ok {
			continue
		}
		relatedRepo, err := r.related(rel.RelatedType)
		if err != nil {
			return nil, err
		}
		if _, ok := domain.IDOf(row[rel.ForeignKey]); !ok {
			if v, ok := nested[relatedRepo.spec.Identifier]; ok {
				row[rel.ForeignKey] = v
			}
		}
		if _, err := relatedRepo.createOrUpdate(ctx, nested, c); err != nil {
			return nil, fmt.Errorf("failed to upsert %s.%s: %w", r.spec.EntityType, rel.Name, err)
		}
	}

	links, err := r.links()
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		value, hasValue := domain.IDOf(row[l.Property])
		if prior != nil {
			if old, ok := domain.IDOf(prior[l.Property]); ok && (!hasValue || old != value) {
				if err := r.store.RemoveForeignKeyIndex(ctx, l.key(old), id); err != nil {
					return nil, fmt.Errorf("failed to unlink %s/%s from %s: %w", r.spec.TableName, id, l.Referenced, err)
				}
			}
		}
		if !hasValue {
			continue
		}
		if err := r.store.AddForeignKeyIndex(ctx, l.key(value), id); err != nil {
			return nil, fmt.Errorf("failed to link %s/%s to %s: %w", r.spec.TableName, id, l.Referenced, err)
		}
	}

	return row, nil
}

// cascadeCollections stamps nested has-many children with the owner's
// identifier and upserts them through the child type's repository
func (r *Repository) cascadeCollections(ctx context.Context, rec domain.Record, c chain) error {
	ownerID := rec[r.spec.Identifier]
	for _, rel := range r.spec.Relations {
		if !rel.IsCollection {
			continue
		}
		children := domain.AsRecords(rec[rel.Name])
		if len(children) == 0 {
			continue
		}
		childRepo, err := r.related(rel.RelatedType)
		if err != nil {
			return err
		}
		for _, child := range children {
			stamped := child.Clone()
			stamped[rel.ForeignKey] = ownerID
			if _, err := childRepo.createOrUpdate(ctx, stamped, c); err != nil {
				return fmt.Errorf("failed to upsert %s.%s: %w", r.spec.EntityType, rel.Name, err)
			}
		}
	}
	return nil
}

// ============================================================================
// Foreign-key links
// ============================================================================

// link is a foreign-key index this entity type's rows are recorded in
type link struct {
	Referenced string
	Owning     string
	Property   string
}

func (l link) key(value domain.ID) index.ForeignKey {
	return index.ForeignKey{
		Referenced: l.Referenced,
		Owning:     l.Owning,
		Property:   l.Property,
		Value:      value,
	}
}

// links collects the has-one relations of this type plus the has-many
// relations of other types that point at it, deduplicated by index
func (r *Repository) links() ([]link, error) {
	var out []link
	seen := make(map[link]bool)
	add := func(l link) {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}

	for _, rel := range r.spec.Relations {
		if rel.IsCollection {
			continue
		}
		relatedSpec, err := r.registry.SpecificationFor(rel.RelatedType)
		if err != nil {
			return nil, err
		}
		add(link{Referenced: relatedSpec.TableName, Owning: r.spec.TableName, Property: rel.ForeignKey})
	}
	for _, inv := range r.registry.InverseCollections(r.spec.EntityType) {
		add(link{Referenced: inv.Owner.TableName, Owning: r.spec.TableName, Property: inv.Relation.ForeignKey})
	}
	return out, nil
}
