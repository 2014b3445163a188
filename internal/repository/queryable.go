package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"relkv/internal/domain"
	"relkv/internal/index"
	"relkv/internal/schema"
)

// IncludeMap is an ordered tree of relation names to eager-load
type IncludeMap struct {
	keys   []string
	nested map[string]*IncludeMap
}

func newIncludeMap() *IncludeMap {
	return &IncludeMap{nested: make(map[string]*IncludeMap)}
}

// Keys returns the relation names at this level in insertion order
func (m *IncludeMap) Keys() []string {
	return slices.Clone(m.keys)
}

// Get returns the nested map under key, or nil
func (m *IncludeMap) Get(key string) *IncludeMap {
	return m.nested[key]
}

// Len returns the number of relation names at this level
func (m *IncludeMap) Len() int {
	return len(m.keys)
}

// String renders the tree as {a: {b: {}}}
func (m *IncludeMap) String() string {
	var b strings.Builder
	m.write(&b)
	return b.String()
}

func (m *IncludeMap) write(b *strings.Builder) {
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		m.nested[k].write(b)
	}
	b.WriteByte('}')
}

// child returns the nested map under key, inserting it when absent
func (m *IncludeMap) child(key string) *IncludeMap {
	if n, ok := m.nested[key]; ok {
		return n
	}
	n := newIncludeMap()
	m.keys = append(m.keys, key)
	m.nested[key] = n
	return n
}

// Queryable accumulates an inclusion map and materializes entity graphs.
//
// Include and ThenInclude return a builder sharing the same inclusion map,
// so a chain like Include("a").ThenInclude("b").Include("c") yields
// {a: {b: {}}, c: {}}. Builder misuse is latched and reported by the first
// materialization; relation names are checked against the registry when
// the graph is resolved.
type Queryable struct {
	root     *schema.Specification
	registry *schema.Registry
	store    *index.Store
	log      *slog.Logger

	includes *IncludeMap
	cursor   []string
	err      error
}

func newQueryable(root *schema.Specification, registry *schema.Registry, store *index.Store, log *slog.Logger) *Queryable {
	return &Queryable{
		root:     root,
		registry: registry,
		store:    store,
		log:      log,
		includes: newIncludeMap(),
	}
}

func (q *Queryable) derive(cursor []string) *Queryable {
	next := *q
	next.cursor = cursor
	return &next
}

// Include adds a relation of the root type and makes it the active path
func (q *Queryable) Include(name string) *Queryable {
	q.includes.child(name)
	return q.derive([]string{name})
}

// ThenInclude adds a relation below the tail of the active path and
// extends the path with it
func (q *Queryable) ThenInclude(name string) *Queryable {
	if len(q.cursor) == 0 {
		next := q.derive(nil)
		if next.err == nil {
			next.err = fmt.Errorf("%w: ThenInclude(%q) without Include", domain.ErrNoActiveIncludePath, name)
		}
		return next
	}

	m := q.includes
	for _, seg := range q.cursor {
		m = m.child(seg)
	}
	m.child(name)

	cursor := append(slices.Clone(q.cursor), name)
	return q.derive(cursor)
}

// IncludePath includes a dotted path such as "address.person"
func (q *Queryable) IncludePath(path string) *Queryable {
	segments := strings.Split(path, ".")
	next := q.Include(segments[0])
	for _, seg := range segments[1:] {
		next = next.ThenInclude(seg)
	}
	return next
}

// Includes returns the accumulated inclusion map
func (q *Queryable) Includes() *IncludeMap {
	return q.includes
}

// Err returns the latched builder error, if any
func (q *Queryable) Err() error {
	return q.err
}

// GetByID loads one root entity with its included relations.
// ErrRecordNotFound is returned when no row exists for id. Numeric scalars
// come back as json.Number.
func (q *Queryable) GetByID(ctx context.Context, id domain.ID) (domain.Record, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q.resolver().byID(ctx, q.root, id, q.includes)
}

// GetByIDs loads the listed root entities in order, skipping missing rows
func (q *Queryable) GetByIDs(ctx context.Context, ids []domain.ID) ([]domain.Record, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q.resolver().byIDs(ctx, q.root, ids, q.includes)
}

// GetAll loads every root entity in primary index order
func (q *Queryable) GetAll(ctx context.Context) ([]domain.Record, error) {
	if q.err != nil {
		return nil, q.err
	}
	ids, err := q.store.PrimaryIndex(ctx, q.root.TableName)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary index of %s: %w", q.root.TableName, err)
	}
	return q.resolver().byIDs(ctx, q.root, ids, q.includes)
}

func (q *Queryable) resolver() *resolver {
	return &resolver{registry: q.registry, store: q.store, log: q.log}
}

// resolver walks an inclusion map against the index store
type resolver struct {
	registry *schema.Registry
	store    *index.Store
	log      *slog.Logger
}

func (rs *resolver) byID(ctx context.Context, spec *schema.Specification, id domain.ID, inc *IncludeMap) (domain.Record, error) {
	row, found, err := rs.store.Read(ctx, spec.TableName, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", spec.TableName, id, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrRecordNotFound, spec.TableName, id)
	}
	return rs.attach(ctx, spec, row, inc)
}

func (rs *resolver) byIDs(ctx context.Context, spec *schema.Specification, ids []domain.ID, inc *IncludeMap) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(ids))
	for _, id := range ids {
		row, found, err := rs.store.Read(ctx, spec.TableName, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s/%s: %w", spec.TableName, id, err)
		}
		if !found {
			rs.log.Debug("skipping indexed id without row", "table", spec.TableName, "id", id)
			continue
		}
		rec, err := rs.attach(ctx, spec, row, inc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// attach resolves every relation named at this level of inc onto a copy of row
func (rs *resolver) attach(ctx context.Context, spec *schema.Specification, row domain.Record, inc *IncludeMap) (domain.Record, error) {
	if inc == nil || inc.Len() == 0 {
		return row, nil
	}

	out := row.Clone()
	for _, key := range inc.keys {
		rel, ok := spec.Relation(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no relation %q", domain.ErrUnknownIncludeKey, spec.EntityType, key)
		}
		relatedSpec, err := rs.registry.SpecificationFor(rel.RelatedType)
		if err != nil {
			return nil, err
		}
		nested := inc.Get(key)

		if rel.IsCollection {
			children := []domain.Record{}
			if ownerID, ok := domain.IDOf(row[spec.Identifier]); ok {
				fk := index.ForeignKey{
					Referenced: spec.TableName,
					Owning:     relatedSpec.TableName,
					Property:   rel.ForeignKey,
					Value:      ownerID,
				}
				ids, err := rs.store.ForeignKeyIndex(ctx, fk)
				if err != nil {
					return nil, fmt.Errorf("failed to read %s of %s/%s: %w", key, spec.TableName, ownerID, err)
				}
				children, err = rs.byIDs(ctx, relatedSpec, ids, nested)
				if err != nil {
					return nil, err
				}
			}
			out[key] = children
			continue
		}

		value, ok := domain.IDOf(row[rel.ForeignKey])
		if !ok {
			out[key] = nil
			continue
		}
		related, err := rs.byID(ctx, relatedSpec, value, nested)
		if errors.Is(err, domain.ErrRecordNotFound) {
			rs.log.Debug("dangling reference", "table", spec.TableName, "relation", key, "id", value)
			out[key] = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		out[key] = related
	}
	return out, nil
}
