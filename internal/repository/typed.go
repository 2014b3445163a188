package repository

import (
	"context"
	"fmt"

	"relkv/internal/domain"
)

// Mapper converts between a caller's type and records.
// *domain.Accessors[E] satisfies Mapper[*E].
type Mapper[T any] interface {
	ToRecord(T) domain.Record
	FromRecord(domain.Record) (T, error)
}

// Typed is a Repository that speaks T instead of records
type Typed[T any] struct {
	repo   *Repository
	mapper Mapper[T]
}

// NewTyped wraps repo with mapper
func NewTyped[T any](repo *Repository, mapper Mapper[T]) *Typed[T] {
	return &Typed[T]{repo: repo, mapper: mapper}
}

// Untyped returns the underlying repository
func (t *Typed[T]) Untyped() *Repository {
	return t.repo
}

// Create maps v to a record and creates it
func (t *Typed[T]) Create(ctx context.Context, v T) (domain.ID, error) {
	return t.repo.Create(ctx, t.mapper.ToRecord(v))
}

// Update maps v to a record and rewrites its row
func (t *Typed[T]) Update(ctx context.Context, v T) error {
	return t.repo.Update(ctx, t.mapper.ToRecord(v))
}

// CreateOrUpdate maps v to a record and upserts it
func (t *Typed[T]) CreateOrUpdate(ctx context.Context, v T) (domain.ID, error) {
	return t.repo.CreateOrUpdate(ctx, t.mapper.ToRecord(v))
}

// Delete removes the entity with id and unwinds its indexes
func (t *Typed[T]) Delete(ctx context.Context, id domain.ID) error {
	return t.repo.Delete(ctx, id)
}

// Exists reports whether id is in the primary index
func (t *Typed[T]) Exists(ctx context.Context, id domain.ID) (bool, error) {
	return t.repo.Exists(ctx, id)
}

// Queryable returns a fresh typed eager-load builder
func (t *Typed[T]) Queryable() *TypedQueryable[T] {
	return &TypedQueryable[T]{q: t.repo.Queryable(), mapper: t.mapper}
}

// TypedQueryable is a Queryable whose results are mapped to T
type TypedQueryable[T any] struct {
	q      *Queryable
	mapper Mapper[T]
}

func (tq *TypedQueryable[T]) wrap(q *Queryable) *TypedQueryable[T] {
	return &TypedQueryable[T]{q: q, mapper: tq.mapper}
}

// Include adds a relation of the root type and makes it the active path
func (tq *TypedQueryable[T]) Include(name string) *TypedQueryable[T] {
	return tq.wrap(tq.q.Include(name))
}

// ThenInclude adds a relation below the tail of the active path
func (tq *TypedQueryable[T]) ThenInclude(name string) *TypedQueryable[T] {
	return tq.wrap(tq.q.ThenInclude(name))
}

// IncludePath includes a dotted path such as "address.person"
func (tq *TypedQueryable[T]) IncludePath(path string) *TypedQueryable[T] {
	return tq.wrap(tq.q.IncludePath(path))
}

// GetByID loads and maps one root entity.
// ErrRecordNotFound is returned when no row exists for id.
func (tq *TypedQueryable[T]) GetByID(ctx context.Context, id domain.ID) (T, error) {
	var zero T
	rec, err := tq.q.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	v, err := tq.mapper.FromRecord(rec)
	if err != nil {
		return zero, fmt.Errorf("failed to map %s: %w", id, err)
	}
	return v, nil
}

// GetByIDs loads and maps the listed entities in order, skipping missing rows
func (tq *TypedQueryable[T]) GetByIDs(ctx context.Context, ids []domain.ID) ([]T, error) {
	recs, err := tq.q.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return tq.mapAll(recs)
}

// GetAll loads and maps every root entity in primary index order
func (tq *TypedQueryable[T]) GetAll(ctx context.Context) ([]T, error) {
	recs, err := tq.q.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return tq.mapAll(recs)
}

func (tq *TypedQueryable[T]) mapAll(recs []domain.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := tq.mapper.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
