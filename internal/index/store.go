package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"relkv/internal/domain"
	"relkv/internal/kv"
	"relkv/internal/logging"
)

// Store reads and writes rows and indexes through a backend
type Store struct {
	backend kv.Backend
	log     *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for index mutation traces
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Store over the backend
func New(backend kv.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying backend
func (s *Store) Backend() kv.Backend {
	return s.backend
}

// ============================================================================
// Rows
// ============================================================================

// Read returns the row stored for id. The bool is false when absent.
func (s *Store) Read(ctx context.Context, table string, id domain.ID) (domain.Record, bool, error) {
	data, ok, err := s.backend.Read(ctx, RowKey(table, id))
	if err != nil || !ok || len(data) == 0 {
		return nil, false, err
	}

	var row domain.Record
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&row); err != nil {
		return nil, false, fmt.Errorf("failed to decode row %s/%s: %w", table, id, err)
	}
	if row == nil {
		return nil, false, nil
	}
	return row, true, nil
}

// Write stores the row for id
func (s *Store) Write(ctx context.Context, table string, id domain.ID, row domain.Record) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row %s/%s: %w", table, id, err)
	}
	return s.backend.Write(ctx, RowKey(table, id), data)
}

// Remove deletes the row for id
func (s *Store) Remove(ctx context.Context, table string, id domain.ID) error {
	return s.backend.Remove(ctx, RowKey(table, id))
}

// ============================================================================
// Primary index
// ============================================================================

// PrimaryIndex returns the identifiers of a table in insertion order
func (s *Store) PrimaryIndex(ctx context.Context, table string) ([]domain.ID, error) {
	return s.readIDs(ctx, PrimaryKey(table))
}

// HasPrimary reports whether id is in the table's primary index
func (s *Store) HasPrimary(ctx context.Context, table string, id domain.ID) (bool, error) {
	ids, err := s.PrimaryIndex(ctx, table)
	if err != nil {
		return false, err
	}
	return contains(ids, id), nil
}

// AddPrimaryIndex appends id to the table's primary index.
// An id already present is an ErrIndexConstraintViolation.
func (s *Store) AddPrimaryIndex(ctx context.Context, table string, id domain.ID) error {
	key := PrimaryKey(table)
	ids, err := s.readIDs(ctx, key)
	if err != nil {
		return err
	}
	if contains(ids, id) {
		return fmt.Errorf("%w: %s already exists in %s", domain.ErrIndexConstraintViolation, id, table)
	}
	s.log.Debug("primary index add", "table", table, "id", id)
	return s.writeIDs(ctx, key, append(ids, id))
}

// RemovePrimaryIndex removes id from the table's primary index
func (s *Store) RemovePrimaryIndex(ctx context.Context, table string, id domain.ID) error {
	key := PrimaryKey(table)
	ids, err := s.readIDs(ctx, key)
	if err != nil {
		return err
	}
	if !contains(ids, id) {
		return nil
	}
	s.log.Debug("primary index remove", "table", table, "id", id)
	return s.writeIDs(ctx, key, without(ids, id))
}

// ============================================================================
// Foreign-key index
// ============================================================================

// ForeignKeyIndex returns the owning identifiers recorded for fk
func (s *Store) ForeignKeyIndex(ctx context.Context, fk ForeignKey) ([]domain.ID, error) {
	return s.readIDs(ctx, fk.Key())
}

// AddForeignKeyIndex records id under fk. Adding a linked id again is a no-op.
func (s *Store) AddForeignKeyIndex(ctx context.Context, fk ForeignKey, id domain.ID) error {
	key := fk.Key()
	ids, err := s.readIDs(ctx, key)
	if err != nil {
		return err
	}
	if contains(ids, id) {
		return nil
	}
	s.log.Debug("foreign key index add",
		"owning", fk.Owning, "referenced", fk.Referenced, "property", fk.Property, "value", fk.Value, "id", id)
	return s.writeIDs(ctx, key, append(ids, id))
}

// RemoveForeignKeyIndex removes a single id from fk
func (s *Store) RemoveForeignKeyIndex(ctx context.Context, fk ForeignKey, id domain.ID) error {
	key := fk.Key()
	ids, err := s.readIDs(ctx, key)
	if err != nil {
		return err
	}
	if !contains(ids, id) {
		return nil
	}
	s.log.Debug("foreign key index remove",
		"owning", fk.Owning, "referenced", fk.Referenced, "property", fk.Property, "value", fk.Value, "id", id)
	return s.writeIDs(ctx, key, without(ids, id))
}

// RemoveForeignKeyIndexRecord deletes the whole fk entry
func (s *Store) RemoveForeignKeyIndexRecord(ctx context.Context, fk ForeignKey) error {
	s.log.Debug("foreign key index drop",
		"owning", fk.Owning, "referenced", fk.Referenced, "property", fk.Property, "value", fk.Value)
	return s.backend.Remove(ctx, fk.Key())
}

// ============================================================================
// Encoding helpers
// ============================================================================

func (s *Store) readIDs(ctx context.Context, key string) ([]domain.ID, error) {
	data, ok, err := s.backend.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return []domain.ID{}, nil
	}
	var ids []domain.ID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode index %s: %w", key, err)
	}
	if ids == nil {
		ids = []domain.ID{}
	}
	return ids, nil
}

func (s *Store) writeIDs(ctx context.Context, key string, ids []domain.ID) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode index %s: %w", key, err)
	}
	return s.backend.Write(ctx, key, data)
}

func contains(ids []domain.ID, id domain.ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func without(ids []domain.ID, id domain.ID) []domain.ID {
	out := make([]domain.ID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
