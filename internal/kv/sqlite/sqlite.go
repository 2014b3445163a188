// Package sqlite provides a key-value backend stored in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"

	"relkv/internal/kv"

	_ "modernc.org/sqlite"
)

// Backend implements kv.Backend using SQLite
type Backend struct {
	db     *sql.DB
	prefix string
}

var _ kv.Backend = (*Backend)(nil)

// Option configures a Backend
type Option func(*Backend)

// WithPrefix scopes keys with prefix instead of kv.DefaultPrefix
func WithPrefix(prefix string) Option {
	return func(b *Backend) {
		b.prefix = prefix
	}
}

// New opens (or creates) the database at dbPath.
// ":memory:" keeps everything in a single private connection.
func New(dbPath string, opts ...Option) (*Backend, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	b := &Backend{db: db, prefix: kv.DefaultPrefix}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return b, nil
}

func (b *Backend) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := b.db.Exec(schema)
	return err
}

// Write stores value under key
func (b *Backend) Write(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, b.prefix+key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Read returns the value under key
func (b *Backend) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, b.prefix+key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Remove deletes key
func (b *Backend) Remove(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, b.prefix+key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Dump returns every entry under the prefix
func (b *Backend) Dump(ctx context.Context) (map[string][]byte, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT key, value FROM kv WHERE substr(key, 1, ?) = ?
	`, utf8.RuneCountInString(b.prefix), b.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		out[key[len(b.prefix):]] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return out, nil
}

// Load writes every entry in a single transaction
func (b *Backend) Load(ctx context.Context, entries map[string][]byte) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}
	defer stmt.Close()

	for key, value := range entries {
		if value == nil {
			value = []byte{}
		}
		if _, err := stmt.ExecContext(ctx, b.prefix+key, value); err != nil {
			return fmt.Errorf("failed to load %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Close closes the database connection
func (b *Backend) Close() error {
	return b.db.Close()
}
