// Package memory provides an in-process key-value backend.
package memory

import (
	"context"
	"strings"
	"sync"

	"relkv/internal/kv"
)

// Backend implements kv.Backend with a mutex-guarded map
type Backend struct {
	mu     sync.RWMutex
	prefix string
	data   map[string][]byte
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

// New creates an empty in-memory backend
func New(opts ...Option) *Backend {
	b := &Backend{
		prefix: kv.DefaultPrefix,
		data:   make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Write stores a copy of value under key
func (b *Backend) Write(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[b.prefix+key] = append([]byte(nil), value...)
	return nil
}

// Read returns a copy of the value under key
func (b *Backend) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[b.prefix+key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Remove deletes key
func (b *Backend) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, b.prefix+key)
	return nil
}

// Dump returns every entry under the prefix
func (b *Backend) Dump(ctx context.Context) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string][]byte, len(b.data))
	for k, v := range b.data {
		if strings.HasPrefix(k, b.prefix) {
			out[strings.TrimPrefix(k, b.prefix)] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

// Load writes every entry under the prefix
func (b *Backend) Load(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range entries {
		b.data[b.prefix+k] = append([]byte(nil), v...)
	}
	return nil
}

// Len returns the number of stored keys, across all prefixes
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Close is a no-op
func (b *Backend) Close() error {
	return nil
}
