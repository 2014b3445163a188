// Package kv defines the key-value backend contract consumed by the index store.
//
// A backend stores opaque byte values under string keys and scopes every key
// with its configured prefix, so several applications may share one store.
// Dump and Load work on logical (unprefixed) keys and are used for full
// backup and restore.
//
// Three implementations are provided in subpackages: memory (in-process map),
// sqlite (single-file database) and redis.
package kv

import "context"

// DefaultPrefix scopes keys when a backend is created without a prefix
const DefaultPrefix = "relkv::"

// Backend is the minimal storage contract
type Backend interface {
	// Write stores value under key, replacing any previous value
	Write(ctx context.Context, key string, value []byte) error
	// Read returns the value under key. The bool is false when absent.
	Read(ctx context.Context, key string) ([]byte, bool, error)
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Dump returns every key under the backend prefix, prefix stripped
	Dump(ctx context.Context) (map[string][]byte, error)
	// Load writes every entry under the backend prefix
	Load(ctx context.Context, entries map[string][]byte) error

	// Close releases resources
	Close() error
}
