// Package redis provides a key-value backend on a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"relkv/internal/kv"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint used when enumerating keys
const scanBatch = 256

// Backend implements kv.Backend on a *redis.Client
type Backend struct {
	rdb    *redis.Client
	prefix string
	owned  bool
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

// New wraps an existing client. Close leaves the client open.
func New(rdb *redis.Client, opts ...Option) *Backend {
	b := &Backend{rdb: rdb, prefix: kv.DefaultPrefix}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dial connects to addr and verifies the connection with PING
func Dial(ctx context.Context, addr, password string, db int, opts ...Option) (*Backend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	b := New(rdb, opts...)
	b.owned = true
	return b, nil
}

// Write stores value under key
func (b *Backend) Write(ctx context.Context, key string, value []byte) error {
	if err := b.rdb.Set(ctx, b.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Read returns the value under key
func (b *Backend) Read(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := b.rdb.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Remove deletes key
func (b *Backend) Remove(ctx context.Context, key string) error {
	if err := b.rdb.Del(ctx, b.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Dump enumerates the prefix with SCAN and fetches values with MGET
func (b *Backend) Dump(ctx context.Context) (map[string][]byte, error) {
	out := make(map[string][]byte)
	iter := b.rdb.Scan(ctx, 0, globEscape(b.prefix)+"*", scanBatch).Iterator()

	var batch []string
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		values, err := b.rdb.MGet(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("failed to fetch entries: %w", err)
		}
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				// removed between SCAN and MGET
				continue
			}
			out[strings.TrimPrefix(batch[i], b.prefix)] = []byte(s)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatch {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// Load writes every entry in one pipeline
func (b *Backend) Load(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := b.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, b.prefix+key, value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	return nil
}

// Close closes the client when the backend created it
func (b *Backend) Close() error {
	if !b.owned {
		return nil
	}
	return b.rdb.Close()
}

// globEscape quotes the characters SCAN MATCH treats as pattern syntax
func globEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\', '^', '-':
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
