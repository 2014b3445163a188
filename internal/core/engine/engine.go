// Package engine assembles a backend, index store and registry from config
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"relkv/internal/config"
	"relkv/internal/kv"
	"relkv/internal/kv/memory"
	"relkv/internal/kv/redis"
	"relkv/internal/kv/sqlite"
	"relkv/internal/index"
	"relkv/internal/logging"
	"relkv/internal/repository"
	"relkv/internal/schema"
)

// Engine owns the backend and hands out repositories over it
type Engine struct {
	Backend  kv.Backend
	Store    *index.Store
	Registry *schema.Registry
	log      *slog.Logger
}

// Open connects the configured backend and registers the configured schema.
// A nil registry starts empty; specifications from cfg.Schema are added to it.
func Open(ctx context.Context, cfg *config.Config, registry *schema.Registry, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = logging.Discard()
	}
	if registry == nil {
		registry = schema.NewRegistry()
	}

	if cfg.Schema != "" {
		specs, err := schema.LoadFile(cfg.Schema)
		if err != nil {
			return nil, err
		}
		if err := registry.RegisterAll(specs); err != nil {
			return nil, fmt.Errorf("register %s: %w", cfg.Schema, err)
		}
		log.Info("schema loaded", "path", cfg.Schema, "entities", len(specs))
	}

	backend, err := OpenBackend(ctx, cfg.Backend)
	if err != nil {
		return nil, err
	}
	log.Info("backend opened", "driver", cfg.Backend.Driver, "prefix", cfg.Backend.Prefix)

	return &Engine{
		Backend:  backend,
		Store:    index.New(backend, index.WithLogger(log)),
		Registry: registry,
		log:      log,
	}, nil
}

// OpenBackend builds the key-value backend named by bc.Driver
func OpenBackend(ctx context.Context, bc config.BackendConfig) (kv.Backend, error) {
	switch bc.Driver {
	case config.DriverMemory:
		return memory.New(memory.WithPrefix(bc.Prefix)), nil
	case config.DriverSQLite:
		backend, err := sqlite.New(bc.SQLite.Path, sqlite.WithPrefix(bc.Prefix))
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", bc.SQLite.Path, err)
		}
		return backend, nil
	case config.DriverRedis:
		if timeout := bc.Redis.DialTimeout.Duration(); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		backend, err := redis.Dial(ctx, bc.Redis.Addr, bc.Redis.Password, bc.Redis.DB, redis.WithPrefix(bc.Prefix))
		if err != nil {
			return nil, fmt.Errorf("dial redis %s: %w", bc.Redis.Addr, err)
		}
		return backend, nil
	}
	return nil, fmt.Errorf("unknown backend driver %q", bc.Driver)
}

// Repository returns a repository for a registered entity type
func (e *Engine) Repository(entityType schema.EntityType) (*repository.Repository, error) {
	return repository.New(e.Registry, e.Store, entityType, repository.WithLogger(e.log))
}

// Close releases the backend
func (e *Engine) Close() error {
	return e.Backend.Close()
}
