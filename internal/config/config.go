// Package config provides configuration management for relkv.
//
// Settings come from three layers, later layers winning:
//  1. built-in defaults
//  2. a YAML config file
//  3. RELKV_* environment variables (a .env file in the working directory
//     is loaded first and never overrides variables already set)
//
// Config file locations (priority order):
//  1. $RELKV_CONFIG
//  2. ./relkv.yaml
//  3. $XDG_CONFIG_HOME/relkv/config.yaml
//  4. ~/.config/relkv/config.yaml
//  5. /etc/relkv/config.yaml
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"relkv/internal/kv"
)

// Load finds and loads the config file, or starts from defaults if none is
// found, then applies environment overrides and validates the result
func Load() (*Config, string, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, "", err
	}

	path := FindConfigPath()

	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, _, err = LoadFromPath(path); err != nil {
			return nil, path, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns an in-memory setup suitable for trying things out
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Backend.Driver == "" {
		c.Backend.Driver = DriverMemory
	}
	if c.Backend.Prefix == "" {
		c.Backend.Prefix = kv.DefaultPrefix
	}
	if c.Backend.SQLite.Path == "" {
		c.Backend.SQLite.Path = "./relkv.db"
	}
	if c.Backend.Redis.Addr == "" {
		c.Backend.Redis.Addr = "localhost:6379"
	}
	if c.Backend.Redis.DialTimeout == 0 {
		c.Backend.Redis.DialTimeout = Duration(5 * time.Second)
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
}

// Validate rejects settings no backend can be built from
func (c *Config) Validate() error {
	if !slices.Contains(Drivers, c.Backend.Driver) {
		return fmt.Errorf("unknown backend driver %q (want one of %s)", c.Backend.Driver, c.driverList())
	}
	if c.Backend.Redis.DB < 0 {
		return fmt.Errorf("redis db must not be negative: %d", c.Backend.Redis.DB)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

func (c *Config) driverList() string {
	names := make([]string, len(Drivers))
	for i, d := range Drivers {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Backend: %s (prefix %q)", c.Backend.Driver, c.Backend.Prefix)
	switch c.Backend.Driver {
	case DriverSQLite:
		summary += fmt.Sprintf(", path %s", c.Backend.SQLite.Path)
	case DriverRedis:
		summary += fmt.Sprintf(", addr %s db %d", c.Backend.Redis.Addr, c.Backend.Redis.DB)
	}
	if c.Schema != "" {
		summary += fmt.Sprintf("\nSchema: %s", c.Schema)
	}
	summary += fmt.Sprintf("\nLog level: %s", c.Log.Level)
	return summary
}
