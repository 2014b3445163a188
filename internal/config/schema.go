package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version int           `yaml:"version"`
	Backend BackendConfig `yaml:"backend"`
	Schema  string        `yaml:"schema,omitempty"` // path to an entity schema file
	Log     LogConfig     `yaml:"log"`
}

// Driver names a key-value backend implementation
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
)

// Drivers lists every supported backend driver
var Drivers = []Driver{DriverMemory, DriverSQLite, DriverRedis}

// BackendConfig selects and configures the key-value backend
type BackendConfig struct {
	Driver Driver       `yaml:"driver"`
	Prefix string       `yaml:"prefix"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Redis  RedisConfig  `yaml:"redis"`
}

// SQLiteConfig configures the sqlite backend
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig configures the redis backend
type RedisConfig struct {
	Addr        string   `yaml:"addr"`
	Password    string   `yaml:"password,omitempty"`
	DB          int      `yaml:"db"`
	DialTimeout Duration `yaml:"dial_timeout"`
}

// LogConfig configures diagnostic logging
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Duration is a time.Duration that marshals to YAML as a string
type Duration time.Duration

// Duration returns the value as time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}
