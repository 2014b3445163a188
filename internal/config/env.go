package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override config file values
const (
	EnvBackend       = "RELKV_BACKEND"
	EnvSQLitePath    = "RELKV_SQLITE_PATH"
	EnvRedisAddr     = "RELKV_REDIS_ADDR"
	EnvRedisPassword = "RELKV_REDIS_PASSWORD"
	EnvRedisDB       = "RELKV_REDIS_DB"
	EnvPrefix        = "RELKV_PREFIX"
	EnvSchema        = "RELKV_SCHEMA"
	EnvLogLevel      = "RELKV_LOG_LEVEL"
)

// DotEnvFile is read from the working directory by LoadDotEnv
const DotEnvFile = ".env"

// LoadDotEnv loads DotEnvFile into the process environment if it exists.
// Variables that are already set keep their values.
func LoadDotEnv() error {
	if err := godotenv.Load(DotEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	return nil
}

// ApplyEnv overrides config values from RELKV_* environment variables
func (c *Config) ApplyEnv() error {
	setString(&c.Schema, EnvSchema)
	setString(&c.Backend.Prefix, EnvPrefix)
	setString(&c.Backend.SQLite.Path, EnvSQLitePath)
	setString(&c.Backend.Redis.Addr, EnvRedisAddr)
	setString(&c.Backend.Redis.Password, EnvRedisPassword)
	setString(&c.Log.Level, EnvLogLevel)

	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend.Driver = Driver(v)
	}
	if v := os.Getenv(EnvRedisDB); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		c.Backend.Redis.DB = db
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
