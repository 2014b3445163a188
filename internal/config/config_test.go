package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"relkv/internal/kv"
)

// clearEnv unsets every override so host settings cannot leak into a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfigPath, EnvBackend, EnvSQLitePath, EnvRedisAddr, EnvRedisPassword,
		EnvRedisDB, EnvPrefix, EnvSchema, EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Backend.Driver != DriverMemory {
		t.Errorf("Backend.Driver = %s, want %s", cfg.Backend.Driver, DriverMemory)
	}
	if cfg.Backend.Prefix != kv.DefaultPrefix {
		t.Errorf("Backend.Prefix = %q, want %q", cfg.Backend.Prefix, kv.DefaultPrefix)
	}
	if cfg.Backend.Redis.DialTimeout.Duration() != 5*time.Second {
		t.Errorf("Redis.DialTimeout = %s, want 5s", cfg.Backend.Redis.DialTimeout.Duration())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"sqlite", func(c *Config) { c.Backend.Driver = DriverSQLite }, ""},
		{"redis", func(c *Config) { c.Backend.Driver = DriverRedis }, ""},
		{"unknown driver", func(c *Config) { c.Backend.Driver = "etcd" }, "unknown backend driver"},
		{"negative redis db", func(c *Config) { c.Backend.Redis.DB = -1 }, "must not be negative"},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, "unknown log level"},
		{"upper case log level", func(c *Config) { c.Log.Level = "DEBUG" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBackend, "redis")
	t.Setenv(EnvRedisAddr, "cache:6380")
	t.Setenv(EnvRedisPassword, "hunter2")
	t.Setenv(EnvRedisDB, "3")
	t.Setenv(EnvPrefix, "test::")
	t.Setenv(EnvSchema, "schema.yaml")
	t.Setenv(EnvLogLevel, "debug")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}

	if cfg.Backend.Driver != DriverRedis {
		t.Errorf("Driver = %s, want redis", cfg.Backend.Driver)
	}
	if cfg.Backend.Redis.Addr != "cache:6380" || cfg.Backend.Redis.Password != "hunter2" || cfg.Backend.Redis.DB != 3 {
		t.Errorf("unexpected redis config %+v", cfg.Backend.Redis)
	}
	if cfg.Backend.Prefix != "test::" {
		t.Errorf("Prefix = %q, want test::", cfg.Backend.Prefix)
	}
	if cfg.Schema != "schema.yaml" {
		t.Errorf("Schema = %q, want schema.yaml", cfg.Schema)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestApplyEnv_BadRedisDB(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRedisDB, "zero")

	if err := DefaultConfig().ApplyEnv(); err == nil || !strings.Contains(err.Error(), EnvRedisDB) {
		t.Errorf("ApplyEnv() = %v, want %s error", err, EnvRedisDB)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Backend.Driver = DriverSQLite
	cfg.Backend.SQLite.Path = filepath.Join(tmpDir, "data.db")
	cfg.Backend.Redis.DialTimeout = Duration(time.Minute)
	cfg.Schema = "entities.yaml"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Backend.Driver != DriverSQLite {
		t.Errorf("Driver = %s, want sqlite", loaded.Backend.Driver)
	}
	if loaded.Backend.SQLite.Path != cfg.Backend.SQLite.Path {
		t.Errorf("SQLite.Path = %s, want %s", loaded.Backend.SQLite.Path, cfg.Backend.SQLite.Path)
	}
	if loaded.Backend.Redis.DialTimeout.Duration() != time.Minute {
		t.Errorf("DialTimeout = %s, want 1m", loaded.Backend.Redis.DialTimeout.Duration())
	}
	if loaded.Schema != "entities.yaml" {
		t.Errorf("Schema = %s, want entities.yaml", loaded.Schema)
	}
}

func TestLoadFromPath_PartialFileGetsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("backend:\n  driver: redis\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Backend.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %s, want localhost:6379", cfg.Backend.Redis.Addr)
	}
	if cfg.Backend.Prefix != kv.DefaultPrefix {
		t.Errorf("Prefix = %q, want default", cfg.Backend.Prefix)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))

	if err := os.WriteFile(ConfigFileName, []byte("backend:\n  driver: sqlite\nlog:\n  level: info\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(DotEnvFile, []byte(EnvLogLevel+"=error\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides a variable that is set, even to ""
	os.Unsetenv(EnvLogLevel)

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if filepath.Base(path) != ConfigFileName {
		t.Errorf("path = %s, want %s", path, ConfigFileName)
	}
	if cfg.Backend.Driver != DriverSQLite {
		t.Errorf("Driver = %s, want sqlite", cfg.Backend.Driver)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %s, want error from .env", cfg.Log.Level)
	}
}

func TestLoad_RejectsInvalidDriver(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	t.Setenv(EnvBackend, "floppy")

	if _, _, err := Load(); err == nil {
		t.Error("Load() should reject an unknown driver")
	}
}

func TestFindConfigPath(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))

	homePath := filepath.Join(tmpDir, "home", ".config", ConfigDirName, "config.yaml")
	if err := DefaultConfig().Save(homePath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); found != homePath {
		t.Errorf("FindConfigPath() = %s, want %s", found, homePath)
	}

	xdgPath := filepath.Join(tmpDir, "xdg", ConfigDirName, "config.yaml")
	if err := DefaultConfig().Save(xdgPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); found != xdgPath {
		t.Errorf("FindConfigPath() = %s, want %s", found, xdgPath)
	}

	if err := DefaultConfig().Save(ConfigFileName); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); filepath.Base(found) != ConfigFileName || !filepath.IsAbs(found) {
		t.Errorf("FindConfigPath() = %s, want absolute working directory path", found)
	}

	// explicit path that doesn't exist falls back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if found := FindConfigPath(); filepath.Base(found) != ConfigFileName {
		t.Errorf("FindConfigPath() = %s, want fallback to working directory", found)
	}

	explicit := filepath.Join(tmpDir, "explicit.yaml")
	if err := DefaultConfig().Save(explicit); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}

func TestSummary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.Driver = DriverRedis
	cfg.Backend.Redis.DB = 2
	cfg.Schema = "entities.yaml"

	summary := cfg.Summary()
	for _, want := range []string{"Backend: redis", "addr localhost:6379 db 2", "Schema: entities.yaml", "Log level: warn"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() missing %q:\n%s", want, summary)
		}
	}
}
