package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"relkv/internal/config"
	"relkv/internal/core/engine"
	"relkv/internal/logging"
	"relkv/internal/schema"
)

// Version is set by the build
var Version = "dev"

// app carries state shared by every command
type app struct {
	configPath string
	backend    string
	schemaPath string
	logLevel   string

	cfg    *config.Config
	log    *slog.Logger
	engine *engine.Engine
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "relkv",
		Short:         "Relational records over a key-value store",
		Long:          "relkv stores entities described by a schema in a key-value backend and resolves their relations through indexes.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: search "+config.ConfigFileName+" and XDG paths)")
	flags.StringVar(&a.backend, "backend", "", "backend driver: memory, sqlite or redis")
	flags.StringVar(&a.schemaPath, "schema", "", "entity schema file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newDemoCommand(a),
		newSchemaCommand(a),
		newPutCommand(a),
		newGetCommand(a),
		newListCommand(a),
		newDeleteCommand(a),
		newDumpCommand(a),
		newRestoreCommand(a),
	)
	return root
}

// loadConfig resolves config from file, environment and flags
func (a *app) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		if cfg, _, err = config.LoadFromPath(a.configPath); err != nil {
			return err
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
	} else if cfg, _, err = config.Load(); err != nil {
		return err
	}

	if a.backend != "" {
		cfg.Backend.Driver = config.Driver(a.backend)
	}
	if a.schemaPath != "" {
		cfg.Schema = a.schemaPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// open loads config and connects the engine. A non-nil registry replaces
// the configured schema file.
func (a *app) open(cmd *cobra.Command, registry *schema.Registry) error {
	if err := a.loadConfig(); err != nil {
		return err
	}
	if registry != nil {
		a.cfg.Schema = ""
	}
	log, err := logging.New(cmd.ErrOrStderr(), a.cfg.Log.Level)
	if err != nil {
		return err
	}
	a.log = log
	log.Debug("config resolved", "summary", a.cfg.Summary())
	e, err := engine.Open(cmd.Context(), a.cfg, registry, log)
	if err != nil {
		return err
	}
	a.engine = e
	return nil
}

func (a *app) close() {
	if a.engine == nil {
		return
	}
	if err := a.engine.Close(); err != nil {
		a.log.Warn("failed to close backend", "driver", a.cfg.Backend.Driver, "error", err)
	}
	a.engine = nil
}
