// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/addonpack/addonpack/internal/config"
)

type (
	// App wires CLI services and shared dependencies. Every cobra handler
	// receives it and reads configuration and writers through it.
	App struct {
		Config config.Provider

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		// cfg is the configuration loaded for the current invocation.
		cfg *config.Config
		// cfgSource is the file cfg was read from, "" for defaults.
		cfgSource string
		verbose   bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	rootFlagValues struct {
		configPath string
		verbose    bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// loadConfig loads configuration for one invocation. The --verbose flag
// wins over ui.verbose.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) error {
	cfg, source, err := a.Config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.cfgSource = source
	a.verbose = flags.verbose || cfg.UI.Verbose
	return nil
}

// effectiveConfig returns the loaded configuration, or the defaults when loading was
// skipped.
func (a *App) effectiveConfig() *config.Config {
	if a.cfg == nil {
		return config.DefaultConfig()
	}
	return a.cfg
}

// logger returns the diagnostic logger writing to stderr.
func (a *App) logger() *log.Logger {
	level := log.InfoLevel
	if a.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: "addonpack",
		Level:  level,
	})
}
