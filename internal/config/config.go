// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/addonpack/addonpack/internal/cueutil"
	"github.com/addonpack/addonpack/internal/issue"

	"github.com/spf13/viper"
)

const (
	AppName = "addonpack"
	// LocalFileName is looked up in the working directory first.
	LocalFileName = "addonpack.cue"
	// UserFileName lives in ConfigDir.
	UserFileName = "config.cue"
	// EnvPrefix prefixes environment overrides: ADDONPACK_OUTPUT_DIR, ADDONPACK_BUILD_JOBS.
	EnvPrefix = "ADDONPACK"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns <user config dir>/addonpack.
//
//nolint:revive // config.ConfigDir reads better than config.Dir at call sites
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// loadWithOptions loads configuration and returns it together with the path
// of the file used ("" when only defaults and environment applied).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	path, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Compare it with the output of 'addonpack config init --stdout'").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", issue.WrapWithOperation(fmt.Errorf("%w: %w", ErrInvalidConfig, err), "load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check ADDONPACK_* environment variables for typos").
			Wrap(err).
			BuildError()
	}
	return &cfg, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("addons_dir", defaults.AddonsDir)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("default_icon", defaults.DefaultIcon)
	v.SetDefault("build.jobs", defaults.Build.Jobs)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.ignore", defaults.Watch.Ignore)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// findConfigFile picks the file to load. An explicit path must exist.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'addonpack config init' to create a configuration file").
				Wrap(fmt.Errorf("config file not found: %w", fs.ErrNotExist)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	local := LocalFileName
	if opts.WorkDir != "" {
		local = filepath.Join(opts.WorkDir, LocalFileName)
	}
	if fileExists(local) {
		return local, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			// No user config dir (e.g. $HOME unset): defaults only.
			return "", nil
		}
	}
	if user := filepath.Join(dir, UserFileName); fileExists(user) {
		return user, nil
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// Fields are optional, so the document is decoded into a map rather than a
// struct and merged over the defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	unified, err := cueutil.Unify(configSchema, "#Config", data,
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is left untouched unless force is set.
func WriteDefault(path string, force bool) (written bool, err error) {
	if !force && fileExists(path) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// GenerateCUE renders cfg as a config file accepted by the schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// addonpack configuration\n\n")
	fmt.Fprintf(&sb, "addons_dir: %q\n", cfg.AddonsDir)
	fmt.Fprintf(&sb, "output_dir: %q\n", cfg.OutputDir)
	if cfg.DefaultIcon != "" {
		fmt.Fprintf(&sb, "default_icon: %q\n", cfg.DefaultIcon)
	}

	sb.WriteString("\nbuild: {\n")
	fmt.Fprintf(&sb, "\tjobs: %d\n", cfg.Build.Jobs)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	if len(cfg.Watch.Ignore) > 0 {
		sb.WriteString("\tignore: [\n")
		for _, p := range cfg.Watch.Ignore {
			fmt.Fprintf(&sb, "\t\t%q,\n", p)
		}
		sb.WriteString("\t]\n")
	}
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}
