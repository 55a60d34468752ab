// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	ColorSchemeAuto  ColorScheme = "auto"
	ColorSchemeDark  ColorScheme = "dark"
	ColorSchemeLight ColorScheme = "light"

	DefaultAddonsDir = "addons"
	DefaultOutputDir = "build"
	DefaultJobs      = 1
	DefaultDebounce  = 500 * time.Millisecond
)

// ErrInvalidConfig is wrapped by every validation failure of a loaded Config.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// ColorScheme selects the glamour style used for issue pages.
	ColorScheme string

	Config struct {
		AddonsDir string `mapstructure:"addons_dir"`
		OutputDir string `mapstructure:"output_dir"`
		// DefaultIcon is copied as DefaultIcon.png when an addon has no icon.
		// Empty uses the built-in icon.
		DefaultIcon string      `mapstructure:"default_icon"`
		Build       BuildConfig `mapstructure:"build"`
		Watch       WatchConfig `mapstructure:"watch"`
		UI          UIConfig    `mapstructure:"ui"`
	}

	BuildConfig struct {
		// Jobs is the number of archives assembled concurrently.
		Jobs int `mapstructure:"jobs"`
	}

	WatchConfig struct {
		Debounce time.Duration `mapstructure:"debounce"`
		// Ignore holds extra doublestar patterns, relative to the addons root,
		// whose changes never trigger a rebuild.
		Ignore []string `mapstructure:"ignore"`
	}

	UIConfig struct {
		Verbose     bool        `mapstructure:"verbose"`
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		AddonsDir: DefaultAddonsDir,
		OutputDir: DefaultOutputDir,
		Build:     BuildConfig{Jobs: DefaultJobs},
		Watch:     WatchConfig{Debounce: DefaultDebounce},
		UI:        UIConfig{ColorScheme: ColorSchemeAuto},
	}
}

// Validate checks constraints on values that may come from the environment,
// which bypasses the CUE schema.
func (c *Config) Validate() error {
	var errs []error
	if c.AddonsDir == "" {
		errs = append(errs, errors.New("addons_dir must not be empty"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if c.Build.Jobs < 1 {
		errs = append(errs, fmt.Errorf("build.jobs must be at least 1, got %d", c.Build.Jobs))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func (s ColorScheme) Validate() error {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	}
	return fmt.Errorf("ui.color_scheme %q is not one of auto, dark, light", s)
}

func (s ColorScheme) String() string {
	return string(s)
}
