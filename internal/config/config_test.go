// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/addonpack/addonpack/internal/issue"
	"github.com/addonpack/addonpack/internal/testutil"
)

func load(t *testing.T, opts LoadOptions) (*Config, string, error) {
	t.Helper()
	if opts.WorkDir == "" {
		opts.WorkDir = t.TempDir()
	}
	if opts.ConfigDirPath == "" {
		opts.ConfigDirPath = t.TempDir()
	}
	return NewProvider().LoadWithSource(context.Background(), opts)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := load(t, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want none", path)
	}
	want := DefaultConfig()
	if cfg.AddonsDir != want.AddonsDir || cfg.OutputDir != want.OutputDir || cfg.Build.Jobs != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Watch.Debounce != DefaultDebounce || cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_LocalFileWins(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	userDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(work, LocalFileName), `
output_dir: "dist"
build: jobs: 4
watch: {
	debounce: "250ms"
	ignore: ["**/*.import"]
}
ui: color_scheme: "dark"
`)
	testutil.MustWriteFile(t, filepath.Join(userDir, UserFileName), `output_dir: "ignored"`)

	cfg, path, err := load(t, LoadOptions{WorkDir: work, ConfigDirPath: userDir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != filepath.Join(work, LocalFileName) {
		t.Errorf("path = %q", path)
	}
	if cfg.OutputDir != "dist" || cfg.Build.Jobs != 4 || cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Debounce = %s", cfg.Watch.Debounce)
	}
	if len(cfg.Watch.Ignore) != 1 || cfg.Watch.Ignore[0] != "**/*.import" {
		t.Errorf("Ignore = %v", cfg.Watch.Ignore)
	}
	if cfg.AddonsDir != DefaultAddonsDir {
		t.Errorf("unset fields should keep defaults, AddonsDir = %q", cfg.AddonsDir)
	}
}

func TestLoad_UserFile(t *testing.T) {
	t.Parallel()

	userDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(userDir, UserFileName), `addons_dir: "packages"`)

	cfg, path, err := load(t, LoadOptions{ConfigDirPath: userDir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != filepath.Join(userDir, UserFileName) || cfg.AddonsDir != "packages" {
		t.Errorf("path = %q, cfg = %+v", path, cfg)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "custom.cue")
	testutil.MustWriteFile(t, file, `default_icon: "art/icon.png"`)

	cfg, _, err := load(t, LoadOptions{ConfigFilePath: file})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DefaultIcon != "art/icon.png" {
		t.Errorf("DefaultIcon = %q", cfg.DefaultIcon)
	}

	_, _, err = load(t, LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "missing.cue")})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing explicit file: error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"jobs zero", `build: jobs: 0`, "build.jobs"},
		{"jobs string", `build: jobs: "many"`, "build.jobs"},
		{"unknown field", `outputs: "x"`, "outputs"},
		{"bad color", `ui: color_scheme: "neon"`, "ui.color_scheme"},
		{"bad duration", `watch: debounce: "soon"`, "watch.debounce"},
		{"syntax", `build: {`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			work := t.TempDir()
			testutil.MustWriteFile(t, filepath.Join(work, LocalFileName), tt.content)

			_, _, err := load(t, LoadOptions{WorkDir: work})
			if err == nil {
				t.Fatal("expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.Operation != "load configuration" {
				t.Errorf("error should be an ActionableError for loading, got %v", err)
			}
			if tt.field != "" && !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should mention %s: %v", tt.field, err)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ADDONPACK_BUILD_JOBS", "8")
	t.Setenv("ADDONPACK_OUTPUT_DIR", "out")

	work := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(work, LocalFileName), `build: jobs: 2`)

	cfg, _, err := load(t, LoadOptions{WorkDir: work})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Build.Jobs != 8 || cfg.OutputDir != "out" {
		t.Errorf("env should override file: %+v", cfg)
	}
}

func TestLoad_EnvInvalid(t *testing.T) {
	t.Setenv("ADDONPACK_UI_COLOR_SCHEME", "neon")

	_, _, err := load(t, LoadOptions{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{WorkDir: t.TempDir(), ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DefaultIcon = "icons/default.png"
	cfg.Build.Jobs = 3
	cfg.Watch.Ignore = []string{"*.tmp"}
	cfg.UI.ColorScheme = ColorSchemeLight

	work := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(work, LocalFileName), GenerateCUE(cfg))

	got, _, err := load(t, LoadOptions{WorkDir: work})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if got.DefaultIcon != cfg.DefaultIcon || got.Build.Jobs != 3 || got.UI.ColorScheme != ColorSchemeLight {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Watch.Debounce != DefaultDebounce || len(got.Watch.Ignore) != 1 {
		t.Errorf("round trip mismatch: %+v", got.Watch)
	}
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", UserFileName)
	written, err := WriteDefault(path, false)
	if err != nil || !written {
		t.Fatalf("WriteDefault() = %v, %v", written, err)
	}

	testutil.MustWriteFile(t, path, "// edited\n")
	written, err = WriteDefault(path, false)
	if err != nil || written {
		t.Fatalf("WriteDefault() over existing = %v, %v", written, err)
	}
	if testutil.MustReadFile(t, path) != "// edited\n" {
		t.Error("existing file must be left untouched")
	}

	if written, err = WriteDefault(path, true); err != nil || !written {
		t.Fatalf("WriteDefault(force) = %v, %v", written, err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.Build.Jobs = 0
	cfg.OutputDir = ""
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
	}
	for _, want := range []string{"build.jobs", "output_dir"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}
