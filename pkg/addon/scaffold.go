// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

const (
	// ScaffoldIconFileName is the icon file created next to a new descriptor.
	ScaffoldIconFileName = "Icon.png"

	DefaultGodotVersion = "4.1"
	DefaultVersion      = "1.0.0"
)

// ScaffoldOptions describes a new addon. Empty fields take the defaults
// applied by Defaults.
type ScaffoldOptions struct {
	Name         string
	IsProject    bool
	Description  string
	Category     string
	GodotVersion string
	Version      string
	// Icon is written as Icon.png; nil writes DefaultIcon.
	Icon []byte
}

// Defaults fills empty fields: description falls back to the name.
func (o ScaffoldOptions) Defaults() ScaffoldOptions {
	if o.Description == "" {
		o.Description = o.Name
	}
	if o.Category == "" {
		o.Category = DefaultCategory
	}
	if o.GodotVersion == "" {
		o.GodotVersion = DefaultGodotVersion
	}
	if o.Version == "" {
		o.Version = DefaultVersion
	}
	if o.Icon == nil {
		o.Icon = DefaultIcon
	}
	return o
}

// ValidateName rejects names that cannot be a single directory under the
// addons root.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: addon name must not be empty", ErrConfiguration)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: addon name %q must not start with a dot", ErrConfiguration, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: addon name %q must not contain path separators", ErrConfiguration, name)
	}
	return nil
}

// Scaffold creates <root>/<name>/ with an addon.json (4-space indented) and
// an Icon.png, and returns the new directory. An existing descriptor is
// never overwritten.
func Scaffold(root string, opts ScaffoldOptions) (dir string, err error) {
	if err := ValidateName(opts.Name); err != nil {
		return "", err
	}
	opts = opts.Defaults()

	dir = filepath.Join(root, opts.Name)
	descPath := filepath.Join(dir, DescriptorFileName)
	if _, statErr := os.Stat(descPath); statErr == nil {
		return "", fmt.Errorf("%w: %s already exists", ErrConfiguration, descPath)
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: stat %s: %w", ErrIO, descPath, statErr)
	}

	d := Descriptor{
		Name:         opts.Name,
		IsProject:    opts.IsProject,
		Description:  opts.Description,
		Category:     opts.Category,
		GodotVersion: opts.GodotVersion,
		Version:      opts.Version,
		Icon:         ScaffoldIconFileName,
		Dependencies: []string{},
	}
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode descriptor: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrIO, dir, err)
	}
	if err := os.WriteFile(descPath, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write %s: %w", ErrIO, descPath, err)
	}
	iconPath := filepath.Join(dir, ScaffoldIconFileName)
	if err := os.WriteFile(iconPath, opts.Icon, 0o644); err != nil {
		return "", fmt.Errorf("%w: write %s: %w", ErrIO, iconPath, err)
	}
	return dir, nil
}
