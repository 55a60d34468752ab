// SPDX-License-Identifier: MPL-2.0

package addon

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/addonpack/addonpack/internal/cueutil"

	"golang.org/x/mod/semver"
)

const (
	// DescriptorFileName is the descriptor file every addon directory carries.
	DescriptorFileName = "addon.json"

	// DefaultCategory is used when a descriptor declares no category.
	DefaultCategory = "Misc"
)

//go:embed descriptor_schema.cue
var descriptorSchema []byte

// Descriptor is the decoded addon.json. Field order matches the files written
// by Scaffold.
type Descriptor struct {
	Name         string   `json:"name"`
	IsProject    bool     `json:"isProject"`
	Description  string   `json:"description"`
	Category     string   `json:"category,omitempty"`
	GodotVersion string   `json:"godotVersion"`
	Version      string   `json:"version"`
	Icon         string   `json:"icon,omitempty"`
	Ignore       []string `json:"ignore,omitempty"`
	Dependencies []string `json:"dependencies"`
}

// CategoryOrDefault returns Category, or DefaultCategory when it is empty.
func (d *Descriptor) CategoryOrDefault() string {
	if d.Category == "" {
		return DefaultCategory
	}
	return d.Category
}

// Validate checks the required fields in the order name, version,
// description, godotVersion. addonName labels the error, since the name
// field itself may be the one missing.
func (d *Descriptor) Validate(addonName string) error {
	required := []struct {
		field string
		value string
	}{
		{"name", d.Name},
		{"version", d.Version},
		{"description", d.Description},
		{"godotVersion", d.GodotVersion},
	}
	for _, r := range required {
		if r.value == "" {
			return &MissingFieldError{Addon: addonName, Field: r.field}
		}
	}
	return nil
}

// Warnings lists non-fatal findings, currently a version that is not
// semantic-versioning compatible.
func (d *Descriptor) Warnings() []string {
	var warnings []string
	if d.Version != "" && !semver.IsValid("v"+d.Version) {
		warnings = append(warnings, fmt.Sprintf("version %q is not a semantic version", d.Version))
	}
	return warnings
}

// ParseDescriptor decodes descriptor bytes without checking required fields.
// filename only labels errors.
func ParseDescriptor(data []byte, filename string) (*Descriptor, error) {
	d, err := cueutil.Decode[Descriptor](descriptorSchema, "#Descriptor", data, cueutil.WithFilename(filename))
	if err != nil {
		return nil, &DescriptorError{Path: filename, Err: err}
	}
	return d, nil
}

// LoadDescriptor reads, parses and validates <dir>/addon.json. The addon is
// named after the base name of dir in errors.
func LoadDescriptor(dir string) (*Descriptor, error) {
	path := filepath.Join(dir, DescriptorFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w: %s", ErrConfiguration, ErrDescriptorNotFound, path)
		}
		return nil, fmt.Errorf("%w: read descriptor: %w", ErrIO, err)
	}

	d, err := ParseDescriptor(data, path)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(filepath.Base(dir)); err != nil {
		return nil, err
	}
	return d, nil
}
