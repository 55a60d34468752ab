// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"fmt"
	"path/filepath"
)

// Addon is one loaded addon directory.
type Addon struct {
	// Name is the directory name. Dependencies refer to addons by it, and it
	// becomes the archive prefix and file stem.
	Name string
	// Dir is the absolute addon directory.
	Dir        string
	Descriptor *Descriptor
}

// Load loads the addon rooted at dir.
func Load(dir string) (*Addon, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrIO, dir, err)
	}
	d, err := LoadDescriptor(abs)
	if err != nil {
		return nil, err
	}
	return &Addon{Name: filepath.Base(abs), Dir: abs, Descriptor: d}, nil
}

// IsProject reports whether the addon belongs to the project class.
func (a *Addon) IsProject() bool {
	return a.Descriptor.IsProject
}

// Category returns the declared category or DefaultCategory.
func (a *Addon) Category() string {
	return a.Descriptor.CategoryOrDefault()
}
