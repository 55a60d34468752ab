// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

type (
	// Catalog gives access to the addons of one addons root. Loaded addons are
	// cached; a Catalog is safe for concurrent use.
	Catalog struct {
		root string

		mu       sync.Mutex
		cache    map[string]*Addon
		excluded map[string]bool
	}

	// NotFoundError is returned by Lookup for a name with no directory.
	NotFoundError struct {
		Name string
		Root string
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("addon %q not found in %s", e.Name, e.Root)
}

func (e *NotFoundError) Unwrap() error {
	return ErrConfiguration
}

// NewCatalog returns a catalog over root. The root is not read until used.
func NewCatalog(root string) (*Catalog, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrIO, root, err)
	}
	return &Catalog{root: abs, cache: make(map[string]*Addon), excluded: make(map[string]bool)}, nil
}

// Exclude hides directories of the root that are not addons, such as a build
// output directory. Excluded names are neither listed nor found.
func (c *Catalog) Exclude(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		c.excluded[n] = true
	}
}

// Root returns the absolute addons root.
func (c *Catalog) Root() string {
	return c.root
}

// Names lists the addon directories of the root in lexical order. Entries
// starting with a dot, excluded names and plain files are skipped.
func (c *Catalog) Names() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("%w: list addons in %s: %w", ErrIO, c.root, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || c.excluded[e.Name()] {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// Lookup returns the named addon, loading and validating it on first use.
// A name without a directory yields *NotFoundError.
func (c *Catalog) Lookup(name string) (*Addon, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.cache[name]; ok {
		return a, nil
	}

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || c.excluded[name] {
		return nil, &NotFoundError{Name: name, Root: c.root}
	}

	dir := filepath.Join(c.root, name)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Name: name, Root: c.root}
		}
		return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, dir, err)
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Name: name, Root: c.root}
	}

	d, err := LoadDescriptor(dir)
	if err != nil {
		return nil, err
	}
	a := &Addon{Name: name, Dir: dir, Descriptor: d}
	c.cache[name] = a
	return a, nil
}

// All loads every addon returned by Names, stopping at the first error.
// Load errors already name the addon and are returned as is.
func (c *Catalog) All() ([]*Addon, error) {
	names, err := c.Names()
	if err != nil {
		return nil, err
	}
	addons := make([]*Addon, 0, len(names))
	for _, name := range names {
		a, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	return addons, nil
}
