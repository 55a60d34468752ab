// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"fmt"

	"github.com/addonpack/addonpack/pkg/addon"
)

// DependencyNotFoundError reports a dependency entry naming no addon directory.
type DependencyNotFoundError struct {
	// Addon declares the dependency.
	Addon string
	// Dependency is the entry as written in the descriptor.
	Dependency string
	// Suggestions are known addon names close to the missing one.
	Suggestions []string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("addon %q: dependency %q not found", e.Addon, e.Dependency)
}

func (e *DependencyNotFoundError) Unwrap() error {
	return addon.ErrConfiguration
}
