// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks problems the user fixes by editing descriptors or
	// the addons tree: missing fields, bad dependencies, cycles.
	ErrConfiguration = errors.New("configuration error")

	// ErrIO marks filesystem failures while reading sources or writing outputs.
	ErrIO = errors.New("i/o error")

	// ErrDescriptorNotFound is returned when a directory has no addon.json.
	ErrDescriptorNotFound = errors.New("addon descriptor not found")
)

type (
	// MissingFieldError reports the first required descriptor field that is
	// absent or empty.
	MissingFieldError struct {
		Addon string
		Field string
	}

	// DescriptorError reports a descriptor that is not valid JSON or has a
	// field of the wrong type.
	DescriptorError struct {
		Path string
		Err  error
	}
)

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("addon %q: missing required field %q", e.Addon, e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrConfiguration
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("invalid descriptor: %v", e.Err)
}

// Unwrap exposes both the configuration sentinel and the parse error.
func (e *DescriptorError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}
