// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load addon descriptor"},
			expected: "failed to load addon descriptor",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load addon descriptor", Resource: "addons/Foo/addon.json"},
			expected: "failed to load addon descriptor: addons/Foo/addon.json",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "write archive",
				Resource:  "build/Foo.zip",
				Cause:     errors.New("no space left on device"),
			},
			expected: "failed to write archive: build/Foo.zip: no space left on device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := NewErrorContext().
		WithOperation("resolve dependencies").
		Wrap(fmt.Errorf("addon B: %w", sentinel)).
		BuildError()

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should see through ActionableError")
	}

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As should find *ActionableError")
	}
	if ae.Operation != "resolve dependencies" {
		t.Errorf("Operation = %q", ae.Operation)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("resolve dependencies").
		WithResource("A").
		WithSuggestions("did you mean 'Bee'?", "", "run 'addonpack deps'").
		Wrap(fmt.Errorf("outer: %w", errors.New("inner"))).
		Build()

	brief := err.Format(false)
	if !strings.Contains(brief, "  • did you mean 'Bee'?") {
		t.Errorf("Format(false) missing suggestion:\n%s", brief)
	}
	if strings.Contains(brief, "Error chain") {
		t.Errorf("Format(false) should not include the chain:\n%s", brief)
	}
	if len(err.Suggestions) != 2 {
		t.Errorf("empty suggestions should be dropped, got %v", err.Suggestions)
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. outer: inner", "2. inner"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want nil", err)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "x") != nil {
		t.Error("nil error should stay nil")
	}
	ae := WrapWithOperation(errors.New("boom"), "scaffold addon")
	if ae.Error() != "failed to scaffold addon: boom" {
		t.Errorf("Error() = %q", ae.Error())
	}
	if ae.HasSuggestions() {
		t.Error("HasSuggestions() should be false")
	}
}
