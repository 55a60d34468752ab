// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/addonpack/addonpack/internal/testutil"
)

func TestLoadDescriptor_RequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		drop    string
		wantErr string
	}{
		{"complete", "", ""},
		{"missing name", "name", "name"},
		{"missing version", "version", "version"},
		{"missing description", "description", "description"},
		{"missing godot version", "godotVersion", "godotVersion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			overrides := testutil.Fields{}
			if tt.drop != "" {
				overrides[tt.drop] = nil
			}
			dir := testutil.WriteAddon(t, root, "Foo", testutil.Descriptor("Foo", overrides), nil)

			d, err := LoadDescriptor(dir)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("LoadDescriptor() error: %v", err)
				}
				if d.Name != "Foo" || d.GodotVersion != "4.1" {
					t.Errorf("unexpected descriptor: %+v", d)
				}
				return
			}

			var mf *MissingFieldError
			if !errors.As(err, &mf) {
				t.Fatalf("expected *MissingFieldError, got %v", err)
			}
			if mf.Field != tt.wantErr || mf.Addon != "Foo" {
				t.Errorf("MissingFieldError = %+v, want field %q addon Foo", mf, tt.wantErr)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Error("missing field should be a configuration error")
			}
		})
	}
}

func TestLoadDescriptor_EmptyStringIsMissing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := testutil.WriteAddon(t, root, "Foo", testutil.Descriptor("Foo", testutil.Fields{"description": ""}), nil)

	_, err := LoadDescriptor(dir)
	var mf *MissingFieldError
	if !errors.As(err, &mf) || mf.Field != "description" {
		t.Fatalf("expected missing description, got %v", err)
	}
}

func TestLoadDescriptor_FieldOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := testutil.WriteAddon(t, root, "Foo", testutil.Fields{"godotVersion": "4.1"}, nil)

	_, err := LoadDescriptor(dir)
	var mf *MissingFieldError
	if !errors.As(err, &mf) || mf.Field != "name" {
		t.Fatalf("expected name to be reported first, got %v", err)
	}
}

func TestLoadDescriptor_OptionalFields(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := testutil.WriteAddon(t, root, "Foo", testutil.Descriptor("Foo", testutil.Fields{
		"isProject":    true,
		"category":     "Tools",
		"icon":         "icon.png",
		"ignore":       []string{"*.tmp", "debug/**"},
		"dependencies": []string{"Bar", "Baz/scripts"},
		"homepage":     "https://example.com",
	}), nil)

	d, err := LoadDescriptor(dir)
	if err != nil {
		t.Fatalf("LoadDescriptor() error: %v", err)
	}
	if !d.IsProject || d.CategoryOrDefault() != "Tools" || d.Icon != "icon.png" {
		t.Errorf("unexpected descriptor: %+v", d)
	}
	if !slices.Equal(d.Ignore, []string{"*.tmp", "debug/**"}) {
		t.Errorf("Ignore = %v", d.Ignore)
	}
	if !slices.Equal(d.Dependencies, []string{"Bar", "Baz/scripts"}) {
		t.Errorf("Dependencies = %v", d.Dependencies)
	}
}

func TestLoadDescriptor_Defaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := testutil.WriteAddon(t, root, "Foo", testutil.Descriptor("Foo", nil), nil)

	d, err := LoadDescriptor(dir)
	if err != nil {
		t.Fatalf("LoadDescriptor() error: %v", err)
	}
	if d.IsProject {
		t.Error("IsProject should default to false")
	}
	if d.CategoryOrDefault() != DefaultCategory {
		t.Errorf("CategoryOrDefault() = %q, want %q", d.CategoryOrDefault(), DefaultCategory)
	}
	if len(d.Ignore) != 0 || len(d.Dependencies) != 0 {
		t.Errorf("lists should default to empty: %+v", d)
	}
}

func TestLoadDescriptor_WrongType(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := testutil.WriteAddon(t, root, "Foo", testutil.Descriptor("Foo", testutil.Fields{"dependencies": "Bar"}), nil)

	_, err := LoadDescriptor(dir)
	var de *DescriptorError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DescriptorError, got %v", err)
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Error("invalid descriptor should be a configuration error")
	}
	if !strings.Contains(err.Error(), "dependencies") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestLoadDescriptor_InvalidJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, DescriptorFileName), `{"name": "Foo",`)

	_, err := LoadDescriptor(dir)
	var de *DescriptorError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DescriptorError, got %v", err)
	}
}

func TestLoadDescriptor_NotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadDescriptor(t.TempDir())
	if !errors.Is(err, ErrDescriptorNotFound) || !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected descriptor-not-found configuration error, got %v", err)
	}
}

func TestDescriptorWarnings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		warn    bool
	}{
		{"1.0.0", false},
		{"2.3", false},
		{"1.0.0-beta.1", false},
		{"beta", true},
		{"v1.0.0", true},
	}
	for _, tt := range tests {
		d := &Descriptor{Version: tt.version}
		if got := len(d.Warnings()) > 0; got != tt.warn {
			t.Errorf("Warnings() for %q: got warning=%v, want %v", tt.version, got, tt.warn)
		}
	}
}
