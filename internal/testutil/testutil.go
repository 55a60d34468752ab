// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
)

// Fields is a descriptor document. Keys are written as given, so tests can
// produce descriptors with missing or mistyped fields.
type Fields map[string]any

// MustChdir changes the working directory and returns a func restoring it.
func MustChdir(t testing.TB, dir string) func() {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	return func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", originalWd, err)
		}
	}
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustReadFile returns the content of path.
func MustReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// Descriptor returns a descriptor with every required field set. Overrides
// replace or add keys; a nil override value deletes the key.
func Descriptor(name string, overrides Fields) Fields {
	f := Fields{
		"name":         name,
		"version":      "1.0.0",
		"description":  name + " addon",
		"godotVersion": "4.1",
	}
	for k, v := range overrides {
		if v == nil {
			delete(f, k)
			continue
		}
		f[k] = v
	}
	return f
}

// WriteAddon creates <root>/<dir>/addon.json from desc plus the given files
// (relative path -> content) and returns the addon directory.
func WriteAddon(t testing.TB, root, dir string, desc Fields, files map[string]string) string {
	t.Helper()
	addonDir := filepath.Join(root, dir)
	data, err := json.MarshalIndent(desc, "", "    ")
	if err != nil {
		t.Fatalf("failed to encode descriptor for %s: %v", dir, err)
	}
	MustWriteFile(t, filepath.Join(addonDir, "addon.json"), string(data))
	for rel, content := range files {
		MustWriteFile(t, filepath.Join(addonDir, filepath.FromSlash(rel)), content)
	}
	return addonDir
}

// ZipNames returns the entry names of the archive at path in stored order.
func ZipNames(t testing.TB, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open zip %s: %v", path, err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

// ZipContent returns the content of one entry; the test fails if it is absent.
func ZipContent(t testing.TB, path, name string) string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open zip %s: %v", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s in %s: %v", name, path, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("failed to read %s in %s: %v", name, path, err)
		}
		return string(data)
	}
	t.Fatalf("entry %s not found in %s", name, path)
	return ""
}
