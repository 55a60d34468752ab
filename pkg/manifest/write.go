// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/addonpack/addonpack/pkg/addon"
	"github.com/addonpack/addonpack/pkg/category"

	"github.com/goccy/go-json"
)

const indent = "  "

// Write validates doc and writes manifest.json and categories.json into dir.
// Both files are staged as temporary files first. categories.json is renamed
// into place before manifest.json, so a failure never leaves a new manifest
// next to stale categories. Nothing is written when validation or encoding
// fails.
func Write(dir string, doc Document, cats category.Categories) (err error) {
	if doc == nil {
		doc = Document{}
	}
	manifestData, err := json.MarshalIndent(doc, "", indent)
	if err != nil {
		return fmt.Errorf("encode %s: %w", FileName, err)
	}
	if err := ValidateJSON(manifestData); err != nil {
		return err
	}
	categoriesData, err := json.MarshalIndent(cats, "", indent)
	if err != nil {
		return fmt.Errorf("encode %s: %w", CategoriesFileName, err)
	}

	var staged []string
	defer func() {
		if err != nil {
			for _, tmp := range staged {
				_ = os.Remove(tmp)
			}
		}
	}()
	files := []struct {
		path string
		data []byte
	}{
		{filepath.Join(dir, CategoriesFileName), categoriesData},
		{filepath.Join(dir, FileName), manifestData},
	}
	for _, f := range files {
		tmp, err := stageFile(f.path, f.data)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}
	for i, f := range files {
		if err := os.Rename(staged[i], f.path); err != nil {
			return fmt.Errorf("%w: rename %s: %w", addon.ErrIO, f.path, err)
		}
	}
	return nil
}

// Read loads a manifest.json.
func Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", addon.ErrIO, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// ReadCategories loads a categories.json.
func ReadCategories(path string) (category.Categories, error) {
	var cats category.Categories
	data, err := os.ReadFile(path)
	if err != nil {
		return cats, fmt.Errorf("%w: %w", addon.ErrIO, err)
	}
	if err := json.Unmarshal(data, &cats); err != nil {
		return cats, fmt.Errorf("decode %s: %w", path, err)
	}
	return cats, nil
}

// stageFile writes data to a temporary file next to path and returns its
// name. The caller renames or removes it.
func stageFile(path string, data []byte) (name string, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file for %s: %w", addon.ErrIO, path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: write %s: %w", addon.ErrIO, path, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", addon.ErrIO, path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("%w: chmod %s: %w", addon.ErrIO, path, err)
	}
	return tmp.Name(), nil
}
