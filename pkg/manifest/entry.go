// SPDX-License-Identifier: MPL-2.0

package manifest

const (
	FileName           = "manifest.json"
	CategoriesFileName = "categories.json"
)

// Entry describes one archive. JSON field order is part of the format.
type Entry struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Description  string `json:"description"`
	ZipPath      string `json:"zipPath"`
	Category     string `json:"category"`
	CategoryID   int    `json:"categoryId"`
	GodotVersion string `json:"godotVersion"`
	Icon         string `json:"icon"`
}

// Document is the manifest.json payload.
type Document []Entry
