// SPDX-License-Identifier: MPL-2.0

// Package manifest builds and writes the two index documents of a build:
// manifest.json, one entry per archive in discovery order, and
// categories.json, the category ids per class.
package manifest
