// SPDX-License-Identifier: MPL-2.0

// Package build runs a full packaging pass over an addons root: one zip per
// addon, its icon, and the manifest.json/categories.json pair describing them.
package build
