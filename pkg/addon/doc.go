// SPDX-License-Identifier: MPL-2.0

// Package addon models a single addon directory and its addon.json descriptor.
//
// Descriptors are parsed with CUE against an embedded schema (descriptor_schema.cue),
// then checked for the four required fields. A Catalog indexes the addons of one
// addons root by directory name and caches loaded descriptors so dependency
// resolution can look addons up repeatedly without touching the disk again.
package addon
