// SPDX-License-Identifier: MPL-2.0

// Package archive assembles addon archives from resolver inclusion rules.
//
// The Assembler expands rules into a list of (source, destination) pairs and
// feeds them to a Writer. ZipWriter is the Writer used for builds; it
// compresses every entry with flate at maximum ratio.
package archive
