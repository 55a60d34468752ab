// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the schema-checked decoding flow shared by addon
// descriptors and the configuration file.
//
// Both inputs go through the same three steps:
//
//  1. Compile the embedded schema and look up its root definition
//  2. Compile the user document (CUE or plain JSON) and unify it with the definition
//  3. Validate and decode into a Go value
//
// # Usage
//
//	//go:embed descriptor_schema.cue
//	var schema []byte
//
//	d, err := cueutil.Decode[Descriptor](schema, "#Descriptor", data,
//	    cueutil.WithFilename("addons/Foo/addon.json"))
//
// Errors carry the file name and a JSON-path style location of the bad value.
package cueutil
