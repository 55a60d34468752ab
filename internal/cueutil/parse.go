// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Unify compiles data, unifies it with the schema definition found at
// definition (e.g. "#Config") and validates the result. The unified value is
// returned for callers that decode into something other than a struct.
func Unify(schema []byte, definition string, data []byte, opts ...Option) (cue.Value, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	root := schemaValue.LookupPath(cue.ParsePath(definition))
	if !root.Exists() || root.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found", definition)
	}

	// JSON documents are valid CUE, so descriptors need no separate decoder.
	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return cue.Value{}, FormatError(userValue.Err(), filename)
	}

	unified := root.Unify(userValue)
	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return cue.Value{}, FormatError(err, filename)
	}

	return unified, nil
}

// Decode runs Unify and decodes the unified value into a new T.
func Decode[T any](schema []byte, definition string, data []byte, opts ...Option) (*T, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	unified, err := Unify(schema, definition, data, opts...)
	if err != nil {
		return nil, err
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		name := options.filename
		if name == "" {
			name = "<input>"
		}
		return nil, FormatError(err, name)
	}
	return &result, nil
}
