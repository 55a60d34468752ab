// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/manifest.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

type (
	// SchemaIssue is one schema violation.
	SchemaIssue struct {
		// Path is the JSON pointer of the offending value, e.g. "/0/icon".
		Path    string
		Message string
	}

	// SchemaError lists every violation found in a manifest payload.
	SchemaError struct {
		Issues []SchemaIssue
	}
)

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Path+": "+is.Message)
	}
	return "manifest does not match schema: " + strings.Join(parts, "; ")
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("manifest.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("manifest.schema.json")
	})
	return compiledSchema, compileErr
}

// ValidateJSON checks an encoded manifest against the embedded schema.
// Violations are reported as *SchemaError.
func ValidateJSON(data []byte) error {
	schema, err := getSchema()
	if err != nil {
		return fmt.Errorf("loading manifest schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	var issues []SchemaIssue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		issues = []SchemaIssue{{Message: ve.Error()}}
	}
	return &SchemaError{Issues: issues}
}

// collectIssues gathers the leaves of the validation error tree.
func collectIssues(ve *jsonschema.ValidationError, issues *[]SchemaIssue) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			collectIssues(c, issues)
		}
		return
	}
	msg := ""
	if ve.ErrorKind != nil {
		msg = ve.ErrorKind.LocalizedString(printer)
	}
	*issues = append(*issues, SchemaIssue{
		Path:    "/" + strings.Join(ve.InstanceLocation, "/"),
		Message: msg,
	})
}
