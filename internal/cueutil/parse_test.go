// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Widget: {
	name:     string
	count:    int
	enabled?: bool
	tags?: [...string]
	...
}
`

type widget struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Enabled bool     `json:"enabled"`
	Tags    []string `json:"tags"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("json document decodes", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{"name": "knob", "count": 3, "tags": ["a", "b"], "extra": true}`)
		w, err := Decode[widget]([]byte(testSchema), "#Widget", data)
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if w.Name != "knob" || w.Count != 3 {
			t.Errorf("unexpected widget: %+v", w)
		}
		if len(w.Tags) != 2 || w.Tags[1] != "b" {
			t.Errorf("Tags = %v, want [a b]", w.Tags)
		}
	})

	t.Run("cue document decodes", func(t *testing.T) {
		t.Parallel()

		data := []byte("name: \"dial\"\ncount: 1\n")
		w, err := Decode[widget]([]byte(testSchema), "#Widget", data)
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if w.Enabled {
			t.Error("Enabled should default to false")
		}
	})

	t.Run("wrong type reports path and file", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{"name": "knob", "count": "three"}`)
		_, err := Decode[widget]([]byte(testSchema), "#Widget", data, WithFilename("widget.json"))
		if err == nil {
			t.Fatal("expected error for string count")
		}
		if !strings.Contains(err.Error(), "widget.json") {
			t.Errorf("error should name the file, got: %v", err)
		}
		if !strings.Contains(err.Error(), "count") {
			t.Errorf("error should name the field, got: %v", err)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		_, err := Decode[widget]([]byte(testSchema), "#Widget", []byte(`{"name": `))
		if err == nil {
			t.Fatal("expected syntax error")
		}
	})

	t.Run("unknown definition", func(t *testing.T) {
		t.Parallel()

		_, err := Decode[widget]([]byte(testSchema), "#Missing", []byte(`{}`))
		if err == nil || !strings.Contains(err.Error(), "#Missing") {
			t.Fatalf("expected missing definition error, got %v", err)
		}
	})

	t.Run("file size limit", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{"name": "knob", "count": 3}`)
		_, err := Decode[widget]([]byte(testSchema), "#Widget", data, WithMaxFileSize(4))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Fatalf("expected size error, got %v", err)
		}
	})
}

func TestUnifyNonConcrete(t *testing.T) {
	t.Parallel()

	schema := []byte(`#Opts: { jobs?: int & >=1, dir?: string }`)
	v, err := Unify(schema, "#Opts", []byte(`jobs: 4`), WithConcrete(false))
	if err != nil {
		t.Fatalf("Unify() error: %v", err)
	}
	var m map[string]any
	if err := v.Decode(&m); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if _, ok := m["dir"]; ok {
		t.Errorf("optional dir should not be present: %v", m)
	}

	if _, err := Unify(schema, "#Opts", []byte(`jobs: 0`), WithConcrete(false)); err == nil {
		t.Error("expected constraint violation for jobs: 0")
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x") != nil {
		t.Error("FormatError(nil) should be nil")
	}

	err := FormatError(errors.New("boom"), "addon.json")
	if err.Error() != "addon.json: boom" {
		t.Errorf("FormatError() = %q", err)
	}
}

func TestJSONPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"name"}, "name"},
		{[]string{"dependencies", "2"}, "dependencies[2]"},
		{[]string{"build", "jobs"}, "build.jobs"},
		{[]string{"a", "0", "b", "1"}, "a[0].b[1]"},
	}
	for _, tt := range tests {
		if got := jsonPath(tt.in); got != tt.want {
			t.Errorf("jsonPath(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
