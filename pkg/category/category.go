// SPDX-License-Identifier: MPL-2.0

// Package category assigns the numeric category ids published in
// categories.json. Ids come from one counter shared by both classes, so an id
// never means two different categories, even across classes.
package category

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
)

type Class string

const (
	Project Class = "project"
	Addon   Class = "addon"
)

const (
	// MiscName is the category pre-registered in the addon class.
	MiscName = "Misc"
	// MiscID is the id of MiscName in the addon class.
	MiscID = 1
	// FirstAssignedID is the first id handed out to a new category.
	FirstAssignedID = 2
)

// ClassFor maps a descriptor's isProject flag to its class.
func ClassFor(isProject bool) Class {
	if isProject {
		return Project
	}
	return Addon
}

type (
	// Registry hands out category ids for the duration of one build. The zero
	// value is not usable; call NewRegistry.
	Registry struct {
		mu      sync.Mutex
		next    int
		classes map[Class]*Mapping
	}

	// Mapping is an insertion-ordered name -> id table for one class.
	Mapping struct {
		names []string
		ids   map[string]int
	}

	// Categories is the categories.json document.
	Categories struct {
		Project *Mapping `json:"project"`
		Addon   *Mapping `json:"addon"`
	}
)

// NewRegistry returns a registry with Misc pre-registered as 1 in the addon
// class and the counter at 2.
func NewRegistry() *Registry {
	r := &Registry{
		next: FirstAssignedID,
		classes: map[Class]*Mapping{
			Project: newMapping(),
			Addon:   newMapping(),
		},
	}
	r.classes[Addon].set(MiscName, MiscID)
	return r
}

// GetOrAssign returns the id of name within class, assigning the next free id
// on first sight. Names are case sensitive. An unknown class is treated as Addon.
func (r *Registry) GetOrAssign(class Class, name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.classes[class]
	if !ok {
		m = r.classes[Addon]
	}
	if id, ok := m.ids[name]; ok {
		return id
	}
	id := r.next
	r.next++
	m.set(name, id)
	return id
}

// Snapshot copies the current state of both classes.
func (r *Registry) Snapshot() Categories {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Categories{
		Project: r.classes[Project].clone(),
		Addon:   r.classes[Addon].clone(),
	}
}

func newMapping() *Mapping {
	return &Mapping{ids: make(map[string]int)}
}

func (m *Mapping) set(name string, id int) {
	m.names = append(m.names, name)
	m.ids[name] = id
}

func (m *Mapping) clone() *Mapping {
	c := newMapping()
	for _, n := range m.names {
		c.set(n, m.ids[n])
	}
	return c
}

// Len returns the number of categories in the mapping.
func (m *Mapping) Len() int {
	return len(m.names)
}

// Names returns the category names in first-encounter order.
func (m *Mapping) Names() []string {
	return append([]string(nil), m.names...)
}

// ID returns the id of name.
func (m *Mapping) ID(name string) (int, bool) {
	id, ok := m.ids[name]
	return id, ok
}

// MarshalJSON writes the mapping as an object whose keys keep first-encounter
// order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(m.ids[n]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a mapping back, keeping the document's key order.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("category mapping: expected object, got %v", tok)
	}

	*m = *newMapping()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var id int
		if err := dec.Decode(&id); err != nil {
			return err
		}
		m.set(key, id)
	}
	_, err = dec.Token()
	return err
}
