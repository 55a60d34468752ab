// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"slices"
	"sync"

	"github.com/addonpack/addonpack/pkg/category"
)

// Builder collects entries keyed by discovery index, so entries added out of
// order by concurrent archive jobs still come out in discovery order.
type Builder struct {
	mu      sync.Mutex
	entries map[int]Entry
}

func NewBuilder() *Builder {
	return &Builder{entries: make(map[int]Entry)}
}

// Add records the entry of the addon discovered at index, replacing any
// earlier entry for that index.
func (b *Builder) Add(index int, e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[index] = e
}

// Build returns the entries ordered by index and a snapshot of reg.
func (b *Builder) Build(reg *category.Registry) (Document, category.Categories) {
	b.mu.Lock()
	defer b.mu.Unlock()

	indexes := make([]int, 0, len(b.entries))
	for i := range b.entries {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	doc := make(Document, 0, len(indexes))
	for _, i := range indexes {
		doc = append(doc, b.entries[i])
	}
	return doc, reg.Snapshot()
}
