// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"github.com/addonpack/addonpack/internal/dag"
	"github.com/addonpack/addonpack/pkg/addon"
)

// Graph builds the dependency graph of every addon in the catalog. An edge
// runs from a dependency to the addon that declares it, so a topological
// sort lists dependencies first. Sub-paths are ignored; only addon names
// become nodes.
func Graph(catalog *addon.Catalog) (*dag.Graph, error) {
	addons, err := catalog.All()
	if err != nil {
		return nil, err
	}

	r := New(catalog)
	g := dag.New()
	for _, a := range addons {
		g.AddNode(a.Name)
		for _, entry := range a.Descriptor.Dependencies {
			depName, _ := SplitDependency(entry)
			dep, err := r.lookup(a.Name, entry, depName)
			if err != nil {
				return nil, err
			}
			g.AddEdge(dep.Name, a.Name)
		}
	}
	return g, nil
}
