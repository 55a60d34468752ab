// SPDX-License-Identifier: MPL-2.0

// Package dag is a small directed graph used to order addons so that every
// dependency comes before the addons that fold it in, and to name the addons
// involved when that order does not exist.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError reports a dependency cycle. Cycle lists the path, with the
	// first node repeated at the end: [A B A].
	CycleError struct {
		Cycle []string
	}

	// Graph is a directed graph keyed by addon name. An edge from -> to means
	// "from" is packaged before "to".
	Graph struct {
		adjacency map[string][]string
		// insertion order, for deterministic output
		nodes   []string
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode is a no-op for known nodes.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds from -> to, creating both nodes as needed. Repeated edges are
// stored once.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if slices.Contains(g.adjacency[from], to) {
		return
	}
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Successors returns the targets of the node's outgoing edges in insertion order.
func (g *Graph) Successors(name string) []string {
	return slices.Clone(g.adjacency[name])
}

// Predecessors returns the nodes with an edge into name, in node insertion order.
func (g *Graph) Predecessors(name string) []string {
	var preds []string
	for _, n := range g.nodes {
		if slices.Contains(g.adjacency[n], name) {
			preds = append(preds, n)
		}
	}
	return preds
}

// TopologicalSort orders the graph with Kahn's algorithm. Nodes that become
// ready at the same time keep their insertion order. A cyclic graph yields a
// *CycleError naming one concrete cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, neighbors := range g.adjacency {
		for _, n := range neighbors {
			inDegree[n]++
		}
	}

	queue := make([]string, 0, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, n := range g.adjacency[node] {
			inDegree[n]--
			if inDegree[n] == 0 {
				queue = append(queue, n)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, &CycleError{Cycle: g.FindCycle()}
	}
	return result, nil
}

// FindCycle returns one cycle as a closed path, or nil when the graph is acyclic.
func (g *Graph) FindCycle() []string {
	visited := make(map[string]bool, len(g.nodes))
	onPath := make(map[string]bool)
	var path []string

	var visit func(string) []string
	visit = func(node string) []string {
		visited[node] = true
		onPath[node] = true
		path = append(path, node)

		for _, next := range g.adjacency[node] {
			if onPath[next] {
				start := slices.Index(path, next)
				return append(slices.Clone(path[start:]), next)
			}
			if !visited[next] {
				if c := visit(next); c != nil {
					return c
				}
			}
		}

		onPath[node] = false
		path = path[:len(path)-1]
		return nil
	}

	for _, node := range g.nodes {
		if !visited[node] {
			if c := visit(node); c != nil {
				return c
			}
		}
	}
	return nil
}
