// Package domain contains the core models for install graphs and lockfiles.
package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Graph is the full set of install nodes and their dependency edges.
// It is built once per resolution; updates clone it and produce a new
// snapshot rather than mutating a shared value.
type Graph struct {
	nodes    map[string]*InstallNode
	members  []string
	warnings []ConflictWarning
}

// ConflictWarning records a hoist conflict that forced a nested duplicate.
// Nesting is expected, correct behavior, so this is visibility, not an error.
type ConflictWarning struct {
	Consumer string
	Name     string
	Wanted   string
	Existing string
	PlacedAt string
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*InstallNode),
	}
}

// AddNode adds an install node at its path.
func (g *Graph) AddNode(n *InstallNode) error {
	if _, exists := g.nodes[n.Path]; exists {
		return zerr.With(ErrDuplicateNode, "path", n.Path)
	}
	g.nodes[n.Path] = n
	return nil
}

// Node returns the install node at path, if present.
func (g *Graph) Node(path string) (*InstallNode, bool) {
	n, ok := g.nodes[path]
	return n, ok
}

// RemoveNode deletes the node at path. Removing an absent path is a no-op.
func (g *Graph) RemoveNode(path string) {
	delete(g.nodes, path)
}

// Len returns the number of install nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Paths returns every install path in sorted order. All deterministic
// iteration goes through this.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// AddMember registers a workspace member path.
func (g *Graph) AddMember(path string) {
	g.members = append(g.members, path)
	slices.Sort(g.members)
}

// Members returns the sorted workspace member paths.
func (g *Graph) Members() []string {
	return slices.Clone(g.members)
}

// MemberByName returns the member node whose package name matches.
func (g *Graph) MemberByName(name string) (*InstallNode, bool) {
	for _, p := range g.members {
		if n, ok := g.nodes[p]; ok && n.Name.String() == name {
			return n, true
		}
	}
	return nil, false
}

// Lookup finds the node a consumer would see for a name: the nearest scope
// wins and the search stops at the first occupied scope whether or not the
// occupant satisfies any particular constraint. Link nodes resolve to their
// targets.
func (g *Graph) Lookup(consumerPath, name string) *InstallNode {
	for _, scope := range EnclosingScopes(consumerPath) {
		n, ok := g.nodes[InstallPathIn(scope, name)]
		if !ok {
			continue
		}
		if n.Link {
			target, ok := g.nodes[n.LinkTarget]
			if !ok {
				return nil
			}
			return target
		}
		return n
	}
	return nil
}

// Dependents returns every edge in the graph bound to the node at path.
// This is the required-by back-reference that makes unique-satisfier
// retention checks explicit instead of incidental.
func (g *Graph) Dependents(path string) []DependencyEdge {
	var deps []DependencyEdge
	for _, p := range g.Paths() {
		for _, e := range g.nodes[p].Edges {
			if e.To == path {
				deps = append(deps, e)
			}
		}
	}
	return deps
}

// AddWarning records a hoist conflict.
func (g *Graph) AddWarning(w ConflictWarning) {
	g.warnings = append(g.warnings, w)
}

// Warnings returns the recorded hoist conflicts.
func (g *Graph) Warnings() []ConflictWarning {
	return slices.Clone(g.warnings)
}

// Clone returns a deep copy of the graph. Versions and constraints are
// immutable values and are shared.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:    make(map[string]*InstallNode, len(g.nodes)),
		members:  slices.Clone(g.members),
		warnings: slices.Clone(g.warnings),
	}
	for p, n := range g.nodes {
		cn := *n
		cn.Edges = slices.Clone(n.Edges)
		c.nodes[p] = &cn
	}
	return c
}
