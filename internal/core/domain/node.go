package domain

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

const nodeModules = "node_modules"

// InstallNode is a physical install location in the resolved tree.
// The path is the lockfile key: "" for the root project, "packages/<m>" for a
// workspace member, "node_modules/<n>" for a hoisted install and
// ".../node_modules/<n>" for a nested one. Link nodes expose workspace
// members under the root scope the way npm symlinks them.
type InstallNode struct {
	Path       string
	Name       InternedString
	Version    *semver.Version
	Resolved   string
	Integrity  string
	Link       bool
	LinkTarget string

	// Flags computed over the finished graph: a node is dev when it is only
	// reachable through dev edges, and likewise for optional and peer.
	Dev      bool
	Optional bool
	Peer     bool

	// Edges are the requirements this node declares, in manifest order for
	// the root and members and sorted by name for registry packages.
	Edges []DependencyEdge
}

// DependencyEdge is one requirement of one install node. To holds the path of
// the bound satisfier and is empty while unresolved; for an optional edge an
// empty To is a legal final state.
type DependencyEdge struct {
	From       string
	Name       InternedString
	Constraint Constraint
	Kind       DepKind
	Optional   bool
	To         string
}

// Required reports whether the edge must resolve for the graph to be valid.
func (e DependencyEdge) Required() bool {
	return !e.Optional
}

// ScopeOf returns the nested node_modules scope owned by the node at path.
func ScopeOf(path string) string {
	if path == "" {
		return nodeModules
	}
	return path + "/" + nodeModules
}

// InstallPathIn returns the install path for a package name inside a scope.
func InstallPathIn(scope, name string) string {
	return scope + "/" + name
}

// EnclosingScopes returns every scope visible from a consumer, nearest first:
// the consumer's own nested scope, then each enclosing scope up to the root.
// Module resolution and hoisting both walk this list.
func EnclosingScopes(consumerPath string) []string {
	scopes := []string{ScopeOf(consumerPath)}
	p := consumerPath
	for p != "" {
		idx := strings.LastIndex(p, "/"+nodeModules+"/")
		if idx < 0 {
			scopes = append(scopes, nodeModules)
			break
		}
		p = p[:idx]
		scopes = append(scopes, p+"/"+nodeModules)
	}
	return scopes
}

// RootScope is the shared top-level scope.
func RootScope() string {
	return nodeModules
}
