package domain

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

// LockEntry is the serialized form of one install node: the flat
// install-path → entry mapping npm writes as lockfileVersion 3.
type LockEntry struct {
	Name      string
	Version   string
	Resolved  string
	Integrity string
	Link      bool

	Dev      bool
	Optional bool
	Peer     bool

	Dependencies         map[string]string
	DevDependencies      map[string]string
	OptionalDependencies map[string]string
	PeerDependencies     map[string]string
	// PeerMeta marks which peer dependencies are optional, mirroring
	// peerDependenciesMeta in the manifest.
	PeerMeta map[string]bool
}

// Lockfile is a serialized snapshot of a Graph.
type Lockfile struct {
	Name    string
	Version string
	Entries map[string]LockEntry
}

// Paths returns the entry paths in sorted order.
func (l *Lockfile) Paths() []string {
	paths := make([]string, 0, len(l.Entries))
	for p := range l.Entries {
		paths = append(paths, p)
	}
	sortStrings(paths)
	return paths
}

// Lock produces the lockfile snapshot of the graph.
func (g *Graph) Lock() *Lockfile {
	lf := &Lockfile{Entries: make(map[string]LockEntry, len(g.nodes))}

	for _, path := range g.Paths() {
		n := g.nodes[path]

		if n.Link {
			lf.Entries[path] = LockEntry{Resolved: n.LinkTarget, Link: true}
			continue
		}

		e := LockEntry{
			Name:      n.Name.String(),
			Resolved:  n.Resolved,
			Integrity: n.Integrity,
			Dev:       n.Dev,
			Optional:  n.Optional,
			Peer:      n.Peer,
		}
		if n.Version != nil {
			e.Version = n.Version.Original()
		}

		for _, edge := range n.Edges {
			name := edge.Name.String()
			raw := edge.Constraint.String()
			switch {
			case edge.Kind == KindDev:
				e.DevDependencies = putDep(e.DevDependencies, name, raw)
			case edge.Kind == KindPeer:
				e.PeerDependencies = putDep(e.PeerDependencies, name, raw)
				if edge.Optional {
					if e.PeerMeta == nil {
						e.PeerMeta = make(map[string]bool)
					}
					e.PeerMeta[name] = true
				}
			case edge.Optional:
				e.OptionalDependencies = putDep(e.OptionalDependencies, name, raw)
			default:
				e.Dependencies = putDep(e.Dependencies, name, raw)
			}
		}

		if path == "" {
			lf.Name = e.Name
			lf.Version = e.Version
		}
		lf.Entries[path] = e
	}

	return lf
}

// Graph reconstructs the install graph from a lockfile snapshot. Edge
// bindings are recomputed by scope lookup; edges whose visible node violates
// their constraint stay unbound for the validator to report.
func (l *Lockfile) Graph() (*Graph, error) {
	g := NewGraph()

	for _, path := range l.Paths() {
		entry := l.Entries[path]

		if entry.Link {
			node := &InstallNode{
				Path:       path,
				Name:       NewInternedString(lastSegment(path)),
				Link:       true,
				LinkTarget: entry.Resolved,
			}
			if err := g.AddNode(node); err != nil {
				return nil, err
			}
			continue
		}

		node := &InstallNode{
			Path:      path,
			Name:      NewInternedString(entryName(path, entry)),
			Resolved:  entry.Resolved,
			Integrity: entry.Integrity,
			Dev:       entry.Dev,
			Optional:  entry.Optional,
			Peer:      entry.Peer,
		}
		if entry.Version != "" {
			v, err := semver.NewVersion(entry.Version)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "invalid version in lockfile entry"), "path", path)
			}
			node.Version = v
		}

		edges, err := entryEdges(path, entry)
		if err != nil {
			return nil, err
		}
		node.Edges = edges

		if err := g.AddNode(node); err != nil {
			return nil, err
		}
		if isMemberPath(path) {
			g.AddMember(path)
		}
	}

	// Second pass now that every node is present.
	for _, path := range g.Paths() {
		n := g.nodes[path]
		for i := range n.Edges {
			vis := g.Lookup(path, n.Edges[i].Name.String())
			if vis != nil && n.Edges[i].Constraint.Check(vis.Version) {
				n.Edges[i].To = vis.Path
			}
		}
	}

	return g, nil
}

func entryEdges(path string, entry LockEntry) ([]DependencyEdge, error) {
	var edges []DependencyEdge

	add := func(deps map[string]string, kind DepKind, optional func(string) bool) error {
		for _, name := range sortedKeys(deps) {
			c, err := NewConstraint(deps[name])
			if err != nil {
				return zerr.With(zerr.With(err, "path", path), "dependency", name)
			}
			edges = append(edges, DependencyEdge{
				From:       path,
				Name:       NewInternedString(name),
				Constraint: c,
				Kind:       kind,
				Optional:   optional(name),
			})
		}
		return nil
	}

	no := func(string) bool { return false }
	yes := func(string) bool { return true }

	if err := add(entry.Dependencies, KindRuntime, no); err != nil {
		return nil, err
	}
	if err := add(entry.DevDependencies, KindDev, no); err != nil {
		return nil, err
	}
	if err := add(entry.OptionalDependencies, KindRuntime, yes); err != nil {
		return nil, err
	}
	if err := add(entry.PeerDependencies, KindPeer, func(name string) bool {
		return entry.PeerMeta[name]
	}); err != nil {
		return nil, err
	}

	return edges, nil
}

// isMemberPath reports whether a lockfile path names a workspace member
// rather than the root project or an installed package.
func isMemberPath(path string) bool {
	return path != "" && !strings.Contains(path, nodeModules)
}

func entryName(path string, entry LockEntry) string {
	if entry.Name != "" {
		return entry.Name
	}
	if path == "" {
		return ""
	}
	return lastSegment(path)
}

func lastSegment(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func putDep(m map[string]string, name, raw string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[name] = raw
	return m
}
