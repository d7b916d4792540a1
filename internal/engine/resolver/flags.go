package resolver

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/relock/internal/core/domain"
	"go.trai.ch/zerr"
)

// ComputeFlags recomputes the dev/optional/peer markers over the whole
// graph. A node is dev when no non-dev edge chain reaches it from the root
// or a workspace member, and likewise for the other two flags. The
// computation is deterministic, so untouched regions of the graph keep
// their flags across partial updates.
func ComputeFlags(g *domain.Graph) {
	prod := reachable(g, func(e domain.DependencyEdge) bool { return e.Kind != domain.KindDev })
	nonOptional := reachable(g, func(e domain.DependencyEdge) bool { return !e.Optional })
	nonPeer := reachable(g, func(e domain.DependencyEdge) bool { return e.Kind != domain.KindPeer })

	for _, path := range g.Paths() {
		n, _ := g.Node(path)
		if n.Link || path == "" || !isInstalled(path) {
			continue
		}
		n.Dev = !prod[path]
		n.Optional = !nonOptional[path]
		n.Peer = !nonPeer[path]
	}
}

// reachable marks every node reachable from the root and the workspace
// members through bound edges passing the predicate.
func reachable(g *domain.Graph, pred func(domain.DependencyEdge) bool) map[string]bool {
	marked := make(map[string]bool)
	queue := append([]string{""}, g.Members()...)
	for _, p := range queue {
		marked[p] = true
	}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		n, ok := g.Node(path)
		if !ok {
			continue
		}
		for _, e := range n.Edges {
			if e.To == "" || !pred(e) || marked[e.To] {
				continue
			}
			marked[e.To] = true
			queue = append(queue, e.To)
		}
	}

	return marked
}

// isInstalled reports whether the path names an installed package rather
// than the root project or a workspace member.
func isInstalled(path string) bool {
	return strings.Contains(path, "node_modules")
}

func parseVersion(raw string) (*semver.Version, error) {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid version"), "version", raw)
	}
	return v, nil
}

func versionString(v *semver.Version) string {
	if v == nil {
		return ""
	}
	return v.Original()
}
