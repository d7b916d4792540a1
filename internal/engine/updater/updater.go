// Package updater implements targeted version bumps: one manifest edge
// changes and only the subgraph that edge justifies is re-resolved.
package updater

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/relock/internal/core/domain"
	"go.trai.ch/relock/internal/core/ports"
	"go.trai.ch/relock/internal/engine/resolver"
	"go.trai.ch/relock/internal/engine/validator"
	"go.trai.ch/zerr"
)

// Updater applies partial updates to an existing graph.
type Updater struct {
	builder   *resolver.Builder
	validator *validator.Validator
	log       ports.Logger
}

// New creates a new Updater.
func New(builder *resolver.Builder, val *validator.Validator, log ports.Logger) *Updater {
	return &Updater{builder: builder, validator: val, log: log}
}

// Request is one targeted bump: a dependency of one workspace member (or of
// the root project, when Workspace is empty) moves to a new constraint.
type Request struct {
	// Workspace is the member path ("packages/api") or member package name;
	// empty targets the root project.
	Workspace  string
	Name       string
	Constraint domain.Constraint
}

// Bump produces a new graph snapshot with the requested update applied.
// The input graph is never mutated. Nodes outside the changed edge's
// exclusive subgraph keep their identity, scope and flags; in particular a
// node that is the unique satisfier of an unrelated peer edge (optional or
// not) survives untouched. If the updated graph fails validation the
// update is rejected and no snapshot is returned.
func (u *Updater) Bump(ctx context.Context, g *domain.Graph, req Request) (*domain.Graph, error) {
	next := g.Clone()

	consumer, err := findConsumer(next, req.Workspace)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range consumer.Edges {
		if consumer.Edges[i].Name.String() == req.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, zerr.With(zerr.With(domain.ErrDependencyNotDeclared,
			"workspace", consumerLabel(consumer.Path)), "dependency", req.Name)
	}

	edge := &consumer.Edges[idx]
	oldTo := edge.To
	edge.Constraint = req.Constraint
	edge.To = ""

	if oldTo != "" {
		removed := prune(next, oldTo)
		for _, path := range removed {
			u.log.Info(fmt.Sprintf("pruned %s: no longer required", path))
		}
	}

	if err := u.builder.Satisfy(ctx, next, []resolver.EdgeRef{{Path: consumer.Path, Index: idx}}); err != nil {
		return nil, err
	}
	resolver.ComputeFlags(next)

	if _, err := u.validator.Check(next); err != nil {
		// Publishing a lockfile that fails the clean-install check is the
		// exact failure this gate exists to prevent.
		return nil, zerr.Wrap(err, "update rejected")
	}

	return next, nil
}

// prune removes the old satisfier and its exclusively-held transitive
// dependencies. A node stays whenever any edge from outside the candidate
// set still binds to it: that edge's consumer was not part of the change,
// so deleting its unique satisfier would break it. Returns the removed
// paths in sorted order.
func prune(g *domain.Graph, oldTo string) []string {
	candidates := make(map[string]bool)
	collect(g, oldTo, candidates)

	// Shrink to a fixpoint: dropping a node from the candidate set turns its
	// own bindings into outside dependents of their targets.
	for changed := true; changed; {
		changed = false
		for _, path := range sortedPaths(candidates) {
			for _, dep := range g.Dependents(path) {
				if !candidates[dep.From] {
					delete(candidates, path)
					changed = true
					break
				}
			}
		}
	}

	removed := sortedPaths(candidates)
	for _, path := range removed {
		g.RemoveNode(path)
	}
	return removed
}

// collect gathers the binding closure of a node: itself plus everything its
// edges (and theirs) bind to. Roots, members and links are never candidates
// for removal.
func collect(g *domain.Graph, path string, set map[string]bool) {
	if set[path] || !isInstalledPath(path) {
		return
	}
	n, ok := g.Node(path)
	if !ok || n.Link {
		return
	}
	set[path] = true
	for _, e := range n.Edges {
		if e.To != "" {
			collect(g, e.To, set)
		}
	}
}

func findConsumer(g *domain.Graph, workspace string) (*domain.InstallNode, error) {
	if workspace == "" {
		n, ok := g.Node("")
		if !ok {
			return nil, zerr.With(domain.ErrNodeNotFound, "path", "")
		}
		return n, nil
	}
	if n, ok := g.Node(workspace); ok {
		return n, nil
	}
	if n, ok := g.MemberByName(workspace); ok {
		return n, nil
	}
	return nil, zerr.With(domain.ErrWorkspaceNotFound, "workspace", workspace)
}

func isInstalledPath(path string) bool {
	return strings.Contains(path, "node_modules")
}

func consumerLabel(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

func sortedPaths(set map[string]bool) []string {
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}
