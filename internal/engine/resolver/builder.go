// Package resolver implements full graph construction: constraint
// satisfaction with hoist-preferring placement.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"go.trai.ch/relock/internal/core/domain"
	"go.trai.ch/relock/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Builder constructs install graphs from manifest trees.
type Builder struct {
	provider ports.MetadataProvider
	log      ports.Logger
}

// NewBuilder creates a new Builder.
func NewBuilder(provider ports.MetadataProvider, log ports.Logger) *Builder {
	return &Builder{provider: provider, log: log}
}

// EdgeRef addresses one edge of one install node. Satisfaction works on
// refs rather than edge copies so bindings land in the graph.
type EdgeRef struct {
	Path  string
	Index int
}

// Build constructs the full graph for a manifest tree. Every required edge
// ends up bound or the build fails with ErrUnsatisfiableConstraint.
func (b *Builder) Build(ctx context.Context, tree *domain.ManifestTree) (*domain.Graph, error) {
	g := domain.NewGraph()

	seeds, err := seedGraph(g, tree)
	if err != nil {
		return nil, err
	}

	// Warm the provider concurrently, one goroutine per workspace subtree.
	// Placement below is a single sequential pass so writes to the shared
	// root scope never race.
	b.prefetch(ctx, tree)

	if err := b.Satisfy(ctx, g, seeds); err != nil {
		return nil, err
	}

	ComputeFlags(g)
	return g, nil
}

// seedGraph creates the root node, one node per workspace member, and the
// link nodes exposing members under the root scope.
func seedGraph(g *domain.Graph, tree *domain.ManifestTree) ([]EdgeRef, error) {
	var seeds []EdgeRef

	addManifest := func(m domain.Manifest) error {
		node := &domain.InstallNode{
			Path: m.Path,
			Name: m.Name,
		}
		if m.Version != "" {
			v, err := parseVersion(m.Version)
			if err != nil {
				return zerr.With(err, "manifest", m.Name.String())
			}
			node.Version = v
		}
		node.Edges = make([]domain.DependencyEdge, 0, len(m.Dependencies))
		for _, d := range m.Dependencies {
			node.Edges = append(node.Edges, domain.DependencyEdge{
				From:       m.Path,
				Name:       d.Name,
				Constraint: d.Constraint,
				Kind:       d.Kind,
				Optional:   d.Optional,
			})
		}
		if err := g.AddNode(node); err != nil {
			return err
		}
		for i := range node.Edges {
			seeds = append(seeds, EdgeRef{Path: m.Path, Index: i})
		}
		return nil
	}

	if err := addManifest(tree.Root); err != nil {
		return nil, err
	}
	for _, m := range tree.Members {
		if err := addManifest(m); err != nil {
			return nil, err
		}
		g.AddMember(m.Path)
		link := &domain.InstallNode{
			Path:       domain.InstallPathIn(domain.RootScope(), m.Name.String()),
			Name:       m.Name,
			Link:       true,
			LinkTarget: m.Path,
		}
		if err := g.AddNode(link); err != nil {
			return nil, err
		}
	}

	return seeds, nil
}

// Satisfy resolves the seed edges and everything they transitively pull in.
// Existing reachable satisfiers are always preferred over new installs, so
// re-running Satisfy over a partially resolved graph keeps the prior
// configuration wherever it still satisfies constraints.
func (b *Builder) Satisfy(ctx context.Context, g *domain.Graph, seeds []EdgeRef) error {
	queue := slices.Clone(seeds)

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		ref := queue[0]
		queue = queue[1:]

		node, ok := g.Node(ref.Path)
		if !ok {
			continue
		}
		edge := &node.Edges[ref.Index]
		if edge.To != "" {
			continue
		}

		placed, err := b.satisfyEdge(ctx, g, edge)
		if err != nil {
			return err
		}
		if placed != nil {
			for i := range placed.Edges {
				queue = append(queue, EdgeRef{Path: placed.Path, Index: i})
			}
		}
	}

	return nil
}

// satisfyEdge binds a single edge, installing a new node when no visible one
// satisfies it. Returns the newly placed node, if any.
func (b *Builder) satisfyEdge(ctx context.Context, g *domain.Graph, edge *domain.DependencyEdge) (*domain.InstallNode, error) {
	name := edge.Name.String()
	vis := g.Lookup(edge.From, name)

	if vis != nil {
		if edge.Constraint.Check(vis.Version) {
			edge.To = vis.Path
			return nil, nil
		}
		// Visible but incompatible: nest a duplicate under the consumer.
		placed, err := b.place(ctx, g, edge, domain.ScopeOf(edge.From))
		if err != nil {
			return nil, b.demoteIfOptional(edge, err)
		}
		w := domain.ConflictWarning{
			Consumer: edge.From,
			Name:     name,
			Wanted:   edge.Constraint.String(),
			Existing: versionString(vis.Version),
			PlacedAt: placed.Path,
		}
		g.AddWarning(w)
		b.log.Warn(fmt.Sprintf("conflict: %s wants %s@%s, %s is visible; nested at %s",
			consumerLabel(edge.From), name, w.Wanted, w.Existing, w.PlacedAt))
		return placed, nil
	}

	// Nothing visible. An absent optional peer is a legal final state: the
	// environment simply does not provide it.
	if edge.Kind == domain.KindPeer && edge.Optional {
		return nil, nil
	}

	placed, err := b.place(ctx, g, edge, domain.RootScope())
	if err != nil {
		return nil, b.demoteIfOptional(edge, err)
	}
	return placed, nil
}

// place installs the highest satisfying version of the edge's package into
// the given scope and binds the edge to it.
func (b *Builder) place(ctx context.Context, g *domain.Graph, edge *domain.DependencyEdge, scope string) (*domain.InstallNode, error) {
	pkg, err := b.provider.Resolve(ctx, edge.Name.String(), edge.Constraint)
	if err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) && edge.Required() {
			err = zerr.With(zerr.With(zerr.With(domain.ErrUnsatisfiableConstraint,
				"consumer", consumerLabel(edge.From)),
				"package", edge.Name.String()),
				"constraint", edge.Constraint.String())
		}
		return nil, err
	}

	node := &domain.InstallNode{
		Path:      domain.InstallPathIn(scope, edge.Name.String()),
		Name:      pkg.Name,
		Version:   pkg.Version,
		Resolved:  pkg.Resolved,
		Integrity: pkg.Integrity,
	}
	node.Edges = make([]domain.DependencyEdge, 0, len(pkg.Dependencies))
	for _, d := range pkg.Dependencies {
		node.Edges = append(node.Edges, domain.DependencyEdge{
			From:       node.Path,
			Name:       d.Name,
			Constraint: d.Constraint,
			Kind:       d.Kind,
			Optional:   d.Optional,
		})
	}

	if err := g.AddNode(node); err != nil {
		return nil, err
	}
	edge.To = node.Path
	return node, nil
}

// demoteIfOptional swallows a missing-package failure for optional edges;
// an optional dependency the registry cannot supply is skipped, not fatal.
func (b *Builder) demoteIfOptional(edge *domain.DependencyEdge, err error) error {
	if edge.Optional && errors.Is(err, domain.ErrPackageNotFound) {
		b.log.Warn(fmt.Sprintf("optional dependency %s@%s skipped: no satisfying version",
			edge.Name.String(), edge.Constraint.String()))
		return nil
	}
	return err
}

// prefetch walks each workspace subtree concurrently, resolving metadata so
// the sequential placement pass hits a warm provider. Failures are ignored
// here; the placement pass reports them deterministically.
func (b *Builder) prefetch(ctx context.Context, tree *domain.ManifestTree) {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	manifests := append([]domain.Manifest{tree.Root}, tree.Members...)
	for _, m := range manifests {
		eg.Go(func() error {
			b.walkMetadata(ctx, m.Dependencies, make(map[string]bool))
			return nil
		})
	}
	_ = eg.Wait()
}

func (b *Builder) walkMetadata(ctx context.Context, deps []domain.Dependency, seen map[string]bool) {
	for _, d := range deps {
		if ctx.Err() != nil {
			return
		}
		key := d.Name.String() + "@" + d.Constraint.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		pkg, err := b.provider.Resolve(ctx, d.Name.String(), d.Constraint)
		if err != nil {
			continue
		}
		b.walkMetadata(ctx, pkg.Dependencies, seen)
	}
}

func consumerLabel(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}
