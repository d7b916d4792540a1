// Package registry implements the metadata provider against a registry
// snapshot file. The snapshot pins the full registry state, which keeps
// resolution deterministic and reproducible.
package registry

import (
	"context"
	"os"
	"slices"
	"sync"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/relock/internal/core/domain"
	"go.trai.ch/relock/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Provider implements ports.MetadataProvider from a YAML snapshot.
type Provider struct {
	log ports.Logger

	mu    sync.RWMutex
	index map[string][]*domain.Package // name -> versions, highest first
}

// NewProvider creates an empty Provider. Load must be called before Resolve.
func NewProvider(log ports.Logger) *Provider {
	return &Provider{
		log:   log,
		index: make(map[string][]*domain.Package),
	}
}

// Load reads a snapshot file and replaces the in-memory index.
func (p *Provider) Load(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read registry snapshot"), "path", path)
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to parse registry snapshot"), "path", path)
	}

	index, err := buildIndex(&snap)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.index = index
	p.mu.Unlock()
	return nil
}

// Resolve returns the highest version of name satisfying the constraint.
func (p *Provider) Resolve(_ context.Context, name string, c domain.Constraint) (*domain.Package, error) {
	p.mu.RLock()
	versions := p.index[name]
	p.mu.RUnlock()

	for _, pkg := range versions {
		if c.Check(pkg.Version) {
			return pkg, nil
		}
	}

	return nil, zerr.With(zerr.With(domain.ErrPackageNotFound, "package", name), "constraint", c.String())
}

func buildIndex(snap *snapshot) (map[string][]*domain.Package, error) {
	index := make(map[string][]*domain.Package, len(snap.Packages))

	for name, entries := range snap.Packages {
		pkgs := make([]*domain.Package, 0, len(entries))
		for _, e := range entries {
			pkg, err := toPackage(name, e)
			if err != nil {
				return nil, err
			}
			pkgs = append(pkgs, pkg)
		}
		slices.SortFunc(pkgs, func(a, b *domain.Package) int {
			return b.Version.Compare(a.Version)
		})
		index[name] = pkgs
	}

	return index, nil
}

func toPackage(name string, e packageEntry) (*domain.Package, error) {
	v, err := semver.NewVersion(e.Version)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "invalid version in registry snapshot"), "package", name), "version", e.Version)
	}

	pkg := &domain.Package{
		Name:      domain.NewInternedString(name),
		Version:   v,
		Resolved:  e.Resolved,
		Integrity: e.Integrity,
	}

	add := func(deps map[string]string, kind domain.DepKind, optional func(string) bool) error {
		names := make([]string, 0, len(deps))
		for n := range deps {
			names = append(names, n)
		}
		slices.Sort(names)
		for _, n := range names {
			c, err := domain.NewConstraint(deps[n])
			if err != nil {
				return zerr.With(zerr.With(err, "package", name), "dependency", n)
			}
			pkg.Dependencies = append(pkg.Dependencies, domain.Dependency{
				Name:       domain.NewInternedString(n),
				Constraint: c,
				Kind:       kind,
				Optional:   optional(n),
			})
		}
		return nil
	}

	no := func(string) bool { return false }
	yes := func(string) bool { return true }

	if err := add(e.Dependencies, domain.KindRuntime, no); err != nil {
		return nil, err
	}
	if err := add(e.OptionalDependencies, domain.KindRuntime, yes); err != nil {
		return nil, err
	}
	if err := add(e.PeerDependencies, domain.KindPeer, func(n string) bool {
		return e.PeerDependenciesMeta[n].Optional
	}); err != nil {
		return nil, err
	}

	return pkg, nil
}

var _ ports.MetadataProvider = (*Provider)(nil)
