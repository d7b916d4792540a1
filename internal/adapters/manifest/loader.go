// Package manifest loads package.json manifests into the graph builder's
// input shape.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/relock/internal/core/domain"
	"go.trai.ch/relock/internal/core/ports"
	"go.trai.ch/zerr"
)

const manifestFile = "package.json"

// Loader implements ports.ManifestLoader for npm-style workspace layouts:
// one root package.json whose "workspaces" globs name the member directories.
type Loader struct {
	log ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{log: log}
}

// Load reads the root manifest and every workspace member manifest under dir.
func (l *Loader) Load(dir string) (*domain.ManifestTree, error) {
	root, err := readManifest(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, err
	}

	tree := &domain.ManifestTree{}
	tree.Root, err = toDomain(root, "")
	if err != nil {
		return nil, err
	}

	memberDirs, err := expandWorkspaces(dir, root.Workspaces)
	if err != nil {
		return nil, err
	}

	for _, memberDir := range memberDirs {
		raw, err := readManifest(filepath.Join(dir, memberDir, manifestFile))
		if err != nil {
			return nil, err
		}
		m, err := toDomain(raw, filepath.ToSlash(memberDir))
		if err != nil {
			return nil, err
		}
		tree.Members = append(tree.Members, m)
	}

	return tree, nil
}

// expandWorkspaces resolves workspace globs to member directories relative to
// dir, sorted and restricted to directories that actually carry a manifest.
func expandWorkspaces(dir string, globs []string) ([]string, error) {
	var members []string
	for _, glob := range globs {
		matches, err := filepath.Glob(filepath.Join(dir, glob))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid workspace glob"), "glob", glob)
		}
		for _, match := range matches {
			if _, err := os.Stat(filepath.Join(match, manifestFile)); err != nil {
				continue
			}
			rel, err := filepath.Rel(dir, match)
			if err != nil {
				return nil, zerr.Wrap(err, "failed to relativize workspace path")
			}
			members = append(members, rel)
		}
	}
	slices.Sort(members)
	return slices.Compact(members), nil
}

func readManifest(path string) (*packageJSON, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", path)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse manifest"), "path", path)
	}
	return &pkg, nil
}

func toDomain(pkg *packageJSON, path string) (domain.Manifest, error) {
	m := domain.Manifest{
		Name:    domain.NewInternedString(pkg.Name),
		Version: pkg.Version,
		Path:    path,
	}

	add := func(deps map[string]string, kind domain.DepKind, optional func(string) bool) error {
		for _, name := range sortedKeys(deps) {
			c, err := domain.NewConstraint(deps[name])
			if err != nil {
				return zerr.With(zerr.With(err, "manifest", pkg.Name), "dependency", name)
			}
			m.Dependencies = append(m.Dependencies, domain.Dependency{
				Name:       domain.NewInternedString(name),
				Constraint: c,
				Kind:       kind,
				Optional:   optional(name),
			})
		}
		return nil
	}

	no := func(string) bool { return false }
	yes := func(string) bool { return true }

	if err := add(pkg.Dependencies, domain.KindRuntime, no); err != nil {
		return domain.Manifest{}, err
	}
	if err := add(pkg.DevDependencies, domain.KindDev, no); err != nil {
		return domain.Manifest{}, err
	}
	if err := add(pkg.OptionalDependencies, domain.KindRuntime, yes); err != nil {
		return domain.Manifest{}, err
	}
	if err := add(pkg.PeerDependencies, domain.KindPeer, func(name string) bool {
		return pkg.PeerDependenciesMeta[name].Optional
	}); err != nil {
		return domain.Manifest{}, err
	}

	return m, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

var _ ports.ManifestLoader = (*Loader)(nil)
