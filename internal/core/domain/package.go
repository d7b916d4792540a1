package domain

import "github.com/Masterminds/semver/v3"

// DepKind classifies a dependency declaration.
type DepKind int

const (
	// KindRuntime is a regular production dependency.
	KindRuntime DepKind = iota
	// KindDev is a development-only dependency. Dev edges exist only on the
	// root project and workspace members, never on registry packages.
	KindDev
	// KindPeer is a peer dependency: the declaring package expects the
	// surrounding install tree, not itself, to supply a compatible version.
	KindPeer
)

// String returns the manifest-facing name of the kind.
func (k DepKind) String() string {
	switch k {
	case KindDev:
		return "dev"
	case KindPeer:
		return "peer"
	default:
		return "runtime"
	}
}

// Dependency is a single declared requirement: a name, a version constraint,
// the declaration kind and an independent optional flag. Optional applies to
// both runtime dependencies (optionalDependencies) and peer dependencies
// (peerDependenciesMeta marking).
type Dependency struct {
	Name       InternedString
	Constraint Constraint
	Kind       DepKind
	Optional   bool
}

// Package is registry metadata for one concrete (name, version) pair:
// its declared dependencies plus the artifact coordinates that end up in the
// lockfile verbatim.
type Package struct {
	Name         InternedString
	Version      *semver.Version
	Resolved     string
	Integrity    string
	Dependencies []Dependency
}

// Manifest is the parsed dependency declaration of the root project or one
// workspace member. Path is "" for the root and the member's directory
// (e.g. "packages/api") otherwise.
type Manifest struct {
	Name         InternedString
	Version      string
	Path         string
	Dependencies []Dependency
}

// ManifestTree is the full input to graph construction: the root manifest
// plus every workspace member manifest, members sorted by path.
type ManifestTree struct {
	Root    Manifest
	Members []Manifest
}
