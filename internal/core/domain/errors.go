package domain

import "errors"

// Sentinels are plain stdlib errors so they stay in the errors.Is chain
// when zerr.With or zerr.Wrap attaches context on top of them.
var (
	// ErrUnsatisfiableConstraint is returned when a required edge has no
	// satisfier anywhere in scope.
	ErrUnsatisfiableConstraint = errors.New("unsatisfiable constraint")

	// ErrBrokenLockfile is returned when the resolved graph contains at least
	// one dangling required edge.
	ErrBrokenLockfile = errors.New("broken lockfile")

	// ErrPackageNotFound is returned when the registry snapshot has no version
	// of a package matching the requested constraint.
	ErrPackageNotFound = errors.New("package not found in registry")

	// ErrDuplicateNode is returned when attempting to add an install node at a
	// path that is already occupied.
	ErrDuplicateNode = errors.New("install node already exists")

	// ErrNodeNotFound is returned when a requested install node is not in the graph.
	ErrNodeNotFound = errors.New("install node not found")

	// ErrDependencyNotDeclared is returned when an update targets a dependency
	// the workspace member does not declare.
	ErrDependencyNotDeclared = errors.New("dependency not declared by workspace member")

	// ErrWorkspaceNotFound is returned when an update names a workspace member
	// that is not part of the graph.
	ErrWorkspaceNotFound = errors.New("workspace member not found")

	// ErrInvalidConstraint is returned when a version constraint cannot be parsed.
	ErrInvalidConstraint = errors.New("invalid version constraint")

	// ErrLockfileVersion is returned when a lockfile declares an unsupported
	// format version.
	ErrLockfileVersion = errors.New("unsupported lockfile version")

	// ErrLockfileMissing is returned when an operation needs an existing
	// lockfile and none is present.
	ErrLockfileMissing = errors.New("no lockfile found, run resolve first")
)
