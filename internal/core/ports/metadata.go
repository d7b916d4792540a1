package ports

import (
	"context"

	"go.trai.ch/relock/internal/core/domain"
)

// MetadataProvider answers (name, constraint) queries against a fixed
// registry snapshot. Resolution is deterministic: the same snapshot and
// query always return the same package.
//
//go:generate mockgen -source=metadata.go -destination=mocks/mock_metadata.go -package=mocks
type MetadataProvider interface {
	// Load points the provider at a registry snapshot file. Resolve answers
	// from the most recently loaded snapshot.
	Load(path string) error

	// Resolve returns the highest version of name satisfying the constraint,
	// or domain.ErrPackageNotFound.
	Resolve(ctx context.Context, name string, c domain.Constraint) (*domain.Package, error)
}
