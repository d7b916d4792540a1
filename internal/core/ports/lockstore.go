package ports

import "go.trai.ch/relock/internal/core/domain"

// LockfileStore reads and writes lockfile snapshots for a project directory.
//
//go:generate mockgen -source=lockstore.go -destination=mocks/mock_lockstore.go -package=mocks
type LockfileStore interface {
	// Read returns the lockfile, or (nil, nil) when none exists yet.
	Read(dir string) (*domain.Lockfile, error)

	// Write persists the lockfile with byte-stable encoding.
	Write(dir string, lf *domain.Lockfile) error

	// Fingerprint returns a hash of the canonical encoding, used for the
	// idempotence fast path.
	Fingerprint(lf *domain.Lockfile) (uint64, error)
}
