package ports

import "go.trai.ch/relock/internal/core/domain"

// ManifestLoader parses the root manifest and every workspace member
// manifest under a project directory.
//
//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestLoader interface {
	Load(dir string) (*domain.ManifestTree, error)
}
