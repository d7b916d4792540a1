package lockfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/relock/internal/core/domain"
	"go.trai.ch/relock/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultFilename is the npm lockfile name.
const DefaultFilename = "package-lock.json"

// Store implements ports.LockfileStore on the filesystem.
type Store struct {
	Filename string
}

// NewStore creates a Store using the default lockfile name.
func NewStore() *Store {
	return &Store{Filename: DefaultFilename}
}

// Read loads the lockfile from dir. A missing lockfile is not an error; it
// returns (nil, nil) so callers can distinguish "first resolve" from failure.
func (s *Store) Read(dir string) (*domain.Lockfile, error) {
	path := filepath.Join(dir, s.Filename)
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read lockfile"), "path", path)
	}
	return Decode(data)
}

// Write persists the lockfile to dir with byte-stable encoding.
func (s *Store) Write(dir string, lf *domain.Lockfile) error {
	data, err := Encode(lf)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, s.Filename)
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write lockfile"), "path", path)
	}
	return nil
}

// Fingerprint hashes the canonical encoding. Two snapshots fingerprint
// equal exactly when their serialized bytes are identical.
func (s *Store) Fingerprint(lf *domain.Lockfile) (uint64, error) {
	data, err := Encode(lf)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

var _ ports.LockfileStore = (*Store)(nil)
