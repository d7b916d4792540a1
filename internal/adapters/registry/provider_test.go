package registry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relock/internal/adapters/logger"
	"go.trai.ch/relock/internal/adapters/registry"
	"go.trai.ch/relock/internal/core/domain"
)

const testSnapshot = `
packages:
  chokidar:
    - version: 4.0.3
      resolved: https://registry.example/chokidar/-/chokidar-4.0.3.tgz
      integrity: sha512-ccc
      dependencies:
        readdirp: ^4.0.1
    - version: 3.6.0
      resolved: https://registry.example/chokidar/-/chokidar-3.6.0.tgz
      integrity: sha512-bbb
      dependencies:
        glob-parent: ~5.1.2
      optionalDependencies:
        fsevents: ~2.3.2
  glob-parent:
    - version: 5.1.2
  readdirp:
    - version: 4.0.1
  b:
    - version: 2.0.0
      peerDependencies:
        chokidar: ^3.5.2
      peerDependenciesMeta:
        chokidar:
          optional: true
`

func loadProvider(t *testing.T, snapshot string) *registry.Provider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o644))

	p := registry.NewProvider(logger.New())
	require.NoError(t, p.Load(path))
	return p
}

func TestProvider_Resolve(t *testing.T) {
	p := loadProvider(t, testSnapshot)

	t.Run("highest satisfying version wins", func(t *testing.T) {
		pkg, err := p.Resolve(context.Background(), "chokidar", domain.MustConstraint("^3.0.0 || ^4.0.0"))
		require.NoError(t, err)
		assert.Equal(t, "4.0.3", pkg.Version.Original())
		assert.Equal(t, "sha512-ccc", pkg.Integrity)
	})

	t.Run("range pinned below the newest", func(t *testing.T) {
		pkg, err := p.Resolve(context.Background(), "chokidar", domain.MustConstraint("^3.5.2"))
		require.NoError(t, err)
		assert.Equal(t, "3.6.0", pkg.Version.Original())

		byName := map[string]domain.Dependency{}
		for _, d := range pkg.Dependencies {
			byName[d.Name.String()] = d
		}
		assert.Equal(t, "~5.1.2", byName["glob-parent"].Constraint.String())
		assert.True(t, byName["fsevents"].Optional)
	})

	t.Run("optional peer metadata survives parsing", func(t *testing.T) {
		pkg, err := p.Resolve(context.Background(), "b", domain.MustConstraint("^2.0.0"))
		require.NoError(t, err)
		require.Len(t, pkg.Dependencies, 1)
		d := pkg.Dependencies[0]
		assert.Equal(t, domain.KindPeer, d.Kind)
		assert.True(t, d.Optional)
	})

	t.Run("unknown package", func(t *testing.T) {
		_, err := p.Resolve(context.Background(), "left-pad", domain.MustConstraint("*"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPackageNotFound)
	})

	t.Run("no satisfying version", func(t *testing.T) {
		_, err := p.Resolve(context.Background(), "chokidar", domain.MustConstraint("^9.0.0"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPackageNotFound)
	})
}

func TestProvider_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		p := registry.NewProvider(logger.New())
		err := p.Load(filepath.Join(t.TempDir(), "registry.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read registry snapshot")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "registry.yaml")
		require.NoError(t, os.WriteFile(path, []byte("packages: ["), 0o644))

		p := registry.NewProvider(logger.New())
		err := p.Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse registry snapshot")
	})

	t.Run("invalid version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "registry.yaml")
		require.NoError(t, os.WriteFile(path, []byte("packages:\n  a:\n    - version: nope\n"), 0o644))

		p := registry.NewProvider(logger.New())
		require.Error(t, p.Load(path))
	})
}
