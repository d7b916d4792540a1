package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relock/internal/core/domain"
)

func TestGraph_Lock(t *testing.T) {
	g := domain.NewGraph()

	root := node("", "demo", "1.0.0")
	root.Edges = []domain.DependencyEdge{
		{
			From:       "",
			Name:       domain.NewInternedString("chokidar"),
			Constraint: domain.MustConstraint("^4.0.0"),
			To:         "node_modules/chokidar",
		},
		{
			From:       "",
			Name:       domain.NewInternedString("typescript"),
			Constraint: domain.MustConstraint("^5.0.0"),
			Kind:       domain.KindDev,
		},
	}
	require.NoError(t, g.AddNode(root))

	chokidar := node("node_modules/chokidar", "chokidar", "4.0.3")
	chokidar.Resolved = "https://registry.example/chokidar/-/chokidar-4.0.3.tgz"
	chokidar.Integrity = "sha512-aaa"
	require.NoError(t, g.AddNode(chokidar))

	b := node("node_modules/b", "b", "2.0.0")
	b.Edges = []domain.DependencyEdge{{
		From:       "node_modules/b",
		Name:       domain.NewInternedString("chokidar"),
		Constraint: domain.MustConstraint("^3.5.2"),
		Kind:       domain.KindPeer,
		Optional:   true,
	}}
	require.NoError(t, g.AddNode(b))

	lf := g.Lock()

	assert.Equal(t, "demo", lf.Name)
	assert.Equal(t, "1.0.0", lf.Version)

	rootEntry := lf.Entries[""]
	assert.Equal(t, map[string]string{"chokidar": "^4.0.0"}, rootEntry.Dependencies)
	assert.Equal(t, map[string]string{"typescript": "^5.0.0"}, rootEntry.DevDependencies)

	ce := lf.Entries["node_modules/chokidar"]
	assert.Equal(t, "4.0.3", ce.Version)
	assert.Equal(t, "https://registry.example/chokidar/-/chokidar-4.0.3.tgz", ce.Resolved)
	assert.Equal(t, "sha512-aaa", ce.Integrity)

	be := lf.Entries["node_modules/b"]
	assert.Equal(t, map[string]string{"chokidar": "^3.5.2"}, be.PeerDependencies)
	assert.Equal(t, map[string]bool{"chokidar": true}, be.PeerMeta)
}

func TestGraph_LockLinkEntry(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(node("", "demo", "1.0.0")))
	require.NoError(t, g.AddNode(node("packages/api", "api", "1.0.0")))
	require.NoError(t, g.AddNode(&domain.InstallNode{
		Path:       "node_modules/api",
		Name:       domain.NewInternedString("api"),
		Link:       true,
		LinkTarget: "packages/api",
	}))

	lf := g.Lock()
	entry := lf.Entries["node_modules/api"]
	assert.True(t, entry.Link)
	assert.Equal(t, "packages/api", entry.Resolved)
}

func TestLockfile_GraphRoundTrip(t *testing.T) {
	lf := &domain.Lockfile{
		Name:    "demo",
		Version: "1.0.0",
		Entries: map[string]domain.LockEntry{
			"": {
				Name:    "demo",
				Version: "1.0.0",
				Dependencies: map[string]string{
					"chokidar": "^4.0.0",
					"b":        "^2.0.0",
				},
			},
			"node_modules/chokidar": {Version: "4.0.3"},
			"node_modules/b": {
				Version:          "2.0.0",
				PeerDependencies: map[string]string{"chokidar": "^3.5.2"},
				PeerMeta:         map[string]bool{"chokidar": true},
			},
			"node_modules/b/node_modules/chokidar": {Version: "3.6.0"},
		},
	}

	g, err := lf.Graph()
	require.NoError(t, err)
	require.Equal(t, 4, g.Len())

	t.Run("root edges rebind to the hoisted copy", func(t *testing.T) {
		root, ok := g.Node("")
		require.True(t, ok)
		bound := map[string]string{}
		for _, e := range root.Edges {
			bound[e.Name.String()] = e.To
		}
		assert.Equal(t, "node_modules/chokidar", bound["chokidar"])
		assert.Equal(t, "node_modules/b", bound["b"])
	})

	t.Run("optional peer edge rebinds to the nested copy", func(t *testing.T) {
		b, ok := g.Node("node_modules/b")
		require.True(t, ok)
		require.Len(t, b.Edges, 1)
		e := b.Edges[0]
		assert.Equal(t, domain.KindPeer, e.Kind)
		assert.True(t, e.Optional)
		assert.Equal(t, "node_modules/b/node_modules/chokidar", e.To)
	})

	t.Run("name falls back to the last path segment", func(t *testing.T) {
		n, ok := g.Node("node_modules/b/node_modules/chokidar")
		require.True(t, ok)
		assert.Equal(t, "chokidar", n.Name.String())
	})

	t.Run("re-locking reproduces the snapshot", func(t *testing.T) {
		again := g.Lock()
		assert.Equal(t, lf.Entries[""].Dependencies, again.Entries[""].Dependencies)
		assert.Equal(t, lf.Entries["node_modules/b"].PeerDependencies,
			again.Entries["node_modules/b"].PeerDependencies)
		assert.Equal(t, lf.Entries["node_modules/b"].PeerMeta,
			again.Entries["node_modules/b"].PeerMeta)
	})
}

func TestLockfile_GraphRegistersMembers(t *testing.T) {
	lf := &domain.Lockfile{
		Entries: map[string]domain.LockEntry{
			"":             {Name: "demo"},
			"packages/api": {Name: "api", Version: "1.0.0"},
			"node_modules/api": {
				Link:     true,
				Resolved: "packages/api",
			},
		},
	}

	g, err := lf.Graph()
	require.NoError(t, err)
	assert.Equal(t, []string{"packages/api"}, g.Members())

	m, ok := g.MemberByName("api")
	require.True(t, ok)
	assert.Equal(t, "packages/api", m.Path)
}

func TestLockfile_GraphViolatedEdgeStaysUnbound(t *testing.T) {
	// A hand-edited lockfile where the visible version no longer satisfies the
	// range: the edge must stay unbound so the validator can flag it.
	lf := &domain.Lockfile{
		Entries: map[string]domain.LockEntry{
			"": {
				Name:         "demo",
				Dependencies: map[string]string{"chokidar": "^4.0.0"},
			},
			"node_modules/chokidar": {Version: "3.6.0"},
		},
	}

	g, err := lf.Graph()
	require.NoError(t, err)

	root, ok := g.Node("")
	require.True(t, ok)
	require.Len(t, root.Edges, 1)
	assert.Empty(t, root.Edges[0].To)
}
