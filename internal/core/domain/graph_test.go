package domain_test

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relock/internal/core/domain"
)

func node(path, name, version string) *domain.InstallNode {
	n := &domain.InstallNode{
		Path: path,
		Name: domain.NewInternedString(name),
	}
	if version != "" {
		n.Version = semver.MustParse(version)
	}
	return n
}

func TestEnclosingScopes(t *testing.T) {
	tests := []struct {
		name     string
		consumer string
		want     []string
	}{
		{
			name:     "root project",
			consumer: "",
			want:     []string{"node_modules"},
		},
		{
			name:     "workspace member",
			consumer: "packages/api",
			want:     []string{"packages/api/node_modules", "node_modules"},
		},
		{
			name:     "hoisted install",
			consumer: "node_modules/chokidar",
			want:     []string{"node_modules/chokidar/node_modules", "node_modules"},
		},
		{
			name:     "nested install under a member",
			consumer: "packages/api/node_modules/chokidar",
			want: []string{
				"packages/api/node_modules/chokidar/node_modules",
				"packages/api/node_modules",
				"node_modules",
			},
		},
		{
			name:     "doubly nested install",
			consumer: "node_modules/a/node_modules/b",
			want: []string{
				"node_modules/a/node_modules/b/node_modules",
				"node_modules/a/node_modules",
				"node_modules",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.EnclosingScopes(tt.consumer))
		})
	}
}

func TestGraph_AddNodeDuplicate(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(node("node_modules/a", "a", "1.0.0")))

	err := g.AddNode(node("node_modules/a", "a", "2.0.0"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateNode)
}

func TestGraph_LookupNearestWins(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(node("", "root", "")))
	require.NoError(t, g.AddNode(node("node_modules/chokidar", "chokidar", "4.0.3")))
	require.NoError(t, g.AddNode(node("packages/b", "b", "1.0.0")))
	require.NoError(t, g.AddNode(node("packages/b/node_modules/chokidar", "chokidar", "3.6.0")))

	t.Run("consumer with a nested copy sees the nested copy", func(t *testing.T) {
		vis := g.Lookup("packages/b", "chokidar")
		require.NotNil(t, vis)
		assert.Equal(t, "packages/b/node_modules/chokidar", vis.Path)
		assert.Equal(t, "3.6.0", vis.Version.Original())
	})

	t.Run("root sees the hoisted copy", func(t *testing.T) {
		vis := g.Lookup("", "chokidar")
		require.NotNil(t, vis)
		assert.Equal(t, "node_modules/chokidar", vis.Path)
		assert.Equal(t, "4.0.3", vis.Version.Original())
	})

	t.Run("the nested copy itself walks up to the root scope", func(t *testing.T) {
		vis := g.Lookup("packages/b/node_modules/chokidar", "glob-parent")
		assert.Nil(t, vis)
	})

	t.Run("unknown name resolves to nothing", func(t *testing.T) {
		assert.Nil(t, g.Lookup("", "left-pad"))
	})
}

func TestGraph_LookupResolvesLinks(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(node("", "root", "")))
	member := node("packages/api", "api", "1.0.0")
	require.NoError(t, g.AddNode(member))
	g.AddMember("packages/api")
	require.NoError(t, g.AddNode(&domain.InstallNode{
		Path:       "node_modules/api",
		Name:       domain.NewInternedString("api"),
		Link:       true,
		LinkTarget: "packages/api",
	}))

	vis := g.Lookup("", "api")
	require.NotNil(t, vis)
	assert.Equal(t, "packages/api", vis.Path)
	assert.False(t, vis.Link)
}

func TestGraph_MemberByName(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(node("packages/api", "api", "1.0.0")))
	g.AddMember("packages/api")

	m, ok := g.MemberByName("api")
	require.True(t, ok)
	assert.Equal(t, "packages/api", m.Path)

	_, ok = g.MemberByName("web")
	assert.False(t, ok)
}

func TestGraph_Dependents(t *testing.T) {
	g := domain.NewGraph()

	b := node("node_modules/b", "b", "1.0.0")
	b.Edges = []domain.DependencyEdge{{
		From:       "node_modules/b",
		Name:       domain.NewInternedString("chokidar"),
		Constraint: domain.MustConstraint("^3.5.2"),
		Kind:       domain.KindPeer,
		Optional:   true,
		To:         "node_modules/b/node_modules/chokidar",
	}}
	require.NoError(t, g.AddNode(b))
	require.NoError(t, g.AddNode(node("node_modules/b/node_modules/chokidar", "chokidar", "3.6.0")))

	deps := g.Dependents("node_modules/b/node_modules/chokidar")
	require.Len(t, deps, 1)
	assert.Equal(t, "node_modules/b", deps[0].From)
	assert.True(t, deps[0].Optional)

	assert.Empty(t, g.Dependents("node_modules/b"))
}

func TestGraph_CloneIsIndependent(t *testing.T) {
	g := domain.NewGraph()
	a := node("node_modules/a", "a", "1.0.0")
	a.Edges = []domain.DependencyEdge{{
		From:       "node_modules/a",
		Name:       domain.NewInternedString("b"),
		Constraint: domain.MustConstraint("^1.0.0"),
	}}
	require.NoError(t, g.AddNode(a))
	g.AddMember("packages/api")

	c := g.Clone()

	cn, ok := c.Node("node_modules/a")
	require.True(t, ok)
	cn.Edges[0].To = "node_modules/b"
	c.RemoveNode("node_modules/a")

	// The original node and its edges are untouched.
	on, ok := g.Node("node_modules/a")
	require.True(t, ok)
	assert.Empty(t, on.Edges[0].To)
	assert.Equal(t, []string{"packages/api"}, g.Members())
}

func TestGraph_CloneKeepsWarnings(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(node("", "root", "")))
	g.AddWarning(domain.ConflictWarning{
		Consumer: "node_modules/b",
		Name:     "readdirp",
		Wanted:   "~3.6.0",
		Existing: "4.0.1",
		PlacedAt: "node_modules/b/node_modules/readdirp",
	})

	c := g.Clone()

	require.Len(t, c.Warnings(), 1)
	assert.Equal(t, g.Warnings(), c.Warnings())

	// Warnings recorded on the clone do not leak back.
	c.AddWarning(domain.ConflictWarning{Consumer: "", Name: "chokidar"})
	assert.Len(t, g.Warnings(), 1)
}

func TestGraph_PathsSorted(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(node("node_modules/z", "z", "1.0.0")))
	require.NoError(t, g.AddNode(node("", "root", "")))
	require.NoError(t, g.AddNode(node("node_modules/a", "a", "1.0.0")))

	assert.Equal(t, []string{"", "node_modules/a", "node_modules/z"}, g.Paths())
}
