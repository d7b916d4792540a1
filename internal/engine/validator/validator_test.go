package validator_test

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relock/internal/core/domain"
	"go.trai.ch/relock/internal/engine/validator"
)

type testLogger struct{}

func (testLogger) Info(string) {}
func (testLogger) Warn(string) {}
func (testLogger) Error(error) {}

func addNode(t *testing.T, g *domain.Graph, path, name, version string, edges ...domain.DependencyEdge) {
	t.Helper()
	n := &domain.InstallNode{
		Path:  path,
		Name:  domain.NewInternedString(name),
		Edges: edges,
	}
	if version != "" {
		n.Version = semver.MustParse(version)
	}
	require.NoError(t, g.AddNode(n))
}

func edge(from, name, constraint string, kind domain.DepKind, optional bool) domain.DependencyEdge {
	return domain.DependencyEdge{
		From:       from,
		Name:       domain.NewInternedString(name),
		Constraint: domain.MustConstraint(constraint),
		Kind:       kind,
		Optional:   optional,
	}
}

func TestValidator_ConsistentGraph(t *testing.T) {
	g := domain.NewGraph()
	addNode(t, g, "", "demo", "",
		edge("", "chokidar", "^4.0.0", domain.KindRuntime, false))
	addNode(t, g, "node_modules/chokidar", "chokidar", "4.0.3")

	issues, err := validator.New(testLogger{}).Check(g)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidator_MissingRequiredDependency(t *testing.T) {
	g := domain.NewGraph()
	addNode(t, g, "", "demo", "",
		edge("", "chokidar", "^4.0.0", domain.KindRuntime, false))

	issues, err := validator.New(testLogger{}).Check(g)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBrokenLockfile)
	require.Len(t, issues, 1)
	assert.Equal(t, "chokidar", issues[0].Name)
	assert.Equal(t, "^4.0.0", issues[0].Constraint)
	assert.Empty(t, issues[0].Found)
}

func TestValidator_DeletedPeerSatisfierBreaksLockfile(t *testing.T) {
	// A lockfile where b's nested chokidar copy was wrongly removed: the
	// hoisted 4.x copy is now visible to b and violates its peer range.
	g := domain.NewGraph()
	addNode(t, g, "", "demo", "",
		edge("", "chokidar", "^4.0.0", domain.KindRuntime, false),
		edge("", "b", "^2.0.0", domain.KindRuntime, false))
	addNode(t, g, "node_modules/chokidar", "chokidar", "4.0.3")
	addNode(t, g, "node_modules/b", "b", "2.0.0",
		edge("node_modules/b", "chokidar", "^3.5.2", domain.KindPeer, true))

	issues, err := validator.New(testLogger{}).Check(g)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBrokenLockfile)
	require.Len(t, issues, 1)
	assert.Equal(t, "node_modules/b", issues[0].Consumer)
	assert.Equal(t, "chokidar", issues[0].Name)
	assert.Equal(t, "4.0.3", issues[0].Found)
}

func TestValidator_AbsentOptionalPeerIsFine(t *testing.T) {
	// No chokidar anywhere: b's optional peer is simply not provided.
	g := domain.NewGraph()
	addNode(t, g, "", "demo", "",
		edge("", "b", "^2.0.0", domain.KindRuntime, false))
	addNode(t, g, "node_modules/b", "b", "2.0.0",
		edge("node_modules/b", "chokidar", "^3.5.2", domain.KindPeer, true))

	issues, err := validator.New(testLogger{}).Check(g)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidator_NestedCopyShieldsPeer(t *testing.T) {
	// The correct shape for the same tree: the nested 3.x copy is nearer to b
	// than the hoisted 4.x copy, so every edge resolves.
	g := domain.NewGraph()
	addNode(t, g, "", "demo", "",
		edge("", "chokidar", "^4.0.0", domain.KindRuntime, false),
		edge("", "b", "^2.0.0", domain.KindRuntime, false))
	addNode(t, g, "node_modules/chokidar", "chokidar", "4.0.3")
	addNode(t, g, "node_modules/b", "b", "2.0.0",
		edge("node_modules/b", "chokidar", "^3.5.2", domain.KindPeer, true))
	addNode(t, g, "node_modules/b/node_modules/chokidar", "chokidar", "3.6.0")

	issues, err := validator.New(testLogger{}).Check(g)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidator_ReportsEveryBrokenEdge(t *testing.T) {
	g := domain.NewGraph()
	addNode(t, g, "", "demo", "",
		edge("", "a", "^1.0.0", domain.KindRuntime, false),
		edge("", "b", "^2.0.0", domain.KindRuntime, false))

	issues, err := validator.New(testLogger{}).Check(g)
	require.Error(t, err)
	assert.Len(t, issues, 2)
}

func TestValidator_SkipsLinkNodes(t *testing.T) {
	g := domain.NewGraph()
	addNode(t, g, "", "demo", "")
	addNode(t, g, "packages/api", "api", "1.0.0")
	require.NoError(t, g.AddNode(&domain.InstallNode{
		Path:       "node_modules/api",
		Name:       domain.NewInternedString("api"),
		Link:       true,
		LinkTarget: "packages/api",
	}))

	issues, err := validator.New(testLogger{}).Check(g)
	require.NoError(t, err)
	assert.Empty(t, issues)
}
