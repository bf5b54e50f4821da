package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/importgraph/internal/graph"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const fixtureDir = "../../testdata/fixtures/ts_project"

func fixtureAbsPath(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs(fixtureDir)
	require.NoError(t, err)
	return abs
}

func newService(t *testing.T) *GraphService {
	t.Helper()
	log, _ := test.NewNullLogger()
	return NewGraphService(graph.DefaultOptions(), log)
}

func analyzedService(t *testing.T) *GraphService {
	t.Helper()
	svc := newService(t)
	_, _, err := svc.AnalyzeRepository(context.Background(), nil, AnalyzeRepositoryInput{RepoPath: fixtureAbsPath(t)})
	require.NoError(t, err)
	return svc
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// ---------------------------------------------------------------------------
// analyze_repository
// ---------------------------------------------------------------------------

func TestAnalyzeRepository_Fixture(t *testing.T) {
	svc := newService(t)
	_, out, err := svc.AnalyzeRepository(context.Background(), nil, AnalyzeRepositoryInput{RepoPath: fixtureAbsPath(t)})
	require.NoError(t, err)

	assert.Equal(t, 11, out.Stats.FileCount)
	assert.Equal(t, 12, out.Stats.EdgeCount)
	assert.Equal(t, 4, out.Stats.UnresolvedCount)
	assert.Equal(t, 1, out.Stats.IsolatedCount)
	assert.Equal(t, 1, out.Stats.ClusterCount)
	assert.Zero(t, out.Diagnostics)
	assert.Empty(t, out.Commit)

	g, clusters, err := svc.Graph()
	require.NoError(t, err)
	assert.Equal(t, 11, g.Len())
	assert.Len(t, clusters, 1)
}

func TestAnalyzeRepository_IncludeExcludeOverride(t *testing.T) {
	svc := newService(t)
	_, out, err := svc.AnalyzeRepository(context.Background(), nil, AnalyzeRepositoryInput{
		RepoPath: fixtureAbsPath(t),
		Include:  []string{"src/lib"},
		Exclude:  []string{"**/*.js"},
	})
	require.NoError(t, err)

	g, _, err := svc.Graph()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib/api.ts"}, g.Paths())
	assert.Zero(t, out.Stats.EdgeCount)
}

func TestAnalyzeRepository_Errors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, _, err := svc.AnalyzeRepository(ctx, nil, AnalyzeRepositoryInput{})
	assert.Error(t, err)

	_, _, err = svc.AnalyzeRepository(ctx, nil, AnalyzeRepositoryInput{RepoPath: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.ts")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, _, err = svc.AnalyzeRepository(ctx, nil, AnalyzeRepositoryInput{RepoPath: file})
	assert.Error(t, err)

	_, _, err = svc.AnalyzeRepository(ctx, nil, AnalyzeRepositoryInput{RepoPath: fixtureAbsPath(t), Exclude: []string{"[bad"}})
	assert.Error(t, err)

	_, _, err = svc.Graph()
	assert.ErrorIs(t, err, ErrNoGraph)
}

func TestAnalyzeRepository_GitRevision(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	writeTree(t, dir, map[string]string{
		"src/a.ts": `import './b'`,
		"src/b.ts": `export {}`,
	})
	_, err = wt.Add("src")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	require.NoError(t, err)

	// Uncommitted files are invisible at a revision.
	writeTree(t, dir, map[string]string{"src/c.ts": `import './a'`})

	svc := newService(t)
	_, out, err := svc.AnalyzeRepository(context.Background(), nil, AnalyzeRepositoryInput{RepoPath: dir, Rev: "HEAD"})
	require.NoError(t, err)
	assert.Equal(t, hash.String(), out.Commit)
	assert.Equal(t, 2, out.Stats.FileCount)
	assert.Equal(t, 1, out.Stats.EdgeCount)

	_, out, err = svc.AnalyzeRepository(context.Background(), nil, AnalyzeRepositoryInput{RepoPath: dir})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Stats.FileCount)

	_, _, err = svc.AnalyzeRepository(context.Background(), nil, AnalyzeRepositoryInput{RepoPath: dir, Rev: "no-such-branch"})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Query tools
// ---------------------------------------------------------------------------

func TestQueryTools_RequireGraph(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, _, err := svc.SearchFiles(ctx, nil, SearchFilesInput{Query: "a"})
	assert.ErrorIs(t, err, ErrNoGraph)
	_, _, err = svc.InspectFile(ctx, nil, InspectFileInput{Path: "src/a.ts"})
	assert.ErrorIs(t, err, ErrNoGraph)
	_, _, err = svc.GetDependencies(ctx, nil, GetDependenciesInput{Path: "src/a.ts"})
	assert.ErrorIs(t, err, ErrNoGraph)
	_, _, err = svc.AssessImpact(ctx, nil, AssessImpactInput{ChangedFiles: []string{"src/a.ts"}})
	assert.ErrorIs(t, err, ErrNoGraph)
	_, _, err = svc.GetClusters(ctx, nil, GetClustersInput{})
	assert.ErrorIs(t, err, ErrNoGraph)
	_, _, err = svc.FindCycles(ctx, nil, FindCyclesInput{})
	assert.ErrorIs(t, err, ErrNoGraph)
}

func TestSearchFiles(t *testing.T) {
	svc := analyzedService(t)

	_, out, err := svc.SearchFiles(context.Background(), nil, SearchFilesInput{Query: "LIB/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib/api.ts", "src/lib/http.js"}, out.Files)
	assert.Equal(t, []graph.Edge{{Source: "src/lib/api.ts", Target: "src/lib/http.js", Kind: graph.EdgeKindImports}}, out.Edges)

	_, out, err = svc.SearchFiles(context.Background(), nil, SearchFilesInput{Query: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, out.Files)
	assert.NotNil(t, out.Edges)
}

func TestInspectFile(t *testing.T) {
	svc := analyzedService(t)

	_, out, err := svc.InspectFile(context.Background(), nil, InspectFileInput{Path: "src/lib/api.ts"})
	require.NoError(t, err)
	assert.Equal(t, "api.ts", out.Selection.Name)
	assert.Equal(t, 2, out.Selection.ResolvedDependencies)
	assert.Equal(t, 1, out.Selection.Dependents)
	assert.Equal(t, []string{"src/App.tsx", "src/lib/http.js", "src/types.ts"}, out.Selection.Connected)

	_, _, err = svc.InspectFile(context.Background(), nil, InspectFileInput{Path: "src/nope.ts"})
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)

	_, _, err = svc.InspectFile(context.Background(), nil, InspectFileInput{})
	assert.Error(t, err)
}

func TestGetDependencies(t *testing.T) {
	svc := analyzedService(t)
	ctx := context.Background()

	_, out, err := svc.GetDependencies(ctx, nil, GetDependenciesInput{Path: "src/types.ts"})
	require.NoError(t, err)
	reached := map[string]int{}
	for _, c := range out.Chains {
		reached[c.Nodes[len(c.Nodes)-1]] = c.Depth
	}
	assert.Equal(t, map[string]int{"src/App.tsx": 1, "src/lib/api.ts": 1, "src/main.tsx": 2}, reached)

	_, out, err = svc.GetDependencies(ctx, nil, GetDependenciesInput{Path: "src/main.tsx", Direction: "UPSTREAM", MaxDepth: 1})
	require.NoError(t, err)
	require.Len(t, out.Chains, 1)
	assert.Equal(t, []string{"src/main.tsx", "src/App.tsx"}, out.Chains[0].Nodes)

	_, out, err = svc.GetDependencies(ctx, nil, GetDependenciesInput{Path: "src/utils/cx.mjs"})
	require.NoError(t, err)
	assert.NotNil(t, out.Chains)
	assert.Empty(t, out.Chains)

	_, _, err = svc.GetDependencies(ctx, nil, GetDependenciesInput{Path: "src/nope.ts"})
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestAssessImpact(t *testing.T) {
	svc := analyzedService(t)

	_, out, err := svc.AssessImpact(context.Background(), nil, AssessImpactInput{ChangedFiles: []string{"src/types.ts"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/App.tsx", "src/lib/api.ts"}, out.Impact.DirectlyAffected)
	assert.Equal(t, []string{"src/App.tsx", "src/lib/api.ts", "src/main.tsx"}, out.Impact.TransitivelyAffected)
	assert.InDelta(t, 3.0/11.0, out.Impact.RiskScore, 1e-9)

	_, _, err = svc.AssessImpact(context.Background(), nil, AssessImpactInput{})
	assert.Error(t, err)
}

func TestGetClustersAndCycles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.ts":    `import './b'`,
		"src/b.ts":    `import './a'`,
		"src/self.ts": `import './self'`,
		"src/x.ts":    `import './y'`,
		"src/y.ts":    `export {}`,
	})
	svc := newService(t)
	_, _, err := svc.AnalyzeRepository(context.Background(), nil, AnalyzeRepositoryInput{RepoPath: root})
	require.NoError(t, err)

	_, cycles, err := svc.FindCycles(context.Background(), nil, FindCyclesInput{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"src/a.ts", "src/b.ts"}, {"src/self.ts"}}, cycles.Cycles)

	_, clusters, err := svc.GetClusters(context.Background(), nil, GetClustersInput{})
	require.NoError(t, err)
	require.Len(t, clusters.Clusters, 2)
	assert.Equal(t, []string{"src/a.ts", "src/b.ts"}, clusters.Clusters[0].Members)
	assert.Equal(t, []string{"src/x.ts", "src/y.ts"}, clusters.Clusters[1].Members)
}

func TestSetGraph_ComputesClusters(t *testing.T) {
	src := analyzedService(t)
	g, _, err := src.Graph()
	require.NoError(t, err)

	svc := newService(t)
	svc.SetGraph(g, nil)
	_, clusters, err := svc.Graph()
	require.NoError(t, err)
	assert.Len(t, clusters, 1)
}
