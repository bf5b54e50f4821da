package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeClusters_NoEdges(t *testing.T) {
	// Three files with no IMPORTS edges between them.
	// Each file is a singleton component (size < 2), so zero clusters.
	g := buildGraph(t, []string{"src/pkg/a.ts", "src/pkg/b.ts", "src/pkg/c.ts"}, nil)

	assert.Empty(t, ComputeClusters(g), "expected zero clusters when there are no edges")
}

func TestComputeClusters_OnePair(t *testing.T) {
	// Only A→B has an edge. C is a singleton and gets skipped.
	g := buildGraph(t,
		[]string{"src/pkg/a.ts", "src/pkg/b.ts", "src/pkg/c.ts"},
		map[string][]string{"src/pkg/a.ts": {"src/pkg/b"}})

	clusters := ComputeClusters(g)
	require.Len(t, clusters, 1, "expected exactly one cluster")
	assert.Equal(t, []string{"src/pkg/a.ts", "src/pkg/b.ts"}, clusters[0].Members)
	assert.Equal(t, "src/pkg", clusters[0].Name)
	assert.InDelta(t, 1.0, clusters[0].CohesionScore, 1e-9)
}

func TestComputeClusters_TwoGroups(t *testing.T) {
	g := buildGraph(t,
		[]string{"src/auth/a.ts", "src/auth/b.ts", "src/ui/x.tsx", "src/ui/y.tsx", "src/ui/z.tsx"},
		map[string][]string{
			"src/auth/a.ts": {"src/auth/b"},
			"src/ui/x.tsx":  {"src/ui/y"},
			"src/ui/z.tsx":  {"src/ui/y"},
		})

	clusters := ComputeClusters(g)
	require.Len(t, clusters, 2)

	assert.Equal(t, "src/auth", clusters[0].Name)
	assert.Equal(t, []string{"src/auth/a.ts", "src/auth/b.ts"}, clusters[0].Members)

	assert.Equal(t, "src/ui", clusters[1].Name)
	assert.Equal(t, []string{"src/ui/x.tsx", "src/ui/y.tsx", "src/ui/z.tsx"}, clusters[1].Members)
}

func TestComputeClusters_CohesionScore(t *testing.T) {
	// Chain a-b-c has 2 of 3 possible links; triangle d-e-f has all 3.
	g := buildGraph(t,
		[]string{"src/c1/a.ts", "src/c1/b.ts", "src/c1/c.ts", "src/c2/d.ts", "src/c2/e.ts", "src/c2/f.ts"},
		map[string][]string{
			"src/c1/a.ts": {"src/c1/b"},
			"src/c1/b.ts": {"src/c1/c"},
			"src/c2/d.ts": {"src/c2/e", "src/c2/f"},
			"src/c2/e.ts": {"src/c2/f", "src/c2/d"},
		})

	clusters := ComputeClusters(g)
	require.Len(t, clusters, 2)
	assert.InDelta(t, 2.0/3.0, clusters[0].CohesionScore, 1e-9)
	assert.InDelta(t, 1.0, clusters[1].CohesionScore, 1e-9)
}

func TestComputeClusters_ClusterNames(t *testing.T) {
	g := buildGraph(t,
		[]string{"a.ts", "b.ts", "src/x/one.ts", "lib/two.ts", "src/y/p.ts", "src/y/q.ts"},
		map[string][]string{
			"a.ts":         {"b"},
			"src/x/one.ts": {"lib/two"},
			"src/y/p.ts":   {"src/y/q"},
		})

	clusters := ComputeClusters(g)
	require.Len(t, clusters, 3)
	assert.Equal(t, "(root)", clusters[0].Name)
	assert.Equal(t, "(root)#2", clusters[1].Name)
	assert.Equal(t, "src/y", clusters[2].Name)
}

func TestComputeClusters_SelfImportIsNotACluster(t *testing.T) {
	g := buildGraph(t, []string{"src/a.ts"}, map[string][]string{"src/a.ts": {"src/a"}})
	assert.Empty(t, ComputeClusters(g))
}

func TestLongestCommonPrefix(t *testing.T) {
	assert.Equal(t, "src/pkg/", longestCommonPrefix([]string{"src/pkg/a.ts", "src/pkg/b.ts"}))
	assert.Equal(t, "src/", longestCommonPrefix([]string{"src/pkg/a.ts", "src/pkgs/b.ts"}))
	assert.Equal(t, "", longestCommonPrefix([]string{"a.ts", "src/b.ts"}))
	assert.Equal(t, "src/", longestCommonPrefix([]string{"src/a.ts"}))
	assert.Equal(t, "", longestCommonPrefix(nil))
}
