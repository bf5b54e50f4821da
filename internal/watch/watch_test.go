package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/importgraph/internal/graph"
	"github.com/dusk-indust/importgraph/internal/source"
)

type update struct {
	g       *graph.DependencyGraph
	changed []string
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// startWatcher runs a watcher over root and returns the update stream.
func startWatcher(t *testing.T, root string) <-chan update {
	t.Helper()
	a, err := graph.NewAnalyzer(graph.DefaultOptions())
	require.NoError(t, err)

	updates := make(chan update, 16)
	log, _ := test.NewNullLogger()
	w, err := New(root, a, source.NewDir(root), func(g *graph.DependencyGraph, changed []string) {
		updates <- update{g: g, changed: changed}
	}, Options{Debounce: 20 * time.Millisecond, Logger: log})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return updates
}

func next(t *testing.T, updates <-chan update) update {
	t.Helper()
	select {
	case u := <-updates:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for graph update")
		return update{}
	}
}

func TestWatcher_InitialAndChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", `import './b'`)
	writeFile(t, root, "src/b.ts", `export {}`)

	updates := startWatcher(t, root)

	first := next(t, updates)
	assert.Nil(t, first.changed)
	assert.Equal(t, 2, first.g.Len())
	assert.Len(t, first.g.Edges, 1)

	writeFile(t, root, "src/c.ts", `import './a'`)

	second := next(t, updates)
	assert.Equal(t, []string{"src/c.ts"}, second.changed)
	assert.Equal(t, 3, second.g.Len())
	assert.Len(t, second.g.Edges, 2)
}

func TestWatcher_IgnoresNonSourceAndExcluded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", `export {}`)
	writeFile(t, root, "src/node_modules/x/index.js", `export {}`)

	updates := startWatcher(t, root)
	next(t, updates)

	writeFile(t, root, "src/notes.md", "# notes")
	writeFile(t, root, "src/node_modules/x/index.js", `import './y'`)

	select {
	case u := <-updates:
		t.Fatalf("unexpected update for %v", u.changed)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_NewDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", `import './lib/b'`)

	updates := startWatcher(t, root)
	first := next(t, updates)
	assert.Empty(t, first.g.Edges)

	writeFile(t, root, "src/lib/b.ts", `export {}`)

	var u update
	for u.g == nil || u.g.Len() < 2 {
		u = next(t, updates)
	}
	assert.Contains(t, u.changed, "src/lib/b.ts")
	assert.Len(t, u.g.Edges, 1)
}

func TestNew_RequiresHandler(t *testing.T) {
	a, err := graph.NewAnalyzer(graph.DefaultOptions())
	require.NoError(t, err)
	_, err = New(t.TempDir(), a, source.NewDir(t.TempDir()), nil, Options{})
	assert.Error(t, err)
}

func TestWatcher_Relative(t *testing.T) {
	a, err := graph.NewAnalyzer(graph.DefaultOptions())
	require.NoError(t, err)
	root := t.TempDir()
	w, err := New(root, a, source.NewDir(root), func(*graph.DependencyGraph, []string) {}, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	rel, ok := w.relative(filepath.Join(root, "src", "a.ts"))
	assert.True(t, ok)
	assert.Equal(t, "src/a.ts", rel)

	_, ok = w.relative(filepath.Dir(root))
	assert.False(t, ok)

	assert.True(t, w.ignored(".git/HEAD"))
	assert.True(t, w.ignored(".importgraph/graph"))
	assert.True(t, w.ignored("src/dist/x.js"))
	assert.False(t, w.ignored("src/a.ts"))
}
