// Package watch re-runs import analysis when source files under a project
// root change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/importgraph/internal/graph"
)

// DefaultDebounce is how long the watcher waits for more events before
// re-analyzing.
const DefaultDebounce = 200 * time.Millisecond

// alwaysIgnored directories are never watched, regardless of excludes.
var alwaysIgnored = []string{".git", ".importgraph"}

// Handler receives each new graph together with the analyzable paths
// (relative, slash-separated) whose change triggered it. The first call
// carries the initial graph and no changes.
type Handler func(g *graph.DependencyGraph, changed []string)

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   logrus.FieldLogger
}

// Watcher watches a directory tree and re-analyzes it on change.
//
// Events are batched: analysis runs once the tree has been quiet for the
// debounce window. Paths the analyzer excludes are neither watched nor
// reported. The handler is called from the goroutine running Run.
type Watcher struct {
	root     string
	analyzer *graph.Analyzer
	acc      graph.Accessor
	handler  Handler
	debounce time.Duration
	log      logrus.FieldLogger

	fsw *fsnotify.Watcher
}

// New creates a watcher over root. acc must read the same tree, typically
// source.NewDir(root).
func New(root string, analyzer *graph.Analyzer, acc graph.Accessor, handler Handler, opts Options) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: handler is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Watcher{
		root:     abs,
		analyzer: analyzer,
		acc:      acc,
		handler:  handler,
		debounce: opts.Debounce,
		log:      log.WithField("component", "watch"),
		fsw:      fsw,
	}, nil
}

// Run analyzes once, then blocks re-analyzing on change until ctx is done.
// It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.addRecursive(w.root, nil); err != nil {
		return err
	}
	if err := w.analyze(ctx, nil); err != nil {
		return ignoreCanceled(err)
	}

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time
	schedule := func(rel string) {
		pending[rel] = true
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			rel, ok := w.relative(event.Name)
			if !ok || w.ignored(rel) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// Files may land in a new directory before it is watched.
					if err := w.addRecursive(event.Name, schedule); err != nil {
						w.log.WithError(err).WithField("path", rel).Warn("cannot watch new directory")
					}
					continue
				}
			}
			if !graph.ShouldAnalyzeFile(graph.FileName(rel)) {
				continue
			}
			schedule(rel)

		case <-timerC:
			timer, timerC = nil, nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			if err := w.analyze(ctx, changed); err != nil {
				return ignoreCanceled(err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) analyze(ctx context.Context, changed []string) error {
	start := time.Now()
	g, err := w.analyzer.Analyze(ctx, w.acc)
	if err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{
		"files":    g.Len(),
		"edges":    len(g.Edges),
		"changed":  len(changed),
		"duration": time.Since(start).String(),
	}).Info("graph updated")
	w.handler(g, changed)
	return nil
}

// addRecursive watches dir and every non-ignored directory below it.
// found, when set, receives the analyzable files met on the way.
func (w *Watcher) addRecursive(dir string, found func(rel string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, ok := w.relative(path)
		if !ok {
			return nil
		}
		if !d.IsDir() {
			if found != nil && !w.ignored(rel) && graph.ShouldAnalyzeFile(d.Name()) {
				found(rel)
			}
			return nil
		}
		if rel != "" && w.ignored(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// relative converts an absolute event path to a slash path under root.
func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) ignored(rel string) bool {
	first, _, _ := strings.Cut(rel, "/")
	for _, dir := range alwaysIgnored {
		if first == dir {
			return true
		}
	}
	return w.analyzer.Excluded(rel)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
