package graph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds concurrent ReadFile calls.
const DefaultConcurrency = 8

// ExtractionCache stores raw specifiers keyed by extractor and content hash.
// Implementations live in internal/cache and must be safe for concurrent use.
type ExtractionCache interface {
	Get(key string) ([]string, bool)
	Put(key string, specifiers []string)
}

// Recorder receives analysis measurements. internal/metrics implements it.
type Recorder interface {
	ObserveAnalysis(d time.Duration, files, edges int)
	AccessorFailure(op DiagnosticOp)
	CacheLookup(hit bool)
}

// Options configures an Analyzer.
type Options struct {
	// RootPath is scanned only when Include is empty.
	RootPath string
	// Include lists the directories to scan, in order.
	Include []string
	// Exclude lists substrings (or globs) of paths to skip.
	Exclude []string
	// AliasBase is where @/ and ~/ specifiers point. Empty means DefaultAliasBase.
	AliasBase string
	// Concurrency bounds parallel file reads. <= 0 means DefaultConcurrency.
	Concurrency int

	Extractor Extractor
	Cache     ExtractionCache
	Recorder  Recorder
	Logger    logrus.FieldLogger
}

// DefaultOptions mirrors the defaults of the original analyzer: scan src,
// skip dependency and build directories.
func DefaultOptions() Options {
	return Options{
		Include:   []string{"src"},
		Exclude:   append([]string(nil), DefaultExcludePatterns...),
		AliasBase: DefaultAliasBase,
	}
}

// Analyzer builds a DependencyGraph from an Accessor. An Analyzer holds no
// per-run state and may be used by several goroutines at once.
type Analyzer struct {
	opts    Options
	exclude *excludeMatcher
	log     logrus.FieldLogger
}

// NewAnalyzer validates opts and returns an Analyzer.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	m, err := newExcludeMatcher(opts.Exclude)
	if err != nil {
		return nil, err
	}
	if opts.AliasBase == "" {
		opts.AliasBase = DefaultAliasBase
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Extractor == nil {
		opts.Extractor = RegexExtractor{}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Analyzer{
		opts:    opts,
		exclude: m,
		log:     log.WithField("component", "analyzer"),
	}, nil
}

// Options returns the effective options.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Excluded reports whether a slash-separated path relative to the project
// root matches one of the exclude patterns.
func (a *Analyzer) Excluded(path string) bool {
	return a.exclude.excluded(path)
}

// fileResult is the outcome of reading and extracting one discovered file.
type fileResult struct {
	read       bool
	empty      bool
	specifiers []string
	err        error
}

// Analyze discovers files through acc and builds the import graph.
//
// Accessor failures never fail the run; they are recorded as diagnostics.
// Files that read back empty are left out of the graph.
// The only error returned is the context's.
func (a *Analyzer) Analyze(ctx context.Context, acc Accessor) (*DependencyGraph, error) {
	start := time.Now()
	g := NewDependencyGraph()

	paths, err := a.discover(ctx, acc, g)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(paths))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(a.opts.Concurrency)
	for i, p := range paths {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			content, err := acc.ReadFile(egctx, p)
			if err != nil {
				results[i] = fileResult{err: err}
				return nil
			}
			if content == "" {
				results[i] = fileResult{read: true, empty: true}
				return nil
			}
			results[i] = fileResult{read: true, specifiers: a.extract(p, content)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, p := range paths {
		res := results[i]
		if !res.read {
			a.skip(g, OpReadFile, p, res.err)
			continue
		}
		// Empty files are dropped silently and never become edge targets.
		if res.empty {
			continue
		}
		g.addNode(&FileNode{
			ID:           p,
			Path:         p,
			Name:         FileName(p),
			Dependencies: a.resolveAll(p, res.specifiers),
			Dependents:   []string{},
		})
	}

	linkEdges(g)

	elapsed := time.Since(start)
	if a.opts.Recorder != nil {
		a.opts.Recorder.ObserveAnalysis(elapsed, len(g.Nodes), len(g.Edges))
	}
	a.log.WithFields(logrus.Fields{
		"files":       len(g.Nodes),
		"edges":       len(g.Edges),
		"diagnostics": len(g.Diagnostics),
		"elapsed":     elapsed.String(),
	}).Debug("analysis complete")

	return g, nil
}

// discover walks every include root (or RootPath) and returns analyzable
// file paths in traversal order, each at most once.
func (a *Analyzer) discover(ctx context.Context, acc Accessor, g *DependencyGraph) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	var walk func(dir string) error
	walk = func(dir string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := acc.ReadDir(ctx, dir)
		if err != nil {
			a.skip(g, OpReadDir, dir, err)
			return nil
		}
		for _, entry := range entries {
			full := joinPath(dir, entry.Name)
			if a.exclude.excluded(full) {
				continue
			}
			if entry.IsDirectory {
				if err := walk(full); err != nil {
					return err
				}
				continue
			}
			if ShouldAnalyzeFile(entry.Name) && !seen[full] {
				seen[full] = true
				files = append(files, full)
			}
		}
		return nil
	}

	roots := a.opts.Include
	if len(roots) == 0 {
		roots = []string{a.opts.RootPath}
	}
	for _, root := range roots {
		if err := walk(normalizeDir(root)); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// extract runs the extractor, consulting the cache when one is configured.
func (a *Analyzer) extract(path, content string) []string {
	data := []byte(content)
	if a.opts.Cache == nil {
		return a.opts.Extractor.Extract(path, data)
	}

	key := ExtractionKey(a.opts.Extractor.Name(), path, data)
	if specs, ok := a.opts.Cache.Get(key); ok {
		a.recordCache(true)
		return specs
	}
	a.recordCache(false)
	specs := a.opts.Extractor.Extract(path, data)
	a.opts.Cache.Put(key, specs)
	return specs
}

func (a *Analyzer) recordCache(hit bool) {
	if a.opts.Recorder != nil {
		a.opts.Recorder.CacheLookup(hit)
	}
}

// resolveAll maps specifiers to candidate paths, dropping duplicates that
// two different specifiers resolve to.
func (a *Analyzer) resolveAll(from string, specifiers []string) []string {
	deps := make([]string, 0, len(specifiers))
	seen := make(map[string]bool, len(specifiers))
	for _, spec := range specifiers {
		candidate := ResolveImportPath(from, spec, a.opts.AliasBase)
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		deps = append(deps, candidate)
	}
	return deps
}

func (a *Analyzer) skip(g *DependencyGraph, op DiagnosticOp, path string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	g.Diagnostics = append(g.Diagnostics, Diagnostic{Op: op, Path: path, Message: msg})
	if a.opts.Recorder != nil {
		a.opts.Recorder.AccessorFailure(op)
	}
	a.log.WithFields(logrus.Fields{"op": op, "path": path}).WithError(err).Debug("skipped")
}

// linkEdges resolves every node's dependency candidates against the node set,
// emitting one edge per distinct (source, target) pair and filling Dependents.
func linkEdges(g *DependencyGraph) {
	seen := make(map[Edge]bool)
	for _, src := range g.Paths() {
		node := g.Nodes[src]
		for _, dep := range node.Dependencies {
			target, ok := probeNode(g.Nodes, dep)
			if !ok {
				continue
			}
			e := Edge{Source: src, Target: target, Kind: EdgeKindImports}
			if seen[e] {
				continue
			}
			seen[e] = true
			g.Edges = append(g.Edges, e)
			g.Nodes[target].addDependent(src)
		}
	}
}

// ExtractionKey builds the cache key for one file's extraction result. The
// path's extension is part of the key because extractors pick grammars by it.
func ExtractionKey(extractor, path string, content []byte) string {
	sum := sha256.Sum256(content)
	ext := ""
	name := FileName(path)
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i:]
	}
	return fmt.Sprintf("%s%s:%s", extractor, ext, hex.EncodeToString(sum[:]))
}

// normalizeDir turns user input like "./src/" into "src"; "." becomes "".
func normalizeDir(dir string) string {
	dir = strings.TrimSpace(dir)
	dir = strings.TrimPrefix(dir, "./")
	dir = strings.TrimRight(dir, "/")
	if dir == "." {
		return ""
	}
	return dir
}
