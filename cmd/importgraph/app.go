package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/dusk-indust/importgraph/internal/cache"
	"github.com/dusk-indust/importgraph/internal/config"
	"github.com/dusk-indust/importgraph/internal/graph"
	"github.com/dusk-indust/importgraph/internal/metrics"
	"github.com/dusk-indust/importgraph/internal/source"
)

// app carries the state shared by every subcommand: flags, configuration
// and the lazily opened extraction cache.
type app struct {
	projectDir string
	configPath string
	logLevel   string
	noCache    bool

	cfg      *config.Config
	recorder *metrics.Recorder
	cache    cache.Cache
}

func (a *app) init() error {
	root, err := filepath.Abs(a.projectDir)
	if err != nil {
		return fmt.Errorf("resolve project root: %w", err)
	}
	a.projectDir = root

	cfg, err := config.Load(a.configPath, root)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.noCache {
		cfg.Cache.Enabled = false
	}
	a.cfg = cfg
	a.recorder = metrics.New()

	return configureLogging(cfg.Logging)
}

func configureLogging(cfg config.LoggingConfig) error {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("%w: %q", config.ErrInvalidLogLevel, cfg.Level)
	}
	logger.SetLevel(level)
	logger.SetOutput(os.Stderr)
	if cfg.Format == "json" {
		logger.SetFormatter(&logger.JSONFormatter{})
	} else {
		logger.SetFormatter(&logger.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func (a *app) close() error {
	if a.cache == nil {
		return nil
	}
	err := a.cache.Close()
	a.cache = nil
	return err
}

// projectPath resolves a configured path against the project root.
func (a *app) projectPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.projectDir, p)
}

// openCache builds the LRU tier and, when possible, the Badger tier behind
// it. A Badger directory held by another process degrades to LRU only.
func (a *app) openCache() (cache.Cache, error) {
	if a.cache != nil || !a.cfg.Cache.Enabled {
		return a.cache, nil
	}
	hot, err := cache.NewLRU(a.cfg.Cache.Size)
	if err != nil {
		return nil, err
	}
	a.cache = hot

	if a.cfg.Cache.Directory == "" {
		return a.cache, nil
	}
	dir := a.projectPath(a.cfg.Cache.Directory)
	warm, err := cache.OpenBadger(cache.BadgerConfig{Dir: dir, Logger: logger.StandardLogger()})
	if err != nil {
		logger.WithError(err).WithField("dir", dir).Warn("persistent cache unavailable, using memory only")
		return a.cache, nil
	}
	a.cache = cache.NewTiered(hot, warm)
	return a.cache, nil
}

// analysisOptions assembles analyzer options from config plus the wired
// extractor, cache, recorder and logger.
func (a *app) analysisOptions() (graph.Options, error) {
	opts := a.cfg.AnalysisOptions()
	if a.cfg.Analysis.Parser == config.ParserTreeSitter {
		opts.Extractor = graph.NewTreeSitterExtractor()
	}
	c, err := a.openCache()
	if err != nil {
		return graph.Options{}, err
	}
	if c != nil {
		opts.Cache = c
	}
	opts.Recorder = a.recorder
	opts.Logger = logger.StandardLogger()
	return opts, nil
}

func (a *app) newAnalyzer() (*graph.Analyzer, error) {
	opts, err := a.analysisOptions()
	if err != nil {
		return nil, err
	}
	return graph.NewAnalyzer(opts)
}

// accessor reads the working tree, or the tree of rev when set.
func (a *app) accessor(rev string) (graph.Accessor, string, error) {
	if rev == "" {
		return source.NewDir(a.projectDir), "", nil
	}
	repo, err := source.OpenGit(a.projectDir, rev)
	if err != nil {
		return nil, "", err
	}
	return repo, repo.Commit(), nil
}

// analyze runs one analysis of the working tree or of rev.
func (a *app) analyze(ctx context.Context, rev string) (*graph.DependencyGraph, string, error) {
	analyzer, err := a.newAnalyzer()
	if err != nil {
		return nil, "", err
	}
	acc, commit, err := a.accessor(rev)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	g, err := analyzer.Analyze(ctx, acc)
	if err != nil {
		return nil, "", err
	}
	logger.WithFields(logger.Fields{
		"files":       g.Len(),
		"edges":       len(g.Edges),
		"diagnostics": len(g.Diagnostics),
		"duration":    time.Since(start).String(),
	}).Debug("analysis finished")
	return g, commit, nil
}

// graphFor returns the graph query commands operate on: the persisted one
// when stored is set, a fresh analysis otherwise.
func (a *app) graphFor(ctx context.Context, stored bool, rev string) (*graph.DependencyGraph, []graph.ClusterNode, error) {
	if !stored {
		g, _, err := a.analyze(ctx, rev)
		if err != nil {
			return nil, nil, err
		}
		return g, graph.ComputeClusters(g), nil
	}

	if a.cfg.Store.Path == "" {
		return nil, nil, errors.New("store.path is not configured")
	}
	path := a.projectPath(a.cfg.Store.Path)
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("no stored graph at %s; run 'importgraph analyze' first", path)
	}
	store, err := graph.OpenFileStore(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("open graph store: %w", err)
	}
	defer store.Close()
	return graph.Load(ctx, store)
}

func (a *app) storeExists() bool {
	if a.cfg.Store.Path == "" {
		return false
	}
	_, err := os.Stat(a.projectPath(a.cfg.Store.Path))
	return err == nil
}

// persist writes g to the configured store. Builds without cgo skip it.
func (a *app) persist(ctx context.Context, g *graph.DependencyGraph, clusters []graph.ClusterNode) error {
	if a.cfg.Store.Path == "" {
		return nil
	}
	path := a.projectPath(a.cfg.Store.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	store, err := graph.OpenFileStore(ctx, path)
	if errors.Is(err, graph.ErrStoreUnavailable) {
		logger.Debug("graph store not available in this build, skipping persist")
		return nil
	}
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	defer store.Close()

	if err := graph.Persist(ctx, store, g, clusters); err != nil {
		return err
	}
	logger.WithField("path", path).Debug("graph persisted")
	return nil
}

// serveMetrics exposes the recorder on metrics.addr until ctx is done.
func (a *app) serveMetrics(ctx context.Context) {
	addr := a.cfg.Metrics.Addr
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.recorder.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.WithField("addr", addr).Info("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
