package mcptools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/importgraph/internal/graph"
	"github.com/dusk-indust/importgraph/internal/source"
)

// ErrNoGraph is returned by query tools before any graph was analyzed or
// loaded.
var ErrNoGraph = errors.New("no graph: call analyze_repository first")

// defaultMaxDepth bounds get_dependencies when the caller gives no depth.
const defaultMaxDepth = 5

// GraphService holds the most recent graph and answers MCP tool calls
// against it. analyze_repository replaces the graph; every other tool reads
// it.
type GraphService struct {
	base graph.Options
	log  logrus.FieldLogger

	mu       sync.RWMutex
	g        *graph.DependencyGraph
	clusters []graph.ClusterNode
}

// NewGraphService creates a service whose analyses start from base. Include
// and Exclude are overridden per call when the tool input sets them.
func NewGraphService(base graph.Options, logger logrus.FieldLogger) *GraphService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &GraphService{base: base, log: logger.WithField("component", "mcp")}
}

// SetGraph installs g, for example one loaded from a persisted store.
// Clusters are recomputed when nil.
func (s *GraphService) SetGraph(g *graph.DependencyGraph, clusters []graph.ClusterNode) {
	if clusters == nil {
		clusters = graph.ComputeClusters(g)
	}
	s.mu.Lock()
	s.g, s.clusters = g, clusters
	s.mu.Unlock()
}

// Graph returns the current graph, or ErrNoGraph.
func (s *GraphService) Graph() (*graph.DependencyGraph, []graph.ClusterNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.g == nil {
		return nil, nil, ErrNoGraph
	}
	return s.g, s.clusters, nil
}

// AnalyzeRepository runs a fresh analysis and makes its graph current.
func (s *GraphService) AnalyzeRepository(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeRepositoryInput,
) (*mcp.CallToolResult, AnalyzeRepositoryOutput, error) {
	if input.RepoPath == "" {
		return nil, AnalyzeRepositoryOutput{}, fmt.Errorf("repoPath is required")
	}

	opts := s.base
	if len(input.Include) > 0 {
		opts.Include = input.Include
	}
	if len(input.Exclude) > 0 {
		opts.Exclude = input.Exclude
	}
	analyzer, err := graph.NewAnalyzer(opts)
	if err != nil {
		return nil, AnalyzeRepositoryOutput{}, err
	}

	var (
		acc    graph.Accessor
		commit string
	)
	if input.Rev != "" {
		repo, err := source.OpenGit(input.RepoPath, input.Rev)
		if err != nil {
			return nil, AnalyzeRepositoryOutput{}, err
		}
		acc, commit = repo, repo.Commit()
	} else {
		info, err := os.Stat(input.RepoPath)
		if err != nil {
			return nil, AnalyzeRepositoryOutput{}, fmt.Errorf("cannot access repoPath: %w", err)
		}
		if !info.IsDir() {
			return nil, AnalyzeRepositoryOutput{}, fmt.Errorf("repoPath is not a directory: %s", input.RepoPath)
		}
		acc = source.NewDir(input.RepoPath)
	}

	g, err := analyzer.Analyze(ctx, acc)
	if err != nil {
		return nil, AnalyzeRepositoryOutput{}, fmt.Errorf("analyze: %w", err)
	}
	clusters := graph.ComputeClusters(g)
	s.SetGraph(g, clusters)

	stats := g.Stats()
	stats.ClusterCount = len(clusters)
	s.log.WithFields(logrus.Fields{
		"repo":  input.RepoPath,
		"rev":   input.Rev,
		"files": stats.FileCount,
		"edges": stats.EdgeCount,
	}).Info("repository analyzed")

	return nil, AnalyzeRepositoryOutput{
		Stats:       stats,
		Commit:      commit,
		Diagnostics: len(g.Diagnostics),
	}, nil
}

// SearchFiles returns matching files and the edges among them.
func (s *GraphService) SearchFiles(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SearchFilesInput,
) (*mcp.CallToolResult, SearchFilesOutput, error) {
	g, _, err := s.Graph()
	if err != nil {
		return nil, SearchFilesOutput{}, err
	}
	sub := g.Search(input.Query)
	out := SearchFilesOutput{Files: sub.Paths(), Edges: sub.Edges}
	if out.Edges == nil {
		out.Edges = []graph.Edge{}
	}
	return nil, out, nil
}

// InspectFile describes one file and its direct neighbours.
func (s *GraphService) InspectFile(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input InspectFileInput,
) (*mcp.CallToolResult, InspectFileOutput, error) {
	if input.Path == "" {
		return nil, InspectFileOutput{}, fmt.Errorf("path is required")
	}
	g, _, err := s.Graph()
	if err != nil {
		return nil, InspectFileOutput{}, err
	}
	sel, err := g.Inspect(input.Path)
	if err != nil {
		return nil, InspectFileOutput{}, err
	}
	if sel.Connected == nil {
		sel.Connected = []string{}
	}
	return nil, InspectFileOutput{Selection: *sel}, nil
}

// GetDependencies traverses the graph from a file.
func (s *GraphService) GetDependencies(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.Path == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("path is required")
	}
	g, _, err := s.Graph()
	if err != nil {
		return nil, GetDependenciesOutput{}, err
	}

	direction := graph.DirectionDownstream
	if strings.EqualFold(input.Direction, string(graph.DirectionUpstream)) {
		direction = graph.DirectionUpstream
	}
	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	chains, err := g.Dependencies(input.Path, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, err
	}
	if chains == nil {
		chains = []graph.DependencyChain{}
	}
	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// AssessImpact computes the blast radius of modifying a set of files.
func (s *GraphService) AssessImpact(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.ChangedFiles) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("changedFiles is required")
	}
	g, _, err := s.Graph()
	if err != nil {
		return nil, AssessImpactOutput{}, err
	}
	return nil, AssessImpactOutput{Impact: *g.AssessImpact(input.ChangedFiles)}, nil
}

// GetClusters returns the clusters of the current graph.
func (s *GraphService) GetClusters(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	_, clusters, err := s.Graph()
	if err != nil {
		return nil, GetClustersOutput{}, err
	}
	if clusters == nil {
		clusters = []graph.ClusterNode{}
	}
	return nil, GetClustersOutput{Clusters: clusters}, nil
}

// FindCycles lists import cycles.
func (s *GraphService) FindCycles(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ FindCyclesInput,
) (*mcp.CallToolResult, FindCyclesOutput, error) {
	g, _, err := s.Graph()
	if err != nil {
		return nil, FindCyclesOutput{}, err
	}
	cycles := g.Cycles()
	if cycles == nil {
		cycles = [][]string{}
	}
	return nil, FindCyclesOutput{Cycles: cycles}, nil
}
