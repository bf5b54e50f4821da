package graph

import (
	"context"
	"fmt"
)

// Persist replaces the contents of store with g and its clusters. Cluster
// membership is written as BELONGS edges from each member file.
func Persist(ctx context.Context, store Store, g *DependencyGraph, clusters []ClusterNode) error {
	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("persist: reset: %w", err)
	}
	for _, n := range g.Files() {
		if err := store.AddFile(ctx, *n); err != nil {
			return fmt.Errorf("persist: file %s: %w", n.Path, err)
		}
	}
	for _, e := range g.Edges {
		e.Kind = EdgeKindImports
		if err := store.AddEdge(ctx, e); err != nil {
			return fmt.Errorf("persist: edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}
	for _, c := range clusters {
		if err := store.AddCluster(ctx, c); err != nil {
			return fmt.Errorf("persist: cluster %s: %w", c.Name, err)
		}
		for _, m := range c.Members {
			if err := store.AddEdge(ctx, Edge{Source: m, Target: c.Name, Kind: EdgeKindBelongs}); err != nil {
				return fmt.Errorf("persist: cluster %s member %s: %w", c.Name, m, err)
			}
		}
	}
	return nil
}

// Load rebuilds a graph from store. Node order and edge order follow
// insertion order; dependents are recomputed from the IMPORTS edges.
func Load(ctx context.Context, store Store) (*DependencyGraph, []ClusterNode, error) {
	files, err := store.ListFiles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load: files: %w", err)
	}
	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load: edges: %w", err)
	}
	clusters, err := store.GetClusters(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load: clusters: %w", err)
	}

	g := NewDependencyGraph()
	for _, f := range files {
		n := f
		if n.ID == "" {
			n.ID = n.Path
		}
		if n.Dependencies == nil {
			n.Dependencies = []string{}
		}
		n.Dependents = []string{}
		g.addNode(&n)
	}
	for _, e := range edges {
		if e.Kind != EdgeKindImports {
			continue
		}
		target, ok := g.Nodes[e.Target]
		if _, src := g.Nodes[e.Source]; !ok || !src {
			continue
		}
		g.Edges = append(g.Edges, e)
		target.addDependent(e.Source)
	}
	return g, clusters, nil
}
