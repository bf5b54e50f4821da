package graph

import (
	"fmt"
	"sort"
	"strings"
)

// ComputeClusters groups files into the connected components of the import
// graph, treating edges as undirected. Components of a single file are not
// clusters.
//
// Algorithm:
//  1. Build an undirected adjacency list from IMPORTS edges.
//  2. Find connected components via BFS, starting from files in Paths order.
//  3. For each component with >= 2 files, score its density and name it by
//     the members' common directory.
func ComputeClusters(g *DependencyGraph) []ClusterNode {
	adj := buildAdjacency(g)

	visited := make(map[string]bool, len(g.Nodes))
	names := make(map[string]int)
	var clusters []ClusterNode

	for _, p := range g.Paths() {
		if visited[p] {
			continue
		}
		component := bfsComponent(p, adj, visited)
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)

		name := clusterName(component)
		names[name]++
		if n := names[name]; n > 1 {
			name = fmt.Sprintf("%s#%d", name, n)
		}

		clusters = append(clusters, ClusterNode{
			Name:          name,
			CohesionScore: computeCohesion(component, adj),
			Members:       component,
		})
	}
	return clusters
}

// buildAdjacency constructs a bidirectional adjacency list from IMPORTS edges
// in a single pass. Self-imports are ignored.
func buildAdjacency(g *DependencyGraph) map[string]map[string]bool {
	adj := make(map[string]map[string]bool, len(g.Nodes))
	for p := range g.Nodes {
		adj[p] = make(map[string]bool)
	}
	for _, e := range g.Edges {
		if e.Kind != "" && e.Kind != EdgeKindImports {
			continue
		}
		if e.Source == e.Target || adj[e.Source] == nil || adj[e.Target] == nil {
			continue
		}
		adj[e.Source][e.Target] = true
		adj[e.Target][e.Source] = true
	}
	return adj
}

// bfsComponent performs BFS from start on the adjacency list and returns
// all reachable nodes. It marks visited nodes as it goes.
func bfsComponent(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)

		neighbors := make([]string, 0, len(adj[node]))
		for nb := range adj[node] {
			neighbors = append(neighbors, nb)
		}
		sort.Strings(neighbors)
		for _, nb := range neighbors {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return component
}

// computeCohesion is the density of a component: undirected links between
// members divided by the number of possible member pairs. A chain scores
// low, a fully connected group scores 1.
func computeCohesion(component []string, adj map[string]map[string]bool) float64 {
	n := len(component)
	if n < 2 {
		return 0
	}
	links := 0
	for _, m := range component {
		for nb := range adj[m] {
			if m < nb {
				links++
			}
		}
	}
	return float64(links) / float64(n*(n-1)/2)
}

// clusterName is the members' longest common directory, or "(root)" when
// they share none.
func clusterName(members []string) string {
	name := strings.TrimSuffix(longestCommonPrefix(members), "/")
	if name == "" {
		return "(root)"
	}
	return name
}

// longestCommonPrefix finds the longest common path prefix among a set of
// file paths. Returns an empty string if no common prefix is found.
func longestCommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	if len(paths) == 1 {
		return parentDir(paths[0]) + "/"
	}

	prefix := paths[0]
	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			trimmed := strings.TrimRight(prefix, "/")
			idx := strings.LastIndex(trimmed, "/")
			if idx < 0 {
				return ""
			}
			prefix = trimmed[:idx+1]
		}
	}

	// Ensure prefix ends at a directory boundary.
	if !strings.HasSuffix(prefix, "/") {
		idx := strings.LastIndex(prefix, "/")
		if idx < 0 {
			return ""
		}
		prefix = prefix[:idx+1]
	}
	return prefix
}
