package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNodeNotFound is returned when a query names a path that is not a node.
var ErrNodeNotFound = errors.New("file not found in graph")

// Search returns the subgraph of files whose path or name contains query,
// case-insensitively. Edges are kept only when both ends match. An empty
// query returns the whole graph. Dependencies of the subgraph still resolve
// against every file of g, so Stats and Inspect count a file outside the
// match as resolved.
func (g *DependencyGraph) Search(query string) *DependencyGraph {
	q := strings.ToLower(strings.TrimSpace(query))
	out := NewDependencyGraph()
	out.known = g.knownNodes()
	for _, n := range g.Files() {
		if q != "" && !strings.Contains(strings.ToLower(n.Path), q) && !strings.Contains(strings.ToLower(n.Name), q) {
			continue
		}
		out.addNode(n)
	}
	for _, e := range g.Edges {
		_, src := out.Nodes[e.Source]
		_, dst := out.Nodes[e.Target]
		if src && dst {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// Inspect describes one file and the files it touches directly.
func (g *DependencyGraph) Inspect(path string) (*Selection, error) {
	n, ok := g.Nodes[path]
	if !ok {
		return nil, fmt.Errorf("inspect %q: %w", path, ErrNodeNotFound)
	}

	known := g.knownNodes()
	resolved := 0
	for _, dep := range n.Dependencies {
		if _, ok := probeNode(known, dep); ok {
			resolved++
		}
	}

	seen := map[string]bool{}
	var connected []string
	for _, e := range g.Edges {
		var other string
		switch path {
		case e.Source:
			other = e.Target
		case e.Target:
			other = e.Source
		default:
			continue
		}
		if other == path || seen[other] {
			continue
		}
		seen[other] = true
		connected = append(connected, other)
	}
	sort.Strings(connected)

	return &Selection{
		Path:                 n.Path,
		Name:                 n.Name,
		ResolvedDependencies: resolved,
		Dependents:           len(n.Dependents),
		Connected:            connected,
	}, nil
}

// Stats counts files, edges, unresolved dependency candidates and files
// with no edge at all.
func (g *DependencyGraph) Stats() GraphStats {
	touched := make(map[string]bool, len(g.Nodes))
	for _, e := range g.Edges {
		touched[e.Source] = true
		touched[e.Target] = true
	}

	known := g.knownNodes()
	s := GraphStats{FileCount: len(g.Nodes), EdgeCount: len(g.Edges)}
	for _, n := range g.Nodes {
		for _, dep := range n.Dependencies {
			if _, ok := probeNode(known, dep); !ok {
				s.UnresolvedCount++
			}
		}
		if !touched[n.Path] {
			s.IsolatedCount++
		}
	}
	return s
}

// Dependencies walks edges breadth-first from path, up to maxDepth hops, and
// returns one chain per reachable file. Upstream follows imports; downstream
// follows importers.
func (g *DependencyGraph) Dependencies(path string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	if _, ok := g.Nodes[path]; !ok {
		return nil, fmt.Errorf("dependencies of %q: %w", path, ErrNodeNotFound)
	}
	if direction != DirectionUpstream && direction != DirectionDownstream {
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
	if maxDepth <= 0 {
		return nil, nil
	}

	adj := g.adjacency(direction)

	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{path: true}
	queue := []bfsEntry{{id: path, path: []string{path}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []bfsEntry
		for _, entry := range queue {
			for _, nb := range adj[entry.id] {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				p := make([]string, len(entry.path), len(entry.path)+1)
				copy(p, entry.path)
				p = append(p, nb)
				chains = append(chains, DependencyChain{Nodes: p, Depth: len(p) - 1})
				next = append(next, bfsEntry{id: nb, path: p})
			}
		}
		queue = next
	}
	return chains, nil
}

// AssessImpact computes which files are affected when changed files change:
// their direct importers and the full importer closure. Changed files are
// never counted as affected. Unknown paths are ignored.
func (g *DependencyGraph) AssessImpact(changed []string) *ImpactResult {
	changedSet := make(map[string]bool, len(changed))
	for _, f := range changed {
		changedSet[f] = true
	}

	importers := g.adjacency(DirectionDownstream)

	direct := map[string]bool{}
	for f := range changedSet {
		for _, src := range importers[f] {
			if !changedSet[src] {
				direct[src] = true
			}
		}
	}

	all := make(map[string]bool, len(direct))
	frontier := make([]string, 0, len(direct))
	for f := range direct {
		all[f] = true
		frontier = append(frontier, f)
	}
	for len(frontier) > 0 {
		var next []string
		for _, f := range frontier {
			for _, src := range importers[f] {
				if changedSet[src] || all[src] {
					continue
				}
				all[src] = true
				next = append(next, src)
			}
		}
		frontier = next
	}

	res := &ImpactResult{
		DirectlyAffected:     setToSlice(direct),
		TransitivelyAffected: setToSlice(all),
	}
	if len(g.Nodes) > 0 {
		res.RiskScore = float64(len(all)) / float64(len(g.Nodes))
	}
	return res
}

// Cycles returns the import cycles of the graph: strongly connected
// components with more than one file, plus files importing themselves.
// Each cycle is sorted and the list is sorted by first member.
func (g *DependencyGraph) Cycles() [][]string {
	adj := g.adjacency(DirectionUpstream)
	selfLoop := map[string]bool{}
	for _, e := range g.Edges {
		if e.Source == e.Target {
			selfLoop[e.Source] = true
		}
	}

	// Tarjan's algorithm; strongConnect recurses, roots are visited in sorted order.
	index := 0
	indices := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var cycles [][]string

	var strongConnect func(v string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, ok := indices[w]; !ok {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] != indices[v] {
			return
		}
		var comp []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		if len(comp) > 1 || selfLoop[v] {
			sort.Strings(comp)
			cycles = append(cycles, comp)
		}
	}

	paths := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if _, ok := indices[p]; !ok {
			strongConnect(p)
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// adjacency maps each file to its one-hop neighbours in direction, in edge
// order.
func (g *DependencyGraph) adjacency(direction Direction) map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		if e.Kind != "" && e.Kind != EdgeKindImports {
			continue
		}
		if direction == DirectionDownstream {
			adj[e.Target] = append(adj[e.Target], e.Source)
		} else {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}
	return adj
}

// setToSlice converts a string set to a sorted slice.
func setToSlice(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
