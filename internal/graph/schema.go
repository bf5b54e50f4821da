package graph

import "sort"

// --- Enums ---

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	EdgeKindImports EdgeKind = "IMPORTS"
	EdgeKindBelongs EdgeKind = "BELONGS"
)

// DiagnosticOp names the accessor call that was skipped.
type DiagnosticOp string

const (
	OpReadDir  DiagnosticOp = "readdir"
	OpReadFile DiagnosticOp = "readfile"
)

// --- Models ---

// FileNode represents one discovered, successfully read source file.
type FileNode struct {
	ID           string   `json:"id" yaml:"id"`
	Path         string   `json:"path" yaml:"path"`
	Name         string   `json:"name" yaml:"name"`
	Dependencies []string `json:"dependencies" yaml:"dependencies"` // resolved candidates, not yet verified
	Dependents   []string `json:"dependents" yaml:"dependents"`     // files importing this one
}

// addDependent records src as a dependent, keeping set semantics.
func (n *FileNode) addDependent(src string) {
	for _, d := range n.Dependents {
		if d == src {
			return
		}
	}
	n.Dependents = append(n.Dependents, src)
}

// Edge represents a resolved import from Source to Target.
type Edge struct {
	Source string   `json:"source" yaml:"source"`
	Target string   `json:"target" yaml:"target"`
	Kind   EdgeKind `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Diagnostic records an accessor call that failed and was skipped.
type Diagnostic struct {
	Op      DiagnosticOp `json:"op" yaml:"op"`
	Path    string       `json:"path" yaml:"path"`
	Message string       `json:"message" yaml:"message"`
}

// DependencyGraph is the result of one analysis pass.
type DependencyGraph struct {
	Nodes       map[string]*FileNode `json:"nodes" yaml:"-"`
	Edges       []Edge               `json:"edges" yaml:"edges"`
	Diagnostics []Diagnostic         `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	order []string // discovery order of Nodes

	// known is the node set dependencies resolve against. Search subgraphs
	// point it at the full graph; nil means Nodes.
	known map[string]*FileNode
}

// knownNodes returns the node set dependency candidates resolve against.
func (g *DependencyGraph) knownNodes() map[string]*FileNode {
	if g.known != nil {
		return g.known
	}
	return g.Nodes
}

// NewDependencyGraph returns an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{Nodes: make(map[string]*FileNode)}
}

// addNode inserts n unless a node with the same path exists. It reports
// whether the node was added.
func (g *DependencyGraph) addNode(n *FileNode) bool {
	if _, ok := g.Nodes[n.Path]; ok {
		return false
	}
	g.Nodes[n.Path] = n
	g.order = append(g.order, n.Path)
	return true
}

// Node returns the node for path.
func (g *DependencyGraph) Node(path string) (*FileNode, bool) {
	n, ok := g.Nodes[path]
	return n, ok
}

// Paths returns node paths in discovery order. Graphs built outside an
// analysis pass (decoded JSON, loaded from a store) fall back to sorted order.
func (g *DependencyGraph) Paths() []string {
	if len(g.order) == len(g.Nodes) {
		out := make([]string, len(g.order))
		copy(out, g.order)
		return out
	}
	out := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Files returns nodes in the order of Paths.
func (g *DependencyGraph) Files() []*FileNode {
	paths := g.Paths()
	out := make([]*FileNode, 0, len(paths))
	for _, p := range paths {
		out = append(out, g.Nodes[p])
	}
	return out
}

// Len returns the number of nodes.
func (g *DependencyGraph) Len() int {
	return len(g.Nodes)
}

// Empty reports whether analysis found no analyzable files.
func (g *DependencyGraph) Empty() bool {
	return len(g.Nodes) == 0
}

// GraphStats summarizes a dependency graph.
type GraphStats struct {
	FileCount       int `json:"fileCount" yaml:"fileCount"`
	EdgeCount       int `json:"edgeCount" yaml:"edgeCount"`
	UnresolvedCount int `json:"unresolvedCount" yaml:"unresolvedCount"`
	IsolatedCount   int `json:"isolatedCount" yaml:"isolatedCount"`
	ClusterCount    int `json:"clusterCount,omitempty" yaml:"clusterCount,omitempty"`
}

// ClusterNode represents a group of connected files.
type ClusterNode struct {
	Name          string   `json:"name" yaml:"name"`
	CohesionScore float64  `json:"cohesionScore" yaml:"cohesionScore"`
	Members       []string `json:"members" yaml:"members"` // file paths
}

// DependencyChain is an ordered sequence of files forming a dependency path.
type DependencyChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// ImpactResult describes the blast radius of changing a set of files.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // files that import changed files
	TransitivelyAffected []string `json:"transitivelyAffected"` // full dependent closure
	RiskScore            float64  `json:"riskScore"`            // 0.0–1.0, share of files affected
}

// Selection describes one file and its immediate neighbourhood.
type Selection struct {
	Path                 string   `json:"path"`
	Name                 string   `json:"name"`
	ResolvedDependencies int      `json:"resolvedDependencies"`
	Dependents           int      `json:"dependents"`
	Connected            []string `json:"connected"`
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what does this depend on?
	DirectionDownstream Direction = "downstream" // what depends on this?
)
