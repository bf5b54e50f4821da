package mcptools

import "github.com/dusk-indust/importgraph/internal/graph"

// --- MCP Tool Input Types ---
// The MCP Go SDK generates JSON schemas from these structs.

// AnalyzeRepositoryInput is the input for the analyze_repository tool.
type AnalyzeRepositoryInput struct {
	RepoPath string   `json:"repoPath" jsonschema:"path to the project root to analyze"`
	Include  []string `json:"include,omitempty" jsonschema:"directories to scan, relative to repoPath (default: src)"`
	Exclude  []string `json:"exclude,omitempty" jsonschema:"path substrings or glob patterns to skip (default: node_modules, dist, build, .git)"`
	Rev      string   `json:"rev,omitempty" jsonschema:"git revision to analyze instead of the working tree (e.g. HEAD~1, main, a tag)"`
}

// AnalyzeRepositoryOutput is the result of the analyze_repository tool.
type AnalyzeRepositoryOutput struct {
	Stats       graph.GraphStats `json:"stats"`
	Commit      string           `json:"commit,omitempty"`
	Diagnostics int              `json:"diagnostics"`
}

// SearchFilesInput is the input for the search_files tool.
type SearchFilesInput struct {
	Query string `json:"query" jsonschema:"case-insensitive substring of a file path or name; empty matches everything"`
}

// SearchFilesOutput is the result of the search_files tool.
type SearchFilesOutput struct {
	Files []string     `json:"files"`
	Edges []graph.Edge `json:"edges"`
}

// InspectFileInput is the input for the inspect_file tool.
type InspectFileInput struct {
	Path string `json:"path" jsonschema:"file path as reported by analyze_repository (e.g. src/App.tsx)"`
}

// InspectFileOutput is the result of the inspect_file tool.
type InspectFileOutput struct {
	Selection graph.Selection `json:"selection"`
}

// GetDependenciesInput is the input for the get_dependencies tool.
type GetDependenciesInput struct {
	Path      string `json:"path" jsonschema:"file path to start from"`
	Direction string `json:"direction,omitempty" jsonschema:"upstream (what it imports) or downstream (what imports it). Default: downstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// AssessImpactInput is the input for the assess_impact tool.
type AssessImpactInput struct {
	ChangedFiles []string `json:"changedFiles" jsonschema:"list of file paths that will be modified"`
}

// AssessImpactOutput is the result of the assess_impact tool.
type AssessImpactOutput struct {
	Impact graph.ImpactResult `json:"impact"`
}

// GetClustersInput is the input for the get_clusters tool.
type GetClustersInput struct{}

// GetClustersOutput is the result of the get_clusters tool.
type GetClustersOutput struct {
	Clusters []graph.ClusterNode `json:"clusters"`
}

// FindCyclesInput is the input for the find_cycles tool.
type FindCyclesInput struct{}

// FindCyclesOutput is the result of the find_cycles tool.
type FindCyclesOutput struct {
	Cycles [][]string `json:"cycles"`
}
