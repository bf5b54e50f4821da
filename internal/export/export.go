// Package export renders dependency graphs as JSON, YAML, Mermaid and
// terminal tables.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/importgraph/internal/graph"
)

// Document is the serialized form of a graph. Files keep discovery order,
// unlike the graph's node map.
type Document struct {
	Root        string              `json:"root,omitempty" yaml:"root,omitempty"`
	Revision    string              `json:"revision,omitempty" yaml:"revision,omitempty"`
	Stats       graph.GraphStats    `json:"stats" yaml:"stats"`
	Files       []*graph.FileNode   `json:"files" yaml:"files"`
	Edges       []graph.Edge        `json:"edges" yaml:"edges"`
	Clusters    []graph.ClusterNode `json:"clusters,omitempty" yaml:"clusters,omitempty"`
	Diagnostics []graph.Diagnostic  `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewDocument builds a Document from g. clusters may be nil.
func NewDocument(g *graph.DependencyGraph, clusters []graph.ClusterNode) *Document {
	stats := g.Stats()
	stats.ClusterCount = len(clusters)

	edges := g.Edges
	if edges == nil {
		edges = []graph.Edge{}
	}
	return &Document{
		Stats:       stats,
		Files:       g.Files(),
		Edges:       edges,
		Clusters:    clusters,
		Diagnostics: g.Diagnostics,
	}
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteYAML writes doc as a YAML document.
func WriteYAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
