package main

import (
	"fmt"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/importgraph/internal/export"
	"github.com/dusk-indust/importgraph/internal/graph"
)

// Output formats accepted by --format.
const (
	formatTable   = "table"
	formatJSON    = "json"
	formatYAML    = "yaml"
	formatMermaid = "mermaid"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		format    string
		output    string
		rev       string
		noPersist bool
		noCluster bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build the import graph and print or export it",
		Example: `  importgraph analyze
  importgraph analyze --format mermaid -o graph.mmd
  importgraph analyze --rev HEAD~1 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case formatTable, formatJSON, formatYAML, formatMermaid:
			default:
				return fmt.Errorf("unknown format %q (want table, json, yaml or mermaid)", format)
			}
			ctx := cmd.Context()

			g, commit, err := a.analyze(ctx, rev)
			if err != nil {
				return err
			}
			var clusters []graph.ClusterNode
			if !noCluster {
				clusters = graph.ComputeClusters(g)
			}

			if !noPersist && rev == "" {
				if err := a.persist(ctx, g, clusters); err != nil {
					logger.WithError(err).Warn("could not persist graph")
				}
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			doc := export.NewDocument(g, clusters)
			doc.Root = a.projectDir
			doc.Revision = commit
			return writeDocument(w, format, g, doc)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json, yaml, mermaid")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&rev, "rev", "", "analyze a git revision instead of the working tree")
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "do not write the graph store")
	cmd.Flags().BoolVar(&noCluster, "no-clusters", false, "skip cluster detection")
	return cmd
}

func writeDocument(w io.Writer, format string, g *graph.DependencyGraph, doc *export.Document) error {
	switch format {
	case formatTable:
		return export.WriteTable(w, doc)
	case formatJSON:
		return export.WriteJSON(w, doc)
	case formatYAML:
		return export.WriteYAML(w, doc)
	default:
		_, err := io.WriteString(w, export.Mermaid(g, doc.Clusters))
		return err
	}
}
