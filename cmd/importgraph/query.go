package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/importgraph/internal/export"
	"github.com/dusk-indust/importgraph/internal/graph"
)

// queryFlags are shared by the commands that read a graph.
type queryFlags struct {
	stored bool
	rev    string
	json   bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.stored, "stored", false, "query the graph persisted by the last 'analyze' instead of re-analyzing")
	cmd.Flags().StringVar(&f.rev, "rev", "", "analyze a git revision instead of the working tree")
	cmd.Flags().BoolVar(&f.json, "json", false, "print JSON instead of a table")
}

// load resolves the graph for a query command.
func (f *queryFlags) load(cmd *cobra.Command, a *app) (*graph.DependencyGraph, []graph.ClusterNode, error) {
	if f.stored && f.rev != "" {
		return nil, nil, fmt.Errorf("--stored and --rev are mutually exclusive")
	}
	return a.graphFor(cmd.Context(), f.stored, f.rev)
}

func newSearchCommand(a *app) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Find files whose path or name contains query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := qf.load(cmd, a)
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			sub := g.Search(query)

			w := cmd.OutOrStdout()
			if qf.json {
				return writeJSON(w, export.NewDocument(sub, nil))
			}
			export.WriteList(w, "File", sub.Paths())
			return nil
		},
	}
	qf.register(cmd)
	return cmd
}

func newInspectCommand(a *app) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Describe one file and the files it touches directly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := qf.load(cmd, a)
			if err != nil {
				return err
			}
			sel, err := g.Inspect(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if qf.json {
				return writeJSON(w, sel)
			}
			fmt.Fprintf(w, "%s\n  resolved imports: %d\n  imported by:      %d\n\n", sel.Path, sel.ResolvedDependencies, sel.Dependents)
			export.WriteList(w, "Connected", sel.Connected)
			return nil
		},
	}
	qf.register(cmd)
	return cmd
}

func newDepsCommand(a *app) *cobra.Command {
	var (
		qf        queryFlags
		direction string
		depth     int
	)
	cmd := &cobra.Command{
		Use:   "deps <file>",
		Short: "Walk imports upstream (what it imports) or downstream (what imports it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := qf.load(cmd, a)
			if err != nil {
				return err
			}
			chains, err := g.Dependencies(args[0], graph.Direction(strings.ToLower(direction)), depth)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if qf.json {
				if chains == nil {
					chains = []graph.DependencyChain{}
				}
				return writeJSON(w, chains)
			}
			rows := make([]string, 0, len(chains))
			for _, c := range chains {
				rows = append(rows, fmt.Sprintf("%d  %s", c.Depth, strings.Join(c.Nodes, " -> ")))
			}
			export.WriteList(w, "Chain", rows)
			return nil
		},
	}
	qf.register(cmd)
	cmd.Flags().StringVarP(&direction, "direction", "d", string(graph.DirectionDownstream), "upstream or downstream")
	cmd.Flags().IntVar(&depth, "depth", 5, "maximum traversal depth")
	return cmd
}

func newImpactCommand(a *app) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "impact <file>...",
		Short: "List files affected when the given files change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := qf.load(cmd, a)
			if err != nil {
				return err
			}
			res := g.AssessImpact(args)

			w := cmd.OutOrStdout()
			if qf.json {
				return writeJSON(w, res)
			}
			return writeImpact(w, res)
		},
	}
	qf.register(cmd)
	return cmd
}

func writeImpact(w io.Writer, res *graph.ImpactResult) error {
	direct := make(map[string]bool, len(res.DirectlyAffected))
	for _, f := range res.DirectlyAffected {
		direct[f] = true
	}
	rows := make([]string, 0, len(res.TransitivelyAffected))
	for _, f := range res.TransitivelyAffected {
		if direct[f] {
			rows = append(rows, f+" (direct)")
		} else {
			rows = append(rows, f)
		}
	}
	export.WriteList(w, "Affected", rows)
	_, err := fmt.Fprintf(w, "\nrisk score: %.2f\n", res.RiskScore)
	return err
}

func newClustersCommand(a *app) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Show groups of files connected by imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, clusters, err := qf.load(cmd, a)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if qf.json {
				if clusters == nil {
					clusters = []graph.ClusterNode{}
				}
				return writeJSON(w, clusters)
			}
			export.WriteClusters(w, clusters)
			return nil
		},
	}
	qf.register(cmd)
	return cmd
}

func newCyclesCommand(a *app) *cobra.Command {
	var (
		qf   queryFlags
		fail bool
	)
	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "List import cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, _, err := qf.load(cmd, a)
			if err != nil {
				return err
			}
			cycles := g.Cycles()

			w := cmd.OutOrStdout()
			if qf.json {
				if cycles == nil {
					cycles = [][]string{}
				}
				if err := writeJSON(w, cycles); err != nil {
					return err
				}
			} else {
				rows := make([]string, 0, len(cycles))
				for _, c := range cycles {
					rows = append(rows, export.FormatCycle(c))
				}
				export.WriteList(w, "Cycle", rows)
			}
			if fail && len(cycles) > 0 {
				return fmt.Errorf("%d import cycles found", len(cycles))
			}
			return nil
		},
	}
	qf.register(cmd)
	cmd.Flags().BoolVar(&fail, "fail", false, "exit non-zero when a cycle exists")
	return cmd
}
