package main

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/importgraph/internal/export"
	"github.com/dusk-indust/importgraph/internal/graph"
	"github.com/dusk-indust/importgraph/internal/source"
	"github.com/dusk-indust/importgraph/internal/watch"
)

func newWatchCommand(a *app) *cobra.Command {
	var noPersist bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-analyze the project whenever a source file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a.serveMetrics(ctx)

			analyzer, err := a.newAnalyzer()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			handler := func(g *graph.DependencyGraph, changed []string) {
				clusters := graph.ComputeClusters(g)
				if len(changed) > 0 {
					fmt.Fprintf(w, "\nchanged: %v\n", changed)
				}
				stats := g.Stats()
				stats.ClusterCount = len(clusters)
				export.WriteStats(w, stats)

				if noPersist {
					return
				}
				if err := a.persist(ctx, g, clusters); err != nil {
					logger.WithError(err).Warn("could not persist graph")
				}
			}

			watcher, err := watch.New(a.projectDir, analyzer, source.NewDir(a.projectDir), handler, watch.Options{
				Debounce: a.cfg.Watch.Debounce,
				Logger:   logger.StandardLogger(),
			})
			if err != nil {
				return err
			}
			logger.WithField("root", a.projectDir).Info("watching for changes")
			return watcher.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "do not write the graph store on each update")
	return cmd
}
