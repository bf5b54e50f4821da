package main

import (
	"errors"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/importgraph/internal/graph"
	"github.com/dusk-indust/importgraph/internal/mcptools"
)

func newServeMCPCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve graph tools over MCP (stdio, or streamable HTTP with --addr)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a.serveMetrics(ctx)

			opts, err := a.analysisOptions()
			if err != nil {
				return err
			}
			svc := mcptools.NewGraphService(opts, logger.StandardLogger())

			// Start from the persisted graph when there is one.
			if a.storeExists() {
				if g, clusters, err := a.graphFor(ctx, true, ""); err == nil {
					svc.SetGraph(g, clusters)
					logger.WithField("files", g.Len()).Info("loaded stored graph")
				} else if !errors.Is(err, graph.ErrStoreUnavailable) {
					logger.WithError(err).Warn("could not load stored graph")
				}
			}

			server := mcptools.NewServer(svc)
			if addr == "" {
				addr = a.cfg.MCP.Addr
			}
			if addr == "" {
				return mcptools.RunStdio(ctx, server)
			}
			logger.WithField("addr", addr).Info("serving MCP over HTTP")
			return mcptools.RunHTTP(ctx, server, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for streamable HTTP (default: mcp.addr, else stdio)")
	return cmd
}
