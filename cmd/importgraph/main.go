// Package main provides the importgraph CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd, a := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "importgraph",
		Short: "Map the file-level import graph of a JavaScript/TypeScript project",
		Long: `importgraph scans a project's source directories, extracts relative and
aliased imports, resolves them against the files it found and reports the
resulting dependency graph.

Commands:
  analyze    Build the graph and print or export it
  search     Find files by path or name
  inspect    Describe one file and its neighbours
  deps       Walk imports upstream or downstream
  impact     Files affected by a change
  clusters   Groups of connected files
  cycles     Import cycles
  watch      Re-analyze on every change
  serve-mcp  Expose the graph as MCP tools`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.projectDir, "project", "C", ".", "project root to analyze")
	flags.StringVar(&a.configPath, "config", "", "config file (default: <project>/importgraph.yml)")
	flags.StringVar(&a.logLevel, "log-level", "", "override logging.level")
	flags.BoolVar(&a.noCache, "no-cache", false, "disable the extraction cache")

	rootCmd.AddCommand(
		newAnalyzeCommand(a),
		newSearchCommand(a),
		newInspectCommand(a),
		newDepsCommand(a),
		newImpactCommand(a),
		newClustersCommand(a),
		newCyclesCommand(a),
		newWatchCommand(a),
		newServeMCPCommand(a),
		versionCmd(),
	)
	return rootCmd, a
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "importgraph %s\n", version)
		},
	}
}
