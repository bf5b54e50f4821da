package mcptools

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with every graph tool registered.
func NewServer(svc *GraphService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "importgraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_repository",
		Description: "Scan a JavaScript/TypeScript project (or one git revision of it) and build its file-level import graph. Must be called before the other tools.",
	}, svc.AnalyzeRepository)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_files",
		Description: "Find files whose path or name contains a query, case-insensitively, together with the imports among them.",
	}, svc.SearchFiles)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "inspect_file",
		Description: "Describe one file: resolved imports, number of importers and directly connected files.",
	}, svc.InspectFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse the import graph upstream or downstream from a file. Returns dependency chains up to the specified depth.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_impact",
		Description: "Compute the blast radius of modifying a set of files. Returns directly and transitively affected files with a risk score.",
	}, svc.AssessImpact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_clusters",
		Description: "Return groups of files connected by imports, with cohesion scores.",
	}, svc.GetClusters)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_cycles",
		Description: "List import cycles, including files that import themselves.",
	}, svc.FindCycles)

	return server
}

// RunStdio serves the MCP server on stdin/stdout, blocking until stdin is
// closed or ctx is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
