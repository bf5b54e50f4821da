package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dusk-indust/importgraph/internal/graph"
)

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}

// WriteTable renders a summary followed by one row per file.
func WriteTable(w io.Writer, doc *Document) error {
	WriteStats(w, doc.Stats)
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"File", "Imports", "Imported by"})
	for _, f := range doc.Files {
		tbl.AppendRow(table.Row{f.Path, len(f.Dependencies), len(f.Dependents)})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %s files", humanize.Comma(int64(len(doc.Files)))), "", ""})
	tbl.Render()

	if len(doc.Diagnostics) > 0 {
		if _, err := fmt.Fprintf(w, "\n%s paths skipped\n", humanize.Comma(int64(len(doc.Diagnostics)))); err != nil {
			return err
		}
	}
	return nil
}

// WriteStats renders the graph summary.
func WriteStats(w io.Writer, s graph.GraphStats) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRows([]table.Row{
		{"Files", humanize.Comma(int64(s.FileCount))},
		{"Edges", humanize.Comma(int64(s.EdgeCount))},
		{"Unresolved", humanize.Comma(int64(s.UnresolvedCount))},
		{"Isolated", humanize.Comma(int64(s.IsolatedCount))},
		{"Clusters", humanize.Comma(int64(s.ClusterCount))},
	})
	tbl.Render()
}

// WriteClusters renders one row per cluster.
func WriteClusters(w io.Writer, clusters []graph.ClusterNode) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Cluster", "Files", "Cohesion"})
	for _, c := range clusters {
		tbl.AppendRow(table.Row{c.Name, len(c.Members), fmt.Sprintf("%.2f", c.CohesionScore)})
	}
	tbl.Render()
}

// WriteList renders paths under a single-column header. Used for search
// results, impact sets and cycles.
func WriteList(w io.Writer, header string, rows []string) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{header})
	for _, r := range rows {
		tbl.AppendRow(table.Row{r})
	}
	tbl.Render()
}

// FormatCycle joins a cycle's members for display.
func FormatCycle(cycle []string) string {
	return strings.Join(cycle, " -> ")
}
