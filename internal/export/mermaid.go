package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/importgraph/internal/graph"
)

// Mermaid produces a left-to-right Mermaid flowchart. Node IDs are N<i> in
// discovery order and labels are file names. Files belonging to one of
// clusters are grouped in a subgraph; the rest are emitted at top level.
func Mermaid(g *graph.DependencyGraph, clusters []graph.ClusterNode) string {
	paths := g.Paths()
	ids := make(map[string]string, len(paths))
	for i, p := range paths {
		ids[p] = fmt.Sprintf("N%d", i)
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	grouped := make(map[string]bool)
	for ci, c := range clusters {
		var members []string
		for _, m := range c.Members {
			if _, ok := ids[m]; ok && !grouped[m] {
				members = append(members, m)
			}
		}
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  subgraph C%d[\"%s\"]\n", ci, mermaidLabel(c.Name))
		for _, m := range members {
			grouped[m] = true
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", ids[m], mermaidLabel(graph.FileName(m)))
		}
		sb.WriteString("  end\n")
	}

	for _, p := range paths {
		if grouped[p] {
			continue
		}
		fmt.Fprintf(&sb, "  %s[\"%s\"]\n", ids[p], mermaidLabel(graph.FileName(p)))
	}

	for _, e := range g.Edges {
		src, ok1 := ids[e.Source]
		tgt, ok2 := ids[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(&sb, "  %s --> %s\n", src, tgt)
	}
	return sb.String()
}

// mermaidLabel escapes characters Mermaid treats as syntax inside quotes.
func mermaidLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
