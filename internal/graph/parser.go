package graph

import "strings"

// Extractor pulls module specifiers out of a single source file.
// Implementations: RegexExtractor (default), TreeSitterExtractor.
type Extractor interface {
	// Name identifies the extractor; it is part of extraction cache keys.
	Name() string

	// Extract returns the kept specifiers of content, deduplicated and in
	// first-seen order. path is only used to pick a grammar.
	Extract(path string, content []byte) []string
}

// AnalyzableExtensions are the file suffixes that become graph nodes.
var AnalyzableExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	".vue", ".svelte",
}

// ResolutionSuffixes are tried in order when matching a dependency candidate
// against known files. The first suffix that names a node wins.
var ResolutionSuffixes = []string{
	"", ".ts", ".tsx", ".js", ".jsx",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

// AliasPrefixes map to the alias base directory (src by default).
var AliasPrefixes = []string{"@/", "~/"}

// ShouldAnalyzeFile reports whether name carries a recognized source extension.
func ShouldAnalyzeFile(name string) bool {
	for _, ext := range AnalyzableExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// isLocalSpecifier keeps relative specifiers and alias specifiers; bare
// package names are external and never become edges.
func isLocalSpecifier(spec string) bool {
	if strings.HasPrefix(spec, ".") {
		return true
	}
	return hasAliasPrefix(spec)
}

func hasAliasPrefix(spec string) bool {
	for _, p := range AliasPrefixes {
		if strings.HasPrefix(spec, p) {
			return true
		}
	}
	return false
}

// specifierSet collects specifiers with set semantics and stable order.
type specifierSet struct {
	seen  map[string]bool
	items []string
}

func newSpecifierSet() *specifierSet {
	return &specifierSet{seen: make(map[string]bool)}
}

func (s *specifierSet) add(spec string) {
	if spec == "" || !isLocalSpecifier(spec) || s.seen[spec] {
		return
	}
	s.seen[spec] = true
	s.items = append(s.items, spec)
}
