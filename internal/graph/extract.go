package graph

import "regexp"

// importPatterns are applied in order; each captures the specifier in group 1.
//
// Extraction is heuristic: imports inside comments or strings are matched,
// computed specifiers are not, and re-exports through barrel files are not
// followed.
var importPatterns = []*regexp.Regexp{
	// import x from './path', import { x } from './path', import './path'
	regexp.MustCompile(`import\s+(?:[\w*{}\s,]+\s+from\s+)?['"]([^'"]+)['"]`),
	// import('./path')
	regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`),
	// require('./path')
	regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`),
	// import type { x } from './path'
	regexp.MustCompile(`import\s+type\s+(?:[\w*{}\s,]+\s+from\s+)?['"]([^'"]+)['"]`),
}

// RegexExtractor is the default Extractor. It works on any text, including
// .vue and .svelte single-file components.
type RegexExtractor struct{}

var _ Extractor = RegexExtractor{}

// Name returns "regex".
func (RegexExtractor) Name() string { return "regex" }

// Extract implements Extractor.
func (RegexExtractor) Extract(_ string, content []byte) []string {
	return ExtractImports(string(content))
}

// ExtractImports returns the relative and alias specifiers found in content.
func ExtractImports(content string) []string {
	set := newSpecifierSet()
	for _, pattern := range importPatterns {
		for _, m := range pattern.FindAllStringSubmatch(content, -1) {
			set.add(m[1])
		}
	}
	return set.items
}
