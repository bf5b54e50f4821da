package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// TreeSitterExtractor extracts specifiers from a parsed syntax tree instead
// of raw text, so imports inside comments and strings are ignored and
// `export ... from` re-exports are picked up.
//
// .ts files use the TypeScript grammar; .tsx and the plain
// JavaScript family use TSX, which accepts JSX and untyped code. Files the
// grammars cannot handle (.vue, .svelte) go to the Fallback extractor.
//
// A new tree-sitter parser is created per Extract call, so the type is safe
// for concurrent use.
type TreeSitterExtractor struct {
	typescript *tree_sitter.Language
	tsx        *tree_sitter.Language
	Fallback   Extractor
}

var _ Extractor = (*TreeSitterExtractor)(nil)

// NewTreeSitterExtractor creates an extractor with the TypeScript and TSX
// grammars registered and the regex extractor as fallback.
func NewTreeSitterExtractor() *TreeSitterExtractor {
	return &TreeSitterExtractor{
		typescript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		tsx:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
		Fallback:   RegexExtractor{},
	}
}

// Name returns "treesitter".
func (e *TreeSitterExtractor) Name() string { return "treesitter" }

// Extract implements Extractor.
func (e *TreeSitterExtractor) Extract(path string, content []byte) []string {
	lang := e.grammarFor(path)
	if lang == nil {
		return e.fallback(path, content)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		return e.fallback(path, content)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return e.fallback(path, content)
	}
	defer tree.Close()

	set := newSpecifierSet()
	cursor := tree.RootNode().Walk()
	defer cursor.Close()

	walkSpecifiers(cursor, content, set)
	return set.items
}

func (e *TreeSitterExtractor) fallback(path string, content []byte) []string {
	if e.Fallback == nil {
		return nil
	}
	return e.Fallback.Extract(path, content)
}

func (e *TreeSitterExtractor) grammarFor(path string) *tree_sitter.Language {
	switch {
	case strings.HasSuffix(path, ".tsx"):
		return e.tsx
	case strings.HasSuffix(path, ".ts"):
		return e.typescript
	case strings.HasSuffix(path, ".js"), strings.HasSuffix(path, ".jsx"),
		strings.HasSuffix(path, ".mjs"), strings.HasSuffix(path, ".cjs"):
		return e.tsx
	default:
		return nil
	}
}
