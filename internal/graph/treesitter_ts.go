package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// walkSpecifiers visits every node depth-first and records module specifiers
// from import statements, re-exports, import() and require() calls.
func walkSpecifiers(cursor *tree_sitter.TreeCursor, source []byte, set *specifierSet) {
	node := cursor.Node()

	switch node.Kind() {
	case "import_statement", "export_statement":
		if spec, ok := sourceSpecifier(node, source); ok {
			set.add(spec)
		}

	case "call_expression":
		if spec, ok := callSpecifier(node, source); ok {
			set.add(spec)
		}
	}

	if cursor.GotoFirstChild() {
		walkSpecifiers(cursor, source, set)
		for cursor.GotoNextSibling() {
			walkSpecifiers(cursor, source, set)
		}
		cursor.GotoParent()
	}
}

// sourceSpecifier reads the "source" field of an import or export statement.
// Exports without a source (export const x = 1) yield nothing.
func sourceSpecifier(node *tree_sitter.Node, source []byte) (string, bool) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil && node.Kind() == "import_statement" {
		// Fall back: look for a string child.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "string" {
				sourceNode = child
				break
			}
		}
	}
	if sourceNode == nil {
		return "", false
	}
	return stringLiteral(sourceNode, source)
}

// callSpecifier handles import('./x') and require('./x') with a single
// string literal argument. Template literals and computed arguments are skipped.
func callSpecifier(node *tree_sitter.Node, source []byte) (string, bool) {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return "", false
	}

	switch fnNode.Kind() {
	case "import":
	case "identifier":
		if fnNode.Utf8Text(source) != "require" {
			return "", false
		}
	default:
		return "", false
	}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return "", false
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg == nil {
			continue
		}
		if arg.Kind() != "string" {
			return "", false
		}
		return stringLiteral(arg, source)
	}
	return "", false
}

func stringLiteral(node *tree_sitter.Node, source []byte) (string, bool) {
	if node.Kind() != "string" {
		return "", false
	}
	spec := strings.Trim(node.Utf8Text(source), "\"'`")
	return spec, spec != ""
}
