package graph

import "strings"

// DefaultAliasBase is the directory alias specifiers (@/, ~/) point at.
const DefaultAliasBase = "src"

// ResolveImportPath turns a kept specifier into a candidate path relative to
// the project root. The candidate carries no implied extension; matching it
// against real files is done with ResolutionSuffixes.
//
// Alias specifiers rewrite to aliasBase regardless of where fromFile lives.
// Relative specifiers are applied segment by segment to fromFile's directory:
// ".." pops, "." and empty segments are skipped, anything else is pushed.
func ResolveImportPath(fromFile, importPath, aliasBase string) string {
	for _, p := range AliasPrefixes {
		if strings.HasPrefix(importPath, p) {
			rest := strings.TrimPrefix(importPath, p)
			if aliasBase == "" {
				return rest
			}
			return strings.TrimSuffix(aliasBase, "/") + "/" + rest
		}
	}

	var parts []string
	if dir := parentDir(fromFile); dir != "" {
		parts = strings.Split(dir, "/")
	}

	for _, seg := range strings.Split(importPath, "/") {
		switch seg {
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		case ".", "":
		default:
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/")
}

// FileName returns the final segment of a slash-separated path.
func FileName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// parentDir returns everything before the final "/" of path, or "".
func parentDir(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}

// joinPath joins a directory and an entry name the way discovery builds paths:
// entries of the root directory have no leading slash.
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// probeNode tries each resolution suffix on candidate and returns the first
// path that is a node. No I/O.
func probeNode(nodes map[string]*FileNode, candidate string) (string, bool) {
	for _, suffix := range ResolutionSuffixes {
		p := candidate + suffix
		if _, ok := nodes[p]; ok {
			return p, true
		}
	}
	return "", false
}
