// Package source provides graph.Accessor implementations over real storage:
// directories and other fs.FS values, and committed git trees.
package source

import (
	"context"
	"io/fs"
	"os"
	"strings"

	"github.com/dusk-indust/importgraph/internal/graph"
)

// FS reads a project through an fs.FS. Symlinks are reported as files and
// never followed into.
type FS struct {
	fsys fs.FS
}

var _ graph.Accessor = (*FS)(nil)

// NewFS wraps fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// NewDir reads the directory tree rooted at root on the local disk.
func NewDir(root string) *FS {
	return NewFS(os.DirFS(root))
}

// ReadFile returns the content of the file at path.
func (s *FS) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(s.fsys, fsPath(path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadDir lists the entries of the directory at path.
func (s *FS) ReadDir(ctx context.Context, path string) ([]graph.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(s.fsys, fsPath(path))
	if err != nil {
		return nil, err
	}
	out := make([]graph.DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, graph.DirEntry{Name: e.Name(), IsDirectory: e.IsDir()})
	}
	return out, nil
}

// fsPath converts an accessor path to an fs.FS name: "" is ".", and
// leading "./" or trailing "/" are dropped.
func fsPath(path string) string {
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return "."
	}
	return path
}
