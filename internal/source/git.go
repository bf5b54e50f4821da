package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/dusk-indust/importgraph/internal/graph"
)

// DefaultRevision is analyzed when no revision is given.
const DefaultRevision = "HEAD"

// ErrNotADirectory is returned by Git.ReadDir for paths naming a file.
var ErrNotADirectory = errors.New("not a directory")

// Git reads the committed tree of one revision. Uncommitted changes in the
// working tree are invisible to it.
type Git struct {
	mu     sync.Mutex // go-git trees cache lookups without locking
	tree   *object.Tree
	commit plumbing.Hash
}

var _ graph.Accessor = (*Git)(nil)

// OpenGit opens the repository containing repoPath and resolves rev (a
// branch, tag, hash or expression like HEAD~2).
func OpenGit(repoPath, rev string) (*Git, error) {
	if rev == "" {
		rev = DefaultRevision
	}
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", repoPath, err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load tree of %s: %w", hash, err)
	}
	return &Git{tree: tree, commit: *hash}, nil
}

// Commit returns the resolved commit hash.
func (g *Git) Commit() string {
	return g.commit.String()
}

// ReadFile returns the blob content at path.
func (g *Git) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	f, err := g.tree.File(fsPathOrEmpty(path))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return f.Contents()
}

// ReadDir lists the tree entries at path. Subtrees are directories;
// blobs, symlinks and submodules are files.
func (g *Git) ReadDir(ctx context.Context, path string) ([]graph.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	tree := g.tree
	if p := fsPathOrEmpty(path); p != "" {
		entry, err := g.tree.FindEntry(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if entry.Mode != filemode.Dir {
			return nil, fmt.Errorf("%s: %w", path, ErrNotADirectory)
		}
		tree, err = g.tree.Tree(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	out := make([]graph.DirEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		out = append(out, graph.DirEntry{Name: e.Name, IsDirectory: e.Mode == filemode.Dir})
	}
	return out, nil
}

func fsPathOrEmpty(path string) string {
	if p := fsPath(path); p != "." {
		return p
	}
	return ""
}
