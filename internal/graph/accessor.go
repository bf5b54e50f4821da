package graph

import (
	"context"
	"errors"
)

// DirEntry is one child returned by a directory listing.
type DirEntry struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
}

// Accessor gives the analyzer read access to a project tree. Paths are
// slash-separated and relative to the project root; "" is the root itself.
//
// Any error is treated as "nothing here": a failed ReadDir makes the directory
// look empty and a failed ReadFile skips the file.
// Implementations: source.FS, source.Git, AccessorFuncs.
type Accessor interface {
	ReadFile(ctx context.Context, path string) (string, error)
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)
}

// ErrAccessorUnset is returned by AccessorFuncs when a function is missing.
var ErrAccessorUnset = errors.New("accessor function not set")

// AccessorFuncs adapts a pair of plain functions to the Accessor interface.
type AccessorFuncs struct {
	ReadFileFunc func(ctx context.Context, path string) (string, error)
	ReadDirFunc  func(ctx context.Context, path string) ([]DirEntry, error)
}

var _ Accessor = AccessorFuncs{}

// ReadFile calls ReadFileFunc.
func (f AccessorFuncs) ReadFile(ctx context.Context, path string) (string, error) {
	if f.ReadFileFunc == nil {
		return "", ErrAccessorUnset
	}
	return f.ReadFileFunc(ctx, path)
}

// ReadDir calls ReadDirFunc.
func (f AccessorFuncs) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	if f.ReadDirFunc == nil {
		return nil, ErrAccessorUnset
	}
	return f.ReadDirFunc(ctx, path)
}
