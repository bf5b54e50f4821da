package graph

import (
	"context"
	"errors"
	"io"
)

// ErrStoreUnavailable is returned by OpenFileStore when the binary was built
// without cgo and therefore without the KuzuDB driver.
var ErrStoreUnavailable = errors.New("persistent graph store requires a cgo build")

// Store is the interface for the persisted import graph.
// Implementations: KuzuStore (production, cgo), MemStore (testing).
// Graphs are written with Persist and read back with Load.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Reset removes every file, edge and cluster.
	Reset(ctx context.Context) error

	// Write operations. Files are listed back in the order they were added.
	AddFile(ctx context.Context, node FileNode) error
	AddCluster(ctx context.Context, node ClusterNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations. GetFile returns nil, nil for unknown paths.
	GetFile(ctx context.Context, path string) (*FileNode, error)
	ListFiles(ctx context.Context) ([]FileNode, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)
	GetClusters(ctx context.Context) ([]ClusterNode, error)

	// Stats counts stored files, IMPORTS edges and clusters.
	Stats(ctx context.Context) (*GraphStats, error)
}
