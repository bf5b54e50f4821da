package graph

import (
	"context"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	files    map[string]FileNode
	order    []string
	edges    []Edge
	clusters []ClusterNode
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string]FileNode)}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// Reset drops all stored data.
func (m *MemStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]FileNode)
	m.order = nil
	m.edges = nil
	m.clusters = nil
	return nil
}

// AddFile stores a file node keyed by its path. Re-adding a path replaces
// the node but keeps its original position.
func (m *MemStore) AddFile(_ context.Context, node FileNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[node.Path]; !ok {
		m.order = append(m.order, node.Path)
	}
	node.Dependencies = append([]string(nil), node.Dependencies...)
	node.Dependents = nil
	m.files[node.Path] = node
	return nil
}

// AddCluster appends a cluster to the internal slice.
func (m *MemStore) AddCluster(_ context.Context, node ClusterNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node.Members = append([]string(nil), node.Members...)
	m.clusters = append(m.clusters, node)
	return nil
}

// AddEdge appends an edge to the internal slice.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	return nil
}

// GetFile returns the file node for the given path, or nil if not found.
func (m *MemStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// ListFiles returns every file in insertion order.
func (m *MemStore) ListFiles(_ context.Context) ([]FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FileNode, 0, len(m.order))
	for _, p := range m.order {
		out = append(out, m.files[p])
	}
	return out, nil
}

// GetClusters returns all stored clusters.
func (m *MemStore) GetClusters(_ context.Context) ([]ClusterNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ClusterNode, len(m.clusters))
	copy(out, m.clusters)
	return out, nil
}

// GetAllEdges returns a copy of all edges in the store.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// Stats returns counts of files, import edges and clusters.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	imports := 0
	for _, e := range m.edges {
		if e.Kind == EdgeKindImports {
			imports++
		}
	}
	return &GraphStats{
		FileCount:    len(m.files),
		EdgeCount:    imports,
		ClusterCount: len(m.clusters),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
