//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection

	mu  sync.Mutex
	seq int64 // insertion counter for files and edges
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf itself for new databases.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

// OpenFileStore opens (or creates) the persistent graph store at dbPath and
// initializes its schema.
func OpenFileStore(ctx context.Context, dbPath string) (Store, error) {
	s, err := NewKuzuFileStore(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.InitSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func openKuzu(dbPath string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database %s: %w", dbPath, err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		name STRING,
		deps STRING,
		seq INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Cluster(
		name STRING,
		cohesion_score DOUBLE,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS IMPORTS(FROM File TO File, seq INT64)`,
	`CREATE REL TABLE IF NOT EXISTS BELONGS_TO(FROM File TO Cluster)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// Reset deletes every File and Cluster node along with their relationships.
func (s *KuzuStore) Reset(_ context.Context) error {
	for _, stmt := range []string{
		"MATCH (f:File) DETACH DELETE f",
		"MATCH (c:Cluster) DETACH DELETE c",
	} {
		if err := s.exec(stmt, nil); err != nil {
			return fmt.Errorf("kuzu: reset: %w", err)
		}
	}
	s.mu.Lock()
	s.seq = 0
	s.mu.Unlock()
	return nil
}

// ---------- Write operations ----------

// AddFile inserts a File node. Dependencies are stored newline-joined;
// dependents are derived from IMPORTS edges on load.
func (s *KuzuStore) AddFile(_ context.Context, node FileNode) error {
	return s.exec(
		"CREATE (f:File {path: $path, name: $name, deps: $deps, seq: $seq})",
		map[string]any{
			"path": node.Path,
			"name": node.Name,
			"deps": strings.Join(node.Dependencies, "\n"),
			"seq":  s.nextSeq(),
		},
	)
}

// AddCluster inserts a Cluster node.
func (s *KuzuStore) AddCluster(_ context.Context, node ClusterNode) error {
	return s.exec(
		"CREATE (c:Cluster {name: $name, cohesion_score: $score})",
		map[string]any{
			"name":  node.Name,
			"score": node.CohesionScore,
		},
	)
}

// AddEdge inserts a relationship edge between two nodes.
// The Cypher statement is chosen based on the EdgeKind.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	switch edge.Kind {
	case EdgeKindImports:
		return s.exec(
			`MATCH (a:File {path: $src}), (b:File {path: $dst})
			 CREATE (a)-[:IMPORTS {seq: $seq}]->(b)`,
			map[string]any{"src": edge.Source, "dst": edge.Target, "seq": s.nextSeq()},
		)
	case EdgeKindBelongs:
		return s.exec(
			`MATCH (a:File {path: $src}), (b:Cluster {name: $dst})
			 CREATE (a)-[:BELONGS_TO]->(b)`,
			map[string]any{"src": edge.Source, "dst": edge.Target},
		)
	default:
		return fmt.Errorf("kuzu: unsupported edge kind: %s", edge.Kind)
	}
}

// ---------- Read operations ----------

// GetFile retrieves a single File node by path, or returns nil if not found.
func (s *KuzuStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	rows, err := s.query(
		"MATCH (f:File {path: $path}) RETURN f.path, f.name, f.deps",
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	f := rowToFile(rows[0])
	return &f, nil
}

// ListFiles returns every File node in insertion order.
func (s *KuzuStore) ListFiles(_ context.Context) ([]FileNode, error) {
	rows, err := s.query("MATCH (f:File) RETURN f.path, f.name, f.deps ORDER BY f.seq", nil)
	if err != nil {
		return nil, err
	}
	out := make([]FileNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToFile(r))
	}
	return out, nil
}

// GetClusters returns all Cluster nodes with their members.
func (s *KuzuStore) GetClusters(_ context.Context) ([]ClusterNode, error) {
	rows, err := s.query("MATCH (c:Cluster) RETURN c.name, c.cohesion_score ORDER BY c.name", nil)
	if err != nil {
		return nil, err
	}
	out := make([]ClusterNode, 0, len(rows))
	for _, r := range rows {
		name := toString(r[0])

		memberRows, err := s.query(
			"MATCH (f:File)-[:BELONGS_TO]->(c:Cluster {name: $name}) RETURN f.path ORDER BY f.path",
			map[string]any{"name": name},
		)
		if err != nil {
			return nil, err
		}
		members := make([]string, 0, len(memberRows))
		for _, mr := range memberRows {
			members = append(members, toString(mr[0]))
		}

		out = append(out, ClusterNode{
			Name:          name,
			CohesionScore: toFloat64(r[1]),
			Members:       members,
		})
	}
	return out, nil
}

// GetAllEdges returns IMPORTS edges in insertion order followed by
// BELONGS_TO edges.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	queries := []struct {
		cypher string
		kind   EdgeKind
	}{
		{"MATCH (a:File)-[r:IMPORTS]->(b:File) RETURN a.path, b.path ORDER BY r.seq", EdgeKindImports},
		{"MATCH (a:File)-[:BELONGS_TO]->(b:Cluster) RETURN a.path, b.name ORDER BY b.name, a.path", EdgeKindBelongs},
	}

	var edges []Edge
	for _, q := range queries {
		rows, err := s.query(q.cypher, nil)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			edges = append(edges, Edge{
				Source: toString(r[0]),
				Target: toString(r[1]),
				Kind:   q.kind,
			})
		}
	}
	return edges, nil
}

// ---------- Stats ----------

// Stats returns counts of files, import edges and clusters.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	files, err := s.count("MATCH (n:File) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	clusters, err := s.count("MATCH (n:Cluster) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	edges, err := s.count("MATCH ()-[r:IMPORTS]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		FileCount:    files,
		EdgeCount:    edges,
		ClusterCount: clusters,
	}, nil
}

// ---------- Internal helpers ----------

func (s *KuzuStore) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	if len(params) == 0 {
		res, err := s.conn.Query(cypher)
		if err != nil {
			return fmt.Errorf("kuzu: execute: %w", err)
		}
		res.Close()
		return nil
	}

	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToFile converts a (path, name, deps) row into a FileNode.
func rowToFile(r []any) FileNode {
	var deps []string
	if raw := toString(r[2]); raw != "" {
		deps = strings.Split(raw, "\n")
	}
	path := toString(r[0])
	return FileNode{
		ID:           path,
		Path:         path,
		Name:         toString(r[1]),
		Dependencies: deps,
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
