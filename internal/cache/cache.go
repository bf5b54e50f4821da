// Package cache stores extracted import specifiers keyed by content hash, so
// unchanged files are not re-parsed across analysis runs.
//
//	LRU (in process) → Badger (on disk)
//
// Keys come from graph.ExtractionKey. Values are raw specifiers; resolution
// depends on the importing file's path and is never cached.
package cache

import (
	"github.com/dusk-indust/importgraph/internal/graph"
)

// Cache is the extraction cache. Implementations are safe for concurrent use.
type Cache interface {
	graph.ExtractionCache
	Close() error
}

// DefaultSize is the default number of entries held by the LRU tier.
const DefaultSize = 4096
