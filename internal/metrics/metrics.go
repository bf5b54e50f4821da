// Package metrics exposes analysis measurements in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dusk-indust/importgraph/internal/graph"
)

const namespace = "importgraph"

// Recorder implements graph.Recorder on its own registry, so several
// recorders (one per test, say) never collide.
type Recorder struct {
	registry *prometheus.Registry

	analyses        prometheus.Counter
	duration        prometheus.Histogram
	files           prometheus.Gauge
	edges           prometheus.Gauge
	accessorFailure *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

var _ graph.Recorder = (*Recorder)(nil)

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		analyses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analysis runs.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one analysis run.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		files: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_files",
			Help:      "Files in the most recent graph.",
		}),
		edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges in the most recent graph.",
		}),
		// Labels: op (readdir, readfile)
		accessorFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accessor_failures_total",
			Help:      "Accessor calls that failed and were skipped.",
		}, []string{"op"}),
		// Labels: result (hit, miss)
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Extraction cache lookups.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(r.analyses, r.duration, r.files, r.edges, r.accessorFailure, r.cacheLookups)
	return r
}

// ObserveAnalysis records one finished run.
func (r *Recorder) ObserveAnalysis(d time.Duration, files, edges int) {
	r.analyses.Inc()
	r.duration.Observe(d.Seconds())
	r.files.Set(float64(files))
	r.edges.Set(float64(edges))
}

// AccessorFailure counts a skipped accessor call.
func (r *Recorder) AccessorFailure(op graph.DiagnosticOp) {
	r.accessorFailure.WithLabelValues(string(op)).Inc()
}

// CacheLookup counts an extraction cache lookup.
func (r *Recorder) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
