package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search engine Prometheus metrics.
var (
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "engine_requests_total",
			Help:      "Total number of search engine requests",
		},
		[]string{"operation", "outcome"}, // outcome: ok / rejected / unreachable / not_found
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "registry",
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	EngineVersionLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "engine_version_lookups_total",
			Help:      "Engine version cache lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "fallback"
	)

	IndexedDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "indexed_documents_total",
			Help:      "Documents submitted for indexing by outcome",
		},
		[]string{"outcome"}, // "indexed" / "skipped" / "failed"
	)
)

var registerEngineOnce sync.Once

// RegisterEngineMetrics registers the search engine metrics. Safe to call more than once.
func RegisterEngineMetrics() {
	registerEngineOnce.Do(func() {
		prometheus.MustRegister(EngineRequestsTotal)
		prometheus.MustRegister(EngineRequestDuration)
		prometheus.MustRegister(EngineVersionLookupsTotal)
		prometheus.MustRegister(IndexedDocumentsTotal)
	})
}
