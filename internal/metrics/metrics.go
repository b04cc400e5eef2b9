// Package metrics exposes Prometheus counters for ingestion and cache
// activity. Registration happens at package init so every binary that links
// the store gets consistent metrics without wiring.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache tier label values.
const (
	TierMemory  = "memory"
	TierDurable = "durable"
)

var (
	RecordsClassified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "benchboard_records_classified_total",
		Help: "Total records run through the classifier",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "benchboard_cache_hits_total",
		Help: "Dashboard cache hits by tier",
	}, []string{"tier"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "benchboard_cache_misses_total",
		Help: "Dashboard cache misses by tier",
	}, []string{"tier"})

	DurableFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "benchboard_durable_failures_total",
		Help: "Durable-tier operations that failed and degraded to memory-only",
	})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
