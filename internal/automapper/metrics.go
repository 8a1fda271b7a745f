package automapper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors of the automapper. A nil *Metrics records nothing.
type Metrics struct {
	cacheLookups *prometheus.CounterVec
	results      *prometheus.CounterVec
	visited      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upload_mapper",
			Subsystem: "automapper",
			Name:      "cache_lookups_total",
			Help:      "Traversal cache lookups by result (hit or miss).",
		}, []string{"result"}),
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upload_mapper",
			Subsystem: "automapper",
			Name:      "headers_total",
			Help:      "Headers processed by mode and outcome (mapped or abstained).",
		}, []string{"mode", "outcome"}),
		visited: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "upload_mapper",
			Subsystem: "automapper",
			Name:      "traversal_nodes",
			Help:      "Schema nodes visited per uncached traversal.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 10),
		}),
	}
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}

	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) result(mode Mode, mapped bool) {
	if m == nil {
		return
	}

	outcome := "abstained"
	if mapped {
		outcome = "mapped"
	}

	m.results.WithLabelValues(mode.String(), outcome).Inc()
}

func (m *Metrics) traversal(visited int) {
	if m == nil {
		return
	}

	m.visited.Observe(float64(visited))
}
