// Package metrics holds the prometheus collectors for store and query
// operations.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	storeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolodex_store_operations_total",
			Help: "Store and query operations by outcome.",
		},
		[]string{"op", "result"},
	)

	queryRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rolodex_query_rows",
			Help:    "Rows returned by cross-table queries.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"kind"},
	)
)

// Observe counts one op with the outcome of err.
func Observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOps.WithLabelValues(op, result).Inc()
}

// Rows records the size of a combine or search result.
func Rows(kind string, n int) {
	queryRows.WithLabelValues(kind).Observe(float64(n))
}

// Snapshot gathers all rolodex_* families from the default registry.
func Snapshot() ([]*dto.MetricFamily, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, err
	}
	out := families[:0]
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "rolodex_") {
			out = append(out, mf)
		}
	}
	return out, nil
}
