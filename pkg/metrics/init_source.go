package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// batchBuckets covers the fixed batch sizes (50, 200, 500) and filtered pages
var batchBuckets = []float64{0, 1, 5, 10, 25, 50, 100, 200, 500, 1000}

func (r *Registry) initSourceMetrics() {
	r.SourceOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatloom_source_operations_total",
			Help: "Total number of data source calls",
		},
		[]string{"source", "domain", "status"},
	)

	r.SourceOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threatloom_source_operation_duration_seconds",
			Help:    "Data source call duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"source", "domain"},
	)

	r.FilterItemsIn = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threatloom_filter_items_in",
			Help:    "Records handed to the filter engine per call",
			Buckets: batchBuckets,
		},
		[]string{"domain"},
	)

	r.FilterItemsOut = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threatloom_filter_items_out",
			Help:    "Records returned by the filter engine per call",
			Buckets: batchBuckets,
		},
		[]string{"domain"},
	)

	r.FilterTruncatedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatloom_filter_truncated_total",
			Help: "Filtered pages that dropped matches because of the limit",
		},
		[]string{"domain"},
	)
}
