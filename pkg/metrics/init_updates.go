package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initUpdateMetrics() {
	r.UpdateSubscribers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "threatloom_update_subscribers",
			Help: "Number of registered update subscribers",
		},
	)

	r.UpdateEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatloom_update_events_total",
			Help: "Total number of update events published",
		},
		[]string{"kind"},
	)

	r.UpdateCallbackPanicsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "threatloom_update_callback_panics_total",
			Help: "Subscriber callbacks that panicked during dispatch",
		},
	)

	r.UpdateDispatchDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "threatloom_update_dispatch_duration_seconds",
			Help:    "Time to deliver one event to every subscriber",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		},
	)
}
