package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "threatloom"

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec
	HTTPRateLimitedTotal  prometheus.Counter

	// Source Metrics
	SourceOperationsTotal   *prometheus.CounterVec
	SourceOperationDuration *prometheus.HistogramVec

	// Filter Metrics
	FilterItemsIn        *prometheus.HistogramVec
	FilterItemsOut       *prometheus.HistogramVec
	FilterTruncatedTotal *prometheus.CounterVec

	// Update Metrics
	UpdateSubscribers         prometheus.Gauge
	UpdateEventsTotal         *prometheus.CounterVec
	UpdateCallbackPanicsTotal prometheus.Counter
	UpdateDispatchDuration    prometheus.Histogram

	// Remote Search Metrics
	RemoteJobsTotal     *prometheus.CounterVec
	RemotePollsTotal    prometheus.Counter
	RemoteJobDuration   prometheus.Histogram
	RemoteFailuresTotal *prometheus.CounterVec

	// Export Metrics
	SnapshotsTotal       *prometheus.CounterVec
	SnapshotSizeBytes    *prometheus.HistogramVec
	GraphQLRequestsTotal *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry  *prometheus.Registry
	startTime time.Time
	mu        sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}

	r.initHTTPMetrics()
	r.initSourceMetrics()
	r.initUpdateMetrics()
	r.initRemoteMetrics()
	r.initExportMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
