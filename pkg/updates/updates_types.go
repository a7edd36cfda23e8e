package updates

import (
	"context"
	"sync"
	"time"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/metrics"
)

// KindMetricsUpdate is the event kind published by the Ticker
const KindMetricsUpdate = "metrics_update"

// DefaultInterval is the Ticker period when none is configured
const DefaultInterval = 10 * time.Second

// Event is delivered to every subscriber
type Event struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// Callback receives published events. It runs on the publisher's goroutine.
type Callback func(Event)

// subscriber is one registered callback
type subscriber struct {
	id string
	cb Callback
}

// Registry holds subscribers in registration order
type Registry struct {
	subscribers []subscriber
	mu          sync.RWMutex
	logger      logging.Logger
	metrics     *metrics.Registry
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used to report callback panics
func WithLogger(logger logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics records subscriber counts and dispatches
func WithMetrics(m *metrics.Registry) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// MetricsProvider supplies the dashboard summary published on each tick.
// *service.Service satisfies it.
type MetricsProvider interface {
	DashboardMetrics(ctx context.Context) (*intel.DashboardMetrics, error)
}

// Ticker periodically publishes dashboard metrics to a Registry. One
// Ticker serves every subscriber of its registry.
type Ticker struct {
	registry *Registry
	provider MetricsProvider
	interval time.Duration
	logger   logging.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}
