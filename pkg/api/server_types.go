package api

import (
	"time"

	"github.com/dd0wney/threatloom/pkg/api/middleware"
	"github.com/dd0wney/threatloom/pkg/config"
	"github.com/dd0wney/threatloom/pkg/graphql"
	"github.com/dd0wney/threatloom/pkg/health"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/metrics"
	"github.com/dd0wney/threatloom/pkg/service"
	"github.com/dd0wney/threatloom/pkg/updates"
)

// APIPrefix is the base path of the REST routes
const APIPrefix = "/api/v1"

// DefaultSlowSource is the ping latency above which the source check
// reports degraded
const DefaultSlowSource = 2 * time.Second

// Server represents the HTTP API server
type Server struct {
	svc             *service.Service
	graphqlHandler  *graphql.GraphQLHandler
	healthChecker   *health.HealthChecker
	metricsRegistry *metrics.Registry
	logger          logging.Logger
	cfg             config.HTTPConfig
	corsConfig      *middleware.CORSConfig
	rateLimiter     *middleware.RateLimiter // nil when rate limiting is disabled
	clientIP        *middleware.ClientIPResolver
	updates         *updates.Registry
	ticker          *updates.Ticker
	maxDepth        int
	startTime       time.Time
	version         string
}

// Option configures a Server
type Option func(*Server)

func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Registry) Option {
	return func(s *Server) {
		s.metricsRegistry = m
	}
}

// WithHealthChecker replaces the default checker, which only pings the
// source
func WithHealthChecker(hc *health.HealthChecker) Option {
	return func(s *Server) {
		s.healthChecker = hc
	}
}

func WithVersion(version string) Option {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// WithGraphQLMaxDepth overrides graphql.DefaultMaxDepth; 0 disables the
// depth check
func WithGraphQLMaxDepth(depth int) Option {
	return func(s *Server) {
		s.maxDepth = depth
	}
}

// WithUpdates reports the update registry and ticker on the status route
func WithUpdates(registry *updates.Registry, ticker *updates.Ticker) Option {
	return func(s *Server) {
		s.updates = registry
		s.ticker = ticker
	}
}
