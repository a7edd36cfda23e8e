// Package api serves the ThreatLoom REST routes, the GraphQL endpoint,
// health probes and Prometheus metrics over one http.Handler.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dd0wney/threatloom/pkg/api/middleware"
	"github.com/dd0wney/threatloom/pkg/config"
	"github.com/dd0wney/threatloom/pkg/graphql"
	"github.com/dd0wney/threatloom/pkg/health"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/service"
)

// NewServer creates a new API server around svc
func NewServer(svc *service.Service, cfg config.HTTPConfig, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("api: service is required")
	}

	s := &Server{
		svc:       svc,
		logger:    logging.NewNopLogger(),
		cfg:       cfg,
		maxDepth:  graphql.DefaultMaxDepth,
		startTime: time.Now(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.Component("api"))

	if s.healthChecker == nil {
		s.healthChecker = health.NewHealthChecker(s.version)
		s.healthChecker.RegisterReadinessCheck("source",
			health.SourceCheck(svc.SourceName(), svc.Ping, DefaultSlowSource))
	}

	schema, err := graphql.NewSchema(svc,
		graphql.WithHealth(s.healthStatus),
		graphql.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("api: build graphql schema: %w", err)
	}
	s.graphqlHandler = graphql.NewGraphQLHandler(schema,
		graphql.WithMaxDepth(s.maxDepth),
		graphql.WithHandlerLogger(s.logger),
		graphql.WithMetrics(s.metricsRegistry),
	)

	s.corsConfig = middleware.NewCORSConfig(cfg.CORSAllowedOrigins)
	s.clientIP = middleware.NewClientIPResolver(cfg.TrustedProxies, s.logger)

	if cfg.RateLimit > 0 {
		rlConfig := middleware.DefaultRateLimitConfig()
		rlConfig.RequestsPerSecond = cfg.RateLimit
		rlConfig.BurstSize = cfg.RateBurst
		s.rateLimiter = middleware.NewRateLimiter(rlConfig, s.logger)
	}

	return s, nil
}

func (s *Server) healthStatus(ctx context.Context) string {
	return string(s.healthChecker.Check(ctx).Status)
}

// routes registers every endpoint on a fresh mux
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("GET /health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("GET /health/ready", s.healthChecker.ReadinessHandler())
	mux.HandleFunc("GET /health/live", s.healthChecker.LivenessHandler())
	if s.metricsRegistry != nil {
		mux.Handle("GET /metrics", s.metricsHandler())
	}

	// Intelligence endpoints
	mux.HandleFunc("GET "+APIPrefix+"/dashboard", s.handleDashboard)
	mux.HandleFunc("GET "+APIPrefix+"/indicators", s.handleIndicators)
	mux.HandleFunc("GET "+APIPrefix+"/alerts", s.handleAlerts)
	mux.HandleFunc("GET "+APIPrefix+"/anomalies", s.handleAnomalies)
	mux.HandleFunc("GET "+APIPrefix+"/analytics", s.handleAnalytics)
	mux.HandleFunc("GET "+APIPrefix+"/feeds", s.handleFeeds)
	mux.HandleFunc("GET "+APIPrefix+"/playbooks", s.handlePlaybooks)
	mux.HandleFunc("GET "+APIPrefix+"/timeseries", s.handleTimeSeries)
	mux.HandleFunc("GET "+APIPrefix+"/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET "+APIPrefix+"/status", s.handleStatus)

	// GraphQL answers its own 405 so clients get a GraphQL shaped error
	mux.Handle("/graphql", s.graphqlHandler)

	return mux
}

// Handler returns the routes wrapped in the middleware chain. Outermost
// first: request id, logging, panic recovery, security headers, CORS,
// rate limiting, body limit, metrics.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()

	// Metrics must wrap the mux directly to see the matched pattern
	if s.metricsRegistry != nil {
		handler = middleware.Metrics(s.metricsRegistry)(handler)
	}
	handler = middleware.BodySizeLimit(s.cfg.MaxBodyBytes)(handler)
	handler = middleware.RateLimit(s.rateLimiter, s.clientIP.ClientIP, s.onRateLimited)(handler)
	handler = middleware.CORS(s.corsConfig)(handler)
	handler = middleware.SecurityHeaders(nil)(handler)
	handler = middleware.PanicRecovery(s.logger)(handler)
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.RequestID()(handler)

	return handler
}

// metricsHandler refreshes the system gauges before each scrape
func (s *Server) metricsHandler() http.Handler {
	exposition := s.metricsRegistry.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metricsRegistry.UpdateSystemMetrics()
		exposition.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(*http.Request, string) {
	if s.metricsRegistry != nil {
		s.metricsRegistry.RecordRateLimited()
	}
}

// HealthChecker exposes the checker so callers can register more checks
func (s *Server) HealthChecker() *health.HealthChecker {
	return s.healthChecker
}

// Close releases background resources. It does not stop an http.Server
// serving Handler().
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
