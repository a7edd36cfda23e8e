package service

import (
	"time"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/metrics"
	"github.com/dd0wney/threatloom/pkg/stats"
)

// Result is a filtered page together with summary statistics computed on
// the unfiltered batch
type Result[T any, S any] struct {
	intel.Page[T]
	Stats S `json:"stats"`
}

type (
	IndicatorResult = Result[intel.Indicator, stats.IndicatorStats]
	AlertResult     = Result[intel.Alert, stats.AlertStats]
	FeedResult      = Result[intel.Feed, stats.FeedStats]
	PlaybookResult  = Result[intel.Playbook, stats.PlaybookStats]
)

// AnomalyResult is an anomaly report whose recent list has been filtered
type AnomalyResult struct {
	intel.AnomalyReport
	Window  string             `json:"window"`
	Total   int                `json:"total"`
	Matched int                `json:"matched"`
	Stats   stats.AnomalyStats `json:"stats"`
}

// Service composes a data source with the filter engine, statistics,
// logging and metrics. It is safe for concurrent use.
type Service struct {
	source  intel.Source
	logger  logging.Logger
	metrics *metrics.Registry
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

func WithLogger(logger logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock sets the clock used for time-relative statistics
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
