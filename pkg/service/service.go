// Package service is the single entry point the HTTP API, GraphQL schema,
// terminal dashboard and snapshot writer use to read threat intelligence.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/threatloom/pkg/filter"
	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/stats"
	"github.com/dd0wney/threatloom/pkg/validation"
)

// New creates a service over source
func New(source intel.Source, opts ...Option) *Service {
	s := &Service{
		source: source,
		logger: logging.NewNopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.Component("service"), logging.SourceName(source.Name()))
	return s
}

// SourceName identifies the configured data source variant
func (s *Service) SourceName() string {
	return s.source.Name()
}

// observe records one source call in metrics and the debug log
func (s *Service) observe(domain intel.Domain, timer *logging.TimedOperation, err error, fields ...logging.Field) {
	elapsed := timer.Finish(err, fields...)
	if s.metrics != nil {
		s.metrics.RecordSourceOperation(s.source.Name(), string(domain), err, elapsed)
	}
}

func (s *Service) recordFilter(domain intel.Domain, total, matched, returned int) {
	if s.metrics != nil {
		s.metrics.RecordFilter(string(domain), total, returned, matched > returned)
	}
}

// collect fetches a batch, summarizes it and applies c
func collect[T filter.Record, S any](
	ctx context.Context,
	s *Service,
	domain intel.Domain,
	c intel.Criteria,
	fetch func(context.Context, intel.Criteria) ([]T, error),
	summarize func([]T) S,
) (*Result[T, S], error) {
	if err := validation.ValidateCriteria(domain, c); err != nil {
		return nil, fmt.Errorf("%s: %w", domain, err)
	}

	timer := logging.StartTimer(s.logger, "source call", logging.Domain(string(domain)))
	items, err := fetch(ctx, c)
	if err != nil {
		s.observe(domain, timer, err)
		return nil, fmt.Errorf("fetch %s: %w", domain, err)
	}

	page := filter.Apply(items, c)
	s.observe(domain, timer, nil, logging.Matched(page.Total, page.Matched, len(page.Items))...)
	s.recordFilter(domain, page.Total, page.Matched, len(page.Items))

	return &Result[T, S]{Page: page, Stats: summarize(items)}, nil
}

// DashboardMetrics returns the landing page summary
func (s *Service) DashboardMetrics(ctx context.Context) (*intel.DashboardMetrics, error) {
	timer := logging.StartTimer(s.logger, "source call", logging.Domain(string(intel.DomainDashboard)))
	m, err := s.source.DashboardMetrics(ctx)
	s.observe(intel.DomainDashboard, timer, err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", intel.DomainDashboard, err)
	}
	return m, nil
}

// Indicators returns indicators matching c
func (s *Service) Indicators(ctx context.Context, c intel.Criteria) (*IndicatorResult, error) {
	now := s.now()
	return collect(ctx, s, intel.DomainIndicators, c, s.source.Indicators, func(items []intel.Indicator) stats.IndicatorStats {
		return stats.Indicators(items, now)
	})
}

// Alerts returns alerts matching c. Status "all" imposes no constraint.
func (s *Service) Alerts(ctx context.Context, c intel.Criteria) (*AlertResult, error) {
	return collect(ctx, s, intel.DomainAlerts, c, s.source.Alerts, stats.Alerts)
}

// Feeds returns feeds matching c
func (s *Service) Feeds(ctx context.Context, c intel.Criteria) (*FeedResult, error) {
	fetch := func(ctx context.Context, _ intel.Criteria) ([]intel.Feed, error) {
		return s.source.Feeds(ctx)
	}
	return collect(ctx, s, intel.DomainFeeds, c, fetch, stats.Feeds)
}

// Playbooks returns playbooks matching c; Criteria.Type selects a category
func (s *Service) Playbooks(ctx context.Context, c intel.Criteria) (*PlaybookResult, error) {
	fetch := func(ctx context.Context, _ intel.Criteria) ([]intel.Playbook, error) {
		return s.source.Playbooks(ctx)
	}
	return collect(ctx, s, intel.DomainPlaybooks, c, fetch, stats.Playbooks)
}

// Anomalies returns the anomaly report for window with its recent list
// narrowed by c. A zero window selects intel.DefaultAnomalyWindow.
func (s *Service) Anomalies(ctx context.Context, c intel.Criteria, window time.Duration) (*AnomalyResult, error) {
	if err := validation.ValidateCriteria(intel.DomainAnomalies, c); err != nil {
		return nil, fmt.Errorf("%s: %w", intel.DomainAnomalies, err)
	}
	if err := validation.ValidateWindow(window); err != nil {
		return nil, fmt.Errorf("%s: %w", intel.DomainAnomalies, err)
	}
	if window == 0 {
		window = intel.DefaultAnomalyWindow
	}

	timer := logging.StartTimer(s.logger, "source call", logging.Domain(string(intel.DomainAnomalies)))
	report, err := s.source.Anomalies(ctx, window)
	if err != nil {
		s.observe(intel.DomainAnomalies, timer, err)
		return nil, fmt.Errorf("fetch %s: %w", intel.DomainAnomalies, err)
	}

	page := filter.Apply(report.RecentAnomalies, c)
	s.observe(intel.DomainAnomalies, timer, nil, logging.Matched(page.Total, page.Matched, len(page.Items))...)
	s.recordFilter(intel.DomainAnomalies, page.Total, page.Matched, len(page.Items))

	result := &AnomalyResult{
		AnomalyReport: *report,
		Window:        window.String(),
		Total:         page.Total,
		Matched:       page.Matched,
		Stats:         stats.Anomalies(report.RecentAnomalies),
	}
	result.RecentAnomalies = page.Items
	return result, nil
}

// Analytics returns the threat analytics bundle
func (s *Service) Analytics(ctx context.Context) (*intel.AnalyticsBundle, error) {
	timer := logging.StartTimer(s.logger, "source call", logging.Domain(string(intel.DomainAnalytics)))
	bundle, err := s.source.Analytics(ctx)
	s.observe(intel.DomainAnalytics, timer, err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", intel.DomainAnalytics, err)
	}
	return bundle, nil
}

// TimeSeries synthesizes chart data. Only sources that generate data
// locally support it; others return intel.ErrUnsupported.
func (s *Service) TimeSeries(hours, min, max int) ([]intel.TimeSeriesPoint, error) {
	if err := validation.ValidateTimeSeries(hours, min, max); err != nil {
		return nil, fmt.Errorf("timeseries: %w", err)
	}
	ts, ok := s.source.(intel.TimeSeriesSource)
	if !ok {
		return nil, fmt.Errorf("timeseries on %s source: %w", s.source.Name(), intel.ErrUnsupported)
	}
	return ts.TimeSeries(hours, min, max), nil
}

// Ping checks the source can answer a cheap request
func (s *Service) Ping(ctx context.Context) error {
	_, err := s.source.Feeds(ctx)
	if err != nil && !errors.Is(err, intel.ErrUnsupported) {
		return err
	}
	return nil
}
