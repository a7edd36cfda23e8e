package simulate

import (
	"context"
	"time"

	"github.com/dd0wney/threatloom/pkg/intel"
)

// Source serves generated data through the intel.Source contract. Criteria
// are ignored at generation time; the caller filters the returned batch.
type Source struct {
	gen *Generator
}

var (
	_ intel.Source           = (*Source)(nil)
	_ intel.TimeSeriesSource = (*Source)(nil)
)

// NewSource creates a simulated source backed by gen
func NewSource(gen *Generator) *Source {
	if gen == nil {
		gen = NewGenerator()
	}
	return &Source{gen: gen}
}

func (s *Source) Name() string { return "simulated" }

// Generator exposes the underlying generator
func (s *Source) Generator() *Generator { return s.gen }

func (s *Source) DashboardMetrics(ctx context.Context) (*intel.DashboardMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gen.DashboardMetrics(), nil
}

func (s *Source) Indicators(ctx context.Context, _ intel.Criteria) ([]intel.Indicator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gen.Indicators(), nil
}

func (s *Source) Anomalies(ctx context.Context, window time.Duration) (*intel.AnomalyReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gen.AnomalyReport(window), nil
}

func (s *Source) Alerts(ctx context.Context, _ intel.Criteria) ([]intel.Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gen.Alerts(), nil
}

func (s *Source) Analytics(ctx context.Context) (*intel.AnalyticsBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gen.Analytics(), nil
}

func (s *Source) Feeds(ctx context.Context) ([]intel.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gen.Feeds(), nil
}

func (s *Source) Playbooks(ctx context.Context) ([]intel.Playbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gen.Playbooks(), nil
}

// TimeSeries synthesizes chart data directly from the generator
func (s *Source) TimeSeries(hours, min, max int) []intel.TimeSeriesPoint {
	return s.gen.TimeSeries(hours, min, max)
}
