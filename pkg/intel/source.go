// Package intel defines the threat intelligence records served by ThreatLoom
// and the Source contract shared by the simulated and remote data sources.
package intel

import (
	"context"
	"errors"
	"time"
)

// Domain names one of the data sets a Source can serve
type Domain string

const (
	DomainDashboard  Domain = "dashboard"
	DomainIndicators Domain = "indicators"
	DomainAnomalies  Domain = "anomalies"
	DomainAlerts     Domain = "alerts"
	DomainAnalytics  Domain = "analytics"
	DomainFeeds      Domain = "feeds"
	DomainPlaybooks  Domain = "playbooks"
)

// Domains lists every domain in dashboard order
var Domains = []Domain{
	DomainDashboard,
	DomainIndicators,
	DomainAnomalies,
	DomainAlerts,
	DomainAnalytics,
	DomainFeeds,
	DomainPlaybooks,
}

// DefaultAnomalyWindow is the look-back used when no window is requested
const DefaultAnomalyWindow = 24 * time.Hour

var (
	// ErrUnsupported is returned when a source cannot serve an operation
	ErrUnsupported = errors.New("operation not supported by data source")
)

// Source produces domain data. Collections are returned as whole batches;
// criteria are a hint a source may use to pre-narrow its query, and the
// caller applies the filter engine afterwards.
type Source interface {
	// Name identifies the source variant ("simulated", "remote")
	Name() string
	DashboardMetrics(ctx context.Context) (*DashboardMetrics, error)
	Indicators(ctx context.Context, c Criteria) ([]Indicator, error)
	Anomalies(ctx context.Context, window time.Duration) (*AnomalyReport, error)
	Alerts(ctx context.Context, c Criteria) ([]Alert, error)
	Analytics(ctx context.Context) (*AnalyticsBundle, error)
	Feeds(ctx context.Context) ([]Feed, error)
	Playbooks(ctx context.Context) ([]Playbook, error)
}

// TimeSeriesSource is implemented by sources that can synthesize chart data
// on demand
type TimeSeriesSource interface {
	TimeSeries(hours, min, max int) []TimeSeriesPoint
}
