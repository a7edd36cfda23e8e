package remote

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/dd0wney/threatloom/pkg/intel"
)

// Searcher runs one query and returns its rows. *Client implements it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]map[string]any, error)
}

// Source serves domain records from search results. Rows are decoded in the
// order the backend returns them; filtering is left to the caller.
type Source struct {
	searcher Searcher
}

var _ intel.Source = (*Source)(nil)

// NewSource creates a remote source backed by s
func NewSource(s Searcher) *Source {
	return &Source{searcher: s}
}

func (s *Source) Name() string { return "remote" }

// dashboardRow is the shape produced by DashboardQuery
type dashboardRow struct {
	ThreatCount    int     `json:"threat_count"`
	CriticalAlerts int     `json:"critical_alerts"`
	FeedsOnline    int     `json:"feeds_online"`
	AvgResponse    float64 `json:"avg_response"`
}

func (s *Source) DashboardMetrics(ctx context.Context) (*intel.DashboardMetrics, error) {
	rows, err := s.searcher.Search(ctx, DashboardQuery())
	if err != nil {
		return nil, err
	}

	metrics := &intel.DashboardMetrics{
		ThreatVolume: []intel.TimeSeriesPoint{},
		RegionData:   []intel.RegionStat{},
	}
	if len(rows) == 0 {
		return metrics, nil
	}

	var row dashboardRow
	if err := decodeRow(rows[0], &row); err != nil {
		return nil, &QueryError{Op: "dashboard", Err: err}
	}
	metrics.ActiveThreats = row.ThreatCount
	metrics.CriticalAlerts = row.CriticalAlerts
	metrics.FeedsOnline = row.FeedsOnline
	metrics.AvgResponseTime = row.AvgResponse
	return metrics, nil
}

func (s *Source) Indicators(ctx context.Context, c intel.Criteria) ([]intel.Indicator, error) {
	rows, err := s.searcher.Search(ctx, IndicatorsQuery(c))
	if err != nil {
		return nil, err
	}
	return decodeRows[intel.Indicator]("indicators", rows)
}

func (s *Source) Anomalies(ctx context.Context, window time.Duration) (*intel.AnomalyReport, error) {
	rows, err := s.searcher.Search(ctx, AnomaliesQuery(window))
	if err != nil {
		return nil, err
	}
	anomalies, err := decodeRows[intel.Anomaly]("anomalies", rows)
	if err != nil {
		return nil, err
	}

	critical := 0
	for _, a := range anomalies {
		if a.Severity == intel.SeverityCritical {
			critical++
		}
	}

	return &intel.AnomalyReport{
		Summary: intel.AnomalySummary{
			TotalAnomalies:    len(anomalies),
			CriticalAnomalies: critical,
		},
		Categories:      []intel.AnomalyCategory{},
		RecentAnomalies: anomalies,
		TimeSeries:      []intel.TimeSeriesPoint{},
	}, nil
}

func (s *Source) Alerts(ctx context.Context, c intel.Criteria) ([]intel.Alert, error) {
	rows, err := s.searcher.Search(ctx, AlertsQuery(c))
	if err != nil {
		return nil, err
	}
	return decodeRows[intel.Alert]("alerts", rows)
}

// analyticsRow is one "stats count by" bucket
type analyticsRow struct {
	ThreatActor    string `json:"threat_actor"`
	AttackVector   string `json:"attack_vector"`
	TargetIndustry string `json:"target_industry"`
	Count          int    `json:"count"`
}

// Analytics folds the per-bucket counts into actor, vector and industry
// rankings. The ATT&CK heatmap has no backend equivalent and stays empty.
func (s *Source) Analytics(ctx context.Context) (*intel.AnalyticsBundle, error) {
	rows, err := s.searcher.Search(ctx, AnalyticsQuery())
	if err != nil {
		return nil, err
	}
	buckets, err := decodeRows[analyticsRow]("analytics", rows)
	if err != nil {
		return nil, err
	}

	actors := tally(buckets, func(r analyticsRow) string { return r.ThreatActor })
	vectors := tally(buckets, func(r analyticsRow) string { return r.AttackVector })
	industries := tally(buckets, func(r analyticsRow) string { return r.TargetIndustry })

	bundle := &intel.AnalyticsBundle{
		ThreatActors:    make([]intel.ThreatActor, 0, len(actors.keys)),
		AttackVectors:   make([]intel.AttackVector, 0, len(vectors.keys)),
		IndustryTargets: make([]intel.IndustryTarget, 0, len(industries.keys)),
		MitreTactics:    []intel.TacticCoverage{},
	}
	for _, name := range actors.keys {
		bundle.ThreatActors = append(bundle.ThreatActors, intel.ThreatActor{Name: name, Campaigns: actors.counts[name]})
	}
	for _, name := range vectors.keys {
		bundle.AttackVectors = append(bundle.AttackVectors, intel.AttackVector{Vector: name, Percentage: vectors.percent(name)})
	}
	for _, name := range industries.keys {
		bundle.IndustryTargets = append(bundle.IndustryTargets, intel.IndustryTarget{
			Industry:   name,
			Attacks:    industries.counts[name],
			Percentage: industries.percent(name),
		})
	}
	return bundle, nil
}

func (s *Source) Feeds(ctx context.Context) ([]intel.Feed, error) {
	rows, err := s.searcher.Search(ctx, FeedsQuery())
	if err != nil {
		return nil, err
	}
	return decodeRows[intel.Feed]("feeds", rows)
}

func (s *Source) Playbooks(ctx context.Context) ([]intel.Playbook, error) {
	rows, err := s.searcher.Search(ctx, PlaybooksQuery())
	if err != nil {
		return nil, err
	}
	return decodeRows[intel.Playbook]("playbooks", rows)
}

// tallies sums counts per key, keeping keys ordered by descending count
type tallies struct {
	keys   []string
	counts map[string]int
	total  int
}

func tally(rows []analyticsRow, key func(analyticsRow) string) tallies {
	t := tallies{counts: make(map[string]int)}
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		if _, seen := t.counts[k]; !seen {
			t.keys = append(t.keys, k)
		}
		t.counts[k] += r.Count
		t.total += r.Count
	}
	slices.SortStableFunc(t.keys, func(a, b string) int {
		return t.counts[b] - t.counts[a]
	})
	return t
}

func (t tallies) percent(k string) int {
	if t.total == 0 {
		return 0
	}
	return int(math.Round(float64(t.counts[k]) * 100 / float64(t.total)))
}
