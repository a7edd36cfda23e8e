// Package simulate synthesizes threat intelligence data locally. Every call
// allocates a fresh batch; nothing is cached or mutated after generation.
package simulate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dd0wney/threatloom/pkg/filter"
	"github.com/dd0wney/threatloom/pkg/intel"
)

const hexDigits = "0123456789abcdef"

// NewGenerator creates a generator. Without options it draws from the
// process-wide random source and the wall clock.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng: globalRand{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Now returns the generator clock's current time
func (g *Generator) Now() time.Time {
	return g.now()
}

// intn returns a uniform int in [0, n), or 0 when n is not positive
func (g *Generator) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.rng.IntN(n)
}

// between returns a uniform int in [lo, hi)
func (g *Generator) between(lo, hi int) int {
	return lo + g.intn(hi-lo)
}

func pick[T any](g *Generator, items []T) T {
	return items[g.intn(len(items))]
}

// pickDistinct draws between 1 and maxCount distinct items
func pickDistinct(g *Generator, items []string, maxCount int) []string {
	count := 1 + g.intn(maxCount)
	if count > len(items) {
		count = len(items)
	}
	pool := make([]string, len(items))
	copy(pool, items)
	for i := 0; i < count; i++ {
		j := i + g.intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count]
}

// ago returns a timestamp uniformly distributed in (now-span, now]
func (g *Generator) ago(now time.Time, span time.Duration) time.Time {
	return now.Add(-time.Duration(g.rng.Float64() * float64(span)))
}

// TimeSeries returns hours+1 points spaced one hour apart and ending at now.
// Each value is uniform in [min, max); when max <= min every value is min.
func (g *Generator) TimeSeries(hours, min, max int) []intel.TimeSeriesPoint {
	if hours < 0 {
		hours = 0
	}
	now := g.now()
	points := make([]intel.TimeSeriesPoint, 0, hours+1)
	for i := hours; i >= 0; i-- {
		points = append(points, intel.TimeSeriesPoint{
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
			Value:     g.between(min, max),
		})
	}
	return points
}

// DashboardMetrics generates the landing page summary
func (g *Generator) DashboardMetrics() *intel.DashboardMetrics {
	regionData := make([]intel.RegionStat, len(regions))
	copy(regionData, regions)

	return &intel.DashboardMetrics{
		ActiveThreats:   g.between(100, 150),
		CriticalAlerts:  g.between(15, 35),
		FeedsOnline:     g.between(7, 9),
		AvgResponseTime: math.Round((g.rng.Float64()*3+2)*10) / 10,
		ThreatVolume:    g.TimeSeries(24, 50, 200),
		RegionData:      regionData,
	}
}

// IndicatorValue synthesizes a value shaped like the given indicator type.
// Unrecognized types yield "unknown".
func (g *Generator) IndicatorValue(t intel.IndicatorType) string {
	switch t {
	case intel.IndicatorIP:
		return fmt.Sprintf("%d.%d.%d.%d", g.intn(255), g.intn(255), g.intn(255), g.intn(255))
	case intel.IndicatorDomain:
		return pick(g, maliciousDomains)
	case intel.IndicatorHash:
		var b strings.Builder
		b.Grow(64)
		for i := 0; i < 64; i++ {
			b.WriteByte(hexDigits[g.intn(16)])
		}
		return b.String()
	case intel.IndicatorURL:
		return fmt.Sprintf("https://malicious-site.com/payload%d", g.intn(1000))
	case intel.IndicatorEmail:
		return fmt.Sprintf("threat-actor%d@malicious-domain.com", g.intn(100))
	default:
		return "unknown"
	}
}

// IndicatorDescription returns the canned description for an indicator type
func IndicatorDescription(t intel.IndicatorType) string {
	if d, ok := indicatorDescriptions[t]; ok {
		return d
	}
	return "Unknown threat indicator"
}

// Indicators generates a batch of IndicatorCount indicators
func (g *Generator) Indicators() []intel.Indicator {
	now := g.now()
	indicators := make([]intel.Indicator, 0, IndicatorCount)
	for i := 0; i < IndicatorCount; i++ {
		t := pick(g, intel.IndicatorTypes)
		indicators = append(indicators, intel.Indicator{
			ID:          fmt.Sprintf("IOC-%04d", i),
			Type:        t,
			Value:       g.IndicatorValue(t),
			Severity:    pick(g, intel.Severities),
			Source:      pick(g, indicatorSources),
			FirstSeen:   g.ago(now, 30*24*time.Hour),
			LastSeen:    g.ago(now, 24*time.Hour),
			Confidence:  g.between(60, 100),
			Tags:        pickDistinct(g, indicatorTags, 3),
			Description: IndicatorDescription(t),
		})
	}
	return indicators
}

// Anomalies generates count anomalies observed within window, newest first
func (g *Generator) Anomalies(count int, window time.Duration) []intel.Anomaly {
	if window <= 0 {
		window = intel.DefaultAnomalyWindow
	}
	now := g.now()
	anomalies := make([]intel.Anomaly, 0, count)
	for i := 0; i < count; i++ {
		anomalies = append(anomalies, intel.Anomaly{
			ID:          fmt.Sprintf("ANOM-%04d", i),
			Type:        pick(g, anomalyTypes),
			Severity:    pick(g, anomalySeverities),
			Timestamp:   g.ago(now, window),
			Source:      fmt.Sprintf("host-%d", g.intn(100)),
			Description: "Suspicious activity detected by ML model",
			Score:       math.Round((g.rng.Float64()*0.5+0.5)*100) / 100,
		})
	}
	filter.SortNewestFirst(anomalies, func(a intel.Anomaly) time.Time { return a.Timestamp })
	return anomalies
}

// AnomalyReport generates the composite anomaly payload for window
func (g *Generator) AnomalyReport(window time.Duration) *intel.AnomalyReport {
	if window <= 0 {
		window = intel.DefaultAnomalyWindow
	}
	categories := make([]intel.AnomalyCategory, len(anomalyCategories))
	copy(categories, anomalyCategories)

	hours := int(window / time.Hour)
	if hours < 1 {
		hours = 1
	}

	return &intel.AnomalyReport{
		Summary:         anomalySummary,
		Categories:      categories,
		RecentAnomalies: g.Anomalies(AnomalyCount, window),
		TimeSeries:      g.TimeSeries(hours, 5, 25),
	}
}

// Alerts generates a batch of AlertCount alerts, newest first
func (g *Generator) Alerts() []intel.Alert {
	now := g.now()
	alerts := make([]intel.Alert, 0, AlertCount)
	for i := 0; i < AlertCount; i++ {
		alerts = append(alerts, intel.Alert{
			ID:              fmt.Sprintf("ALERT-%04d", i),
			Title:           pick(g, alertTitles),
			Severity:        pick(g, intel.Severities),
			Status:          pick(g, intel.AlertStatuses),
			Created:         g.ago(now, 7*24*time.Hour),
			Assignee:        pick(g, analysts),
			Source:          "SIEM",
			MitreTactics:    pickDistinct(g, alertTactics, 3),
			AffectedSystems: g.between(1, 11),
		})
	}
	filter.SortNewestFirst(alerts, func(a intel.Alert) time.Time { return a.Created })
	return alerts
}

// Analytics generates the threat analytics bundle
func (g *Generator) Analytics() *intel.AnalyticsBundle {
	heatmap := make([]intel.TacticCoverage, 0, len(heatmapTactics))
	for _, tactic := range heatmapTactics {
		heatmap = append(heatmap, intel.TacticCoverage{
			Tactic:     tactic,
			Techniques: g.between(5, 25),
			Detections: g.between(10, 110),
			Coverage:   g.between(50, 100),
		})
	}

	return &intel.AnalyticsBundle{
		ThreatActors:    append([]intel.ThreatActor(nil), threatActors...),
		AttackVectors:   append([]intel.AttackVector(nil), attackVectors...),
		IndustryTargets: append([]intel.IndustryTarget(nil), industryTargets...),
		MitreTactics:    heatmap,
	}
}

// Feeds returns the feed fixtures with update times relative to now
func (g *Generator) Feeds() []intel.Feed {
	now := g.now()
	feeds := make([]intel.Feed, 0, len(feedFixtures))
	for _, f := range feedFixtures {
		feed := f.feed
		feed.LastUpdate = now.Add(-f.age)
		feeds = append(feeds, feed)
	}
	return feeds
}

// Playbooks returns the playbook fixtures
func (g *Generator) Playbooks() []intel.Playbook {
	return append([]intel.Playbook(nil), playbookFixtures...)
}
