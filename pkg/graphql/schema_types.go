package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/stats"
)

// page is the GraphQL shape of a filtered collection
type page struct {
	Items     any  `json:"items"`
	Total     int  `json:"total"`
	Matched   int  `json:"matched"`
	Truncated bool `json:"truncated"`
	Stats     any  `json:"stats"`
}

func toPage[T any, S any](p intel.Page[T], s S) page {
	return page{
		Items:     p.Items,
		Total:     p.Total,
		Matched:   p.Matched,
		Truncated: p.Truncated(),
		Stats:     s,
	}
}

// anomalyReport flattens service.AnomalyResult
type anomalyReport struct {
	Summary         intel.AnomalySummary    `json:"summary"`
	Categories      []intel.AnomalyCategory `json:"categories"`
	RecentAnomalies []intel.Anomaly         `json:"recentAnomalies"`
	TimeSeries      []intel.TimeSeriesPoint `json:"timeSeries"`
	Window          string                  `json:"window"`
	Total           int                     `json:"total"`
	Matched         int                     `json:"matched"`
	Stats           stats.AnomalyStats      `json:"stats"`
}

// scalars builds a field map of non-null scalars
func scalars(t graphql.Output, names ...string) graphql.Fields {
	fields := make(graphql.Fields, len(names))
	for _, name := range names {
		fields[name] = &graphql.Field{Type: graphql.NewNonNull(t)}
	}
	return fields
}

func merge(sets ...graphql.Fields) graphql.Fields {
	out := graphql.Fields{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

func listOf(t graphql.Type) *graphql.List {
	return graphql.NewList(graphql.NewNonNull(t))
}

func object(name string, fields graphql.Fields) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
}

// pageType builds the FooPage wrapper for a collection
func pageType(name string, item, summary *graphql.Object) *graphql.Object {
	return object(name+"Page", graphql.Fields{
		"items":     &graphql.Field{Type: graphql.NewNonNull(listOf(item))},
		"total":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"matched":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"truncated": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"stats":     &graphql.Field{Type: graphql.NewNonNull(summary)},
	})
}

var (
	timeSeriesPointType = object("TimeSeriesPoint", merge(
		scalars(graphql.DateTime, "timestamp"),
		scalars(graphql.Int, "value"),
	))

	regionStatType = object("RegionStat", merge(
		scalars(graphql.String, "region", "severity"),
		scalars(graphql.Int, "threats"),
	))

	dashboardType = object("DashboardMetrics", merge(
		scalars(graphql.Int, "activeThreats", "criticalAlerts", "feedsOnline"),
		scalars(graphql.Float, "avgResponseTime"),
		graphql.Fields{
			"threatVolume": &graphql.Field{Type: listOf(timeSeriesPointType)},
			"regionData":   &graphql.Field{Type: listOf(regionStatType)},
		},
	))

	indicatorType = object("Indicator", merge(
		scalars(graphql.String, "id", "type", "value", "severity", "source", "description"),
		scalars(graphql.DateTime, "firstSeen", "lastSeen"),
		scalars(graphql.Int, "confidence"),
		graphql.Fields{"tags": &graphql.Field{Type: listOf(graphql.String)}},
	))

	indicatorStatsType = object("IndicatorStats", scalars(graphql.Int, "total", "critical", "high", "active"))

	alertType = object("Alert", merge(
		scalars(graphql.String, "id", "title", "severity", "status", "assignee", "source"),
		scalars(graphql.DateTime, "created"),
		scalars(graphql.Int, "affectedSystems"),
		graphql.Fields{"mitreTactics": &graphql.Field{Type: listOf(graphql.String)}},
	))

	alertStatsType = object("AlertStats", scalars(graphql.Int, "total", "open", "critical", "investigating"))

	anomalyType = object("Anomaly", merge(
		scalars(graphql.String, "id", "type", "severity", "source", "description"),
		scalars(graphql.DateTime, "timestamp"),
		scalars(graphql.Float, "score"),
	))

	anomalySummaryType = object("AnomalySummary",
		scalars(graphql.Int, "totalAnomalies", "criticalAnomalies", "newToday", "falsePositiveRate"))

	anomalyCategoryType = object("AnomalyCategory", merge(
		scalars(graphql.String, "name", "severity", "trend"),
		scalars(graphql.Int, "count"),
	))

	anomalyStatsType = object("AnomalyStats", merge(
		scalars(graphql.Int, "total", "critical"),
		scalars(graphql.Float, "avgScore"),
	))

	anomalyReportType = object("AnomalyReport", merge(
		scalars(graphql.String, "window"),
		scalars(graphql.Int, "total", "matched"),
		graphql.Fields{
			"summary":         &graphql.Field{Type: graphql.NewNonNull(anomalySummaryType)},
			"categories":      &graphql.Field{Type: listOf(anomalyCategoryType)},
			"recentAnomalies": &graphql.Field{Type: listOf(anomalyType)},
			"timeSeries":      &graphql.Field{Type: listOf(timeSeriesPointType)},
			"stats":           &graphql.Field{Type: graphql.NewNonNull(anomalyStatsType)},
		},
	))

	threatActorType = object("ThreatActor", merge(
		scalars(graphql.String, "name", "severity"),
		scalars(graphql.Int, "campaigns"),
		scalars(graphql.DateTime, "lastSeen"),
	))

	attackVectorType = object("AttackVector", merge(
		scalars(graphql.String, "vector", "trend"),
		scalars(graphql.Int, "percentage"),
	))

	industryTargetType = object("IndustryTarget", merge(
		scalars(graphql.String, "industry"),
		scalars(graphql.Int, "attacks", "percentage"),
	))

	tacticCoverageType = object("TacticCoverage", merge(
		scalars(graphql.String, "tactic"),
		scalars(graphql.Int, "techniques", "detections", "coverage"),
	))

	analyticsType = object("Analytics", graphql.Fields{
		"threatActors":    &graphql.Field{Type: listOf(threatActorType)},
		"attackVectors":   &graphql.Field{Type: listOf(attackVectorType)},
		"industryTargets": &graphql.Field{Type: listOf(industryTargetType)},
		"mitreTactics":    &graphql.Field{Type: listOf(tacticCoverageType)},
	})

	feedType = object("Feed", merge(
		scalars(graphql.String, "id", "name", "type", "status", "latency", "format"),
		scalars(graphql.DateTime, "lastUpdate"),
		scalars(graphql.Int, "recordCount", "quality"),
	))

	feedStatsType = object("FeedStats", scalars(graphql.Int, "total", "active", "totalRecords", "avgQuality"))

	playbookType = object("Playbook", merge(
		scalars(graphql.String, "id", "title", "category", "avgDuration"),
		scalars(graphql.Int, "steps", "usage"),
		scalars(graphql.Boolean, "automationReady"),
		scalars(graphql.DateTime, "lastUsed"),
	))

	playbookStatsType = object("PlaybookStats", scalars(graphql.Int, "total", "automated", "avgSteps", "totalUsage"))

	indicatorPageType = pageType("Indicator", indicatorType, indicatorStatsType)
	alertPageType     = pageType("Alert", alertType, alertStatsType)
	feedPageType      = pageType("Feed", feedType, feedStatsType)
	playbookPageType  = pageType("Playbook", playbookType, playbookStatsType)
)
