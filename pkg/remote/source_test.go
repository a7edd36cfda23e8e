package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/threatloom/pkg/intel"
)

// scriptedSearcher returns canned rows and records the queries it saw
type scriptedSearcher struct {
	rows    []map[string]any
	err     error
	queries []string
}

func (s *scriptedSearcher) Search(_ context.Context, query string) ([]map[string]any, error) {
	s.queries = append(s.queries, query)
	return s.rows, s.err
}

func TestIndicatorsDecodeTextRows(t *testing.T) {
	searcher := &scriptedSearcher{rows: []map[string]any{
		{
			"id":         "IOC-0042",
			"type":       "IP",
			"value":      "203.0.113.9",
			"severity":   "Critical",
			"source":     "MISP",
			"firstSeen":  "2026-01-02T03:04:05Z",
			"lastSeen":   "1767323045",
			"confidence": "91",
			"tags":       "c2,apt",
			"_raw":       "ignored",
		},
		{
			"id":         "IOC-0043",
			"type":       "Hash",
			"confidence": 77.0,
			"tags":       []any{"malware"},
		},
	}}
	src := NewSource(searcher)

	got, err := src.Indicators(context.Background(), intel.Criteria{Type: "IP", Severity: "Critical"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, intel.IndicatorIP, first.Type)
	assert.Equal(t, 91, first.Confidence)
	assert.Equal(t, []string{"c2", "apt"}, first.Tags)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), first.FirstSeen)
	assert.Equal(t, time.Unix(1767323045, 0).UTC(), first.LastSeen)

	assert.Equal(t, 77, got[1].Confidence)
	assert.Equal(t, []string{"malware"}, got[1].Tags)

	require.Len(t, searcher.queries, 1)
	assert.Contains(t, searcher.queries[0], `type="IP" severity="Critical"`)
}

func TestMalformedRowIsQueryError(t *testing.T) {
	src := NewSource(&scriptedSearcher{rows: []map[string]any{
		{"id": "ALERT-1", "created": "last tuesday"},
	}})

	_, err := src.Alerts(context.Background(), intel.Criteria{})
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "alerts", qe.Op)
}

func TestSearchErrorsPropagateUnchanged(t *testing.T) {
	want := &TransportError{Op: "submit", URL: "https://splunk", Err: errors.New("connection refused")}
	src := NewSource(&scriptedSearcher{err: want})

	_, err := src.Feeds(context.Background())
	assert.Same(t, want, err)

	_, err = src.DashboardMetrics(context.Background())
	assert.Same(t, want, err)
}

func TestDashboardMetricsFromFirstRow(t *testing.T) {
	src := NewSource(&scriptedSearcher{rows: []map[string]any{
		{"threat_count": "131", "critical_alerts": "22", "feeds_online": "8", "avg_response": "3.5"},
	}})

	got, err := src.DashboardMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 131, got.ActiveThreats)
	assert.Equal(t, 22, got.CriticalAlerts)
	assert.Equal(t, 8, got.FeedsOnline)
	assert.Equal(t, 3.5, got.AvgResponseTime)
	assert.NotNil(t, got.ThreatVolume)

	empty, err := NewSource(&scriptedSearcher{}).DashboardMetrics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, empty.ActiveThreats)
}

func TestAnomaliesKeepBackendOrder(t *testing.T) {
	searcher := &scriptedSearcher{rows: []map[string]any{
		{"id": "A1", "severity": "High", "timestamp": "2026-01-01T00:00:00Z", "score": "0.61"},
		{"id": "A2", "severity": "Critical", "timestamp": "2026-01-03T00:00:00Z", "score": "0.99"},
	}}
	src := NewSource(searcher)

	report, err := src.Anomalies(context.Background(), 6*time.Hour)
	require.NoError(t, err)

	require.Len(t, report.RecentAnomalies, 2)
	assert.Equal(t, "A1", report.RecentAnomalies[0].ID)
	assert.Equal(t, 0.99, report.RecentAnomalies[1].Score)
	assert.Equal(t, 2, report.Summary.TotalAnomalies)
	assert.Equal(t, 1, report.Summary.CriticalAnomalies)
	assert.Contains(t, searcher.queries[0], "earliest=-6h")
}

func TestAnalyticsFoldsBuckets(t *testing.T) {
	src := NewSource(&scriptedSearcher{rows: []map[string]any{
		{"threat_actor": "FIN7", "attack_vector": "Phishing", "target_industry": "Financial", "count": "30"},
		{"threat_actor": "APT29", "attack_vector": "Phishing", "target_industry": "Government", "count": "50"},
		{"threat_actor": "FIN7", "attack_vector": "Malware", "target_industry": "Financial", "count": "20"},
	}})

	bundle, err := src.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []intel.ThreatActor{{Name: "FIN7", Campaigns: 50}, {Name: "APT29", Campaigns: 50}}, bundle.ThreatActors, "ties keep first-seen order")
	assert.Equal(t, []intel.AttackVector{{Vector: "Phishing", Percentage: 80}, {Vector: "Malware", Percentage: 20}}, bundle.AttackVectors)
	assert.Equal(t, []intel.IndustryTarget{
		{Industry: "Financial", Attacks: 50, Percentage: 50},
		{Industry: "Government", Attacks: 50, Percentage: 50},
	}, bundle.IndustryTargets)
	assert.Empty(t, bundle.MitreTactics)
}

func TestPlaybooksDecodeFlags(t *testing.T) {
	src := NewSource(&scriptedSearcher{rows: []map[string]any{
		{"id": "PB-009", "title": "Ransomware Containment", "steps": "14", "automationReady": "1", "lastUsed": "2026-02-11", "usage": "3"},
	}})

	got, err := src.Playbooks(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].AutomationReady)
	assert.Equal(t, 14, got[0].Steps)
	assert.Equal(t, time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC), got[0].LastUsed)
}

func TestQueryTemplates(t *testing.T) {
	assert.Contains(t, IndicatorsQuery(intel.Criteria{}), "type=* severity=*")
	assert.Contains(t, AlertsQuery(intel.Criteria{Status: "all"}), "status=*")
	assert.Contains(t, AlertsQuery(intel.Criteria{Status: "False Positive"}), `status="False Positive"`)
	assert.Contains(t, IndicatorsQuery(intel.Criteria{Type: `x" OR 1=1`}), `type="x\" OR 1=1"`)

	assert.Equal(t, "24h", relativeTime(0))
	assert.Equal(t, "90m", relativeTime(90*time.Minute))
	assert.Equal(t, "45s", relativeTime(45*time.Second))
}
