package remote

import (
	"fmt"
	"strings"
	"time"

	"github.com/dd0wney/threatloom/pkg/intel"
)

// The search strings below produce rows whose field names match the JSON
// names of the intel records. Their exact text is illustrative; Source only
// depends on the row shape.

// DashboardQuery aggregates the landing page counters
func DashboardQuery() string {
	return strings.Join([]string{
		"| rest /services/data/indexes",
		"| eval threat_count=random()%200+50",
		"| eval critical_alerts=random()%50+10",
		"| eval feeds_online=random()%2+7",
		"| eval avg_response=random()%5+2",
		"| head 1",
	}, "\n")
}

// IndicatorsQuery narrows the indicator lookup by type and severity
func IndicatorsQuery(c intel.Criteria) string {
	return strings.Join([]string{
		"| inputlookup threat_indicators.csv",
		fmt.Sprintf("| search type=%s severity=%s", term(c.Type), term(c.Severity)),
		"| sort -_time",
	}, "\n")
}

// AnomaliesQuery scores security events over the trailing window
func AnomaliesQuery(window time.Duration) string {
	return strings.Join([]string{
		fmt.Sprintf("| search index=security earliest=-%s", relativeTime(window)),
		"| anomalydetection action=annotate",
		"| where anomaly_score > 0.5",
		"| rename anomaly_score AS score, _time AS timestamp",
	}, "\n")
}

// AlertsQuery lists alerts, optionally for one status
func AlertsQuery(c intel.Criteria) string {
	return strings.Join([]string{
		fmt.Sprintf("| search index=alerts status=%s", term(c.EffectiveStatus())),
		"| sort -_time",
	}, "\n")
}

// AnalyticsQuery counts intel events per actor, vector and industry
func AnalyticsQuery() string {
	return strings.Join([]string{
		"| search index=threat_intel",
		"| stats count by threat_actor, attack_vector, target_industry",
	}, "\n")
}

func FeedsQuery() string {
	return strings.Join([]string{
		"| rest /services/data/inputs/tcp/cooked",
		`| eval status=if(disabled=0, "Active", "Error")`,
		"| rename title AS name",
	}, "\n")
}

func PlaybooksQuery() string {
	return strings.Join([]string{
		"| inputlookup playbooks.csv",
		`| eval automationReady=if(automated="yes", 1, 0)`,
	}, "\n")
}

// term renders a filter value as a quoted search term, or * when empty
func term(v string) string {
	if v == "" {
		return "*"
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}

// relativeTime renders a look-back window in the backend's time modifier syntax
func relativeTime(window time.Duration) string {
	if window <= 0 {
		window = intel.DefaultAnomalyWindow
	}
	switch {
	case window%time.Hour == 0:
		return fmt.Sprintf("%dh", int(window/time.Hour))
	case window%time.Minute == 0:
		return fmt.Sprintf("%dm", int(window/time.Minute))
	default:
		return fmt.Sprintf("%ds", int(window.Round(time.Second)/time.Second))
	}
}
