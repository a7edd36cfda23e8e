// Package stats computes the headline counters shown above each collection.
// Summaries are always taken over the unfiltered batch so they stay stable
// while the user narrows the list.
package stats

import (
	"math"
	"strings"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/dd0wney/threatloom/pkg/intel"
)

// ActiveWindow is how recently an indicator must have been seen to count as active
const ActiveWindow = 24 * time.Hour

// Number is any value that can be averaged
type Number interface {
	constraints.Integer | constraints.Float
}

// Count returns how many items satisfy pred
func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return n
}

// Sum adds f(item) across items
func Sum[T any, N Number](items []T, f func(T) N) N {
	var total N
	for _, item := range items {
		total += f(item)
	}
	return total
}

// Average returns the arithmetic mean of f(item), or 0 for an empty slice
func Average[T any, N Number](items []T, f func(T) N) float64 {
	if len(items) == 0 {
		return 0
	}
	return float64(Sum(items, f)) / float64(len(items))
}

// RoundedAverage is Average rounded half away from zero
func RoundedAverage[T any, N Number](items []T, f func(T) N) int {
	return int(math.Round(Average(items, f)))
}

type IndicatorStats struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Active   int `json:"active"`
}

// Indicators summarizes an indicator batch relative to now
func Indicators(items []intel.Indicator, now time.Time) IndicatorStats {
	return IndicatorStats{
		Total:    len(items),
		Critical: Count(items, func(i intel.Indicator) bool { return i.Severity == intel.SeverityCritical }),
		High:     Count(items, func(i intel.Indicator) bool { return i.Severity == intel.SeverityHigh }),
		Active: Count(items, func(i intel.Indicator) bool {
			return now.Sub(i.LastSeen) < ActiveWindow
		}),
	}
}

type AlertStats struct {
	Total         int `json:"total"`
	Open          int `json:"open"`
	Critical      int `json:"critical"`
	Investigating int `json:"investigating"`
}

// Alerts summarizes an alert batch. Status comparison ignores case.
func Alerts(items []intel.Alert) AlertStats {
	return AlertStats{
		Total: len(items),
		Open: Count(items, func(a intel.Alert) bool {
			return strings.EqualFold(string(a.Status), string(intel.AlertOpen))
		}),
		Critical: Count(items, func(a intel.Alert) bool { return a.Severity == intel.SeverityCritical }),
		Investigating: Count(items, func(a intel.Alert) bool {
			return strings.EqualFold(string(a.Status), string(intel.AlertInvestigating))
		}),
	}
}

type AnomalyStats struct {
	Total    int     `json:"total"`
	Critical int     `json:"critical"`
	AvgScore float64 `json:"avgScore"`
}

// Anomalies summarizes the recent anomaly list; the average score keeps two decimals
func Anomalies(items []intel.Anomaly) AnomalyStats {
	return AnomalyStats{
		Total:    len(items),
		Critical: Count(items, func(a intel.Anomaly) bool { return a.Severity == intel.SeverityCritical }),
		AvgScore: math.Round(Average(items, func(a intel.Anomaly) float64 { return a.Score })*100) / 100,
	}
}

type FeedStats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	TotalRecords int `json:"totalRecords"`
	AvgQuality   int `json:"avgQuality"`
}

func Feeds(items []intel.Feed) FeedStats {
	return FeedStats{
		Total:        len(items),
		Active:       Count(items, func(f intel.Feed) bool { return f.Status == intel.FeedActive }),
		TotalRecords: Sum(items, func(f intel.Feed) int { return f.RecordCount }),
		AvgQuality:   RoundedAverage(items, func(f intel.Feed) int { return f.Quality }),
	}
}

type PlaybookStats struct {
	Total      int `json:"total"`
	Automated  int `json:"automated"`
	AvgSteps   int `json:"avgSteps"`
	TotalUsage int `json:"totalUsage"`
}

func Playbooks(items []intel.Playbook) PlaybookStats {
	return PlaybookStats{
		Total:      len(items),
		Automated:  Count(items, func(p intel.Playbook) bool { return p.AutomationReady }),
		AvgSteps:   RoundedAverage(items, func(p intel.Playbook) int { return p.Steps }),
		TotalUsage: Sum(items, func(p intel.Playbook) int { return p.Usage }),
	}
}
