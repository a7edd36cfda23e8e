package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/service"
	"github.com/dd0wney/threatloom/pkg/updates"
)

// loadTimeout bounds one data load; remote sources can be slow
const loadTimeout = 30 * time.Second

// tableLimit is the largest page the service accepts
const tableLimit = 1000

type metricsMsg struct {
	metrics *intel.DashboardMetrics
	// pushed is set for metrics_update events, unset for explicit loads
	pushed bool
}

type eventsClosedMsg struct{}

type tableMsg struct {
	tab     tab
	columns []table.Column
	rows    []table.Row
	summary string
}

type errMsg struct {
	tab tab
	err error
}

// waitForEvent blocks until the next metrics_update on events. Other
// kinds are skipped.
func waitForEvent(events <-chan updates.Event) tea.Cmd {
	return func() tea.Msg {
		for e := range events {
			if e.Kind != updates.KindMetricsUpdate {
				continue
			}
			if m, ok := e.Data.(*intel.DashboardMetrics); ok {
				return metricsMsg{metrics: m, pushed: true}
			}
		}
		return eventsClosedMsg{}
	}
}

func loadDashboard(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		m, err := svc.DashboardMetrics(ctx)
		if err != nil {
			return errMsg{tab: dashboardTab, err: err}
		}
		return metricsMsg{metrics: m}
	}
}

// loadTab fetches the collection behind t narrowed by search
func loadTab(svc *service.Service, t tab, search string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		c := intel.Criteria{Search: search, Limit: tableLimit}
		msg, err := fetchTab(ctx, svc, t, c)
		if err != nil {
			return errMsg{tab: t, err: err}
		}
		return msg
	}
}

func fetchTab(ctx context.Context, svc *service.Service, t tab, c intel.Criteria) (tableMsg, error) {
	switch t {
	case indicatorsTab:
		r, err := svc.Indicators(ctx, c)
		if err != nil {
			return tableMsg{}, err
		}
		return tableMsg{
			tab:     t,
			columns: indicatorColumns,
			rows:    indicatorRows(r.Items),
			summary: fmt.Sprintf("%d of %d indicators • %d critical • %d high • %d active",
				r.Matched, r.Total, r.Stats.Critical, r.Stats.High, r.Stats.Active),
		}, nil

	case alertsTab:
		r, err := svc.Alerts(ctx, c)
		if err != nil {
			return tableMsg{}, err
		}
		return tableMsg{
			tab:     t,
			columns: alertColumns,
			rows:    alertRows(r.Items),
			summary: fmt.Sprintf("%d of %d alerts • %d open • %d critical • %d investigating",
				r.Matched, r.Total, r.Stats.Open, r.Stats.Critical, r.Stats.Investigating),
		}, nil

	case anomaliesTab:
		r, err := svc.Anomalies(ctx, c, intel.DefaultAnomalyWindow)
		if err != nil {
			return tableMsg{}, err
		}
		return tableMsg{
			tab:     t,
			columns: anomalyColumns,
			rows:    anomalyRows(r.RecentAnomalies),
			summary: fmt.Sprintf("%d of %d anomalies in %s • %d critical • avg score %.2f",
				r.Matched, r.Total, r.Window, r.Stats.Critical, r.Stats.AvgScore),
		}, nil

	case feedsTab:
		r, err := svc.Feeds(ctx, c)
		if err != nil {
			return tableMsg{}, err
		}
		return tableMsg{
			tab:     t,
			columns: feedColumns,
			rows:    feedRows(r.Items),
			summary: fmt.Sprintf("%d of %d feeds • %d active • %d records • quality %d%%",
				r.Matched, r.Total, r.Stats.Active, r.Stats.TotalRecords, r.Stats.AvgQuality),
		}, nil

	case playbooksTab:
		r, err := svc.Playbooks(ctx, c)
		if err != nil {
			return tableMsg{}, err
		}
		return tableMsg{
			tab:     t,
			columns: playbookColumns,
			rows:    playbookRows(r.Items),
			summary: fmt.Sprintf("%d of %d playbooks • %d automated • %d avg steps",
				r.Matched, r.Total, r.Stats.Automated, r.Stats.AvgSteps),
		}, nil
	}
	return tableMsg{}, fmt.Errorf("tab %d has no table", t)
}

var (
	indicatorColumns = []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Type", Width: 7},
		{Title: "Value", Width: 36},
		{Title: "Severity", Width: 9},
		{Title: "Source", Width: 18},
		{Title: "Conf", Width: 5},
	}
	alertColumns = []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Title", Width: 34},
		{Title: "Severity", Width: 9},
		{Title: "Status", Width: 15},
		{Title: "Assignee", Width: 14},
		{Title: "Systems", Width: 8},
	}
	anomalyColumns = []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Type", Width: 22},
		{Title: "Severity", Width: 9},
		{Title: "Source", Width: 16},
		{Title: "Score", Width: 6},
		{Title: "Seen", Width: 16},
	}
	feedColumns = []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Type", Width: 12},
		{Title: "Status", Width: 8},
		{Title: "Records", Width: 9},
		{Title: "Quality", Width: 8},
		{Title: "Latency", Width: 8},
	}
	playbookColumns = []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Title", Width: 32},
		{Title: "Category", Width: 18},
		{Title: "Steps", Width: 6},
		{Title: "Duration", Width: 9},
		{Title: "Auto", Width: 5},
	}
)

const timeLayout = "2006-01-02 15:04"

func indicatorRows(items []intel.Indicator) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, i := range items {
		rows = append(rows, table.Row{
			i.ID, string(i.Type), i.Value, string(i.Severity), i.Source, strconv.Itoa(i.Confidence),
		})
	}
	return rows
}

func alertRows(items []intel.Alert) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, a := range items {
		rows = append(rows, table.Row{
			a.ID, a.Title, string(a.Severity), string(a.Status), a.Assignee, strconv.Itoa(a.AffectedSystems),
		})
	}
	return rows
}

func anomalyRows(items []intel.Anomaly) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, a := range items {
		rows = append(rows, table.Row{
			a.ID, a.Type, string(a.Severity), a.Source,
			strconv.FormatFloat(a.Score, 'f', 2, 64),
			a.Timestamp.Local().Format(timeLayout),
		})
	}
	return rows
}

func feedRows(items []intel.Feed) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, f := range items {
		rows = append(rows, table.Row{
			f.Name, f.Type, string(f.Status), strconv.Itoa(f.RecordCount),
			strconv.Itoa(f.Quality) + "%", f.Latency,
		})
	}
	return rows
}

func playbookRows(items []intel.Playbook) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, p := range items {
		auto := "no"
		if p.AutomationReady {
			auto = "yes"
		}
		rows = append(rows, table.Row{
			p.ID, p.Title, p.Category, strconv.Itoa(p.Steps), p.AvgDuration, auto,
		})
	}
	return rows
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline scales points onto eight block heights
func sparkline(points []intel.TimeSeriesPoint) string {
	if len(points) == 0 {
		return ""
	}
	lo, hi := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		lo = min(lo, p.Value)
		hi = max(hi, p.Value)
	}

	var b strings.Builder
	for _, p := range points {
		idx := 0
		if hi > lo {
			idx = (p.Value - lo) * (len(sparkBlocks) - 1) / (hi - lo)
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}
