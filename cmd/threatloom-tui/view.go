package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("ThreatLoom • " + m.sourceName))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n")

	if m.currentTab == dashboardTab {
		s.WriteString(m.renderDashboard())
	} else {
		s.WriteString(m.renderTable())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return s.String()
}

func (m model) renderTabs() string {
	rendered := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if tab(i) == m.currentTab {
			rendered = append(rendered, activeTabStyle.Render(label))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderDashboard() string {
	d := m.dashboard
	if d == nil {
		return contentStyle.Render(dimStyle.Render("Loading dashboard..."))
	}

	stat := func(label string, value string) string {
		return statBoxStyle.Render(dimStyle.Render(label) + "\n" + lipgloss.NewStyle().Bold(true).Render(value))
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Active threats", fmt.Sprint(d.ActiveThreats)),
		stat("Critical alerts", severityStyle("Critical").Render(fmt.Sprint(d.CriticalAlerts))),
		stat("Feeds online", fmt.Sprint(d.FeedsOnline)),
		stat("Avg response", fmt.Sprintf("%.1f min", d.AvgResponseTime)),
	)

	chart := chartBoxStyle.Render(fmt.Sprintf("Threat volume, last %d points\n%s",
		len(d.ThreatVolume), sparkline(d.ThreatVolume)))

	var regions strings.Builder
	regions.WriteString(headerStyle.Render("Regions"))
	regions.WriteString("\n")
	for _, r := range d.RegionData {
		fmt.Fprintf(&regions, "%-16s %6d  %s\n", r.Region, r.Threats, severityStyle(r.Severity).Render(r.Severity))
	}

	pushed := "waiting for first update"
	if !m.lastPush.IsZero() {
		pushed = fmt.Sprintf("%d updates • last %s", m.pushes, m.lastPush.Format(time.TimeOnly))
	}
	if m.events == nil {
		pushed = "live updates off"
	}

	return contentStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		stats,
		"",
		chart,
		"",
		regions.String(),
		dimStyle.Render(pushed),
	))
}

func (m model) renderTable() string {
	var s strings.Builder

	header := headerStyle.Render(tabNames[m.currentTab])
	if m.query != "" && !m.search.Focused() {
		header = lipgloss.JoinHorizontal(lipgloss.Center, header, dimStyle.Render("  search: "+m.query))
	}
	s.WriteString(header)
	s.WriteString("\n")

	if m.search.Focused() {
		s.WriteString(m.search.View())
		s.WriteString("\n")
	}

	switch {
	case m.loading:
		s.WriteString(dimStyle.Render("Loading..."))
	case len(m.table.Rows()) == 0 && m.summary != "":
		s.WriteString(dimStyle.Render("No matching records"))
	default:
		s.WriteString(m.table.View())
	}

	if m.summary != "" {
		s.WriteString("\n")
		s.WriteString(dimStyle.Render(m.summary))
	}

	return contentStyle.Render(s.String())
}
