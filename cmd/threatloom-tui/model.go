package main

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/service"
	"github.com/dd0wney/threatloom/pkg/updates"
)

type tab int

const (
	dashboardTab tab = iota
	indicatorsTab
	alertsTab
	anomaliesTab
	feedsTab
	playbooksTab
	tabCount
)

var tabNames = [tabCount]string{"Dashboard", "Indicators", "Alerts", "Anomalies", "Feeds", "Playbooks"}

type model struct {
	svc    *service.Service
	events <-chan updates.Event
	// unsubscribe ends the update subscription; called once on quit
	unsubscribe func()

	currentTab tab
	search     textinput.Model
	query      string // applied search text
	table      table.Model
	help       help.Model
	keys       keyMap

	dashboard  *intel.DashboardMetrics
	lastPush   time.Time
	pushes     int
	summary    string
	loading    bool
	width      int
	height     int
	message    string
	messageErr bool
	sourceName string
	now        func() time.Time
}

func initialModel(svc *service.Service, events <-chan updates.Event, unsubscribe func()) model {
	ti := textinput.New()
	ti.Placeholder = "search current tab"
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = "/ "

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	if unsubscribe == nil {
		unsubscribe = func() {}
	}

	return model{
		svc:         svc,
		events:      events,
		unsubscribe: unsubscribe,
		currentTab:  dashboardTab,
		search:      ti,
		table:       t,
		help:        help.New(),
		keys:        keys,
		sourceName:  svc.SourceName(),
		now:         time.Now,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadDashboard(m.svc)}
	if m.events != nil {
		cmds = append(cmds, waitForEvent(m.events))
	}
	return tea.Batch(cmds...)
}

// switchTab moves to t and loads its table
func (m model) switchTab(t tab) (model, tea.Cmd) {
	m.currentTab = t
	m.message = ""
	m.summary = ""
	// Drop rows before the next load swaps the column set
	m.table.SetRows(nil)
	if t == dashboardTab {
		return m, loadDashboard(m.svc)
	}
	m.loading = true
	return m, loadTab(m.svc, t, m.query)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(5, msg.Height-14))
		return m, nil

	case metricsMsg:
		m.dashboard = msg.metrics
		if msg.pushed {
			m.pushes++
			m.lastPush = m.now()
			return m, waitForEvent(m.events)
		}
		return m, nil

	case eventsClosedMsg:
		m.events = nil
		m.message = "update stream closed"
		m.messageErr = true
		return m, nil

	case tableMsg:
		if msg.tab != m.currentTab {
			return m, nil
		}
		m.loading = false
		m.table.SetRows(nil)
		m.table.SetColumns(msg.columns)
		m.table.SetRows(msg.rows)
		m.table.GotoTop()
		m.summary = msg.summary
		return m, nil

	case errMsg:
		if msg.tab == m.currentTab {
			m.loading = false
			m.message = msg.err.Error()
			m.messageErr = true
		}
		return m, nil

	case tea.KeyMsg:
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Apply):
		m.search.Blur()
		m.query = m.search.Value()
		return m.switchTab(m.currentTab)

	case key.Matches(msg, m.keys.Cancel):
		m.search.Blur()
		m.search.SetValue(m.query)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsubscribe()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		return m.switchTab((m.currentTab + 1) % tabCount)

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchTab((m.currentTab + tabCount - 1) % tabCount)

	case key.Matches(msg, m.keys.Jump):
		return m.switchTab(tab(msg.Runes[0] - '1'))

	case key.Matches(msg, m.keys.Search):
		if m.currentTab == dashboardTab {
			return m, nil
		}
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		return m.switchTab(m.currentTab)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.currentTab != dashboardTab {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}
