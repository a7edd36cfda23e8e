package intel

import (
	"time"
)

// Severity is the criticality label shared by indicators, alerts and anomalies
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Severities lists every severity in descending order
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// IndicatorType classifies the value carried by an indicator of compromise
type IndicatorType string

const (
	IndicatorIP     IndicatorType = "IP"
	IndicatorDomain IndicatorType = "Domain"
	IndicatorHash   IndicatorType = "Hash"
	IndicatorURL    IndicatorType = "URL"
	IndicatorEmail  IndicatorType = "Email"
)

// IndicatorTypes lists the indicator types the generators draw from
var IndicatorTypes = []IndicatorType{IndicatorIP, IndicatorDomain, IndicatorHash, IndicatorURL, IndicatorEmail}

// AlertStatus is the triage state of an alert
type AlertStatus string

const (
	AlertOpen          AlertStatus = "Open"
	AlertInvestigating AlertStatus = "Investigating"
	AlertResolved      AlertStatus = "Resolved"
	AlertFalsePositive AlertStatus = "False Positive"
)

// AlertStatuses lists every alert status
var AlertStatuses = []AlertStatus{AlertOpen, AlertInvestigating, AlertResolved, AlertFalsePositive}

// FeedStatus is the health of an intelligence feed
type FeedStatus string

const (
	FeedActive  FeedStatus = "Active"
	FeedWarning FeedStatus = "Warning"
	FeedError   FeedStatus = "Error"
)

// Indicator is a single indicator of compromise
type Indicator struct {
	ID          string        `json:"id"`
	Type        IndicatorType `json:"type"`
	Value       string        `json:"value"`
	Severity    Severity      `json:"severity"`
	Source      string        `json:"source"`
	FirstSeen   time.Time     `json:"firstSeen"`
	LastSeen    time.Time     `json:"lastSeen"`
	Confidence  int           `json:"confidence"`
	Tags        []string      `json:"tags"`
	Description string        `json:"description"`
}

// Anomaly is a single detection produced by the anomaly model
type Anomaly struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Severity    Severity  `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Score       float64   `json:"score"`
}

// Alert is a SIEM alert awaiting triage
type Alert struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Severity        Severity    `json:"severity"`
	Status          AlertStatus `json:"status"`
	Created         time.Time   `json:"created"`
	Assignee        string      `json:"assignee"`
	Source          string      `json:"source"`
	MitreTactics    []string    `json:"mitreTactics"`
	AffectedSystems int         `json:"affectedSystems"`
}

// Feed describes an upstream intelligence feed
type Feed struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Status      FeedStatus `json:"status"`
	LastUpdate  time.Time  `json:"lastUpdate"`
	RecordCount int        `json:"recordCount"`
	Quality     int        `json:"quality"`
	Latency     string     `json:"latency"`
	Format      string     `json:"format"`
}

// Playbook is a response procedure
type Playbook struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Steps           int       `json:"steps"`
	AvgDuration     string    `json:"avgDuration"`
	AutomationReady bool      `json:"automationReady"`
	LastUsed        time.Time `json:"lastUsed"`
	Usage           int       `json:"usage"`
}

// TimeSeriesPoint is one sample of chart data
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value"`
}

// RegionStat is the threat count attributed to a geographic region
type RegionStat struct {
	Region   string `json:"region"`
	Threats  int    `json:"threats"`
	Severity string `json:"severity"`
}

// DashboardMetrics is the landing page summary
type DashboardMetrics struct {
	ActiveThreats   int               `json:"activeThreats"`
	CriticalAlerts  int               `json:"criticalAlerts"`
	FeedsOnline     int               `json:"feedsOnline"`
	AvgResponseTime float64           `json:"avgResponseTime"`
	ThreatVolume    []TimeSeriesPoint `json:"threatVolume"`
	RegionData      []RegionStat      `json:"regionData"`
}

// AnomalySummary holds the headline anomaly counters
type AnomalySummary struct {
	TotalAnomalies    int `json:"totalAnomalies"`
	CriticalAnomalies int `json:"criticalAnomalies"`
	NewToday          int `json:"newToday"`
	FalsePositiveRate int `json:"falsePositiveRate"`
}

// AnomalyCategory groups anomalies by detector family
type AnomalyCategory struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Severity string `json:"severity"`
	Trend    string `json:"trend"`
}

// AnomalyReport is the composite anomaly page payload
type AnomalyReport struct {
	Summary         AnomalySummary    `json:"summary"`
	Categories      []AnomalyCategory `json:"categories"`
	RecentAnomalies []Anomaly         `json:"recentAnomalies"`
	TimeSeries      []TimeSeriesPoint `json:"timeSeries"`
}

// ThreatActor is a tracked adversary group
type ThreatActor struct {
	Name      string    `json:"name"`
	Campaigns int       `json:"campaigns"`
	Severity  Severity  `json:"severity"`
	LastSeen  time.Time `json:"lastSeen"`
}

// AttackVector is the share of attacks delivered through one vector
type AttackVector struct {
	Vector     string `json:"vector"`
	Percentage int    `json:"percentage"`
	Trend      string `json:"trend"`
}

// IndustryTarget is the share of attacks aimed at one industry
type IndustryTarget struct {
	Industry   string `json:"industry"`
	Attacks    int    `json:"attacks"`
	Percentage int    `json:"percentage"`
}

// TacticCoverage is one cell of the MITRE ATT&CK heatmap
type TacticCoverage struct {
	Tactic     string `json:"tactic"`
	Techniques int    `json:"techniques"`
	Detections int    `json:"detections"`
	Coverage   int    `json:"coverage"`
}

// AnalyticsBundle aggregates the threat analytics page
type AnalyticsBundle struct {
	ThreatActors    []ThreatActor    `json:"threatActors"`
	AttackVectors   []AttackVector   `json:"attackVectors"`
	IndustryTargets []IndustryTarget `json:"industryTargets"`
	MitreTactics    []TacticCoverage `json:"mitreTactics"`
}

// Filter accessors. A record without the attribute reports "".

func (i Indicator) FilterType() string     { return string(i.Type) }
func (i Indicator) FilterSeverity() string { return string(i.Severity) }
func (i Indicator) FilterStatus() string   { return "" }
func (i Indicator) SearchText() string     { return i.Value }

func (a Anomaly) FilterType() string     { return a.Type }
func (a Anomaly) FilterSeverity() string { return string(a.Severity) }
func (a Anomaly) FilterStatus() string   { return "" }
func (a Anomaly) SearchText() string     { return a.Source }

func (a Alert) FilterType() string     { return "" }
func (a Alert) FilterSeverity() string { return string(a.Severity) }
func (a Alert) FilterStatus() string   { return string(a.Status) }
func (a Alert) SearchText() string     { return a.Title }

func (f Feed) FilterType() string     { return f.Type }
func (f Feed) FilterSeverity() string { return "" }
func (f Feed) FilterStatus() string   { return string(f.Status) }
func (f Feed) SearchText() string     { return f.Name }

func (p Playbook) FilterType() string     { return p.Category }
func (p Playbook) FilterSeverity() string { return "" }
func (p Playbook) FilterStatus() string   { return "" }
func (p Playbook) SearchText() string     { return p.Title }
