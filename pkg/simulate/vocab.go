package simulate

import (
	"time"

	"github.com/dd0wney/threatloom/pkg/intel"
)

var (
	indicatorSources = []string{"CrowdStrike", "VirusTotal", "ThreatConnect", "Internal", "MISP"}

	maliciousDomains = []string{
		"malware-c2.com",
		"phishing-site.net",
		"evil-domain.org",
		"threat-actor.biz",
	}

	indicatorTags = []string{"malware", "c2", "phishing", "trojan", "apt", "ransomware", "botnet"}

	indicatorDescriptions = map[intel.IndicatorType]string{
		intel.IndicatorIP:     "Suspicious IP address associated with known threat actor",
		intel.IndicatorDomain: "Malicious domain used for C2 communication",
		intel.IndicatorHash:   "File hash of known malware sample",
		intel.IndicatorURL:    "Malicious URL hosting exploit kit",
		intel.IndicatorEmail:  "Email address used in phishing campaigns",
	}

	anomalyTypes      = []string{"Login Spike", "Unusual DNS", "Port Scan", "Data Exfil", "Lateral Movement"}
	anomalySeverities = []intel.Severity{intel.SeverityCritical, intel.SeverityHigh, intel.SeverityMedium}

	alertTitles = []string{
		"Suspicious PowerShell Execution",
		"Potential Data Exfiltration",
		"Malware Communication Detected",
		"Unauthorized Admin Access",
		"Lateral Movement Attempt",
		"Credential Stuffing Attack",
		"DDoS Attack Detected",
		"Phishing Email Campaign",
	}

	analysts = []string{"Sarah Chen", "Mike Rodriguez", "Alex Kim", "Lisa Johnson", "David Park"}

	// alertTactics is the subset of tactics alerts are labelled with
	alertTactics = []string{
		"Initial Access",
		"Execution",
		"Persistence",
		"Defense Evasion",
		"Discovery",
	}

	// heatmapTactics covers the full ATT&CK enterprise tactic list
	heatmapTactics = []string{
		"Initial Access",
		"Execution",
		"Persistence",
		"Privilege Escalation",
		"Defense Evasion",
		"Credential Access",
		"Discovery",
		"Lateral Movement",
		"Collection",
		"Command and Control",
		"Exfiltration",
		"Impact",
	}

	regions = []intel.RegionStat{
		{Region: "North America", Threats: 45, Severity: "high"},
		{Region: "Europe", Threats: 32, Severity: "medium"},
		{Region: "Asia Pacific", Threats: 28, Severity: "high"},
		{Region: "Africa", Threats: 12, Severity: "low"},
		{Region: "South America", Threats: 8, Severity: "medium"},
	}

	anomalySummary = intel.AnomalySummary{
		TotalAnomalies:    127,
		CriticalAnomalies: 23,
		NewToday:          15,
		FalsePositiveRate: 12,
	}

	anomalyCategories = []intel.AnomalyCategory{
		{Name: "Login Anomalies", Count: 45, Severity: "high", Trend: "up"},
		{Name: "Network Traffic", Count: 32, Severity: "medium", Trend: "down"},
		{Name: "DNS Queries", Count: 28, Severity: "high", Trend: "stable"},
		{Name: "File Access", Count: 22, Severity: "medium", Trend: "up"},
	}

	threatActors = []intel.ThreatActor{
		{Name: "APT29", Campaigns: 15, Severity: intel.SeverityCritical, LastSeen: day(2024, 1, 10)},
		{Name: "Lazarus Group", Campaigns: 12, Severity: intel.SeverityHigh, LastSeen: day(2024, 1, 8)},
		{Name: "FIN7", Campaigns: 8, Severity: intel.SeverityHigh, LastSeen: day(2024, 1, 5)},
		{Name: "Carbanak", Campaigns: 6, Severity: intel.SeverityMedium, LastSeen: day(2024, 1, 3)},
	}

	attackVectors = []intel.AttackVector{
		{Vector: "Phishing", Percentage: 35, Trend: "up"},
		{Vector: "Malware", Percentage: 28, Trend: "stable"},
		{Vector: "Social Engineering", Percentage: 18, Trend: "up"},
		{Vector: "Exploit Kit", Percentage: 12, Trend: "down"},
		{Vector: "Watering Hole", Percentage: 7, Trend: "stable"},
	}

	industryTargets = []intel.IndustryTarget{
		{Industry: "Financial", Attacks: 156, Percentage: 42},
		{Industry: "Healthcare", Attacks: 89, Percentage: 24},
		{Industry: "Government", Attacks: 67, Percentage: 18},
		{Industry: "Technology", Attacks: 45, Percentage: 12},
		{Industry: "Energy", Attacks: 15, Percentage: 4},
	}
)

// feedFixture is a feed whose last update is relative to the generator clock
type feedFixture struct {
	feed intel.Feed
	age  time.Duration
}

var feedFixtures = []feedFixture{
	{intel.Feed{ID: "feed-001", Name: "CrowdStrike Falcon Feed", Type: "Commercial", Status: intel.FeedActive, RecordCount: 15420, Quality: 98, Latency: "2m", Format: "JSON"}, 5 * time.Minute},
	{intel.Feed{ID: "feed-002", Name: "VirusTotal Intelligence", Type: "Commercial", Status: intel.FeedActive, RecordCount: 8934, Quality: 96, Latency: "1m", Format: "CSV"}, 3 * time.Minute},
	{intel.Feed{ID: "feed-003", Name: "MISP Community Feed", Type: "Open Source", Status: intel.FeedActive, RecordCount: 5678, Quality: 87, Latency: "5m", Format: "JSON"}, 15 * time.Minute},
	{intel.Feed{ID: "feed-004", Name: "Internal Threat Intel", Type: "Internal", Status: intel.FeedActive, RecordCount: 1234, Quality: 94, Latency: "10m", Format: "CSV"}, 30 * time.Minute},
	{intel.Feed{ID: "feed-005", Name: "ThreatConnect IOCs", Type: "Commercial", Status: intel.FeedWarning, RecordCount: 12567, Quality: 78, Latency: "45m", Format: "XML"}, 2 * time.Hour},
}

var playbookFixtures = []intel.Playbook{
	{ID: "PB-001", Title: "Malware Incident Response", Category: "Incident Response", Steps: 8, AvgDuration: "45 minutes", AutomationReady: true, LastUsed: day(2024, 1, 10), Usage: 127},
	{ID: "PB-002", Title: "Phishing Email Investigation", Category: "Email Security", Steps: 12, AvgDuration: "30 minutes", AutomationReady: false, LastUsed: day(2024, 1, 9), Usage: 89},
	{ID: "PB-003", Title: "IOC Enrichment Process", Category: "Threat Intelligence", Steps: 6, AvgDuration: "15 minutes", AutomationReady: true, LastUsed: day(2024, 1, 10), Usage: 234},
	{ID: "PB-004", Title: "Lateral Movement Detection", Category: "Network Security", Steps: 10, AvgDuration: "60 minutes", AutomationReady: false, LastUsed: day(2024, 1, 8), Usage: 45},
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
