package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// DefaultCheckTimeout bounds a single check
const DefaultCheckTimeout = 5 * time.Second

// Check is the outcome of one component check
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// CheckFunc performs a check. ctx carries the per-check deadline.
type CheckFunc func(ctx context.Context) Check

// HealthChecker groups the checks behind /health, /health/ready and
// /health/live
type HealthChecker struct {
	checks      map[string]CheckFunc
	readyChecks map[string]CheckFunc
	liveChecks  map[string]CheckFunc
	mu          sync.RWMutex
	timeout     time.Duration
	startTime   time.Time
	version     string
}

// Response is the body of every health endpoint
type Response struct {
	Status    Status           `json:"status"`
	Version   string           `json:"version,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    float64          `json:"uptime_seconds"`
}
