package health

import (
	"context"
	"time"
)

// NewHealthChecker creates a health checker reporting version
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		checks:      make(map[string]CheckFunc),
		readyChecks: make(map[string]CheckFunc),
		liveChecks:  make(map[string]CheckFunc),
		timeout:     DefaultCheckTimeout,
		startTime:   time.Now(),
		version:     version,
	}
}

// SetTimeout changes the per-check deadline
func (hc *HealthChecker) SetTimeout(d time.Duration) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if d > 0 {
		hc.timeout = d
	}
}

// RegisterCheck registers a health check
func (hc *HealthChecker) RegisterCheck(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// RegisterReadinessCheck registers a readiness check
func (hc *HealthChecker) RegisterReadinessCheck(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.readyChecks[name] = check
}

// RegisterLivenessCheck registers a liveness check
func (hc *HealthChecker) RegisterLivenessCheck(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.liveChecks[name] = check
}

// Check performs all health checks
func (hc *HealthChecker) Check(ctx context.Context) Response {
	return hc.performChecks(ctx, hc.snapshot(hc.checks))
}

// CheckReadiness performs readiness checks
func (hc *HealthChecker) CheckReadiness(ctx context.Context) Response {
	return hc.performChecks(ctx, hc.snapshot(hc.readyChecks))
}

// CheckLiveness performs liveness checks
func (hc *HealthChecker) CheckLiveness(ctx context.Context) Response {
	return hc.performChecks(ctx, hc.snapshot(hc.liveChecks))
}

// snapshot copies a check map so slow checks run without the lock
func (hc *HealthChecker) snapshot(m map[string]CheckFunc) map[string]CheckFunc {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	out := make(map[string]CheckFunc, len(m))
	for name, fn := range m {
		out[name] = fn
	}
	return out
}

func (hc *HealthChecker) performChecks(ctx context.Context, checksMap map[string]CheckFunc) Response {
	hc.mu.RLock()
	timeout := hc.timeout
	hc.mu.RUnlock()

	response := Response{
		Status:    StatusHealthy,
		Version:   hc.version,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(checksMap)),
		Uptime:    time.Since(hc.startTime).Seconds(),
	}

	for name, checkFunc := range checksMap {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		check := checkFunc(checkCtx)
		cancel()

		check.Duration = time.Since(start)
		check.LastChecked = start
		if check.Name == "" {
			check.Name = name
		}
		response.Checks[name] = check

		// Worst status wins
		if check.Status == StatusUnhealthy {
			response.Status = StatusUnhealthy
		} else if check.Status == StatusDegraded && response.Status != StatusUnhealthy {
			response.Status = StatusDegraded
		}
	}

	return response
}
