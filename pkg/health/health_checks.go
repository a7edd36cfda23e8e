package health

import (
	"context"
	"runtime"
	"time"
)

// SimpleCheck returns a check that always reports healthy
func SimpleCheck(name string) CheckFunc {
	return func(context.Context) Check {
		return Check{Name: name, Status: StatusHealthy}
	}
}

// SourceCheck pings the data source. A ping slower than slow reports
// degraded; a failed ping reports unhealthy.
func SourceCheck(source string, ping func(ctx context.Context) error, slow time.Duration) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{
			Name:    "source",
			Details: map[string]any{"source": source},
		}

		start := time.Now()
		err := ping(ctx)
		elapsed := time.Since(start)
		check.Details["latency_ms"] = elapsed.Milliseconds()

		switch {
		case err != nil:
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		case slow > 0 && elapsed > slow:
			check.Status = StatusDegraded
			check.Message = "Source responding slowly"
		default:
			check.Status = StatusHealthy
			check.Message = "Source reachable"
		}
		return check
	}
}

// UpdatesCheck reports the simulated update loop. A stopped ticker with
// subscribers waiting is degraded: the API still serves, pushes do not.
func UpdatesCheck(subscribers func() int, running func() bool) CheckFunc {
	return func(context.Context) Check {
		n, up := subscribers(), running()
		check := Check{
			Name: "updates",
			Details: map[string]any{
				"subscribers": n,
				"running":     up,
			},
		}

		if !up && n > 0 {
			check.Status = StatusDegraded
			check.Message = "Update ticker stopped with active subscribers"
		} else {
			check.Status = StatusHealthy
			check.Message = "Update ticker healthy"
		}
		return check
	}
}

// MemoryCheck reports heap usage relative to memory obtained from the OS.
// A nil getUsage reads runtime.MemStats.
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	if getUsage == nil {
		getUsage = func() (uint64, uint64) {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			return m.HeapAlloc, m.Sys
		}
	}

	return func(context.Context) Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()
		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		var usagePercent float64
		if sys > 0 {
			usagePercent = float64(alloc) / float64(sys) * 100
		}

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}
		return check
	}
}
