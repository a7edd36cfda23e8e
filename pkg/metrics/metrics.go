package metrics

import (
	"runtime"
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the body size of an HTTP response
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

// IncHTTPRequestsInFlight marks a request as started
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks a request as finished
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordRateLimited counts a request rejected by the rate limiter
func (r *Registry) RecordRateLimited() {
	r.HTTPRateLimitedTotal.Inc()
}

// RecordSourceOperation records one call into a data source
func (r *Registry) RecordSourceOperation(source, domain string, err error, duration time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	r.SourceOperationsTotal.WithLabelValues(source, domain, status).Inc()
	r.SourceOperationDuration.WithLabelValues(source, domain).Observe(duration.Seconds())
}

// RecordFilter records the size of a batch before and after filtering
func (r *Registry) RecordFilter(domain string, in, out int, truncated bool) {
	r.FilterItemsIn.WithLabelValues(domain).Observe(float64(in))
	r.FilterItemsOut.WithLabelValues(domain).Observe(float64(out))
	if truncated {
		r.FilterTruncatedTotal.WithLabelValues(domain).Inc()
	}
}

// RecordUpdateDispatch records one event fanned out to subscribers
func (r *Registry) RecordUpdateDispatch(kind string, panics int, duration time.Duration) {
	r.UpdateEventsTotal.WithLabelValues(kind).Inc()
	r.UpdateCallbackPanicsTotal.Add(float64(panics))
	r.UpdateDispatchDuration.Observe(duration.Seconds())
}

// SetSubscribers sets the current subscriber count
func (r *Registry) SetSubscribers(n int) {
	r.UpdateSubscribers.Set(float64(n))
}

// RecordRemoteJob records a finished search job. kind is "" on success.
func (r *Registry) RecordRemoteJob(kind string, polls int, duration time.Duration) {
	r.RemotePollsTotal.Add(float64(polls))
	if kind != "" {
		r.RemoteJobsTotal.WithLabelValues(StatusError).Inc()
		r.RemoteFailuresTotal.WithLabelValues(kind).Inc()
		return
	}
	r.RemoteJobsTotal.WithLabelValues(StatusSuccess).Inc()
	r.RemoteJobDuration.Observe(duration.Seconds())
}

// RecordSnapshot records a written snapshot
func (r *Registry) RecordSnapshot(compression string, size int64, err error) {
	if err != nil {
		r.SnapshotsTotal.WithLabelValues(compression, StatusError).Inc()
		return
	}
	r.SnapshotsTotal.WithLabelValues(compression, StatusSuccess).Inc()
	r.SnapshotSizeBytes.WithLabelValues(compression).Observe(float64(size))
}

// RecordGraphQL records a GraphQL request outcome
func (r *Registry) RecordGraphQL(hasErrors bool) {
	if hasErrors {
		r.GraphQLRequestsTotal.WithLabelValues(StatusError).Inc()
		return
	}
	r.GraphQLRequestsTotal.WithLabelValues(StatusSuccess).Inc()
}

// UpdateSystemMetrics refreshes uptime, goroutine and memory gauges
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(r.startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
