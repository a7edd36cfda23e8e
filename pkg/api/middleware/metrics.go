package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// unmatchedPath labels requests no route matched, keeping label cardinality
// bounded
const unmatchedPath = "unmatched"

// MetricsRecorder is an interface for recording HTTP metrics
type MetricsRecorder interface {
	RecordHTTPRequest(method, path, status string, duration time.Duration)
	RecordResponseSize(method, path string, size float64)
	IncHTTPRequestsInFlight()
	DecHTTPRequestsInFlight()
}

// routeLabel returns the matched ServeMux pattern without its method prefix
func routeLabel(r *http.Request) string {
	p := r.Pattern
	if p == "" {
		return unmatchedPath
	}
	for i := 0; i < len(p); i++ {
		if p[i] == ' ' {
			return p[i+1:]
		}
	}
	return p
}

// Metrics creates middleware that tracks HTTP request metrics. It must wrap
// the *http.ServeMux directly: the path label is the route pattern the mux
// records on the request, never the raw URL.
func Metrics(recorder MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			recorder.IncHTTPRequestsInFlight()
			defer recorder.DecHTTPRequestsInFlight()

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			path := routeLabel(r)
			recorder.RecordHTTPRequest(r.Method, path, strconv.Itoa(rec.statusCode), time.Since(start))
			recorder.RecordResponseSize(r.Method, path, float64(rec.bytesWritten))
		})
	}
}
