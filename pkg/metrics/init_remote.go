package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRemoteMetrics() {
	r.RemoteJobsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatloom_remote_jobs_total",
			Help: "Search jobs submitted to the remote backend",
		},
		[]string{"status"},
	)

	r.RemotePollsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "threatloom_remote_polls_total",
			Help: "Job status polls issued to the remote backend",
		},
	)

	r.RemoteJobDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "threatloom_remote_job_duration_seconds",
			Help:    "Time from job submission to results, in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	r.RemoteFailuresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatloom_remote_failures_total",
			Help: "Remote search failures by kind (transport, query)",
		},
		[]string{"kind"},
	)
}

func (r *Registry) initExportMetrics() {
	r.SnapshotsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatloom_snapshots_total",
			Help: "Snapshots written",
		},
		[]string{"compression", "status"},
	)

	r.SnapshotSizeBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threatloom_snapshot_size_bytes",
			Help:    "Encoded snapshot size in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"compression"},
	)

	r.GraphQLRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatloom_graphql_requests_total",
			Help: "GraphQL requests by outcome",
		},
		[]string{"status"},
	)
}
