package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/snapshot"
	"github.com/dd0wney/threatloom/pkg/validation"
)

// Snapshot content types
const (
	ContentTypeJSON         = "application/json"
	ContentTypeSnappyFramed = "application/x-snappy-framed"
)

// StatusResponse describes the running server
type StatusResponse struct {
	Version   string         `json:"version"`
	Source    string         `json:"source"`
	StartTime time.Time      `json:"startTime"`
	Uptime    float64        `json:"uptimeSeconds"`
	RateLimit any            `json:"rateLimit,omitempty"`
	Updates   *UpdatesStatus `json:"updates,omitempty"`
}

// UpdatesStatus describes the simulated push loop
type UpdatesStatus struct {
	Subscribers int    `json:"subscribers"`
	Running     bool   `json:"running"`
	Interval    string `json:"interval,omitempty"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.DashboardMetrics(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "dashboard", err)
		return
	}
	s.respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	qp := newQueryParser(r)
	c := qp.Criteria("type")
	if err := qp.Err(); err != nil {
		s.respondServiceError(w, r, "indicators", err)
		return
	}

	result, err := s.svc.Indicators(r.Context(), c)
	if err != nil {
		s.respondServiceError(w, r, "indicators", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	qp := newQueryParser(r)
	c := qp.Criteria("type")
	if err := qp.Err(); err != nil {
		s.respondServiceError(w, r, "alerts", err)
		return
	}

	result, err := s.svc.Alerts(r.Context(), c)
	if err != nil {
		s.respondServiceError(w, r, "alerts", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	qp := newQueryParser(r)
	c := qp.Criteria("type")
	window := qp.Duration("window", intel.DefaultAnomalyWindow)
	if err := qp.Err(); err != nil {
		s.respondServiceError(w, r, "anomalies", err)
		return
	}

	result, err := s.svc.Anomalies(r.Context(), c, window)
	if err != nil {
		s.respondServiceError(w, r, "anomalies", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.svc.Analytics(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "analytics", err)
		return
	}
	s.respondJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleFeeds(w http.ResponseWriter, r *http.Request) {
	qp := newQueryParser(r)
	c := qp.Criteria("type")
	if err := qp.Err(); err != nil {
		s.respondServiceError(w, r, "feeds", err)
		return
	}

	result, err := s.svc.Feeds(r.Context(), c)
	if err != nil {
		s.respondServiceError(w, r, "feeds", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handlePlaybooks filters by category through either ?type= or ?category=
func (s *Server) handlePlaybooks(w http.ResponseWriter, r *http.Request) {
	qp := newQueryParser(r)
	c := qp.Criteria("type")
	if c.Type == "" {
		c.Type = qp.String("category")
	}
	if err := qp.Err(); err != nil {
		s.respondServiceError(w, r, "playbooks", err)
		return
	}

	result, err := s.svc.Playbooks(r.Context(), c)
	if err != nil {
		s.respondServiceError(w, r, "playbooks", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	qp := newQueryParser(r)
	hours := qp.Int("hours", 24)
	lo := qp.Int("min", 50)
	hi := qp.Int("max", 200)
	if err := qp.Err(); err != nil {
		s.respondServiceError(w, r, "timeseries", err)
		return
	}

	points, err := s.svc.TimeSeries(hours, lo, hi)
	if err != nil {
		s.respondServiceError(w, r, "timeseries", err)
		return
	}
	s.respondJSON(w, http.StatusOK, points)
}

// handleSnapshot streams every domain as one document. ?compress=snappy
// selects the snappy framing format.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	compress := false
	switch mode := strings.ToLower(newQueryParser(r).String("compress")); mode {
	case "", snapshot.CompressionNone:
	case snapshot.CompressionSnappy:
		compress = true
	default:
		s.respondServiceError(w, r, "snapshot", &validation.Error{
			Field:   "compress",
			Message: fmt.Sprintf("must be one of [%s %s]", snapshot.CompressionNone, snapshot.CompressionSnappy),
		})
		return
	}

	snap, err := snapshot.Collect(r.Context(), s.svc)
	if err != nil {
		s.respondServiceError(w, r, "snapshot", err)
		return
	}

	filename := "threatloom-snapshot-" + snap.GeneratedAt.UTC().Format("20060102T150405Z") + ".json"
	contentType := ContentTypeJSON
	if compress {
		filename += ".sz"
		contentType = ContentTypeSnappyFramed
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	n, err := snapshot.Encode(w, snap, snapshot.Options{Compress: compress, Metrics: s.metricsRegistry})
	if err != nil {
		// Headers are gone; the client sees a truncated body
		s.logger.Error("snapshot write failed",
			logging.Error(err),
			logging.Int64("bytes", n),
		)
		return
	}
	s.logger.Debug("snapshot served",
		logging.Int64("bytes", n),
		logging.Bool("compressed", compress),
	)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Version:   s.version,
		Source:    s.svc.SourceName(),
		StartTime: s.startTime,
		Uptime:    time.Since(s.startTime).Seconds(),
	}
	if s.rateLimiter != nil {
		resp.RateLimit = s.rateLimiter.Stats()
	}
	if s.updates != nil {
		resp.Updates = &UpdatesStatus{Subscribers: s.updates.Len()}
		if s.ticker != nil {
			resp.Updates.Running = s.ticker.Running()
			resp.Updates.Interval = s.ticker.Interval().String()
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}
