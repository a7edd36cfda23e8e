package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/threatloom/pkg/api/middleware"
	"github.com/dd0wney/threatloom/pkg/config"
	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/metrics"
	"github.com/dd0wney/threatloom/pkg/remote"
	"github.com/dd0wney/threatloom/pkg/service"
	"github.com/dd0wney/threatloom/pkg/simulate"
	"github.com/dd0wney/threatloom/pkg/snapshot"
	"github.com/dd0wney/threatloom/pkg/updates"
)

var testNow = time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

func newTestService() *service.Service {
	clock := func() time.Time { return testNow }
	gen := simulate.NewGenerator(simulate.WithSeed(7), simulate.WithClock(clock))
	return service.New(simulate.NewSource(gen), service.WithClock(clock))
}

// setupTestServer creates a server over the seeded simulated source
func setupTestServer(t *testing.T, svc *service.Service, cfg config.HTTPConfig, opts ...Option) (*Server, http.Handler) {
	t.Helper()

	if svc == nil {
		svc = newTestService()
	}
	server, err := NewServer(svc, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(server.Close)

	return server, server.Handler()
}

func doRequest(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), "body: %s", rr.Body.String())
}

type pageBody struct {
	Items []struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Severity string `json:"severity"`
		Status   string `json:"status"`
		Name     string `json:"name"`
	} `json:"items"`
	Total   int `json:"total"`
	Matched int `json:"matched"`
	Stats   struct {
		Total int `json:"total"`
	} `json:"stats"`
}

func TestNewServerRequiresService(t *testing.T) {
	_, err := NewServer(nil, config.HTTPConfig{})
	assert.Error(t, err)
}

func TestDashboardEndpoint(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	rr := doRequest(h, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body intel.DashboardMetrics
	decodeBody(t, rr, &body)
	assert.Len(t, body.ThreatVolume, 25)
	assert.GreaterOrEqual(t, body.ActiveThreats, 100)
	assert.Less(t, body.ActiveThreats, 150)
}

func TestIndicatorsEndpointFilters(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	rr := doRequest(h, http.MethodGet, "/api/v1/indicators?type=IP&severity=Critical&limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body pageBody
	decodeBody(t, rr, &body)
	assert.Equal(t, 500, body.Total)
	assert.Equal(t, 500, body.Stats.Total)
	assert.LessOrEqual(t, len(body.Items), 5)
	for _, item := range body.Items {
		assert.Equal(t, "IP", item.Type)
		assert.Equal(t, "Critical", item.Severity)
	}
}

func TestAlertsEndpointDefaultLimit(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	rr := doRequest(h, http.MethodGet, "/api/v1/alerts?status=all", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body pageBody
	decodeBody(t, rr, &body)
	assert.Equal(t, 200, body.Total)
	assert.Equal(t, 200, body.Matched)
	assert.Len(t, body.Items, intel.DefaultLimit)
}

func TestAnomaliesEndpointWindow(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	for _, window := range []string{"6h", "6"} {
		t.Run(window, func(t *testing.T) {
			rr := doRequest(h, http.MethodGet, "/api/v1/anomalies?window="+window, nil)
			require.Equal(t, http.StatusOK, rr.Code)

			var body struct {
				Window     string            `json:"window"`
				Total      int               `json:"total"`
				TimeSeries []json.RawMessage `json:"timeSeries"`
			}
			decodeBody(t, rr, &body)
			assert.Equal(t, "6h0m0s", body.Window)
			assert.Equal(t, 50, body.Total)
			assert.Len(t, body.TimeSeries, 7)
		})
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	rr := doRequest(h, http.MethodGet, "/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body intel.AnalyticsBundle
	decodeBody(t, rr, &body)
	assert.NotEmpty(t, body.ThreatActors)
	assert.NotEmpty(t, body.MitreTactics)
}

func TestFeedsEndpointStatus(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	rr := doRequest(h, http.MethodGet, "/api/v1/feeds?status=Warning", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body pageBody
	decodeBody(t, rr, &body)
	assert.Equal(t, 5, body.Total)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "ThreatConnect IOCs", body.Items[0].Name)
}

func TestPlaybooksEndpointCategory(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	for _, target := range []string{
		"/api/v1/playbooks?type=Email+Security",
		"/api/v1/playbooks?category=Email%20Security",
	} {
		rr := doRequest(h, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, rr.Code, target)

		var body pageBody
		decodeBody(t, rr, &body)
		require.Len(t, body.Items, 1, target)
		assert.Equal(t, "PB-002", body.Items[0].ID)
	}
}

func TestTimeSeriesEndpoint(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	rr := doRequest(h, http.MethodGet, "/api/v1/timeseries?hours=4&min=10&max=20", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var points []intel.TimeSeriesPoint
	decodeBody(t, rr, &points)
	require.Len(t, points, 5)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Value, 10)
		assert.Less(t, p.Value, 20)
	}
}

func TestInvalidParametersReturn400(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	tests := []struct {
		name   string
		target string
		field  string
	}{
		{"non-numeric limit", "/api/v1/indicators?limit=ten", "limit"},
		{"limit too large", "/api/v1/indicators?limit=5000", "limit"},
		{"unknown severity", "/api/v1/alerts?severity=Severe", "severity"},
		{"unknown alert status", "/api/v1/alerts?status=Snoozed", "status"},
		{"bad window", "/api/v1/anomalies?window=yesterday", "window"},
		{"window too long", "/api/v1/anomalies?window=720h", "window"},
		{"hours out of range", "/api/v1/timeseries?hours=0", "hours"},
		{"inverted range", "/api/v1/timeseries?min=20&max=10", "max"},
		{"unknown compression", "/api/v1/snapshot?compress=gzip", "compress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(h, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

			var body middleware.ErrorResponse
			decodeBody(t, rr, &body)
			assert.Equal(t, http.StatusBadRequest, body.Code)
			assert.Equal(t, "Bad Request", body.Error)
			assert.Contains(t, body.Message, tt.field)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

// stubSource fails every collection with err
type stubSource struct{ err error }

func (s stubSource) Name() string { return "remote" }
func (s stubSource) DashboardMetrics(context.Context) (*intel.DashboardMetrics, error) {
	return nil, s.err
}
func (s stubSource) Indicators(context.Context, intel.Criteria) ([]intel.Indicator, error) {
	return nil, s.err
}
func (s stubSource) Anomalies(context.Context, time.Duration) (*intel.AnomalyReport, error) {
	return nil, s.err
}
func (s stubSource) Alerts(context.Context, intel.Criteria) ([]intel.Alert, error) {
	return nil, s.err
}
func (s stubSource) Analytics(context.Context) (*intel.AnalyticsBundle, error) { return nil, s.err }
func (s stubSource) Feeds(context.Context) ([]intel.Feed, error)              { return nil, s.err }
func (s stubSource) Playbooks(context.Context) ([]intel.Playbook, error)      { return nil, s.err }

func TestBackendErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		target  string
		status  int
		message string
	}{
		{
			name:    "transport failure",
			err:     &remote.TransportError{Op: "submit", URL: "https://siem.internal:8089", Err: errors.New("connection refused")},
			target:  "/api/v1/alerts",
			status:  http.StatusBadGateway,
			message: "remote search backend unavailable",
		},
		{
			name:    "rejected query",
			err:     &remote.QueryError{Op: "search", JobID: "1700000000.42", Message: "Unknown search command"},
			target:  "/api/v1/indicators",
			status:  http.StatusUnprocessableEntity,
			message: "remote search rejected the query: Unknown search command",
		},
		{
			name:    "timeseries unsupported",
			err:     errors.New("unused"),
			target:  "/api/v1/timeseries",
			status:  http.StatusNotImplemented,
			message: intel.ErrUnsupported.Error(),
		},
		{
			name:    "unexpected failure",
			err:     errors.New("/var/lib/threatloom: permission denied"),
			target:  "/api/v1/dashboard",
			status:  http.StatusInternalServerError,
			message: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := setupTestServer(t, service.New(stubSource{err: tt.err}), config.HTTPConfig{})

			rr := doRequest(h, http.MethodGet, tt.target, nil)
			require.Equal(t, tt.status, rr.Code)

			var body middleware.ErrorResponse
			decodeBody(t, rr, &body)
			assert.Equal(t, tt.message, body.Message)
			assert.NotContains(t, rr.Body.String(), "siem.internal")
			assert.NotContains(t, rr.Body.String(), "/var/lib")
		})
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	tests := []struct {
		query       string
		contentType string
		suffix      string
	}{
		{"", ContentTypeJSON, ".json\""},
		{"?compress=snappy", ContentTypeSnappyFramed, ".json.sz\""},
	}

	for _, tt := range tests {
		t.Run("compress"+tt.query, func(t *testing.T) {
			rr := doRequest(h, http.MethodGet, "/api/v1/snapshot"+tt.query, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.contentType, rr.Header().Get("Content-Type"))
			assert.True(t, strings.HasSuffix(rr.Header().Get("Content-Disposition"), tt.suffix))

			snap, err := snapshot.Decode(rr.Body)
			require.NoError(t, err)
			assert.Equal(t, "simulated", snap.Source)
			assert.Len(t, snap.Indicators, 500)
			assert.Len(t, snap.Alerts, 200)
			assert.Len(t, snap.Feeds, 5)
			assert.Len(t, snap.Playbooks, 4)
		})
	}
}

func TestGraphQLRoute(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{MaxBodyBytes: 1 << 20})

	rr := doRequest(h, http.MethodPost, "/graphql", strings.NewReader(`{"query": "{ health source }"}`))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data struct {
			Health string `json:"health"`
			Source string `json:"source"`
		} `json:"data"`
	}
	decodeBody(t, rr, &body)
	assert.Equal(t, "healthy", body.Data.Health)
	assert.Equal(t, "simulated", body.Data.Source)

	rr = doRequest(h, http.MethodGet, "/graphql", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestGraphQLRouteBodyLimit(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{MaxBodyBytes: 16})

	rr := doRequest(h, http.MethodPost, "/graphql", strings.NewReader(`{"query": "{ dashboard { activeThreats } }"}`))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestHealthEndpoints(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	for _, path := range []string{"/health", "/health/ready", "/health/live"} {
		rr := doRequest(h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestStatusEndpoint(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{RateLimit: 10, RateBurst: 20}, WithVersion("1.2.3"))

	rr := doRequest(h, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Version   string `json:"version"`
		Source    string `json:"source"`
		RateLimit struct {
			BurstSize int `json:"burstSize"`
		} `json:"rateLimit"`
	}
	decodeBody(t, rr, &body)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "simulated", body.Source)
	assert.Equal(t, 20, body.RateLimit.BurstSize)
}

func TestStatusEndpointReportsUpdates(t *testing.T) {
	svc := newTestService()
	registry := updates.NewRegistry()
	id := registry.Subscribe(func(updates.Event) {})
	defer registry.Unsubscribe(id)
	ticker := updates.NewTicker(registry, svc, time.Minute, nil)

	_, h := setupTestServer(t, svc, config.HTTPConfig{}, WithUpdates(registry, ticker))

	rr := doRequest(h, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body StatusResponse
	decodeBody(t, rr, &body)
	require.NotNil(t, body.Updates)
	assert.Equal(t, 1, body.Updates.Subscribers)
	assert.False(t, body.Updates.Running)
	assert.Equal(t, "1m0s", body.Updates.Interval)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	assert.Equal(t, http.StatusNotFound, doRequest(h, http.MethodGet, "/api/v1/nodes", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, doRequest(h, http.MethodPost, "/api/v1/dashboard", nil).Code)
}

func TestMiddlewareChainHeaders(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feeds", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "trace-123", rr.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestCORSPreflight(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{CORSAllowedOrigins: []string{"https://soc.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "https://soc.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://soc.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiting(t *testing.T) {
	reg := metrics.NewRegistry()
	_, h := setupTestServer(t, nil, config.HTTPConfig{RateLimit: 1, RateBurst: 1}, WithMetrics(reg))

	first := doRequest(h, http.MethodGet, "/api/v1/feeds", nil)
	second := doRequest(h, http.MethodGet, "/api/v1/feeds", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	var m dto.Metric
	require.NoError(t, reg.HTTPRateLimitedTotal.Write(&m))
	assert.Equal(t, float64(1), m.Counter.GetValue())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := metrics.NewRegistry()
	_, h := setupTestServer(t, nil, config.HTTPConfig{}, WithMetrics(reg))

	require.Equal(t, http.StatusOK, doRequest(h, http.MethodGet, "/api/v1/feeds?status=Active", nil).Code)
	doRequest(h, http.MethodGet, "/no/such/route", nil)

	count := func(path, status string) float64 {
		var m dto.Metric
		require.NoError(t, reg.HTTPRequestsTotal.WithLabelValues(http.MethodGet, path, status).Write(&m))
		return m.Counter.GetValue()
	}
	assert.Equal(t, float64(1), count("/api/v1/feeds", "200"))
	assert.Equal(t, float64(1), count("unmatched", "404"))

	rr := doRequest(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "threatloom_http_requests_total")
	assert.Contains(t, rr.Body.String(), "threatloom_goroutines")
}

func TestMetricsEndpointAbsentWithoutRegistry(t *testing.T) {
	_, h := setupTestServer(t, nil, config.HTTPConfig{})

	assert.Equal(t, http.StatusNotFound, doRequest(h, http.MethodGet, "/metrics", nil).Code)
}
