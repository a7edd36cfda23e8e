package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dd0wney/threatloom/pkg/logging"
)

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not a JSON error: %v (%q)", err, rr.Body.String())
	}
	return resp
}

// --- BodySizeLimit Tests ---

func TestBodySizeLimit_AllowsSmallRequest(t *testing.T) {
	handler := BodySizeLimit(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader("small body"))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != "small body" {
		t.Errorf("Body = %q", rr.Body.String())
	}
}

func TestBodySizeLimit_RejectsLargeContentLength(t *testing.T) {
	handler := BodySizeLimit(100)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called for oversized request")
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	req.ContentLength = 1000

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status %d, got %d", http.StatusRequestEntityTooLarge, rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Error code = %d", resp.Code)
	}
}

func TestBodySizeLimit_LimitsActualBody(t *testing.T) {
	handler := BodySizeLimit(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 100)))
	req.ContentLength = -1

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status %d, got %d", http.StatusRequestEntityTooLarge, rr.Code)
	}
}

func TestBodySizeLimit_ZeroDisables(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 4096)))
	rr := httptest.NewRecorder()

	BodySizeLimit(0)(inner).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

// --- PanicRecovery Tests ---

func TestPanicRecovery_HandlesNormalRequest(t *testing.T) {
	handler := PanicRecovery(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestPanicRecovery_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.DebugLevel)

	handler := RequestID()(PanicRecovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("feed parser exploded")
	})))

	req := httptest.NewRequest("GET", "/api/v1/feeds", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	resp := decodeError(t, rr)
	if strings.Contains(resp.Message, "exploded") {
		t.Error("Panic value leaked to client")
	}
	if resp.RequestID != "req-42" {
		t.Errorf("RequestID = %q, want req-42", resp.RequestID)
	}
	if !strings.Contains(buf.String(), "feed parser exploded") {
		t.Error("Panic value was not logged")
	}
}

func TestPanicRecovery_RepanicsAbortHandler(t *testing.T) {
	handler := PanicRecovery(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("Expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}

// --- Logging Tests ---

func TestLogging_WithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.DebugLevel)

	handler := RequestID()(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})))

	req := httptest.NewRequest("GET", "/api/v1/alerts", nil)
	req.Header.Set(RequestIDHeader, "trace-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{`"level":"INFO"`, `"request_id":"trace-1"`, `"path":"/api/v1/alerts"`, `"status":200`} {
		if !strings.Contains(out, want) {
			t.Errorf("Log line missing %s: %s", want, out)
		}
	}
}

func TestLogging_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, `"level":"INFO"`},
		{http.StatusBadRequest, `"level":"WARN"`},
		{http.StatusBadGateway, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		logger := logging.NewJSONLogger(&buf, logging.DebugLevel)
		handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

		if !strings.Contains(buf.String(), tt.level) {
			t.Errorf("status %d: expected %s in %s", tt.status, tt.level, buf.String())
		}
	}
}

// --- RequestID Tests ---

func TestRequestID_GeneratesNew(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if len(seen) != 36 {
		t.Errorf("Expected a UUID request ID, got %q", seen)
	}
	if rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("Response header %q does not match context %q", rr.Header().Get(RequestIDHeader), seen)
	}
}

func TestRequestID_UsesClientProvided(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "client-id-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "client-id-123" {
		t.Errorf("Expected client-id-123, got %q", seen)
	}
}

func TestRequestID_ReplacesUnusableInput(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "<>!@#")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(seen) != 36 {
		t.Errorf("Expected generated UUID after sanitization emptied input, got %q", seen)
	}
}

func TestGetRequestID_NoContext(t *testing.T) {
	if id := GetRequestID(httptest.NewRequest("GET", "/", nil)); id != "" {
		t.Errorf("Expected empty request ID, got %q", id)
	}
	if id := GetRequestID(nil); id != "" {
		t.Errorf("Expected empty request ID for nil request, got %q", id)
	}
}

func TestSanitizeRequestID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abc-123", "abc-123"},
		{"abc_123.xyz", "abc_123.xyz"},
		{"abc<script>123", "abcscript123"},
		{"a b\nc", "abc"},
		{strings.Repeat("a", 100), strings.Repeat("a", 64)},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sanitizeRequestID(tt.input); got != tt.expected {
			t.Errorf("sanitizeRequestID(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

// --- CORS Tests ---

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	if len(cfg.AllowedOrigins) != 0 {
		t.Error("Default config should allow no origins")
	}
	if cfg.AllowCredentials {
		t.Error("Default config should not allow credentials")
	}
	if len(cfg.AllowedMethods) != 3 {
		t.Errorf("AllowedMethods = %v", cfg.AllowedMethods)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	handler := CORS(NewCORSConfig([]string{"https://soc.example.com"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/dashboard", nil)
	req.Header.Set("Origin", "https://soc.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://soc.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("Allow-Methods = %q", got)
	}
	if rr.Header().Get("Vary") != "Origin" {
		t.Error("Expected Vary: Origin")
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	handler := CORS(NewCORSConfig([]string{"https://soc.example.com"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("Disallowed origin should not get CORS headers")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("Simple request should still be served, got %d", rr.Code)
	}
}

func TestCORS_WildcardOrigin(t *testing.T) {
	handler := CORS(NewCORSConfig([]string{"*"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS(NewCORSConfig([]string{"https://soc.example.com"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Preflight should not reach the handler")
	}))

	tests := []struct {
		origin string
		want   int
	}{
		{"https://soc.example.com", http.StatusNoContent},
		{"https://evil.example.com", http.StatusForbidden},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("OPTIONS", "/graphql", nil)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", "POST")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != tt.want {
			t.Errorf("Preflight from %s: status %d, want %d", tt.origin, rr.Code, tt.want)
		}
	}
}

func TestCORS_NilConfig(t *testing.T) {
	handler := CORS(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://soc.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("Nil config should not allow any origin")
	}
}

// --- SecurityHeaders Tests ---

func TestSecurityHeaders_AllHeaders(t *testing.T) {
	handler := SecurityHeaders(&SecurityHeadersConfig{TLSEnabled: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	expected := map[string]string{
		"X-Frame-Options":           "DENY",
		"X-Content-Type-Options":    "nosniff",
		"Content-Security-Policy":   DefaultContentSecurityPolicy,
		"Referrer-Policy":           "strict-origin-when-cross-origin",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	}
	for header, want := range expected {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestSecurityHeaders_NoTLS(t *testing.T) {
	handler := SecurityHeaders(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS should not be set without TLS")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("X-Frame-Options should be set with nil config")
	}
}

func TestSecurityHeaders_CustomCSP(t *testing.T) {
	csp := "default-src 'self'"
	handler := SecurityHeaders(&SecurityHeadersConfig{ContentSecurityPolicy: csp})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if got := rr.Header().Get("Content-Security-Policy"); got != csp {
		t.Errorf("CSP = %q, want %q", got, csp)
	}
}

// --- Metrics Tests ---

type recordedRequest struct {
	method, path, status string
}

type mockRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	sizes    []float64
	inFlight int
	peak     int
}

func (m *mockRecorder) RecordHTTPRequest(method, path, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method, path, status})
}

func (m *mockRecorder) RecordResponseSize(_, _ string, size float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sizes = append(m.sizes, size)
}

func (m *mockRecorder) IncHTTPRequestsInFlight() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight++
	m.peak = max(m.peak, m.inFlight)
}

func (m *mockRecorder) DecHTTPRequestsInFlight() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/indicators", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("12345"))
	})
	recorder := &mockRecorder{}
	handler := Metrics(recorder)(mux)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/indicators?type=IP", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/no/such/route/42", nil))

	if len(recorder.requests) != 2 {
		t.Fatalf("Recorded %d requests, want 2", len(recorder.requests))
	}
	if got := recorder.requests[0]; got != (recordedRequest{"GET", "/api/v1/indicators", "200"}) {
		t.Errorf("First request recorded as %+v", got)
	}
	if got := recorder.requests[1]; got != (recordedRequest{"GET", unmatchedPath, "404"}) {
		t.Errorf("Unmatched request recorded as %+v", got)
	}
	if recorder.sizes[0] != 5 {
		t.Errorf("Response size = %v, want 5", recorder.sizes[0])
	}
}

func TestMetrics_TracksInFlight(t *testing.T) {
	recorder := &mockRecorder{}
	handler := Metrics(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder.mu.Lock()
		defer recorder.mu.Unlock()
		if recorder.inFlight != 1 {
			t.Errorf("In-flight during request = %d, want 1", recorder.inFlight)
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if recorder.inFlight != 0 {
		t.Errorf("In-flight after request = %d, want 0", recorder.inFlight)
	}
	if recorder.peak != 1 {
		t.Errorf("Peak in-flight = %d, want 1", recorder.peak)
	}
}

func TestMetrics_NilRecorder(t *testing.T) {
	handler := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, rr.Code)
	}
}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())
	rec.WriteHeader(http.StatusNotFound)
	rec.WriteHeader(http.StatusOK)

	if rec.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want %d", rec.statusCode, http.StatusNotFound)
	}
}

// --- RateLimiter Tests ---

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(nil, nil)
	defer rl.Stop()

	stats := rl.Stats()
	if stats.RequestsPerSecond != 50 || stats.BurstSize != 100 {
		t.Errorf("Default stats = %+v", stats)
	}
	if stats.ActiveClients != 0 {
		t.Errorf("ActiveClients = %d, want 0", stats.ActiveClients)
	}
}

func TestRateLimiter_AllowBurst(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 3}, nil)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("Request %d within burst was denied", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Request beyond burst was allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("Other client should have its own bucket")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{RequestsPerSecond: 50, BurstSize: 1}, nil)
	defer rl.Stop()

	if !rl.Allow("client") {
		t.Fatal("First request denied")
	}
	if rl.Allow("client") {
		t.Fatal("Second immediate request allowed")
	}

	time.Sleep(50 * time.Millisecond)

	if !rl.Allow("client") {
		t.Error("Request after refill was denied")
	}
}

func TestRateLimiter_MaxClients(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{RequestsPerSecond: 10, BurstSize: 10, MaxClients: 2}, nil)
	defer rl.Stop()

	if !rl.Allow("a") || !rl.Allow("b") {
		t.Fatal("First two clients should be admitted")
	}
	if rl.Allow("c") {
		t.Error("Third client should be rejected at capacity")
	}
	if !rl.Allow("a") {
		t.Error("Known client should still be served at capacity")
	}
	if rl.Stats().ActiveClients != 2 {
		t.Errorf("ActiveClients = %d, want 2", rl.Stats().ActiveClients)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{RequestsPerSecond: 10, BurstSize: 10, ClientExpiration: time.Minute}, nil)
	defer rl.Stop()

	rl.Allow("a")
	rl.Allow("b")

	if removed := rl.cleanup(time.Now()); removed != 0 {
		t.Errorf("Fresh clients removed: %d", removed)
	}
	if removed := rl.cleanup(time.Now().Add(2 * time.Minute)); removed != 2 {
		t.Errorf("Expired clients removed = %d, want 2", removed)
	}
	if rl.Stats().ActiveClients != 0 {
		t.Errorf("ActiveClients = %d after cleanup", rl.Stats().ActiveClients)
	}
}

func TestRateLimiter_StopIdempotent(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimitConfig(), nil)
	rl.Stop()
	rl.Stop()
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{RequestsPerSecond: 0.5, BurstSize: 2}, nil)
	defer rl.Stop()

	var limited []string
	onLimited := func(r *http.Request, clientID string) { limited = append(limited, clientID) }

	handler := RateLimit(rl, func(r *http.Request) string { return "203.0.113.9" }, onLimited)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, httptest.NewRequest("GET", "/api/v1/alerts", nil))
		codes = append(codes, last.Code)
	}

	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("Status codes = %v, want [200 200 429]", codes)
	}
	if got := last.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}
	if got := last.Header().Get("X-RateLimit-Limit"); got != "0.5" {
		t.Errorf("X-RateLimit-Limit = %q, want 0.5", got)
	}
	if resp := decodeError(t, last); resp.Code != http.StatusTooManyRequests {
		t.Errorf("Error body code = %d", resp.Code)
	}
	if len(limited) != 1 || limited[0] != "203.0.113.9" {
		t.Errorf("onLimited calls = %v", limited)
	}
}

func TestRateLimit_NilLimiter(t *testing.T) {
	handler := RateLimit(nil, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
}
