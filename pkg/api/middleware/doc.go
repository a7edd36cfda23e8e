// Package middleware provides HTTP middleware for the ThreatLoom API server.
//
// The package is organized into separate files by concern:
//
//   - recovery.go: Panic recovery middleware
//   - logging.go: Structured request logging
//   - cors.go: Cross-Origin Resource Sharing (CORS) middleware
//   - security_headers.go: Security headers middleware (clickjacking, MIME sniffing, CSP)
//   - body_limit.go: Request body size limiting middleware
//   - request_id.go: Request ID generation and tracking middleware
//   - ratelimit.go: Per-client rate limiting backed by golang.org/x/time/rate
//   - trusted_proxy.go: Client IP resolution behind trusted reverse proxies
//   - metrics.go: HTTP metrics collection middleware
//
// All middleware follows the standard pattern: func(http.Handler) http.Handler
// This allows easy chaining: handler = middleware1(middleware2(handler))
//
// Example usage:
//
//	mux := http.NewServeMux()
//	// ... register handlers ...
//
//	handler := middleware.Metrics(registry)(mux)
//	handler = middleware.PanicRecovery(logger)(handler)
//	handler = middleware.Logging(logger)(handler)
//	handler = middleware.RequestID()(handler)
//
//	http.ListenAndServe(":8080", handler)
package middleware
