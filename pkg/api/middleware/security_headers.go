package middleware

import (
	"net/http"
)

// DefaultContentSecurityPolicy locks API responses down to same-origin content
const DefaultContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeadersConfig holds configuration for security headers
type SecurityHeadersConfig struct {
	TLSEnabled            bool // Whether TLS is terminated in front of the server (for HSTS)
	ContentSecurityPolicy string
}

// SecurityHeaders creates middleware that adds security headers to responses
func SecurityHeaders(config *SecurityHeadersConfig) func(http.Handler) http.Handler {
	csp := DefaultContentSecurityPolicy
	hsts := false
	if config != nil {
		hsts = config.TLSEnabled
		if config.ContentSecurityPolicy != "" {
			csp = config.ContentSecurityPolicy
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Content-Security-Policy", csp)
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
