package middleware

import (
	"fmt"
	"net/http"
)

// BodySizeLimit creates middleware that limits the size of incoming request
// bodies. A non-positive maxBytes disables the limit.
func BodySizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Reject early when the declared length is already too large
			if r.ContentLength > maxBytes {
				WriteError(w, r, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("Request body exceeds %d bytes", maxBytes))
				return
			}

			// Chunked or misreported bodies are cut off while reading
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}
