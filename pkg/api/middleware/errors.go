package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body written for every error the middleware
// produces. The API package writes the same shape.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteError writes an ErrorResponse with the given status
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      status,
		RequestID: GetRequestID(r),
	})
}
