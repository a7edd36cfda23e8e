package api

import (
	"encoding/json"
	"net/http"

	"github.com/dd0wney/threatloom/pkg/api/middleware"
	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/service"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response failed", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	middleware.WriteError(w, r, status, message)
}

// statusFor maps a service error kind to its HTTP status
func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindQuery:
		return http.StatusUnprocessableEntity
	case service.KindTransport:
		return http.StatusBadGateway
	case service.KindUnsupported:
		return http.StatusNotImplemented
	case service.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes a sanitized error for err. The full error is
// logged; only the public message reaches the client.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	kind := service.Classify(err)
	status := statusFor(kind)

	fields := []logging.Field{
		logging.Operation(operation),
		logging.String("kind", string(kind)),
		logging.Error(err),
		logging.RequestID(middleware.GetRequestID(r)),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}

	s.respondError(w, r, status, service.PublicMessage(err))
}
