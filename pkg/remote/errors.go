package remote

import (
	"errors"
	"fmt"
)

// ErrPollLimit is wrapped by the TransportError returned when a job is still
// running after MaxPolls status checks
var ErrPollLimit = errors.New("search job did not finish within the poll limit")

// TransportError reports that the backend could not be reached or answered
// with an unexpected status (>= 500)
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// QueryError reports that the backend rejected a search: a 4xx response, a
// FAILED job, a missing job id or result rows that do not fit the record shape
type QueryError struct {
	Op         string
	JobID      string
	StatusCode int
	Message    string
	Err        error
}

func (e *QueryError) Error() string {
	msg := fmt.Sprintf("remote %s rejected", e.Op)
	if e.JobID != "" {
		msg += fmt.Sprintf(" (job %s)", e.JobID)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsTransport reports whether err is or wraps a *TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsQuery reports whether err is or wraps a *QueryError
func IsQuery(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// failureKind labels err for metrics; "" means success
func failureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsQuery(err):
		return "query"
	case IsTransport(err):
		return "transport"
	default:
		return "other"
	}
}
