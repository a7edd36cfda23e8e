package service

import (
	"context"
	"errors"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/remote"
	"github.com/dd0wney/threatloom/pkg/validation"
)

// ErrorKind classifies a service error for the outer surfaces
type ErrorKind string

const (
	KindInvalid     ErrorKind = "INVALID_ARGUMENT"
	KindQuery       ErrorKind = "QUERY_REJECTED"
	KindTransport   ErrorKind = "BACKEND_UNAVAILABLE"
	KindUnsupported ErrorKind = "UNSUPPORTED"
	KindTimeout     ErrorKind = "TIMEOUT"
	KindInternal    ErrorKind = "INTERNAL"
)

// Classify returns the kind of err. Validation is checked first so a
// rejected parameter is never reported as a backend failure.
func Classify(err error) ErrorKind {
	var (
		qe *remote.QueryError
		te *remote.TransportError
	)
	switch {
	case validation.IsValidationError(err):
		return KindInvalid
	case errors.As(err, &qe):
		return KindQuery
	case errors.As(err, &te):
		return KindTransport
	case errors.Is(err, intel.ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTimeout
	default:
		return KindInternal
	}
}

// PublicMessage returns a client-safe description of err. Backend URLs,
// job ids and wrapped internals are never included.
func PublicMessage(err error) string {
	switch Classify(err) {
	case KindInvalid:
		var ve *validation.Error
		errors.As(err, &ve)
		return ve.Error()
	case KindQuery:
		var qe *remote.QueryError
		errors.As(err, &qe)
		if qe.Message != "" {
			return "remote search rejected the query: " + qe.Message
		}
		return "remote search rejected the query"
	case KindTransport:
		return "remote search backend unavailable"
	case KindUnsupported:
		return intel.ErrUnsupported.Error()
	case KindTimeout:
		return "request cancelled or timed out"
	default:
		return "internal error"
	}
}
