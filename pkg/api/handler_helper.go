package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/validation"
)

// queryParser reads typed query parameters. It provides a fluent interface:
// the first parse failure is kept and later calls become no-ops.
type queryParser struct {
	values url.Values
	err    error
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{values: r.URL.Query()}
}

func (qp *queryParser) fail(field, message string) {
	if qp.err == nil {
		qp.err = &validation.Error{Field: field, Message: message}
	}
}

// String returns the trimmed parameter or "" when absent
func (qp *queryParser) String(name string) string {
	return strings.TrimSpace(qp.values.Get(name))
}

// Int returns the parameter as an int, or def when absent
func (qp *queryParser) Int(name string, def int) int {
	raw := qp.String(name)
	if raw == "" || qp.err != nil {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		qp.fail(name, "must be an integer")
		return def
	}
	return n
}

// Duration returns the parameter as a duration, or def when absent.
// Bare integers are read as hours.
func (qp *queryParser) Duration(name string, def time.Duration) time.Duration {
	raw := qp.String(name)
	if raw == "" || qp.err != nil {
		return def
	}
	if hours, err := strconv.Atoi(raw); err == nil {
		return time.Duration(hours) * time.Hour
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		qp.fail(name, "must be a duration such as 24h")
		return def
	}
	return d
}

// Criteria reads the shared filter parameters. typeParam names the
// parameter carrying the type criterion ("type" or "category").
func (qp *queryParser) Criteria(typeParam string) intel.Criteria {
	c := intel.Criteria{
		Type:     qp.String(typeParam),
		Severity: qp.String("severity"),
		Status:   qp.String("status"),
		Search:   qp.String("search"),
	}
	c.Limit = qp.Int("limit", 0)
	return c
}

// Err returns the first parse failure
func (qp *queryParser) Err() error {
	return qp.err
}
