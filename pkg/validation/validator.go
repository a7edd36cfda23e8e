package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/threatloom/pkg/intel"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Anomaly window bounds
	MinWindow = time.Minute
	MaxWindow = 7 * 24 * time.Hour
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire name so messages match query parameters
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Error is a rejected request parameter
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is or wraps an *Error
func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

func invalid(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CriteriaRequest bounds the user-facing filter parameters
type CriteriaRequest struct {
	Type     string `json:"type" validate:"omitempty,max=64"`
	Severity string `json:"severity" validate:"omitempty,oneof=Critical High Medium Low"`
	Status   string `json:"status" validate:"omitempty,max=64"`
	Search   string `json:"search" validate:"omitempty,max=256"`
	Limit    int    `json:"limit" validate:"gte=0,lte=1000"`
}

// TimeSeriesRequest bounds chart generation
type TimeSeriesRequest struct {
	Hours int `json:"hours" validate:"gte=1,lte=168"`
	Min   int `json:"min" validate:"gte=0"`
	Max   int `json:"max" validate:"gtfield=Min"`
}

// ValidateCriteria checks c against the bounds and the enumerations known
// for domain. Unknown free-text types are accepted for domains whose type
// vocabulary is open (feeds, playbooks, anomalies). intel.Unlimited is
// allowed for internal callers even though it exceeds the request bound.
func ValidateCriteria(domain intel.Domain, c intel.Criteria) error {
	req := CriteriaRequest{
		Type:     c.Type,
		Severity: c.Severity,
		Status:   c.Status,
		Search:   c.Search,
		Limit:    c.Limit,
	}
	if req.Limit == intel.Unlimited {
		req.Limit = 0
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	switch domain {
	case intel.DomainIndicators:
		if c.Type != "" && !slices.Contains(intel.IndicatorTypes, intel.IndicatorType(c.Type)) {
			return invalid("type", "must be one of %v", intel.IndicatorTypes)
		}
	case intel.DomainAlerts:
		if status := c.EffectiveStatus(); status != "" && !knownAlertStatus(status) {
			return invalid("status", "must be %q or one of %v", intel.StatusAll, intel.AlertStatuses)
		}
	}
	return nil
}

func knownAlertStatus(s string) bool {
	for _, known := range intel.AlertStatuses {
		if strings.EqualFold(s, string(known)) {
			return true
		}
	}
	return false
}

// ValidateStruct checks v's validate tags with the shared validator
func ValidateStruct(v any) error {
	return formatValidationError(validate.Struct(v))
}

// ValidateTimeSeries checks hours is within a week and min < max
func ValidateTimeSeries(hours, min, max int) error {
	return formatValidationError(validate.Struct(TimeSeriesRequest{Hours: hours, Min: min, Max: max}))
}

// ValidateWindow checks an anomaly look-back window; zero selects the default
func ValidateWindow(window time.Duration) error {
	if window == 0 {
		return nil
	}
	if window < MinWindow || window > MaxWindow {
		return invalid("window", "must be between %v and %v", MinWindow, MaxWindow)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return invalid(field, "field is required")
		case "min", "gte":
			return invalid(field, "must be at least %s", param)
		case "max", "lte":
			if e.Kind() == reflect.String {
				return invalid(field, "must not exceed %s characters", param)
			}
			return invalid(field, "must not exceed %s", param)
		case "oneof":
			return invalid(field, "must be one of [%s]", param)
		case "gtfield":
			return invalid(field, "must be greater than %s", strings.ToLower(param))
		case "url":
			return invalid(field, "must be a valid URL")
		default:
			return invalid(field, "validation failed (%s)", e.Tag())
		}
	}

	return err
}
