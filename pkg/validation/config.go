package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// ConfigValidator checks configuration values fluently and keeps every
// failure, so one bad file reports all of its offending keys together.
// Failures are *Error values whose Field is the dotted config key.
type ConfigValidator struct {
	section string
	errs    []error
}

// NewConfigValidator starts a validator. A non-empty section prefixes
// every reported key.
func NewConfigValidator(section string) *ConfigValidator {
	return &ConfigValidator{section: section}
}

func (cv *ConfigValidator) fail(field, format string, args ...any) *ConfigValidator {
	if cv.section != "" {
		field = cv.section + "." + field
	}
	cv.errs = append(cv.errs, invalid(field, format, args...))
	return cv
}

// Required rejects an empty string
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if strings.TrimSpace(value) == "" {
		return cv.fail(field, "is required")
	}
	return cv
}

// OneOfFold rejects values outside allowed, ignoring case
func (cv *ConfigValidator) OneOfFold(field, value string, allowed []string) *ConfigValidator {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return cv
		}
	}
	return cv.fail(field, "%q must be one of %v", value, allowed)
}

// RangeInt rejects values outside [lo, hi]
func (cv *ConfigValidator) RangeInt(field string, value, lo, hi int) *ConfigValidator {
	if value < lo || value > hi {
		return cv.fail(field, "%d is outside [%d, %d]", value, lo, hi)
	}
	return cv
}

func (cv *ConfigValidator) MinDuration(field string, value, lo time.Duration) *ConfigValidator {
	if value < lo {
		return cv.fail(field, "%v is below the minimum %v", value, lo)
	}
	return cv
}

func (cv *ConfigValidator) RangeDuration(field string, value, lo, hi time.Duration) *ConfigValidator {
	if value < lo || value > hi {
		return cv.fail(field, "%v is outside [%v, %v]", value, lo, hi)
	}
	return cv
}

// URL requires an absolute http or https URL
func (cv *ConfigValidator) URL(field, value string) *ConfigValidator {
	if !httpURL(value) {
		return cv.fail(field, "%q is not an absolute http(s) URL", value)
	}
	return cv
}

// Origins checks a CORS allow list. Each entry is "*" or a scheme and host
// with no path.
func (cv *ConfigValidator) Origins(field string, values []string) *ConfigValidator {
	for i, v := range values {
		if v == "*" {
			continue
		}
		u, err := url.Parse(v)
		if err != nil || !httpURL(v) || strings.TrimSuffix(u.Path, "/") != "" {
			cv.fail(fmt.Sprintf("%s[%d]", field, i), "%q is not an origin", v)
		}
	}
	return cv
}

// Networks checks that every entry is an IP address or a CIDR range
func (cv *ConfigValidator) Networks(field string, values []string) *ConfigValidator {
	for i, v := range values {
		v = strings.TrimSpace(v)
		if net.ParseIP(v) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(v); err != nil {
			cv.fail(fmt.Sprintf("%s[%d]", field, i), "%q is neither an IP nor a CIDR range", v)
		}
	}
	return cv
}

// When runs checks only if cond holds, e.g. keys used by one mode
func (cv *ConfigValidator) When(cond bool, checks func(*ConfigValidator)) *ConfigValidator {
	if cond {
		checks(cv)
	}
	return cv
}

// Errors returns the failures in the order the checks ran
func (cv *ConfigValidator) Errors() []error {
	return cv.errs
}

// Validate returns nil, the single failure, or all failures joined
func (cv *ConfigValidator) Validate() error {
	switch len(cv.errs) {
	case 0:
		return nil
	case 1:
		return cv.errs[0]
	}
	return fmt.Errorf("%d problems: %w", len(cv.errs), errors.Join(cv.errs...))
}

func httpURL(v string) bool {
	u, err := url.Parse(v)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
