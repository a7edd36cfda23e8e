package intel

import (
	"math"
	"strings"
)

// DefaultLimit caps a filtered page when the caller does not set a limit
const DefaultLimit = 100

// Unlimited disables truncation when used as Criteria.Limit
const Unlimited = math.MaxInt

// StatusAll is accepted as a status criterion meaning "no constraint"
const StatusAll = "all"

// Criteria narrows a collection. Empty fields impose no constraint and all
// non-empty fields are ANDed.
type Criteria struct {
	Type     string `json:"type,omitempty" validate:"omitempty,max=64"`
	Severity string `json:"severity,omitempty" validate:"omitempty,oneof=Critical High Medium Low"`
	Status   string `json:"status,omitempty" validate:"omitempty,max=64"`
	Search   string `json:"search,omitempty" validate:"omitempty,max=256"`
	Limit    int    `json:"limit,omitempty" validate:"gte=0"`
}

// EffectiveLimit returns the truncation bound applied to filtered results
func (c Criteria) EffectiveLimit() int {
	if c.Limit <= 0 {
		return DefaultLimit
	}
	return c.Limit
}

// EffectiveStatus returns the status constraint with "all" folded to empty
func (c Criteria) EffectiveStatus() string {
	if strings.EqualFold(c.Status, StatusAll) {
		return ""
	}
	return c.Status
}

// IsEmpty reports whether the criteria constrain nothing but the limit
func (c Criteria) IsEmpty() bool {
	return c.Type == "" && c.Severity == "" && c.EffectiveStatus() == "" && c.Search == ""
}

// Page is a filtered, truncated slice of a generated batch. Total is the
// batch size before filtering and Matched the number of matches before
// truncation, so callers never need the truncated slice to count.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Matched int `json:"matched"`
}

// Truncated reports whether the limit dropped matching records
func (p Page[T]) Truncated() bool {
	return p.Matched > len(p.Items)
}
