// Package filter narrows generated collections the way a server-side search
// would: exact type/severity/status matches, a case-insensitive substring
// search over one designated text field, and a positional limit.
package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/dd0wney/threatloom/pkg/intel"
)

// Record is anything the engine can match against criteria. Records report
// "" for attributes they do not carry, which never matches a non-empty
// criterion.
type Record interface {
	FilterType() string
	FilterSeverity() string
	FilterStatus() string
	SearchText() string
}

// matcher holds criteria prepared for repeated matching
type matcher struct {
	typ      string
	severity string
	status   string
	search   string
}

func newMatcher(c intel.Criteria) matcher {
	return matcher{
		typ:      c.Type,
		severity: c.Severity,
		status:   c.EffectiveStatus(),
		search:   strings.ToLower(c.Search),
	}
}

func (m matcher) match(r Record) bool {
	if m.typ != "" && r.FilterType() != m.typ {
		return false
	}
	if m.severity != "" && r.FilterSeverity() != m.severity {
		return false
	}
	if m.status != "" && !strings.EqualFold(r.FilterStatus(), m.status) {
		return false
	}
	if m.search != "" && !strings.Contains(strings.ToLower(r.SearchText()), m.search) {
		return false
	}
	return true
}

// Matches reports whether a single record satisfies every supplied criterion
func Matches(r Record, c intel.Criteria) bool {
	return newMatcher(c).match(r)
}

// Apply filters items by c and truncates the result to c's effective limit.
// The input slice is never modified and input order is preserved.
func Apply[T Record](items []T, c intel.Criteria) intel.Page[T] {
	m := newMatcher(c)
	limit := c.EffectiveLimit()

	page := intel.Page[T]{
		Items: make([]T, 0, min(len(items), limit)),
		Total: len(items),
	}

	for _, item := range items {
		if !m.match(item) {
			continue
		}
		page.Matched++
		if len(page.Items) < limit {
			page.Items = append(page.Items, item)
		}
	}

	return page
}

// SortNewestFirst orders items by the given timestamp, newest first. Equal
// timestamps keep their generation order.
func SortNewestFirst[T any](items []T, ts func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return ts(b).Compare(ts(a))
	})
}

// IsNewestFirst reports whether items are ordered non-increasing by ts
func IsNewestFirst[T any](items []T, ts func(T) time.Time) bool {
	for i := 1; i < len(items); i++ {
		if ts(items[i]).After(ts(items[i-1])) {
			return false
		}
	}
	return true
}
