package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dd0wney/threatloom/pkg/intel"
	"github.com/dd0wney/threatloom/pkg/validation"
)

func TestQueryParser_Criteria(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/alerts?severity=High&status=Open&search=+phish+&limit=25", nil)
	qp := newQueryParser(req)

	c := qp.Criteria("type")
	if err := qp.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := intel.Criteria{Severity: "High", Status: "Open", Search: "phish", Limit: 25}
	if c != want {
		t.Errorf("Criteria = %+v, want %+v", c, want)
	}
}

func TestQueryParser_Int(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		want      int
		expectErr bool
	}{
		{"absent uses default", "", 24, false},
		{"valid", "hours=12", 12, false},
		{"negative", "hours=-3", -3, false},
		{"not a number", "hours=twelve", 24, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qp := newQueryParser(httptest.NewRequest("GET", "/x?"+tt.query, nil))
			got := qp.Int("hours", 24)

			if got != tt.want {
				t.Errorf("Int = %d, want %d", got, tt.want)
			}
			if tt.expectErr != (qp.Err() != nil) {
				t.Errorf("Err = %v, expectErr %v", qp.Err(), tt.expectErr)
			}
		})
	}
}

func TestQueryParser_Duration(t *testing.T) {
	tests := []struct {
		query     string
		want      time.Duration
		expectErr bool
	}{
		{"", intel.DefaultAnomalyWindow, false},
		{"window=90m", 90 * time.Minute, false},
		{"window=48", 48 * time.Hour, false},
		{"window=soon", intel.DefaultAnomalyWindow, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			qp := newQueryParser(httptest.NewRequest("GET", "/x?"+tt.query, nil))
			got := qp.Duration("window", intel.DefaultAnomalyWindow)

			if got != tt.want {
				t.Errorf("Duration = %v, want %v", got, tt.want)
			}
			if tt.expectErr != (qp.Err() != nil) {
				t.Errorf("Err = %v, expectErr %v", qp.Err(), tt.expectErr)
			}
		})
	}
}

func TestQueryParser_FirstErrorWins(t *testing.T) {
	qp := newQueryParser(httptest.NewRequest("GET", "/x?limit=abc&hours=xyz", nil))

	qp.Int("limit", 0)
	qp.Int("hours", 0)

	err := qp.Err()
	if !validation.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := err.Error(); got != "limit: must be an integer" {
		t.Errorf("Err = %q", got)
	}
}
