package certcheck

import (
	"context"
	"testing"
	"time"
)

// TestGradeForDays covers the grading thresholds.
func TestGradeForDays(t *testing.T) {
	tests := []struct {
		days     int
		expected string
	}{
		{-10, "F"},
		{0, "F"},
		{6, "F"},
		{7, "C"},
		{29, "C"},
		{30, "B"},
		{59, "B"},
		{60, "A"},
		{365, "A"},
	}

	for _, tt := range tests {
		if got := GradeForDays(tt.days); got != tt.expected {
			t.Errorf("GradeForDays(%d) = %s; expected %s", tt.days, got, tt.expected)
		}
	}
}

// TestCheck_EmptyDomain verifies the fail-safe result shape.
func TestCheck_EmptyDomain(t *testing.T) {
	res, err := Check(context.Background(), "", CheckConfig{})
	if err == nil {
		t.Error("expected an error for empty domain")
	}
	if res.Valid || res.Grade != "F" || res.DaysRemaining != 0 {
		t.Errorf("result = %+v; expected {false 0 F}", res)
	}
}

// TestCheck_Unreachable verifies a connection failure degrades to grade F
// instead of propagating only an error.
func TestCheck_Unreachable(t *testing.T) {
	// Reserved TEST-NET address: connection will fail fast with the short
	// timeout.
	res, err := Check(context.Background(), "192.0.2.1", CheckConfig{Timeout: 500 * time.Millisecond})
	if err == nil {
		t.Error("expected an error for unreachable host")
	}
	if res.Valid || res.Grade != "F" {
		t.Errorf("result = %+v; expected failing grade for unreachable host", res)
	}
}
