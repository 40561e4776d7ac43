package dashboard

import (
	"testing"
	"time"
)

func TestReportingWindowPeriods(t *testing.T) {
	// A Tuesday mid-afternoon.
	now := time.Date(2026, 9, 1, 15, 45, 0, 0, time.UTC)

	tests := []struct {
		period   string
		wantFrom string
		wantTo   string
	}{
		{"day", "2026-09-01", "2026-09-02"},
		{"week", "2026-08-31", "2026-09-02"},
		{"month", "2026-09-01", "2026-09-02"},
		{"year", "2026-01-01", "2026-09-02"},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			from, to, err := reportingWindow(now, tt.period, "", "")
			if err != nil {
				t.Fatalf("reportingWindow returned error: %v", err)
			}
			if got := from.Format(time.DateOnly); got != tt.wantFrom {
				t.Errorf("from = %s, want %s", got, tt.wantFrom)
			}
			if got := to.Format(time.DateOnly); got != tt.wantTo {
				t.Errorf("to = %s, want %s", got, tt.wantTo)
			}
		})
	}
}

func TestReportingWindowExplicitDatesAreInclusive(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	from, to, err := reportingWindow(now, "month", "2026-07-01", "2026-07-31")
	if err != nil {
		t.Fatalf("reportingWindow returned error: %v", err)
	}
	if got := from.Format(time.DateOnly); got != "2026-07-01" {
		t.Errorf("from = %s, want 2026-07-01", got)
	}
	// date_to is inclusive, so the open end is the next day.
	if got := to.Format(time.DateOnly); got != "2026-08-01" {
		t.Errorf("to = %s, want 2026-08-01", got)
	}
}

func TestReportingWindowRejectsBadInput(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	if _, _, err := reportingWindow(now, "quarter", "", ""); err == nil {
		t.Error("expected unknown period to be rejected")
	}
	if _, _, err := reportingWindow(now, "month", "2026-07-31", "2026-07-01"); err == nil {
		t.Error("expected reversed date range to be rejected")
	}
	if _, _, err := reportingWindow(now, "month", "07/01/2026", "2026-07-31"); err == nil {
		t.Error("expected malformed date_from to be rejected")
	}
}
