package scoring

import (
	"testing"
	"time"
)

var now = time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

func TestScoreSourceRanking(t *testing.T) {
	tests := []struct {
		source string
		want   int
	}{
		{"meta_ads", 20},
		{"phone", 18},
		{"website", 15},
		{"email", 12},
		{"manual", 10},
		{"other", 5},
		{"carrier_pigeon", 5},
	}
	for _, tt := range tests {
		if got := scoreSource(tt.source); got != tt.want {
			t.Fatalf("scoreSource(%q) = %d, want %d", tt.source, got, tt.want)
		}
	}
}

func TestScoreCompleteness(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		want  int
	}{
		{"email and phone", Input{HasEmail: true, HasPhone: true}, 15},
		{"email only", Input{HasEmail: true}, 10},
		{"phone only", Input{HasPhone: true}, 8},
		{"no contact details", Input{}, 0},
		{"message adds five", Input{HasEmail: true, HasMessage: true}, 15},
		{"notes add five", Input{HasPhone: true, HasNotes: true}, 13},
		{"message and notes add five once", Input{HasEmail: true, HasPhone: true, HasMessage: true, HasNotes: true}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreCompleteness(tt.input); got != tt.want {
				t.Fatalf("scoreCompleteness = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreEngagementCapped(t *testing.T) {
	contacted := now.Add(-time.Hour)
	input := Input{
		InboundMessages: 4, // 20
		ReadMessages:    3, // 9
		ContactedAt:     &contacted,
		Status:          "qualified",
	}
	if got := scoreEngagement(input); got != engagementCap {
		t.Fatalf("expected engagement capped at %d, got %d", engagementCap, got)
	}

	light := Input{InboundMessages: 1, ReadMessages: 1}
	if got := scoreEngagement(light); got != 8 {
		t.Fatalf("expected engagement 8, got %d", got)
	}
}

func TestScoreRecency(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		want      int
	}{
		{"fresh lead", now.Add(-2 * time.Hour), 10},
		{"just under a day", now.Add(-23 * time.Hour), 10},
		{"three days old", now.Add(-72 * time.Hour), 5},
		{"just under a week", now.Add(-6 * 24 * time.Hour), 5},
		{"stale", now.Add(-30 * 24 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreRecency(tt.createdAt, now); got != tt.want {
				t.Fatalf("scoreRecency = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreHistorical(t *testing.T) {
	if got := scoreHistorical(Input{ConvertedBefore: true}); got != 15 {
		t.Fatalf("expected 15 for a returning converter, got %d", got)
	}
	if got := scoreHistorical(Input{SourceLeadTotal: 12, SourceLeadConversion: 0.25}); got != 5 {
		t.Fatalf("expected 5 for a converting source, got %d", got)
	}
	// Below the sample size threshold the source bonus does not apply.
	if got := scoreHistorical(Input{SourceLeadTotal: 5, SourceLeadConversion: 0.8}); got != 0 {
		t.Fatalf("expected 0 for a small-sample source, got %d", got)
	}
	if got := scoreHistorical(Input{ConvertedBefore: true, SourceLeadTotal: 50, SourceLeadConversion: 0.5}); got != historicalCap {
		t.Fatalf("expected historical capped at %d, got %d", historicalCap, got)
	}
}

func TestPriorityBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, PriorityHigh},
		{70, PriorityHigh},
		{69, PriorityMedium},
		{40, PriorityMedium},
		{39, PriorityLow},
		{0, PriorityLow},
	}
	for _, tt := range tests {
		if got := priorityFor(tt.score); got != tt.want {
			t.Fatalf("priorityFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScoreClampsToHundred(t *testing.T) {
	contacted := now.Add(-time.Hour)
	input := Input{
		Source:               "meta_ads",
		HasEmail:             true,
		HasPhone:             true,
		HasMessage:           true,
		Status:               "qualified",
		ContactedAt:          &contacted,
		CreatedAt:            now.Add(-time.Hour),
		InboundMessages:      10,
		ReadMessages:         10,
		ConvertedBefore:      true,
		SourceLeadTotal:      100,
		SourceLeadConversion: 0.9,
	}
	b, priority := Score(input, now)
	if b.Total > 100 {
		t.Fatalf("score exceeded 100: %d", b.Total)
	}
	if b.Total != 95 {
		// 20 + 20 + 25 + 10 + 20
		t.Fatalf("expected 95, got %d", b.Total)
	}
	if priority != PriorityHigh {
		t.Fatalf("expected high priority, got %s", priority)
	}
}

func TestScoreMinimalLead(t *testing.T) {
	input := Input{Source: "other", CreatedAt: now.Add(-60 * 24 * time.Hour)}
	b, priority := Score(input, now)
	if b.Total != 5 {
		t.Fatalf("expected bare minimum score 5, got %d", b.Total)
	}
	if priority != PriorityLow {
		t.Fatalf("expected low priority, got %s", priority)
	}
}
