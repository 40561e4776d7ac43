// Package scoring computes lead quality scores. The score is the clamped sum
// of five capped sub-scores: source quality, profile completeness, engagement,
// recency and historical conversion behaviour.
package scoring

import "time"

// Priority bands derived from the score.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	highThreshold   = 70
	mediumThreshold = 40

	engagementCap = 25
	historicalCap = 20
)

// sourceScores ranks acquisition channels by observed intent. Unknown sources
// score the same as "other".
var sourceScores = map[string]int{
	"meta_ads": 20,
	"phone":    18,
	"website":  15,
	"email":    12,
	"manual":   10,
	"other":    5,
}

// Input holds everything the scorer needs about one lead. Historical fields
// are resolved by the caller so the scorer stays pure.
type Input struct {
	Source      string
	HasEmail    bool
	HasPhone    bool
	HasMessage  bool
	HasNotes    bool
	Status      string
	ContactedAt *time.Time
	CreatedAt   time.Time

	InboundMessages int
	ReadMessages    int

	// Historical context.
	ConvertedBefore      bool
	SourceLeadTotal      int
	SourceLeadConversion float64
}

// Breakdown itemizes the sub-scores for inspection and the UI.
type Breakdown struct {
	Source       int `json:"source"`
	Completeness int `json:"completeness"`
	Engagement   int `json:"engagement"`
	Recency      int `json:"recency"`
	Historical   int `json:"historical"`
	Total        int `json:"total"`
}

// Score computes the quality score and priority band for a lead as of now.
func Score(input Input, now time.Time) (Breakdown, string) {
	b := Breakdown{
		Source:       scoreSource(input.Source),
		Completeness: scoreCompleteness(input),
		Engagement:   scoreEngagement(input),
		Recency:      scoreRecency(input.CreatedAt, now),
		Historical:   scoreHistorical(input),
	}
	b.Total = clamp(b.Source+b.Completeness+b.Engagement+b.Recency+b.Historical, 0, 100)
	return b, priorityFor(b.Total)
}

func scoreSource(source string) int {
	if score, ok := sourceScores[source]; ok {
		return score
	}
	return sourceScores["other"]
}

func scoreCompleteness(input Input) int {
	score := 0
	switch {
	case input.HasEmail && input.HasPhone:
		score = 15
	case input.HasEmail:
		score = 10
	case input.HasPhone:
		score = 8
	}
	if input.HasMessage || input.HasNotes {
		score += 5
	}
	return score
}

func scoreEngagement(input Input) int {
	score := input.InboundMessages*5 + input.ReadMessages*3
	if input.ContactedAt != nil {
		score += 10
	}
	if input.Status == "qualified" {
		score += 7
	}
	return clamp(score, 0, engagementCap)
}

func scoreRecency(createdAt, now time.Time) int {
	age := now.Sub(createdAt)
	switch {
	case age < 24*time.Hour:
		return 10
	case age < 7*24*time.Hour:
		return 5
	default:
		return 0
	}
}

func scoreHistorical(input Input) int {
	score := 0
	if input.ConvertedBefore {
		score += 15
	}
	if input.SourceLeadTotal >= 10 && input.SourceLeadConversion > 0.20 {
		score += 5
	}
	return clamp(score, 0, historicalCap)
}

func priorityFor(score int) string {
	switch {
	case score >= highThreshold:
		return PriorityHigh
	case score >= mediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
