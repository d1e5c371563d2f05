package timeline

import (
	"strings"
	"time"

	"github.com/sells-group/deal-forensics/internal/model"
)

const (
	baseScore = 10.0
	minScore  = 1.0
	maxScore  = 10.0

	// fallbackScore is assigned to the synthetic start/end timeline.
	fallbackScore = 4.0
	// noEventsScore is assigned to the minimal five-event default.
	noEventsScore = 3.0

	missingPhasePenalty = 1.5

	vagueDatePenalty    = 0.3
	vagueDatePenaltyMax = 2.0

	orderingPenalty = 1.5

	escalationPenalty    = 2.0
	escalationRatioLimit = 0.3

	ambiguityPenalty    = 0.2
	ambiguityPenaltyMax = 1.5

	richTimelineBonus  = 1.0
	richTimelineEvents = 10
)

// vagueDateMarkers flag timestamps that never resolved to a concrete day.
var vagueDateMarkers = []string{"week", "month", "day", "unknown", "tbd"}

// ambiguityKeywords flag hedged or unresolved language in the source text.
var ambiguityKeywords = []string{"unclear", "tbd", "to be determined", "unknown", "maybe", "possibly"}

// Score grades timeline quality on a 1-10 scale. It starts from a perfect
// 10 and applies fixed penalties for missing phases, vague dates, ordering
// violations, escalation dominance, and ambiguous source language, with a
// single bonus for rich timelines.
func Score(events []model.TimelineEvent, context string) float64 {
	if len(events) == 0 {
		return noEventsScore
	}

	score := baseScore

	covered := make(map[model.Phase]bool, 5)
	for _, e := range events {
		covered[e.Phase] = true
	}
	for _, phase := range model.RequiredPhases() {
		if !covered[phase] {
			score -= missingPhasePenalty
		}
	}

	var vague float64
	for _, e := range events {
		ts := strings.ToLower(e.Timestamp)
		for _, marker := range vagueDateMarkers {
			if strings.Contains(ts, marker) {
				vague += vagueDatePenalty
				break
			}
		}
	}
	if vague > vagueDatePenaltyMax {
		vague = vagueDatePenaltyMax
	}
	score -= vague

	if !inChronologicalOrder(events) {
		score -= orderingPenalty
	}

	if escalationRatio(events) > escalationRatioLimit {
		score -= escalationPenalty
	}

	var ambiguity float64
	lower := strings.ToLower(context)
	for _, kw := range ambiguityKeywords {
		if strings.Contains(lower, kw) {
			ambiguity += ambiguityPenalty
		}
	}
	if ambiguity > ambiguityPenaltyMax {
		ambiguity = ambiguityPenaltyMax
	}
	score -= ambiguity

	if len(events) >= richTimelineEvents {
		score += richTimelineBonus
	}

	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// inChronologicalOrder reports whether resolved dates never regress.
// Unparseable timestamps are skipped rather than treated as violations.
func inChronologicalOrder(events []model.TimelineEvent) bool {
	var last time.Time
	for _, e := range events {
		t, err := time.Parse(model.ISODate, e.Timestamp)
		if err != nil {
			continue
		}
		if !last.IsZero() && t.Before(last) {
			return false
		}
		last = t
	}
	return true
}

// escalationRatio is the fraction of events that are escalation-phase or
// negative-sentiment.
func escalationRatio(events []model.TimelineEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	var n int
	for _, e := range events {
		if e.Phase == model.PhaseEscalation || e.Sentiment == model.SentimentNegative {
			n++
		}
	}
	return float64(n) / float64(len(events))
}
