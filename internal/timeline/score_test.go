package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/deal-forensics/internal/model"
)

func fullCoverageEvents(start time.Time, gap int) []model.TimelineEvent {
	var events []model.TimelineEvent
	d := start
	for _, phase := range model.RequiredPhases() {
		sentiment := model.SentimentNeutral
		if phase == model.PhaseEscalation {
			sentiment = model.SentimentNegative
		}
		events = append(events, model.TimelineEvent{
			Name: string(phase), Phase: phase,
			Timestamp: d.Format(model.ISODate),
			Sentiment: sentiment, Confidence: 0.8,
		})
		d = d.AddDate(0, 0, gap)
	}
	return events
}

func TestScore_NoEvents(t *testing.T) {
	assert.Equal(t, noEventsScore, Score(nil, "whatever"))
}

func TestScore_CleanFiveEventTimeline(t *testing.T) {
	events := fullCoverageEvents(day(2024, time.May, 1), 10)
	// All phases covered, ordered, concrete dates, 1/5 negative: no
	// penalties and no bonus.
	assert.InDelta(t, 10.0, Score(events, "clean narrative"), 0.001)
}

func TestScore_MissingPhases(t *testing.T) {
	events := []model.TimelineEvent{
		{Phase: model.PhaseDiscovery, Timestamp: "2024-05-01", Sentiment: model.SentimentNeutral},
		{Phase: model.PhasePricing, Timestamp: "2024-05-10", Sentiment: model.SentimentNeutral},
		{Phase: model.PhaseDelivery, Timestamp: "2024-05-20", Sentiment: model.SentimentNeutral},
	}
	// 10 - 2*1.5 for the two missing phases.
	assert.InDelta(t, 7.0, Score(events, ""), 0.001)
}

func TestScore_VagueDatesCapped(t *testing.T) {
	events := fullCoverageEvents(day(2024, time.May, 1), 10)
	for i := range events {
		events[i].Timestamp = "next week"
	}
	more := fullCoverageEvents(day(2024, time.July, 1), 10)
	for i := range more {
		more[i].Timestamp = "unknown"
	}
	events = append(events, more...)
	// 10 vague dates would cost 3.0 uncapped; the cap holds it at 2.0.
	// Ten events also earn the rich-timeline bonus: 10 - 2 + 1 = 9.
	assert.InDelta(t, 9.0, Score(events, ""), 0.001)
}

func TestScore_OutOfOrder(t *testing.T) {
	events := fullCoverageEvents(day(2024, time.May, 1), 10)
	events[1].Timestamp = "2024-04-01"
	assert.InDelta(t, 8.5, Score(events, ""), 0.001)
}

func TestScore_EscalationHeavy(t *testing.T) {
	events := fullCoverageEvents(day(2024, time.May, 1), 10)
	events[0].Sentiment = model.SentimentNegative
	// 2/5 negative or escalation exceeds the 30% threshold.
	assert.InDelta(t, 8.0, Score(events, ""), 0.001)
}

func TestScore_AmbiguousLanguage(t *testing.T) {
	events := fullCoverageEvents(day(2024, time.May, 1), 10)
	context := "The budget is unclear and the timeline is TBD, maybe Q3."
	// unclear + tbd + maybe: 3 * 0.2.
	assert.InDelta(t, 9.4, Score(events, context), 0.001)
}

func TestScore_RichTimelineBonusClamped(t *testing.T) {
	events := append(
		fullCoverageEvents(day(2024, time.March, 1), 5),
		fullCoverageEvents(day(2024, time.May, 1), 5)...,
	)
	// A perfect 10 plus the bonus clamps back to 10.
	assert.InDelta(t, 10.0, Score(events, ""), 0.001)
}

func TestScore_FloorAtOne(t *testing.T) {
	var events []model.TimelineEvent
	for i := 0; i < 7; i++ {
		events = append(events, model.TimelineEvent{
			Phase:     model.PhaseDiscovery,
			Timestamp: "unknown",
			Sentiment: model.SentimentNegative,
		})
	}
	context := "unclear tbd unknown maybe possibly to be determined"
	got := Score(events, context)
	assert.Equal(t, minScore, got)
}

func TestScore_AlwaysInBounds(t *testing.T) {
	inputs := [][]model.TimelineEvent{
		nil,
		fullCoverageEvents(day(2024, time.May, 1), 10),
		{{Phase: model.PhaseEscalation, Timestamp: "tbd", Sentiment: model.SentimentNegative}},
	}
	for _, events := range inputs {
		got := Score(events, "unclear maybe possibly unknown tbd")
		assert.GreaterOrEqual(t, got, minScore)
		assert.LessOrEqual(t, got, maxScore)
	}
}
