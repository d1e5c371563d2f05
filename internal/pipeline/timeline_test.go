package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-forensics/internal/model"
)

const timelineJSON = `{
  "events": [
    {"event_name": "Discovery Call", "description": "Initial discovery call and requirements gathering", "phase": "Discovery Phase", "timestamp": "2024-06-03", "confidence": 0.9, "sentiment": "positive"},
    {"event_name": "Pricing Discussion", "description": "First pricing discussion surfaced a budget gap", "phase": "Pricing Negotiation Phase", "timestamp": "2024-06-24", "confidence": 0.85, "sentiment": "neutral"},
    {"event_name": "Verbal Discount", "description": "Discount offered verbally without written follow-up", "phase": "Pricing Negotiation Phase", "timestamp": "2024-06-24", "confidence": 0.8, "sentiment": "negative"},
    {"event_name": "Delivery Planning", "description": "Rollout planning with vague timeline", "phase": "Delivery Planning Phase", "timestamp": "2024-07-29", "confidence": 0.7, "sentiment": "neutral"},
    {"event_name": "Escalation", "description": "Escalation over delayed responses", "phase": "Issue/Escalation Phase", "timestamp": "2024-09-10", "confidence": 0.9, "sentiment": "negative"},
    {"event_name": "Deal Lost", "description": "Customer chose the alternative vendor", "phase": "Final Decision Phase", "timestamp": "2024-10-18", "confidence": 0.95, "sentiment": "negative"}
  ],
  "phase_summary": {"Discovery Phase": "Smooth discovery and requirements gathering"},
  "major_blockers": ["Budget gap of 15%", "Unresolved escalation"],
  "communication_events": [
    {"event": "Delayed response to pricing questions", "sentiment": "negative"},
    {"event": "Status update call", "sentiment": "NEUTRAL"}
  ]
}`

func TestTimelineStage_MergesExtractionPayload(t *testing.T) {
	ai := &mockAnthropicClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(timelineJSON), nil)

	p := newTestPipeline(t, ai)
	tl, usage := p.timelineStage(context.Background(), sampleDocument)

	assert.GreaterOrEqual(t, len(tl.Events), 6)
	for _, phase := range model.RequiredPhases() {
		assert.NotEmpty(t, tl.EventsInPhase(phase), "phase %s should have events", phase)
	}

	// Strictly increasing ISO timestamps.
	var last time.Time
	for _, e := range tl.Events {
		ts, err := time.Parse(model.ISODate, e.Timestamp)
		require.NoError(t, err)
		assert.True(t, ts.After(last), "timestamps must strictly increase, got %s after %s", e.Timestamp, last.Format(model.ISODate))
		last = ts
	}

	assert.Equal(t, []string{"Budget gap of 15%", "Unresolved escalation"}, tl.MajorBlockers)
	require.Len(t, tl.CommunicationEvents, 2)
	assert.Equal(t, model.SentimentNegative, tl.CommunicationEvents[0].Sentiment)
	assert.Equal(t, model.SentimentNeutral, tl.CommunicationEvents[1].Sentiment)

	// Model-provided phase summary wins over the synthesized one.
	assert.Equal(t, "Smooth discovery and requirements gathering", tl.PhaseSummary[model.PhaseDiscovery])
	assert.NotEmpty(t, tl.PhaseSummary[model.PhasePricing])

	assert.GreaterOrEqual(t, tl.TimelineScore, 1.0)
	assert.LessOrEqual(t, tl.TimelineScore, 10.0)

	assert.Equal(t, int64(1200), usage.InputTokens)
	assert.Equal(t, int64(400), usage.OutputTokens)
	ai.AssertExpectations(t)
}

func TestTimelineStage_CallFailureUsesFallback(t *testing.T) {
	ai := &mockAnthropicClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("invalid request"))

	p := newTestPipeline(t, ai)
	tl, usage := p.timelineStage(context.Background(), sampleDocument)

	// Synthetic start/end pair per phase.
	assert.Len(t, tl.Events, 10)
	assert.InDelta(t, 4.0, tl.TimelineScore, 0.001)
	assert.Zero(t, usage.InputTokens)
}

func TestTimelineStage_MalformedPayloadUsesFallback(t *testing.T) {
	ai := &mockAnthropicClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("the deal went poorly, no structure here"), nil)

	p := newTestPipeline(t, ai)
	tl, usage := p.timelineStage(context.Background(), sampleDocument)

	assert.Len(t, tl.Events, 10)
	assert.InDelta(t, 4.0, tl.TimelineScore, 0.001)
	// Usage is still accounted even when the payload is unusable.
	assert.Equal(t, int64(1200), usage.InputTokens)
}

func TestNormalizeCommEvents(t *testing.T) {
	out := normalizeCommEvents([]rawCommEvent{
		{Event: "Kickoff call", Sentiment: "positive"},
		{Event: "", Sentiment: "negative"},
		{Event: "Pricing pushback", Sentiment: "angry"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, model.SentimentPositive, out[0].Sentiment)
	// Unknown sentiment strings coerce to neutral.
	assert.Equal(t, model.SentimentNeutral, out[1].Sentiment)
}
