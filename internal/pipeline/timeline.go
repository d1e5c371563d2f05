package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/deal-forensics/internal/model"
	"github.com/sells-group/deal-forensics/internal/resilience"
	"github.com/sells-group/deal-forensics/internal/timeline"
	"github.com/sells-group/deal-forensics/pkg/anthropic"
)

// maxTimelineContext caps the document excerpt sent to the model.
const maxTimelineContext = 12000

const timelinePrompt = `You are an expert sales deal forensics analyst specializing in timeline extraction.

CRITICAL REQUIREMENTS:

1. Extract REAL timeline events from the deal narrative:
   - Initial outreach / first contact
   - First negotiation / opening discussion
   - Pricing discussion / quote / budget talks
   - Discount requests / price reductions
   - Delivery discussions / implementation planning
   - Escalation moments / issues / problems
   - Final decision / outcome

2. Extract ALL 5 required phases with events:
   - Discovery Phase: Initial contact, requirements gathering, discovery calls
   - Pricing Negotiation Phase: Pricing discussions, quotes, negotiations, discount requests
   - Delivery Planning Phase: Implementation planning, timeline discussions, resource planning
   - Issue/Escalation Phase: Problems, delays, escalations, concerns, blockers
   - Final Decision Phase: Final communication, decision, outcome

3. DATE EXTRACTION - Extract dates from natural language:
   - "on January 5th", "two days later", "during negotiation"
   - If no date found, use relative position with 1-7 day gaps

4. SENTIMENT per event: positive, neutral, or negative.

5. Return JSON:
{
  "events": [
    {
      "event_name": "Short descriptive title",
      "description": "Detailed description of what happened",
      "phase": "Discovery Phase" | "Pricing Negotiation Phase" | "Delivery Planning Phase" | "Issue/Escalation Phase" | "Final Decision Phase",
      "timestamp": "YYYY-MM-DD" or natural language date,
      "confidence": 0.0-1.0,
      "sentiment": "positive" | "neutral" | "negative"
    }
  ],
  "phase_summary": {"Discovery Phase": "...", ...},
  "major_blockers": ["blocker 1", ...],
  "communication_events": [{"event": "...", "sentiment": "..."}, ...]
}

Extract at least 10-15 events covering ALL phases. Focus on REAL events mentioned in the document.`

// timelinePayload is the loose shape returned by the extraction model.
type timelinePayload struct {
	Events              []model.RawEvent  `json:"events"`
	PhaseSummary        map[string]string `json:"phase_summary"`
	MajorBlockers       []string          `json:"major_blockers"`
	CommunicationEvents []rawCommEvent    `json:"communication_events"`
}

type rawCommEvent struct {
	Event     string `json:"event"`
	Sentiment string `json:"sentiment"`
}

// timelineStage extracts and normalizes the deal timeline. The LLM supplies
// candidate events; every date, phase, and score decision is deterministic.
// Never fails: LLM errors degrade to the synthetic fallback timeline.
func (p *Pipeline) timelineStage(ctx context.Context, document string) (model.Timeline, model.TokenUsage) {
	now := p.now()

	excerpt := document
	if len(excerpt) > maxTimelineContext {
		excerpt = excerpt[:maxTimelineContext]
	}

	req := anthropic.MessageRequest{
		Model:     p.cfg.Anthropic.SonnetModel,
		MaxTokens: int64(p.cfg.Anthropic.MaxTokens),
		System:    anthropic.BuildCachedSystemBlocks(timelinePrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: "Deal Context:\n" + excerpt},
		},
	}

	resp, err := resilience.DoVal(ctx, p.retry.ForCall("anthropic", "timeline"), func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return p.ai.CreateMessage(ctx, req)
	})
	if err != nil {
		zap.L().Warn("timeline: extraction call failed, using fallback", zap.Error(err))
		base := timeline.ExtractBaseDate(document, now)
		return timeline.FallbackTimeline(base), model.TokenUsage{}
	}

	usage := model.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Cost:         resp.Usage.EstimateCost(p.cfg.Anthropic.SonnetModel),
	}
	resp.Usage.LogCost(p.cfg.Anthropic.SonnetModel, "timeline")

	var payload timelinePayload
	if decodeErr := anthropic.DecodeJSON(resp, &payload); decodeErr != nil {
		zap.L().Warn("timeline: malformed extraction payload, using fallback", zap.Error(decodeErr))
		base := timeline.ExtractBaseDate(document, now)
		return timeline.FallbackTimeline(base), usage
	}

	tl := timeline.Analyze(payload.Events, document, now)
	tl.MajorBlockers = payload.MajorBlockers
	tl.CommunicationEvents = normalizeCommEvents(payload.CommunicationEvents)

	// Model-provided summaries take precedence over the synthesized ones.
	for raw, summary := range payload.PhaseSummary {
		if summary == "" {
			continue
		}
		tl.PhaseSummary[timeline.NormalizePhase(raw)] = summary
	}
	return tl, usage
}

// normalizeCommEvents coerces loose sentiment strings to the canonical set.
func normalizeCommEvents(raws []rawCommEvent) []model.CommunicationEvent {
	var out []model.CommunicationEvent
	for _, r := range raws {
		if r.Event == "" {
			continue
		}
		sentiment := model.SentimentNeutral
		switch strings.ToLower(strings.TrimSpace(r.Sentiment)) {
		case "positive":
			sentiment = model.SentimentPositive
		case "negative":
			sentiment = model.SentimentNegative
		}
		out = append(out, model.CommunicationEvent{Event: r.Event, Sentiment: sentiment})
	}
	return out
}
