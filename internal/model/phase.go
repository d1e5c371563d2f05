package model

// Phase is one of the five canonical deal stages every timeline must cover.
type Phase string

const (
	PhaseDiscovery  Phase = "Discovery Phase"
	PhasePricing    Phase = "Pricing Negotiation Phase"
	PhaseDelivery   Phase = "Delivery Planning Phase"
	PhaseEscalation Phase = "Issue/Escalation Phase"
	PhaseDecision   Phase = "Final Decision Phase"
)

// RequiredPhases returns the five canonical phases in deal-lifecycle order.
func RequiredPhases() []Phase {
	return []Phase{
		PhaseDiscovery,
		PhasePricing,
		PhaseDelivery,
		PhaseEscalation,
		PhaseDecision,
	}
}

// Sentiment is a per-event qualitative tone tag.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// DefaultSentiment returns the sentiment assumed for an event in the given
// phase when the upstream extraction supplied none. Escalation and final
// decision default to negative: this system analyzes lost deals.
func DefaultSentiment(phase Phase) Sentiment {
	switch phase {
	case PhaseEscalation, PhaseDecision:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
