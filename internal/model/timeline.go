package model

// ISODate is the wire format for event timestamps.
const ISODate = "2006-01-02"

// RawEvent is a loosely-typed candidate event as produced by the extraction
// stage. Field names cover the aliases seen in upstream payloads; any subset
// may be present and everything is defaulted downstream.
type RawEvent struct {
	EventName   string   `json:"event_name,omitempty"`
	Name        string   `json:"name,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Phase       string   `json:"phase,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Sentiment   string   `json:"sentiment,omitempty"`
}

// Title returns the best available short label for the event.
func (r RawEvent) Title() string {
	if r.EventName != "" {
		return r.EventName
	}
	if r.Name != "" {
		return r.Name
	}
	return r.Summary
}

// Detail returns the best available long description for the event.
func (r RawEvent) Detail() string {
	if r.Description != "" {
		return r.Description
	}
	return r.Summary
}

// TimelineEvent is a canonical, fully-resolved timeline entry.
type TimelineEvent struct {
	Name        string    `json:"event_name"`
	Description string    `json:"description"`
	Phase       Phase     `json:"phase"`
	Timestamp   string    `json:"timestamp"` // YYYY-MM-DD
	Confidence  float64   `json:"confidence"`
	Sentiment   Sentiment `json:"sentiment"`
}

// CommunicationEvent is an auxiliary, best-effort record of a notable
// communication moment in the deal.
type CommunicationEvent struct {
	Event     string    `json:"event"`
	Sentiment Sentiment `json:"sentiment"`
}

// Timeline is the canonical output of the timeline stage: events sorted
// ascending by timestamp, full five-phase coverage, strictly increasing
// dates. Constructed once per analysis and never mutated afterwards.
type Timeline struct {
	Events              []TimelineEvent      `json:"events"`
	TimelineScore       float64              `json:"timeline_score"`
	PhaseSummary        map[Phase]string     `json:"phase_summary"`
	MajorBlockers       []string             `json:"major_blockers"`
	CommunicationEvents []CommunicationEvent `json:"communication_events"`
}

// EventsInPhase returns the events belonging to the given phase, in order.
func (t Timeline) EventsInPhase(phase Phase) []TimelineEvent {
	var out []TimelineEvent
	for _, e := range t.Events {
		if e.Phase == phase {
			out = append(out, e)
		}
	}
	return out
}

// NegativeEventRatio returns the fraction of events tagged negative.
func (t Timeline) NegativeEventRatio() float64 {
	if len(t.Events) == 0 {
		return 0
	}
	n := 0
	for _, e := range t.Events {
		if e.Sentiment == SentimentNegative {
			n++
		}
	}
	return float64(n) / float64(len(t.Events))
}
