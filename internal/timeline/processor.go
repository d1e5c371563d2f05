package timeline

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/deal-forensics/internal/model"
)

// minContextLen is the shortest document that still carries enough signal
// to attempt extraction.
const minContextLen = 50

// maxEnhancedEvents caps keyword-synthesized events.
const maxEnhancedEvents = 15

// defaultConfidence is assumed when an event carries no confidence.
const defaultConfidence = 0.7

var titleCaser = cases.Title(language.English)

// phaseKeywords drive NormalizePhase. Keys are checked with case-insensitive
// substring matching, in lifecycle order.
var phaseKeywords = []struct {
	phase    model.Phase
	keywords []string
}{
	{model.PhaseDiscovery, []string{"discovery", "initial"}},
	{model.PhasePricing, []string{"pricing", "price", "negotiation"}},
	{model.PhaseDelivery, []string{"delivery", "planning"}},
	{model.PhaseEscalation, []string{"escalation", "issue", "problem"}},
	{model.PhaseDecision, []string{"final", "outcome", "decision"}},
}

// NormalizePhase maps an arbitrary phase label onto one of the five
// canonical phases. Already-canonical labels pass through unchanged;
// unmatched labels default to Discovery.
func NormalizePhase(raw string) model.Phase {
	for _, p := range model.RequiredPhases() {
		if raw == string(p) {
			return p
		}
	}
	lower := strings.ToLower(raw)
	for _, pk := range phaseKeywords {
		for _, kw := range pk.keywords {
			if strings.Contains(lower, kw) {
				return pk.phase
			}
		}
	}
	return model.PhaseDiscovery
}

// ProcessEvents resolves each raw event into a canonical TimelineEvent with
// a valid ISO date. Unparseable timestamps are synthesized with 1-7 day
// gaps, and strict monotonicity against the previous resolved date is
// enforced by re-synthesizing forward on ties or regressions.
func ProcessEvents(raws []model.RawEvent, inf *DateInferencer) []model.TimelineEvent {
	processed := make([]model.TimelineEvent, 0, len(raws))
	var lastDate time.Time

	for i, raw := range raws {
		phase := NormalizePhase(raw.Phase)

		resolved, ok := inf.Parse(raw.Timestamp)
		if !ok {
			if !lastDate.IsZero() {
				resolved = inf.NextDate(lastDate, GapDays(i))
			} else {
				resolved = inf.InferPhaseDate(phase, i, len(raws))
			}
		}
		if !lastDate.IsZero() && !resolved.After(lastDate) {
			resolved = inf.NextDate(lastDate, GapDays(i))
		}
		lastDate = resolved
		inf.Advance(resolved)

		name := raw.Title()
		if name == "" {
			name = "Event " + strconv.Itoa(i+1)
		}

		sentiment := model.Sentiment(raw.Sentiment)
		switch sentiment {
		case model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative:
		default:
			sentiment = model.DefaultSentiment(phase)
		}

		confidence := defaultConfidence
		if raw.Confidence != nil {
			confidence = clamp01(*raw.Confidence)
		}

		processed = append(processed, model.TimelineEvent{
			Name:        name,
			Description: raw.Detail(),
			Phase:       phase,
			Timestamp:   resolved.Format(model.ISODate),
			Confidence:  confidence,
			Sentiment:   sentiment,
		})
	}

	return processed
}

// phaseEventTemplates are the canonical start/end events fabricated for a
// phase the extraction missed entirely.
var phaseEventTemplates = map[model.Phase][2][2]string{
	model.PhaseDiscovery: {
		{"Initial Discovery", "Initial contact and requirements gathering started"},
		{"Discovery Complete", "Discovery phase completed, moving to pricing"},
	},
	model.PhasePricing: {
		{"Pricing Discussion Begins", "Pricing negotiation phase started"},
		{"Pricing Negotiation Complete", "Pricing discussions concluded"},
	},
	model.PhaseDelivery: {
		{"Delivery Planning Starts", "Implementation and delivery planning began"},
		{"Delivery Planning Complete", "Delivery planning phase completed"},
	},
	model.PhaseEscalation: {
		{"Issues Identified", "Problems or concerns raised"},
		{"Escalation Resolved", "Issues addressed or escalated further"},
	},
	model.PhaseDecision: {
		{"Final Decision Process", "Final decision phase initiated"},
		{"Final Outcome", "Deal closed - outcome determined"},
	},
}

// EnsurePhaseCoverage guarantees every canonical phase is represented,
// fabricating a start/end pair chained off the latest known date for each
// missing one. The result is re-sorted ascending, strictly monotonic, and
// never dated after the reference date.
func EnsurePhaseCoverage(events []model.TimelineEvent, inf *DateInferencer) []model.TimelineEvent {
	var lastDate time.Time
	covered := make(map[model.Phase]bool, 5)
	for _, e := range events {
		covered[e.Phase] = true
		if t, err := time.Parse(model.ISODate, e.Timestamp); err == nil && t.After(lastDate) {
			lastDate = t
		}
	}
	if lastDate.IsZero() {
		lastDate = inf.Base().AddDate(0, -anchorMonthsAgo, 0)
	}

	result := append([]model.TimelineEvent(nil), events...)
	for _, phase := range model.RequiredPhases() {
		if covered[phase] {
			continue
		}
		tmpl := phaseEventTemplates[phase]
		startDate := inf.NextDate(lastDate, 3)
		endDate := inf.NextDate(startDate, 5)
		result = append(result,
			model.TimelineEvent{
				Name:        tmpl[0][0],
				Description: tmpl[0][1],
				Phase:       phase,
				Timestamp:   startDate.Format(model.ISODate),
				Confidence:  0.5,
				Sentiment:   model.DefaultSentiment(phase),
			},
			model.TimelineEvent{
				Name:        tmpl[1][0],
				Description: tmpl[1][1],
				Phase:       phase,
				Timestamp:   endDate.Format(model.ISODate),
				Confidence:  0.5,
				Sentiment:   model.DefaultSentiment(phase),
			},
		)
		lastDate = endDate
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return dedupeDates(result, inf.Base())
}

// dedupeDates resolves duplicate timestamps in a date-sorted event list.
// Ties are pushed forward by a 1-7 day gap but never past the reference
// date; ties pinned at the reference date are resolved by walking the
// earlier events backward one day at a time.
func dedupeDates(events []model.TimelineEvent, reference time.Time) []model.TimelineEvent {
	if len(events) == 0 {
		return events
	}

	dates := make([]time.Time, len(events))
	var last time.Time
	for i := range events {
		t, err := time.Parse(model.ISODate, events[i].Timestamp)
		if err != nil {
			if last.IsZero() {
				t = reference.AddDate(0, -anchorMonthsAgo, 0)
			} else {
				t = last.AddDate(0, 0, GapDays(i))
			}
		}
		if i > 0 && !t.After(last) {
			t = last.AddDate(0, 0, GapDays(i))
		}
		if t.After(reference) {
			t = reference
		}
		dates[i] = t
		last = t
	}

	for i := len(dates) - 2; i >= 0; i-- {
		if !dates[i].Before(dates[i+1]) {
			dates[i] = dates[i+1].AddDate(0, 0, -1)
		}
	}

	for i := range events {
		events[i].Timestamp = dates[i].Format(model.ISODate)
	}
	return events
}

// eventPatterns drive keyword-based event synthesis when the upstream
// extraction produced too few events. Order is significant: one event is
// manufactured per group, at the group's first keyword hit.
var eventPatterns = []struct {
	kind     string
	phase    model.Phase
	keywords []string
}{
	{"initial outreach", model.PhaseDiscovery, []string{"initial", "first contact", "outreach", "first call", "discovery call", "introductory"}},
	{"first negotiation", model.PhaseDiscovery, []string{"first negotiation", "initial negotiation", "first discussion", "opening discussion"}},
	{"pricing discussion", model.PhasePricing, []string{"pricing", "price", "quote", "budget", "cost", "pricing discussion", "pricing proposal"}},
	{"discount request", model.PhasePricing, []string{"discount", "reduction", "lower price", "price reduction", "budget constraint"}},
	{"delivery discussion", model.PhaseDelivery, []string{"delivery", "implementation", "timeline", "rollout", "deployment", "delivery plan"}},
	{"escalation", model.PhaseEscalation, []string{"escalation", "escalated", "issue", "problem", "concern", "delay", "blocker"}},
	{"final decision", model.PhaseDecision, []string{"final", "decision", "outcome", "closed", "lost", "won", "rejected", "accepted"}},
}

// EnhanceEvents supplements a sparse raw-event list by scanning the source
// text for phase-indicator keywords and manufacturing one candidate event
// per first match, capped at 15 total.
func EnhanceEvents(raws []model.RawEvent, context string, inf *DateInferencer) []model.RawEvent {
	enhanced := append([]model.RawEvent(nil), raws...)
	lower := strings.ToLower(context)

	for _, ep := range eventPatterns {
		if len(enhanced) >= maxEnhancedEvents {
			break
		}
		for _, kw := range ep.keywords {
			idx := strings.Index(lower, kw)
			if idx < 0 {
				continue
			}
			snippet := snippetAround(context, idx, 100, 200)
			date := inf.InferPhaseDate(ep.phase, len(enhanced), maxEnhancedEvents)
			conf := 0.6
			enhanced = append(enhanced, model.RawEvent{
				EventName:   titleCaser.String(ep.kind),
				Description: snippet,
				Phase:       string(ep.phase),
				Timestamp:   date.Format(model.ISODate),
				Confidence:  &conf,
				Sentiment:   string(model.DefaultSentiment(ep.phase)),
			})
			break
		}
	}

	if len(enhanced) > maxEnhancedEvents {
		enhanced = enhanced[:maxEnhancedEvents]
	}
	return enhanced
}

// snippetAround extracts up to 150 characters of context surrounding a
// keyword hit.
func snippetAround(text string, idx, before, after int) string {
	start := idx - before
	if start < 0 {
		start = 0
	}
	end := idx + after
	if end > len(text) {
		end = len(text)
	}
	s := strings.TrimSpace(text[start:end])
	if len(s) > 150 {
		s = s[:150]
	}
	return s
}

// PhaseSummary builds a short per-phase description from event
// descriptions.
func PhaseSummary(events []model.TimelineEvent) map[model.Phase]string {
	summaries := make(map[model.Phase]string, 5)
	for _, phase := range model.RequiredPhases() {
		var descs []string
		for _, e := range events {
			if e.Phase == phase && e.Description != "" {
				descs = append(descs, e.Description)
				if len(descs) == 3 {
					break
				}
			}
		}
		if len(descs) > 0 {
			summaries[phase] = strings.Join(descs, " | ")
		} else {
			summaries[phase] = "Events occurred in " + string(phase)
		}
	}
	return summaries
}

// Analyze runs the full deterministic timeline path over a raw event list
// and its source document: base-date anchoring, sparse-event enhancement,
// date resolution, phase coverage, and scoring. It never fails; degenerate
// input yields the minimal default timeline.
func Analyze(raws []model.RawEvent, context string, now time.Time) model.Timeline {
	if len(strings.TrimSpace(context)) < minContextLen && len(raws) == 0 {
		return DefaultTimeline(now)
	}

	base := ExtractBaseDate(context, now)
	inf := NewDateInferencer(base)

	if len(raws) < 5 {
		raws = EnhanceEvents(raws, context, inf)
	}

	events := ProcessEvents(raws, inf)
	events = EnsurePhaseCoverage(events, inf)

	return model.Timeline{
		Events:        events,
		TimelineScore: Score(events, context),
		PhaseSummary:  PhaseSummary(events),
	}
}

// FallbackTimeline returns a synthetic start/end pair per phase spaced over
// a fixed 90-day window anchored at base. Used when extraction fails
// entirely but the document itself was long enough to analyze.
func FallbackTimeline(base time.Time) model.Timeline {
	base = truncateToDay(base)
	events := make([]model.TimelineEvent, 0, 10)
	for _, phase := range model.RequiredPhases() {
		w := phaseWindows[phase]
		events = append(events,
			model.TimelineEvent{
				Name:        string(phase) + " Started",
				Description: "Initial activity in " + string(phase),
				Phase:       phase,
				Timestamp:   base.AddDate(0, 0, w[0]).Format(model.ISODate),
				Confidence:  0.4,
				Sentiment:   model.DefaultSentiment(phase),
			},
			model.TimelineEvent{
				Name:        string(phase) + " Completed",
				Description: "Phase completed: " + string(phase),
				Phase:       phase,
				Timestamp:   base.AddDate(0, 0, w[1]-1).Format(model.ISODate),
				Confidence:  0.4,
				Sentiment:   model.DefaultSentiment(phase),
			},
		)
	}

	summaries := make(map[model.Phase]string, 5)
	for _, phase := range model.RequiredPhases() {
		summaries[phase] = "Events in " + string(phase)
	}

	return model.Timeline{
		Events:        events,
		TimelineScore: fallbackScore,
		PhaseSummary:  summaries,
	}
}

// DefaultTimeline returns the minimal five-event timeline used when the
// input document is too short to carry any extractable signal.
func DefaultTimeline(now time.Time) model.Timeline {
	base := truncateToDay(now).AddDate(0, -anchorMonthsAgo, 0)
	events := make([]model.TimelineEvent, 0, 5)
	for i, phase := range model.RequiredPhases() {
		events = append(events, model.TimelineEvent{
			Name:        string(phase) + " Started",
			Description: "Initial activity in " + string(phase),
			Phase:       phase,
			Timestamp:   base.AddDate(0, 0, i*14).Format(model.ISODate),
			Confidence:  0.3,
			Sentiment:   model.DefaultSentiment(phase),
		})
	}

	summaries := make(map[model.Phase]string, 5)
	for _, phase := range model.RequiredPhases() {
		summaries[phase] = "Activity in " + string(phase)
	}

	return model.Timeline{
		Events:        events,
		TimelineScore: noEventsScore,
		PhaseSummary:  summaries,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
