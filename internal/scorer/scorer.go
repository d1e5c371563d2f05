// Package scorer derives the six-metric deal health scorecard from the
// completed analysis stages. Scoring is fully deterministic: fixed keyword
// vocabularies, fixed penalties, fixed composite weights. The same three
// inputs always produce the same scorecard.
package scorer

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/sells-group/deal-forensics/internal/model"
)

// Composite weights. They sum to 1.0; delivery execution carries the most
// signal about why deals die.
const (
	weightPricing       = 0.20
	weightCommunication = 0.20
	weightDocumentation = 0.15
	weightCompetitive   = 0.20
	weightDelivery      = 0.25
)

// defaultRatio stands in for absent or malformed competitor risk and
// pricing delta values.
const defaultRatio = 0.5

// Scorer computes scorecards against a fixed vocabulary.
type Scorer struct {
	vocab Vocabulary
}

func New(vocab Vocabulary) *Scorer {
	return &Scorer{vocab: vocab}
}

// Score computes the full scorecard from the three analysis stages. The
// keyword dimension operates over the concatenated JSON rendering of all
// three, so nested fields contribute without per-field plumbing.
func (s *Scorer) Score(tl model.Timeline, cmp model.Comparative, pb model.Playbook) model.Scorecard {
	text := strings.ToLower(combinedJSON(tl, cmp, pb))

	pricing := s.scorePricingClarity(tl, cmp, text)
	comm := s.scoreCommunicationQuality(tl, text)
	doc := s.scoreDocumentationQuality(pb, text)
	competitive := normalize(10 - sanitizeRatio(cmp.CompetitorRisk)*10)
	delivery := s.scoreDeliveryExecution(tl, text)

	final := composite(pricing, comm, doc, competitive, delivery)

	return model.Scorecard{
		PricingClarity:       pricing,
		CommunicationQuality: comm,
		DocumentationQuality: doc,
		CompetitiveRisk:      competitive,
		DeliveryExecution:    delivery,
		FinalDealHealth:      final,
	}
}

// composite collapses the five sub-scores into the final health score.
func composite(pricing, comm, doc, competitive, delivery float64) float64 {
	return normalize(
		pricing*weightPricing +
			comm*weightCommunication +
			doc*weightDocumentation +
			competitive*weightCompetitive +
			delivery*weightDelivery,
	)
}

func (s *Scorer) scorePricingClarity(tl model.Timeline, cmp model.Comparative, text string) float64 {
	score := 10.0

	// Up to -5 for how far apart the parties stayed on price.
	score -= sanitizeRatio(cmp.PricingDelta) * 5

	// Repeated pricing rounds signal an unresolved number.
	pricingEvents := len(tl.EventsInPhase(model.PhasePricing))
	if pricingEvents > 2 {
		score -= 2.0
	}
	if pricingEvents > 4 {
		score -= 1.5
	}

	score -= capped(float64(countHits(text, s.vocab.PricingAmbiguity))*0.4, 3.0)
	score += capped(float64(countHits(text, s.vocab.PricingClarity))*0.4, 2.5)
	score -= capped(float64(countHits(text, s.vocab.PricingRisk))*0.5, 2.0)

	return normalize(score)
}

func (s *Scorer) scoreCommunicationQuality(tl model.Timeline, text string) float64 {
	score := 10.0

	if n := len(tl.CommunicationEvents); n > 0 {
		negative := 0
		for _, ce := range tl.CommunicationEvents {
			if ce.Sentiment == model.SentimentNegative {
				negative++
			}
		}
		score -= float64(negative) / float64(n) * 6
	}

	score -= tl.NegativeEventRatio() * 4

	score -= capped(float64(countHits(text, s.vocab.CommunicationIssues))*0.5, 3.5)
	score += capped(float64(countHits(text, s.vocab.GoodCommunication))*0.35, 2.5)
	score -= capped(float64(countHits(text, s.vocab.Escalation))*0.5, 2.0)

	return normalize(score)
}

func (s *Scorer) scoreDocumentationQuality(pb model.Playbook, text string) float64 {
	score := 10.0

	for _, flag := range pb.RedFlags {
		lower := strings.ToLower(flag)
		if strings.Contains(lower, "written") ||
			strings.Contains(lower, "document") ||
			strings.Contains(lower, "verbal") {
			score -= 1.5
		}
	}

	if countHits(text, s.vocab.VerbalAgreement) > 3 {
		score -= 3.0
	}

	score += capped(float64(countHits(text, s.vocab.WrittenDocumentation))*0.4, 3.0)
	score -= capped(float64(countHits(text, s.vocab.MissingDocumentation))*0.5, 3.0)

	return normalize(score)
}

func (s *Scorer) scoreDeliveryExecution(tl model.Timeline, text string) float64 {
	score := 10.0

	if len(tl.EventsInPhase(model.PhaseDelivery)) == 0 {
		score -= 2.0
	}

	score -= capped(float64(countHits(text, s.vocab.VagueTimeline))*0.5, 3.5)
	score += capped(float64(countHits(text, s.vocab.SpecificTimeline))*0.5, 2.5)
	score -= capped(float64(countHits(text, s.vocab.DeliveryIssues))*0.7, 4.5)

	score -= float64(len(tl.EventsInPhase(model.PhaseEscalation))) * 1.2

	if countHits(text, s.vocab.Competitor) > 2 {
		score -= 1.0
	}

	return normalize(score)
}

// combinedJSON renders the three stage outputs to one searchable blob.
// Marshal failures degrade to an empty contribution rather than aborting
// the scorecard.
func combinedJSON(parts ...any) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		if raw, err := json.Marshal(p); err == nil {
			b.Write(raw)
		}
	}
	return b.String()
}

// countHits counts how many vocabulary entries appear in text at least
// once. Recurrences of the same keyword do not add hits. Text must already
// be lowercased.
func countHits(text string, keywords []string) int {
	if text == "" {
		return 0
	}
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}

// sanitizeRatio clamps a [0,1] ratio, substituting the neutral default for
// NaN or out-of-range garbage.
func sanitizeRatio(v float64) float64 {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return defaultRatio
	}
	return v
}

func capped(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

func normalize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
