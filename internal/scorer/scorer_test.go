package scorer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/deal-forensics/internal/model"
)

func cleanTimeline() model.Timeline {
	var events []model.TimelineEvent
	dates := []string{"2024-05-01", "2024-05-15", "2024-06-01", "2024-06-10", "2024-06-20"}
	for i, phase := range model.RequiredPhases() {
		sentiment := model.SentimentNeutral
		if phase == model.PhaseEscalation {
			sentiment = model.SentimentNegative
		}
		events = append(events, model.TimelineEvent{
			Name: string(phase), Phase: phase,
			Timestamp: dates[i], Confidence: 0.8, Sentiment: sentiment,
		})
	}
	return model.Timeline{Events: events, TimelineScore: 8.0}
}

func TestComposite_WeightedSum(t *testing.T) {
	// 0.20*8 + 0.20*6 + 0.15*7 + 0.20*9 + 0.25*5 = 6.90
	assert.InDelta(t, 6.90, composite(8, 6, 7, 9, 5), 0.001)
}

func TestComposite_Clamped(t *testing.T) {
	assert.Equal(t, 10.0, composite(100, 100, 100, 100, 100))
	assert.Equal(t, 0.0, composite(-5, -5, -5, -5, -5))
}

func TestScore_AllMetricsInBounds(t *testing.T) {
	s := New(DefaultVocabulary())
	card := s.Score(cleanTimeline(), model.Comparative{CompetitorRisk: 0.5, PricingDelta: 0.5}, model.Playbook{})

	for name, v := range map[string]float64{
		"pricing":       card.PricingClarity,
		"communication": card.CommunicationQuality,
		"documentation": card.DocumentationQuality,
		"competitive":   card.CompetitiveRisk,
		"delivery":      card.DeliveryExecution,
		"final":         card.FinalDealHealth,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 10.0, name)
	}
}

func TestScore_CompetitiveRiskInverted(t *testing.T) {
	s := New(DefaultVocabulary())

	low := s.Score(cleanTimeline(), model.Comparative{CompetitorRisk: 0.1, PricingDelta: 0.5}, model.Playbook{})
	high := s.Score(cleanTimeline(), model.Comparative{CompetitorRisk: 0.9, PricingDelta: 0.5}, model.Playbook{})

	assert.InDelta(t, 9.0, low.CompetitiveRisk, 0.001)
	assert.InDelta(t, 1.0, high.CompetitiveRisk, 0.001)
	assert.Greater(t, low.FinalDealHealth, high.FinalDealHealth)
}

func TestScore_PricingDeltaPenalty(t *testing.T) {
	s := New(DefaultVocabulary())

	tight := s.Score(cleanTimeline(), model.Comparative{CompetitorRisk: 0.5, PricingDelta: 0.0}, model.Playbook{})
	wide := s.Score(cleanTimeline(), model.Comparative{CompetitorRisk: 0.5, PricingDelta: 1.0}, model.Playbook{})

	// The delta alone moves pricing clarity by 5 points.
	assert.InDelta(t, 5.0, tight.PricingClarity-wide.PricingClarity, 0.001)
}

func TestScore_MalformedRatiosDefault(t *testing.T) {
	s := New(DefaultVocabulary())
	card := s.Score(cleanTimeline(), model.Comparative{
		CompetitorRisk: math.NaN(),
		PricingDelta:   3.7,
	}, model.Playbook{})

	neutral := s.Score(cleanTimeline(), model.Comparative{
		CompetitorRisk: 0.5,
		PricingDelta:   0.5,
	}, model.Playbook{})

	assert.InDelta(t, neutral.CompetitiveRisk, card.CompetitiveRisk, 0.001)
	assert.InDelta(t, neutral.PricingClarity, card.PricingClarity, 0.001)
	assert.False(t, math.IsNaN(card.FinalDealHealth))
}

func TestScore_RepeatedPricingRounds(t *testing.T) {
	s := New(DefaultVocabulary())
	cmp := model.Comparative{CompetitorRisk: 0.5, PricingDelta: 0.5}

	tl := cleanTimeline()
	few := s.Score(tl, cmp, model.Playbook{})

	for i := 0; i < 4; i++ {
		tl.Events = append(tl.Events, model.TimelineEvent{
			Name: "Pricing Round", Phase: model.PhasePricing,
			Timestamp: "2024-07-01", Sentiment: model.SentimentNeutral, Confidence: 0.7,
		})
	}
	many := s.Score(tl, cmp, model.Playbook{})

	// >2 pricing events costs 2.0, >4 another 1.5.
	assert.InDelta(t, 3.5, few.PricingClarity-many.PricingClarity, 0.001)
}

func TestScore_DocumentationRedFlags(t *testing.T) {
	s := New(DefaultVocabulary())
	cmp := model.Comparative{CompetitorRisk: 0.5, PricingDelta: 0.5}

	base := s.Score(cleanTimeline(), cmp, model.Playbook{})
	flagged := s.Score(cleanTimeline(), cmp, model.Playbook{
		RedFlags: []string{
			"No written confirmation of the discount",
			"Key commitments were verbal only",
			"Competitor undercut on price",
		},
	})

	// Two of the three flags are documentation-related: 2 * 1.5. The
	// flags also land keyword hits in the combined text, so compare with
	// a floor rather than an exact delta.
	assert.Less(t, flagged.DocumentationQuality, base.DocumentationQuality)
	assert.GreaterOrEqual(t, base.DocumentationQuality-flagged.DocumentationQuality, 3.0)
}

func TestScore_DeliveryIssuesAndEscalations(t *testing.T) {
	s := New(DefaultVocabulary())
	cmp := model.Comparative{CompetitorRisk: 0.5, PricingDelta: 0.5}

	tl := cleanTimeline()
	healthy := s.Score(tl, cmp, model.Playbook{})

	tl.Events = append(tl.Events,
		model.TimelineEvent{
			Name: "Slippage", Phase: model.PhaseEscalation,
			Description: "implementation delay and missed deadline, behind schedule",
			Timestamp:   "2024-07-05", Sentiment: model.SentimentNegative, Confidence: 0.7,
		},
	)
	troubled := s.Score(tl, cmp, model.Playbook{})

	assert.Less(t, troubled.DeliveryExecution, healthy.DeliveryExecution)
	assert.Less(t, troubled.FinalDealHealth, healthy.FinalDealHealth)
}

func TestScore_MissingDeliveryPhase(t *testing.T) {
	s := New(DefaultVocabulary())
	cmp := model.Comparative{CompetitorRisk: 0.5, PricingDelta: 0.5}

	tl := cleanTimeline()
	withDelivery := s.Score(tl, cmp, model.Playbook{})

	var trimmed []model.TimelineEvent
	for _, e := range tl.Events {
		if e.Phase != model.PhaseDelivery {
			trimmed = append(trimmed, e)
		}
	}
	tl.Events = trimmed
	withoutDelivery := s.Score(tl, cmp, model.Playbook{})

	assert.InDelta(t, 2.0, withDelivery.DeliveryExecution-withoutDelivery.DeliveryExecution, 0.001)
}

func TestCountHits_PresenceNotOccurrences(t *testing.T) {
	text := "delay delay delay and one missed deadline"
	assert.Equal(t, 2, countHits(text, []string{"delay", "missed deadline", "schedule slip"}))
	assert.Equal(t, 0, countHits("", []string{"delay"}))
}

func TestSanitizeRatio(t *testing.T) {
	assert.Equal(t, 0.25, sanitizeRatio(0.25))
	assert.Equal(t, defaultRatio, sanitizeRatio(math.NaN()))
	assert.Equal(t, defaultRatio, sanitizeRatio(-0.1))
	assert.Equal(t, defaultRatio, sanitizeRatio(1.1))
}
