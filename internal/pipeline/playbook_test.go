package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-forensics/internal/model"
)

// minedDocument trips most of the document-insight extractors.
const minedDocument = `Pricing was renegotiated three times: the initial price
of $520,000 dropped to a revised cost of $420,000 after the customer raised
budget concerns. A pricing gap: 18% remained. A verbal discount was offered
with no written agreement. Competitor CloudTech Solutions undercut us, and
the customer said delivery would land "sometime in Q2" (timeline still vague,
several items tbd). The account was escalated twice over delayed response
times before we lost.`

func TestExtractDocumentInsights_MinesDealSpecifics(t *testing.T) {
	insights := extractDocumentInsights(minedDocument)

	assert.Contains(t, insights.WhatWentWrong[0], "Pricing was discussed repeatedly")
	assert.Contains(t, insights.WhatWentWrong[0], "$520,000")

	joinedWrong := ""
	for _, w := range insights.WhatWentWrong {
		joinedWrong += w + "\n"
	}
	assert.Contains(t, joinedWrong, "pricing gap between proposal and customer budget (18%)")
	assert.Contains(t, joinedWrong, "CloudTech Solutions")
	assert.Contains(t, joinedWrong, "Verbal-only commitments")
	assert.Contains(t, joinedWrong, "escalation phases")

	joinedFlags := ""
	for _, f := range insights.RedFlags {
		joinedFlags += f + "\n"
	}
	assert.Contains(t, joinedFlags, "Missing warranty or guarantee terms")
	assert.Contains(t, joinedFlags, "No penalty clauses")
	assert.Contains(t, joinedFlags, "Vague timeline references")

	// High-priority recommendations for pricing, competitor, and verbal terms.
	priorities := map[string]int{}
	for _, rec := range insights.Recommendations {
		priorities[rec.Priority]++
		assert.NotEmpty(t, rec.Action)
		assert.NotEmpty(t, rec.Owner)
	}
	assert.GreaterOrEqual(t, priorities["High"], 3)
}

func TestExtractDocumentInsights_EmptyDocument(t *testing.T) {
	insights := extractDocumentInsights("")
	assert.Empty(t, insights.WhatWentWrong)
	assert.Empty(t, insights.RedFlags)
}

func TestFindCompetitorName(t *testing.T) {
	assert.Equal(t, "CloudTech Solutions", findCompetitorName("Competitor CloudTech Solutions offered 10% less"))
	assert.Equal(t, "NimbusWare", findCompetitorName("we lost to NimbusWare after the pilot"))
	assert.Empty(t, findCompetitorName("no rival was ever named"))
}

func TestDecodeRecommendations_MixedShapes(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"priority": "High", "action": "Qualify budget early", "impact": 9, "owner": "Sales Rep"}`),
		json.RawMessage(`{"action": "Send recap emails"}`),
		json.RawMessage(`"Create battle cards"`),
		json.RawMessage(`42`),
	}

	recs := decodeRecommendations(raws)
	require.Len(t, recs, 3)

	assert.Equal(t, "High", recs[0].Priority)
	assert.InDelta(t, 9, recs[0].Impact, 0.001)

	// Object with missing fields gets defaults.
	assert.Equal(t, "Med", recs[1].Priority)
	assert.InDelta(t, 5, recs[1].Impact, 0.001)
	assert.Equal(t, "Sales Rep", recs[1].Owner)

	// Bare string becomes a medium-priority recommendation.
	assert.Equal(t, "Create battle cards", recs[2].Action)
	assert.InDelta(t, 6, recs[2].Impact, 0.001)
}

func TestPlaybookStage_TopsUpSparsePayload(t *testing.T) {
	payload := `{
	  "what_went_wrong": ["Only one model-supplied cause"],
	  "red_flags": [],
	  "recommendations": [{"priority": "High", "action": "Model action", "impact": 8, "owner": "Sales Rep"}],
	  "best_practices": ["Model practice"]
	}`

	ai := &mockAnthropicClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(payload), nil)

	p := newTestPipeline(t, ai)
	pb, usage := p.playbookStage(context.Background(), minedDocument, "summary", model.Timeline{}, DefaultComparative())

	assert.GreaterOrEqual(t, len(pb.WhatWentWrong), minRootCauses)
	assert.LessOrEqual(t, len(pb.WhatWentWrong), maxRootCauses)
	assert.Equal(t, "Only one model-supplied cause", pb.WhatWentWrong[0])

	assert.GreaterOrEqual(t, len(pb.RedFlags), minRedFlags)
	assert.LessOrEqual(t, len(pb.RedFlags), maxRedFlags)

	assert.GreaterOrEqual(t, len(pb.Recommendations), minRecommendations)
	assert.LessOrEqual(t, len(pb.Recommendations), maxRecommendations)
	assert.Equal(t, "Model action", pb.Recommendations[0].Action)

	assert.GreaterOrEqual(t, len(pb.BestPractices), minBestPractices)
	assert.LessOrEqual(t, len(pb.BestPractices), maxBestPractices)
	assert.Equal(t, "Model practice", pb.BestPractices[0])

	assert.Equal(t, int64(1200), usage.InputTokens)
}

func TestPlaybookStage_CallFailureUsesMinedFallback(t *testing.T) {
	ai := &mockAnthropicClient{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("bad request"))

	p := newTestPipeline(t, ai)
	pb, usage := p.playbookStage(context.Background(), minedDocument, "summary", model.Timeline{}, DefaultComparative())

	assert.GreaterOrEqual(t, len(pb.WhatWentWrong), minRootCauses)
	assert.GreaterOrEqual(t, len(pb.RedFlags), minRedFlags)
	assert.GreaterOrEqual(t, len(pb.Recommendations), minRecommendations)
	assert.GreaterOrEqual(t, len(pb.BestPractices), minBestPractices)

	// Document-specific findings survive into the fallback.
	joined := ""
	for _, w := range pb.WhatWentWrong {
		joined += w + "\n"
	}
	assert.Contains(t, joined, "CloudTech Solutions")
	assert.Zero(t, usage.InputTokens)
}

func TestDedupe(t *testing.T) {
	out := dedupe([]string{"a", "b", "a", "", "c", "b", "d"}, 3)
	assert.Equal(t, []string{"a", "b", "c"}, out)
}

func TestDedupeRecommendations(t *testing.T) {
	recs := []model.Recommendation{
		{Action: "one"}, {Action: "two"}, {Action: "one"}, {Action: ""},
	}
	out := dedupeRecommendations(recs, 10)
	require.Len(t, out, 2)
	assert.Equal(t, "one", out[0].Action)
	assert.Equal(t, "two", out[1].Action)
}
