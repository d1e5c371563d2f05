package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/deal-forensics/internal/model"
)

func TestFormatReport(t *testing.T) {
	closeDate := time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC)
	deal := model.Deal{
		Name:      "Orion Logistics Platform Migration",
		Owner:     "Dana Whitfield",
		Industry:  "Technology",
		Value:     480000,
		CloseDate: &closeDate,
		Stage:     "Closed Lost",
	}
	result := &model.AnalysisResult{
		Deal: deal,
		Timeline: model.Timeline{
			TimelineScore: 6.5,
			Events: []model.TimelineEvent{
				{Name: "Discovery Call", Phase: model.PhaseDiscovery, Timestamp: "2024-06-03", Sentiment: model.SentimentPositive},
			},
			MajorBlockers: []string{"Budget gap of 15%"},
		},
		Comparative: model.Comparative{
			CompetitorRisk: 0.7,
			PricingDelta:   0.4,
			SimilarDeals: []model.SimilarDeal{
				{DealName: "Apex CRM Rollout", SimilarityScore: 0.8, Outcome: "Lost on price"},
			},
			CommonPatterns:  []string{"Pricing churn"},
			InsightsSummary: "Qualify budgets earlier",
		},
		Playbook: model.Playbook{
			WhatWentWrong: []string{"Budget gap surfaced late"},
			RedFlags:      []string{"Verbal discount"},
			Recommendations: []model.Recommendation{
				{Priority: "High", Action: "Qualify budget early", Impact: 9, Owner: "Sales Rep"},
			},
			BestPractices: []string{"Written recaps within 24 hours"},
		},
		Scorecard: model.Scorecard{
			PricingClarity:       8.0,
			CommunicationQuality: 6.0,
			DocumentationQuality: 7.0,
			CompetitiveRisk:      9.0,
			DeliveryExecution:    5.0,
			FinalDealHealth:      6.9,
		},
		Phases: []model.PhaseResult{
			{Name: "timeline", Status: model.PhaseStatusComplete, Duration: 1200},
			{Name: "comparative", Status: model.PhaseStatusFailed, Error: "api timeout"},
		},
		TotalUsage: model.TokenUsage{InputTokens: 3600, OutputTokens: 1200, Cost: 0.0288},
	}

	report := FormatReport(deal, result)

	assert.Contains(t, report, "# Deal Forensics Report: Orion Logistics Platform Migration")
	assert.Contains(t, report, "Deal Value: $480000")
	assert.Contains(t, report, "Close Date: 2024-10-18")
	assert.Contains(t, report, "**Final Deal Health: 6.90**")
	assert.Contains(t, report, "## Timeline (score 6.5)")
	assert.Contains(t, report, "2024-06-03 [Discovery Phase] Discovery Call (positive)")
	assert.Contains(t, report, "Budget gap of 15%")
	assert.Contains(t, report, "Apex CRM Rollout (80% similar): Lost on price")
	assert.Contains(t, report, "Pattern: Pricing churn")
	assert.Contains(t, report, "[High] Qualify budget early (impact 9, owner: Sales Rep)")
	assert.Contains(t, report, "Written recaps within 24 hours")
	assert.Contains(t, report, "comparative: failed")
	assert.Contains(t, report, "Error: api timeout")
	assert.Contains(t, report, "Token usage: 3600 input, 1200 output ($0.0288)")
}

func TestFormatReport_UnnamedDeal(t *testing.T) {
	report := FormatReport(model.Deal{}, &model.AnalysisResult{})
	assert.Contains(t, report, "# Deal Forensics Report: Untitled Deal")
}
