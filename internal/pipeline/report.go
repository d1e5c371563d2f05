package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/deal-forensics/internal/model"
)

// FormatReport generates a human-readable forensics report for one run.
func FormatReport(deal model.Deal, result *model.AnalysisResult) string {
	var b strings.Builder

	name := deal.Name
	if name == "" {
		name = "Untitled Deal"
	}
	fmt.Fprintf(&b, "# Deal Forensics Report: %s\n", name)
	fmt.Fprintf(&b, "Industry: %s | Stage: %s | Owner: %s\n", deal.Industry, deal.Stage, deal.Owner)
	if deal.Value > 0 {
		fmt.Fprintf(&b, "Deal Value: $%.0f\n", deal.Value)
	}
	if deal.CloseDate != nil {
		fmt.Fprintf(&b, "Close Date: %s\n", deal.CloseDate.Format(model.ISODate))
	}
	b.WriteString("\n")

	// Scorecard.
	sc := result.Scorecard
	b.WriteString("## Deal Health Scorecard\n")
	fmt.Fprintf(&b, "- Pricing Clarity: %.2f\n", sc.PricingClarity)
	fmt.Fprintf(&b, "- Communication Quality: %.2f\n", sc.CommunicationQuality)
	fmt.Fprintf(&b, "- Documentation Quality: %.2f\n", sc.DocumentationQuality)
	fmt.Fprintf(&b, "- Competitive Risk: %.2f\n", sc.CompetitiveRisk)
	fmt.Fprintf(&b, "- Delivery Execution: %.2f\n", sc.DeliveryExecution)
	fmt.Fprintf(&b, "- **Final Deal Health: %.2f**\n\n", sc.FinalDealHealth)

	// Timeline.
	fmt.Fprintf(&b, "## Timeline (score %.1f)\n", result.Timeline.TimelineScore)
	for _, e := range result.Timeline.Events {
		fmt.Fprintf(&b, "- %s [%s] %s (%s)\n", e.Timestamp, e.Phase, e.Name, e.Sentiment)
	}
	if len(result.Timeline.MajorBlockers) > 0 {
		b.WriteString("\nMajor blockers:\n")
		for _, blocker := range result.Timeline.MajorBlockers {
			fmt.Fprintf(&b, "- %s\n", blocker)
		}
	}
	b.WriteString("\n")

	// Comparative.
	b.WriteString("## Comparative Analysis\n")
	fmt.Fprintf(&b, "Competitor risk: %.2f | Pricing delta: %.2f\n", result.Comparative.CompetitorRisk, result.Comparative.PricingDelta)
	for _, sd := range result.Comparative.SimilarDeals {
		fmt.Fprintf(&b, "- %s (%.0f%% similar): %s\n", sd.DealName, sd.SimilarityScore*100, sd.Outcome)
	}
	for _, pattern := range result.Comparative.CommonPatterns {
		fmt.Fprintf(&b, "- Pattern: %s\n", pattern)
	}
	if result.Comparative.InsightsSummary != "" {
		fmt.Fprintf(&b, "\n%s\n", result.Comparative.InsightsSummary)
	}
	b.WriteString("\n")

	// Playbook.
	b.WriteString("## What Went Wrong\n")
	for _, item := range result.Playbook.WhatWentWrong {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	b.WriteString("\n## Red Flags\n")
	for _, item := range result.Playbook.RedFlags {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	b.WriteString("\n## Recommendations\n")
	for _, rec := range result.Playbook.Recommendations {
		fmt.Fprintf(&b, "- [%s] %s (impact %.0f, owner: %s)\n", rec.Priority, rec.Action, rec.Impact, rec.Owner)
	}
	b.WriteString("\n## Best Practices\n")
	for _, item := range result.Playbook.BestPractices {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	b.WriteString("\n")

	// Phases.
	b.WriteString("## Pipeline Phases\n")
	for _, p := range result.Phases {
		fmt.Fprintf(&b, "- %s: %s (%dms)\n", p.Name, p.Status, p.Duration)
		if p.Error != "" {
			fmt.Fprintf(&b, "  Error: %s\n", p.Error)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Token usage: %d input, %d output ($%.4f)\n",
		result.TotalUsage.InputTokens, result.TotalUsage.OutputTokens, result.TotalUsage.Cost)

	return b.String()
}
