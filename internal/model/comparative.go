package model

// SimilarDeal describes one historical deal the comparative stage judged
// similar to the target.
type SimilarDeal struct {
	DealName         string  `json:"deal_name"`
	SimilarityReason string  `json:"similarity_reason"`
	Outcome          string  `json:"outcome"`
	SimilarityScore  float64 `json:"similarity_score"`
}

// BenchmarkScores aggregates metrics across the similar historical deals.
type BenchmarkScores struct {
	AverageDealValue      float64 `json:"average_deal_value"`
	AverageCompetitorRisk float64 `json:"average_competitor_risk"`
	AveragePricingDelta   float64 `json:"average_pricing_delta"`
	AverageTimelineWeeks  float64 `json:"average_timeline_weeks"`
}

// Comparative is the normalized output of the comparative stage.
// CompetitorRisk and PricingDelta are always in [0, 1]; absent or malformed
// upstream values are defaulted to 0.5 before this record is constructed.
type Comparative struct {
	SimilarDeals      []SimilarDeal     `json:"similar_deals"`
	CommonPatterns    []string          `json:"common_patterns"`
	SharedRiskFactors []string          `json:"shared_risk_factors"`
	BenchmarkScores   BenchmarkScores   `json:"benchmark_scores"`
	InsightsSummary   string            `json:"insights_summary"`
	CompetitorRisk    float64           `json:"competitor_risk"`
	PricingDelta      float64           `json:"pricing_delta"`
	TrendAnalysis     []string          `json:"trend_analysis"`
	ComparativeTable  []ComparisonEntry `json:"comparative_table"`
}

// ComparisonEntry is one row of the target-vs-benchmark table.
type ComparisonEntry struct {
	Metric           string `json:"metric"`
	TargetDeal       string `json:"target_deal"`
	BenchmarkAverage string `json:"benchmark_average"`
}

// HistoricalDeal is a persisted summary of a past deal used for
// benchmarking.
type HistoricalDeal struct {
	DealName          string  `json:"deal_name"`
	Industry          string  `json:"industry"`
	Value             float64 `json:"value,omitempty"`
	PrimaryLossReason string  `json:"primary_loss_reason"`
	TimelineScore     float64 `json:"timeline_score"`
	CompetitorRisk    float64 `json:"competitor_risk"`
	SourceFile        string  `json:"source_file,omitempty"`
}
