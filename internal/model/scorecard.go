package model

// Scorecard is the six-metric deterministic health assessment of a deal.
// Every score is on a 0-10 scale where 10 is excellent / low risk.
// CompetitiveRisk is inverted: higher score means lower risk.
type Scorecard struct {
	PricingClarity       float64 `json:"pricing_clarity_score"`
	CommunicationQuality float64 `json:"communication_quality_score"`
	DocumentationQuality float64 `json:"documentation_quality_score"`
	CompetitiveRisk      float64 `json:"competitive_risk_score"`
	DeliveryExecution    float64 `json:"delivery_execution_score"`
	FinalDealHealth      float64 `json:"final_deal_health_score"`
}
