package model

// Recommendation is a single prioritized remediation action.
type Recommendation struct {
	Priority string  `json:"priority"` // High, Med, Low
	Action   string  `json:"action"`
	Impact   float64 `json:"impact"` // 1-10
	Owner    string  `json:"owner"`
}

// Playbook is the four-section remediation playbook produced per analysis.
type Playbook struct {
	WhatWentWrong   []string         `json:"what_went_wrong"`
	RedFlags        []string         `json:"red_flags"`
	Recommendations []Recommendation `json:"recommendations"`
	BestPractices   []string         `json:"best_practices"`
}
