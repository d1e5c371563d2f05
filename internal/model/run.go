package model

import "time"

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusTimeline    RunStatus = "timeline"
	RunStatusComparative RunStatus = "comparative"
	RunStatusPlaybook    RunStatus = "playbook"
	RunStatusScoring     RunStatus = "scoring"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// PhaseStatus represents the outcome of a single pipeline phase.
type PhaseStatus string

const (
	PhaseStatusRunning  PhaseStatus = "running"
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// TokenUsage tracks LLM token consumption across pipeline phases.
type TokenUsage struct {
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost,omitempty"`
}

// Add accumulates usage from another phase.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.Cost += other.Cost
}

// AnalysisRun represents a single forensics run over one deal document.
type AnalysisRun struct {
	ID        string          `json:"id"`
	Deal      Deal            `json:"deal"`
	Status    RunStatus       `json:"status"`
	Result    *AnalysisResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AnalysisResult holds the final outcome of a run. It is constructed once
// by the pipeline and never mutated afterwards.
type AnalysisResult struct {
	RunID       string        `json:"run_id"`
	Deal        Deal          `json:"deal"`
	Timeline    Timeline      `json:"timeline"`
	Comparative Comparative   `json:"comparative"`
	Playbook    Playbook      `json:"playbook"`
	Scorecard   Scorecard     `json:"scorecard"`
	Report      string        `json:"report,omitempty"`
	Phases      []PhaseResult `json:"phases"`
	TotalUsage  TokenUsage    `json:"total_usage"`
}

// RunPhase represents a phase row within a run.
type RunPhase struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Status    PhaseStatus  `json:"status"`
	Result    *PhaseResult `json:"result,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}

// PhaseResult holds the outcome of a single phase.
type PhaseResult struct {
	Name       string         `json:"name"`
	Status     PhaseStatus    `json:"status"`
	Duration   int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
	TokenUsage TokenUsage     `json:"token_usage,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
