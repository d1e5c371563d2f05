package store

import (
	"context"

	"github.com/sells-group/deal-forensics/internal/model"
)

// RunFilter specifies criteria for listing analysis runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	DealName string          `json:"deal_name,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the forensics pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, deal model.Deal) (*model.AnalysisRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.AnalysisResult) error
	GetRun(ctx context.Context, runID string) (*model.AnalysisRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.AnalysisRun, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error

	// Historical deal corpus. Completed analyses feed back in as
	// benchmark material for future comparative runs.
	InsertDeal(ctx context.Context, deal model.HistoricalDeal) error
	ListDeals(ctx context.Context, limit int) ([]model.HistoricalDeal, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
