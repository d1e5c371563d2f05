package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-forensics/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "forensics.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func testDeal() model.Deal {
	return model.Deal{
		Name:     "Acme ERP Replacement",
		Owner:    "Jordan Blake",
		Industry: "Manufacturing",
		Value:    2_500_000,
		Stage:    "Closed Lost",
	}
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testDeal())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "Acme ERP Replacement", got.Deal.Name)
	assert.Nil(t, got.Result)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testDeal())
	require.NoError(t, err)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusTimeline))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusTimeline, got.Status)

	assert.Error(t, s.UpdateRunStatus(ctx, "missing", model.RunStatusFailed))
}

func TestSQLite_UpdateRunResult(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testDeal())
	require.NoError(t, err)

	result := &model.AnalysisResult{
		RunID: run.ID,
		Deal:  testDeal(),
		Scorecard: model.Scorecard{
			PricingClarity:  7.5,
			FinalDealHealth: 6.8,
		},
	}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 6.8, got.Result.Scorecard.FinalDealHealth)
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, testDeal())
	require.NoError(t, err)

	other := testDeal()
	other.Name = "Globex Data Warehouse"
	second, err := s.CreateRun(ctx, other)
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, second.ID, model.RunStatusFailed))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, second.ID, failed[0].ID)

	byName, err := s.ListRuns(ctx, RunFilter{DealName: "Acme ERP Replacement"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, first.ID, byName[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_Phases(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testDeal())
	require.NoError(t, err)

	phase, err := s.CreatePhase(ctx, run.ID, "timeline")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseStatusRunning, phase.Status)

	require.NoError(t, s.CompletePhase(ctx, phase.ID, &model.PhaseResult{
		Name:     "timeline",
		Status:   model.PhaseStatusComplete,
		Duration: 1200,
	}))

	assert.Error(t, s.CompletePhase(ctx, "missing", &model.PhaseResult{Status: model.PhaseStatusFailed}))
}

func TestSQLite_HistoricalDeals(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.InsertDeal(ctx, model.HistoricalDeal{
		DealName:       "Initech Migration",
		Industry:       "Financial",
		TimelineScore:  6.5,
		CompetitorRisk: 0.4,
	}))
	require.NoError(t, s.InsertDeal(ctx, model.HistoricalDeal{
		DealName:       "Globex Data Warehouse",
		Industry:       "Technology",
		TimelineScore:  5.0,
		CompetitorRisk: 0.8,
	}))

	deals, err := s.ListDeals(ctx, 10)
	require.NoError(t, err)
	require.Len(t, deals, 2)

	names := []string{deals[0].DealName, deals[1].DealName}
	assert.Contains(t, names, "Initech Migration")
	assert.Contains(t, names, "Globex Data Warehouse")

	one, err := s.ListDeals(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
