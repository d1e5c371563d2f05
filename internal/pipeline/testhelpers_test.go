package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-forensics/internal/config"
	"github.com/sells-group/deal-forensics/internal/history"
	"github.com/sells-group/deal-forensics/internal/scorer"
	"github.com/sells-group/deal-forensics/internal/store"
)

// newTestPipeline wires a pipeline with a temp SQLite store, the built-in
// scorer vocabulary, and the supplied mock client.
func newTestPipeline(t *testing.T, ai *mockAnthropicClient) *Pipeline {
	t.Helper()

	dir := t.TempDir()
	st, err := store.NewSQLite(filepath.Join(dir, "forensics.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{}
	cfg.Anthropic.SonnetModel = "claude-sonnet-4-5-20250929"
	cfg.Anthropic.MaxTokens = 4096
	cfg.Retry.MaxAttempts = 1
	cfg.Retry.InitialBackoffMs = 1

	loader := history.NewLoader(filepath.Join(dir, "missing.json"), filepath.Join(dir, "deals"))
	return New(cfg, st, ai, loader, scorer.New(scorer.DefaultVocabulary()), nil)
}

// sampleDocument is a deal narrative long enough for the full analysis path.
const sampleDocument = `Deal Name: Orion Logistics Platform Migration
Industry: Technology
Deal Value: $480,000
Owner: Dana Whitfield
Stage: Closed Lost
Close Date: 2024-10-18

Initial discovery call happened on 2024-06-03 and requirements gathering
went smoothly. The first pricing discussion on 2024-06-24 surfaced a budget
gap: 15% between our quote and their ceiling. A discount was offered
verbally during the call, with written follow-up promised but never sent.

Delivery planning started in late July, but the rollout timeline stayed
vague (customer said "sometime in Q2"). Competitor NimbusWare Systems was
mentioned during negotiations. An escalation on 2024-09-10 over delayed
responses was never fully resolved, and on 2024-10-18 the customer told us
they had chosen the alternative vendor.`
