package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/deal-forensics/internal/config"
	"github.com/sells-group/deal-forensics/internal/dealdoc"
	"github.com/sells-group/deal-forensics/internal/embedcache"
	"github.com/sells-group/deal-forensics/internal/history"
	"github.com/sells-group/deal-forensics/internal/model"
	"github.com/sells-group/deal-forensics/internal/resilience"
	"github.com/sells-group/deal-forensics/internal/scorer"
	"github.com/sells-group/deal-forensics/internal/store"
	"github.com/sells-group/deal-forensics/pkg/anthropic"
)

// Pipeline orchestrates the four forensics stages over a single deal
// document: timeline, comparative, playbook, scoring.
type Pipeline struct {
	cfg     *config.Config
	store   store.Store
	ai      anthropic.Client
	history *history.Loader
	scorer  *scorer.Scorer
	embed   *embedcache.Cache
	retry   resilience.RetryConfig
	now     func() time.Time
}

// New creates a new Pipeline with all dependencies. The embedding cache may
// be nil; without it the historical corpus keeps its load order.
func New(cfg *config.Config, st store.Store, aiClient anthropic.Client, loader *history.Loader, sc *scorer.Scorer, embed *embedcache.Cache) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		store:   st,
		ai:      aiClient,
		history: loader,
		scorer:  sc,
		embed:   embed,
		retry: resilience.FromRetryConfig(
			cfg.Retry.MaxAttempts,
			cfg.Retry.InitialBackoffMs,
			cfg.Retry.MaxBackoffMs,
			cfg.Retry.Multiplier,
			cfg.Retry.JitterFraction,
		),
		now: time.Now,
	}
}

// Run executes the full forensics analysis for one deal document.
// Stage failures degrade to deterministic fallbacks; only run bookkeeping
// errors abort the analysis.
func (p *Pipeline) Run(ctx context.Context, document string) (*model.AnalysisResult, error) {
	deal := dealdoc.InferMetadata(document)
	log := zap.L().With(zap.String("deal", deal.Name))
	log.Info("pipeline: starting analysis")

	run, err := p.store.CreateRun(ctx, deal)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	result := &model.AnalysisResult{
		RunID: run.ID,
		Deal:  deal,
	}

	trackPhase := func(name string, fn func() (*model.PhaseResult, error)) {
		phase, phaseErr := p.store.CreatePhase(ctx, run.ID, name)
		if phaseErr != nil {
			log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
		}

		start := p.now()
		phaseResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.Name = name
		phaseResult.Duration = duration

		if fnErr != nil {
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			phaseResult.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if phase != nil {
			_ = p.store.CompletePhase(ctx, phase.ID, phaseResult)
		}
		result.Phases = append(result.Phases, *phaseResult)
	}

	dealSummary := SummarizeDeal(deal, document)
	var totalUsage model.TokenUsage

	// ===== Stage 1: Timeline =====
	setStatus(model.RunStatusTimeline)
	trackPhase("timeline", func() (*model.PhaseResult, error) {
		tl, usage := p.timelineStage(ctx, document)
		result.Timeline = tl
		totalUsage.Add(usage)
		return &model.PhaseResult{
			TokenUsage: usage,
			Metadata: map[string]any{
				"events":         len(tl.Events),
				"timeline_score": tl.TimelineScore,
			},
		}, nil
	})

	// ===== Stage 2: Comparative =====
	setStatus(model.RunStatusComparative)
	historical := p.history.Load()
	if recorded, listErr := p.store.ListDeals(ctx, 50); listErr == nil {
		historical = append(historical, recorded...)
	} else {
		log.Warn("pipeline: recorded deals unavailable", zap.Error(listErr))
	}
	historical = history.RankBySimilarity(p.embed, document, historical)
	trackPhase("comparative", func() (*model.PhaseResult, error) {
		cmp, usage := p.comparativeStage(ctx, dealSummary, result.Timeline, historical)
		result.Comparative = cmp
		totalUsage.Add(usage)
		return &model.PhaseResult{
			TokenUsage: usage,
			Metadata: map[string]any{
				"similar_deals":   len(cmp.SimilarDeals),
				"common_patterns": len(cmp.CommonPatterns),
			},
		}, nil
	})

	// ===== Stage 3: Playbook =====
	setStatus(model.RunStatusPlaybook)
	trackPhase("playbook", func() (*model.PhaseResult, error) {
		pb, usage := p.playbookStage(ctx, document, dealSummary, result.Timeline, result.Comparative)
		result.Playbook = pb
		totalUsage.Add(usage)
		return &model.PhaseResult{
			TokenUsage: usage,
			Metadata: map[string]any{
				"root_causes":     len(pb.WhatWentWrong),
				"recommendations": len(pb.Recommendations),
			},
		}, nil
	})

	// ===== Stage 4: Scoring (deterministic) =====
	setStatus(model.RunStatusScoring)
	trackPhase("scoring", func() (*model.PhaseResult, error) {
		result.Scorecard = p.scorer.Score(result.Timeline, result.Comparative, result.Playbook)
		return &model.PhaseResult{
			Metadata: map[string]any{
				"final_deal_health": result.Scorecard.FinalDealHealth,
			},
		}, nil
	})

	trackPhase("report", func() (*model.PhaseResult, error) {
		result.Report = FormatReport(deal, result)
		return &model.PhaseResult{}, nil
	})

	result.TotalUsage = totalUsage
	setStatus(model.RunStatusComplete)

	if saveErr := p.store.UpdateRunResult(ctx, run.ID, result); saveErr != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(saveErr))
	}

	// Feed the completed analysis back into the benchmark corpus.
	record := model.HistoricalDeal{
		DealName:          deal.Name,
		Industry:          deal.Industry,
		Value:             deal.Value,
		PrimaryLossReason: primaryLossReason(result.Playbook),
		TimelineScore:     result.Timeline.TimelineScore,
		CompetitorRisk:    result.Comparative.CompetitorRisk,
	}
	if insertErr := p.store.InsertDeal(ctx, record); insertErr != nil {
		log.Warn("pipeline: failed to record historical deal", zap.Error(insertErr))
	}

	log.Info("pipeline: analysis complete",
		zap.String("run_id", run.ID),
		zap.Float64("deal_health", result.Scorecard.FinalDealHealth),
		zap.Int64("input_tokens", totalUsage.InputTokens),
		zap.Int64("output_tokens", totalUsage.OutputTokens),
	)

	return result, nil
}

// WarmPromptCache fires one primer request per stage prompt so concurrent
// batch analyses hit a warm prompt cache instead of re-paying the shared
// system text. Failures are non-fatal.
func (p *Pipeline) WarmPromptCache(ctx context.Context) {
	prompts := []struct{ stage, text string }{
		{"timeline", timelinePrompt},
		{"comparative", comparativePrompt},
		{"playbook", playbookPrompt},
	}
	for _, pr := range prompts {
		req := anthropic.MessageRequest{
			Model:     p.cfg.Anthropic.SonnetModel,
			MaxTokens: 16,
			System:    anthropic.BuildCachedSystemBlocks(pr.text),
			Messages:  []anthropic.Message{{Role: "user", Content: "ok"}},
		}
		if _, err := anthropic.PrimerRequest(ctx, p.ai, req); err != nil {
			zap.L().Debug("primer request failed", zap.String("stage", pr.stage), zap.Error(err))
		}
	}
}

// SummarizeDeal builds a short deal summary line used as prompt context.
func SummarizeDeal(deal model.Deal, document string) string {
	summary := "Deal: " + deal.Name + " | Industry: " + deal.Industry + " | Stage: " + deal.Stage
	if deal.Owner != "" {
		summary += " | Owner: " + deal.Owner
	}
	excerpt := document
	if len(excerpt) > 1500 {
		excerpt = excerpt[:1500]
	}
	return summary + "\n\n" + excerpt
}

// primaryLossReason picks the first root cause as the canonical loss reason.
func primaryLossReason(pb model.Playbook) string {
	if len(pb.WhatWentWrong) > 0 {
		return pb.WhatWentWrong[0]
	}
	return "See analysis report"
}
