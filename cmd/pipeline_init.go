package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/deal-forensics/internal/embedcache"
	"github.com/sells-group/deal-forensics/internal/history"
	"github.com/sells-group/deal-forensics/internal/pipeline"
	"github.com/sells-group/deal-forensics/internal/scorer"
	"github.com/sells-group/deal-forensics/internal/store"
	anthropicpkg "github.com/sells-group/deal-forensics/pkg/anthropic"
)

// pipelineEnv holds the initialized store, clients, and pipeline needed by
// the analyze/batch/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "forensics.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: int32(cfg.Store.MaxConns),
			MinConns: int32(cfg.Store.MinConns),
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline validates config for mode, sets up the store and the
// Anthropic client, and builds the Pipeline. Callers should defer
// env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key, cfg.Anthropic.RPS)
	loader := history.NewLoader(cfg.History.JSONPath, cfg.History.DealsDir)

	vocab := scorer.DefaultVocabulary()
	if cfg.Scorer.VocabPath != "" {
		vocab, err = scorer.LoadVocabulary(cfg.Scorer.VocabPath)
		if err != nil {
			zap.L().Warn("vocabulary overrides not loaded, using built-in lists", zap.Error(err))
			vocab = scorer.DefaultVocabulary()
		}
	}

	// The embedding producer runs out of band; a missing or unopenable
	// cache just disables similarity ranking.
	var embed *embedcache.Cache
	if cfg.Embedding.CachePath != "" {
		embed, err = embedcache.New(cfg.Embedding.CachePath)
		if err != nil {
			zap.L().Warn("embedding cache unavailable", zap.Error(err))
			embed = nil
		}
	}

	p := pipeline.New(cfg, st, anthropicClient, loader, scorer.New(vocab), embed)

	return &pipelineEnv{
		Store:    st,
		Pipeline: p,
	}, nil
}
