package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/deal-forensics/internal/model"
)

var batchLimit int

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyze every deal document in a directory",
	Long:  "Runs the full forensics pipeline over each .txt/.md file in the directory, bounded by batch.max_concurrent_deals.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		docs, err := collectDocuments(args[0])
		if err != nil {
			return err
		}

		return processBatch(ctx, docs, batchLimit, cfg.Batch.MaxConcurrentDeals, func(ctx context.Context, document string) (*model.AnalysisResult, error) {
			return env.Pipeline.Run(ctx, document)
		}, env.Pipeline.WarmPromptCache)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max number of documents to process")
	rootCmd.AddCommand(batchCmd)
}

// collectDocuments lists .txt and .md files directly under dir, sorted by name.
func collectDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "read document dir %s", dir)
	}

	var docs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md":
			docs = append(docs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(docs)
	return docs, nil
}

// analyzeFunc is the callback signature for running analysis on one document.
type analyzeFunc func(ctx context.Context, document string) (*model.AnalysisResult, error)

// processBatch applies limit, warms the prompt cache once, then analyzes
// documents concurrently. Individual failures do not abort the batch.
func processBatch(ctx context.Context, docs []string, limit, concurrency int, analyze analyzeFunc, warm func(context.Context)) error {
	if len(docs) == 0 {
		zap.L().Info("no deal documents found")
		return nil
	}

	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("documents", len(docs)),
		zap.Int("concurrency", concurrency),
	)

	if warm != nil {
		warm(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, path := range docs {
		g.Go(func() error {
			log := zap.L().With(zap.String("document", path))

			raw, err := os.ReadFile(path)
			if err != nil {
				failed.Add(1)
				log.Error("read document failed", zap.Error(err))
				return nil
			}

			result, err := analyze(gctx, string(raw))
			if err != nil {
				failed.Add(1)
				log.Error("analysis failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("analysis complete",
				zap.String("deal", result.Deal.Name),
				zap.Float64("deal_health", result.Scorecard.FinalDealHealth),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
