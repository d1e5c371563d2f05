package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <document>",
	Short: "Run forensics analysis on a single deal document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read document %s", args[0])
		}

		result, err := env.Pipeline.Run(ctx, string(raw))
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("analysis complete",
			zap.String("deal", result.Deal.Name),
			zap.Float64("deal_health", result.Scorecard.FinalDealHealth),
			zap.Int64("input_tokens", result.TotalUsage.InputTokens),
			zap.Int64("output_tokens", result.TotalUsage.OutputTokens),
		)

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Println(result.Report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON instead of the report")
	rootCmd.AddCommand(analyzeCmd)
}
