package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/deal-forensics/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "deal-forensics",
	Short: "Post-mortem analysis pipeline for lost deals",
	Long:  "Reconstructs deal timelines from raw documents, benchmarks against historical deals, generates remediation playbooks, and scores deal health with deterministic heuristics.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
