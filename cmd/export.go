package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/deal-forensics/internal/model"
	"github.com/sells-group/deal-forensics/internal/store"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scorecard history to an .xlsx workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatusComplete,
			Limit:  10000,
		})
		if err != nil {
			return eris.Wrap(err, "export: list runs")
		}

		f, rows, err := buildScorecardWorkbook(runs)
		if err != nil {
			return err
		}
		if err := f.Save(exportOut); err != nil {
			return eris.Wrapf(err, "export: save %s", exportOut)
		}

		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.Int("rows", rows),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "scorecards.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}

var scorecardHeader = []string{
	"Run ID", "Deal", "Industry", "Value", "Stage",
	"Pricing Clarity", "Communication Quality", "Documentation Quality",
	"Competitive Risk", "Delivery Execution", "Final Deal Health",
	"Timeline Score", "Analyzed At",
}

// buildScorecardWorkbook builds the workbook, returning the number of data
// rows written. Runs without a stored result are skipped.
func buildScorecardWorkbook(runs []model.AnalysisRun) (*xlsx.File, int, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Scorecards")
	if err != nil {
		return nil, 0, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range scorecardHeader {
		header.AddCell().Value = h
	}

	var count int
	for _, r := range runs {
		if r.Result == nil {
			continue
		}
		sc := r.Result.Scorecard

		row := sheet.AddRow()
		row.AddCell().Value = r.ID
		row.AddCell().Value = r.Deal.Name
		row.AddCell().Value = r.Deal.Industry
		row.AddCell().SetFloat(r.Deal.Value)
		row.AddCell().Value = r.Deal.Stage
		row.AddCell().SetFloat(sc.PricingClarity)
		row.AddCell().SetFloat(sc.CommunicationQuality)
		row.AddCell().SetFloat(sc.DocumentationQuality)
		row.AddCell().SetFloat(sc.CompetitiveRisk)
		row.AddCell().SetFloat(sc.DeliveryExecution)
		row.AddCell().SetFloat(sc.FinalDealHealth)
		row.AddCell().SetFloat(r.Result.Timeline.TimelineScore)
		row.AddCell().Value = r.CreatedAt.Format("2006-01-02 15:04")
		count++
	}

	return f, count, nil
}
