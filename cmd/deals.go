package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/deal-forensics/internal/model"
)

var dealsLimit int

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "List the historical deal corpus",
	Long:  "Lists historical deals recorded by completed analyses, used as benchmark material for comparative runs.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		deals, err := st.ListDeals(ctx, dealsLimit)
		if err != nil {
			return eris.Wrap(err, "list deals")
		}

		if len(deals) == 0 {
			fmt.Fprintln(os.Stderr, "No historical deals recorded.")
			return nil
		}

		formatDealsList(os.Stdout, deals)
		return nil
	},
}

func init() {
	dealsCmd.Flags().IntVar(&dealsLimit, "limit", 50, "max number of deals to display")
	rootCmd.AddCommand(dealsCmd)
}

// formatDealsList writes a tabular list of historical deals to w.
func formatDealsList(out io.Writer, deals []model.HistoricalDeal) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DEAL\tINDUSTRY\tVALUE\tTIMELINE\tCOMP_RISK\tLOSS_REASON")
	_, _ = fmt.Fprintln(w, "----\t--------\t-----\t--------\t---------\t-----------")

	for _, d := range deals {
		reason := d.PrimaryLossReason
		if len(reason) > 40 {
			reason = reason[:37] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t$%.0f\t%.1f\t%.2f\t%s\n",
			d.DealName,
			d.Industry,
			d.Value,
			d.TimelineScore,
			d.CompetitorRisk,
			reason,
		)
	}
	_ = w.Flush()
}
