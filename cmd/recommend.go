package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/ir-cli/internal/discovery"
	"github.com/sells-group/ir-cli/internal/model"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend the most reliable verification field for a log table",
	Long: `Discovers candidate columns by keyword, scores each across five
reliability dimensions, and recommends the best one with reasoning.
Confidence cutoffs adapt to dataset size, null density, log type, and case
severity.

Examples:
  # Recommend a field for the sign-in table
  ir-cli recommend --table sign_in_logs

  # Breach investigation: lower thresholds so more candidates surface
  ir-cli recommend --table unified_audit_log --severity suspected_breach`,
	RunE: runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.String("table", "", "log table to analyze")
	f.String("log-type", "", "log type (defaults to the table name)")
	f.String("severity", "", "case severity: routine, suspected_breach, or confirmed_breach")
	_ = recommendCmd.MarkFlagRequired("table")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, _ := cmd.Flags().GetString("table")
	logType, _ := cmd.Flags().GetString("log-type")
	if logType == "" {
		logType = table
	}
	severityStr, _ := cmd.Flags().GetString("severity")
	severity, err := model.ParseCaseSeverity(severityStr)
	if err != nil {
		return err
	}

	src, cleanup, err := openCaseSource(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	hist, closeHist, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHist()

	tctx, err := discovery.ExtractThresholdContext(ctx, src, table, logType, severity)
	if err != nil {
		return err
	}

	rec, err := discovery.RecommendBestField(ctx, src, table, logType, historyReader(hist), tctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "recommended field: %s (%s)\n", rec.Best.Score.FieldName, rec.Best.Confidence)
	fmt.Fprintf(out, "%s\n\n", rec.Reasoning)

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tFIELD\tSCORE\tCONFIDENCE")
	for _, r := range rec.AllCandidates {
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%s\n", r.Rank, r.Score.FieldName, r.Score.OverallScore, r.Confidence)
	}
	return w.Flush()
}
