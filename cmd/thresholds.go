package main

import (
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/ir-cli/internal/discovery"
	"github.com/sells-group/ir-cli/internal/model"
	"github.com/sells-group/ir-cli/internal/scorer"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Preview the dynamic confidence thresholds for a table",
	Long: `Shows the HIGH/MEDIUM confidence cutoffs that recommend would apply,
including every adjustment derived from the table's size, null density,
log type, and the case severity.

Examples:
  ir-cli thresholds --table sign_in_logs
  ir-cli thresholds --table legacy_auth_logs --severity confirmed_breach`,
	RunE: runThresholds,
}

func init() {
	f := thresholdsCmd.Flags()
	f.String("table", "", "log table to analyze")
	f.String("log-type", "", "log type (defaults to the table name)")
	f.String("severity", "", "case severity: routine, suspected_breach, or confirmed_breach")
	_ = thresholdsCmd.MarkFlagRequired("table")

	rootCmd.AddCommand(thresholdsCmd)
}

func runThresholds(cmd *cobra.Command, _ []string) error {
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

	tctx, err := discovery.ExtractThresholdContext(ctx, src, table, logType, severity)
	if err != nil {
		return err
	}
	dt := scorer.CalculateDynamicThresholds(*tctx)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "context: %d rows, %.1f%% null rate, log type %s, severity %s\n",
		tctx.RecordCount, tctx.NullRate*100, tctx.LogType, tctx.CaseSeverity)
	fmt.Fprintf(out, "high threshold:   %.3f\n", dt.HighThreshold)
	fmt.Fprintf(out, "medium threshold: %.3f\n", dt.MediumThreshold)

	factors := make([]string, 0, len(dt.Adjustments))
	for factor := range dt.Adjustments {
		factors = append(factors, factor)
	}
	sort.Strings(factors)
	for _, factor := range factors {
		fmt.Fprintf(out, "  %-14s %+.3f\n", factor, dt.Adjustments[factor])
	}
	fmt.Fprintf(out, "reasoning: %s\n", dt.Reasoning)
	return nil
}
