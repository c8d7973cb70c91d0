package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/ir-cli/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single field's verification reliability",
	Long: `Scores one column of an ingested log table across five dimensions:
uniformity, discriminatory power, population rate, historical success rate,
and semantic preference.

Examples:
  # Score the status column of the sign-in table
  ir-cli score --table sign_in_logs --field status`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("table", "", "log table to score against")
	f.String("field", "", "column to score")
	_ = scoreCmd.MarkFlagRequired("table")
	_ = scoreCmd.MarkFlagRequired("field")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, _ := cmd.Flags().GetString("table")
	field, _ := cmd.Flags().GetString("field")

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

	score, err := scorer.CalculateReliabilityScore(ctx, src, table, field, historyReader(hist))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s.%s: overall %.3f\n", table, field, score.OverallScore)
	fmt.Fprintf(out, "  uniformity            %.3f\n", score.UniformityScore)
	fmt.Fprintf(out, "  discriminatory power  %.3f\n", score.DiscriminatoryPower)
	fmt.Fprintf(out, "  population rate       %.3f\n", score.PopulationRate)
	fmt.Fprintf(out, "  historical success    %.3f\n", score.HistoricalSuccessRate)
	fmt.Fprintf(out, "  semantic preference   %.3f\n", score.SemanticPreference)
	for _, w := range score.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	for _, r := range score.Recommendations {
		fmt.Fprintf(out, "  %s\n", r)
	}
	return nil
}
