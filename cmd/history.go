package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/ir-cli/internal/model"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Record and query investigation outcomes",
}

var historyRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record how a field performed in a concluded investigation",
	Long: `Stores one outcome per (case, log type, field). Recording the same
combination again replaces the earlier outcome, so results can be corrected
after re-analysis.

Examples:
  # The status field verified the compromise
  ir-cli history record --case IR-2026-041 --log-type sign_in_logs \
    --field status --score 0.82 --used --success true --breach true

  # The field was chosen but verification was inconclusive
  ir-cli history record --case IR-2026-041 --log-type unified_audit_log \
    --field result_status --score 0.64 --used`,
	RunE: runHistoryRecord,
}

var historyRateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Show the historical success rate for a field",
	RunE:  runHistoryRate,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded outcomes for a case",
	RunE:  runHistoryList,
}

func init() {
	f := historyRecordCmd.Flags()
	f.String("case", "", "case identifier")
	f.String("log-type", "", "log type the field belongs to")
	f.String("field", "", "field name")
	f.Float64("score", 0, "reliability score at time of use")
	f.Bool("used", false, "field was used for verification")
	f.String("success", "", "verification outcome: true or false (omit if unknown)")
	f.String("breach", "", "breach detected: true or false (omit if unknown)")
	f.String("notes", "", "free-form notes")
	_ = historyRecordCmd.MarkFlagRequired("case")
	_ = historyRecordCmd.MarkFlagRequired("log-type")
	_ = historyRecordCmd.MarkFlagRequired("field")

	historyRateCmd.Flags().String("log-type", "", "log type")
	historyRateCmd.Flags().String("field", "", "field name")
	_ = historyRateCmd.MarkFlagRequired("log-type")
	_ = historyRateCmd.MarkFlagRequired("field")

	historyListCmd.Flags().String("case", "", "case identifier")
	_ = historyListCmd.MarkFlagRequired("case")

	historyCmd.AddCommand(historyRecordCmd, historyRateCmd, historyListCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryRecord(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeHist, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHist()
	if st == nil {
		return eris.New("history: no history store configured (set history.path)")
	}

	caseID, _ := cmd.Flags().GetString("case")
	logType, _ := cmd.Flags().GetString("log-type")
	field, _ := cmd.Flags().GetString("field")
	score, _ := cmd.Flags().GetFloat64("score")
	used, _ := cmd.Flags().GetBool("used")
	notes, _ := cmd.Flags().GetString("notes")

	success, err := triStateFlag(cmd, "success")
	if err != nil {
		return err
	}
	breach, err := triStateFlag(cmd, "breach")
	if err != nil {
		return err
	}

	rec, err := st.RecordUsage(ctx, model.FieldUsageRecord{
		CaseID:                 caseID,
		LogType:                logType,
		FieldName:              field,
		ReliabilityScore:       score,
		UsedForVerification:    used,
		VerificationSuccessful: success,
		BreachDetected:         breach,
		Notes:                  notes,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "recorded %s/%s/%s (id %s)\n", rec.CaseID, rec.LogType, rec.FieldName, rec.ID)
	return nil
}

func runHistoryRate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeHist, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHist()
	if st == nil {
		return eris.New("history: no history store configured (set history.path)")
	}

	logType, _ := cmd.Flags().GetString("log-type")
	field, _ := cmd.Flags().GetString("field")

	rate, ok, err := st.SuccessRate(ctx, logType, field)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "%s.%s: no recorded outcomes\n", logType, field)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s.%s: %.0f%% verification success\n", logType, field, rate*100)
	return nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeHist, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHist()
	if st == nil {
		return eris.New("history: no history store configured (set history.path)")
	}

	caseID, _ := cmd.Flags().GetString("case")
	recs, err := st.ListByCase(ctx, caseID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rec := range recs {
		outcome := "outcome unknown"
		if rec.VerificationSuccessful != nil {
			if *rec.VerificationSuccessful {
				outcome = "verified"
			} else {
				outcome = "verification failed"
			}
		}
		fmt.Fprintf(out, "%s  %s.%s  score %.2f  %s\n",
			rec.CreatedAt.Format("2006-01-02"), rec.LogType, rec.FieldName, rec.ReliabilityScore, outcome)
	}
	return nil
}

// triStateFlag parses an optional boolean flag where absence means unknown.
func triStateFlag(cmd *cobra.Command, name string) (*bool, error) {
	val, _ := cmd.Flags().GetString(name)
	switch val {
	case "":
		return nil, nil
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	default:
		return nil, eris.Errorf("history: --%s must be true or false, got %q", name, val)
	}
}
