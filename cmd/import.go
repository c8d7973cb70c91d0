package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/ir-cli/internal/ingest"
	"github.com/sells-group/ir-cli/internal/source"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Ingest M365 log exports into the case database",
	Long: `Loads CSV or XLSX log exports into the case database, one table per file.

Table names are derived from file names, so exports should be named after
their log type (sign_in_logs.csv, unified_audit_log.csv, ...). Headers are
normalized to snake_case columns; every row also keeps its raw JSON payload.

Examples:
  # Import a sign-in export
  ir-cli import sign_in_logs.csv

  # Import several exports at once
  ir-cli import sign_in_logs.csv unified_audit_log.xlsx

  # Import into an explicit table name
  ir-cli import export_20260812.csv --table sign_in_logs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("table", "", "target table name (single file only)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, _ := cmd.Flags().GetString("table")
	if table != "" && len(args) > 1 {
		return eris.New("import: --table requires exactly one file")
	}

	if cfg.Case.Driver != "sqlite" {
		return eris.New("import: only the sqlite case database supports imports")
	}
	src, err := source.NewSQLite(cfg.Case.Path)
	if err != nil {
		return err
	}
	defer src.Close() //nolint:errcheck

	if table != "" {
		res, err := ingest.ImportFile(ctx, src.DB(), args[0], table)
		if err != nil {
			return err
		}
		printImportResult(cmd, res)
		return nil
	}

	results, err := ingest.ImportFiles(ctx, src.DB(), args)
	for i := range results {
		printImportResult(cmd, &results[i])
	}
	return err
}

func printImportResult(cmd *cobra.Command, res *ingest.FileResult) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> table %q (%d rows, columns: %s)\n",
		res.Path, res.Table, res.Rows, strings.Join(res.Columns, ", "))
}
