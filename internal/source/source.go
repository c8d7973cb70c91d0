// Package source provides read-only aggregate access to ingested log tables.
// Scoring never scans rows in application code; every statistic the scorer
// needs is a single aggregate query issued through this interface.
package source

import (
	"context"
	"strings"
)

// TabularSource answers aggregate questions about a log table.
type TabularSource interface {
	// RowCount returns the total number of rows in the table.
	RowCount(ctx context.Context, table string) (int64, error)
	// DistinctCount returns the number of distinct non-null values in a column.
	DistinctCount(ctx context.Context, table, column string) (int64, error)
	// ModeCount returns the row count of the single most frequent value.
	ModeCount(ctx context.Context, table, column string) (int64, error)
	// PopulatedCount returns the number of rows where the column is neither
	// NULL nor the empty string. CSV-derived tables use '' for missing data.
	PopulatedCount(ctx context.Context, table, column string) (int64, error)

	TableExists(ctx context.Context, table string) (bool, error)
	ColumnExists(ctx context.Context, table, column string) (bool, error)
	// ListColumns returns column names in schema order.
	ListColumns(ctx context.Context, table string) ([]string, error)
}

// quoteIdent quotes a table or column identifier. Identifiers originate from
// imported log headers, so they cannot be bound as query parameters and must
// be escaped here.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
