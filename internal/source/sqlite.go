package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteSource implements TabularSource over a local case database using
// modernc.org/sqlite.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLite opens a SQLite case database at the given path and configures
// WAL mode with a bounded busy wait.
func NewSQLite(dsn string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "source: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "source: exec %s", pragma)
		}
	}
	return &SQLiteSource{db: db}, nil
}

// NewSQLiteFromDB wraps an already-open database handle. The caller retains
// ownership of the handle.
func NewSQLiteFromDB(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

// DB exposes the underlying handle for the ingest layer.
func (s *SQLiteSource) DB() *sql.DB {
	return s.db
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) RowCount(ctx context.Context, table string) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "source: row count for %s", table)
	}
	return n, nil
}

func (s *SQLiteSource) DistinctCount(ctx context.Context, table, column string) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", quoteIdent(column), quoteIdent(table))
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "source: distinct count for %s.%s", table, column)
	}
	return n, nil
}

func (s *SQLiteSource) ModeCount(ctx context.Context, table, column string) (int64, error) {
	query := fmt.Sprintf(
		"SELECT COUNT(*) AS n FROM %s GROUP BY %s ORDER BY n DESC LIMIT 1",
		quoteIdent(table), quoteIdent(column),
	)
	var n int64
	err := s.db.QueryRowContext(ctx, query).Scan(&n)
	if err == sql.ErrNoRows {
		// Empty table: no mode.
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "source: mode count for %s.%s", table, column)
	}
	return n, nil
}

func (s *SQLiteSource) PopulatedCount(ctx context.Context, table, column string) (int64, error) {
	col := quoteIdent(column)
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL AND %s != ''",
		quoteIdent(table), col, col,
	)
	var n int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "source: populated count for %s.%s", table, column)
	}
	return n, nil
}

func (s *SQLiteSource) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrapf(err, "source: table exists %s", table)
	}
	return n > 0, nil
}

func (s *SQLiteSource) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	cols, err := s.ListColumns(ctx, table)
	if err != nil {
		return false, err
	}
	for _, c := range cols {
		if c == column {
			return true, nil
		}
	}
	return false, nil
}

func (s *SQLiteSource) ListColumns(ctx context.Context, table string) ([]string, error) {
	// PRAGMA arguments cannot be bound, so the identifier is quoted inline.
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "source: table info %s", table)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, eris.Wrapf(err, "source: scan table info %s", table)
		}
		cols = append(cols, name)
	}
	return cols, eris.Wrapf(rows.Err(), "source: iterate table info %s", table)
}
