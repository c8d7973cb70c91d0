package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool used by PostgresSource. pgxmock
// satisfies it in tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource implements TabularSource over a shared team case database.
type PostgresSource struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresSource with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresSource, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "source: parse postgres config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "source: connect postgres")
	}
	return &PostgresSource{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, primarily for tests.
func NewPostgresFromPool(pool Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (s *PostgresSource) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

func (s *PostgresSource) RowCount(ctx context.Context, table string) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "source: row count for %s", table)
	}
	return n, nil
}

func (s *PostgresSource) DistinctCount(ctx context.Context, table, column string) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", quoteIdent(column), quoteIdent(table))
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "source: distinct count for %s.%s", table, column)
	}
	return n, nil
}

func (s *PostgresSource) ModeCount(ctx context.Context, table, column string) (int64, error) {
	query := fmt.Sprintf(
		"SELECT COUNT(*) AS n FROM %s GROUP BY %s ORDER BY n DESC LIMIT 1",
		quoteIdent(table), quoteIdent(column),
	)
	var n int64
	err := s.pool.QueryRow(ctx, query).Scan(&n)
	if eris.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "source: mode count for %s.%s", table, column)
	}
	return n, nil
}

func (s *PostgresSource) PopulatedCount(ctx context.Context, table, column string) (int64, error) {
	col := quoteIdent(column)
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL AND %s::text != ''",
		quoteIdent(table), col, col,
	)
	var n int64
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "source: populated count for %s.%s", table, column)
	}
	return n, nil
}

func (s *PostgresSource) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`,
		table,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrapf(err, "source: table exists %s", table)
	}
	return n > 0, nil
}

func (s *PostgresSource) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2`,
		table, column,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrapf(err, "source: column exists %s.%s", table, column)
	}
	return n > 0, nil
}

func (s *PostgresSource) ListColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = $1
		 ORDER BY ordinal_position`,
		table,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "source: list columns %s", table)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrapf(err, "source: scan column name %s", table)
		}
		cols = append(cols, name)
	}
	return cols, eris.Wrapf(rows.Err(), "source: iterate columns %s", table)
}
