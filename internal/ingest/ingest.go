// Package ingest loads M365 log exports (CSV or XLSX) into case database
// tables. Each export becomes one table named after its log type, with all
// data columns stored as TEXT plus bookkeeping columns (id, raw_json,
// imported_at).
package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FileResult describes one imported export.
type FileResult struct {
	Path    string   `json:"path"`
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Rows    int64    `json:"rows"`
}

type parsedFile struct {
	path   string
	table  string
	header []string
	rows   [][]string
}

// ImportFile ingests a single export into the given table. When table is
// empty the table name is derived from the file name, so
// sign_in_logs.csv lands in a table usable directly as its log type.
func ImportFile(ctx context.Context, db *sql.DB, path, table string) (*FileResult, error) {
	pf, err := parseFile(ctx, path, table)
	if err != nil {
		return nil, err
	}
	return insertParsed(ctx, db, pf)
}

// ImportFiles ingests multiple exports. Files are parsed concurrently;
// inserts run sequentially because SQLite allows a single writer.
func ImportFiles(ctx context.Context, db *sql.DB, paths []string) ([]FileResult, error) {
	parsed := make([]*parsedFile, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			pf, err := parseFile(gctx, path, "")
			if err != nil {
				return err
			}
			parsed[i] = pf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(parsed))
	for _, pf := range parsed {
		res, err := insertParsed(ctx, db, pf)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

func parseFile(ctx context.Context, path, table string) (*parsedFile, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		header, rows, err = readCSV(ctx, path)
	case ".xlsx":
		header, rows, err = readXLSX(path)
	default:
		return nil, eris.Errorf("ingest: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, eris.Errorf("ingest: %s has no header row", path)
	}

	if table == "" {
		table = normalizeIdent(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}

	return &parsedFile{
		path:   path,
		table:  table,
		header: normalizeHeader(header),
		rows:   rows,
	}, nil
}

func insertParsed(ctx context.Context, db *sql.DB, pf *parsedFile) (*FileResult, error) {
	if err := createTable(ctx, db, pf.table, pf.header); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: begin tx for %s", pf.table)
	}
	defer tx.Rollback() //nolint:errcheck

	insertSQL := buildInsert(pf.table, pf.header)
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: prepare insert for %s", pf.table)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var inserted int64
	for _, row := range pf.rows {
		args := make([]any, 0, len(pf.header)+3)
		args = append(args, uuid.New().String())

		raw := make(map[string]string, len(pf.header))
		for i, col := range pf.header {
			var v any
			if i < len(row) {
				raw[col] = row[i]
				v = row[i]
			}
			args = append(args, v)
		}
		rawJSON, err := json.Marshal(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: marshal raw row for %s", pf.table)
		}
		args = append(args, string(rawJSON), now)

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, eris.Wrapf(err, "ingest: insert row %d into %s", inserted+1, pf.table)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrapf(err, "ingest: commit %s", pf.table)
	}

	zap.L().Info("ingest: imported file",
		zap.String("path", pf.path),
		zap.String("table", pf.table),
		zap.Int64("rows", inserted),
	)
	return &FileResult{Path: pf.path, Table: pf.table, Columns: pf.header, Rows: inserted}, nil
}

func createTable(ctx context.Context, db *sql.DB, table string, cols []string) error {
	defs := make([]string, 0, len(cols)+3)
	defs = append(defs, `"id" TEXT PRIMARY KEY`)
	for _, col := range cols {
		defs = append(defs, fmt.Sprintf("%q TEXT", col))
	}
	defs = append(defs, `"raw_json" TEXT`, `"imported_at" DATETIME NOT NULL`)

	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", table, strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return eris.Wrapf(err, "ingest: create table %s", table)
	}
	return nil
}

func buildInsert(table string, cols []string) string {
	quoted := make([]string, 0, len(cols)+3)
	quoted = append(quoted, `"id"`)
	for _, col := range cols {
		quoted = append(quoted, fmt.Sprintf("%q", col))
	}
	quoted = append(quoted, `"raw_json"`, `"imported_at"`)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(quoted)), ", ")
	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", table, strings.Join(quoted, ", "), placeholders)
}

// normalizeHeader converts export headers to snake_case identifiers and
// disambiguates duplicates.
func normalizeHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	cols := make([]string, len(header))
	for i, h := range header {
		col := normalizeIdent(h)
		if col == "" {
			col = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[col]; n > 0 {
			col = fmt.Sprintf("%s_%d", col, n+1)
		}
		seen[normalizeIdent(h)]++
		cols[i] = col
	}
	return cols
}

// normalizeIdent lowercases and collapses every run of non-alphanumeric
// characters to a single underscore.
func normalizeIdent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true // trims leading separators
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
