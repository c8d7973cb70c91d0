package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteSource {
	t.Helper()
	src, err := NewSQLite(filepath.Join(t.TempDir(), "case.db"))
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })
	return src
}

func seedSignInLogs(t *testing.T, src *SQLiteSource) {
	t.Helper()
	_, err := src.DB().Exec(`
		CREATE TABLE sign_in_logs (
			id TEXT PRIMARY KEY,
			status TEXT,
			error_code TEXT,
			user_agent TEXT
		)`)
	require.NoError(t, err)

	rows := []struct {
		id, status, errorCode, userAgent string
	}{
		{"1", "Success", "0", "Mozilla/5.0"},
		{"2", "Success", "0", "Mozilla/5.0"},
		{"3", "Success", "0", ""},
		{"4", "Failure", "50126", "Mozilla/5.0"},
		{"5", "Failure", "50053", ""},
		{"6", "Success", "0", ""},
	}
	for _, r := range rows {
		_, err := src.DB().Exec(
			`INSERT INTO sign_in_logs (id, status, error_code, user_agent) VALUES (?, ?, ?, ?)`,
			r.id, r.status, r.errorCode, r.userAgent,
		)
		require.NoError(t, err)
	}
}

func TestSQLiteSource_Counts(t *testing.T) {
	src := newTestSQLite(t)
	seedSignInLogs(t, src)
	ctx := context.Background()

	n, err := src.RowCount(ctx, "sign_in_logs")
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	n, err = src.DistinctCount(ctx, "sign_in_logs", "status")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = src.DistinctCount(ctx, "sign_in_logs", "error_code")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = src.ModeCount(ctx, "sign_in_logs", "status")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestSQLiteSource_PopulatedCountTreatsEmptyStringAsMissing(t *testing.T) {
	src := newTestSQLite(t)
	seedSignInLogs(t, src)

	n, err := src.PopulatedCount(context.Background(), "sign_in_logs", "user_agent")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSQLiteSource_ModeCountEmptyTable(t *testing.T) {
	src := newTestSQLite(t)
	_, err := src.DB().Exec(`CREATE TABLE empty_log (status TEXT)`)
	require.NoError(t, err)

	n, err := src.ModeCount(context.Background(), "empty_log", "status")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLiteSource_Schema(t *testing.T) {
	src := newTestSQLite(t)
	seedSignInLogs(t, src)
	ctx := context.Background()

	ok, err := src.TableExists(ctx, "sign_in_logs")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = src.TableExists(ctx, "mailbox_audit")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = src.ColumnExists(ctx, "sign_in_logs", "status")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = src.ColumnExists(ctx, "sign_in_logs", "conditional_access")
	require.NoError(t, err)
	assert.False(t, ok)

	cols, err := src.ListColumns(ctx, "sign_in_logs")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "status", "error_code", "user_agent"}, cols)

	cols, err = src.ListColumns(ctx, "no_such_table")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestSQLiteSource_QuotedIdentifiers(t *testing.T) {
	// Imported headers can collide with SQL keywords; the source must quote
	// identifiers everywhere.
	src := newTestSQLite(t)
	_, err := src.DB().Exec(`CREATE TABLE "order" ("group" TEXT)`)
	require.NoError(t, err)
	_, err = src.DB().Exec(`INSERT INTO "order" ("group") VALUES ('a'), ('a'), ('b')`)
	require.NoError(t, err)
	ctx := context.Background()

	n, err := src.RowCount(ctx, "order")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = src.DistinctCount(ctx, "order", "group")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = src.ModeCount(ctx, "order", "group")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"status"`, quoteIdent("status"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}
