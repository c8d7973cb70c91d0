// Package history persists investigation outcomes so future scoring can
// learn which fields actually held up during verification.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/ir-cli/internal/model"
)

// Store is the persistent record of past (case, log type, field) usage
// outcomes. The investigation workflow is the sole writer; scoring only
// reads aggregate success rates.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the history database at the given path
// and applies the schema. Opening is idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "history: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "history: exec %s", pragma)
		}
	}
	st := &Store{db: db}
	if err := st.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS field_reliability_history (
	id                      TEXT PRIMARY KEY,
	case_id                 TEXT NOT NULL,
	log_type                TEXT NOT NULL,
	field_name              TEXT NOT NULL,
	reliability_score       REAL NOT NULL,
	used_for_verification   INTEGER NOT NULL,
	verification_successful INTEGER,
	breach_detected         INTEGER,
	notes                   TEXT,
	created_at              DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(case_id, log_type, field_name)
);

CREATE INDEX IF NOT EXISTS idx_history_log_type_field
	ON field_reliability_history(log_type, field_name);
`

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "history: migrate")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordUsage inserts one usage outcome, replacing any prior record for the
// same (case_id, log_type, field_name). Returns the stored record with its
// assigned ID and timestamp.
func (s *Store) RecordUsage(ctx context.Context, rec model.FieldUsageRecord) (*model.FieldUsageRecord, error) {
	if rec.CaseID == "" || rec.LogType == "" || rec.FieldName == "" {
		return nil, eris.New("history: case_id, log_type, and field_name are required")
	}

	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO field_reliability_history
			(id, case_id, log_type, field_name, reliability_score,
			 used_for_verification, verification_successful, breach_detected, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(case_id, log_type, field_name) DO UPDATE SET
			id = excluded.id,
			reliability_score = excluded.reliability_score,
			used_for_verification = excluded.used_for_verification,
			verification_successful = excluded.verification_successful,
			breach_detected = excluded.breach_detected,
			notes = excluded.notes,
			created_at = excluded.created_at`,
		rec.ID, rec.CaseID, rec.LogType, rec.FieldName, rec.ReliabilityScore,
		rec.UsedForVerification, nullableBool(rec.VerificationSuccessful),
		nullableBool(rec.BreachDetected), rec.Notes, rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "history: record usage for %s/%s/%s", rec.CaseID, rec.LogType, rec.FieldName)
	}
	return &rec, nil
}

// SuccessRate returns the mean verification success rate for a
// (log_type, field_name) pair over records that were used for verification
// and have a recorded outcome. ok is false when no such records exist.
// Records for other log types never influence the result, even when the
// field name collides.
func (s *Store) SuccessRate(ctx context.Context, logType, fieldName string) (rate float64, ok bool, err error) {
	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT AVG(verification_successful)
		FROM field_reliability_history
		WHERE log_type = ? AND field_name = ?
		  AND used_for_verification = 1
		  AND verification_successful IS NOT NULL`,
		logType, fieldName,
	).Scan(&avg)
	if err != nil {
		return 0, false, eris.Wrapf(err, "history: success rate for %s.%s", logType, fieldName)
	}
	if !avg.Valid {
		return 0, false, nil
	}
	return avg.Float64, true, nil
}

// ListByCase returns all usage records stored for a case, newest first.
func (s *Store) ListByCase(ctx context.Context, caseID string) ([]model.FieldUsageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, log_type, field_name, reliability_score,
		       used_for_verification, verification_successful, breach_detected, notes, created_at
		FROM field_reliability_history
		WHERE case_id = ?
		ORDER BY created_at DESC`,
		caseID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "history: list records for case %s", caseID)
	}
	defer rows.Close()

	var recs []model.FieldUsageRecord
	for rows.Next() {
		var (
			rec          model.FieldUsageRecord
			used         int
			verification sql.NullBool
			breach       sql.NullBool
			notes        sql.NullString
		)
		err := rows.Scan(&rec.ID, &rec.CaseID, &rec.LogType, &rec.FieldName, &rec.ReliabilityScore,
			&used, &verification, &breach, &notes, &rec.CreatedAt)
		if err != nil {
			return nil, eris.Wrap(err, "history: scan record")
		}
		rec.UsedForVerification = used != 0
		if verification.Valid {
			v := verification.Bool
			rec.VerificationSuccessful = &v
		}
		if breach.Valid {
			b := breach.Bool
			rec.BreachDetected = &b
		}
		rec.Notes = notes.String
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "history: iterate records")
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
