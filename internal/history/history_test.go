package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ir-cli/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func boolPtr(b bool) *bool { return &b }

func record(caseID, logType, field string, success *bool) model.FieldUsageRecord {
	return model.FieldUsageRecord{
		CaseID:                 caseID,
		LogType:                logType,
		FieldName:              field,
		ReliabilityScore:       0.75,
		UsedForVerification:    true,
		VerificationSuccessful: success,
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	st, err := Open(path)
	require.NoError(t, err)
	_, err = st.RecordUsage(context.Background(), record("case-1", "sign_in_logs", "status", boolPtr(true)))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// Reopening must not clobber existing records.
	st2, err := Open(path)
	require.NoError(t, err)
	defer st2.Close()

	recs, err := st2.ListByCase(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRecordUsage_Validation(t *testing.T) {
	st := newTestStore(t)

	for _, rec := range []model.FieldUsageRecord{
		{LogType: "sign_in_logs", FieldName: "status"},
		{CaseID: "case-1", FieldName: "status"},
		{CaseID: "case-1", LogType: "sign_in_logs"},
	} {
		_, err := st.RecordUsage(context.Background(), rec)
		assert.Error(t, err)
	}
}

func TestRecordUsage_AssignsIDAndTimestamp(t *testing.T) {
	st := newTestStore(t)

	got, err := st.RecordUsage(context.Background(), record("case-1", "sign_in_logs", "status", boolPtr(true)))
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRecordUsage_UpsertReplacesPriorOutcome(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.RecordUsage(ctx, record("case-1", "sign_in_logs", "status", boolPtr(false)))
	require.NoError(t, err)
	_, err = st.RecordUsage(ctx, record("case-1", "sign_in_logs", "status", boolPtr(true)))
	require.NoError(t, err)

	recs, err := st.ListByCase(ctx, "case-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].VerificationSuccessful)
	assert.True(t, *recs[0].VerificationSuccessful)

	rate, ok, err := st.SuccessRate(ctx, "sign_in_logs", "status")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.0, rate, 0.001)
}

func TestSuccessRate_NoRecords(t *testing.T) {
	st := newTestStore(t)

	_, ok, err := st.SuccessRate(context.Background(), "sign_in_logs", "status")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSuccessRate_AveragesOutcomes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	outcomes := []bool{true, true, true, false}
	for i, success := range outcomes {
		caseID := "case-" + string(rune('a'+i))
		_, err := st.RecordUsage(ctx, record(caseID, "sign_in_logs", "status", boolPtr(success)))
		require.NoError(t, err)
	}

	rate, ok, err := st.SuccessRate(ctx, "sign_in_logs", "status")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.75, rate, 0.001)
}

func TestSuccessRate_IsolatedByLogType(t *testing.T) {
	// Field names repeat across log types. A perfect record under one log
	// type must not leak into another log type's rate.
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		caseID := "case-" + string(rune('a'+i))
		_, err := st.RecordUsage(ctx, record(caseID, "sign_in_logs", "status", boolPtr(true)))
		require.NoError(t, err)
	}
	_, err := st.RecordUsage(ctx, record("case-z", "unified_audit_log", "status", boolPtr(false)))
	require.NoError(t, err)

	rate, ok, err := st.SuccessRate(ctx, "sign_in_logs", "status")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.0, rate, 0.001)

	rate, ok, err = st.SuccessRate(ctx, "unified_audit_log", "status")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.0, rate, 0.001)
}

func TestSuccessRate_ExcludesUnusedAndUnresolved(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Scored but never used for verification.
	unused := record("case-a", "sign_in_logs", "status", boolPtr(false))
	unused.UsedForVerification = false
	_, err := st.RecordUsage(ctx, unused)
	require.NoError(t, err)

	// Used, outcome still unknown.
	_, err = st.RecordUsage(ctx, record("case-b", "sign_in_logs", "status", nil))
	require.NoError(t, err)

	_, ok, err := st.SuccessRate(ctx, "sign_in_logs", "status")
	require.NoError(t, err)
	assert.False(t, ok)

	// One resolved record flips ok and determines the rate alone.
	_, err = st.RecordUsage(ctx, record("case-c", "sign_in_logs", "status", boolPtr(true)))
	require.NoError(t, err)

	rate, ok, err := st.SuccessRate(ctx, "sign_in_logs", "status")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.0, rate, 0.001)
}

func TestListByCase(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	rec := record("case-1", "sign_in_logs", "status", boolPtr(true))
	rec.BreachDetected = boolPtr(false)
	rec.Notes = "correlated with helpdesk ticket"
	_, err := st.RecordUsage(ctx, rec)
	require.NoError(t, err)
	_, err = st.RecordUsage(ctx, record("case-1", "unified_audit_log", "operation", nil))
	require.NoError(t, err)
	_, err = st.RecordUsage(ctx, record("case-2", "sign_in_logs", "status", nil))
	require.NoError(t, err)

	recs, err := st.ListByCase(ctx, "case-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, "case-1", r.CaseID)
	}

	var signIn *model.FieldUsageRecord
	for i := range recs {
		if recs[i].LogType == "sign_in_logs" {
			signIn = &recs[i]
		}
	}
	require.NotNil(t, signIn)
	require.NotNil(t, signIn.VerificationSuccessful)
	assert.True(t, *signIn.VerificationSuccessful)
	require.NotNil(t, signIn.BreachDetected)
	assert.False(t, *signIn.BreachDetected)
	assert.Equal(t, "correlated with helpdesk ticket", signIn.Notes)

	recs, err = st.ListByCase(ctx, "case-none")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
