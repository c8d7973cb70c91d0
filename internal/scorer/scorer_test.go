package scorer

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource is an in-memory TabularSource for aggregator tests.
type stubSource struct {
	rows      int64
	distinct  int64
	mode      int64
	populated int64
	tableOK   bool
	colOK     bool
	cols      []string
	statsErr  error
}

func (s *stubSource) RowCount(context.Context, string) (int64, error) {
	return s.rows, s.statsErr
}
func (s *stubSource) DistinctCount(context.Context, string, string) (int64, error) {
	return s.distinct, s.statsErr
}
func (s *stubSource) ModeCount(context.Context, string, string) (int64, error) {
	return s.mode, s.statsErr
}
func (s *stubSource) PopulatedCount(context.Context, string, string) (int64, error) {
	return s.populated, s.statsErr
}
func (s *stubSource) TableExists(context.Context, string) (bool, error) {
	return s.tableOK, nil
}
func (s *stubSource) ColumnExists(context.Context, string, string) (bool, error) {
	return s.colOK, nil
}
func (s *stubSource) ListColumns(context.Context, string) ([]string, error) {
	return s.cols, nil
}

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	require.NoError(t, w.Validate())
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
}

func TestWeightsValidate(t *testing.T) {
	t.Run("sum off by a dimension", func(t *testing.T) {
		w := DefaultWeights()
		w.SemanticPreference = 0
		err := w.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sum")
	})

	t.Run("negative weight", func(t *testing.T) {
		w := DefaultWeights()
		w.Uniformity = -0.30
		w.DiscriminatoryPower = 0.85
		err := w.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative")
	})
}

func TestCalculateReliabilityScore_SchemaValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing table", func(t *testing.T) {
		src := &stubSource{tableOK: false}
		_, err := CalculateReliabilityScore(ctx, src, "ghost_table", "status", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost_table")
	})

	t.Run("missing column", func(t *testing.T) {
		src := &stubSource{tableOK: true, colOK: false}
		_, err := CalculateReliabilityScore(ctx, src, "sign_in_logs", "no_such_column", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no_such_column")
	})

	t.Run("aggregate query failure propagates", func(t *testing.T) {
		src := &stubSource{tableOK: true, colOK: true, statsErr: eris.New("locked")}
		_, err := CalculateReliabilityScore(ctx, src, "sign_in_logs", "status", nil)
		require.Error(t, err)
	})
}

func TestCalculateReliabilityScore_ConstantField(t *testing.T) {
	// One distinct value across the whole table: uniformity must be zero
	// and the overall verdict unreliable.
	src := &stubSource{
		rows: 100, distinct: 1, mode: 100, populated: 100,
		tableOK: true, colOK: true,
	}
	score, err := CalculateReliabilityScore(context.Background(), src, "audit_export", "tenant_name", nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, score.UniformityScore)
	assert.Less(t, score.OverallScore, 0.3)
	assert.NotEmpty(t, score.Warnings)
	require.Len(t, score.Recommendations, 1)
	assert.Contains(t, score.Recommendations[0], "unreliable")
}

func TestCalculateReliabilityScore_EvenTwoValueSplit(t *testing.T) {
	src := &stubSource{
		rows: 1000, distinct: 2, mode: 500, populated: 1000,
		tableOK: true, colOK: true,
	}
	score, err := CalculateReliabilityScore(context.Background(), src, "audit_export", "login_result", nil)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, score.UniformityScore, 0.9)
	assert.GreaterOrEqual(t, score.OverallScore, 0.5)
	assert.Empty(t, score.Warnings)
}

func TestCalculateReliabilityScore_LegacyRuleCompatibility(t *testing.T) {
	// The scorer replaced a binary rule that rejected fields more than
	// 99.5% uniform. Anything the old rule rejected must land below 0.5,
	// and a clean even split the old rule accepted must land at or above.
	t.Run("legacy reject stays below 0.5", func(t *testing.T) {
		for _, mode := range []int64{996, 998, 999, 1000} {
			src := &stubSource{
				rows: 1000, distinct: 2, mode: mode, populated: 1000,
				tableOK: true, colOK: true,
			}
			score, err := CalculateReliabilityScore(context.Background(), src, "t", "f", nil)
			require.NoError(t, err)
			assert.Less(t, score.OverallScore, 0.5, "mode count %d", mode)
		}
	})

	t.Run("legacy accept stays at or above 0.5", func(t *testing.T) {
		src := &stubSource{
			rows: 1000, distinct: 2, mode: 500, populated: 1000,
			tableOK: true, colOK: true,
		}
		score, err := CalculateReliabilityScore(context.Background(), src, "t", "f", nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score.OverallScore, 0.5)
	})
}

func TestCalculateReliabilityScore_ClampProperty(t *testing.T) {
	// Fuzz the mode share across its whole range; every sub-score and the
	// overall score must stay in [0,1].
	for mode := int64(0); mode <= 1000; mode += 7 {
		src := &stubSource{
			rows: 1000, distinct: 2, mode: mode, populated: 1000,
			tableOK: true, colOK: true,
		}
		score, err := CalculateReliabilityScore(context.Background(), src, "sign_in_logs", "status", &stubHistory{rate: 1.0, ok: true})
		require.NoError(t, err)

		for name, v := range map[string]float64{
			"overall":    score.OverallScore,
			"uniformity": score.UniformityScore,
			"power":      score.DiscriminatoryPower,
			"population": score.PopulationRate,
			"historical": score.HistoricalSuccessRate,
			"semantic":   score.SemanticPreference,
		} {
			assert.GreaterOrEqual(t, v, 0.0, "%s at mode %d", name, mode)
			assert.LessOrEqual(t, v, 1.0, "%s at mode %d", name, mode)
		}
	}
}

func TestCalculateReliabilityScore_PreferredFieldBonus(t *testing.T) {
	base := &stubSource{
		rows: 1000, distinct: 2, mode: 500, populated: 1000,
		tableOK: true, colOK: true,
	}

	// Same statistics; only the field name differs. The preferred field
	// must score exactly the semantic weight higher.
	preferred, err := CalculateReliabilityScore(context.Background(), base, "sign_in_logs", "status", nil)
	require.NoError(t, err)
	plain, err := CalculateReliabilityScore(context.Background(), base, "sign_in_logs", "custom_status", nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, preferred.SemanticPreference)
	assert.Equal(t, 0.0, plain.SemanticPreference)
	assert.InDelta(t, DefaultWeights().SemanticPreference, preferred.OverallScore-plain.OverallScore, 0.001)
}

func TestTieredRecommendation(t *testing.T) {
	assert.Contains(t, tieredRecommendation("f", 0.85), "highly reliable")
	assert.Contains(t, tieredRecommendation("f", 0.7), "highly reliable")
	assert.Contains(t, tieredRecommendation("f", 0.6), "moderately reliable")
	assert.Contains(t, tieredRecommendation("f", 0.4), "unreliable")
}
