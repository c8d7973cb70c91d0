// Package scorer ranks log table columns by how trustworthy they are as
// verification signals during an M365 incident investigation.
package scorer

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ir-cli/internal/model"
	"github.com/sells-group/ir-cli/internal/source"
)

// CalculateReliabilityScore scores a single field of a log table. The table
// name doubles as the log type for history lookups and the preferred-fields
// table. hist may be nil, in which case the historical dimension is neutral.
func CalculateReliabilityScore(ctx context.Context, src source.TabularSource, table, field string, hist HistoryReader) (*model.FieldReliabilityScore, error) {
	if err := validateSchema(ctx, src, table, field); err != nil {
		return nil, err
	}

	st, err := collectStats(ctx, src, table, field)
	if err != nil {
		return nil, err
	}

	uniformity, uniformityWarnings := uniformityScore(st)
	power := discriminatoryPower(st)
	population, populationWarnings := populationRate(st)
	historical := historicalSuccessRate(ctx, hist, table, field)
	semantic := semanticPreference(table, field)

	w := DefaultWeights()
	overall := uniformity*w.Uniformity +
		power*w.DiscriminatoryPower +
		population*w.PopulationRate +
		historical*w.HistoricalSuccessRate +
		semantic*w.SemanticPreference
	overall = clamp01(overall)

	score := &model.FieldReliabilityScore{
		FieldName:             field,
		OverallScore:          overall,
		UniformityScore:       clamp01(uniformity),
		DiscriminatoryPower:   clamp01(power),
		PopulationRate:        clamp01(population),
		HistoricalSuccessRate: clamp01(historical),
		SemanticPreference:    semantic,
	}
	score.Warnings = append(score.Warnings, uniformityWarnings...)
	score.Warnings = append(score.Warnings, populationWarnings...)
	score.Recommendations = append(score.Recommendations, tieredRecommendation(field, overall))

	zap.L().Debug("scorer: scored field",
		zap.String("table", table),
		zap.String("field", field),
		zap.Float64("overall", overall),
	)
	return score, nil
}

// validateSchema fails fast with a descriptive error when the table or
// column does not exist.
func validateSchema(ctx context.Context, src source.TabularSource, table, field string) error {
	tableOK, err := src.TableExists(ctx, table)
	if err != nil {
		return eris.Wrapf(err, "scorer: check table %s", table)
	}
	if !tableOK {
		return eris.Errorf("scorer: table %q does not exist", table)
	}

	colOK, err := src.ColumnExists(ctx, table, field)
	if err != nil {
		return eris.Wrapf(err, "scorer: check column %s.%s", table, field)
	}
	if !colOK {
		return eris.Errorf("scorer: column %q does not exist in table %q", field, table)
	}
	return nil
}

func collectStats(ctx context.Context, src source.TabularSource, table, field string) (dimensionStats, error) {
	var st dimensionStats
	var err error

	if st.RowCount, err = src.RowCount(ctx, table); err != nil {
		return st, eris.Wrapf(err, "scorer: row count for %s", table)
	}
	if st.DistinctCount, err = src.DistinctCount(ctx, table, field); err != nil {
		return st, eris.Wrapf(err, "scorer: distinct count for %s.%s", table, field)
	}
	if st.ModeCount, err = src.ModeCount(ctx, table, field); err != nil {
		return st, eris.Wrapf(err, "scorer: mode count for %s.%s", table, field)
	}
	if st.Populated, err = src.PopulatedCount(ctx, table, field); err != nil {
		return st, eris.Wrapf(err, "scorer: populated count for %s.%s", table, field)
	}
	return st, nil
}

func tieredRecommendation(field string, overall float64) string {
	switch {
	case overall >= 0.7:
		return field + " is highly reliable for verification"
	case overall >= 0.5:
		return field + " is moderately reliable for verification"
	default:
		return field + " is unreliable, consider alternative fields"
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
