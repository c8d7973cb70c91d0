package scorer

import (
	"context"

	"go.uber.org/zap"
)

// dimensionStats holds the raw aggregates a single field is scored from.
type dimensionStats struct {
	RowCount      int64
	DistinctCount int64
	ModeCount     int64
	Populated     int64
}

// uniformityScore maps the mode percentage (share of the single most frequent
// value) to a [0,1] score. The mapping is piecewise-linear and continuous at
// the breakpoints, and deliberately asymmetric: the 99.5% breakpoint preserves
// compatibility with the earlier binary rule that rejected any field more
// than 99.5% uniform.
func uniformityScore(st dimensionStats) (float64, []string) {
	if st.RowCount == 0 {
		return 0, []string{"table is empty, uniformity cannot be assessed"}
	}
	if st.DistinctCount <= 1 {
		return 0, []string{"field has a single distinct value (fully uniform, no discriminative value)"}
	}

	modePct := float64(st.ModeCount) / float64(st.RowCount) * 100

	switch {
	case modePct > 99.5:
		warn := []string{"field is >99.5% uniform; a constant field cannot distinguish events"}
		return 0.2 * (100 - modePct) / 0.5, warn
	case modePct > 90:
		return 0.2 + 0.4*(99.5-modePct)/9.5, nil
	case modePct > 50:
		return 0.6 + 0.3*(90-modePct)/40, nil
	default:
		return 0.9 + 0.1*(50-modePct)/50, nil
	}
}

// discriminatoryPower is the distinct-value count over the row count: the
// fraction of rows whose value is unique to them. Higher means better at
// telling individual events apart.
func discriminatoryPower(st dimensionStats) float64 {
	if st.RowCount == 0 {
		return 0
	}
	return float64(st.DistinctCount) / float64(st.RowCount)
}

// populationRate is the fraction of rows with a usable value. Empty strings
// count as missing because CSV-derived tables use '' where the export had
// no value.
func populationRate(st dimensionStats) (float64, []string) {
	if st.RowCount == 0 {
		return 0, nil
	}
	rate := float64(st.Populated) / float64(st.RowCount)

	var warnings []string
	switch {
	case rate < 0.30:
		warnings = append(warnings, "field is sparsely populated (<30% of rows)")
	case rate < 0.50:
		warnings = append(warnings, "field has low population (<50% of rows)")
	}
	return rate, warnings
}

// HistoryReader answers how often a field held up in past investigations.
// *history.Store implements it.
type HistoryReader interface {
	SuccessRate(ctx context.Context, logType, fieldName string) (rate float64, ok bool, err error)
}

const neutralHistoryScore = 0.5

// historicalSuccessRate returns the mean past verification success for this
// field and log type, or the neutral 0.5 when no history source is
// configured, no matching records exist, or the store cannot be read.
// Historical data is advisory; a broken store never fails a scoring call.
func historicalSuccessRate(ctx context.Context, hist HistoryReader, logType, fieldName string) float64 {
	if hist == nil {
		return neutralHistoryScore
	}
	rate, ok, err := hist.SuccessRate(ctx, logType, fieldName)
	if err != nil {
		zap.L().Warn("scorer: history store unavailable, using neutral score",
			zap.String("log_type", logType),
			zap.String("field", fieldName),
			zap.Error(err),
		)
		return neutralHistoryScore
	}
	if !ok {
		return neutralHistoryScore
	}
	return rate
}

// semanticPreference returns 1.0 when the field is on the curated
// known-good list for its log type, else 0.0. Deliberately binary: this is
// domain expertise, not a measured statistic.
func semanticPreference(logType, fieldName string) float64 {
	for _, preferred := range PreferredFields[logType] {
		if preferred == fieldName {
			return 1.0
		}
	}
	return 0.0
}
