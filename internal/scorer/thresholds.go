package scorer

import (
	"fmt"
	"strings"

	"github.com/sells-group/ir-cli/internal/model"
)

// Baseline confidence cutoffs, used directly when no threshold context is
// available.
const (
	BaseHighThreshold   = 0.7
	BaseMediumThreshold = 0.5
)

// Safety clamps for dynamic thresholds.
const (
	minMediumThreshold = 0.15
	maxHighThreshold   = 0.85
	minThresholdGap    = 0.1
)

// CalculateDynamicThresholds adapts the HIGH/MEDIUM confidence cutoffs to
// the case at hand. Four independent signed adjustments (dataset size, null
// density, log type, case severity) are summed and applied identically to
// both thresholds, so their gap is preserved unless a safety clamp
// intervenes. Clamps run in a fixed order: medium floor, high ceiling,
// minimum gap.
func CalculateDynamicThresholds(c model.ThresholdContext) model.DynamicThresholds {
	adjustments := map[string]float64{
		"dataset_size":  datasetSizeAdjustment(c.RecordCount),
		"null_rate":     nullRateAdjustment(c.NullRate),
		"log_type":      logTypeAdjustment(c.LogType),
		"case_severity": severityAdjustment(c.CaseSeverity),
	}

	var total float64
	for _, adj := range adjustments {
		total += adj
	}

	var notes []string
	if adj := adjustments["dataset_size"]; adj != 0 {
		notes = append(notes, fmt.Sprintf("dataset size (%d rows): %+.3f", c.RecordCount, adj))
	}
	if adj := adjustments["null_rate"]; adj != 0 {
		notes = append(notes, fmt.Sprintf("null rate (%.0f%%): %+.3f", c.NullRate*100, adj))
	}
	if adj := adjustments["log_type"]; adj != 0 {
		notes = append(notes, fmt.Sprintf("log type %s: %+.3f", c.LogType, adj))
	}
	if adj := adjustments["case_severity"]; adj != 0 {
		notes = append(notes, fmt.Sprintf("case severity %s: %+.3f", c.CaseSeverity, adj))
	}
	if total == 0 {
		notes = append(notes, "baseline, no adjustment")
	}

	high := BaseHighThreshold + total
	medium := BaseMediumThreshold + total

	if medium < minMediumThreshold {
		medium = minMediumThreshold
		notes = append(notes, fmt.Sprintf("medium threshold clamped to floor %.2f", minMediumThreshold))
	}
	if high > maxHighThreshold {
		high = maxHighThreshold
		notes = append(notes, fmt.Sprintf("high threshold clamped to ceiling %.2f", maxHighThreshold))
	}
	if high < medium+minThresholdGap {
		high = medium + minThresholdGap
		notes = append(notes, fmt.Sprintf("high threshold raised to keep %.1f gap above medium", minThresholdGap))
	}

	return model.DynamicThresholds{
		HighThreshold:   high,
		MediumThreshold: medium,
		Reasoning:       strings.Join(notes, "; "),
		Adjustments:     adjustments,
	}
}

// datasetSizeAdjustment rewards large datasets with stricter thresholds and
// relaxes them for small ones, where every statistic is noisier.
func datasetSizeAdjustment(n int64) float64 {
	switch {
	case n < 100:
		return -0.10
	case n < 1_000:
		return -0.05
	case n < 10_000:
		return 0
	case n <= 100_000:
		return +0.025
	default:
		return +0.05
	}
}

func nullRateAdjustment(rate float64) float64 {
	switch {
	case rate < 0.10:
		return +0.05
	case rate < 0.30:
		return 0
	case rate < 0.50:
		return -0.05
	default:
		return -0.10
	}
}

// logTypeAdjustment relaxes thresholds for log types whose exports are
// known to be messier than Entra sign-in logs.
func logTypeAdjustment(logType string) float64 {
	switch logType {
	case "unified_audit_log", "legacy_auth_logs":
		return -0.05
	default:
		return 0
	}
}

// severityAdjustment lowers the bar during breach investigations so that
// more candidate fields surface for manual review.
func severityAdjustment(sev model.CaseSeverity) float64 {
	switch sev {
	case model.SeveritySuspectedBreach:
		return -0.10
	case model.SeverityConfirmedBreach:
		return -0.05
	default:
		return 0
	}
}
