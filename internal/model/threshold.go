package model

// ThresholdContext captures the case characteristics that drive dynamic
// confidence thresholds. It is either supplied by the caller or derived
// from the case database by discovery.ExtractThresholdContext.
type ThresholdContext struct {
	RecordCount  int64        `json:"record_count"`
	NullRate     float64      `json:"null_rate"` // 0..1, averaged across non-metadata columns
	LogType      string       `json:"log_type"`
	CaseSeverity CaseSeverity `json:"case_severity,omitempty"`
}

// DynamicThresholds holds context-adjusted confidence cutoffs along with the
// per-factor adjustments that produced them.
type DynamicThresholds struct {
	HighThreshold   float64            `json:"high_threshold"`
	MediumThreshold float64            `json:"medium_threshold"`
	Reasoning       string             `json:"reasoning"`
	Adjustments     map[string]float64 `json:"adjustments"`
}
