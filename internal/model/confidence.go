package model

import "github.com/rotisserie/eris"

// Confidence classifies how strongly a field recommendation should be trusted.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// ClassifyConfidence assigns a confidence tier by comparing a score against
// the given cutoffs.
func ClassifyConfidence(score, high, medium float64) Confidence {
	switch {
	case score >= high:
		return ConfidenceHigh
	case score >= medium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// CaseSeverity describes how serious the investigation is believed to be.
// Higher severity lowers confidence thresholds so that more candidate fields
// surface for manual review.
type CaseSeverity string

const (
	SeverityRoutine         CaseSeverity = "routine"
	SeveritySuspectedBreach CaseSeverity = "suspected_breach"
	SeverityConfirmedBreach CaseSeverity = "confirmed_breach"
)

// ParseCaseSeverity validates a severity string at the boundary. The empty
// string is accepted and treated as routine.
func ParseCaseSeverity(s string) (CaseSeverity, error) {
	switch CaseSeverity(s) {
	case SeverityRoutine, SeveritySuspectedBreach, SeverityConfirmedBreach:
		return CaseSeverity(s), nil
	case "":
		return SeverityRoutine, nil
	default:
		return "", eris.Errorf("model: unknown case severity %q (want routine, suspected_breach, or confirmed_breach)", s)
	}
}
