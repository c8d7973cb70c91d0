package model

import "time"

// FieldUsageRecord is one persisted investigation outcome for a
// (case, log type, field) combination. Re-storing the same key replaces the
// prior row so outcomes can be corrected after re-analysis.
type FieldUsageRecord struct {
	ID                     string    `json:"id"`
	CaseID                 string    `json:"case_id"`
	LogType                string    `json:"log_type"`
	FieldName              string    `json:"field_name"`
	ReliabilityScore       float64   `json:"reliability_score"`
	UsedForVerification    bool      `json:"used_for_verification"`
	VerificationSuccessful *bool     `json:"verification_successful,omitempty"`
	BreachDetected         *bool     `json:"breach_detected,omitempty"`
	Notes                  string    `json:"notes,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}
