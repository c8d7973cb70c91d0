// Package model defines the shared types for field reliability scoring,
// confidence classification, and investigation history.
package model

// FieldReliabilityScore holds the scoring result for a single candidate field.
type FieldReliabilityScore struct {
	FieldName             string   `json:"field_name"`
	OverallScore          float64  `json:"overall_score"`
	UniformityScore       float64  `json:"uniformity_score"`
	DiscriminatoryPower   float64  `json:"discriminatory_power"`
	PopulationRate        float64  `json:"population_rate"`
	HistoricalSuccessRate float64  `json:"historical_success_rate"`
	SemanticPreference    float64  `json:"semantic_preference"`
	Warnings              []string `json:"warnings,omitempty"`
	Recommendations       []string `json:"recommendations,omitempty"`
}

// FieldRanking wraps a score with its position in a sorted candidate list.
type FieldRanking struct {
	Rank       int                   `json:"rank"`
	Confidence Confidence            `json:"confidence"`
	Score      FieldReliabilityScore `json:"score"`
}

// FieldRecommendation is the final output of the discovery pipeline: the
// top-ranked field plus the full candidate list and human-readable reasoning.
type FieldRecommendation struct {
	Best          FieldRanking   `json:"best"`
	AllCandidates []FieldRanking `json:"all_candidates"`
	Reasoning     string         `json:"reasoning"`
}
