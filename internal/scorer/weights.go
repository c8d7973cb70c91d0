package scorer

import (
	"math"

	"github.com/rotisserie/eris"
)

// Weights holds the dimension weights of the reliability score. The defaults
// are calibrated constants inherited from the binary-threshold system this
// scorer replaced; they are validated against known-good and known-bad
// fields in the test corpus rather than derived from first principles.
type Weights struct {
	Uniformity            float64
	DiscriminatoryPower   float64
	PopulationRate        float64
	HistoricalSuccessRate float64
	SemanticPreference    float64
}

// DefaultWeights returns the calibrated dimension weights. Scoring always
// uses these; the type exists so the policy table is explicit and testable.
func DefaultWeights() Weights {
	return Weights{
		Uniformity:            0.30,
		DiscriminatoryPower:   0.25,
		PopulationRate:        0.15,
		HistoricalSuccessRate: 0.20,
		SemanticPreference:    0.10,
	}
}

// Sum returns the total of all dimension weights.
func (w Weights) Sum() float64 {
	return w.Uniformity + w.DiscriminatoryPower + w.PopulationRate +
		w.HistoricalSuccessRate + w.SemanticPreference
}

// Validate checks that every weight is non-negative and the total is 1.0.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"uniformity":              w.Uniformity,
		"discriminatory_power":    w.DiscriminatoryPower,
		"population_rate":         w.PopulationRate,
		"historical_success_rate": w.HistoricalSuccessRate,
		"semantic_preference":     w.SemanticPreference,
	} {
		if v < 0 {
			return eris.Errorf("scorer: weight %s is negative (%.3f)", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > 1e-6 {
		return eris.Errorf("scorer: weights sum to %.4f, want 1.0", sum)
	}
	return nil
}
