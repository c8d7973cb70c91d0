package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyConfidence(t *testing.T) {
	tests := []struct {
		name         string
		score        float64
		high, medium float64
		want         Confidence
	}{
		{"above high", 0.9, 0.7, 0.5, ConfidenceHigh},
		{"exactly high", 0.7, 0.7, 0.5, ConfidenceHigh},
		{"between", 0.6, 0.7, 0.5, ConfidenceMedium},
		{"exactly medium", 0.5, 0.7, 0.5, ConfidenceMedium},
		{"below medium", 0.49, 0.7, 0.5, ConfidenceLow},
		{"adjusted cutoffs", 0.6, 0.55, 0.35, ConfidenceHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyConfidence(tt.score, tt.high, tt.medium))
		})
	}
}

func TestParseCaseSeverity(t *testing.T) {
	for _, s := range []string{"routine", "suspected_breach", "confirmed_breach"} {
		got, err := ParseCaseSeverity(s)
		require.NoError(t, err)
		assert.Equal(t, CaseSeverity(s), got)
	}

	got, err := ParseCaseSeverity("")
	require.NoError(t, err)
	assert.Equal(t, SeverityRoutine, got)

	_, err = ParseCaseSeverity("catastrophic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catastrophic")
}
