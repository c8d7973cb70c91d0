// Package discovery finds candidate verification fields in ingested log
// tables, ranks them by reliability, and produces a single recommendation
// with human-readable reasoning.
package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ir-cli/internal/model"
	"github.com/sells-group/ir-cli/internal/scorer"
	"github.com/sells-group/ir-cli/internal/source"
)

// CandidateKeywords is the fixed set of substrings that mark a column as a
// potential verification signal. Matching is case-insensitive.
var CandidateKeywords = []string{
	"status", "result", "error", "success", "failure", "outcome", "code",
}

// metadataColumns are bookkeeping columns added by the importer. They are
// excluded from the null-rate average because they are always populated and
// would dilute it.
var metadataColumns = map[string]bool{
	"id":          true,
	"raw_json":    true,
	"imported_at": true,
}

// DiscoverCandidateFields returns the columns of table whose names contain
// any candidate keyword, in schema order. An empty result is not an error.
func DiscoverCandidateFields(ctx context.Context, src source.TabularSource, table string) ([]string, error) {
	cols, err := src.ListColumns(ctx, table)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: list columns for %s", table)
	}

	var candidates []string
	for _, col := range cols {
		lower := strings.ToLower(col)
		for _, kw := range CandidateKeywords {
			if strings.Contains(lower, kw) {
				candidates = append(candidates, col)
				break
			}
		}
	}
	return candidates, nil
}

// RankCandidateFields scores every candidate, sorts descending by overall
// score, and classifies confidence. When tctx is non-nil the cutoffs come
// from the dynamic threshold calculator, otherwise the 0.7/0.5 baseline.
// A candidate whose scoring fails is logged and skipped; one malformed
// column must not block recommending a good one.
func RankCandidateFields(ctx context.Context, src source.TabularSource, table string, candidates []string, hist scorer.HistoryReader, tctx *model.ThresholdContext) ([]model.FieldRanking, error) {
	high, medium := scorer.BaseHighThreshold, scorer.BaseMediumThreshold
	if tctx != nil {
		dt := scorer.CalculateDynamicThresholds(*tctx)
		high, medium = dt.HighThreshold, dt.MediumThreshold
	}

	var scores []model.FieldReliabilityScore
	for _, field := range candidates {
		score, err := scorer.CalculateReliabilityScore(ctx, src, table, field, hist)
		if err != nil {
			zap.L().Warn("discovery: skipping candidate that failed scoring",
				zap.String("table", table),
				zap.String("field", field),
				zap.Error(err),
			)
			continue
		}
		scores = append(scores, *score)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].OverallScore > scores[j].OverallScore
	})

	rankings := make([]model.FieldRanking, 0, len(scores))
	for i, score := range scores {
		rankings = append(rankings, model.FieldRanking{
			Rank:       i + 1,
			Confidence: model.ClassifyConfidence(score.OverallScore, high, medium),
			Score:      score,
		})
	}
	return rankings, nil
}

// ExtractThresholdContext derives a threshold context from the table itself:
// total row count, and the null/empty rate averaged across all non-metadata
// columns.
func ExtractThresholdContext(ctx context.Context, src source.TabularSource, table, logType string, severity model.CaseSeverity) (*model.ThresholdContext, error) {
	rows, err := src.RowCount(ctx, table)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: row count for %s", table)
	}

	cols, err := src.ListColumns(ctx, table)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: list columns for %s", table)
	}

	var nullRate float64
	if rows > 0 {
		var sum float64
		var counted int
		for _, col := range cols {
			if metadataColumns[strings.ToLower(col)] {
				continue
			}
			populated, err := src.PopulatedCount(ctx, table, col)
			if err != nil {
				return nil, eris.Wrapf(err, "discovery: populated count for %s.%s", table, col)
			}
			sum += 1 - float64(populated)/float64(rows)
			counted++
		}
		if counted > 0 {
			nullRate = sum / float64(counted)
		}
	}

	return &model.ThresholdContext{
		RecordCount:  rows,
		NullRate:     nullRate,
		LogType:      logType,
		CaseSeverity: severity,
	}, nil
}

// RecommendBestField runs the full pipeline: discover candidates, derive a
// threshold context when none was supplied, rank, and package the top
// candidate with reasoning.
func RecommendBestField(ctx context.Context, src source.TabularSource, table, logType string, hist scorer.HistoryReader, tctx *model.ThresholdContext) (*model.FieldRecommendation, error) {
	candidates, err := DiscoverCandidateFields(ctx, src, table)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, eris.Errorf("discovery: no candidate fields found in table %q (keywords: %s)",
			table, strings.Join(CandidateKeywords, ", "))
	}

	if tctx == nil {
		tctx, err = ExtractThresholdContext(ctx, src, table, logType, model.SeverityRoutine)
		if err != nil {
			return nil, err
		}
	}

	rankings, err := RankCandidateFields(ctx, src, table, candidates, hist, tctx)
	if err != nil {
		return nil, err
	}
	if len(rankings) == 0 {
		return nil, eris.Errorf("discovery: all %d candidate fields failed scoring in table %q", len(candidates), table)
	}

	thresholds := scorer.CalculateDynamicThresholds(*tctx)
	best := rankings[0]

	return &model.FieldRecommendation{
		Best:          best,
		AllCandidates: rankings,
		Reasoning:     buildReasoning(best, thresholds),
	}, nil
}

func buildReasoning(best model.FieldRanking, thresholds model.DynamicThresholds) string {
	s := best.Score
	return fmt.Sprintf(
		"selected %q (overall %.2f, %s confidence): uniformity=%.2f, discriminatory_power=%.2f, population_rate=%.2f, historical_success=%.2f, semantic_preference=%.2f; thresholds high=%.2f medium=%.2f (%s)",
		s.FieldName, s.OverallScore, best.Confidence,
		s.UniformityScore, s.DiscriminatoryPower, s.PopulationRate,
		s.HistoricalSuccessRate, s.SemanticPreference,
		thresholds.HighThreshold, thresholds.MediumThreshold, thresholds.Reasoning,
	)
}
