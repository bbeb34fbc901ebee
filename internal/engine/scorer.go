package engine

import (
	"math"
	"strings"

	"github.com/seoforge/query-fanout/internal/models"
)

// Probability bounds every scored prediction must land in.
const (
	minProbability = 0.1
	maxProbability = 0.95
)

// ScorePredictions adjusts each candidate's probability against the
// parent analysis and clamps it into [0.1, 0.95]. The slice is mutated
// in place and returned in its original order; filtering and ranking
// belong to the caller.
func ScorePredictions(predictions []models.SubQueryPrediction, analysis models.QueryAnalysis) []models.SubQueryPrediction {
	for i := range predictions {
		p := predictions[i].Probability

		switch analysis.QueryComplexity {
		case models.ComplexityComplex:
			p *= 1.1
		case models.ComplexitySimple:
			p *= 0.9
		}

		text := predictions[i].SubQuery
		if strings.Contains(text, "price") || strings.Contains(text, "buy") {
			p *= 0.5 + analysis.CommercialIntent
		}

		predictions[i].Probability = math.Min(math.Max(p, minProbability), maxProbability)
	}
	return predictions
}
