package aiclient

import (
	"fmt"

	"github.com/seoforge/query-fanout/internal/models"
)

var fallbackTemplates = map[string][]string{
	"en": {
		"%s reviews",
		"%s comparison",
		"best %s",
		"how to choose %s",
		"%s guide",
	},
	"es": {
		"%s reseñas",
		"%s comparación",
		"mejor %s",
		"cómo elegir %s",
		"%s guía",
	},
	"fr": {
		"%s avis",
		"%s comparaison",
		"meilleur %s",
		"comment choisir %s",
		"%s guide",
	},
	"de": {
		"%s bewertungen",
		"%s vergleich",
		"bester %s",
		"wie man %s wählt",
		"%s leitfaden",
	},
	"it": {
		"%s recensioni",
		"%s confronto",
		"migliore %s",
		"come scegliere %s",
		"%s guida",
	},
}

// FallbackPredictions is the deterministic template set returned whenever
// the remote path fails. Probabilities start at 0.7 and step down by 0.05
// per template.
func FallbackPredictions(query, language string) []models.SubQueryPrediction {
	templates, ok := fallbackTemplates[language]
	if !ok {
		templates = fallbackTemplates["en"]
	}

	predictions := make([]models.SubQueryPrediction, 0, len(templates))
	for i, t := range templates {
		predictions = append(predictions, models.SubQueryPrediction{
			SubQuery:    fmt.Sprintf(t, query),
			Probability: 0.7 - float64(i)*0.05,
			Facet:       "Fallback",
			IntentType:  models.IntentMixed,
			Reasoning:   fmt.Sprintf("Fallback prediction in %s", language),
		})
	}
	return predictions
}
