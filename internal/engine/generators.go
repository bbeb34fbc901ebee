package engine

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/seoforge/query-fanout/internal/models"
)

// maxEntities bounds how many extracted entities feed the entity-based
// generator.
const maxEntities = 3

var intentTemplates = map[models.IntentType][]string{
	models.IntentCommercialInvestigation: {
		"%s reviews",
		"%s pros and cons",
		"%s comparison",
		"is %s worth it",
		"%s alternatives",
		"%s vs competitors",
	},
	models.IntentTransactional: {
		"where to buy %s",
		"%s discount",
		"%s free shipping",
		"cheapest %s",
		"%s coupon code",
	},
	models.IntentInformational: {
		"how to use %s",
		"%s tutorial",
		"%s guide",
		"what is %s",
		"%s benefits",
	},
}

// genericIntentTemplates covers intents without a dedicated template
// list (navigational, mixed).
var genericIntentTemplates = []string{
	"%s information",
	"%s details",
	"about %s",
}

var contextualTemplates = map[models.Category][]string{
	models.CategoryTechnology: {
		"%s setup",
		"%s compatibility",
		"%s security features",
		"%s updates",
	},
	models.CategoryEcommerce: {
		"%s warranty",
		"%s return policy",
		"%s customer service",
		"%s shipping time",
	},
	models.CategoryHealth: {
		"%s side effects",
		"%s dosage",
		"%s natural alternatives",
	},
}

var genericContextualTemplates = []string{
	"%s tips",
	"%s recommendations",
}

var competitiveTemplates = []string{
	"%s market share",
	"%s industry analysis",
	"top competitors %s",
	"%s market trends",
}

// GenerateIntentPredictions expands the query through phrasing templates
// keyed by the classified intent.
func GenerateIntentPredictions(analysis models.QueryAnalysis, rng *rand.Rand) []models.SubQueryPrediction {
	templates, ok := intentTemplates[analysis.IntentType]
	if !ok {
		templates = genericIntentTemplates
	}

	predictions := make([]models.SubQueryPrediction, 0, len(templates))
	for _, t := range templates {
		predictions = append(predictions, models.SubQueryPrediction{
			SubQuery:    fmt.Sprintf(t, analysis.OriginalQuery),
			Probability: uniform(rng, 0.6, 0.9),
			Facet:       "Intent-based",
			IntentType:  analysis.IntentType,
			Reasoning:   fmt.Sprintf("Generated based on %s intent", analysis.IntentType),
		})
	}
	return predictions
}

// GenerateEntityPredictions emits per-entity variations for up to the
// first three extracted entities. Purely numeric entities are treated
// as years and produce temporal variants; everything else produces
// specification and support lookups.
func GenerateEntityPredictions(analysis models.QueryAnalysis, rng *rand.Rand) []models.SubQueryPrediction {
	entities := analysis.Entities
	if len(entities) > maxEntities {
		entities = entities[:maxEntities]
	}

	var predictions []models.SubQueryPrediction
	for _, entity := range entities {
		if allDigits(entity) {
			year, err := strconv.Atoi(entity)
			if err != nil {
				continue
			}
			predictions = append(predictions,
				models.SubQueryPrediction{
					SubQuery:    fmt.Sprintf("best %s %s", withoutEntity(analysis.OriginalQuery, entity), entity),
					Probability: uniform(rng, 0.7, 0.85),
					Facet:       "Temporal",
					IntentType:  analysis.IntentType,
					Reasoning:   fmt.Sprintf("Year-specific variation for %s", entity),
				},
				models.SubQueryPrediction{
					SubQuery:    fmt.Sprintf("%s %d release date", analysis.OriginalQuery, year+1),
					Probability: uniform(rng, 0.5, 0.7),
					Facet:       "Future Planning",
					IntentType:  models.IntentInformational,
					Reasoning:   fmt.Sprintf("Future version inquiry for %s", entity),
				},
			)
			continue
		}

		predictions = append(predictions,
			models.SubQueryPrediction{
				SubQuery:    entity + " specifications",
				Probability: uniform(rng, 0.6, 0.8),
				Facet:       "Technical Details",
				IntentType:  models.IntentInformational,
				Reasoning:   fmt.Sprintf("Technical specs for %s", entity),
			},
			models.SubQueryPrediction{
				SubQuery:    entity + " problems",
				Probability: uniform(rng, 0.5, 0.75),
				Facet:       "Issues & Support",
				IntentType:  models.IntentInformational,
				Reasoning:   fmt.Sprintf("Common issues with %s", entity),
			},
		)
	}
	return predictions
}

// GenerateContextualPredictions expands the query with category-specific
// angles. Categories without a dedicated template list fall back to two
// generic ones.
func GenerateContextualPredictions(analysis models.QueryAnalysis, rng *rand.Rand) []models.SubQueryPrediction {
	templates, ok := contextualTemplates[analysis.Category]
	if !ok {
		templates = genericContextualTemplates
	}

	predictions := make([]models.SubQueryPrediction, 0, len(templates))
	for _, t := range templates {
		predictions = append(predictions, models.SubQueryPrediction{
			SubQuery:    fmt.Sprintf(t, analysis.OriginalQuery),
			Probability: uniform(rng, 0.5, 0.8),
			Facet:       titleCase(string(analysis.Category)) + " Context",
			IntentType:  analysis.IntentType,
			Reasoning:   fmt.Sprintf("Context-specific for %s category", analysis.Category),
		})
	}
	return predictions
}

// GenerateCompetitivePredictions emits market-analysis variations, but
// only for queries with commercial intent above 0.5.
func GenerateCompetitivePredictions(analysis models.QueryAnalysis, rng *rand.Rand) []models.SubQueryPrediction {
	if analysis.CommercialIntent <= 0.5 {
		return nil
	}

	predictions := make([]models.SubQueryPrediction, 0, len(competitiveTemplates))
	for _, t := range competitiveTemplates {
		predictions = append(predictions, models.SubQueryPrediction{
			SubQuery:    fmt.Sprintf(t, analysis.OriginalQuery),
			Probability: uniform(rng, 0.4, 0.7),
			Facet:       "Market Intelligence",
			IntentType:  models.IntentCommercialInvestigation,
			Reasoning:   "Competitive analysis for commercial queries",
		})
	}
	return predictions
}

func uniform(rng *rand.Rand, low, high float64) float64 {
	return low + rng.Float64()*(high-low)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// withoutEntity removes the entity from the query and collapses the
// leftover whitespace.
func withoutEntity(query, entity string) string {
	stripped := strings.ReplaceAll(query, entity, "")
	return strings.Join(strings.Fields(stripped), " ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
