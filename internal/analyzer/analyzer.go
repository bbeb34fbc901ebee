package analyzer

import (
	"regexp"
	"strings"

	"github.com/seoforge/query-fanout/internal/models"
)

// Analyzer classifies queries against the keyword tables of one language.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	language string
	table    languageTable
}

// New returns an analyzer for the given language. Unsupported languages fall
// back to the English tables and report the fallback language in their
// analyses.
func New(language string) *Analyzer {
	if !IsSupported(language) {
		language = DefaultLanguage
	}
	return &Analyzer{
		language: language,
		table:    languages[language],
	}
}

func (a *Analyzer) Language() string { return a.language }

var multiSpacePattern = regexp.MustCompile(`\s+`)

// Normalize lowercases, trims and collapses whitespace. All classification
// runs on normalized text.
func Normalize(query string) string {
	query = strings.ToLower(query)
	query = multiSpacePattern.ReplaceAllString(query, " ")
	return strings.TrimSpace(query)
}

// Analyze produces the full analysis record for a query. Any string is valid
// input; an empty query yields zero entities, mixed intent, general category,
// zero commercial intent and simple complexity.
func (a *Analyzer) Analyze(query string) models.QueryAnalysis {
	query = Normalize(query)

	return models.QueryAnalysis{
		OriginalQuery:    query,
		Entities:         ExtractEntities(query),
		IntentType:       a.ClassifyIntent(query),
		Category:         a.Categorize(query),
		CommercialIntent: CommercialIntent(query),
		QueryComplexity:  AssessComplexity(query),
		Language:         a.language,
	}
}

// ClassifyIntent tests the language's intent groups in priority order
// (informational, transactional, navigational, commercial investigation) and
// returns the first group with a keyword contained in the query, or mixed
// when nothing matches.
func (a *Analyzer) ClassifyIntent(query string) models.IntentType {
	query = Normalize(query)

	for _, group := range a.table.intents {
		for _, kw := range group.keywords {
			if strings.Contains(query, kw) {
				return group.intent
			}
		}
	}
	return models.IntentMixed
}

// Categorize maps a query onto the domain vocabulary, first matching category
// wins, defaulting to general.
func (a *Analyzer) Categorize(query string) models.Category {
	query = Normalize(query)

	for _, group := range a.table.categories {
		for _, kw := range group.keywords {
			if strings.Contains(query, kw) {
				return group.category
			}
		}
	}
	return models.CategoryGeneral
}

var commercialSignals = []string{
	"buy", "purchase", "price", "cost", "cheap", "expensive", "deal", "discount",
	"best", "top", "review", "comparison", "vs", "alternative", "recommend",
}

// CommercialIntent scores shopping/comparison motivation in [0,1]. Each
// signal counts once regardless of how often it appears; the count is divided
// by 3 and capped at 1. Consumers depend on this exact formula.
func CommercialIntent(query string) float64 {
	query = Normalize(query)

	count := 0
	for _, signal := range commercialSignals {
		if strings.Contains(query, signal) {
			count++
		}
	}

	score := float64(count) / 3
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// AssessComplexity buckets a query by word count: at most 2 words is simple,
// 3 or 4 medium, anything longer complex.
func AssessComplexity(query string) models.Complexity {
	switch words := len(strings.Fields(query)); {
	case words <= 2:
		return models.ComplexitySimple
	case words <= 4:
		return models.ComplexityMedium
	default:
		return models.ComplexityComplex
	}
}
