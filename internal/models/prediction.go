package models

import "time"

// IntentType, Category and Complexity are typed strings because their
// values are the wire vocabulary consumed by exports and API clients.
type IntentType string

const (
	IntentInformational           IntentType = "informational"
	IntentTransactional           IntentType = "transactional"
	IntentNavigational            IntentType = "navigational"
	IntentCommercialInvestigation IntentType = "commercial_investigation"
	IntentMixed                   IntentType = "mixed"
)

type Category string

const (
	CategoryTechnology Category = "technology"
	CategoryEcommerce  Category = "ecommerce"
	CategoryHealth     Category = "health"
	CategoryEducation  Category = "education"
	CategoryTravel     Category = "travel"
	CategoryFood       Category = "food"
	CategoryFinance    Category = "finance"
	CategoryGeneral    Category = "general"
)

type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// QueryAnalysis is produced once per query and never mutated afterwards.
type QueryAnalysis struct {
	OriginalQuery    string     `json:"original_query"`
	Entities         []string   `json:"entities"`
	IntentType       IntentType `json:"intent_type"`
	Category         Category   `json:"category"`
	CommercialIntent float64    `json:"commercial_intent"`
	QueryComplexity  Complexity `json:"query_complexity"`
	Language         string     `json:"language"`
}

// Summary reduces an analysis to the fields the remote adapter embeds in
// its prompt.
func (a QueryAnalysis) Summary() AnalysisSummary {
	return AnalysisSummary{
		IntentType:       a.IntentType,
		Category:         a.Category,
		CommercialIntent: a.CommercialIntent,
	}
}

type AnalysisSummary struct {
	IntentType       IntentType `json:"intent_type"`
	Category         Category   `json:"category"`
	CommercialIntent float64    `json:"commercial_intent"`
}

type SubQueryPrediction struct {
	SubQuery    string     `json:"sub_query"`
	Probability float64    `json:"probability"`
	Facet       string     `json:"facet"`
	IntentType  IntentType `json:"intent_type"`
	Reasoning   string     `json:"reasoning"`
	// SourceQuery tags batch rows with the query that produced them.
	// Single-query responses leave it empty.
	SourceQuery string `json:"source_query,omitempty"`
}

// Sources reported on AI-backed responses.
const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

type AIResponse struct {
	Predictions    []SubQueryPrediction `json:"predictions"`
	Reasoning      string               `json:"reasoning"`
	Confidence     float64              `json:"confidence"`
	Source         string               `json:"source"`
	ProcessingTime time.Duration        `json:"-"`
}

type AnalyzeRequest struct {
	Query    string `json:"query"`
	Language string `json:"language,omitempty"`
}

type FanoutRequest struct {
	Query          string  `json:"query"`
	Language       string  `json:"language,omitempty"`
	MinProbability float64 `json:"min_probability,omitempty"`
}

type FanoutResponse struct {
	Query          string               `json:"query"`
	Language       string               `json:"language"`
	Analysis       QueryAnalysis        `json:"analysis"`
	Predictions    []SubQueryPrediction `json:"predictions"`
	Count          int                  `json:"count"`
	AvgProbability float64              `json:"avg_probability"`
	TookMs         int64                `json:"took_ms"`
	RequestID      string               `json:"request_id,omitempty"`
}

type RemoteFanoutResponse struct {
	Query       string               `json:"query"`
	Language    string               `json:"language"`
	Predictions []SubQueryPrediction `json:"predictions"`
	Reasoning   string               `json:"reasoning"`
	Confidence  float64              `json:"confidence"`
	Source      string               `json:"source"`
	TookMs      int64                `json:"took_ms"`
	RequestID   string               `json:"request_id,omitempty"`
}

type ExportRequest struct {
	Query       string               `json:"query,omitempty"`
	Format      string               `json:"format"`
	Predictions []SubQueryPrediction `json:"predictions"`
}

type LanguageInfo struct {
	Code    string   `json:"code"`
	Samples []string `json:"samples"`
}
