// Package engine turns a raw search query into a ranked set of fan-out
// predictions: the follow-up sub-queries a search engine's query
// expansion is likely to issue for it.
package engine

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/seoforge/query-fanout/internal/analyzer"
	"github.com/seoforge/query-fanout/internal/config"
	"github.com/seoforge/query-fanout/internal/models"
	"github.com/seoforge/query-fanout/internal/observability"
)

// MaxPredictions is how many ranked predictions a fan-out call returns
// at most.
const MaxPredictions = 8

type Engine struct {
	defaultLanguage string
	analyzers       map[string]*analyzer.Analyzer
	logger          *zap.Logger

	// rng backs the probability draws of all generators; guarded by mu.
	// A fixed seed reproduces the full draw sequence.
	rng *rand.Rand
	mu  sync.Mutex
}

func New(cfg config.EngineConfig, logger *zap.Logger) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	analyzers := make(map[string]*analyzer.Analyzer)
	for _, lang := range analyzer.SupportedLanguages() {
		analyzers[lang] = analyzer.New(lang)
	}

	defaultLang := cfg.Language
	if !analyzer.IsSupported(defaultLang) {
		defaultLang = analyzer.DefaultLanguage
	}

	return &Engine{
		defaultLanguage: defaultLang,
		analyzers:       analyzers,
		logger:          logger,
		rng:             rand.New(rand.NewSource(seed)),
	}
}

// Analyze classifies a query without generating predictions. An empty
// language selects the engine's configured default; unsupported codes
// fall back to English.
func (e *Engine) Analyze(ctx context.Context, query, language string) models.QueryAnalysis {
	_, span := observability.StartSpan(ctx, "engine.analyze",
		attribute.String("fanout.language", e.resolveLanguage(language)),
	)
	defer span.End()

	return e.analyzerFor(language).Analyze(query)
}

// GenerateFanout is the main entry point: analyze the query, run every
// generator, score, rank, and truncate. It never fails; the worst input
// still yields generic predictions.
func (e *Engine) GenerateFanout(ctx context.Context, query, language string) (models.QueryAnalysis, []models.SubQueryPrediction) {
	start := time.Now()
	_, span := observability.StartSpan(ctx, "engine.generate_fanout",
		attribute.String("fanout.language", e.resolveLanguage(language)),
	)
	defer span.End()

	// Step 1: Analyze query
	analysis := e.analyzerFor(language).Analyze(query)

	// Step 2: Run all generators against the analysis
	candidates := e.generateCandidates(analysis)

	// Step 3: Score candidates
	scored := ScorePredictions(candidates, analysis)

	// Step 4: Rank and truncate. Stable sort keeps generation order for
	// equal probabilities.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Probability > scored[j].Probability
	})
	if len(scored) > MaxPredictions {
		scored = scored[:MaxPredictions]
	}

	// Track metrics
	observability.FanoutRequestsTotal.WithLabelValues(analysis.Language, string(analysis.IntentType), "success").Inc()
	observability.FanoutRequestDuration.WithLabelValues(analysis.Language, "success").Observe(time.Since(start).Seconds())
	for _, p := range scored {
		observability.PredictionsReturned.WithLabelValues(p.Facet).Inc()
	}

	e.logger.Debug("fanout generated",
		zap.String("query", analysis.OriginalQuery),
		zap.String("language", analysis.Language),
		zap.String("intent", string(analysis.IntentType)),
		zap.Int("predictions", len(scored)),
		zap.Duration("took", time.Since(start)),
	)

	return analysis, scored
}

func (e *Engine) generateCandidates(analysis models.QueryAnalysis) []models.SubQueryPrediction {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidates := make([]models.SubQueryPrediction, 0, 16)
	candidates = append(candidates, GenerateIntentPredictions(analysis, e.rng)...)
	candidates = append(candidates, GenerateEntityPredictions(analysis, e.rng)...)
	candidates = append(candidates, GenerateContextualPredictions(analysis, e.rng)...)
	candidates = append(candidates, GenerateCompetitivePredictions(analysis, e.rng)...)
	return candidates
}

func (e *Engine) analyzerFor(language string) *analyzer.Analyzer {
	a, ok := e.analyzers[e.resolveLanguage(language)]
	if !ok {
		return e.analyzers[analyzer.DefaultLanguage]
	}
	return a
}

func (e *Engine) resolveLanguage(language string) string {
	if language == "" {
		return e.defaultLanguage
	}
	if !analyzer.IsSupported(language) {
		return analyzer.DefaultLanguage
	}
	return language
}
