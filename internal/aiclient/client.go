// Package aiclient is the adapter for the remote prediction provider. It
// forwards an analysis-grounded prompt to an OpenAI-compatible chat API
// and validates the structured reply; every failure mode degrades to a
// deterministic local template set so callers always get predictions.
package aiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/seoforge/query-fanout/internal/config"
	"github.com/seoforge/query-fanout/internal/models"
	"github.com/seoforge/query-fanout/internal/observability"
	"github.com/seoforge/query-fanout/internal/resilience"
)

const (
	maxCompletionTokens = 2000

	pingPrompt = "Hello, this is a connection test. Please respond with 'OK'."

	successConfidence  = 0.85
	fallbackConfidence = 0.5
)

type Client struct {
	api             openai.Client
	model           string
	temperature     float64
	maxPredictions  int
	fallbackEnabled bool
	apiKeySet       bool
	requestTimeout  time.Duration
	retry           resilience.RetryConfig
	breaker         *gobreaker.CircuitBreaker
	slowCall        *observability.SlowCallDetector
	logger          *zap.Logger
}

func New(cfg config.AIConfig, logger *zap.Logger) (*Client, error) {
	if !strings.EqualFold(cfg.Provider, "openai") {
		return nil, fmt.Errorf("unsupported ai provider: %q", cfg.Provider)
	}

	// Retries are handled by the resilience layer, not the SDK.
	opts := []openaiopt.RequestOption{openaiopt.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		opts = append(opts, openaiopt.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openaiopt.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4"
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxPredictions := cfg.MaxPredictions
	if maxPredictions == 0 {
		maxPredictions = 8
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	retry := resilience.RetryConfig{
		MaxAttempts: cfg.Retry.MaxAttempts,
		InitialWait: cfg.Retry.InitialWait,
		MaxWait:     cfg.Retry.MaxWait,
		Multiplier:  cfg.Retry.Multiplier,
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	return &Client{
		api:             openai.NewClient(opts...),
		model:           model,
		temperature:     temperature,
		maxPredictions:  maxPredictions,
		fallbackEnabled: cfg.FallbackEnabled,
		apiKeySet:       cfg.APIKey != "",
		requestTimeout:  requestTimeout,
		retry:           retry,
		breaker:         resilience.NewCircuitBreaker("openai", cfg.CircuitBreaker, logger),
		slowCall:        observability.NewSlowCallDetector(cfg.SlowCall.WarningThreshold, cfg.SlowCall.CriticalThreshold, logger),
		logger:          logger,
	}, nil
}

// GeneratePredictions asks the remote model for fan-out predictions for
// the query. Transport errors, open breaker, and malformed replies all
// degrade to the local fallback set unless fallback is disabled, in
// which case the error propagates.
func (c *Client) GeneratePredictions(ctx context.Context, query string, summary models.AnalysisSummary, language string) (*models.AIResponse, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "aiclient.generate_predictions",
		attribute.String("ai.model", c.model),
		attribute.String("fanout.language", language),
	)
	defer span.End()

	if language == "" {
		language = "en"
	}

	prompt := BuildPrompt(query, summary, language, c.maxPredictions)

	var content string
	err := resilience.Retry(ctx, c.retry, func() error {
		result, execErr := c.breaker.Execute(func() (any, error) {
			return c.complete(ctx, prompt)
		})
		if execErr != nil {
			return execErr
		}
		content = result.(string)
		return nil
	})
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues(c.model, "error").Inc()
		observability.AIRequestDuration.WithLabelValues(c.model, "error").Observe(time.Since(start).Seconds())
		c.logger.Warn("remote prediction call failed",
			zap.String("model", c.model),
			zap.Error(err),
		)
		return c.fallback(ctx, query, language, "remote_error", err, start)
	}

	predictions, parseErr := ParseRemoteReply(content, query, c.maxPredictions)
	if parseErr != nil {
		observability.AIRequestsTotal.WithLabelValues(c.model, "malformed").Inc()
		observability.AIRequestDuration.WithLabelValues(c.model, "malformed").Observe(time.Since(start).Seconds())
		c.logger.Warn("remote prediction reply unusable",
			zap.String("model", c.model),
			zap.Error(parseErr),
		)
		return c.fallback(ctx, query, language, "malformed_response", parseErr, start)
	}

	duration := time.Since(start)
	observability.AIRequestsTotal.WithLabelValues(c.model, "success").Inc()
	observability.AIRequestDuration.WithLabelValues(c.model, "success").Observe(duration.Seconds())
	c.slowCall.Intercept(ctx, query, "remote", duration, len(predictions))

	return &models.AIResponse{
		Predictions:    predictions,
		Reasoning:      fmt.Sprintf("Generated using OpenAI API in %s", language),
		Confidence:     successConfidence,
		Source:         models.SourceRemote,
		ProcessingTime: duration,
	}, nil
}

func (c *Client) fallback(ctx context.Context, query, language, reason string, cause error, start time.Time) (*models.AIResponse, error) {
	if !c.fallbackEnabled {
		return nil, fmt.Errorf("remote prediction failed and fallback is disabled: %w", cause)
	}

	observability.AIFallbackCounter.WithLabelValues(reason).Inc()
	duration := time.Since(start)
	c.slowCall.Intercept(ctx, query, "remote", duration, 0)

	return &models.AIResponse{
		Predictions:    FallbackPredictions(query, language),
		Reasoning:      fmt.Sprintf("Fallback due to error: %v", cause),
		Confidence:     fallbackConfidence,
		Source:         models.SourceFallback,
		ProcessingTime: duration,
	}, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(maxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// Ping sends a tiny completion to verify connectivity and credentials.
// It does not go through the breaker or the retry loop.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(pingPrompt),
					},
				},
			},
		},
		MaxCompletionTokens: openai.Int(10),
	})
	if err != nil {
		return fmt.Errorf("openai ping: %w", err)
	}
	if len(completion.Choices) == 0 {
		return errors.New("openai ping: empty reply")
	}
	if !strings.Contains(strings.ToLower(completion.Choices[0].Message.Content), "ok") {
		return fmt.Errorf("openai ping: unexpected reply %q", completion.Choices[0].Message.Content)
	}
	return nil
}

// Model reports the configured model id.
func (c *Client) Model() string {
	return c.model
}

// BreakerState exposes the circuit breaker state for readiness checks.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// HealthCheck reports readiness from breaker state and configuration
// without a live call. With fallback enabled the client can always serve.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.fallbackEnabled {
		return nil
	}
	if !c.apiKeySet {
		return errors.New("no api key configured and fallback disabled")
	}
	if c.breaker.State() == gobreaker.StateOpen {
		return errors.New("circuit breaker open and fallback disabled")
	}
	return nil
}
