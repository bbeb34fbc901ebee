package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seoforge/query-fanout/internal/aiclient"
	"github.com/seoforge/query-fanout/internal/config"
	"github.com/seoforge/query-fanout/internal/engine"
	"github.com/seoforge/query-fanout/internal/models"
)

func newTestHandler() *Handler {
	eng := engine.New(config.EngineConfig{Language: "en", Seed: 1}, zap.NewNop())
	return NewHandler(eng, nil, 0, zap.NewNop())
}

// completionReply wraps assistant content in the chat completion envelope.
func completionReply(t *testing.T, content string) []byte {
	t.Helper()
	reply := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1724198400,
		"model":   "gpt-4",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
	data, err := json.Marshal(reply)
	if err != nil {
		t.Fatalf("marshal stub reply: %v", err)
	}
	return data
}

func newAIBackedHandler(t *testing.T, baseURL string, fallbackEnabled bool) *Handler {
	t.Helper()
	eng := engine.New(config.EngineConfig{Language: "en", Seed: 1}, zap.NewNop())
	client, err := aiclient.New(config.AIConfig{
		Provider:        "openai",
		APIKey:          "test-key",
		BaseURL:         baseURL,
		Model:           "gpt-4",
		Temperature:     0.7,
		MaxPredictions:  8,
		FallbackEnabled: fallbackEnabled,
		RequestTimeout:  5 * time.Second,
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			FailureThreshold: 100,
		},
		Retry: config.RetryConfig{
			MaxAttempts: 1,
			InitialWait: time.Millisecond,
			MaxWait:     5 * time.Millisecond,
			Multiplier:  2.0,
		},
		SlowCall: config.SlowCallConfig{
			WarningThreshold:  time.Second,
			CriticalThreshold: 5 * time.Second,
		},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("aiclient.New() error = %v", err)
	}
	return NewHandler(eng, client, 0, zap.NewNop())
}

func TestParseFanoutRequest_GET(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/fanout?q=best+laptop&lang=es&min_probability=0.4", nil)

	fr, err := h.parseFanoutRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fr.Query != "best laptop" {
		t.Errorf("expected query 'best laptop', got %q", fr.Query)
	}
	if fr.Language != "es" {
		t.Errorf("expected language 'es', got %q", fr.Language)
	}
	if fr.MinProbability != 0.4 {
		t.Errorf("expected min_probability 0.4, got %v", fr.MinProbability)
	}
}

func TestParseFanoutRequest_GET_Defaults(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/fanout?q=laptop", nil)
	fr, err := h.parseFanoutRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fr.Language != "" {
		t.Errorf("expected empty language, got %q", fr.Language)
	}
	if fr.MinProbability != 0 {
		t.Errorf("expected min_probability 0, got %v", fr.MinProbability)
	}
}

func TestParseFanoutRequest_GET_InvalidMinProbability(t *testing.T) {
	h := newTestHandler()

	tests := []string{"abc", "1.5", "-0.2"}
	for _, value := range tests {
		t.Run(value, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/fanout?q=laptop&min_probability="+value, nil)
			fr, err := h.parseFanoutRequest(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// Invalid values are ignored and the default applies
			if fr.MinProbability != 0 {
				t.Errorf("expected min_probability 0 for %q, got %v", value, fr.MinProbability)
			}
		})
	}
}

func TestParseFanoutRequest_POST(t *testing.T) {
	h := newTestHandler()

	body := `{"query":"mejores portátiles","language":"es","min_probability":0.6}`
	req := httptest.NewRequest(http.MethodPost, "/fanout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	fr, err := h.parseFanoutRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fr.Query != "mejores portátiles" {
		t.Errorf("expected query 'mejores portátiles', got %q", fr.Query)
	}
	if fr.Language != "es" {
		t.Errorf("expected language 'es', got %q", fr.Language)
	}
	if fr.MinProbability != 0.6 {
		t.Errorf("expected min_probability 0.6, got %v", fr.MinProbability)
	}
}

func TestParseFanoutRequest_POST_InvalidJSON(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/fanout", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")

	if _, err := h.parseFanoutRequest(req); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseFanoutRequest_POST_EmptyBody(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/fanout", strings.NewReader(""))
	if _, err := h.parseFanoutRequest(req); err == nil {
		t.Error("expected error for empty body")
	}
}

func TestAnalyze_MissingQuery(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	rr := httptest.NewRecorder()

	h.Analyze(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing query, got %d", rr.Code)
	}

	var result map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if result["code"] != "missing_query" {
		t.Errorf("expected code 'missing_query', got %q", result["code"])
	}
}

func TestAnalyze_GET(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/analyze?q=best+iphone+2024+deals", nil)
	rr := httptest.NewRecorder()

	h.Analyze(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var analysis models.QueryAnalysis
	if err := json.Unmarshal(rr.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if analysis.OriginalQuery != "best iphone 2024 deals" {
		t.Errorf("OriginalQuery = %q", analysis.OriginalQuery)
	}
	if analysis.IntentType != models.IntentTransactional {
		t.Errorf("IntentType = %q, want transactional", analysis.IntentType)
	}
	if analysis.Language != "en" {
		t.Errorf("Language = %q, want en", analysis.Language)
	}
}

func TestAnalyze_POST_SpanishLanguage(t *testing.T) {
	h := newTestHandler()

	body := `{"query":"comprar portátil barato","language":"es"}`
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Analyze(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var analysis models.QueryAnalysis
	if err := json.Unmarshal(rr.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if analysis.IntentType != models.IntentTransactional {
		t.Errorf("IntentType = %q, want transactional", analysis.IntentType)
	}
	if analysis.Language != "es" {
		t.Errorf("Language = %q, want es", analysis.Language)
	}
}

func TestFanout_ReturnsRankedPredictions(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/fanout?q=best+iphone+2024+deals", nil)
	rr := httptest.NewRecorder()

	h.Fanout(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp models.FanoutResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Query != "best iphone 2024 deals" {
		t.Errorf("Query = %q", resp.Query)
	}
	if resp.Count != len(resp.Predictions) {
		t.Errorf("Count = %d, predictions = %d", resp.Count, len(resp.Predictions))
	}
	if resp.Count != 8 {
		t.Errorf("expected 8 predictions, got %d", resp.Count)
	}
	if resp.AvgProbability <= 0 {
		t.Error("expected positive avg_probability")
	}
	for i := 1; i < len(resp.Predictions); i++ {
		if resp.Predictions[i].Probability > resp.Predictions[i-1].Probability {
			t.Errorf("predictions not sorted at %d", i)
		}
	}
}

func TestFanout_MissingQuery(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/fanout", nil)
	rr := httptest.NewRecorder()

	h.Fanout(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestFanout_MinProbabilityFilter(t *testing.T) {
	h := newTestHandler()

	// 0.99 is above the scoring clamp, so nothing can pass.
	req := httptest.NewRequest(http.MethodGet, "/fanout?q=best+iphone+2024+deals&min_probability=0.99", nil)
	rr := httptest.NewRecorder()

	h.Fanout(rr, req)

	var resp models.FanoutResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("expected 0 predictions above 0.99, got %d", resp.Count)
	}
	if resp.AvgProbability != 0 {
		t.Errorf("expected avg_probability 0 for empty result, got %v", resp.AvgProbability)
	}
}

func TestFanout_ConfiguredMinProbabilityDefault(t *testing.T) {
	eng := engine.New(config.EngineConfig{Language: "en", Seed: 1}, zap.NewNop())
	h := NewHandler(eng, nil, 0.99, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/fanout?q=best+iphone+2024+deals", nil)
	rr := httptest.NewRecorder()
	h.Fanout(rr, req)

	var resp models.FanoutResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("expected configured default to filter everything, got %d", resp.Count)
	}

	// A request value overrides the configured default.
	req = httptest.NewRequest(http.MethodGet, "/fanout?q=best+iphone+2024+deals&min_probability=0.1", nil)
	rr = httptest.NewRecorder()
	h.Fanout(rr, req)

	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Count != 8 {
		t.Errorf("expected request override to keep all 8, got %d", resp.Count)
	}
}

func TestFanoutAI_RemoteSuccess(t *testing.T) {
	content := `{
  "predictions": [
    {"sub_query": "wireless earbuds reviews", "probability": 0.82, "facet": "Reviews", "intent_type": "informational", "reasoning": "comparison research"},
    {"sub_query": "wireless earbuds price comparison", "probability": 0.74, "facet": "Pricing", "intent_type": "commercial_investigation", "reasoning": "price research"}
  ]
}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionReply(t, content))
	}))
	defer ts.Close()

	h := newAIBackedHandler(t, ts.URL, true)

	body := `{"query":"wireless earbuds"}`
	req := httptest.NewRequest(http.MethodPost, "/fanout/ai", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.FanoutAI(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.RemoteFanoutResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Source != models.SourceRemote {
		t.Errorf("Source = %q, want remote", resp.Source)
	}
	if resp.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", resp.Confidence)
	}
	if len(resp.Predictions) != 2 {
		t.Errorf("expected 2 predictions, got %d", len(resp.Predictions))
	}
	if resp.Language != "en" {
		t.Errorf("Language = %q, want en", resp.Language)
	}
}

func TestFanoutAI_FallbackServes200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	h := newAIBackedHandler(t, ts.URL, true)

	req := httptest.NewRequest(http.MethodPost, "/fanout/ai", strings.NewReader(`{"query":"wireless earbuds"}`))
	rr := httptest.NewRecorder()

	h.FanoutAI(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with fallback, got %d", rr.Code)
	}

	var resp models.RemoteFanoutResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Source != models.SourceFallback {
		t.Errorf("Source = %q, want fallback", resp.Source)
	}
	if resp.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", resp.Confidence)
	}
	if len(resp.Predictions) != 5 {
		t.Errorf("expected 5 fallback predictions, got %d", len(resp.Predictions))
	}
}

func TestFanoutAI_FallbackDisabledReturns502(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	h := newAIBackedHandler(t, ts.URL, false)

	req := httptest.NewRequest(http.MethodPost, "/fanout/ai", strings.NewReader(`{"query":"wireless earbuds"}`))
	rr := httptest.NewRecorder()

	h.FanoutAI(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}

	var result map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if result["code"] != "ai_unavailable" {
		t.Errorf("code = %q, want ai_unavailable", result["code"])
	}
}

func TestExport_CSV(t *testing.T) {
	h := newTestHandler()

	body := `{"query":"best iphone","format":"csv","predictions":[{"sub_query":"iphone reviews","probability":0.8,"facet":"Reviews","intent_type":"informational","reasoning":"research"}]}`
	req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Export(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "fanout_analysis_best_iphone.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(rr.Body.String(), "sub_query,probability") {
		t.Errorf("body is not csv:\n%s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "iphone reviews,80%") {
		t.Errorf("missing percentage row:\n%s", rr.Body.String())
	}
}

func TestExport_JSON(t *testing.T) {
	h := newTestHandler()

	body := `{"format":"json","predictions":[{"sub_query":"iphone reviews","probability":0.8}]}`
	req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Export(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var predictions []models.SubQueryPrediction
	if err := json.Unmarshal(rr.Body.Bytes(), &predictions); err != nil {
		t.Fatalf("body is not a JSON prediction list: %v", err)
	}
	if len(predictions) != 1 || predictions[0].SubQuery != "iphone reviews" {
		t.Errorf("unexpected predictions: %+v", predictions)
	}
}

func TestExport_UnknownFormatFallsBack(t *testing.T) {
	h := newTestHandler()

	body := `{"format":"xlsx","predictions":[]}`
	req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Export(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-Export-Fallback") != "csv" {
		t.Error("expected X-Export-Fallback header")
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
}

func TestExport_InvalidBody(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader("not json"))
	rr := httptest.NewRecorder()

	h.Export(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestLanguages(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/languages", nil)
	rr := httptest.NewRecorder()

	h.Languages(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var result struct {
		Languages []models.LanguageInfo `json:"languages"`
		Default   string                `json:"default"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if result.Default != "en" {
		t.Errorf("default = %q, want en", result.Default)
	}
	if len(result.Languages) != 5 {
		t.Fatalf("expected 5 languages, got %d", len(result.Languages))
	}
	if result.Languages[0].Code != "en" {
		t.Errorf("first language = %q, want en", result.Languages[0].Code)
	}
	for _, lang := range result.Languages {
		if len(lang.Samples) == 0 {
			t.Errorf("language %q has no sample queries", lang.Code)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	h := newTestHandler()
	rr := httptest.NewRecorder()

	data := map[string]string{"hello": "world"}
	h.writeJSON(rr, http.StatusOK, data)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Error("expected application/json content type")
	}

	var result map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["hello"] != "world" {
		t.Errorf("unexpected response: %v", result)
	}
}

func TestWriteError(t *testing.T) {
	h := newTestHandler()
	rr := httptest.NewRecorder()

	h.writeError(rr, http.StatusBadRequest, "invalid_query", "Query is required")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}

	var result map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["error"] != "Query is required" {
		t.Errorf("expected error message 'Query is required', got %q", result["error"])
	}
	if result["code"] != "invalid_query" {
		t.Errorf("expected code 'invalid_query', got %q", result["code"])
	}
}

func TestWriteJSON_StatusCodes(t *testing.T) {
	h := newTestHandler()

	codes := []int{200, 201, 204, 400, 404, 500, 503}
	for _, code := range codes {
		rr := httptest.NewRecorder()
		h.writeJSON(rr, code, map[string]string{})
		if rr.Code != code {
			t.Errorf("expected %d, got %d", code, rr.Code)
		}
	}
}

func TestMaxRequestBodySize(t *testing.T) {
	if maxRequestBodySize != 1<<20 {
		t.Errorf("expected maxRequestBodySize 1MB, got %d", maxRequestBodySize)
	}
}
