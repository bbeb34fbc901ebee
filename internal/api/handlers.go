package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/seoforge/query-fanout/internal/aiclient"
	"github.com/seoforge/query-fanout/internal/analyzer"
	"github.com/seoforge/query-fanout/internal/engine"
	"github.com/seoforge/query-fanout/internal/export"
	"github.com/seoforge/query-fanout/internal/models"
	"github.com/seoforge/query-fanout/internal/observability"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type Handler struct {
	engine         *engine.Engine
	ai             *aiclient.Client
	minProbability float64
	logger         *zap.Logger
}

func NewHandler(eng *engine.Engine, ai *aiclient.Client, minProbability float64, logger *zap.Logger) *Handler {
	return &Handler{
		engine:         eng,
		ai:             ai,
		minProbability: minProbability,
		logger:         logger,
	}
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := h.parseFanoutRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Query == "" {
		h.writeError(w, http.StatusBadRequest, "missing_query", "Query parameter 'q' is required")
		return
	}

	analysis := h.engine.Analyze(ctx, req.Query, req.Language)
	h.writeJSON(w, http.StatusOK, analysis)
}

func (h *Handler) Fanout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := RequestIDFromContext(ctx)
	start := time.Now()

	req, err := h.parseFanoutRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Query == "" {
		h.writeError(w, http.StatusBadRequest, "missing_query", "Query parameter 'q' is required")
		return
	}

	analysis, predictions := h.engine.GenerateFanout(ctx, req.Query, req.Language)

	// The engine never filters; min_probability is applied here, after
	// ranking, with the request value overriding the configured default.
	minProb := h.minProbability
	if req.MinProbability > 0 {
		minProb = req.MinProbability
	}
	predictions = filterByProbability(predictions, minProb)

	h.writeJSON(w, http.StatusOK, models.FanoutResponse{
		Query:          req.Query,
		Language:       analysis.Language,
		Analysis:       analysis,
		Predictions:    predictions,
		Count:          len(predictions),
		AvgProbability: averageProbability(predictions),
		TookMs:         time.Since(start).Milliseconds(),
		RequestID:      requestID,
	})
}

func (h *Handler) FanoutAI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := RequestIDFromContext(ctx)
	start := time.Now()

	req, err := h.parseFanoutRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Query == "" {
		h.writeError(w, http.StatusBadRequest, "missing_query", "Query parameter 'q' is required")
		return
	}

	analysis := h.engine.Analyze(ctx, req.Query, req.Language)

	resp, err := h.ai.GeneratePredictions(ctx, req.Query, analysis.Summary(), analysis.Language)
	if err != nil {
		h.logger.Error("ai fanout failed",
			zap.String("request_id", requestID),
			zap.String("query", req.Query),
			zap.Error(err),
		)
		h.writeError(w, http.StatusBadGateway, "ai_unavailable", "AI prediction service unavailable and fallback is disabled")
		return
	}

	h.writeJSON(w, http.StatusOK, models.RemoteFanoutResponse{
		Query:       req.Query,
		Language:    analysis.Language,
		Predictions: resp.Predictions,
		Reasoning:   resp.Reasoning,
		Confidence:  resp.Confidence,
		Source:      resp.Source,
		TookMs:      time.Since(start).Milliseconds(),
		RequestID:   requestID,
	})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req models.ExportRequest
	limited := io.LimitReader(r.Body, maxRequestBodySize)
	if err := json.NewDecoder(limited).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	used, err := export.Normalize(req.Format)
	if errors.Is(err, export.ErrUnknownFormat) {
		w.Header().Set("X-Export-Fallback", export.FormatCSV)
	}

	var buf bytes.Buffer
	if _, err := export.Write(&buf, used, req.Predictions); err != nil {
		h.logger.Error("export encoding failed",
			zap.String("format", used),
			zap.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "export_error", "Could not encode predictions")
		return
	}
	observability.ExportsTotal.WithLabelValues(used).Inc()

	w.Header().Set("Content-Type", export.ContentType(used))
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(req.Query, used)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("writing export response", zap.Error(err))
	}
}

func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	codes := analyzer.SupportedLanguages()
	infos := make([]models.LanguageInfo, 0, len(codes))
	for _, code := range codes {
		infos = append(infos, models.LanguageInfo{
			Code:    code,
			Samples: analyzer.Samples(code),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"languages": infos,
		"default":   analyzer.DefaultLanguage,
	})
}

func (h *Handler) parseFanoutRequest(r *http.Request) (*models.FanoutRequest, error) {
	if r.Method == http.MethodPost {
		var req models.FanoutRequest
		limited := io.LimitReader(r.Body, maxRequestBodySize)
		if err := json.NewDecoder(limited).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	// GET request
	req := &models.FanoutRequest{
		Query:    r.URL.Query().Get("q"),
		Language: r.URL.Query().Get("lang"),
	}

	if mp := r.URL.Query().Get("min_probability"); mp != "" {
		v, err := strconv.ParseFloat(mp, 64)
		if err == nil && v >= 0 && v < 1 {
			req.MinProbability = v
		}
	}

	return req, nil
}

func filterByProbability(predictions []models.SubQueryPrediction, minProbability float64) []models.SubQueryPrediction {
	if minProbability <= 0 {
		return predictions
	}
	kept := make([]models.SubQueryPrediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Probability >= minProbability {
			kept = append(kept, p)
		}
	}
	return kept
}

func averageProbability(predictions []models.SubQueryPrediction) float64 {
	if len(predictions) == 0 {
		return 0
	}
	var sum float64
	for _, p := range predictions {
		sum += p.Probability
	}
	return sum / float64(len(predictions))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("writing json response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}
