package aiclient

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/kaptinlin/jsonrepair"

	"github.com/seoforge/query-fanout/internal/models"
)

// remoteReply mirrors the JSON object the prompt instructs the model to
// emit.
type remoteReply struct {
	Predictions     []remotePrediction `json:"predictions"`
	AnalysisSummary string             `json:"analysis_summary"`
}

type remotePrediction struct {
	SubQuery    string  `json:"sub_query"`
	Probability float64 `json:"probability"`
	Facet       string  `json:"facet"`
	IntentType  string  `json:"intent_type"`
	Reasoning   string  `json:"reasoning"`
}

var (
	// ErrNoJSON reports a reply without a JSON object to extract.
	ErrNoJSON = errors.New("no JSON object in model reply")
	// ErrNoPredictions reports a reply whose JSON lacks the predictions field.
	ErrNoPredictions = errors.New("model reply has no predictions field")
)

// ParseRemoteReply extracts the prediction list from a model reply.
// Invalid individual predictions are dropped silently; a reply with no
// extractable JSON object or no predictions field is an error, which the
// caller turns into the fallback path.
func ParseRemoteReply(payload, originalQuery string, maxPredictions int) ([]models.SubQueryPrediction, error) {
	segment, err := extractJSON(payload)
	if err != nil {
		return nil, err
	}

	reply, err := decodeReply(segment)
	if err != nil {
		return nil, err
	}
	if reply.Predictions == nil {
		return nil, ErrNoPredictions
	}

	cleaned := make([]models.SubQueryPrediction, 0, len(reply.Predictions))
	for _, p := range reply.Predictions {
		if !validPrediction(p, originalQuery) {
			continue
		}
		cleaned = append(cleaned, normalizePrediction(p))
	}

	if maxPredictions > 0 && len(cleaned) > maxPredictions {
		cleaned = cleaned[:maxPredictions]
	}
	return cleaned, nil
}

// extractJSON cuts the payload between the first '{' and the last '}'.
// Models wrap their JSON in prose or markdown fences; this strips both.
func extractJSON(payload string) (string, error) {
	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return payload[start : end+1], nil
}

// decodeReply parses the segment, running it through jsonrepair when the
// model produced almost-JSON (trailing commas, single quotes, truncation).
func decodeReply(segment string) (*remoteReply, error) {
	var reply remoteReply
	err := json.Unmarshal([]byte(segment), &reply)
	if err == nil {
		return &reply, nil
	}
	originalErr := err

	repaired, repairErr := jsonrepair.JSONRepair(segment)
	if repairErr != nil {
		return nil, originalErr
	}
	if err := json.Unmarshal([]byte(repaired), &reply); err != nil {
		return nil, originalErr
	}
	return &reply, nil
}

func validPrediction(p remotePrediction, originalQuery string) bool {
	sub := strings.TrimSpace(p.SubQuery)
	if utf8.RuneCountInString(sub) < 5 {
		return false
	}
	if strings.EqualFold(sub, originalQuery) {
		return false
	}
	if p.Probability < 0.1 || p.Probability > 0.95 {
		return false
	}
	return true
}

func normalizePrediction(p remotePrediction) models.SubQueryPrediction {
	out := models.SubQueryPrediction{
		SubQuery:    strings.TrimSpace(p.SubQuery),
		Probability: p.Probability,
		Facet:       p.Facet,
		IntentType:  models.IntentType(p.IntentType),
		Reasoning:   p.Reasoning,
	}
	if out.Facet == "" {
		out.Facet = "AI Generated"
	}
	if out.IntentType == "" {
		out.IntentType = models.IntentMixed
	}
	if out.Reasoning == "" {
		out.Reasoning = "AI generated prediction"
	}
	return out
}
