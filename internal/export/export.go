// Package export encodes prediction lists as CSV, JSON, or NDJSON for
// downloads and batch pipelines, and reads them back for chaining.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/seoforge/query-fanout/internal/models"
)

// Canonical format names.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

// ErrUnknownFormat reports a format name Normalize could not recognize.
// Write falls back to CSV instead of surfacing it.
var ErrUnknownFormat = errors.New("unknown export format")

var csvHeader = []string{"sub_query", "probability", "facet", "intent_type", "reasoning"}

// Normalize maps a caller-supplied format name to a canonical one. Unknown
// names normalize to CSV and return ErrUnknownFormat so the caller can
// report the fallback.
func Normalize(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON, "jsonl":
		return FormatNDJSON, nil
	default:
		return FormatCSV, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Write encodes predictions to w in the requested format and returns the
// format actually used. Unrecognized formats fall back to CSV.
func Write(w io.Writer, format string, predictions []models.SubQueryPrediction) (string, error) {
	used, _ := Normalize(format)
	switch used {
	case FormatJSON:
		return used, writeJSON(w, predictions)
	case FormatNDJSON:
		return used, writeNDJSON(w, predictions)
	default:
		return used, writeCSV(w, predictions)
	}
}

// ContentType reports the MIME type served for a canonical format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatNDJSON:
		return "application/x-ndjson"
	default:
		return "text/csv"
	}
}

// Filename builds the download attachment name from the analyzed query.
func Filename(query, format string) string {
	base := strings.ReplaceAll(strings.TrimSpace(query), " ", "_")
	if base == "" {
		base = "predictions"
	}
	return fmt.Sprintf("fanout_analysis_%s.%s", base, format)
}

// writeCSV emits the header plus one row per prediction. Probability is
// rendered as a whole percentage ("85%"), matching the download table.
// Batch rows carrying a source query gain a trailing source_query column.
func writeCSV(w io.Writer, predictions []models.SubQueryPrediction) error {
	tagged := false
	for _, p := range predictions {
		if p.SourceQuery != "" {
			tagged = true
			break
		}
	}

	header := csvHeader
	if tagged {
		header = append(append([]string{}, csvHeader...), "source_query")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range predictions {
		record := []string{
			p.SubQuery,
			fmt.Sprintf("%.0f%%", p.Probability*100),
			p.Facet,
			string(p.IntentType),
			p.Reasoning,
		}
		if tagged {
			record = append(record, p.SourceQuery)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, predictions []models.SubQueryPrediction) error {
	if predictions == nil {
		predictions = []models.SubQueryPrediction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(predictions)
}

func writeNDJSON(w io.Writer, predictions []models.SubQueryPrediction) error {
	enc := json.NewEncoder(w)
	for _, p := range predictions {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}
