package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/seoforge/query-fanout/internal/models"
)

// ReadCSV parses predictions written by Write back into structs. A header
// row is optional; percentage probabilities ("85%") and plain floats are
// both accepted.
func ReadCSV(r io.Reader) ([]models.SubQueryPrediction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(csvHeader))
	start := 0
	if strings.EqualFold(strings.TrimSpace(rows[0][0]), "sub_query") {
		for i, h := range rows[0] {
			cols[strings.ToLower(strings.TrimSpace(h))] = i
		}
		start = 1
	} else {
		for i, name := range csvHeader {
			cols[name] = i
		}
	}

	predictions := make([]models.SubQueryPrediction, 0, len(rows)-start)
	for _, row := range rows[start:] {
		sub := field(row, cols, "sub_query")
		if sub == "" {
			continue
		}
		prob, err := parseProbability(field(row, cols, "probability"))
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", sub, err)
		}
		predictions = append(predictions, models.SubQueryPrediction{
			SubQuery:    sub,
			Probability: prob,
			Facet:       field(row, cols, "facet"),
			IntentType:  models.IntentType(field(row, cols, "intent_type")),
			Reasoning:   field(row, cols, "reasoning"),
			SourceQuery: field(row, cols, "source_query"),
		})
	}
	return predictions, nil
}

// ReadQueries loads a query list from a CSV file (single column, optional
// "query" header) or an NDJSON file of {"query": ...} objects or raw
// lines. Unknown extensions try CSV first, then NDJSON.
func ReadQueries(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readQueryCSV(path)
	case ".ndjson", ".jsonl":
		return readQueryNDJSON(path)
	default:
		if queries, err := readQueryCSV(path); err == nil && len(queries) > 0 {
			return queries, nil
		}
		return readQueryNDJSON(path)
	}
}

func readQueryCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}

	col, start := 0, 0
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), "query") {
			col, start = i, 1
			break
		}
	}

	var queries []string
	for _, row := range rows[start:] {
		if col >= len(row) {
			continue
		}
		if q := strings.TrimSpace(row[col]); q != "" {
			queries = append(queries, q)
		}
	}
	return queries, nil
}

func readQueryNDJSON(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var queries []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		// Allow {"query": "..."} objects or raw one-query-per-line text.
		if strings.HasPrefix(line, "{") {
			var obj struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal([]byte(line), &obj); err == nil && obj.Query != "" {
				queries = append(queries, obj.Query)
				continue
			}
		}
		queries = append(queries, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return nil, errors.New("no queries found")
	}
	return queries, nil
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseProbability(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("parse probability %q: %w", s, err)
		}
		return v / 100, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse probability %q: %w", s, err)
	}
	return v, nil
}
