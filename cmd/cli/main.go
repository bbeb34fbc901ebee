package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/seoforge/query-fanout/internal/aiclient"
	"github.com/seoforge/query-fanout/internal/config"
	"github.com/seoforge/query-fanout/internal/engine"
	"github.com/seoforge/query-fanout/internal/export"
	"github.com/seoforge/query-fanout/internal/models"
	"github.com/seoforge/query-fanout/internal/observability"
)

func main() {
	in := flag.String("in", "", "input file (csv with optional 'query' header, or ndjson)")
	query := flag.String("q", "", "single query (alternative to -in)")
	out := flag.String("out", "", "output file (default stdout)")
	format := flag.String("format", "ndjson", "output format: csv, json or ndjson")
	lang := flag.String("lang", "", "query language (overrides config)")
	useAI := flag.Bool("ai", false, "use the remote AI adapter instead of the local engine")
	concurrency := flag.Int("concurrency", 4, "worker concurrency for batch input")
	minProbability := flag.Float64("min-probability", -1, "drop predictions below this probability (overrides config)")
	seed := flag.Int64("seed", 0, "fixed engine seed for reproducible output")
	configPath := flag.String("config", "", "optional configuration file")
	preset := flag.String("preset", "", "named tuning preset (conservative, balanced, aggressive, ecommerce)")
	flag.Parse()

	if *in == "" && *query == "" {
		fmt.Fprintln(os.Stderr, "missing -in or -q")
		os.Exit(2)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *preset != "" {
		if err := config.ApplyPreset(cfg, *preset); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if *lang != "" {
		cfg.Engine.Language = *lang
	}
	if *seed != 0 {
		cfg.Engine.Seed = *seed
	}
	if *minProbability >= 0 {
		cfg.Engine.MinProbability = *minProbability
	}

	var queries []string
	if *query != "" {
		queries = []string{*query}
	} else {
		var err error
		queries, err = export.ReadQueries(*in)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read input:", err)
			os.Exit(1)
		}
	}

	// Batch output goes to stdout; keep logs quiet unless something breaks.
	logger, err := observability.NewLogger("error")
	if err != nil {
		fmt.Fprintln(os.Stderr, "create logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	eng := engine.New(cfg.Engine, logger)

	var ai *aiclient.Client
	if *useAI {
		ai, err = aiclient.New(cfg.AI, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ai client:", err)
			os.Exit(1)
		}
	}

	results := make([][]models.SubQueryPrediction, len(queries))
	errs := make([]error, len(queries))

	sem := make(chan struct{}, *concurrency)
	done := make(chan int, len(queries))

	for i, q := range queries {
		i, q := i, q
		sem <- struct{}{} // acquire
		go func() {
			defer func() { <-sem; done <- i }()
			preds, err := fanout(context.Background(), eng, ai, q, cfg.Engine.Language)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = filterByProbability(preds, cfg.Engine.MinProbability)
		}()
	}
	for range queries {
		<-done
	}

	tagRows := *in != ""
	var rows []models.SubQueryPrediction
	failed := 0
	for i, q := range queries {
		if errs[i] != nil {
			fmt.Fprintf(os.Stderr, "fanout %q: %v\n", q, errs[i])
			failed++
			continue
		}
		for _, p := range results[i] {
			if tagRows {
				p.SourceQuery = q
			}
			rows = append(rows, p)
		}
	}

	var w *os.File
	if *out == "" {
		w = os.Stdout
	} else {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create output:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if _, err := export.Write(w, *format, rows); err != nil {
		fmt.Fprintln(os.Stderr, "write output:", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func fanout(ctx context.Context, eng *engine.Engine, ai *aiclient.Client, query, language string) ([]models.SubQueryPrediction, error) {
	if ai != nil {
		analysis := eng.Analyze(ctx, query, language)
		resp, err := ai.GeneratePredictions(ctx, query, analysis.Summary(), analysis.Language)
		if err != nil {
			return nil, err
		}
		return resp.Predictions, nil
	}
	_, predictions := eng.GenerateFanout(ctx, query, language)
	return predictions, nil
}

func filterByProbability(predictions []models.SubQueryPrediction, min float64) []models.SubQueryPrediction {
	if min <= 0 {
		return predictions
	}
	kept := predictions[:0]
	for _, p := range predictions {
		if p.Probability >= min {
			kept = append(kept, p)
		}
	}
	return kept
}
