package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/contract-analyzer/internal/app"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
	"github.com/joseph-ayodele/contract-analyzer/internal/export"
	"github.com/joseph-ayodele/contract-analyzer/internal/history"
	"github.com/joseph-ayodele/contract-analyzer/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		out       = flag.String("out", "comparisons.xlsx", "path for the XLSX batch report")
		verbose   = flag.Bool("verbose", false, "enable verbose output")
		noHistory = flag.Bool("no-history", false, "skip writing runs to the local history store")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		printError("usage: contract-batch [flags] <manifest.csv>\n")
		printError("each manifest line holds one pair: <original-image>,<amendment-image>\n")
		flag.PrintDefaults()
		return 1
	}
	manifestPath := flag.Arg(0)

	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		return 1
	}

	pairs, err := readManifest(manifestPath)
	if err != nil {
		printError("Error: %v\n", err)
		return 1
	}
	if len(pairs) == 0 {
		printError("Error: manifest %s lists no pairs\n", manifestPath)
		return 1
	}

	p := app.BuildPipeline(cfg, logger)
	ctx := context.Background()

	var store *history.Store
	if cfg.History.Enabled && !*noHistory {
		store, err = history.Open(ctx, cfg.History.Path, logger)
		if err != nil {
			logger.Warn("history.open_failed", "path", cfg.History.Path, "error", err)
			store = nil
		} else {
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("history.close_failed", "error", err)
				}
			}()
		}
	}

	// Pairs that fail to read never reach the pipeline; everything readable
	// goes through RunBatch in one pass and gets merged back by index.
	rows := make([]export.Row, len(pairs))
	runnable := make([]pipeline.Input, 0, len(pairs))
	runnableIdx := make([]int, 0, len(pairs))
	for i, pair := range pairs {
		rows[i] = export.Row{OriginalFile: pair[0], AmendmentFile: pair[1]}
		input, readErr := loadPair(pair[0], pair[1])
		if readErr != nil {
			logger.Warn("batch.pair.read_failed", "index", i, "error", readErr)
			rows[i].Err = readErr
			continue
		}
		runnable = append(runnable, input)
		runnableIdx = append(runnableIdx, i)
	}

	entries := p.RunBatch(ctx, runnable)
	succeeded := 0
	for j, entry := range entries {
		i := runnableIdx[j]
		if entry.Err != nil {
			rows[i].Err = entry.Err
		} else {
			rows[i].Result = entry.Result
			succeeded++
		}
		if store != nil {
			// Failed entries carry no result; record the attempt with an
			// empty payload so the run still shows up in history.
			result := entity.ComparisonResult{}
			if entry.Result != nil {
				result = *entry.Result
			}
			if _, err := store.SaveResult(ctx, pairs[i][0], pairs[i][1], result, entry.Err == nil); err != nil {
				logger.Warn("history.save_failed", "index", i, "error", err)
			}
		}
	}

	svc := export.NewService(logger)
	report, err := svc.BuildComparisonXLSX(rows)
	if err != nil {
		printError("Error: build report: %v\n", err)
		return 1
	}
	if err := os.WriteFile(*out, report, 0o644); err != nil {
		printError("Error: write report: %v\n", err)
		return 1
	}

	fmt.Printf("Processed %d pairs (%d succeeded, %d failed). Report saved to: %s\n",
		len(pairs), succeeded, len(pairs)-succeeded, *out)
	return 0
}

// readManifest parses a two-column CSV of original,amendment image paths.
// Blank lines and lines starting with # are skipped.
func readManifest(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	pairs := make([][2]string, 0, len(records))
	for i, rec := range records {
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		if len(rec) != 2 {
			return nil, fmt.Errorf("manifest line %d: want 2 columns, got %d", i+1, len(rec))
		}
		pairs = append(pairs, [2]string{rec[0], rec[1]})
	}
	return pairs, nil
}

func loadPair(originalPath, amendmentPath string) (pipeline.Input, error) {
	originalData, err := os.ReadFile(originalPath)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("read original image: %w", err)
	}
	amendmentData, err := os.ReadFile(amendmentPath)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("read amendment image: %w", err)
	}
	return pipeline.Input{
		OriginalImage:  originalData,
		OriginalName:   originalPath,
		AmendmentImage: amendmentData,
		AmendmentName:  amendmentPath,
	}, nil
}
