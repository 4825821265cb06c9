package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/contract-analyzer/internal/app"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
	"github.com/joseph-ayodele/contract-analyzer/internal/history"
	"github.com/joseph-ayodele/contract-analyzer/internal/imagecheck"
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
		format    = flag.String("format", "json", "output format: json or summary")
		output    = flag.String("output", "", "output file path (prints to stdout if not specified)")
		session   = flag.String("session", "", "optional session ID for tracing")
		verbose   = flag.Bool("verbose", false, "enable verbose output")
		noHistory = flag.Bool("no-history", false, "skip writing the run to the local history store")
	)
	flag.Parse()

	if flag.NArg() != 2 {
		printError("usage: contract-compare [flags] <original-image> <amendment-image>\n")
		flag.PrintDefaults()
		return 1
	}
	originalPath := flag.Arg(0)
	amendmentPath := flag.Arg(1)

	if *format != "json" && *format != "summary" {
		printError("Error: unsupported format %q (use json or summary)\n", *format)
		return 1
	}

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

	originalData, err := imagecheck.ReadAndValidate(originalPath)
	if err != nil {
		printError("Error: %v\n", err)
		return 1
	}
	amendmentData, err := imagecheck.ReadAndValidate(amendmentPath)
	if err != nil {
		printError("Error: %v\n", err)
		return 1
	}

	p := app.BuildPipeline(cfg, logger)

	ctx := context.Background()
	result, err := p.Run(ctx, pipeline.Input{
		OriginalImage:  originalData,
		OriginalName:   originalPath,
		AmendmentImage: amendmentData,
		AmendmentName:  amendmentPath,
		SessionID:      *session,
	})
	if err != nil {
		printError("Error: comparison failed: %v\n", err)
		if *verbose {
			printError("metadata: %+v\n", result.ProcessingMetadata)
		}
		return 1
	}

	if cfg.History.Enabled && !*noHistory {
		saveHistory(ctx, cfg.History.Path, originalPath, amendmentPath, result, logger)
	}

	formatted, err := formatResult(result, *format)
	if err != nil {
		printError("Error: %v\n", err)
		return 1
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(formatted), 0o644); err != nil {
			printError("Error: write output: %v\n", err)
			return 1
		}
		fmt.Printf("Results saved to: %s\n", *output)
	} else {
		fmt.Println(formatted)
	}
	return 0
}

func saveHistory(ctx context.Context, path, originalPath, amendmentPath string, result entity.ComparisonResult, logger *slog.Logger) {
	store, err := history.Open(ctx, path, logger)
	if err != nil {
		logger.Warn("history.open_failed", "path", path, "error", err)
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("history.close_failed", "error", err)
		}
	}()
	if _, err := store.SaveResult(ctx, originalPath, amendmentPath, result, true); err != nil {
		logger.Warn("history.save_failed", "error", err)
	}
}

func formatResult(result entity.ComparisonResult, format string) (string, error) {
	switch format {
	case "json":
		out := map[string]any{
			"sections_changed":      result.Analysis.SectionsChanged,
			"topics_touched":        result.Analysis.TopicsTouched,
			"summary_of_the_change": result.Analysis.SummaryOfTheChange,
			"confidence_score":      result.Analysis.ConfidenceScore,
			"processing_metadata": map[string]any{
				"session_id":        result.ProcessingMetadata["session_id"],
				"total_duration_ms": result.ProcessingMetadata["total_duration_ms"],
				"steps_completed":   result.ProcessingMetadata["steps_completed"],
			},
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode result: %w", err)
		}
		return string(b), nil

	case "summary":
		var b strings.Builder
		b.WriteString("CONTRACT COMPARISON ANALYSIS\n")
		b.WriteString("============================\n\n")
		fmt.Fprintf(&b, "SECTIONS CHANGED (%d):\n", len(result.Analysis.SectionsChanged))
		for _, s := range result.Analysis.SectionsChanged {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
		fmt.Fprintf(&b, "\nTOPICS AFFECTED (%d):\n", len(result.Analysis.TopicsTouched))
		for _, t := range result.Analysis.TopicsTouched {
			fmt.Fprintf(&b, "  - %s\n", t)
		}
		b.WriteString("\nCHANGE SUMMARY:\n")
		b.WriteString(result.Analysis.SummaryOfTheChange)
		b.WriteString("\n\nANALYSIS METADATA:\n")
		if result.Analysis.ConfidenceScore != nil {
			fmt.Fprintf(&b, "  - Confidence Score: %.0f%%\n", *result.Analysis.ConfidenceScore*100)
		}
		fmt.Fprintf(&b, "  - Session ID: %v\n", result.ProcessingMetadata["session_id"])
		fmt.Fprintf(&b, "  - Duration: %vms\n", result.ProcessingMetadata["total_duration_ms"])
		return b.String(), nil

	default:
		return "", fmt.Errorf("unsupported format type: %s", format)
	}
}
