package vision

import (
	"context"
	"time"

	"github.com/joseph-ayodele/contract-analyzer/internal/imagecheck"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
)

// OpenAIExtractor adapts an llm.VisionCompleter into the Extractor chain.
type OpenAIExtractor struct {
	Model     string
	Completer llm.VisionCompleter
	MaxTokens int
}

func NewOpenAIExtractor(model string, completer llm.VisionCompleter) *OpenAIExtractor {
	return &OpenAIExtractor{
		Model:     model,
		Completer: completer,
		MaxTokens: 4000,
	}
}

func (e *OpenAIExtractor) Name() string {
	return e.Model
}

func (e *OpenAIExtractor) Extract(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	resp, err := e.Completer.CompleteVision(ctx, llm.VisionRequest{
		Model:        e.Model,
		Prompt:       BuildParsingPrompt(req.Role),
		ImageDataURL: imagecheck.DataURL(req.ImageData, req.Filename),
		Detail:       "high",
		Temperature:  0.1,
		MaxTokens:    e.MaxTokens,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Text:      resp.Text,
		ModelUsed: e.Model,
		Usage:     resp.Usage,
		Elapsed:   time.Since(start),
	}, nil
}
