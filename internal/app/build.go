// Package app assembles the comparison pipeline from configuration. Both
// command binaries build their pipeline here so wiring stays in one place.
package app

import (
	"log/slog"

	"github.com/joseph-ayodele/contract-analyzer/internal/agents"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm/openai"
	"github.com/joseph-ayodele/contract-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contract-analyzer/internal/trace"
	"github.com/joseph-ayodele/contract-analyzer/internal/vision"
)

// BuildPipeline wires the vision chain, both analysis agents, and the tracer
// from configuration.
func BuildPipeline(cfg *common.Config, logger *slog.Logger) *pipeline.Pipeline {
	client := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	}, logger)
	// Vision calls carry image payloads and get a longer per-attempt timeout.
	visionClient := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.Vision.Timeout,
	}, logger)

	models := append([]string{cfg.Vision.PreferredModel}, cfg.Vision.FallbackModels...)
	extractors := make([]vision.Extractor, 0, len(models))
	for _, m := range models {
		extractors = append(extractors, vision.NewOpenAIExtractor(m, visionClient))
	}
	chain := vision.NewChain(extractors, vision.ChainConfig{
		MaxRetries:  cfg.Vision.MaxRetries,
		BackoffBase: cfg.Vision.BackoffBase,
	}, logger)

	tracer := trace.NewSlog(logger)
	contextAgent := agents.NewContextAgent(client, cfg.LLM.Model, logger, tracer)
	extractionAgent := agents.NewExtractionAgent(client, cfg.LLM.Model, cfg.LLM.SummaryModel, logger, tracer)
	if cfg.LLM.Temperature > 0 {
		contextAgent.Temperature = cfg.LLM.Temperature
		extractionAgent.Temperature = cfg.LLM.Temperature
	}

	return pipeline.New(chain, contextAgent, extractionAgent, logger, tracer)
}
