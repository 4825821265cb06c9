package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/contract-analyzer/constants"
	"github.com/joseph-ayodele/contract-analyzer/internal/agents"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
	"github.com/joseph-ayodele/contract-analyzer/internal/imagecheck"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
	"github.com/joseph-ayodele/contract-analyzer/internal/trace"
	"github.com/joseph-ayodele/contract-analyzer/internal/vision"
)

// schemaGate is the hard output contract: the encoded analysis must satisfy
// the closed ChangeAnalysis schema. The violation detail rides in the error
// chain alongside the schema sentinel.
func schemaGate(encoded []byte) error {
	if err := llm.ValidateJSONAgainstSchema(llm.BuildChangeAnalysisJSONSchema(), encoded); err != nil {
		return common.NewAppError("SCHEMA_ERROR", "final analysis failed schema validation",
			fmt.Errorf("%w: %v", common.ErrSchema, err))
	}
	return nil
}

// VisionExtractor is the capability the pipeline needs from the vision stage.
// *vision.Chain satisfies it; tests substitute fakes.
type VisionExtractor interface {
	Extract(ctx context.Context, req vision.Request) (vision.Result, error)
}

// Input is one comparison: the original contract image and the amendment image.
type Input struct {
	OriginalImage  []byte
	OriginalName   string
	AmendmentImage []byte
	AmendmentName  string
	SessionID      string
}

// Pipeline sequences validation, vision extraction, contextualization, change
// extraction, and output validation for one document pair. Stages are strictly
// sequential; only the two independent vision calls run concurrently.
type Pipeline struct {
	Vision     VisionExtractor
	Context    *agents.ContextAgent
	Extraction *agents.ExtractionAgent
	Logger     *slog.Logger
	Tracer     trace.Tracer
}

func New(visionStage VisionExtractor, contextAgent *agents.ContextAgent, extractionAgent *agents.ExtractionAgent, logger *slog.Logger, tracer trace.Tracer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = trace.Noop{}
	}
	return &Pipeline{
		Vision:     visionStage,
		Context:    contextAgent,
		Extraction: extractionAgent,
		Logger:     logger,
		Tracer:     tracer,
	}
}

// Run executes the full comparison state machine. On failure the returned
// result still carries processing metadata recording the last completed step
// and the error; the pipeline never retries — retries live inside the vision
// chain only.
func (p *Pipeline) Run(ctx context.Context, in Input) (entity.ComparisonResult, error) {
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = "contract_comparison_" + uuid.New().String()[:8]
	}
	ctx = common.WithSessionID(ctx, sessionID)

	start := time.Now()
	meta := map[string]any{
		"session_id":      sessionID,
		"start_time":      start.UTC().Format(time.RFC3339),
		"steps_completed": []string{},
		"model_usage":     map[string]any{},
	}
	state := constants.StateInit

	fail := func(failedIn constants.PipelineState, err error) (entity.ComparisonResult, error) {
		meta["state"] = string(constants.StateFailed)
		meta["failed_in"] = string(failedIn)
		meta["error"] = err.Error()
		meta["success"] = false
		meta["total_duration_ms"] = time.Since(start).Milliseconds()
		p.Logger.Error("pipeline.failed",
			"session_id", sessionID,
			"failed_in", string(failedIn),
			"error", err,
		)
		p.Tracer.Event(ctx, "pipeline.failed", map[string]any{
			"failed_in": string(failedIn),
			"error":     err.Error(),
		})
		return entity.ComparisonResult{ProcessingMetadata: meta}, err
	}
	complete := func(step string) {
		meta["steps_completed"] = append(meta["steps_completed"].([]string), step)
	}

	p.Tracer.Event(ctx, "pipeline.start", map[string]any{
		"original_file":  in.OriginalName,
		"amendment_file": in.AmendmentName,
	})

	// VALIDATING_INPUT
	state = constants.StateValidatingInput
	if err := imagecheck.Validate(in.OriginalImage, in.OriginalName); err != nil {
		return fail(state, common.WrapError(err, "original contract validation failed"))
	}
	if err := imagecheck.Validate(in.AmendmentImage, in.AmendmentName); err != nil {
		return fail(state, common.WrapError(err, "amendment validation failed"))
	}
	complete(constants.StepInputValidation)

	// EXTRACTING_TEXT — the two extractions are independent; both must land
	// before contextualization starts.
	state = constants.StateExtractingText
	var originalRes, amendmentRes vision.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		originalRes, err = p.Vision.Extract(gctx, vision.Request{
			ImageData: in.OriginalImage,
			Filename:  in.OriginalName,
			Role:      constants.RoleOriginal,
		})
		return err
	})
	g.Go(func() error {
		var err error
		amendmentRes, err = p.Vision.Extract(gctx, vision.Request{
			ImageData: in.AmendmentImage,
			Filename:  in.AmendmentName,
			Role:      constants.RoleAmendment,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return fail(state, err)
	}
	complete(constants.StepImageParsing)
	meta["model_usage"].(map[string]any)["image_parsing"] = map[string]any{
		"model":        originalRes.ModelUsed,
		"total_tokens": originalRes.Usage.TotalTokens + amendmentRes.Usage.TotalTokens,
	}

	// CONTEXTUALIZING
	state = constants.StateContextualizing
	dctx, ctxUsage, err := p.Context.Contextualize(ctx, originalRes.Text, amendmentRes.Text)
	if err != nil {
		return fail(state, err)
	}
	if issues := agents.ValidateContext(dctx); len(issues) > 0 {
		p.Logger.Warn("pipeline.context_issues", "session_id", sessionID, "issues", issues)
		meta["context_issues"] = issues
	}
	complete(constants.StepContextualize)
	meta["model_usage"].(map[string]any)["contextualization"] = map[string]any{
		"model":        p.Context.Model,
		"total_tokens": ctxUsage.TotalTokens,
	}

	// EXTRACTING_CHANGES
	state = constants.StateExtractingChanges
	analysis, extUsage, err := p.Extraction.ExtractChanges(ctx, originalRes.Text, amendmentRes.Text, dctx)
	if err != nil {
		return fail(state, err)
	}
	complete(constants.StepChangeExtraction)
	meta["model_usage"].(map[string]any)["change_extraction"] = map[string]any{
		"model":        p.Extraction.Model,
		"total_tokens": extUsage.TotalTokens,
	}

	// VALIDATING_OUTPUT — hard schema gate plus the advisory lint pass.
	state = constants.StateValidatingOutput
	encoded, err := json.Marshal(analysis)
	if err != nil {
		return fail(state, fmt.Errorf("encode analysis: %w", err))
	}
	if err := schemaGate(encoded); err != nil {
		return fail(state, err)
	}
	if issues := agents.ValidateAnalysis(analysis); len(issues) > 0 {
		p.Logger.Warn("pipeline.analysis_issues", "session_id", sessionID, "issues", issues)
		meta["analysis_issues"] = issues
	}
	complete(constants.StepOutputValidation)

	state = constants.StateDone
	meta["state"] = string(state)
	meta["success"] = true
	meta["end_time"] = time.Now().UTC().Format(time.RFC3339)
	meta["total_duration_ms"] = time.Since(start).Milliseconds()

	p.Logger.Info("pipeline.ok",
		"session_id", sessionID,
		"sections_changed", len(analysis.SectionsChanged),
		"topics_touched", len(analysis.TopicsTouched),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	p.Tracer.Event(ctx, "pipeline.done", map[string]any{
		"sections_changed": len(analysis.SectionsChanged),
		"topics_touched":   len(analysis.TopicsTouched),
	})

	return entity.ComparisonResult{
		Context:            dctx,
		Analysis:           analysis,
		ProcessingMetadata: meta,
	}, nil
}
