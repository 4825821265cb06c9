package agents

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/contract-analyzer/constants"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
	"github.com/joseph-ayodele/contract-analyzer/internal/trace"
)

// ContextAgent builds the structural map of both documents and the section
// correspondence table. Malformed model output never fails the stage; only a
// failed model call does.
type ContextAgent struct {
	Completer   llm.ChatCompleter
	Model       string
	Temperature float32
	MaxTokens   int
	Logger      *slog.Logger
	Tracer      trace.Tracer
}

func NewContextAgent(completer llm.ChatCompleter, model string, logger *slog.Logger, tracer trace.Tracer) *ContextAgent {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = trace.Noop{}
	}
	return &ContextAgent{
		Completer:   completer,
		Model:       model,
		Temperature: 0.1,
		MaxTokens:   4000,
		Logger:      logger,
		Tracer:      tracer,
	}
}

// Contextualize issues one structured-extraction request for the full
// DocumentContext shape and decodes it defensively. On decode failure it
// reconstructs a reduced context deterministically instead of raising.
func (a *ContextAgent) Contextualize(ctx context.Context, originalText, amendmentText string) (entity.DocumentContext, llm.TokenUsage, error) {
	start := time.Now()
	a.Tracer.Event(ctx, "contextualization.start", map[string]any{
		"original_text_length":  len(originalText),
		"amendment_text_length": len(amendmentText),
	})

	resp, err := a.Completer.Complete(ctx, llm.ChatRequest{
		Model:       a.Model,
		System:      contextSystemPrompt(),
		User:        contextAnalysisPrompt(originalText, amendmentText),
		Temperature: a.Temperature,
		MaxTokens:   a.MaxTokens,
	})
	if err != nil {
		return entity.DocumentContext{}, llm.TokenUsage{}, common.NewAppError(
			"CONTEXTUALIZATION_ERROR", "document contextualization call failed", err)
	}

	parsed, degraded := llm.Decode(resp.Text, llm.ShapeObject)
	var dc entity.DocumentContext
	if degraded != nil {
		a.Logger.Warn("context.decode_degraded",
			"reason", degraded.Reason,
			"raw_len", len(degraded.RawText),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		dc = a.fallbackContext(originalText, amendmentText, degraded)
	} else {
		// Advisory only: a shape drift here is absorbed by the per-field
		// decode below, but it is worth surfacing for prompt tuning.
		if err := llm.ValidateJSONAgainstSchema(llm.BuildDocumentContextJSONSchema(), parsed); err != nil {
			a.Logger.Warn("context.schema_advisory", "error", err)
		}
		dc = decodeContext(parsed, a.Logger)
		if dc.SectionMapping.ParsingMethod == "" {
			dc.SectionMapping.ParsingMethod = constants.ParsingMethodJSON
		}
	}
	dc.EnsureDefaults()

	a.Tracer.Event(ctx, "contextualization.done", map[string]any{
		"degraded":        degraded != nil,
		"key_terms":       len(dc.KeyTermsIdentified),
		"correspondences": len(dc.SectionMapping.DirectCorrespondences),
	})
	return dc, resp.Usage, nil
}

// decodeContext unmarshals each of the five top-level fields independently.
// A field that is absent or has an unusable shape collapses to its empty
// default instead of poisoning the whole context.
func decodeContext(parsed json.RawMessage, logger *slog.Logger) entity.DocumentContext {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(parsed, &top); err != nil {
		// Decode already validated this as a JSON object; an error here means
		// it was a scalar or array at top level.
		return entity.DocumentContext{}
	}

	var dc entity.DocumentContext
	unmarshalField(top, "original_document_structure", &dc.OriginalDocumentStructure, logger)
	unmarshalField(top, "amendment_document_structure", &dc.AmendmentDocumentStructure, logger)
	unmarshalField(top, "section_mapping", &dc.SectionMapping, logger)
	unmarshalField(top, "document_types", &dc.DocumentTypes, logger)
	unmarshalField(top, "key_terms_identified", &dc.KeyTermsIdentified, logger)
	return dc
}

func unmarshalField(top map[string]json.RawMessage, key string, dst any, logger *slog.Logger) {
	raw, ok := top[key]
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("context.field_shape_mismatch", "field", key, "error", err)
	}
}

// fallbackContext rebuilds a reduced context when the model response carried
// no decodable JSON. Key terms come from the deterministic extractor; the raw
// undecoded text rides along in the section mapping for audit.
func (a *ContextAgent) fallbackContext(originalText, amendmentText string, degraded *llm.Degraded) entity.DocumentContext {
	return entity.DocumentContext{
		OriginalDocumentStructure:  entity.FallbackStructure(len(originalText)),
		AmendmentDocumentStructure: entity.FallbackStructure(len(amendmentText)),
		SectionMapping: entity.SectionMapping{
			RawAnalysis:   degraded.RawText,
			ParsingMethod: constants.ParsingMethodFallback,
		},
		DocumentTypes: map[string]any{
			"original":  map[string]any{"type": "contract", "method": "inferred"},
			"amendment": map[string]any{"type": "amendment", "method": "inferred"},
		},
		KeyTermsIdentified: ExtractKeyTerms(originalText, amendmentText),
	}
}

func contextSystemPrompt() string {
	parts := []string{
		"You are a senior legal document analyst specializing in contract structure analysis and document comparison preparation.",
		"Parse legal documents to identify hierarchical organization: sections, subsections, clauses, exhibits, and schedules.",
		"Create precise mappings between corresponding sections in the original contract and the amendment, handling renumbering and reorganization.",
		"Classify each document's type, purpose, and relationship, and extract defined terms, legal concepts, and cross-references.",
		"Flag ambiguous document elements and note quality issues; your analysis drives downstream change detection.",
	}
	return strings.Join(parts, " ")
}

func contextAnalysisPrompt(originalText, amendmentText string) string {
	var b strings.Builder
	b.WriteString("Analyze these two legal documents and provide a structural and contextual analysis.\n\n")
	b.WriteString("DOCUMENT 1 - ORIGINAL CONTRACT:\n")
	b.WriteString(originalText)
	b.WriteString("\n\nDOCUMENT 2 - AMENDMENT:\n")
	b.WriteString(amendmentText)
	b.WriteString("\n\nProvide:\n")
	b.WriteString("1. Complete hierarchical structure for each document, including numbering schemes and exhibits/schedules.\n")
	b.WriteString("2. Section mapping: direct correspondences with confidence scores, amendment-only sections (additions), original-only sections (potential deletions).\n")
	b.WriteString("3. Document classification: type, category, relationship between the documents.\n")
	b.WriteString("4. Key terms: defined terms, critical legal concepts, important dates and amounts.\n\n")
	b.WriteString("Format your response as a valid JSON object with this structure:\n")
	b.WriteString(contextShapeExample)
	return b.String()
}

const contextShapeExample = `{
  "original_document_structure": {
    "document_type": "string",
    "total_sections": 0,
    "section_hierarchy": [
      {"section_id": "Section 1", "title": "Definitions", "subsections": ["1.1"], "content_summary": "brief description", "page_references": ["page 1"]}
    ],
    "exhibits_schedules": ["Exhibit A"],
    "numbering_scheme": "description of numbering pattern"
  },
  "amendment_document_structure": { "same shape": "as above" },
  "section_mapping": {
    "direct_correspondences": [
      {"original_section": "Section 1", "amendment_section": "Section 1", "mapping_confidence": 0.95, "notes": "Direct correspondence with modifications"}
    ],
    "amendment_only_sections": [
      {"section_id": "Section 1.3", "classification": "addition", "notes": "New subsection not in original"}
    ],
    "original_only_sections": [
      {"section_id": "Section 5", "classification": "potential_deletion", "notes": "Not referenced in amendment"}
    ]
  },
  "document_types": {
    "original": {"type": "Service Agreement", "category": "Commercial Contract"},
    "amendment": {"type": "First Amendment", "category": "Contract Modification"}
  },
  "key_terms_identified": ["Defined Term 1", "Service Level Agreement"]
}`
