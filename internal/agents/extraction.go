package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/contract-analyzer/constants"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
	"github.com/joseph-ayodele/contract-analyzer/internal/trace"
)

// Confidence assignment is tied to provenance: a fully parsed model response
// keeps the model's own score (default 0.8 when omitted); any deterministic
// fallback reconstruction reports 0.6.
const (
	confidenceParsedDefault = 0.8
	confidenceFallback      = 0.6
)

// minUsableSummaryLen is the threshold under which a model-supplied summary is
// replaced by the narrative-summary fallback.
const minUsableSummaryLen = 50

// ExtractionAgent consumes the document context and emits the bounded change
// record. Every missing or empty piece of model output has a deterministic
// reconstruction path; only a failed model call raises.
type ExtractionAgent struct {
	Completer    llm.ChatCompleter
	Model        string
	SummaryModel string
	Temperature  float32
	MaxTokens    int
	Logger       *slog.Logger
	Tracer       trace.Tracer
}

func NewExtractionAgent(completer llm.ChatCompleter, model, summaryModel string, logger *slog.Logger, tracer trace.Tracer) *ExtractionAgent {
	if summaryModel == "" {
		summaryModel = model
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = trace.Noop{}
	}
	return &ExtractionAgent{
		Completer:    completer,
		Model:        model,
		SummaryModel: summaryModel,
		Temperature:  0.1,
		MaxTokens:    3000,
		Logger:       logger,
		Tracer:       tracer,
	}
}

// ExtractChanges runs the extraction call, decodes defensively, applies the
// fallback chain for any missing piece, and constructs the validated
// ChangeAnalysis.
func (a *ExtractionAgent) ExtractChanges(ctx context.Context, originalText, amendmentText string, dctx entity.DocumentContext) (entity.ChangeAnalysis, llm.TokenUsage, error) {
	start := time.Now()
	a.Tracer.Event(ctx, "extraction.start", map[string]any{
		"key_terms_count": len(dctx.KeyTermsIdentified),
		"correspondences": len(dctx.SectionMapping.DirectCorrespondences),
	})

	resp, err := a.Completer.Complete(ctx, llm.ChatRequest{
		Model:       a.Model,
		System:      extractionSystemPrompt(),
		User:        extractionPrompt(originalText, amendmentText, dctx),
		Temperature: a.Temperature,
		MaxTokens:   a.MaxTokens,
	})
	if err != nil {
		return entity.ChangeAnalysis{}, llm.TokenUsage{}, common.NewAppError(
			"EXTRACTION_ERROR", "change extraction call failed", err)
	}

	parsed, degraded := llm.Decode(resp.Text, llm.ShapeObject)

	var (
		sections     []string
		topics       []string
		summary      string
		confidence   *float64
		notes        []string
		usedFallback bool
	)

	if degraded != nil {
		a.Logger.Warn("extraction.decode_degraded",
			"reason", degraded.Reason,
			"raw_len", len(degraded.RawText),
		)
		usedFallback = true
		notes = append(notes, "Fallback extraction used due to parsing issues")
	} else {
		var fields struct {
			SectionsChanged    []string `json:"sections_changed"`
			TopicsTouched      []string `json:"topics_touched"`
			SummaryOfTheChange string   `json:"summary_of_the_change"`
			ConfidenceScore    *float64 `json:"confidence_score"`
			ProcessingNotes    string   `json:"processing_notes"`
		}
		var top map[string]json.RawMessage
		if err := json.Unmarshal(parsed, &top); err == nil {
			unmarshalField(top, "sections_changed", &fields.SectionsChanged, a.Logger)
			unmarshalField(top, "topics_touched", &fields.TopicsTouched, a.Logger)
			unmarshalField(top, "summary_of_the_change", &fields.SummaryOfTheChange, a.Logger)
			unmarshalField(top, "confidence_score", &fields.ConfidenceScore, a.Logger)
			unmarshalField(top, "processing_notes", &fields.ProcessingNotes, a.Logger)
		}
		sections = compactStrings(fields.SectionsChanged)
		topics = compactStrings(fields.TopicsTouched)
		summary = strings.TrimSpace(fields.SummaryOfTheChange)
		confidence = fields.ConfidenceScore
		if n := strings.TrimSpace(fields.ProcessingNotes); n != "" {
			notes = append(notes, n)
		}
	}

	if len(sections) == 0 {
		sections = DeriveChangePatterns(dctx.SectionMapping)
		if len(sections) > 0 {
			usedFallback = true
			notes = append(notes, "sections_changed derived from section mapping")
		}
	}
	if len(sections) == 0 && degraded != nil {
		sections = []string{"Document Modified"}
	}

	if len(topics) == 0 {
		topics = CategorizeTopics(sections, dctx.KeyTermsIdentified, originalText, amendmentText)
		usedFallback = true
		notes = append(notes, "topics_touched derived by keyword categorization")
	}

	if len(summary) < minUsableSummaryLen {
		var usage llm.TokenUsage
		summary, usage = a.generateSummary(ctx, sections, topics, originalText, amendmentText, dctx)
		resp.Usage.TotalTokens += usage.TotalTokens
		resp.Usage.PromptTokens += usage.PromptTokens
		resp.Usage.CompletionTokens += usage.CompletionTokens
		usedFallback = true
		notes = append(notes, "summary generated by narrative fallback")
	}

	if usedFallback {
		c := confidenceFallback
		confidence = &c
	} else if confidence == nil {
		c := confidenceParsedDefault
		confidence = &c
	}

	if len(sections) > entity.MaxSectionsChanged {
		sections = sections[:entity.MaxSectionsChanged]
	}
	if len(topics) > entity.MaxTopicsTouched {
		topics = topics[:entity.MaxTopicsTouched]
	}

	var notesPtr *string
	if len(notes) > 0 {
		joined := strings.Join(notes, "; ")
		notesPtr = &joined
	}

	analysis, err := entity.NewChangeAnalysis(sections, topics, summary, confidence, notesPtr)
	if err != nil {
		return entity.ChangeAnalysis{}, resp.Usage, err
	}

	a.Tracer.Event(ctx, "extraction.done", map[string]any{
		"sections_changed": len(analysis.SectionsChanged),
		"topics_touched":   len(analysis.TopicsTouched),
		"fallback":         usedFallback,
		"elapsed_ms":       time.Since(start).Milliseconds(),
	})
	return analysis, resp.Usage, nil
}

// DeriveChangePatterns reconstructs section-change candidates directly from
// the section mapping when the model omitted them: high-confidence
// correspondences become modifications, one-sided sections become additions
// or deletions. Pure.
func DeriveChangePatterns(mapping entity.SectionMapping) []string {
	var out []string
	for _, c := range mapping.DirectCorrespondences {
		if c.MappingConfidence > 0.7 {
			out = append(out, "Modified: "+orUnknown(c.OriginalSection))
		}
	}
	for _, f := range mapping.AmendmentOnlySections {
		out = append(out, "Added: "+orUnknown(f.SectionID))
	}
	for _, f := range mapping.OriginalOnlySections {
		out = append(out, "Deleted: "+orUnknown(f.SectionID))
	}
	return out
}

// CategorizeTopics is the deterministic keyword fallback: it matches the
// fixed topic table against the combined document text, the key terms, and
// the derived section labels. Never returns an empty list.
func CategorizeTopics(sectionsChanged, keyTerms []string, originalText, amendmentText string) []string {
	combined := strings.ToLower(originalText + " " + amendmentText)

	var identified []string
	have := make(map[string]struct{})
	add := func(topic string) {
		if _, ok := have[topic]; !ok {
			have[topic] = struct{}{}
			identified = append(identified, topic)
		}
	}

	for _, topic := range constants.TopicOrder {
		for _, kw := range constants.TopicKeywords[topic] {
			if strings.Contains(combined, kw) {
				add(topic)
				break
			}
		}
	}
	for _, term := range keyTerms {
		lower := strings.ToLower(term)
		for _, topic := range constants.TopicOrder {
			for _, kw := range constants.TopicKeywords[topic] {
				if strings.Contains(lower, kw) {
					add(topic)
					break
				}
			}
		}
	}
	for _, section := range sectionsChanged {
		lower := strings.ToLower(section)
		for _, topic := range constants.TopicOrder {
			for _, kw := range constants.TopicKeywords[topic] {
				if strings.Contains(lower, kw) {
					add(topic)
					break
				}
			}
		}
	}

	if len(identified) == 0 {
		return []string{constants.DefaultTopic}
	}
	if len(identified) > constants.MaxFallbackTopics {
		identified = identified[:constants.MaxFallbackTopics]
	}
	return identified
}

// generateSummary is the narrative-summary fallback: a secondary, narrower
// model call; if that also fails, a templated summary assembled from the
// already-derived sections and topics.
func (a *ExtractionAgent) generateSummary(ctx context.Context, sections, topics []string, originalText, amendmentText string, dctx entity.DocumentContext) (string, llm.TokenUsage) {
	docTypes, _ := json.Marshal(dctx.DocumentTypes)

	var b strings.Builder
	b.WriteString("Generate a comprehensive summary of contract changes based on this analysis:\n\n")
	fmt.Fprintf(&b, "SECTIONS CHANGED: %s\n", strings.Join(sections, ", "))
	fmt.Fprintf(&b, "TOPICS AFFECTED: %s\n", strings.Join(topics, ", "))
	fmt.Fprintf(&b, "DOCUMENT CONTEXT: %s\n\n", truncate(string(docTypes), 1000))
	b.WriteString("Cover: what specifically changed, business implications, legal significance, and recommendations for stakeholders. ")
	b.WriteString("Keep the summary concise but comprehensive (200-400 words). Focus on actionable insights.\n")
	fmt.Fprintf(&b, "Original text length: %d characters. Amendment text length: %d characters.\n", len(originalText), len(amendmentText))

	resp, err := a.Completer.Complete(ctx, llm.ChatRequest{
		Model:       a.SummaryModel,
		System:      "You are a legal analyst creating executive summaries of contract changes for business stakeholders.",
		User:        b.String(),
		Temperature: 0.2,
		MaxTokens:   800,
	})
	if err == nil && len(strings.TrimSpace(resp.Text)) >= minUsableSummaryLen {
		return strings.TrimSpace(resp.Text), resp.Usage
	}
	if err != nil {
		a.Logger.Warn("extraction.summary_fallback_call_failed", "error", err)
	}
	return templatedSummary(sections, topics), llm.TokenUsage{}
}

// templatedSummary is the last-resort summary assembled from counts and names
// already derived deterministically.
func templatedSummary(sections, topics []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis of contract amendment affecting %d key areas: %s. ",
		len(topics), strings.Join(firstN(topics, 3), ", "))
	fmt.Fprintf(&b, "Changes identified in %d sections including: %s. ",
		len(sections), strings.Join(firstN(sections, 2), ", "))
	b.WriteString("The amendment modifies the original contract with updates that impact business operations and legal obligations. ")
	if len(topics) > 0 {
		fmt.Fprintf(&b, "Key areas of change include %s, which may affect contractual relationships and performance requirements. ",
			strings.Join(firstN(topics, 2), " and "))
	}
	b.WriteString("Stakeholders should review these changes for compliance with business objectives and legal requirements. ")
	b.WriteString("Note: automated analysis encountered processing limitations; manual review is recommended for a complete assessment.")
	return b.String()
}

func extractionSystemPrompt() string {
	parts := []string{
		"You are an expert legal change analyst specializing in contract comparison and amendment analysis.",
		"Detect all modifications, additions, and deletions between the documents, using the provided context and section mappings to focus the comparison.",
		"Categorize changes by legal/business domains: Payment Terms, Termination, Liability, Intellectual Property, Confidentiality, Compliance, Dispute Resolution, and similar standardized categories.",
		"Assess who benefits from each change, the risk implications, and potential compliance concerns.",
		"Focus on substantive changes, not formatting differences, and provide specific section references with exact quotes for material changes.",
	}
	return strings.Join(parts, " ")
}

func extractionPrompt(originalText, amendmentText string, dctx entity.DocumentContext) string {
	origStruct, _ := json.Marshal(dctx.OriginalDocumentStructure)
	amendStruct, _ := json.Marshal(dctx.AmendmentDocumentStructure)
	mapping, _ := json.Marshal(dctx.SectionMapping)
	docTypes, _ := json.Marshal(dctx.DocumentTypes)

	var b strings.Builder
	b.WriteString("Using the contextual analysis provided, extract and analyze all changes between these contract documents.\n\n")
	b.WriteString("ORIGINAL CONTRACT TEXT:\n")
	b.WriteString(originalText)
	b.WriteString("\n\nAMENDMENT TEXT:\n")
	b.WriteString(amendmentText)
	b.WriteString("\n\nCONTEXTUAL ANALYSIS:\n")
	fmt.Fprintf(&b, "Original structure: %s\n", truncate(string(origStruct), 1000))
	fmt.Fprintf(&b, "Amendment structure: %s\n", truncate(string(amendStruct), 1000))
	fmt.Fprintf(&b, "Section mapping: %s\n", truncate(string(mapping), 1500))
	fmt.Fprintf(&b, "Key terms: %s\n", strings.Join(dctx.KeyTermsIdentified, ", "))
	fmt.Fprintf(&b, "Document types: %s\n\n", truncate(string(docTypes), 500))
	b.WriteString("Pay special attention to direct correspondences with modifications, amendment-only sections (additions), and original-only sections (potential deletions).\n\n")
	b.WriteString("Format your response as a valid JSON object with this structure:\n")
	b.WriteString(`{
  "sections_changed": ["Section 3.1 - Payment Terms"],
  "topics_touched": ["Payment Terms", "Termination"],
  "summary_of_the_change": "Detailed analysis of what changed, business implications, legal significance, risk assessment, and overall impact.",
  "confidence_score": 0.95,
  "processing_notes": "Any challenges or quality concerns in analysis"
}`)
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func firstN(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func compactStrings(list []string) []string {
	out := list[:0]
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
