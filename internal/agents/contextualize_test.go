package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-analyzer/constants"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
)

// fakeCompleter replays scripted responses in order; an empty script errors.
type fakeCompleter struct {
	responses []llm.ChatResponse
	errs      []error
	requests  []llm.ChatRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	f.requests = append(f.requests, req)
	i := len(f.requests) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return llm.ChatResponse{}, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return llm.ChatResponse{}, errors.New("no scripted response")
}

const fullContextJSON = `{
  "original_document_structure": {"document_type": "Service Agreement", "total_sections": 8, "section_hierarchy": [{"section_id": "Section 4", "title": "Payment"}]},
  "amendment_document_structure": {"document_type": "First Amendment", "total_sections": 3},
  "section_mapping": {
    "direct_correspondences": [{"original_section": "Section 4.2", "amendment_section": "Section 4.2", "mapping_confidence": 0.95}],
    "amendment_only_sections": [{"section_id": "Section 9", "classification": "addition"}],
    "original_only_sections": []
  },
  "document_types": {"original": {"type": "Service Agreement"}, "amendment": {"type": "First Amendment"}},
  "key_terms_identified": ["Payment Terms", "Net 45"]
}`

func TestContextualizeParsesFullResponse(t *testing.T) {
	fake := &fakeCompleter{responses: []llm.ChatResponse{
		{Text: "Here is the analysis:\n" + fullContextJSON, Usage: llm.TokenUsage{TotalTokens: 120}},
	}}
	agent := NewContextAgent(fake, "gpt-4", nil, nil)

	dc, usage, err := agent.Contextualize(context.Background(), "original text", "amendment text")
	require.NoError(t, err)

	assert.Equal(t, "Service Agreement", dc.OriginalDocumentStructure.DocumentType)
	require.Len(t, dc.SectionMapping.DirectCorrespondences, 1)
	assert.Equal(t, "Section 4.2", dc.SectionMapping.DirectCorrespondences[0].OriginalSection)
	assert.Equal(t, []string{"Payment Terms", "Net 45"}, dc.KeyTermsIdentified)
	assert.Equal(t, 120, usage.TotalTokens)
	assert.Equal(t, constants.ParsingMethodJSON, dc.SectionMapping.ParsingMethod)
	assert.False(t, dc.SectionMapping.IsDegraded())
}

func TestContextualizeBackfillsMissingFields(t *testing.T) {
	// Only one of the five fields present: the rest must come back as empty
	// defaults, never nil maps or lists.
	fake := &fakeCompleter{responses: []llm.ChatResponse{
		{Text: `{"key_terms_identified": ["Liability Cap"]}`},
	}}
	agent := NewContextAgent(fake, "gpt-4", nil, nil)

	dc, _, err := agent.Contextualize(context.Background(), "original", "amendment")
	require.NoError(t, err)

	assert.Equal(t, []string{"Liability Cap"}, dc.KeyTermsIdentified)
	assert.NotNil(t, dc.DocumentTypes)
	assert.Empty(t, dc.SectionMapping.DirectCorrespondences)
	assert.Equal(t, "", dc.OriginalDocumentStructure.DocumentType)
}

func TestContextualizeFieldShapeMismatchCollapses(t *testing.T) {
	// section_mapping as a string instead of an object: that field drops to
	// its default, the usable fields survive.
	fake := &fakeCompleter{responses: []llm.ChatResponse{
		{Text: `{"section_mapping": "could not determine", "key_terms_identified": ["Payment Terms"]}`},
	}}
	agent := NewContextAgent(fake, "gpt-4", nil, nil)

	dc, _, err := agent.Contextualize(context.Background(), "original", "amendment")
	require.NoError(t, err)
	assert.Empty(t, dc.SectionMapping.DirectCorrespondences)
	assert.Equal(t, []string{"Payment Terms"}, dc.KeyTermsIdentified)
}

func TestContextualizeDegradedFallback(t *testing.T) {
	raw := `The original Service Agreement has a "Payment Terms" clause in Section 4.2 but I cannot produce structured output.`
	fake := &fakeCompleter{responses: []llm.ChatResponse{{Text: raw}}}
	agent := NewContextAgent(fake, "gpt-4", nil, nil)

	dc, _, err := agent.Contextualize(context.Background(), raw, "amendment text")
	require.NoError(t, err, "decode failure must not fail the stage")

	assert.True(t, dc.SectionMapping.IsDegraded())
	assert.Equal(t, constants.ParsingMethodFallback, dc.SectionMapping.ParsingMethod)
	assert.Equal(t, raw, dc.SectionMapping.RawAnalysis, "raw text must be preserved for audit")
	assert.Equal(t, "fallback", dc.OriginalDocumentStructure.Analysis)
	assert.NotEmpty(t, dc.KeyTermsIdentified, "deterministic key terms expected")
	assert.Contains(t, dc.DocumentTypes, "original")
}

func TestContextualizeCallFailure(t *testing.T) {
	fake := &fakeCompleter{errs: []error{errors.New("rate limited")}}
	agent := NewContextAgent(fake, "gpt-4", nil, nil)

	_, _, err := agent.Contextualize(context.Background(), "original", "amendment")
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONTEXTUALIZATION_ERROR", appErr.Code)
}

func TestContextualizeDedupesMapping(t *testing.T) {
	fake := &fakeCompleter{responses: []llm.ChatResponse{{Text: `{
		"section_mapping": {
			"direct_correspondences": [{"original_section": "Section 2", "amendment_section": "Section 2", "mapping_confidence": 0.9}],
			"amendment_only_sections": [{"section_id": "Section 2"}, {"section_id": "Section 7"}],
			"original_only_sections": [{"section_id": "Section 7"}]
		}
	}`}}}
	agent := NewContextAgent(fake, "gpt-4", nil, nil)

	dc, _, err := agent.Contextualize(context.Background(), "original", "amendment")
	require.NoError(t, err)

	require.Len(t, dc.SectionMapping.AmendmentOnlySections, 1)
	assert.Equal(t, "Section 7", dc.SectionMapping.AmendmentOnlySections[0].SectionID)
	assert.Empty(t, dc.SectionMapping.OriginalOnlySections, "Section 7 already claimed by amendment-only")
}
