package agents

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-analyzer/constants"
	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
)

func richMapping() entity.SectionMapping {
	return entity.SectionMapping{
		DirectCorrespondences: []entity.Correspondence{
			{OriginalSection: "Section 4.2", AmendmentSection: "Section 4.2", MappingConfidence: 0.95},
			{OriginalSection: "Section 6.1", AmendmentSection: "Section 6.1", MappingConfidence: 0.4},
		},
		AmendmentOnlySections: []entity.SectionFlag{{SectionID: "Section 9", Classification: "addition"}},
		OriginalOnlySections:  []entity.SectionFlag{{SectionID: "Section 5", Classification: "potential_deletion"}},
	}
}

func TestDeriveChangePatterns(t *testing.T) {
	got := DeriveChangePatterns(richMapping())
	want := []string{
		"Modified: Section 4.2", // 0.95 clears the confidence bar, 0.4 does not
		"Added: Section 9",
		"Deleted: Section 5",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeriveChangePatterns() = %v, want %v", got, want)
	}
}

func TestDeriveChangePatternsEmptyMapping(t *testing.T) {
	if got := DeriveChangePatterns(entity.SectionMapping{}); len(got) != 0 {
		t.Errorf("DeriveChangePatterns(empty) = %v, want none", got)
	}
}

func TestDeriveChangePatternsUnknownSection(t *testing.T) {
	mapping := entity.SectionMapping{
		DirectCorrespondences: []entity.Correspondence{{MappingConfidence: 0.9}},
	}
	got := DeriveChangePatterns(mapping)
	if len(got) != 1 || got[0] != "Modified: Unknown" {
		t.Errorf("DeriveChangePatterns() = %v, want [Modified: Unknown]", got)
	}
}

func TestCategorizeTopics(t *testing.T) {
	tests := []struct {
		name         string
		sections     []string
		keyTerms     []string
		originalText string
		wantContains []string
	}{
		{
			name:         "termination keyword in text",
			originalText: "Either party may terminate this agreement with notice.",
			wantContains: []string{"Termination"},
		},
		{
			name:         "payment keyword in key terms",
			keyTerms:     []string{"Invoice Schedule"},
			wantContains: []string{"Payment Terms"},
		},
		{
			name:         "liability keyword in section label",
			sections:     []string{"Modified: Limitation of Liability"},
			wantContains: []string{"Liability"},
		},
		{
			name:         "no match falls back to default topic",
			originalText: "Recital background text only.",
			wantContains: []string{constants.DefaultTopic},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeTopics(tt.sections, tt.keyTerms, tt.originalText, "")
			if len(got) == 0 {
				t.Fatal("CategorizeTopics() returned empty, must never be empty")
			}
			for _, want := range tt.wantContains {
				found := false
				for _, topic := range got {
					if topic == want {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("CategorizeTopics() = %v, want it to contain %q", got, want)
				}
			}
		})
	}
}

func TestCategorizeTopicsDeterministicOrder(t *testing.T) {
	text := "terminate payment liability confidential intellectual property indemnify"
	first := CategorizeTopics(nil, nil, text, text)
	for i := 0; i < 10; i++ {
		if got := CategorizeTopics(nil, nil, text, text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %v, want stable %v", i, got, first)
		}
	}
}

func TestCategorizeTopicsCap(t *testing.T) {
	var b strings.Builder
	for _, topic := range constants.TopicOrder {
		b.WriteString(constants.TopicKeywords[topic][0])
		b.WriteString(" ")
	}
	got := CategorizeTopics(nil, nil, b.String(), "")
	if len(got) > constants.MaxFallbackTopics {
		t.Errorf("got %d topics, cap is %d", len(got), constants.MaxFallbackTopics)
	}
}

const fullExtractionJSON = `{
  "sections_changed": ["Section 4.2 - Payment Terms"],
  "topics_touched": ["Payment Terms"],
  "summary_of_the_change": "The amendment extends the payment window from thirty days to forty-five days, shifting working-capital burden to the service provider and relaxing the late-payment penalty trigger accordingly.",
  "confidence_score": 0.92,
  "processing_notes": "Clean comparison"
}`

func TestExtractChangesParsedPath(t *testing.T) {
	fake := &fakeCompleter{responses: []llm.ChatResponse{
		{Text: "```json\n" + fullExtractionJSON + "\n```", Usage: llm.TokenUsage{TotalTokens: 300}},
	}}
	agent := NewExtractionAgent(fake, "gpt-4", "", nil, nil)

	analysis, usage, err := agent.ExtractChanges(context.Background(), "original", "amendment", entity.DocumentContext{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Section 4.2 - Payment Terms"}, analysis.SectionsChanged)
	assert.Equal(t, []string{"Payment Terms"}, analysis.TopicsTouched)
	require.NotNil(t, analysis.ConfidenceScore)
	assert.InDelta(t, 0.92, *analysis.ConfidenceScore, 1e-9, "parsed path keeps the model's own score")
	assert.Equal(t, 300, usage.TotalTokens)
	assert.Len(t, fake.requests, 1, "no fallback calls on the parsed path")
}

func TestExtractChangesParsedDefaultConfidence(t *testing.T) {
	noScore := `{
	  "sections_changed": ["Section 4.2"],
	  "topics_touched": ["Payment Terms"],
	  "summary_of_the_change": "The amendment extends the payment window from thirty days to forty-five days and updates the associated invoicing procedure for all service orders."
	}`
	fake := &fakeCompleter{responses: []llm.ChatResponse{{Text: noScore}}}
	agent := NewExtractionAgent(fake, "gpt-4", "", nil, nil)

	analysis, _, err := agent.ExtractChanges(context.Background(), "original", "amendment", entity.DocumentContext{})
	require.NoError(t, err)
	require.NotNil(t, analysis.ConfidenceScore)
	assert.InDelta(t, 0.8, *analysis.ConfidenceScore, 1e-9)
}

func TestExtractChangesSectionFallbackFromMapping(t *testing.T) {
	partial := `{
	  "sections_changed": [],
	  "topics_touched": ["Payment Terms"],
	  "summary_of_the_change": "The amendment modifies payment, adds a new audit section, and removes the legacy delivery schedule from the original service agreement entirely."
	}`
	fake := &fakeCompleter{responses: []llm.ChatResponse{{Text: partial}}}
	agent := NewExtractionAgent(fake, "gpt-4", "", nil, nil)

	dctx := entity.DocumentContext{SectionMapping: richMapping()}
	analysis, _, err := agent.ExtractChanges(context.Background(), "original", "amendment", dctx)
	require.NoError(t, err)

	assert.Contains(t, analysis.SectionsChanged, "Modified: Section 4.2")
	assert.Contains(t, analysis.SectionsChanged, "Added: Section 9")
	require.NotNil(t, analysis.ConfidenceScore)
	assert.InDelta(t, 0.6, *analysis.ConfidenceScore, 1e-9, "any fallback lowers confidence")
	require.NotNil(t, analysis.ProcessingNotes)
	assert.Contains(t, *analysis.ProcessingNotes, "section mapping")
}

func TestExtractChangesDegradedResponse(t *testing.T) {
	// First call: prose with no JSON. Second call: the narrative summary
	// fallback succeeds.
	summaryText := strings.Repeat("The amendment materially changes payment and termination provisions. ", 3)
	fake := &fakeCompleter{responses: []llm.ChatResponse{
		{Text: "I could not structure this, but the contract payment terms clearly changed."},
		{Text: summaryText, Usage: llm.TokenUsage{TotalTokens: 90}},
	}}
	agent := NewExtractionAgent(fake, "gpt-4", "gpt-4", nil, nil)

	analysis, usage, err := agent.ExtractChanges(context.Background(), "payment terms", "payment terms revised", entity.DocumentContext{})
	require.NoError(t, err, "degraded decode must not fail the stage")

	assert.Equal(t, []string{"Document Modified"}, analysis.SectionsChanged, "empty mapping leaves only the generic marker")
	assert.Contains(t, analysis.TopicsTouched, "Payment Terms")
	require.NotNil(t, analysis.ConfidenceScore)
	assert.InDelta(t, 0.6, *analysis.ConfidenceScore, 1e-9)
	assert.Equal(t, 90, usage.TotalTokens, "summary call usage is accumulated")
	assert.Len(t, fake.requests, 2)
}

func TestExtractChangesTemplatedSummaryLastResort(t *testing.T) {
	// Primary response degraded AND the summary fallback call fails: the
	// templated summary still produces a valid analysis.
	fake := &fakeCompleter{
		responses: []llm.ChatResponse{{Text: "no structure here"}},
		errs:      []error{nil, errors.New("rate limited")},
	}
	agent := NewExtractionAgent(fake, "gpt-4", "gpt-4", nil, nil)

	analysis, _, err := agent.ExtractChanges(context.Background(), "terminate clause", "terminate clause revised", entity.DocumentContext{})
	require.NoError(t, err)

	assert.Contains(t, analysis.SummaryOfTheChange, "manual review is recommended")
	assert.GreaterOrEqual(t, len(analysis.SummaryOfTheChange), minUsableSummaryLen)
}

func TestExtractChangesTruncatesToBounds(t *testing.T) {
	sections := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		sections = append(sections, "Section "+strings.Repeat("I", i+1))
	}
	oversized := struct {
		SectionsChanged    []string `json:"sections_changed"`
		TopicsTouched      []string `json:"topics_touched"`
		SummaryOfTheChange string   `json:"summary_of_the_change"`
	}{
		SectionsChanged:    sections,
		TopicsTouched:      []string{"Payment Terms"},
		SummaryOfTheChange: "A sweeping amendment touching nearly every operative section of the original agreement, with renumbering throughout and multiple new exhibits added.",
	}
	payload, err := json.Marshal(oversized)
	require.NoError(t, err)

	fake := &fakeCompleter{responses: []llm.ChatResponse{{Text: string(payload)}}}
	agent := NewExtractionAgent(fake, "gpt-4", "", nil, nil)

	analysis, _, err := agent.ExtractChanges(context.Background(), "original", "amendment", entity.DocumentContext{})
	require.NoError(t, err)
	assert.Len(t, analysis.SectionsChanged, entity.MaxSectionsChanged)
}

func TestExtractChangesCallFailure(t *testing.T) {
	fake := &fakeCompleter{errs: []error{errors.New("connection reset")}}
	agent := NewExtractionAgent(fake, "gpt-4", "", nil, nil)

	_, _, err := agent.ExtractChanges(context.Background(), "original", "amendment", entity.DocumentContext{})
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "EXTRACTION_ERROR", appErr.Code)
}
