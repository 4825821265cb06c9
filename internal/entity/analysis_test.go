package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
)

func floatPtr(v float64) *float64 { return &v }

func TestNewChangeAnalysis(t *testing.T) {
	validSummary := "Payment terms were extended from thirty to forty-five days."

	tests := []struct {
		name       string
		sections   []string
		topics     []string
		summary    string
		confidence *float64
		wantErr    bool
	}{
		{
			name:       "valid",
			sections:   []string{"Section 4.2 - Payment Terms"},
			topics:     []string{"Payment Terms"},
			summary:    validSummary,
			confidence: floatPtr(0.8),
		},
		{
			name:     "empty lists are a valid no-change outcome",
			sections: []string{},
			topics:   []string{},
			summary:  "No substantive changes were found between the two documents.",
		},
		{
			name:     "nil lists normalize to empty",
			sections: nil,
			topics:   nil,
			summary:  validSummary,
		},
		{
			name:     "too many sections",
			sections: make([]string, MaxSectionsChanged+1),
			summary:  validSummary,
			wantErr:  true,
		},
		{
			name:    "too many topics",
			topics:  repeat("Payment Terms", MaxTopicsTouched+1),
			summary: validSummary,
			wantErr: true,
		},
		{
			name:    "topic too short",
			topics:  []string{"ok"},
			summary: validSummary,
			wantErr: true,
		},
		{
			name:    "summary too short",
			summary: "Short",
			wantErr: true,
		},
		{
			name:    "summary under five words",
			summary: "One two three four",
			wantErr: true,
		},
		{
			name:       "confidence above one",
			summary:    validSummary,
			confidence: floatPtr(1.5),
			wantErr:    true,
		},
		{
			name:       "confidence below zero",
			summary:    validSummary,
			confidence: floatPtr(-0.1),
			wantErr:    true,
		},
		{
			name:       "confidence at bounds",
			summary:    validSummary,
			confidence: floatPtr(1.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewChangeAnalysis(tt.sections, tt.topics, tt.summary, tt.confidence, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewChangeAnalysis() = %+v, want error", got)
				}
				if !errors.Is(err, common.ErrSchema) {
					t.Errorf("error does not wrap ErrSchema: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewChangeAnalysis() error = %v", err)
			}
			if got.SectionsChanged == nil || got.TopicsTouched == nil {
				t.Error("lists should never be nil after construction")
			}
		})
	}
}

func TestNewChangeAnalysisTrimsSummary(t *testing.T) {
	got, err := NewChangeAnalysis(nil, nil, "  Payment terms were extended by fifteen days.  ", nil, nil)
	if err != nil {
		t.Fatalf("NewChangeAnalysis() error = %v", err)
	}
	if strings.HasPrefix(got.SummaryOfTheChange, " ") || strings.HasSuffix(got.SummaryOfTheChange, " ") {
		t.Errorf("summary not trimmed: %q", got.SummaryOfTheChange)
	}
}

func TestUnmarshalChangeAnalysis(t *testing.T) {
	const valid = `{
		"sections_changed": ["Section 4.2"],
		"topics_touched": ["Payment Terms"],
		"summary_of_the_change": "Payment terms were extended from thirty to forty-five days.",
		"confidence_score": 0.8,
		"processing_notes": null
	}`

	got, err := UnmarshalChangeAnalysis([]byte(valid))
	if err != nil {
		t.Fatalf("UnmarshalChangeAnalysis() error = %v", err)
	}
	if got.ConfidenceScore == nil || *got.ConfidenceScore != 0.8 {
		t.Errorf("ConfidenceScore = %v, want 0.8", got.ConfidenceScore)
	}

	t.Run("unknown field rejected", func(t *testing.T) {
		const extra = `{
			"sections_changed": [],
			"topics_touched": [],
			"summary_of_the_change": "Payment terms were extended from thirty to forty-five days.",
			"severity": "high"
		}`
		if _, err := UnmarshalChangeAnalysis([]byte(extra)); err == nil {
			t.Fatal("unknown field accepted, want SCHEMA_ERROR")
		}
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		if _, err := UnmarshalChangeAnalysis([]byte(`{"sections_changed":`)); err == nil {
			t.Fatal("malformed json accepted")
		}
	})
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
