package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
)

// Hard bounds for the ChangeAnalysis closed schema. These are construction
// constraints; the advisory validator applies the softer review-quality bands.
const (
	MaxSectionsChanged = 20
	MaxTopicsTouched   = 15
	MinTopicLength     = 3
	MinSummaryLength   = 10
	MinSummaryWords    = 5
)

// ChangeAnalysis is the bounded change record handed to downstream legal
// tooling. The schema is closed: no field other than these five exists, and
// construction fails fast on any bound violation.
type ChangeAnalysis struct {
	SectionsChanged    []string `json:"sections_changed"`
	TopicsTouched      []string `json:"topics_touched"`
	SummaryOfTheChange string   `json:"summary_of_the_change"`
	ConfidenceScore    *float64 `json:"confidence_score"`
	ProcessingNotes    *string  `json:"processing_notes"`
}

// NewChangeAnalysis constructs a validated ChangeAnalysis. Empty section and
// topic lists are legitimate ("no changes" is a valid outcome); everything
// else is bounds-checked.
func NewChangeAnalysis(sections, topics []string, summary string, confidence *float64, notes *string) (ChangeAnalysis, error) {
	if len(sections) > MaxSectionsChanged {
		return ChangeAnalysis{}, common.NewAppError("SCHEMA_ERROR",
			fmt.Sprintf("sections_changed has %d entries, max %d", len(sections), MaxSectionsChanged),
			common.ErrSchema)
	}
	if len(topics) > MaxTopicsTouched {
		return ChangeAnalysis{}, common.NewAppError("SCHEMA_ERROR",
			fmt.Sprintf("topics_touched has %d entries, max %d", len(topics), MaxTopicsTouched),
			common.ErrSchema)
	}
	for _, topic := range topics {
		if len(strings.TrimSpace(topic)) < MinTopicLength {
			return ChangeAnalysis{}, common.NewAppError("SCHEMA_ERROR",
				fmt.Sprintf("topic %q is too short to be meaningful", topic),
				common.ErrSchema)
		}
	}
	summary = strings.TrimSpace(summary)
	if len(summary) < MinSummaryLength {
		return ChangeAnalysis{}, common.NewAppError("SCHEMA_ERROR",
			fmt.Sprintf("summary must be at least %d characters", MinSummaryLength),
			common.ErrSchema)
	}
	if len(strings.Fields(summary)) < MinSummaryWords {
		return ChangeAnalysis{}, common.NewAppError("SCHEMA_ERROR",
			fmt.Sprintf("summary must contain at least %d words", MinSummaryWords),
			common.ErrSchema)
	}
	if confidence != nil && (*confidence < 0.0 || *confidence > 1.0) {
		return ChangeAnalysis{}, common.NewAppError("SCHEMA_ERROR",
			fmt.Sprintf("confidence_score %v outside [0.0, 1.0]", *confidence),
			common.ErrSchema)
	}
	if sections == nil {
		sections = []string{}
	}
	if topics == nil {
		topics = []string{}
	}
	return ChangeAnalysis{
		SectionsChanged:    sections,
		TopicsTouched:      topics,
		SummaryOfTheChange: summary,
		ConfidenceScore:    confidence,
		ProcessingNotes:    notes,
	}, nil
}

// UnmarshalChangeAnalysis decodes JSON into a validated ChangeAnalysis.
// Unknown fields are rejected (closed schema).
func UnmarshalChangeAnalysis(data []byte) (ChangeAnalysis, error) {
	var raw struct {
		SectionsChanged    []string `json:"sections_changed"`
		TopicsTouched      []string `json:"topics_touched"`
		SummaryOfTheChange string   `json:"summary_of_the_change"`
		ConfidenceScore    *float64 `json:"confidence_score"`
		ProcessingNotes    *string  `json:"processing_notes"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return ChangeAnalysis{}, common.NewAppError("SCHEMA_ERROR", "decode change analysis", common.ErrSchema)
	}
	return NewChangeAnalysis(raw.SectionsChanged, raw.TopicsTouched, raw.SummaryOfTheChange, raw.ConfidenceScore, raw.ProcessingNotes)
}
