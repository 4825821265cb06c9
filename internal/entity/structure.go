package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt tolerates models emitting numbers as strings ("12") or floats (12.0).
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// unparseable quantity from the model; treat as absent
			*f = 0
			return nil
		}
		*f = FlexInt(int(n))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexInt(int(n))
	return nil
}

// SectionNode is one entry in a document's section hierarchy.
type SectionNode struct {
	SectionID      string   `json:"section_id"`
	Title          string   `json:"title,omitempty"`
	Subsections    []string `json:"subsections,omitempty"`
	ContentSummary string   `json:"content_summary,omitempty"`
	PageReferences []string `json:"page_references,omitempty"`
}

// DocumentStructure is the structural map of one document, produced once by
// the contextualization stage and immutable afterwards. When structural
// analysis could not be decoded, the fallback descriptor fields are populated
// instead of the hierarchy.
type DocumentStructure struct {
	DocumentType      string        `json:"document_type,omitempty"`
	TotalSections     FlexInt       `json:"total_sections,omitempty"`
	SectionHierarchy  []SectionNode `json:"section_hierarchy,omitempty"`
	ExhibitsSchedules []string      `json:"exhibits_schedules,omitempty"`
	NumberingScheme   string        `json:"numbering_scheme,omitempty"`

	// Fallback descriptor, set only when decoding failed.
	Analysis      string `json:"analysis,omitempty"`
	TextLength    int    `json:"text_length,omitempty"`
	ParsingMethod string `json:"parsing_method,omitempty"`
}

// FallbackStructure builds the minimal descriptor used when structural
// analysis could not be decoded from model output.
func FallbackStructure(textLength int) DocumentStructure {
	return DocumentStructure{
		Analysis:      "fallback",
		TextLength:    textLength,
		ParsingMethod: "text_analysis",
	}
}
