package llm

// BuildChangeAnalysisJSONSchema returns a JSON-Schema (draft 2020-12 subset)
// as a generic map. The pipeline validates the final analysis against it
// before handing the result to the caller.
func BuildChangeAnalysisJSONSchema() map[string]any {
	props := map[string]any{
		"sections_changed": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"maxItems": 20,
		},
		"topics_touched": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string", "minLength": 3},
			"maxItems": 15,
		},
		"summary_of_the_change": map[string]any{"type": "string", "minLength": 10},
		"confidence_score": map[string]any{
			"type":    []string{"number", "null"},
			"minimum": 0.0,
			"maximum": 1.0,
		},
		"processing_notes": map[string]any{"type": []string{"string", "null"}},
	}
	required := []string{"sections_changed", "topics_touched", "summary_of_the_change"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// BuildDocumentContextJSONSchema returns the shape requested from the
// contextualization call. The four structural fields are object-typed; key
// terms are a string array. Looser than the change-analysis schema because
// the stage back-fills absent fields rather than rejecting; the context
// agent runs it as an advisory check over decoded responses.
func BuildDocumentContextJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"original_document_structure":  map[string]any{"type": "object"},
			"amendment_document_structure": map[string]any{"type": "object"},
			"section_mapping":              map[string]any{"type": "object"},
			"document_types":               map[string]any{"type": "object"},
			"key_terms_identified": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{
			"original_document_structure",
			"amendment_document_structure",
			"section_mapping",
			"document_types",
		},
	}
}
