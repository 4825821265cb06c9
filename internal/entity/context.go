package entity

// DocumentContext is the contextualization stage's output: both structural
// maps, the section mapping, a document-type classification map, and key
// terms. Created once per comparison and consumed read-only by the extraction
// stage.
type DocumentContext struct {
	OriginalDocumentStructure  DocumentStructure `json:"original_document_structure"`
	AmendmentDocumentStructure DocumentStructure `json:"amendment_document_structure"`
	SectionMapping             SectionMapping    `json:"section_mapping"`
	DocumentTypes              map[string]any    `json:"document_types"`
	KeyTermsIdentified         []string          `json:"key_terms_identified"`
}

// EnsureDefaults guarantees the four structural fields are always present,
// never nil, regardless of what the model supplied.
func (c *DocumentContext) EnsureDefaults() {
	if c.DocumentTypes == nil {
		c.DocumentTypes = map[string]any{}
	}
	if c.KeyTermsIdentified == nil {
		c.KeyTermsIdentified = []string{}
	}
	c.SectionMapping.Dedupe()
}
