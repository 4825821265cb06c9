package entity

import "github.com/joseph-ayodele/contract-analyzer/constants"

// Correspondence is a claimed match between a section of the original and a
// section of the amendment.
type Correspondence struct {
	OriginalSection   string  `json:"original_section"`
	AmendmentSection  string  `json:"amendment_section"`
	MappingConfidence float64 `json:"mapping_confidence"`
	Notes             string  `json:"notes,omitempty"`
}

// SectionFlag marks a section present in only one of the two documents.
type SectionFlag struct {
	SectionID      string `json:"section_id"`
	Classification string `json:"classification,omitempty"` // "addition" | "potential_deletion"
	Notes          string `json:"notes,omitempty"`
}

// SectionMapping aggregates correspondences plus addition/deletion candidates.
// When the model response could not be decoded the raw text is carried in
// RawAnalysis with ParsingMethod set to constants.ParsingMethodFallback.
type SectionMapping struct {
	DirectCorrespondences []Correspondence `json:"direct_correspondences,omitempty"`
	AmendmentOnlySections []SectionFlag    `json:"amendment_only_sections,omitempty"`
	OriginalOnlySections  []SectionFlag    `json:"original_only_sections,omitempty"`

	RawAnalysis   string `json:"raw_analysis,omitempty"`
	ParsingMethod string `json:"parsing_method,omitempty"`
}

// Dedupe enforces the mapping post-condition: a section id appears in at most
// one of the three buckets. Correspondences win over one-sided flags, and
// amendment-only flags win over original-only flags. The model occasionally
// double-classifies; we keep the first, strongest claim.
func (m *SectionMapping) Dedupe() {
	seen := make(map[string]struct{}, len(m.DirectCorrespondences)*2)
	for _, c := range m.DirectCorrespondences {
		if c.OriginalSection != "" {
			seen[c.OriginalSection] = struct{}{}
		}
		if c.AmendmentSection != "" {
			seen[c.AmendmentSection] = struct{}{}
		}
	}
	m.AmendmentOnlySections = dedupeFlags(m.AmendmentOnlySections, seen)
	m.OriginalOnlySections = dedupeFlags(m.OriginalOnlySections, seen)
}

func dedupeFlags(flags []SectionFlag, seen map[string]struct{}) []SectionFlag {
	if len(flags) == 0 {
		return flags
	}
	out := flags[:0]
	for _, f := range flags {
		if f.SectionID == "" {
			continue
		}
		if _, dup := seen[f.SectionID]; dup {
			continue
		}
		seen[f.SectionID] = struct{}{}
		out = append(out, f)
	}
	return out
}

// IsDegraded reports whether the mapping carries an undecoded raw-text payload.
func (m *SectionMapping) IsDegraded() bool {
	return m.ParsingMethod == constants.ParsingMethodFallback || m.ParsingMethod == constants.ParsingMethodRawText
}
