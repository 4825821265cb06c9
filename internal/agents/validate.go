package agents

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
)

// Review-quality bands for the advisory lint pass. Softer than the hard
// construction bounds: these flag results for human attention, they never
// reject.
const (
	broadSectionsThreshold = 25
	broadTopicsThreshold   = 20
	briefSummaryThreshold  = 100
	longSummaryThreshold   = 2000
	lowConfidenceThreshold = 0.5
)

var genericSummaryPhrases = []string{
	"the contract was modified",
	"changes were made to the document",
	"the amendment updates",
}

// ValidateAnalysis runs the advisory lint pass over a constructed
// ChangeAnalysis. An empty issue list means nothing needs reviewer attention;
// a populated one annotates the result, it does not invalidate it.
func ValidateAnalysis(analysis entity.ChangeAnalysis) []string {
	var issues []string

	if len(analysis.SectionsChanged) == 0 {
		issues = append(issues, "no sections changed identified")
	} else if len(analysis.SectionsChanged) > broadSectionsThreshold {
		issues = append(issues, "too many sections identified - may be overly broad")
	}

	if len(analysis.TopicsTouched) == 0 {
		issues = append(issues, "no topics categorized")
	} else if len(analysis.TopicsTouched) > broadTopicsThreshold {
		issues = append(issues, "too many topics - may lack focus")
	}

	if len(analysis.SummaryOfTheChange) < briefSummaryThreshold {
		issues = append(issues, "summary too brief for comprehensive analysis")
	} else if len(analysis.SummaryOfTheChange) > longSummaryThreshold {
		issues = append(issues, "summary too lengthy - may be unfocused")
	}

	if analysis.ConfidenceScore != nil && *analysis.ConfidenceScore < lowConfidenceThreshold {
		issues = append(issues, "low confidence score indicates potential quality concerns")
	}

	summaryLower := strings.ToLower(analysis.SummaryOfTheChange)
	for _, phrase := range genericSummaryPhrases {
		if strings.Contains(summaryLower, phrase) {
			issues = append(issues, "summary contains generic language - may lack specific insights")
			break
		}
	}

	return issues
}

// ValidateContext checks the completeness of a contextualization result.
// Advisory only.
func ValidateContext(dctx entity.DocumentContext) []string {
	var issues []string

	if structureEmpty(dctx.OriginalDocumentStructure) {
		issues = append(issues, "missing original document structure")
	}
	if structureEmpty(dctx.AmendmentDocumentStructure) {
		issues = append(issues, "missing amendment document structure")
	}
	if mappingEmpty(dctx.SectionMapping) {
		issues = append(issues, "missing section mapping")
	}
	if len(dctx.DocumentTypes) == 0 {
		issues = append(issues, "missing document type classification")
	}
	if len(dctx.KeyTermsIdentified) == 0 {
		issues = append(issues, "no key terms identified")
	}
	if dctx.SectionMapping.IsDegraded() {
		issues = append(issues, fmt.Sprintf("section mapping used %s method - may be incomplete", dctx.SectionMapping.ParsingMethod))
	}

	return issues
}

func structureEmpty(s entity.DocumentStructure) bool {
	return s.DocumentType == "" && len(s.SectionHierarchy) == 0 && s.Analysis == ""
}

func mappingEmpty(m entity.SectionMapping) bool {
	return len(m.DirectCorrespondences) == 0 &&
		len(m.AmendmentOnlySections) == 0 &&
		len(m.OriginalOnlySections) == 0 &&
		m.RawAnalysis == ""
}
