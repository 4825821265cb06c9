package vision

import (
	"strings"

	"github.com/joseph-ayodele/contract-analyzer/constants"
)

// BuildParsingPrompt returns the extraction prompt for a document role.
// Amendments additionally get instructions to flag strikeout and insertion
// markup, which carries the actual redline content.
func BuildParsingPrompt(role string) string {
	parts := []string{
		"You are an expert legal document analyst. Extract ALL text from this " + role + " document image.",
		"Preserve the document structure: section numbers and titles, subsections and clause numbers, paragraph breaks, headers, footers, page numbers, and table layouts.",
		"Extract text verbatim with exact wording, capitalization, and punctuation. Mark unreadable passages as [ILLEGIBLE].",
		"Pay special attention to defined terms (quoted or capitalized), cross-references to other sections, exhibits, schedules, and appendices, and signature blocks with dates.",
		"Note emphasis as [BOLD], [ITALIC], or [UNDERLINE], and image-quality concerns as [BLURRY], [FADED], or [CROPPED].",
		"Output the complete extracted text in a structured, readable format that preserves the document's hierarchy.",
	}

	if role == constants.RoleAmendment {
		parts = append(parts,
			"This is an amendment: identify strikethrough text (deletions) and clearly mark new insertions.",
			"Note any redline or track-changes formatting and which sections reference the original contract.",
		)
	}

	return strings.Join(parts, "\n")
}
