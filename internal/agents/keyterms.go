package agents

import (
	"regexp"
	"strings"
)

var (
	reQuotedPhrase = regexp.MustCompile(`"([^"]+)"`)
	reCapPhrase    = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)
	reSectionRef   = regexp.MustCompile(`\bSection \d+(?:\.\d+)*`)
)

const maxKeyTerms = 15

// ExtractKeyTerms is the deterministic term-extraction fallback used when the
// model's structured response could not be decoded. It scans both documents
// for quoted phrases, capitalized two-word phrases, and section references.
// Pure; no model calls.
func ExtractKeyTerms(originalText, amendmentText string) []string {
	combined := originalText + " " + amendmentText

	var candidates []string
	for _, m := range reQuotedPhrase.FindAllStringSubmatch(combined, 10) {
		candidates = append(candidates, m[1])
	}
	for _, m := range reCapPhrase.FindAllStringSubmatch(combined, 10) {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, reSectionRef.FindAllString(combined, 10)...)

	seen := make(map[string]struct{}, len(candidates))
	terms := make([]string, 0, maxKeyTerms)
	for _, term := range candidates {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
		if len(terms) == maxKeyTerms {
			break
		}
	}
	return terms
}
