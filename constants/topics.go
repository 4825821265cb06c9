package constants

// TopicKeywords maps standard legal/business topic categories to the keywords
// that trigger them during deterministic topic categorization. Matching is
// case-insensitive substring search over document text, key terms, and section
// labels.
var TopicKeywords = map[string][]string{
	"Payment Terms":         {"payment", "pay", "invoice", "billing", "fee", "cost", "price", "amount"},
	"Termination":           {"terminate", "termination", "end", "expire", "expiry", "cancel"},
	"Liability":             {"liable", "liability", "responsible", "responsibility", "damages", "harm"},
	"Intellectual Property": {"intellectual property", "ip", "copyright", "trademark", "patent", "proprietary"},
	"Confidentiality":       {"confidential", "confidentiality", "non-disclosure", "nda", "proprietary"},
	"Performance Standards": {"performance", "standards", "service level", "sla", "deliverables", "quality"},
	"Indemnification":       {"indemnify", "indemnification", "hold harmless", "defend"},
	"Governing Law":         {"governing law", "jurisdiction", "applicable law", "laws of"},
	"Dispute Resolution":    {"dispute", "arbitration", "mediation", "court", "litigation"},
	"Insurance":             {"insurance", "coverage", "policy", "insured", "insurer"},
	"Warranties":            {"warrant", "warranty", "warranties", "represent", "representation"},
	"Compliance":            {"comply", "compliance", "regulation", "regulatory", "legal requirement"},
	"Assignment":            {"assign", "assignment", "transfer", "delegate"},
	"Force Majeure":         {"force majeure", "act of god", "unforeseeable", "beyond control"},
	"Notice Requirements":   {"notice", "notification", "notify", "inform", "written notice"},
	"Renewal":               {"renew", "renewal", "extend", "extension", "automatic renewal"},
	"Scope of Work":         {"scope", "work", "services", "deliverables", "obligations", "duties"},
}

// TopicOrder fixes the evaluation order of TopicKeywords so categorization
// output is deterministic for identical input.
var TopicOrder = []string{
	"Payment Terms",
	"Termination",
	"Liability",
	"Intellectual Property",
	"Confidentiality",
	"Performance Standards",
	"Indemnification",
	"Governing Law",
	"Dispute Resolution",
	"Insurance",
	"Warranties",
	"Compliance",
	"Assignment",
	"Force Majeure",
	"Notice Requirements",
	"Renewal",
	"Scope of Work",
}

// DefaultTopic is returned when keyword categorization matches nothing.
const DefaultTopic = "Contract Modifications"

// MaxFallbackTopics caps the deterministic categorizer's output.
const MaxFallbackTopics = 10
