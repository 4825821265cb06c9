package llm

import (
	"encoding/json"
	"strings"
)

// Shape selects which JSON delimiter pair the decoder hunts for.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
)

// Degraded reasons.
const (
	ReasonNoDelimiters = "no_delimiters"
	ReasonParseError   = "parse_error"
)

// Degraded is the decoder's failure branch: the original text plus a reason
// tag so downstream consumers can detect degraded provenance.
type Degraded struct {
	RawText string
	Reason  string
}

// Decode locates the first opening delimiter and the last matching closing
// delimiter in free-form model text, slices, and attempts a strict parse.
// Exactly one of the returns is non-nil. Pure: identical input yields
// identical output on every call, with no retry behavior of its own.
func Decode(raw string, shape Shape) (json.RawMessage, *Degraded) {
	open, close := "{", "}"
	if shape == ShapeArray {
		open, close = "[", "]"
	}

	start := strings.Index(raw, open)
	end := strings.LastIndex(raw, close)
	if start < 0 || end <= start {
		return nil, &Degraded{RawText: raw, Reason: ReasonNoDelimiters}
	}

	candidate := raw[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, &Degraded{RawText: raw, Reason: ReasonParseError}
	}
	return json.RawMessage(candidate), nil
}
