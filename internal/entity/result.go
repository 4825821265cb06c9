package entity

// ComparisonResult is the terminal artifact of one pipeline run: the
// structural context, the validated change record, and the open processing
// metadata map (session id, timings, step log, per-model token usage).
type ComparisonResult struct {
	Context            DocumentContext `json:"context"`
	Analysis           ChangeAnalysis  `json:"analysis"`
	ProcessingMetadata map[string]any  `json:"processing_metadata"`
}
