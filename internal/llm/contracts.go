package llm

import "context"

// TokenUsage reports per-call token consumption for cost accounting.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatRequest is one text-completion call to the inference service.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// ChatResponse carries the raw text the model produced. Structured stages
// expect the text to contain an embedded JSON object or array; extracting it
// is the decoder's job, not the client's.
type ChatResponse struct {
	Text  string
	Model string
	Usage TokenUsage
}

// ChatCompleter is the text-completion capability the analysis agents depend on.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// VisionRequest is one image-understanding call.
type VisionRequest struct {
	Model        string
	Prompt       string
	ImageDataURL string
	Detail       string // "low" | "high" | "auto"
	Temperature  float32
	MaxTokens    int
}

// VisionCompleter is the image-understanding capability vision extractors depend on.
type VisionCompleter interface {
	CompleteVision(ctx context.Context, req VisionRequest) (ChatResponse, error)
}
