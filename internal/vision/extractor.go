package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
)

// Request is one page image to turn into text.
type Request struct {
	ImageData []byte
	Filename  string
	Role      string // constants.RoleOriginal | constants.RoleAmendment
}

// Result is the extracted document text plus call accounting.
type Result struct {
	Text      string
	ModelUsed string
	Usage     llm.TokenUsage
	Elapsed   time.Duration
}

// Extractor is the per-provider vision capability. The retry/fallback loop in
// Chain is generic over this interface, so adding a provider means adding a
// variant, not touching the loop.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, req Request) (Result, error)
}

// ExhaustedError aggregates every attempt's failure once all models in the
// chain are spent.
type ExhaustedError struct {
	Attempts []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all vision models failed: %s", strings.Join(e.Attempts, "; "))
}

func (e *ExhaustedError) Unwrap() error {
	return common.ErrInference
}
