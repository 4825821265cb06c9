package pipeline

import (
	"context"

	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
)

// BatchEntry is one slot of a batch run. Exactly one of Result or Err is set;
// a failed pair produces a placeholder entry, never a shortened batch.
type BatchEntry struct {
	Index  int
	Result *entity.ComparisonResult
	Err    error
}

// RunBatch processes document pairs sequentially with isolated failure
// domains: one pair's fatal error is recorded at its index and the remaining
// pairs still run. The returned slice always has len(inputs) entries in input
// order.
func (p *Pipeline) RunBatch(ctx context.Context, inputs []Input) []BatchEntry {
	entries := make([]BatchEntry, len(inputs))
	for i, in := range inputs {
		res, err := p.Run(ctx, in)
		if err != nil {
			p.Logger.Warn("pipeline.batch.pair_failed", "index", i, "error", err)
			entries[i] = BatchEntry{Index: i, Err: err}
			continue
		}
		entries[i] = BatchEntry{Index: i, Result: &res}
	}
	return entries
}
