package vision

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ChainConfig bounds the retry budget. BackoffBase is the unit for the
// 2^attempt backoff between tries; tests inject a tiny value.
type ChainConfig struct {
	MaxRetries  int
	BackoffBase time.Duration
}

// Chain runs an ordered list of extractors: the configured preferred model
// first, fallbacks after. Each model gets the full retry budget before the
// chain advances, so a systematically bad prompt is not masked by another
// model's luck on its first try.
type Chain struct {
	extractors []Extractor
	cfg        ChainConfig
	logger     *slog.Logger
}

func NewChain(extractors []Extractor, cfg ChainConfig, logger *slog.Logger) *Chain {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{extractors: extractors, cfg: cfg, logger: logger}
}

// Extract tries each model up to MaxRetries times with exponential backoff,
// advancing to the next model only after the current one's budget is spent.
// Cancellation is checked before every retry; no attempt starts after the
// context is done. Exhausting all models returns *ExhaustedError.
func (c *Chain) Extract(ctx context.Context, req Request) (Result, error) {
	if len(c.extractors) == 0 {
		return Result{}, &ExhaustedError{Attempts: []string{"no vision models configured"}}
	}

	var attempts []string
	for _, ex := range c.extractors {
		for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				attempts = append(attempts, fmt.Sprintf("%s: canceled before attempt %d: %v", ex.Name(), attempt+1, err))
				return Result{}, &ExhaustedError{Attempts: attempts}
			}

			res, err := ex.Extract(ctx, req)
			if err == nil {
				c.logger.Info("vision.extract.ok",
					"model", ex.Name(),
					"role", req.Role,
					"attempt", attempt+1,
					"text_len", len(res.Text),
					"elapsed_ms", res.Elapsed.Milliseconds(),
				)
				return res, nil
			}

			attempts = append(attempts, fmt.Sprintf("%s attempt %d/%d: %v", ex.Name(), attempt+1, c.cfg.MaxRetries, err))
			c.logger.Warn("vision.extract.attempt_failed",
				"model", ex.Name(),
				"role", req.Role,
				"attempt", attempt+1,
				"error", err,
			)

			if attempt < c.cfg.MaxRetries-1 {
				select {
				case <-time.After(c.cfg.BackoffBase * (1 << attempt)):
				case <-ctx.Done():
					attempts = append(attempts, fmt.Sprintf("%s: canceled during backoff: %v", ex.Name(), ctx.Err()))
					return Result{}, &ExhaustedError{Attempts: attempts}
				}
			}
		}
	}
	return Result{}, &ExhaustedError{Attempts: attempts}
}
