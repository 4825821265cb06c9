package trace

import (
	"context"
	"log/slog"
)

// Tracer is an explicit per-invocation telemetry handle. It is constructed
// once per pipeline run and threaded through every stage call rather than
// living in process-wide state. The real telemetry backend is an external
// collaborator; this interface is the seam it plugs into.
type Tracer interface {
	Event(ctx context.Context, name string, attrs map[string]any)
}

// Noop discards all events.
type Noop struct{}

func (Noop) Event(context.Context, string, map[string]any) {}

// Slog mirrors trace events into the structured log, which is the default
// sink when no telemetry credentials are configured.
type Slog struct {
	Logger *slog.Logger
}

func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{Logger: logger}
}

func (t *Slog) Event(ctx context.Context, name string, attrs map[string]any) {
	args := make([]any, 0, len(attrs)*2)
	for k, v := range attrs {
		args = append(args, k, v)
	}
	t.Logger.InfoContext(ctx, "trace."+name, args...)
}
