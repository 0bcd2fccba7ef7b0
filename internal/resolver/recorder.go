package resolver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/resilience"
	"github.com/sells-group/fba-resolver/internal/store"
)

// FailureEvent describes one provider fault inside a resolution.
type FailureEvent struct {
	RequestID string
	Company   string
	Source    model.Source
	Kind      model.ErrorKind
	Err       error
}

// ResolvedEvent describes the final outcome of a resolution.
type ResolvedEvent struct {
	RequestID string
	Company   string
	Outcome   model.Outcome
	Attempts  int
	Duration  time.Duration
}

// Recorder receives resolution events. Implementations must not block for
// long; they run inline on the resolving goroutine.
type Recorder interface {
	ProviderFailed(ctx context.Context, ev FailureEvent)
	Resolved(ctx context.Context, ev ResolvedEvent)
}

// Recorders fans events out to several recorders in order.
type Recorders []Recorder

func (rs Recorders) ProviderFailed(ctx context.Context, ev FailureEvent) {
	for _, r := range rs {
		r.ProviderFailed(ctx, ev)
	}
}

func (rs Recorders) Resolved(ctx context.Context, ev ResolvedEvent) {
	for _, r := range rs {
		r.Resolved(ctx, ev)
	}
}

// LogRecorder writes events to the global zap logger.
type LogRecorder struct{}

func (LogRecorder) ProviderFailed(_ context.Context, ev FailureEvent) {
	zap.L().Warn("resolver: provider unavailable",
		zap.String("request_id", ev.RequestID),
		zap.String("company", ev.Company),
		zap.String("source", string(ev.Source)),
		zap.String("error_kind", string(ev.Kind)),
		zap.String("fault", resilience.ClassifyError(ev.Err)),
		zap.Error(ev.Err),
	)
}

func (LogRecorder) Resolved(_ context.Context, ev ResolvedEvent) {
	fields := []zap.Field{
		zap.String("request_id", ev.RequestID),
		zap.String("company", ev.Company),
		zap.String("outcome", ev.Outcome.Kind.String()),
		zap.Int("attempts", ev.Attempts),
		zap.Duration("duration", ev.Duration),
	}
	switch {
	case ev.Outcome.IsFound():
		zap.L().Info("resolver: found", append(fields, zap.String("source", string(ev.Outcome.Source)))...)
	case ev.Outcome.IsFailed():
		zap.L().Warn("resolver: rejected key", append(fields, zap.Error(ev.Outcome.Err))...)
	case ev.Outcome.Degraded():
		zap.L().Warn("resolver: not found with providers unavailable",
			append(fields, zap.Strings("unavailable", sourceStrings(ev.Outcome.Unavailable)))...)
	default:
		zap.L().Info("resolver: not found", fields...)
	}
}

// StoreRecorder persists events. Write errors are logged, never returned.
type StoreRecorder struct {
	Store store.Store
}

func (s StoreRecorder) ProviderFailed(ctx context.Context, ev FailureEvent) {
	msg := ""
	if ev.Err != nil {
		msg = ev.Err.Error()
	}
	err := s.Store.RecordFailure(context.WithoutCancel(ctx), store.Failure{
		RequestID:  ev.RequestID,
		Company:    ev.Company,
		Source:     ev.Source,
		ErrorKind:  ev.Kind,
		FaultClass: resilience.ClassifyError(ev.Err),
		Error:      msg,
	})
	if err != nil {
		zap.L().Warn("resolver: record failure", zap.String("request_id", ev.RequestID), zap.Error(err))
	}
}

func (s StoreRecorder) Resolved(ctx context.Context, ev ResolvedEvent) {
	err := s.Store.RecordResolution(context.WithoutCancel(ctx), store.Resolution{
		RequestID:   ev.RequestID,
		Company:     ev.Company,
		Outcome:     ev.Outcome.Kind.String(),
		Source:      ev.Outcome.Source,
		Unavailable: ev.Outcome.Unavailable,
		Attempts:    ev.Attempts,
		DurationMs:  ev.Duration.Milliseconds(),
	})
	if err != nil {
		zap.L().Warn("resolver: record resolution", zap.String("request_id", ev.RequestID), zap.Error(err))
	}
}

func sourceStrings(srcs []model.Source) []string {
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = string(s)
	}
	return out
}
