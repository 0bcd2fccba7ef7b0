// Package resolver runs a company key through the provider chain in
// priority order and returns the first match.
package resolver

import (
	"context"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/provider"
)

// Resolver queries adapters one at a time and stops at the first Found.
// It holds no per-request state and is safe for concurrent use.
type Resolver struct {
	adapters []provider.Adapter
	recorder Recorder
	now      func() time.Time // injectable for testing
	newID    func() string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRecorder sets where provider failures and outcomes are reported.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		r.recorder = rec
	}
}

// WithClock sets the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// New creates a resolver over adapters in priority order.
func New(adapters []provider.Adapter, opts ...Option) *Resolver {
	r := &Resolver{
		adapters: append([]provider.Adapter(nil), adapters...),
		recorder: LogRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Sources returns the provider tags in priority order.
func (r *Resolver) Sources() []model.Source {
	out := make([]model.Source, len(r.adapters))
	for i, a := range r.adapters {
		out[i] = a.Source()
	}
	return out
}

// DecodeKey URL-decodes a caller-supplied key. "+" is kept literally and
// the result must be non-empty valid UTF-8.
func DecodeKey(raw string) (string, error) {
	key, err := url.PathUnescape(raw)
	if err != nil {
		return "", eris.Wrapf(err, "resolver: decode key %q", raw)
	}
	if key == "" {
		return "", eris.New("resolver: empty key")
	}
	if !utf8.ValidString(key) {
		return "", eris.Errorf("resolver: key %q is not valid UTF-8", raw)
	}
	return key, nil
}

// Resolve decodes rawKey once and walks the chain. Provider failures are
// recorded and skipped; the chain ends in NotFound when nothing matched,
// listing the providers that failed along the way. Only a malformed key
// yields Failed. A cancelled context stops the walk before the next
// provider.
func (r *Resolver) Resolve(ctx context.Context, rawKey string) model.Outcome {
	reqID := r.newID()
	start := r.now()

	key, err := DecodeKey(rawKey)
	if err != nil {
		out := model.Failed(model.ErrDecode, "", err)
		r.finish(ctx, reqID, rawKey, out, 0, start)
		return out
	}

	var unavailable []model.Source
	attempts := 0
	for _, a := range r.adapters {
		if ctx.Err() != nil {
			zap.L().Debug("resolver: context done, stopping chain",
				zap.String("request_id", reqID),
				zap.String("company", key),
				zap.Error(ctx.Err()),
			)
			break
		}
		attempts++

		out := r.call(ctx, a, key)
		switch out.Kind {
		case model.OutcomeFound:
			r.finish(ctx, reqID, key, out, attempts, start)
			return out
		case model.OutcomeFailed:
			if ctx.Err() != nil {
				continue
			}
			unavailable = append(unavailable, a.Source())
			r.recorder.ProviderFailed(ctx, FailureEvent{
				RequestID: reqID,
				Company:   key,
				Source:    a.Source(),
				Kind:      out.ErrKind,
				Err:       out.Err,
			})
		}
	}

	out := model.NotFound()
	out.Unavailable = unavailable
	r.finish(ctx, reqID, key, out, attempts, start)
	return out
}

// call runs one adapter and normalizes whatever it returns into a
// well-formed outcome tagged with the adapter's source.
func (r *Resolver) call(ctx context.Context, a provider.Adapter, key string) (out model.Outcome) {
	src := a.Source()
	defer func() {
		if p := recover(); p != nil {
			out = model.Failed(model.ErrProviderUnavailable, src,
				eris.Errorf("resolver: provider %s panicked: %v", src, p))
		}
	}()

	out = a.Resolve(ctx, key)
	switch out.Kind {
	case model.OutcomeFound:
		if out.Record == nil {
			return model.NotFound()
		}
		out.Record.Source = src
		out.Source = src
	case model.OutcomeFailed:
		out.Source = src
		if out.ErrKind == "" {
			out.ErrKind = model.ErrProviderUnavailable
		}
		if out.Err == nil {
			out.Err = eris.Errorf("resolver: provider %s failed", src)
		}
	}
	return out
}

func (r *Resolver) finish(ctx context.Context, reqID, key string, out model.Outcome, attempts int, start time.Time) {
	r.recorder.Resolved(ctx, ResolvedEvent{
		RequestID: reqID,
		Company:   key,
		Outcome:   out,
		Attempts:  attempts,
		Duration:  r.now().Sub(start),
	})
}
