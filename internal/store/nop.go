package store

import "context"

// Nop discards writes and lists nothing.
type Nop struct{}

func (Nop) RecordFailure(context.Context, Failure) error       { return nil }
func (Nop) RecordResolution(context.Context, Resolution) error { return nil }
func (Nop) ListFailures(context.Context, FailureFilter) ([]Failure, error) {
	return nil, nil
}
func (Nop) ListResolutions(context.Context, ResolutionFilter) ([]Resolution, error) {
	return nil, nil
}
func (Nop) Migrate(context.Context) error { return nil }
func (Nop) Close() error                  { return nil }
