package resolver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/store"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestLogRecorder_ProviderFailed(t *testing.T) {
	logs := observeLogs(t)

	LogRecorder{}.ProviderFailed(context.Background(), FailureEvent{
		RequestID: "req-1",
		Company:   "Beta LLC",
		Source:    model.SourceAuditAPI,
		Kind:      model.ErrProviderUnavailable,
		Err:       errors.New("connection reset by peer"),
	})

	entries := logs.FilterMessage("resolver: provider unavailable").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "audit_api", fields["source"])
	assert.Equal(t, "Beta LLC", fields["company"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "transient", fields["fault"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestLogRecorder_Resolved(t *testing.T) {
	logs := observeLogs(t)
	rec := LogRecorder{}

	rec.Resolved(context.Background(), ResolvedEvent{
		RequestID: "a",
		Company:   "Acme",
		Outcome:   model.Found(&model.Record{Source: model.SourceGait, Name: "Acme"}),
		Attempts:  2,
		Duration:  time.Millisecond,
	})
	degraded := model.NotFound()
	degraded.Unavailable = []model.Source{model.SourceAuditAPI}
	rec.Resolved(context.Background(), ResolvedEvent{RequestID: "b", Company: "Ghost", Outcome: degraded})
	rec.Resolved(context.Background(), ResolvedEvent{RequestID: "c", Company: "Nobody", Outcome: model.NotFound()})
	rec.Resolved(context.Background(), ResolvedEvent{RequestID: "d", Company: "%zz",
		Outcome: model.Failed(model.ErrDecode, "", errors.New("bad escape"))})

	found := logs.FilterMessage("resolver: found").All()
	require.Len(t, found, 1)
	assert.Equal(t, "gait", found[0].ContextMap()["source"])

	assert.Equal(t, 1, logs.FilterMessage("resolver: not found with providers unavailable").Len())
	assert.Equal(t, 1, logs.FilterMessage("resolver: not found").Len())
	assert.Equal(t, 1, logs.FilterMessage("resolver: rejected key").Len())
}

func TestRecorders_FanOut(t *testing.T) {
	a, b := &captureRecorder{}, &captureRecorder{}
	rs := Recorders{a, b}

	rs.ProviderFailed(context.Background(), FailureEvent{Source: model.SourceGait})
	rs.Resolved(context.Background(), ResolvedEvent{Company: "x"})

	for _, c := range []*captureRecorder{a, b} {
		assert.Len(t, c.failures, 1)
		assert.Len(t, c.resolved, 1)
	}
}

func TestStoreRecorder_SurvivesCancelledContext(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "rec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := StoreRecorder{Store: st}
	rec.ProviderFailed(ctx, FailureEvent{
		RequestID: "r1", Company: "Acme", Source: model.SourceGait,
		Kind: model.ErrProviderUnavailable, Err: errors.New("gviz: parse table"),
	})
	rec.Resolved(ctx, ResolvedEvent{RequestID: "r1", Company: "Acme", Outcome: model.NotFound(), Attempts: 8})

	failures, err := st.ListFailures(context.Background(), store.FailureFilter{})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "permanent", failures[0].FaultClass)
	assert.Equal(t, "gviz: parse table", failures[0].Error)

	res, err := st.ListResolutions(context.Background(), store.ResolutionFilter{Outcome: "not_found"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 8, res[0].Attempts)
}

type failingStore struct{ store.Nop }

func (failingStore) RecordFailure(context.Context, store.Failure) error {
	return errors.New("disk full")
}

func TestStoreRecorder_LogsWriteErrors(t *testing.T) {
	logs := observeLogs(t)

	StoreRecorder{Store: failingStore{}}.ProviderFailed(context.Background(), FailureEvent{RequestID: "r"})

	assert.Equal(t, 1, logs.FilterMessage("resolver: record failure").Len())
}
