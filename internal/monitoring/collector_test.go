package monitoring

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/store"
)

// fakeStore serves canned rows and honours the Since, Limit and Offset
// filters.
type fakeStore struct {
	store.Nop
	failures    []store.Failure
	resolutions []store.Resolution
	failErr     error
	resErr      error
}

func (f *fakeStore) ListFailures(_ context.Context, filter store.FailureFilter) ([]store.Failure, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	var out []store.Failure
	for _, r := range f.failures {
		if !filter.Since.IsZero() && r.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, r)
	}
	return page(out, filter.Limit, filter.Offset), nil
}

func (f *fakeStore) ListResolutions(_ context.Context, filter store.ResolutionFilter) ([]store.Resolution, error) {
	if f.resErr != nil {
		return nil, f.resErr
	}
	var out []store.Resolution
	for _, r := range f.resolutions {
		if !filter.Since.IsZero() && r.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, r)
	}
	return page(out, filter.Limit, filter.Offset), nil
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func TestCollector_Collect(t *testing.T) {
	now := time.Now().UTC()
	old := now.Add(-48 * time.Hour)

	st := &fakeStore{
		resolutions: []store.Resolution{
			{Company: "a", Outcome: "found", Source: model.SourceAuditAPI, CreatedAt: now},
			{Company: "b", Outcome: "found", Source: model.SourceGait, CreatedAt: now},
			{Company: "c", Outcome: "not_found", CreatedAt: now},
			{Company: "d", Outcome: "not_found", Unavailable: []model.Source{model.SourceGait}, CreatedAt: now},
			{Company: "%FF", Outcome: "failed", CreatedAt: now},
			{Company: "e", Outcome: "not_found", Unavailable: []model.Source{model.SourceGait}, CreatedAt: old},
		},
		failures: []store.Failure{
			{Source: model.SourceGait, FaultClass: "transient", Error: "connection reset by peer", CreatedAt: now.Add(-time.Minute)},
			{Source: model.SourceGait, FaultClass: "permanent", Error: "status 500", CreatedAt: now},
			{Source: model.SourceWaffler, FaultClass: "transient", Error: "timeout", CreatedAt: old},
		},
	}

	snap, err := NewCollector(st, nil).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 5, snap.Lookups)
	assert.Equal(t, 2, snap.Found)
	assert.Equal(t, 2, snap.NotFound)
	assert.Equal(t, 1, snap.Degraded)
	assert.Equal(t, 1, snap.Rejected)
	assert.InDelta(t, 0.25, snap.DegradedRate, 0.001)
	assert.Equal(t, 24, snap.LookbackHours)
	assert.False(t, snap.CollectedAt.IsZero())

	require.Len(t, snap.Providers, len(model.Sources()))
	for i, src := range model.Sources() {
		assert.Equal(t, src, snap.Providers[i].Source)
	}

	gait := snap.Provider(model.SourceGait)
	require.NotNil(t, gait)
	assert.Equal(t, 2, gait.Failures)
	assert.Equal(t, 1, gait.Transient)
	assert.Equal(t, 1, gait.Permanent)
	assert.Equal(t, "status 500", gait.LastError)

	waffler := snap.Provider(model.SourceWaffler)
	require.NotNil(t, waffler)
	assert.Zero(t, waffler.Failures)
	assert.True(t, waffler.LastFailureAt.IsZero())
}

func TestCollector_Collect_Empty(t *testing.T) {
	snap, err := NewCollector(store.Nop{}, nil).Collect(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, snap.Lookups)
	assert.Zero(t, snap.DegradedRate)
	assert.Len(t, snap.Providers, len(model.Sources()))
}

func TestCollector_Collect_UnknownSource(t *testing.T) {
	st := &fakeStore{
		failures: []store.Failure{
			{Source: model.Source("retired"), FaultClass: "permanent", Error: "gone", CreatedAt: time.Now().UTC()},
		},
	}

	snap, err := NewCollector(st, nil).Collect(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, snap.Providers, len(model.Sources())+1)
	last := snap.Providers[len(snap.Providers)-1]
	assert.Equal(t, model.Source("retired"), last.Source)
	assert.Equal(t, 1, last.Failures)
}

func TestCollector_Collect_Errors(t *testing.T) {
	_, err := NewCollector(&fakeStore{resErr: errors.New("db down")}, nil).Collect(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list resolutions")

	_, err = NewCollector(&fakeStore{failErr: errors.New("db down")}, nil).Collect(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list failures")
}

func TestCollector_Collect_SQLite(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "monitor.db"))
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	require.NoError(t, st.RecordResolution(ctx, store.Resolution{
		Company: "Acme", Outcome: "not_found", Unavailable: []model.Source{model.SourceColive},
	}))
	require.NoError(t, st.RecordResolution(ctx, store.Resolution{
		Company: "Beta", Outcome: "found", Source: model.SourceSmallcap,
	}))
	require.NoError(t, st.RecordFailure(ctx, store.Failure{
		Company: "Acme", Source: model.SourceColive, ErrorKind: model.ErrProviderUnavailable,
		FaultClass: "transient", Error: "timeout",
	}))

	snap, err := NewCollector(st, nil).Collect(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Lookups)
	assert.Equal(t, 1, snap.Degraded)
	assert.InDelta(t, 0.5, snap.DegradedRate, 0.001)
	colive := snap.Provider(model.SourceColive)
	require.NotNil(t, colive)
	assert.Equal(t, 1, colive.Transient)
	assert.Equal(t, "timeout", colive.LastError)
}

func TestCollector_Collect_CatalogOrder(t *testing.T) {
	now := time.Now().UTC()
	st := &fakeStore{failures: []store.Failure{
		{ID: "f1", Source: model.SourceGait, FaultClass: "transient", CreatedAt: now},
		{ID: "f2", Source: model.SourceWaffler, FaultClass: "permanent", Error: "status 500", CreatedAt: now},
	}}
	order := []model.Source{model.SourceDirectory, model.SourceGait, model.SourceAuditAPI}

	snap, err := NewCollector(st, order).Collect(context.Background(), 1)
	require.NoError(t, err)

	var got []model.Source
	for _, ph := range snap.Providers {
		got = append(got, ph.Source)
	}
	assert.Equal(t, []model.Source{
		model.SourceDirectory, model.SourceGait, model.SourceAuditAPI, model.SourceWaffler,
	}, got, "configured order first, then logged sources outside the catalog")
	assert.Equal(t, 1, snap.Provider(model.SourceGait).Failures)
	assert.Equal(t, "status 500", snap.Provider(model.SourceWaffler).LastError)
	assert.Nil(t, snap.Provider(model.SourceSmallcap), "unconfigured provider with no faults is not listed")
}

func TestCollector_Collect_Pages(t *testing.T) {
	now := time.Now().UTC()
	st := &fakeStore{}
	for i := range 7 {
		st.resolutions = append(st.resolutions, store.Resolution{
			ID: fmt.Sprintf("r%d", i), Outcome: "found", CreatedAt: now,
		})
		st.failures = append(st.failures, store.Failure{
			ID: fmt.Sprintf("f%d", i), Source: model.SourceColive, FaultClass: "transient", CreatedAt: now,
		})
	}

	c := NewCollector(st, nil)
	c.pageSize = 3

	snap, err := c.Collect(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Lookups)
	assert.Equal(t, 7, snap.Provider(model.SourceColive).Failures)
	assert.False(t, snap.Truncated)
}

func TestCollector_Collect_Truncated(t *testing.T) {
	now := time.Now().UTC()
	st := &fakeStore{}
	for i := range 10 {
		st.resolutions = append(st.resolutions, store.Resolution{
			ID: fmt.Sprintf("r%d", i), Outcome: "not_found", CreatedAt: now,
		})
	}

	c := NewCollector(st, nil)
	c.pageSize = 2
	c.maxRows = 4

	snap, err := c.Collect(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Lookups)
	assert.True(t, snap.Truncated)

	c.maxRows = 10
	snap, err = c.Collect(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Lookups)
	assert.False(t, snap.Truncated, "exactly maxRows rows is a complete read")
}
