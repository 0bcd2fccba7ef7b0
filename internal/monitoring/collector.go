// Package monitoring watches the resolution log for failing providers and
// degraded lookups, and posts alerts to a webhook.
package monitoring

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/resilience"
	"github.com/sells-group/fba-resolver/internal/store"
)

const (
	collectPageSize = 1000
	collectMaxRows  = 100000
)

// ProviderHealth summarizes the faults one provider raised in the window.
type ProviderHealth struct {
	Source        model.Source `json:"source"`
	Failures      int          `json:"failures"`
	Transient     int          `json:"transient"`
	Permanent     int          `json:"permanent"`
	LastError     string       `json:"last_error,omitempty"`
	LastFailureAt time.Time    `json:"last_failure_at,omitempty"`
}

// MetricsSnapshot holds a point-in-time view of resolver health.
type MetricsSnapshot struct {
	// Lookups within the lookback window.
	Lookups      int     `json:"lookups"`
	Found        int     `json:"found"`
	NotFound     int     `json:"not_found"`
	Degraded     int     `json:"degraded"`
	Rejected     int     `json:"rejected"`
	DegradedRate float64 `json:"degraded_rate"`

	// Per-provider faults, in priority order. Providers with no faults are
	// listed with zero counts.
	Providers []ProviderHealth `json:"providers"`

	// Truncated is set when the window held more rows than one snapshot
	// reads; counts then cover only the newest rows.
	Truncated bool `json:"truncated,omitempty"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Provider returns the health entry for src, or nil.
func (s *MetricsSnapshot) Provider(src model.Source) *ProviderHealth {
	for i := range s.Providers {
		if s.Providers[i].Source == src {
			return &s.Providers[i]
		}
	}
	return nil
}

// Collector gathers metrics from the store.
type Collector struct {
	store   store.Store
	sources []model.Source

	pageSize int
	maxRows  int
}

// NewCollector creates a new metrics collector. sources are the configured
// providers in priority order; nil means every known source.
func NewCollector(st store.Store, sources []model.Source) *Collector {
	if sources == nil {
		sources = model.Sources()
	}
	return &Collector{store: st, sources: sources, pageSize: collectPageSize, maxRows: collectMaxRows}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := time.Now().UTC()
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}
	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)

	resolutions, cut, err := collectPages(c, func(offset int) ([]store.Resolution, error) {
		return c.store.ListResolutions(ctx, store.ResolutionFilter{
			Since: cutoff, Limit: c.pageSize, Offset: offset,
		})
	}, func(r store.Resolution) string { return r.ID })
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list resolutions")
	}
	snap.Truncated = cut

	snap.Lookups = len(resolutions)
	for _, r := range resolutions {
		switch r.Outcome {
		case model.OutcomeFound.String():
			snap.Found++
		case model.OutcomeNotFound.String():
			snap.NotFound++
			if len(r.Unavailable) > 0 {
				snap.Degraded++
			}
		case model.OutcomeFailed.String():
			snap.Rejected++
		}
	}
	if answered := snap.Found + snap.NotFound; answered > 0 {
		snap.DegradedRate = float64(snap.Degraded) / float64(answered)
	}

	failures, cut, err := collectPages(c, func(offset int) ([]store.Failure, error) {
		return c.store.ListFailures(ctx, store.FailureFilter{
			Since: cutoff, Limit: c.pageSize, Offset: offset,
		})
	}, func(f store.Failure) string { return f.ID })
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list failures")
	}
	snap.Truncated = snap.Truncated || cut

	bySource := make(map[model.Source]*ProviderHealth)
	for _, src := range c.sources {
		bySource[src] = &ProviderHealth{Source: src}
	}
	for _, f := range failures {
		ph, ok := bySource[f.Source]
		if !ok {
			ph = &ProviderHealth{Source: f.Source}
			bySource[f.Source] = ph
		}
		ph.Failures++
		switch f.FaultClass {
		case resilience.FaultTransient:
			ph.Transient++
		case resilience.FaultPermanent:
			ph.Permanent++
		}
		if f.CreatedAt.After(ph.LastFailureAt) {
			ph.LastFailureAt = f.CreatedAt
			ph.LastError = f.Error
		}
	}

	for _, src := range c.sources {
		ph, ok := bySource[src]
		if !ok {
			continue
		}
		snap.Providers = append(snap.Providers, *ph)
		delete(bySource, src)
	}
	// Sources no longer in the catalog still show up if the log has them.
	var extra []ProviderHealth
	for _, ph := range bySource {
		extra = append(extra, *ph)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Source < extra[j].Source })
	snap.Providers = append(snap.Providers, extra...)

	return snap, nil
}

// collectPages reads pages until a short page or maxRows. Rows logged while
// paging shift the offsets, so rows already seen are skipped by id.
func collectPages[T any](c *Collector, list func(offset int) ([]T, error), id func(T) string) ([]T, bool, error) {
	var out []T
	seen := make(map[string]bool)
	for offset := 0; ; offset += c.pageSize {
		page, err := list(offset)
		if err != nil {
			return nil, false, err
		}
		if offset >= c.maxRows {
			return out, len(page) > 0, nil
		}
		for _, row := range page {
			if k := id(row); k != "" {
				if seen[k] {
					continue
				}
				seen[k] = true
			}
			out = append(out, row)
		}
		if len(page) < c.pageSize {
			return out, false, nil
		}
	}
}
