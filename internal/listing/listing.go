// Package listing builds the combined company index shown on the home page:
// every provider's companies in one list, deduplicated by name.
package listing

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/provider"
)

// Entry is one company in the combined listing.
type Entry struct {
	Name      string       `json:"name"`
	Source    model.Source `json:"source"`
	Industry  string       `json:"industry,omitempty"`
	Location  string       `json:"location,omitempty"`
	Website   string       `json:"website,omitempty"`
	Valuation string       `json:"valuation,omitempty"`
}

// fill copies attributes from other into empty fields of e.
func (e *Entry) fill(other Entry) {
	if e.Industry == "" {
		e.Industry = other.Industry
	}
	if e.Location == "" {
		e.Location = other.Location
	}
	if e.Website == "" {
		e.Website = other.Website
	}
	if e.Valuation == "" {
		e.Valuation = other.Valuation
	}
}

// Source yields the companies one provider knows about. search is passed
// through to providers that filter server-side and may be ignored by the
// rest; the Lister filters again afterwards.
type Source interface {
	Source() model.Source
	Entries(ctx context.Context, search string) ([]Entry, error)
}

// Lister merges the entries of several sources. Sources are kept in
// priority order; the first source to list a name owns its entry.
type Lister struct {
	sources     []Source
	concurrency int
}

// Option configures a Lister.
type Option func(*Lister)

// WithConcurrency caps the number of sources fetched at once.
func WithConcurrency(n int) Option {
	return func(l *Lister) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// New creates a Lister over sources in priority order.
func New(sources []Source, opts ...Option) *Lister {
	l := &Lister{sources: sources, concurrency: 8}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Sources returns the source ids in priority order.
func (l *Lister) Sources() []model.Source {
	out := make([]model.Source, len(l.sources))
	for i, s := range l.sources {
		out[i] = s.Source()
	}
	return out
}

// List fetches every source concurrently and merges the results. Each
// source applies search itself. A source that fails is logged and left out. Only a cancelled context fails the
// whole listing.
func (l *Lister) List(ctx context.Context, search string) ([]Entry, error) {
	results := make([][]Entry, len(l.sources))

	var mu sync.Mutex
	var failed []model.Source

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, src := range l.sources {
		g.Go(func() error {
			entries, err := src.Entries(gctx, search)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				zap.L().Warn("listing: source failed",
					zap.String("source", string(src.Source())),
					zap.Error(err))
				mu.Lock()
				failed = append(failed, src.Source())
				mu.Unlock()
				return nil
			}
			results[i] = entries
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := Merge(results...)

	zap.L().Debug("listing: merged",
		zap.String("search", search),
		zap.Int("entries", len(merged)),
		zap.Int("failed_sources", len(failed)))

	return merged, nil
}

// Merge concatenates lists in order, keeping the first entry for each
// exact name and filling its empty attributes from later duplicates.
// Entries without a name are dropped.
func Merge(lists ...[]Entry) []Entry {
	var out []Entry
	index := make(map[string]int)
	for _, list := range lists {
		for _, e := range list {
			if e.Name == "" {
				continue
			}
			if i, ok := index[e.Name]; ok {
				out[i].fill(e)
				continue
			}
			index[e.Name] = len(out)
			out = append(out, e)
		}
	}
	return out
}

// Filter keeps entries whose name, industry or location contains search,
// ignoring case. An empty search keeps everything. Sources that search
// server-side are not filtered again.
func Filter(entries []Entry, search string) []Entry {
	search = strings.TrimSpace(search)
	if search == "" {
		return entries
	}
	needle := strings.ToLower(search)
	out := entries[:0:0]
	for _, e := range entries {
		if e.matches(needle) {
			out = append(out, e)
		}
	}
	return out
}

func (e Entry) matches(needle string) bool {
	for _, v := range []string{e.Name, e.Industry, e.Location} {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// FromRegistry builds listing sources matching the registry's adapters, in
// the same priority order. clients supplies the list endpoints of the API
// backed providers.
func FromRegistry(reg *provider.Registry, clients provider.Clients, opts ...Option) *Lister {
	var sources []Source
	for _, a := range reg.Adapters() {
		switch ad := a.(type) {
		case *provider.AuditAdapter:
			if clients.Audit != nil {
				sources = append(sources, NewAuditSource(clients.Audit))
			}
		case *provider.SheetAdapter:
			sources = append(sources, NewSheetSource(ad))
		case *provider.DirectoryAdapter:
			if clients.Directory != nil {
				sources = append(sources, NewDirectorySource(clients.Directory))
			}
		default:
			zap.L().Debug("listing: adapter has no listing", zap.String("source", string(a.Source())))
		}
	}
	return New(sources, opts...)
}
