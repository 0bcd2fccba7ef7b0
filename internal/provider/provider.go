// Package provider adapts each data source to a single lookup contract.
package provider

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/model"
)

// Adapter looks a company up in one data source.
type Adapter interface {
	// Source returns the tag attached to records from this adapter.
	Source() model.Source
	// Resolve returns Found, NotFound or Failed for an already-decoded key.
	// It never returns a transport or parse error any other way.
	Resolve(ctx context.Context, key string) model.Outcome
}

// Registry holds adapters in priority order. Registration order is
// priority order.
type Registry struct {
	mu       sync.RWMutex
	adapters []Adapter
	bySource map[model.Source]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		bySource: make(map[model.Source]Adapter),
	}
}

// Register appends an adapter at the lowest priority so far.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySource[a.Source()]; ok {
		return eris.Errorf("provider: duplicate source %q", a.Source())
	}
	r.bySource[a.Source()] = a
	r.adapters = append(r.adapters, a)
	return nil
}

// Get returns the adapter for src, or nil.
func (r *Registry) Get(src model.Source) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bySource[src]
}

// List returns the registered sources in priority order.
func (r *Registry) List() []model.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Source, len(r.adapters))
	for i, a := range r.adapters {
		out[i] = a.Source()
	}
	return out
}

// Adapters returns a copy of the adapters in priority order.
func (r *Registry) Adapters() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}
