package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fba-resolver/internal/catalog"
	"github.com/sells-group/fba-resolver/internal/fetcher"
	"github.com/sells-group/fba-resolver/internal/listing"
	"github.com/sells-group/fba-resolver/internal/provider"
	"github.com/sells-group/fba-resolver/internal/resolver"
	"github.com/sells-group/fba-resolver/internal/store"
	"github.com/sells-group/fba-resolver/pkg/auditapi"
	"github.com/sells-group/fba-resolver/pkg/directory"
	"github.com/sells-group/fba-resolver/pkg/gviz"
)

// resolverEnv holds the store, clients, and resolver needed by the
// resolve/list/serve commands.
type resolverEnv struct {
	Store    store.Store
	Catalog  *catalog.Catalog
	Clients  provider.Clients
	Registry *provider.Registry
	Resolver *resolver.Resolver
	Lister   *listing.Lister
}

// Close releases resources held by the environment.
func (e *resolverEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initResolver loads the provider catalog, builds one adapter per enabled
// provider, and wires the resolver to the log and the store. Callers should
// defer env.Close().
func initResolver(ctx context.Context, mode string) (*resolverEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	clients := initClients()
	reg, err := provider.FromCatalog(cat, clients)
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	rec := resolver.Recorders{resolver.LogRecorder{}, resolver.StoreRecorder{Store: st}}
	env := &resolverEnv{
		Store:    st,
		Catalog:  cat,
		Clients:  clients,
		Registry: reg,
		Resolver: resolver.New(reg.Adapters(), resolver.WithRecorder(rec)),
		Lister:   listing.FromRegistry(reg, clients, listing.WithConcurrency(cfg.Listing.Concurrency)),
	}

	zap.L().Debug("resolver ready",
		zap.Strings("providers", sourceNames(reg)),
		zap.String("store", cfg.Store.Driver),
	)
	return env, nil
}

// initClients builds the API clients on one shared fetcher so the per-host
// rate limits hold across providers.
func initClients() provider.Clients {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.HTTP.UserAgent,
		Timeout:      cfg.HTTP.Timeout(),
		RateLimiters: fetcher.DefaultRateLimiters(cfg.HTTP.RatePerSec),
	})
	return provider.Clients{
		Audit:     auditapi.NewClient(auditapi.WithBaseURL(cfg.Audit.BaseURL), auditapi.WithFetcher(f)),
		Sheets:    gviz.NewClient(gviz.WithBaseURL(cfg.Sheets.BaseURL), gviz.WithFetcher(f)),
		Directory: directory.NewClient(directory.WithBaseURL(cfg.Directory.BaseURL), directory.WithFetcher(f)),
	}
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func sourceNames(reg *provider.Registry) []string {
	srcs := reg.List()
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = string(s)
	}
	return out
}
