// Package server exposes the resolver and the company listing over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/fba-resolver/internal/listing"
	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/monitoring"
)

const companiesPrefix = "/api/companies/"

// Resolver resolves a raw, still-encoded company key.
type Resolver interface {
	Resolve(ctx context.Context, rawKey string) model.Outcome
	Sources() []model.Source
}

// Lister returns the combined company listing.
type Lister interface {
	List(ctx context.Context, search string) ([]listing.Entry, error)
}

// HealthCollector reports provider health over a lookback window.
type HealthCollector interface {
	Collect(ctx context.Context, lookbackHours int) (*monitoring.MetricsSnapshot, error)
}

// Server serves the company API.
type Server struct {
	resolver Resolver
	lister   Lister
	origins  []string

	health        HealthCollector
	lookbackHours int
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithHealth mounts GET /api/health/providers backed by c.
func WithHealth(c HealthCollector, lookbackHours int) Option {
	return func(s *Server) {
		s.health = c
		s.lookbackHours = lookbackHours
	}
}

// New creates a Server.
func New(resolver Resolver, lister Lister, opts ...Option) *Server {
	s := &Server{resolver: resolver, lister: lister, origins: []string{"*"}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/providers", s.handleProviders)
	r.Get("/api/companies", s.handleList)
	r.Get("/api/companies/{name}", s.handleResolve)
	if s.health != nil {
		r.Get("/api/health/providers", s.handleProviderHealth)
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"providers": s.resolver.Sources()})
}

func (s *Server) handleProviderHealth(w http.ResponseWriter, r *http.Request) {
	hours := s.lookbackHours
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "hours must be a positive integer"})
			return
		}
		hours = n
	}
	if hours < 1 {
		hours = 1
	}

	snap, err := s.health.Collect(r.Context(), hours)
	if err != nil {
		zap.L().Warn("server: collect provider health", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "provider health unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	entries, err := s.lister.List(r.Context(), search)
	if err != nil {
		zap.L().Warn("server: list companies", zap.String("search", search), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "company listing unavailable"})
		return
	}
	if entries == nil {
		entries = []listing.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": entries})
}

type errorBody struct {
	Error string `json:"error"`
}

type notFoundBody struct {
	Error       string         `json:"error"`
	Unavailable []model.Source `json:"unavailable"`
}

// handleResolve passes the path segment to the resolver still encoded; the
// resolver decodes it exactly once.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	raw := rawName(r)
	out := s.resolver.Resolve(r.Context(), raw)

	switch {
	case out.IsFound():
		writeJSON(w, http.StatusOK, out.Record)
	case out.IsFailed() && out.ErrKind == model.ErrDecode:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid company name"})
	case out.IsFailed():
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "company lookup failed"})
	default:
		unavailable := out.Unavailable
		if unavailable == nil {
			unavailable = []model.Source{}
		}
		writeJSON(w, http.StatusNotFound, notFoundBody{Error: "company not found", Unavailable: unavailable})
	}
}

// rawName returns the escaped name segment. chi matches on RawPath only
// when one is set, so the segment is cut from EscapedPath instead of read
// from the route params.
func rawName(r *http.Request) string {
	p := r.URL.EscapedPath()
	if i := strings.Index(p, companiesPrefix); i >= 0 {
		return p[i+len(companiesPrefix):]
	}
	return chi.URLParam(r, "name")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: write response", zap.Error(err))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.EscapedPath()),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
