// Package auditapi is a client for the FBA backend audit endpoints.
package auditapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/fetcher"
)

const defaultBaseURL = "http://localhost:5001"

// Client reads company audits from the backend.
type Client interface {
	GetAudit(ctx context.Context, companyName string) (*AuditResponse, error)
	ListAudits(ctx context.Context, req ListRequest) (*ListResponse, error)
}

// AuditResponse is the body of GET /api/audit/{name}. Data holds the
// audit sections (properties, info, financial, executives, ...).
type AuditResponse struct {
	Status int            `json:"-"`
	Data   map[string]any `json:"data"`
}

// ListRequest filters the audit listing.
type ListRequest struct {
	Search string
	Page   int
	Limit  int
}

// ListResponse is the body of GET /api/audit.
type ListResponse struct {
	Companies []Company `json:"companies"`
	Total     int       `json:"total,omitempty"`
}

// Company is one entry of the audit listing.
type Company struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry,omitempty"`
	Location    string `json:"location,omitempty"`
	Domain      string `json:"domain,omitempty"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("auditapi: unexpected status %d: %s", e.Code, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default backend URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithFetcher overrides the HTTP fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *httpClient) {
		c.fetcher = f
	}
}

type httpClient struct {
	baseURL string
	fetcher fetcher.Fetcher
}

// NewClient creates an audit API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	}
	return c
}

// GetAudit fetches one company's audit. The name is path-escaped here;
// callers pass it decoded. A 200 with an empty body yields a response with
// nil Data.
func (c *httpClient) GetAudit(ctx context.Context, companyName string) (*AuditResponse, error) {
	resp, err := c.fetcher.Get(ctx, c.baseURL+"/api/audit/"+url.PathEscape(companyName))
	if err != nil {
		return nil, eris.Wrap(err, "auditapi: send request")
	}
	if !resp.OK() {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(resp.Body)}
	}

	out := AuditResponse{Status: resp.StatusCode}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, eris.Wrap(err, "auditapi: unmarshal audit")
	}
	return &out, nil
}

// ListAudits fetches the audit listing.
func (c *httpClient) ListAudits(ctx context.Context, req ListRequest) (*ListResponse, error) {
	q := url.Values{}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	u := c.baseURL + "/api/audit"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	resp, err := c.fetcher.Get(ctx, u)
	if err != nil {
		return nil, eris.Wrap(err, "auditapi: send request")
	}
	if !resp.OK() {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(resp.Body)}
	}

	var out ListResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, eris.Wrap(err, "auditapi: unmarshal list")
	}
	return &out, nil
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
