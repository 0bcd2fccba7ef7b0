// Package directory is a client for the public FBA company directory.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/fetcher"
)

const (
	defaultBaseURL = "https://api.companylist.fba.ai"
	// DefaultLimit matches the page size the directory UI requests.
	DefaultLimit = 100
)

// Client searches and lists directory companies.
type Client interface {
	Search(ctx context.Context, query string, limit int) ([]Company, error)
	List(ctx context.Context, limit int) ([]Company, error)
}

// Company is one directory entry.
type Company struct {
	Name        string `json:"name"`
	Industry    string `json:"industry,omitempty"`
	Locality    string `json:"locality,omitempty"`
	Country     string `json:"country,omitempty"`
	Domain      string `json:"domain,omitempty"`
	YearFounded any    `json:"year_founded,omitempty"`
	SizeRange   string `json:"size_range,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

type companiesResponse struct {
	Companies []Company `json:"companies"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the directory URL.
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

// NewClient creates a directory client.
func NewClient(opts ...Option) Client {
	c := &httpClient{baseURL: defaultBaseURL}
	for _, o := range opts {
		o(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	}
	return c
}

// Search runs a free-text query.
func (c *httpClient) Search(ctx context.Context, query string, limit int) ([]Company, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", strconv.Itoa(orDefault(limit)))
	return c.get(ctx, "/search?"+q.Encode())
}

// List returns the first page of companies.
func (c *httpClient) List(ctx context.Context, limit int) ([]Company, error) {
	return c.get(ctx, "/companies?limit="+strconv.Itoa(orDefault(limit)))
}

func (c *httpClient) get(ctx context.Context, path string) ([]Company, error) {
	resp, err := c.fetcher.Get(ctx, c.baseURL+path)
	if err != nil {
		return nil, eris.Wrap(err, "directory: send request")
	}
	if !resp.OK() {
		return nil, eris.Errorf("directory: unexpected status %d", resp.StatusCode)
	}

	var out companiesResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, eris.Wrap(err, "directory: unmarshal response")
	}
	return out.Companies, nil
}

// YearFoundedString renders year_founded, which the directory returns as
// either a number or a string.
func (c Company) YearFoundedString() string {
	switch v := c.YearFounded.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func orDefault(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
