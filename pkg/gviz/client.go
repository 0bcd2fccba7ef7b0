// Package gviz queries public Google Sheets through the visualization
// endpoint and parses its wrapped JSON responses.
package gviz

import (
	"context"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/fetcher"
	"github.com/sells-group/fba-resolver/internal/model"
)

const defaultBaseURL = "https://docs.google.com"

// Client queries one tab of a spreadsheet.
type Client interface {
	Query(ctx context.Context, sheetID, tabID string) ([]model.RawRow, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default endpoint host.
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

// NewClient creates a gviz client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(0),
		})
	}
	return c
}

// QueryURL builds the gviz query URL for a sheet tab.
func QueryURL(baseURL, sheetID, tabID string) string {
	return baseURL + "/spreadsheets/d/" + url.PathEscape(sheetID) +
		"/gviz/tq?tqx=out:json&gid=" + url.QueryEscape(tabID)
}

func (c *httpClient) Query(ctx context.Context, sheetID, tabID string) ([]model.RawRow, error) {
	if sheetID == "" || tabID == "" {
		return nil, eris.New("gviz: sheet id and tab id are required")
	}

	resp, err := c.fetcher.Get(ctx, QueryURL(c.baseURL, sheetID, tabID))
	if err != nil {
		return nil, eris.Wrap(err, "gviz: send request")
	}
	if resp.StatusCode != 200 {
		return nil, eris.Errorf("gviz: unexpected status %d for sheet %s", resp.StatusCode, sheetID)
	}

	payload, err := StripEnvelope(resp.Body)
	if err != nil {
		return nil, err
	}

	rows, err := ParseTable(payload)
	if err != nil {
		return nil, eris.Wrapf(err, "gviz: sheet %s tab %s", sheetID, tabID)
	}
	return rows, nil
}
