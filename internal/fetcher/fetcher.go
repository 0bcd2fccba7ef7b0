// Package fetcher performs outbound HTTP requests and reads sheet snapshot
// files (xlsx, csv).
package fetcher

import (
	"context"
	"net/http"
)

// Fetcher issues single GET requests against provider endpoints.
type Fetcher interface {
	// Get fetches the URL once and returns the fully read, UTF-8 decoded
	// response. Non-2xx statuses are returned as responses, not errors.
	Get(ctx context.Context, url string) (*Response, error)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
