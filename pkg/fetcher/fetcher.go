// Package fetcher retrieves raw page content over HTTP.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gnoverse/knowscrape/models"
)

const defaultTimeout = 30 * time.Second

// FetchError marks a per-item retrieval failure: network error, timeout, or
// non-success status. It is skip-and-log at the pipeline boundary, never
// run-fatal.
type FetchError struct {
	Identifier string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Identifier, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	// authToken is sent as a bearer token when non-empty. Opaque: never
	// inspected or logged.
	authToken string
}

type Option func(*Fetcher)

// WithTimeout bounds each request. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithAuthToken attaches a bearer token to every request.
func WithAuthToken(token string) Option {
	return func(f *Fetcher) { f.authToken = token }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{},
		timeout:   defaultTimeout,
		userAgent: "knowscrape/1.0",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the raw content for one SourceItem. The item's identifier
// must be an absolute http(s) URL.
func (f *Fetcher) Fetch(ctx context.Context, item models.SourceItem) (*models.RawPage, error) {
	u, err := url.Parse(item.Identifier)
	if err != nil {
		return nil, &FetchError{Identifier: item.Identifier, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &FetchError{Identifier: item.Identifier, Err: fmt.Errorf("unsupported URL scheme: %q", u.Scheme)}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.Identifier, nil)
	if err != nil {
		return nil, &FetchError{Identifier: item.Identifier, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	if f.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+f.authToken)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Identifier: item.Identifier, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Identifier: item.Identifier, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Identifier: item.Identifier, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return &models.RawPage{
		Item:        item,
		Content:     body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
