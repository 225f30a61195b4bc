package crawler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// Document is a fetched and parsed HTML page.
type Document struct {
	// URL is the requested URL.
	URL string
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Root is the parsed document node.
	Root *html.Node
}

// Fetcher fetches HTML pages from one site.
type Fetcher struct {
	client      *http.Client
	fallback    *http.Client
	limiter     *rate.Limiter
	userAgent   string
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithDelay sets the minimum interval between two requests of this Fetcher.
// Zero disables the limit.
func WithDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		f.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of body bytes read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithTLSFallback retries a request once with client when the first attempt
// fails certificate verification.
func WithTLSFallback(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.fallback = client
	}
}

// NewFetcher creates a Fetcher that uses client.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		limiter:     rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		userAgent:   "Mozilla/5.0 (X11; Linux x86_64) kakusu",
		maxBodySize: 5 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch waits for the politeness limiter, GETs pageURL and parses the body
// as HTML. The body is decoded to UTF-8 based on the Content-Type header
// and <meta> charset declarations. Non-2xx responses return a *StatusError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Document, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := f.get(ctx, f.client, pageURL)
	if err != nil && f.fallback != nil && isCertificateError(err) {
		resp, err = f.get(ctx, f.fallback, pageURL)
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096) //nolint:errcheck // best effort
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body := io.LimitReader(resp.Body, f.maxBodySize)
	utf8Body, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset of %s: %w", pageURL, err)
	}
	root, err := html.Parse(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	return &Document{URL: pageURL, StatusCode: resp.StatusCode, Root: root}, nil
}

// wait blocks until the limiter allows the next request or ctx is done.
// Unlike rate.Limiter.Wait it does not fail early when the delay would pass
// the context deadline, so the caller only ever sees ctx.Err().
func (f *Fetcher) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := f.limiter.Reserve()
	if !r.OK() {
		return errors.New("request delay exceeds limiter burst")
	}
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

func (f *Fetcher) get(ctx context.Context, client *http.Client, pageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")
	return client.Do(req)
}

func isCertificateError(err error) bool {
	var certErr *tls.CertificateVerificationError
	return errors.As(err, &certErr)
}
