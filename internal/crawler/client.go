package crawler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// Client creates HTTP clients for site traffic.
//
// Design decision: the proxy dialer is created once in NewClient and shared
// by every http.Client built from it. Nothing is dialed until a request is
// made, so a Client can be created before the proxy is up.
type Client struct {
	proxyAddress string
	dialer       proxy.ContextDialer
	timeout      time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithProxy routes all traffic through the SOCKS5 proxy at address
// ("host:port"). An empty address means direct connections.
func WithProxy(address string) ClientOption {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// NewClient creates a Client whose HTTP clients use timeout per request.
func NewClient(timeout time.Duration, opts ...ClientOption) (*Client, error) {
	c := &Client{timeout: timeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.proxyAddress == "" {
		return c, nil
	}

	if !isValidProxyAddress(c.proxyAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.proxyAddress)
	}
	d, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("SOCKS5 dialer does not support contexts")
	}
	c.dialer = cd
	return c, nil
}

// isValidProxyAddress checks for "host:port" with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// ProxyAddress returns the configured proxy address, or "" for direct.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// HTTPClient returns a new HTTP client. Requests carry their context down to
// the dialer, so cancelling the context aborts in-flight calls.
func (c *Client) HTTPClient() *http.Client {
	return c.newHTTPClient(false)
}

// InsecureHTTPClient is HTTPClient without TLS certificate verification.
// It is only used as a fallback for sites with broken certificate chains.
func (c *Client) InsecureHTTPClient() *http.Client {
	return c.newHTTPClient(true)
}

func (c *Client) newHTTPClient(insecure bool) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if c.dialer != nil {
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return c.dialer.DialContext(ctx, network, addr)
		}
	}
	if insecure {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // explicit fallback for broken certificate chains
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// WithSiteHeaders wraps client so that every request carries cookie and
// headers. client is returned unchanged when both are empty.
func WithSiteHeaders(client *http.Client, cookie string, headers map[string]string) *http.Client {
	if cookie == "" && len(headers) == 0 {
		return client
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *client
	wrapped.Transport = &headerInjectingTransport{
		base:    base,
		cookie:  cookie,
		headers: headers,
	}
	return &wrapped
}

// headerInjectingTransport adds a cookie and fixed headers to every request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
