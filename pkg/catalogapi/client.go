// Package catalogapi is the client for the vehicle catalog REST API. Every
// call is a single GET under <base>/api returning JSON; failures come back as
// a *RequestError tagged with what went wrong.
package catalogapi

import (
	"net/http"
	"strings"

	"github.com/WessleyAI/wessley-catalog/pkg/metrics"
	"github.com/WessleyAI/wessley-catalog/pkg/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// APIPrefix is the path every endpoint lives under.
const APIPrefix = "/api"

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 512

// Client issues catalog API calls. It carries no timeout, retry, or cache;
// callers bound requests through the context.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	metrics *metrics.Registry
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
// A non-positive rps leaves the client unthrottled.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreaker routes every call through b. While b is open calls fail fast
// with a network RequestError wrapping resilience.ErrCircuitOpen. Pair it with
// Trips so that only upstream outages count against the breaker.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// WithMetrics records request counts and latencies in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Client) { c.metrics = reg }
}

// New creates a client for the API served at baseURL (scheme and host, no
// /api suffix).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(baseURL), "/"), APIPrefix),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the scheme and host the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }
