package catalogapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/WessleyAI/wessley-catalog/pkg/fn"
	"github.com/WessleyAI/wessley-catalog/pkg/metrics"
	"github.com/WessleyAI/wessley-catalog/pkg/resilience"
)

// getJSON performs a GET of <base>/api<path> and decodes the JSON body into T.
// endpoint names the call for errors and metrics.
func getJSON[T any](ctx context.Context, c *Client, endpoint, path string) fn.Result[T] {
	url := c.baseURL + APIPrefix + path
	start := time.Now()

	var r fn.Result[T]
	if c.breaker == nil {
		r = doGet[T](ctx, c, endpoint, url)
	} else {
		r = resilience.Call(c.breaker, ctx, func(ctx context.Context) fn.Result[T] {
			return doGet[T](ctx, c, endpoint, url)
		})
		if r.IsErr() && errors.Is(r.Error(), resilience.ErrCircuitOpen) {
			r = fn.Err[T](&RequestError{Kind: KindNetwork, Endpoint: endpoint, URL: url, Err: r.Error()})
		}
	}
	c.observe(endpoint, r.Error(), start)
	return r
}

// Trips reports whether err indicates the API itself is unhealthy: a
// transport failure or a 5xx response. Caller cancellation and client-side
// statuses such as 404 do not count.
func Trips(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var re *RequestError
	if !errors.As(err, &re) {
		return true
	}
	switch re.Kind {
	case KindNetwork:
		return true
	case KindStatus:
		return re.StatusCode >= 500
	}
	return false
}

func doGet[T any](ctx context.Context, c *Client, endpoint, url string) fn.Result[T] {
	netErr := func(err error) fn.Result[T] {
		return fn.Err[T](&RequestError{Kind: KindNetwork, Endpoint: endpoint, URL: url, Err: err})
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return netErr(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return netErr(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return netErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fn.Err[T](&RequestError{
			Kind:       KindStatus,
			Endpoint:   endpoint,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		})
	}

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return fn.Err[T](&RequestError{Kind: KindDecode, Endpoint: endpoint, URL: url, Err: err})
	}
	return fn.Ok(v)
}

func (c *Client) observe(endpoint string, err error, start time.Time) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if re, ok := err.(*RequestError); ok {
		outcome = re.Kind.String()
	}
	c.metrics.Counter(
		metrics.WithLabels("catalog_api_requests_total", "endpoint", endpoint, "outcome", outcome),
		"Catalog API requests by endpoint and outcome.",
	).Inc()
	c.metrics.Histogram(
		metrics.WithLabels("catalog_api_request_duration_seconds", "endpoint", endpoint),
		"Catalog API request latency.",
		nil,
	).Since(start)
}
