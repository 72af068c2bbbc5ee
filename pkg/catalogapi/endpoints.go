package catalogapi

import (
	"context"
	"net/url"
	"strings"

	"github.com/WessleyAI/wessley-catalog/engine/domain"
	"github.com/WessleyAI/wessley-catalog/pkg/fn"
)

// ModelQuery narrows the model list. Empty fields are not sent.
type ModelQuery struct {
	Search         string
	ManufacturerID string
	CategoryID     string
}

// Encode renders the query string in the order search, manufacturerId,
// categoryId. Values are form-encoded the way browsers serialise
// URLSearchParams: spaces become '+', '*' stays literal and '~' is escaped.
func (q ModelQuery) Encode() string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+formEscape(v))
		}
	}
	add("search", q.Search)
	add("manufacturerId", q.ManufacturerID)
	add("categoryId", q.CategoryID)
	return strings.Join(parts, "&")
}

// formEscape differs from url.QueryEscape only in '*' (kept) and '~'
// (escaped).
func formEscape(v string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '*', c == '-', c == '.', c == '_':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

// Index fetches the API root listing of collection paths.
func (c *Client) Index(ctx context.Context) fn.Result[map[string]string] {
	return getJSON[map[string]string](ctx, c, "index", "")
}

// Manufacturers lists every manufacturer in API order.
func (c *Client) Manufacturers(ctx context.Context) fn.Result[[]domain.Manufacturer] {
	return getJSON[[]domain.Manufacturer](ctx, c, "manufacturers", "/manufacturers")
}

// Categories lists every category in API order.
func (c *Client) Categories(ctx context.Context) fn.Result[[]domain.Category] {
	return getJSON[[]domain.Category](ctx, c, "categories", "/categories")
}

// Models lists models matching q. An empty query requests exactly /api/models?.
func (c *Client) Models(ctx context.Context, q ModelQuery) fn.Result[[]domain.Model] {
	return getJSON[[]domain.Model](ctx, c, "models", "/models?"+q.Encode())
}

// Model fetches one model with its specifications.
func (c *Client) Model(ctx context.Context, id string) fn.Result[domain.Model] {
	return getJSON[domain.Model](ctx, c, "model", "/models/"+url.PathEscape(id))
}

// Compare fetches the given models for side-by-side display. The ids are
// joined with literal commas in the order given.
func (c *Client) Compare(ctx context.Context, ids []string) fn.Result[[]domain.Model] {
	joined := strings.Join(fn.Map(ids, url.QueryEscape), ",")
	return getJSON[[]domain.Model](ctx, c, "compare", "/models/compare?ids="+joined)
}

// Recommendations fetches models recommended for a manufacturer.
func (c *Client) Recommendations(ctx context.Context, manufacturerID string) fn.Result[[]domain.Recommendation] {
	return getJSON[[]domain.Recommendation](ctx, c, "recommendations",
		"/recommendations?manufacturerId="+url.QueryEscape(manufacturerID))
}
