// Package catalog implements the catalog view controller: it loads filters,
// model lists, details, comparisons and recommendations from the catalog API
// into a view.State, one region at a time.
//
// Each region accepts only the result of the most recently started request
// for it; an older request resolving late is dropped rather than overwriting
// newer content. A failed request leaves its region untouched.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/WessleyAI/wessley-catalog/engine/domain"
	"github.com/WessleyAI/wessley-catalog/engine/view"
	"github.com/WessleyAI/wessley-catalog/pkg/catalogapi"
	"github.com/WessleyAI/wessley-catalog/pkg/fn"
	"github.com/WessleyAI/wessley-catalog/pkg/metrics"
	"github.com/WessleyAI/wessley-catalog/pkg/prefs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// API is the subset of the catalog API client the controller uses.
type API interface {
	Manufacturers(ctx context.Context) fn.Result[[]domain.Manufacturer]
	Categories(ctx context.Context) fn.Result[[]domain.Category]
	Models(ctx context.Context, q catalogapi.ModelQuery) fn.Result[[]domain.Model]
	Model(ctx context.Context, id string) fn.Result[domain.Model]
	Compare(ctx context.Context, ids []string) fn.Result[[]domain.Model]
	Recommendations(ctx context.Context, manufacturerID string) fn.Result[[]domain.Recommendation]
}

var _ API = (*catalogapi.Client)(nil)

// MinCompare is the fewest checked rows a comparison needs.
const MinCompare = 2

// Options configures a Controller. Zero values are valid.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Registry
}

// Controller drives one catalog page. It is safe for concurrent use; the
// state lock is never held across a network call.
type Controller struct {
	api     API
	prefs   prefs.Store
	log     *slog.Logger
	metrics *metrics.Registry
	tracer  trace.Tracer

	seq   view.Sequencer
	mu    sync.Mutex
	state view.State

	bg sync.WaitGroup
}

// New creates a controller with an empty page state.
func New(api API, store prefs.Store, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		api:     api,
		prefs:   store,
		log:     log,
		metrics: opts.Metrics,
		tracer:  otel.Tracer("engine/catalog"),
	}
}

// Snapshot returns a copy of the current page state.
func (c *Controller) Snapshot() view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SetFilters records the search text and filter selections used by the next
// LoadModels.
func (c *Controller) SetFilters(search, manufacturerID, categoryID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SetFilters(search, manufacturerID, categoryID)
}

// SetChecked marks exactly the given rows as selected for comparison.
func (c *Controller) SetChecked(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SetChecked(ids)
}

// Toggle selects or deselects one row for comparison.
func (c *Controller) Toggle(id string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Toggle(id, on)
}

// LoadFilters rebuilds the manufacturer and category filters, in that order.
// Each filter is replaced as soon as its own fetch succeeds.
func (c *Controller) LoadFilters(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "catalog.LoadFilters")
	defer span.End()

	ticket := c.seq.Next(view.RegionManufacturers)
	ms, err := c.api.Manufacturers(ctx).Unwrap()
	if err != nil {
		return c.fail(span, "load manufacturers", err)
	}
	c.commit(view.RegionManufacturers, ticket, func(s *view.State) { s.ApplyManufacturers(ms) })

	ticket = c.seq.Next(view.RegionCategories)
	cs, err := c.api.Categories(ctx).Unwrap()
	if err != nil {
		return c.fail(span, "load categories", err)
	}
	c.commit(view.RegionCategories, ticket, func(s *view.State) { s.ApplyCategories(cs) })
	return nil
}

// LoadModels lists the models matching the current filters and replaces the
// table.
func (c *Controller) LoadModels(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "catalog.LoadModels")
	defer span.End()

	c.mu.Lock()
	search, manufacturerID, categoryID := c.state.Filters()
	c.mu.Unlock()
	q := catalogapi.ModelQuery{Search: search, ManufacturerID: manufacturerID, CategoryID: categoryID}
	span.SetAttributes(attribute.String("catalog.query", q.Encode()))

	ticket := c.seq.Next(view.RegionModels)
	ms, err := c.api.Models(ctx, q).Unwrap()
	if err != nil {
		return c.fail(span, "load models", err)
	}
	span.SetAttributes(attribute.Int("catalog.models", len(ms)))
	c.commit(view.RegionModels, ticket, func(s *view.State) { s.ApplyModels(ms) })
	return nil
}

// ShowDetails shows one model, remembers its manufacturer as the visitor's
// preference and then refreshes recommendations. A recommendation failure is
// logged, not returned.
func (c *Controller) ShowDetails(ctx context.Context, id string) error {
	ctx, span := c.tracer.Start(ctx, "catalog.ShowDetails", trace.WithAttributes(attribute.String("catalog.model_id", id)))
	defer span.End()

	ticket := c.seq.Next(view.RegionDetails)
	m, err := c.api.Model(ctx, id).Unwrap()
	if err != nil {
		return c.fail(span, "show details", err)
	}
	if !c.commit(view.RegionDetails, ticket, func(s *view.State) { s.ApplyDetails(m) }) {
		return nil
	}

	if err := c.prefs.Set(ctx, prefs.PreferredManufacturer, strconv.Itoa(m.ManufacturerID)); err != nil {
		return c.fail(span, "save preference", err)
	}
	if err := c.LoadRecommendations(ctx); err != nil {
		c.log.Warn("recommendations after details failed", "model_id", id, "err", err)
	}
	return nil
}

// CompareSelected compares the checked rows in table order. With fewer than
// MinCompare rows checked it does nothing.
func (c *Controller) CompareSelected(ctx context.Context) error {
	c.mu.Lock()
	ids := slices.Clone(c.state.Checked)
	c.mu.Unlock()
	if len(ids) < MinCompare {
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "catalog.CompareSelected", trace.WithAttributes(attribute.StringSlice("catalog.model_ids", ids)))
	defer span.End()

	ticket := c.seq.Next(view.RegionCompare)
	ms, err := c.api.Compare(ctx, ids).Unwrap()
	if err != nil {
		return c.fail(span, "compare", err)
	}
	c.commit(view.RegionCompare, ticket, func(s *view.State) { s.ApplyComparison(ms) })
	return nil
}

// LoadRecommendations shows recommendations for the preferred manufacturer.
// Without a stored preference it does nothing.
func (c *Controller) LoadRecommendations(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "catalog.LoadRecommendations")
	defer span.End()

	pref, ok, err := c.prefs.Get(ctx, prefs.PreferredManufacturer)
	if err != nil {
		return c.fail(span, "read preference", err)
	}
	if !ok || pref == "" {
		return nil
	}
	span.SetAttributes(attribute.String("catalog.manufacturer_id", pref))

	ticket := c.seq.Next(view.RegionRecommendations)
	rs, err := c.api.Recommendations(ctx, pref).Unwrap()
	if err != nil {
		return c.fail(span, "load recommendations", err)
	}
	c.commit(view.RegionRecommendations, ticket, func(s *view.State) { s.ApplyRecommendations(rs) })
	return nil
}

// commit applies f to the state if ticket is still the newest for region.
func (c *Controller) commit(region view.Region, ticket uint64, f func(*view.State)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seq.IsLatest(region, ticket) {
		c.log.Debug("dropping superseded result", "region", region, "ticket", ticket)
		if c.metrics != nil {
			c.metrics.Counter(
				metrics.WithLabels("catalog_stale_results_total", "region", string(region)),
				"Results dropped because a newer request for the region was started.",
			).Inc()
		}
		return false
	}
	f(&c.state)
	return true
}

func (c *Controller) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if c.metrics != nil {
		c.metrics.Counter(
			metrics.WithLabels("catalog_operation_errors_total", "op", op),
			"Catalog view operations that failed.",
		).Inc()
	}
	return fmt.Errorf("catalog: %s: %w", op, err)
}
