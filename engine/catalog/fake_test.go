package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/WessleyAI/wessley-catalog/engine/domain"
	"github.com/WessleyAI/wessley-catalog/pkg/catalogapi"
	"github.com/WessleyAI/wessley-catalog/pkg/fn"
	"github.com/WessleyAI/wessley-catalog/pkg/metrics"
	"github.com/WessleyAI/wessley-catalog/pkg/prefs"
)

const (
	fixtureManufacturers = `[{"id":3,"name":"Tesla","country":"USA","foundingYear":2003},{"id":1,"name":"Toyota"}]`
	fixtureCategories    = `[{"id":2,"name":"Sedan"},{"id":5,"name":"SUV"}]`
	fixtureModels        = `[{"id":3,"name":"Model S","year":2023,"manufacturerId":3,"categoryId":2},` +
		`{"id":7,"name":"RAV4","year":2022,"manufacturerId":1,"categoryId":5},` +
		`{"id":9,"name":"Camry","year":2021,"manufacturerId":1,"categoryId":2}]`
	fixtureModel = `{"id":42,"name":"Model 3","year":2024,"manufacturerId":3,"categoryId":2,` +
		`"image":"model3.jpg","specifications":{"engine":"Electric","horsepower":283,` +
		`"transmission":"Single-speed","drivetrain":"RWD"}}`
	fixtureCompare         = `[{"id":3,"name":"Model S","year":2023,"specifications":{"horsepower":670}},{"id":7,"name":"RAV4","year":2022,"specifications":{"horsepower":203}}]`
	fixtureRecommendations = `[{"id":5,"name":"Model Y"},{"id":6,"name":"Cybertruck"}]`
)

func defaultRoutes() map[string]string {
	return map[string]string{
		"/api/manufacturers":   fixtureManufacturers,
		"/api/categories":      fixtureCategories,
		"/api/models":          fixtureModels,
		"/api/models/42":       fixtureModel,
		"/api/models/compare":  fixtureCompare,
		"/api/recommendations": fixtureRecommendations,
	}
}

// fakeAPI serves canned JSON per path and records request URIs. Paths in
// fail answer with a 500.
type fakeAPI struct {
	mu    sync.Mutex
	uris  []string
	route map[string]string
	fail  map[string]bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.uris = append(f.uris, r.RequestURI)
	body, ok := f.route[r.URL.Path]
	failing := f.fail[r.URL.Path]
	f.mu.Unlock()
	switch {
	case failing:
		http.Error(w, "boom", http.StatusInternalServerError)
	case !ok:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func (f *fakeAPI) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uris...)
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uris = nil
}

func (f *fakeAPI) failPath(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail == nil {
		f.fail = make(map[string]bool)
	}
	f.fail[path] = true
}

type harness struct {
	ctl   *Controller
	api   *fakeAPI
	prefs *prefs.Memory
	reg   *metrics.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := &fakeAPI{route: defaultRoutes()}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := prefs.NewMemory()
	reg := metrics.New()
	client := catalogapi.New(srv.URL, catalogapi.WithHTTPClient(srv.Client()))
	return &harness{
		ctl:   New(client, store, Options{Metrics: reg}),
		api:   api,
		prefs: store,
		reg:   reg,
	}
}

// gatedModels is an API whose Models call blocks until its search term is
// released. Other methods are not implemented.
type gatedModels struct {
	API
	started chan string
	release map[string]chan struct{}
	results map[string][]domain.Model
}

func newGatedModels(results map[string][]domain.Model) *gatedModels {
	g := &gatedModels{
		started: make(chan string, len(results)),
		release: make(map[string]chan struct{}),
		results: results,
	}
	for k := range results {
		g.release[k] = make(chan struct{})
	}
	return g
}

func (g *gatedModels) Models(ctx context.Context, q catalogapi.ModelQuery) fn.Result[[]domain.Model] {
	g.started <- q.Search
	select {
	case <-g.release[q.Search]:
		return fn.Ok(g.results[q.Search])
	case <-ctx.Done():
		return fn.Err[[]domain.Model](ctx.Err())
	}
}

// failingStore is a preference store whose writes fail.
type failingStore struct{ prefs.Store }

var errStoreDown = errors.New("store down")

func (failingStore) Set(context.Context, string, string) error { return errStoreDown }
