package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/WessleyAI/wessley-catalog/engine/catalog"
	"github.com/WessleyAI/wessley-catalog/engine/domain"
	"github.com/WessleyAI/wessley-catalog/engine/view"
	"github.com/WessleyAI/wessley-catalog/pkg/catalogapi"
	"github.com/WessleyAI/wessley-catalog/pkg/metrics"
	"github.com/WessleyAI/wessley-catalog/pkg/mid"
	"github.com/go-chi/chi/v5"
)

type server struct {
	sessions *sessions
	render   *view.Renderer
	api      *catalogapi.Client
	images   http.Handler
	metrics  *metrics.Registry
	log      *slog.Logger
}

func newServer(api *catalogapi.Client, sess *sessions, reg *metrics.Registry, log *slog.Logger) (*server, error) {
	target, err := url.Parse(api.BaseURL())
	if err != nil {
		return nil, err
	}
	return &server{
		sessions: sess,
		render:   view.MustRenderer(),
		api:      api,
		images:   httputil.NewSingleHostReverseProxy(target),
		metrics:  reg,
		log:      log,
	}, nil
}

// routes builds the web front's handler tree.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		mid.Recover(s.log),
		mid.Logger(s.log),
		mid.Metrics(s.metrics, routePattern),
		mid.OTel("catalog-web"),
	)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Handle("/images/*", s.images)

	r.Get("/", s.handlePage)
	r.Route("/fragments", func(r chi.Router) {
		r.Get("/models", s.handleModels)
		r.Post("/details/{id}", s.handleDetails)
		r.Post("/compare", s.handleCompare)
		r.Get("/recommendations", s.handleRecommendations)
	})
	return r
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := s.api.Index(r.Context()).Unwrap(); err != nil {
		s.log.Warn("catalog api not ready", "err", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handlePage runs the page-load sequence and renders the whole page. The page
// is rendered even when loading failed so the visitor sees what did load.
func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctl := s.sessions.controller(w, r)
	status := http.StatusOK
	if err := ctl.Start(r.Context()); err != nil {
		status = s.statusFor(r, err)
	}

	var buf bytes.Buffer
	if err := s.render.Page(&buf, ctl.Snapshot(), view.DefaultTitle); err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func (s *server) handleModels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	manufacturerID, err := optionalID("manufacturerId", q.Get("manufacturerId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	categoryID, err := optionalID("categoryId", q.Get("categoryId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ctl := s.sessions.controller(w, r)
	ctl.SetFilters(q.Get("search"), manufacturerID, categoryID)
	if err := ctl.LoadModels(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.region(w, r, ctl, view.RegionModels)
}

func (s *server) handleDetails(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ctl := s.sessions.controller(w, r)
	if err := ctl.ShowDetails(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.region(w, r, ctl, view.RegionDetails, view.RegionRecommendations)
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ids, err := domain.ParseIDs("ids", r.Form["ids"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ctl := s.sessions.controller(w, r)
	ctl.SetChecked(ids)
	if err := ctl.CompareSelected(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.region(w, r, ctl, view.RegionCompare)
}

// handleRecommendations serves the region once background loads started
// with the page have settled.
func (s *server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctl := s.sessions.controller(w, r)
	ctl.Wait()
	s.region(w, r, ctl, view.RegionRecommendations)
}

// region renders the first region for a normal swap and any further regions
// out of band.
func (s *server) region(w http.ResponseWriter, r *http.Request, ctl *catalog.Controller, regions ...view.Region) {
	st := ctl.Snapshot()
	var buf bytes.Buffer
	for i, reg := range regions {
		if err := s.render.Region(&buf, reg, st, view.RegionOpts{OOB: i > 0}); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// statusFor maps an operation error to a response status and logs it.
func (s *server) statusFor(r *http.Request, err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, catalogapi.ErrRequestFailed):
		s.log.Warn("catalog api request failed", "path", r.URL.Path, "upstream_status", catalogapi.StatusCode(err), "err", err)
		return http.StatusBadGateway
	default:
		s.log.Error("request failed", "path", r.URL.Path, "err", err)
		return http.StatusInternalServerError
	}
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := s.statusFor(r, err)
	http.Error(w, http.StatusText(status), status)
}

func optionalID(field, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	return domain.ParseID(field, raw)
}
