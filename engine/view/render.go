package view

import (
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DefaultTitle is the page heading.
const DefaultTitle = "Vehicle Catalog"

// Renderer turns State into HTML. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

type regionData struct {
	S     *State
	Title string
	OOB   bool // mark the region for an out-of-band swap
	Lazy  bool // let the region refresh itself once loaded
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	strict := bluemonday.StrictPolicy()
	funcs := template.FuncMap{
		// plain strips any markup from API-supplied text; html/template
		// escapes the remainder.
		"plain": func(s string) string { return html.UnescapeString(strict.Sanitize(s)) },
	}
	tmpl, err := template.New("catalog").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("view: parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustRenderer is NewRenderer for package initialisation; it panics on error.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// RegionOpts adjusts how a single region is rendered.
type RegionOpts struct {
	OOB  bool
	Lazy bool
}

// Region writes the markup of one region, including its outer element.
func (r *Renderer) Region(w io.Writer, region Region, s State, opts RegionOpts) error {
	if r.tmpl.Lookup(string(region)) == nil {
		return fmt.Errorf("view: unknown region %q", region)
	}
	return r.tmpl.ExecuteTemplate(w, string(region), regionData{S: &s, OOB: opts.OOB, Lazy: opts.Lazy})
}

// Page writes the full catalog page. The recommendations region refreshes
// itself after load so that background loads started with the page show up.
func (r *Renderer) Page(w io.Writer, s State, title string) error {
	if title == "" {
		title = DefaultTitle
	}
	return r.tmpl.ExecuteTemplate(w, "page", regionData{S: &s, Title: title, Lazy: true})
}
