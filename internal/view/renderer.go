// Package view renders the server side pages of the site from embedded
// html/template files. Every page shares the layout chrome defined in
// layout.html and the UI primitives defined in partials.html.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/example/easyride/internal/format"
	"github.com/example/easyride/internal/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageHome     = "home"
	PageAuth     = "auth"
	PageRent     = "rent"
	PageMap      = "map"
	PageContact  = "contact"
	PageNotFound = "notfound"
)

var pageNames = []string{PageHome, PageAuth, PageRent, PageMap, PageContact, PageNotFound}

// Renderer executes parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
	now   func() time.Time
}

// New parses every page together with the shared layout and partials.
func New() (*Renderer, error) {
	return NewWithClock(time.Now)
}

// NewWithClock is New with an explicit time source for the footer year.
func NewWithClock(now func() time.Time) (*Renderer, error) {
	if now == nil {
		now = time.Now
	}
	funcs := template.FuncMap{
		"t":           i18n.T,
		"formatPrice": format.FormatPrice,
		"dict":        dict,
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Option("missingkey=zero").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages, now: now}, nil
}

// Render writes page name to w. Nothing is written when execution fails.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	page.name = name
	if page.Year == 0 {
		page.Year = r.now().Year()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("view: render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// dict builds a map from alternating keys and values so partials can take
// several named arguments.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
