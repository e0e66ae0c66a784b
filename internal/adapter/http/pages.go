package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/couchcryptid/neo-explorer-service/internal/catalog"
	"github.com/couchcryptid/neo-explorer-service/internal/dashboard"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/filter"
	"github.com/couchcryptid/neo-explorer-service/internal/summary"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFuncs = template.FuncMap{
	"percent": percent,
	"color":   pointColor,
}

var pages = map[string]*template.Template{
	"home":    parsePage("home.html"),
	"filter":  parsePage("filter.html"),
	"queries": parsePage("queries.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(pageFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// page is the data handed to every template.
type page struct {
	Title  string
	Active string
	Error  string
	Data   any
}

type homePage struct {
	Panel *summary.Panel
}

type filterPage struct {
	Options  dashboard.FilterOptions
	Criteria filter.Criteria
	View     *dashboard.FilterView
}

type queriesPage struct {
	Queries  []catalog.Definition
	Selected catalog.Definition
	Hazard   domain.HazardFilter
	View     *dashboard.QueryView
}

func (s *Server) handleHomePage(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Home", Active: "home", Data: homePage{}}
	panel, err := s.dash.Home(r.Context())
	if err != nil {
		s.renderError(w, p, err)
		return
	}
	p.Data = homePage{Panel: panel}
	s.render(w, http.StatusOK, "home", p)
}

func (s *Server) handleFilterPage(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Filter", Active: "filter"}
	data := filterPage{Options: s.dash.FilterOptions(), Criteria: filter.Defaults()}
	p.Data = &data

	c, err := filter.ParseCriteria(r.URL.Query())
	if err != nil {
		s.renderError(w, p, err)
		return
	}
	data.Criteria = c
	if data.View, err = s.dash.Filter(r.Context(), c); err != nil {
		s.renderError(w, p, err)
		return
	}
	s.render(w, http.StatusOK, "filter", p)
}

func (s *Server) handleQueriesPage(w http.ResponseWriter, r *http.Request) {
	p := page{Title: "Queries", Active: "queries"}
	defs := s.dash.Queries()
	data := queriesPage{Queries: defs, Selected: defs[0]}
	p.Data = &data

	if key := r.URL.Query().Get("q"); key != "" {
		def, err := catalog.Lookup(key)
		if err != nil {
			s.renderError(w, p, err)
			return
		}
		data.Selected = def
	}
	hazard, err := domain.ParseHazardFilter(r.URL.Query().Get("hazard"))
	if err != nil {
		s.renderError(w, p, err)
		return
	}
	data.Hazard = hazard

	if data.View, err = s.dash.Query(r.Context(), data.Selected.ID, hazard); err != nil {
		s.renderError(w, p, err)
		return
	}
	s.render(w, http.StatusOK, "queries", p)
}

func (s *Server) renderError(w http.ResponseWriter, p page, err error) {
	status := statusFor(err)
	p.Error = err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("page render failed", "page", p.Active, "error", err)
		p.Error = "Something went wrong while loading data. Please try again."
	}
	s.render(w, status, p.Active, p)
}

// render executes the page into a buffer first so a template failure never
// leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, status int, name string, p page) {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		s.logger.Error("template execution failed", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// percent is v as a share of the largest value, for CSS bar widths.
func percent(v float64, values []float64) string {
	var top float64
	for _, x := range values {
		top = max(top, x)
	}
	if top <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", 100*v/top)
}

func pointColor(colors []string, fallback string, i int) string {
	if i < len(colors) && colors[i] != "" {
		return colors[i]
	}
	if fallback != "" {
		return fallback
	}
	return "#1f77b4"
}
