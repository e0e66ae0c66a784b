package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/neo-explorer-service/internal/catalog"
	"github.com/couchcryptid/neo-explorer-service/internal/dashboard"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/filter"
	"github.com/go-chi/chi/v5"
)

// queryListing is one entry of GET /api/v1/queries.
type queryListing struct {
	catalog.Definition
	Label string `json:"label"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	panel, err := s.dash.Home(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, panel)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	c, err := filter.ParseCriteria(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, err := s.dash.Filter(r.Context(), c)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.FilterOptions())
}

func (s *Server) handleQueries(w http.ResponseWriter, _ *http.Request) {
	defs := s.dash.Queries()
	out := make([]queryListing, len(defs))
	for i, d := range defs {
		out[i] = queryListing{Definition: d, Label: d.Label()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	hazard, err := domain.ParseHazardFilter(r.URL.Query().Get("hazard"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, err := s.dash.Query(r.Context(), chi.URLParam(r, "id"), hazard)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	hazard, err := domain.ParseHazardFilter(r.URL.Query().Get("hazard"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, panel := chi.URLParam(r, "id"), chi.URLParam(r, "panel")
	t, err := s.dash.Export(r.Context(), id, hazard, panel)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "query-"+id+"-"+panel+".csv"))
	if err := t.WriteCSV(w); err != nil {
		s.logger.Warn("csv export interrupted", "query", id, "panel", panel, "error", err)
	}
}

// statusFor maps render errors to HTTP status codes. Anything unrecognized is
// a store failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownQuery), errors.Is(err, dashboard.ErrUnknownPanel):
		return http.StatusNotFound
	case errors.Is(err, filter.ErrInvalidCriteria), errors.Is(err, domain.ErrInvalidHazardFilter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
