// Package dashboard runs render passes: one screen request in, one view out,
// each against its own memoized view of the store.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/catalog"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/filter"
	"github.com/couchcryptid/neo-explorer-service/internal/observability"
	"github.com/couchcryptid/neo-explorer-service/internal/present"
	"github.com/couchcryptid/neo-explorer-service/internal/summary"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
)

// ErrUnknownPanel is returned by Export when the question has no such panel.
var ErrUnknownPanel = errors.New("unknown panel")

// Screens, used as the renders_total screen label.
const (
	ScreenHome   = "home"
	ScreenFilter = "filter"
	ScreenQuery  = "query"
	ScreenExport = "export"
)

// Store hands out per-render gateways and reports database readiness.
type Store interface {
	Memo() *store.Memo
	CheckReadiness(ctx context.Context) error
}

// FilterView is the rendered filter screen. Table is nil when nothing matched.
type FilterView struct {
	Criteria filter.Criteria    `json:"criteria"`
	Count    int                `json:"count"`
	Message  string             `json:"message,omitempty"`
	Table    *present.TableView `json:"table,omitempty"`
}

// FilterOptions describes the filter screen's controls.
type FilterOptions struct {
	Defaults filter.Criteria  `json:"defaults"`
	Bounds   filter.Bounds    `json:"bounds"`
	Hazard   []catalog.Option `json:"hazard"`
}

// QueryView is one rendered catalog question.
type QueryView struct {
	Query  catalog.Definition  `json:"query"`
	Label  string              `json:"label"`
	Hazard domain.HazardFilter `json:"hazard"`
	Panels []present.PanelView `json:"panels"`
}

// Service renders the dashboard screens.
type Service struct {
	store   Store
	facts   domain.FactProvider
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Service. facts may be nil, in which case the home screen
// always shows the placeholder fact.
func New(s Store, facts domain.FactProvider, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   s,
		facts:   facts,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness reports whether the store is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.store.CheckReadiness(ctx)
}

// Home renders the summary panel.
func (s *Service) Home(ctx context.Context) (*summary.Panel, error) {
	start := time.Now()
	panel, err := summary.Build(ctx, s.store.Memo(), s.facts, s.logger)
	s.observe(ScreenHome, start, err)
	if err != nil {
		return nil, fmt.Errorf("home: %w", err)
	}
	return panel, nil
}

// Filter runs one filter submission and renders every matching row.
func (s *Service) Filter(ctx context.Context, c filter.Criteria) (*FilterView, error) {
	start := time.Now()
	res, err := filter.Run(ctx, s.store.Memo(), c)
	if err == nil && res.Count == 0 {
		s.metrics.EmptyResults.WithLabelValues(ScreenFilter).Inc()
	}
	view, err := bindFilter(res, err)
	s.observe(ScreenFilter, start, err)
	return view, err
}

func bindFilter(res *filter.Result, err error) (*FilterView, error) {
	if err != nil {
		return nil, err
	}
	view := &FilterView{Criteria: res.Criteria, Count: res.Count, Message: res.Message}
	if res.Count > 0 {
		if view.Table, err = present.BindTable(res.Table, 0, nil); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// FilterOptions returns the defaults and allowed ranges of the filter controls.
func (s *Service) FilterOptions() FilterOptions {
	return FilterOptions{
		Defaults: filter.Defaults(),
		Bounds:   filter.DefaultBounds(),
		Hazard: []catalog.Option{
			{Value: domain.HazardAll.Key(), Label: "All"},
			{Value: domain.HazardOnly.Key(), Label: "Yes"},
			{Value: domain.HazardExcluded.Key(), Label: "No"},
		},
	}
}

// Queries lists the catalog in selector order.
func (s *Service) Queries() []catalog.Definition {
	return catalog.Registry()
}

// Query runs one catalog question, looked up by ID, slug or label, and binds
// its panels.
func (s *Service) Query(ctx context.Context, key string, hazard domain.HazardFilter) (*QueryView, error) {
	start := time.Now()
	view, err := s.query(ctx, key, hazard)
	s.observe(ScreenQuery, start, err)
	return view, err
}

func (s *Service) query(ctx context.Context, key string, hazard domain.HazardFilter) (*QueryView, error) {
	res, err := s.run(ctx, key, hazard)
	if err != nil {
		return nil, err
	}
	for _, p := range res.Panels {
		if p.Table.Empty() {
			s.metrics.EmptyResults.WithLabelValues(res.Query.Slug + "/" + p.Key).Inc()
		}
	}
	panels, err := present.BindAll(res.Panels)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", res.Query.ID, err)
	}
	return &QueryView{
		Query:  res.Query,
		Label:  res.Query.Label(),
		Hazard: res.Hazard,
		Panels: panels,
	}, nil
}

// Export returns the full, uncapped table behind one panel of a question.
func (s *Service) Export(ctx context.Context, key string, hazard domain.HazardFilter, panel string) (*table.Table, error) {
	start := time.Now()
	t, err := s.export(ctx, key, hazard, panel)
	s.observe(ScreenExport, start, err)
	return t, err
}

func (s *Service) export(ctx context.Context, key string, hazard domain.HazardFilter, panel string) (*table.Table, error) {
	res, err := s.run(ctx, key, hazard)
	if err != nil {
		return nil, err
	}
	p, ok := res.Panel(panel)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no panel %q", ErrUnknownPanel, res.Query.Slug, panel)
	}
	return p.Table, nil
}

func (s *Service) run(ctx context.Context, key string, hazard domain.HazardFilter) (*catalog.Result, error) {
	def, err := catalog.Lookup(key)
	if err != nil {
		return nil, err
	}
	return catalog.Run(ctx, s.store.Memo(), def, catalog.Params{Hazard: hazard})
}

func (s *Service) observe(screen string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		s.logger.Error("render failed", "screen", screen, "error", err)
	} else {
		s.logger.Debug("render complete", "screen", screen, "duration", time.Since(start))
	}
	s.metrics.Renders.WithLabelValues(screen, outcome).Inc()
}
