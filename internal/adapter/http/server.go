package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/catalog"
	"github.com/couchcryptid/neo-explorer-service/internal/dashboard"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/filter"
	"github.com/couchcryptid/neo-explorer-service/internal/summary"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboard is the render surface served over HTTP.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Home(ctx context.Context) (*summary.Panel, error)
	Filter(ctx context.Context, c filter.Criteria) (*dashboard.FilterView, error)
	FilterOptions() dashboard.FilterOptions
	Queries() []catalog.Definition
	Query(ctx context.Context, key string, hazard domain.HazardFilter) (*dashboard.QueryView, error)
	Export(ctx context.Context, key string, hazard domain.HazardFilter, panel string) (*table.Table, error)
}

// Server exposes the dashboard pages, its JSON API, and the health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dash       Dashboard
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the dashboard, API, /healthz, /readyz,
// and /metrics routes.
func NewServer(addr string, dash Dashboard, logger *slog.Logger) *Server {
	s := &Server{
		dash:   dash,
		logger: logger,
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(s.dash))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/filter", s.handleFilter)
		r.Get("/filter/options", s.handleFilterOptions)
		r.Get("/queries", s.handleQueries)
		r.Get("/queries/{id}", s.handleQuery)
		r.Get("/queries/{id}/panels/{panel}.csv", s.handleExport)
	})

	r.Get("/", s.handleHomePage)
	r.Get("/filter", s.handleFilterPage)
	r.Get("/queries", s.handleQueriesPage)

	return r
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// requestLogger logs one line per request once the response is written.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"remote", r.RemoteAddr,
				"duration", time.Since(start),
			)
		})
	}
}
