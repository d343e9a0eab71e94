package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/park-visits-dashboard/internal/dashboard"
	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
	"github.com/couchcryptid/park-visits-dashboard/internal/heatmap"
)

// Dashboard is the view state the server renders.
type Dashboard interface {
	sharedobs.ReadinessChecker

	Refresh(ctx context.Context, trigger string) error
	Status() dashboard.Status
	Regions() ([]dashboard.RegionView, error)
	RegionParks(region domain.Region) ([]domain.ParkFeature, error)
	Unclassified() ([]domain.ParkFeature, error)
	Park(code string) (domain.ParkFeature, error)
	Visits(code string) ([]domain.VisitRecord, error)
	Heatmap(code string) (*heatmap.Layout, error)
	RenderHeatmap(code string) (*dashboard.Panel, error)
	Expand(code string) (*dashboard.Panel, error)
	Collapse()
	Expanded() (*dashboard.Panel, bool)
}

// Server exposes the dashboard page, its JSON API, and health, readiness,
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dash       Dashboard
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the dashboard, API, /healthz,
// /readyz, and /metrics routes.
func NewServer(addr string, dash Dashboard, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dash:   dash,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/regions", s.handleRegions)
	mux.HandleFunc("GET /api/regions/{region}/parks", s.handleRegionParks)
	mux.HandleFunc("GET /api/unclassified", s.handleUnclassified)
	mux.HandleFunc("GET /api/parks/{code}", s.handlePark)
	mux.HandleFunc("GET /api/parks/{code}/visits", s.handleVisits)
	mux.HandleFunc("GET /api/parks/{code}/heatmap", s.handleHeatmap)
	mux.HandleFunc("GET /api/parks/{code}/heatmap.svg", s.handleHeatmapSVG)
	mux.HandleFunc("POST /api/parks/{code}/expand", s.handleExpand)
	mux.HandleFunc("DELETE /api/expanded", s.handleCollapse)
	mux.HandleFunc("POST /api/reload", s.handleReload)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(dash))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
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
