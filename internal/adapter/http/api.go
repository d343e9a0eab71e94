package http

import (
	"context"
	"errors"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/park-visits-dashboard/internal/dashboard"
	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
	"github.com/couchcryptid/park-visits-dashboard/internal/heatmap"
	"github.com/couchcryptid/park-visits-dashboard/internal/loader"
)

const (
	contentTypeGeoJSON = "application/geo+json"
	contentTypeSVG     = "image/svg+xml"
)

// panelResponse is a Panel with its markup inlined as a string.
type panelResponse struct {
	*dashboard.Panel
	SVG string `json:"svg"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.dash.Status())
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	views, err := s.dash.Regions()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, views)
}

func (s *Server) handleRegionParks(w http.ResponseWriter, r *http.Request) {
	region, err := domain.ParseRegion(r.PathValue("region"))
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	parks, err := s.dash.RegionParks(region)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeParks(w, parks)
}

func (s *Server) handleUnclassified(w http.ResponseWriter, _ *http.Request) {
	parks, err := s.dash.Unclassified()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeParks(w, parks)
}

func (s *Server) handlePark(w http.ResponseWriter, r *http.Request) {
	p, err := s.dash.Park(r.PathValue("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleVisits(w http.ResponseWriter, r *http.Request) {
	records, err := s.dash.Visits(r.PathValue("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, records)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	l, err := s.dash.Heatmap(r.PathValue("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, l)
}

func (s *Server) handleHeatmapSVG(w http.ResponseWriter, r *http.Request) {
	p, err := s.dash.RenderHeatmap(r.PathValue("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeSVG)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(p.SVG)) //nolint:errcheck,gosec // best-effort response
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	p, err := s.dash.Expand(r.PathValue("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, panelResponse{Panel: p, SVG: string(p.SVG)})
}

func (s *Server) handleCollapse(w http.ResponseWriter, _ *http.Request) {
	s.dash.Collapse()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	// The load outlives a disconnecting client; the loader applies its own timeout.
	ctx := context.WithoutCancel(r.Context())
	if err := s.dash.Refresh(ctx, dashboard.TriggerManual); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadGateway, map[string]any{
			"error":  err.Error(),
			"status": s.dash.Status(),
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.dash.Status())
}

func (s *Server) writeParks(w http.ResponseWriter, parks []domain.ParkFeature) {
	data, err := loader.EncodeParks(parks)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck,gosec // best-effort response
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, dashboard.ErrUnknownPark), errors.Is(err, heatmap.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
