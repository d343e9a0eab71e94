package http

import (
	"bytes"
	_ "embed"
	"errors"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"github.com/couchcryptid/park-visits-dashboard/internal/dashboard"
	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
)

//go:embed templates/dashboard.html
var pageHTML string

var pageTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"num": formatCoord,
}).Parse(pageHTML))

const (
	mapWidth   = 320.0
	mapHeight  = 200.0
	mapPadding = 0.1
	minSpan    = 4.0
)

type pageData struct {
	Status       dashboard.Status
	Maps         []regionMap
	Unclassified []domain.ParkFeature
	Panel        *dashboard.Panel
	Message      string
}

type regionMap struct {
	ID      domain.Region
	Name    string
	Width   float64
	Height  float64
	Markers []marker
}

type marker struct {
	X, Y     float64
	Code     string
	Name     string
	Expanded bool
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	data := pageData{}

	q := r.URL.Query()
	if q.Has("collapse") {
		s.dash.Collapse()
	}
	if code := q.Get("park"); code != "" {
		if _, err := s.dash.Expand(code); err != nil {
			status = errorStatus(err)
			data.Message = err.Error()
		}
	}

	views, err := s.dash.Regions()
	switch {
	case errors.Is(err, dashboard.ErrNotReady):
		status = http.StatusServiceUnavailable
	case err != nil:
		s.writeError(w, err)
		return
	}

	data.Status = s.dash.Status()
	if data.Status.State == dashboard.StateFailed {
		data.Message = "Failed to load park data: " + data.Status.Error
	}
	if p, ok := s.dash.Expanded(); ok {
		data.Panel = p
	}
	for _, v := range views {
		data.Maps = append(data.Maps, plotRegion(v, data.Status.Expanded))
	}
	if err == nil {
		data.Unclassified, _ = s.dash.Unclassified()
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render dashboard page", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck,gosec // best-effort response
}

// plotRegion projects a region's parks into a small locator map. Longitude
// is scaled by the cosine of the center latitude so shapes keep their aspect.
func plotRegion(v dashboard.RegionView, expanded string) regionMap {
	m := regionMap{ID: v.Region.ID, Name: v.Region.Name, Width: mapWidth, Height: mapHeight}

	b := frame(v.Region)
	cos := math.Cos((b.North + b.South) / 2 * math.Pi / 180)
	lngSpan := (b.East - b.West) * cos
	latSpan := b.North - b.South
	k := math.Min(mapWidth/lngSpan, mapHeight/latSpan)
	offX := (mapWidth - lngSpan*k) / 2
	offY := (mapHeight - latSpan*k) / 2

	for _, p := range v.Parks {
		m.Markers = append(m.Markers, marker{
			X:        offX + (p.Lng-b.West)*cos*k,
			Y:        offY + (b.North-p.Lat)*k,
			Code:     p.Code,
			Name:     p.Name,
			Expanded: p.Code == expanded,
		})
	}
	return m
}

// frame pads the park bounds, or falls back to a box around the region's
// default center when it has no parks.
func frame(r domain.MapRegion) domain.Bounds {
	if r.Bounds == nil {
		lat, lng := r.Center[0], r.Center[1]
		return domain.Bounds{South: lat - minSpan, West: lng - minSpan, North: lat + minSpan, East: lng + minSpan}
	}
	b := *r.Bounds
	latPad := math.Max((b.North-b.South)*mapPadding, minSpan/2-(b.North-b.South)/2)
	lngPad := math.Max((b.East-b.West)*mapPadding, minSpan/2-(b.East-b.West)/2)
	return domain.Bounds{
		South: b.South - latPad,
		West:  b.West - lngPad,
		North: b.North + latPad,
		East:  b.East + lngPad,
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
