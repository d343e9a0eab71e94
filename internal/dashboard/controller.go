// Package dashboard owns the loaded dataset, the per-region park views and
// the single expanded park panel that the HTTP layer renders.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
	"github.com/couchcryptid/park-visits-dashboard/internal/heatmap"
	"github.com/couchcryptid/park-visits-dashboard/internal/loader"
	"github.com/couchcryptid/park-visits-dashboard/internal/observability"
)

var (
	// ErrNotReady is returned while no dataset is loaded.
	ErrNotReady = errors.New("dashboard not ready")
	// ErrUnknownPark is returned for a unit code that is not in the dataset.
	ErrUnknownPark = errors.New("unknown park")
)

// Refresh triggers, used as metric labels.
const (
	TriggerStartup = "startup"
	TriggerManual  = "manual"
	TriggerWatch   = "watch"
)

// State is the load state of the dashboard.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// DataLoader produces a complete dataset or fails.
type DataLoader interface {
	Load(ctx context.Context) (*loader.Dataset, error)
}

// RegionView is one map: its framing and the parks plotted on it.
type RegionView struct {
	Region domain.MapRegion     `json:"region"`
	Parks  []domain.ParkFeature `json:"parks"`
}

// Panel is an expanded park with its rendered heatmap.
type Panel struct {
	Park    domain.ParkFeature `json:"park"`
	Records int                `json:"records"`
	HasData bool               `json:"has_data"`
	SVG     template.HTML      `json:"-"`
}

// Status summarizes the controller for /api/status.
type Status struct {
	State           State      `json:"state"`
	Error           string     `json:"error,omitempty"`
	LoadedAt        *time.Time `json:"loaded_at,omitempty"`
	Parks           int        `json:"parks"`
	Visits          int        `json:"visits"`
	SkippedRows     int        `json:"skipped_rows"`
	SkippedFeatures int        `json:"skipped_features"`
	Unclassified    int        `json:"unclassified"`
	Expanded        string     `json:"expanded,omitempty"`
}

// Controller holds the dashboard state. It is safe for concurrent use.
type Controller struct {
	loader  DataLoader
	opts    heatmap.Options
	logger  *slog.Logger
	metrics *observability.Metrics

	// refreshMu serializes loads so a slow load cannot overwrite a newer one.
	refreshMu sync.Mutex

	mu       sync.RWMutex
	state    State
	loadErr  error
	dataset  *loader.Dataset
	regions  map[domain.Region]*RegionView
	expanded *Panel
}

// New creates a Controller in the loading state. Call Refresh to load data.
func New(l DataLoader, opts heatmap.Options, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		loader:  l,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		state:   StateLoading,
	}
}

// Refresh loads a fresh dataset and rebuilds every region view. Reads keep
// seeing the previous dataset while the load runs. A failed load drops the
// dataset and leaves the controller failed until the next Refresh.
func (c *Controller) Refresh(ctx context.Context, trigger string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.metrics.DataReloads.WithLabelValues(trigger).Inc()
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	ds, err := c.loader.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = StateFailed
		c.loadErr = err
		c.dataset = nil
		c.regions = nil
		c.expanded = nil
		c.metrics.DashboardReady.Set(0)
		c.logger.Error("dashboard refresh failed", "trigger", trigger, "error", err)
		return fmt.Errorf("refresh dashboard: %w", err)
	}

	regions := make(map[domain.Region]*RegionView, len(domain.AllRegions))
	for _, r := range domain.AllRegions {
		parks := domain.FilterParksByRegion(ds.Parks, r)
		regions[r] = &RegionView{
			Region: domain.MapRegionFor(r, parks),
			Parks:  parks,
		}
	}

	c.state = StateReady
	c.loadErr = nil
	c.dataset = ds
	c.regions = regions
	c.metrics.DashboardReady.Set(1)

	if c.expanded != nil {
		code := c.expanded.Park.Code
		c.expanded = nil
		if p, err := c.renderLocked(code); err == nil {
			c.expanded = p
		} else {
			c.logger.Info("expanded park dropped after refresh", "park", code, "error", err)
		}
	}

	if n := len(domain.Unclassified(ds.Parks)); n > 0 {
		c.logger.Warn("parks outside every region", "count", n)
	}
	c.logger.Info("dashboard refreshed", "trigger", trigger, "parks", len(ds.Parks))
	return nil
}

// CheckReadiness reports whether a dataset is loaded.
func (c *Controller) CheckReadiness(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dataset == nil {
		return c.notReadyLocked()
	}
	return nil
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{State: c.state}
	if c.loadErr != nil {
		s.Error = c.loadErr.Error()
	}
	if ds := c.dataset; ds != nil {
		loadedAt := ds.LoadedAt
		s.LoadedAt = &loadedAt
		s.Parks = len(ds.Parks)
		s.Visits = len(ds.Visits)
		s.SkippedRows = len(ds.SkippedRows)
		s.SkippedFeatures = ds.SkippedFeatures
		s.Unclassified = len(domain.Unclassified(ds.Parks))
	}
	if c.expanded != nil {
		s.Expanded = c.expanded.Park.Code
	}
	return s
}

// Regions returns every region view in display order.
func (c *Controller) Regions() ([]RegionView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dataset == nil {
		return nil, c.notReadyLocked()
	}

	out := make([]RegionView, 0, len(domain.AllRegions))
	for _, r := range domain.AllRegions {
		out = append(out, *c.regions[r])
	}
	return out, nil
}

// RegionParks returns the parks plotted on one region's map.
func (c *Controller) RegionParks(region domain.Region) ([]domain.ParkFeature, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dataset == nil {
		return nil, c.notReadyLocked()
	}
	view, ok := c.regions[region]
	if !ok {
		return nil, fmt.Errorf("unknown region %q", region)
	}
	return view.Parks, nil
}

// Unclassified returns the loaded parks that fall outside every region.
func (c *Controller) Unclassified() ([]domain.ParkFeature, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dataset == nil {
		return nil, c.notReadyLocked()
	}
	return domain.Unclassified(c.dataset.Parks), nil
}

// Park looks up a park by unit code.
func (c *Controller) Park(code string) (domain.ParkFeature, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parkLocked(code)
}

// Visits returns the visit records for a park. Parks with no rows yield an
// empty slice.
func (c *Controller) Visits(code string) ([]domain.VisitRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, err := c.parkLocked(code); err != nil {
		return nil, err
	}
	return domain.VisitsForPark(c.dataset.Visits, code), nil
}

// Heatmap computes the heatmap layout for a park. Parks with no rows
// return heatmap.ErrNoData.
func (c *Controller) Heatmap(code string) (*heatmap.Layout, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	park, err := c.parkLocked(code)
	if err != nil {
		return nil, err
	}
	return heatmap.Build(park.Name, domain.VisitsForPark(c.dataset.Visits, code), c.opts)
}

// RenderHeatmap renders a park's panel without changing the expanded park.
func (c *Controller) RenderHeatmap(code string) (*Panel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renderLocked(code)
}

// Expand renders a park's heatmap and makes it the expanded panel,
// collapsing whichever park was expanded before.
func (c *Controller) Expand(code string) (*Panel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.renderLocked(code)
	if err != nil {
		return nil, err
	}
	if c.expanded != nil && c.expanded.Park.Code != code {
		c.logger.Debug("park collapsed", "park", c.expanded.Park.Code)
	}
	c.expanded = p
	c.metrics.ParkExpansions.Inc()
	c.logger.Debug("park expanded", "park", code, "has_data", p.HasData)
	return p, nil
}

// Collapse clears the expanded panel.
func (c *Controller) Collapse() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded = nil
}

// Expanded returns the expanded panel, if any.
func (c *Controller) Expanded() (*Panel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expanded, c.expanded != nil
}

func (c *Controller) renderLocked(code string) (*Panel, error) {
	park, err := c.parkLocked(code)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records := domain.VisitsForPark(c.dataset.Visits, code)
	svg, err := heatmap.Render(park.Name, records, c.opts)
	c.metrics.HeatmapRenderDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, heatmap.ErrNoData):
		c.metrics.HeatmapRenders.WithLabelValues("placeholder").Inc()
		return &Panel{Park: park, SVG: svg}, nil
	case err != nil:
		c.metrics.HeatmapRenders.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("render heatmap for %s: %w", code, err)
	}
	c.metrics.HeatmapRenders.WithLabelValues("rendered").Inc()
	return &Panel{Park: park, Records: len(records), HasData: true, SVG: svg}, nil
}

func (c *Controller) parkLocked(code string) (domain.ParkFeature, error) {
	if c.dataset == nil {
		return domain.ParkFeature{}, c.notReadyLocked()
	}
	p, ok := domain.FindPark(c.dataset.Parks, code)
	if !ok {
		return domain.ParkFeature{}, fmt.Errorf("%w: %q", ErrUnknownPark, code)
	}
	return p, nil
}

func (c *Controller) notReadyLocked() error {
	if c.loadErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotReady, c.state, c.loadErr)
	}
	return fmt.Errorf("%w: %s", ErrNotReady, c.state)
}
