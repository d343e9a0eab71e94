package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
	"github.com/couchcryptid/park-visits-dashboard/internal/heatmap"
	"github.com/couchcryptid/park-visits-dashboard/internal/loader"
	"github.com/couchcryptid/park-visits-dashboard/internal/observability"
)

type fakeLoader struct {
	mu  sync.Mutex
	ds  *loader.Dataset
	err error
}

func (f *fakeLoader) Load(_ context.Context) (*loader.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.ds, nil
}

func (f *fakeLoader) set(ds *loader.Dataset, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ds, f.err = ds, err
}

var (
	yosemite  = domain.ParkFeature{Lng: -119.5, Lat: 37.8, Name: "Yosemite National Park", Code: "YOSE", State: "CA"}
	denali    = domain.ParkFeature{Lng: -151.0, Lat: 63.3, Name: "Denali National Park", Code: "DENA", State: "AK"}
	haleakala = domain.ParkFeature{Lng: -156.2, Lat: 20.7, Name: "Haleakala National Park", Code: "HALE", State: "HI"}
	offshore  = domain.ParkFeature{Lng: -170, Lat: 45, Name: "Offshore National Park", Code: "OFFS"}
)

func testDataset() *loader.Dataset {
	return &loader.Dataset{
		Parks: []domain.ParkFeature{yosemite, denali, haleakala, offshore},
		Visits: []domain.VisitRecord{
			{Year: 2019, Month: 1, Visitors: 100, ParkName: "Yosemite NP", UnitCode: "YOSE"},
			{Year: 2019, Month: 2, Visitors: 200, ParkName: "Yosemite NP", UnitCode: "YOSE"},
			{Year: 2020, Month: 1, Visitors: 50, ParkName: "Yosemite NP", UnitCode: "YOSE"},
			{Year: 2020, Month: 7, Visitors: 9000, ParkName: "Haleakala NP", UnitCode: "HALE"},
		},
		SkippedRows:     []loader.RowError{{Line: 9, Column: loader.ColMonth, Value: "13"}},
		SkippedFeatures: 2,
		LoadedAt:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestController(t *testing.T) (*Controller, *fakeLoader, *observability.Metrics) {
	t.Helper()
	fl := &fakeLoader{ds: testDataset()}
	m := observability.NewMetricsForTesting()
	c := New(fl, heatmap.Options{}, slog.Default(), m)
	return c, fl, m
}

func readyController(t *testing.T) (*Controller, *fakeLoader, *observability.Metrics) {
	t.Helper()
	c, fl, m := newTestController(t)
	require.NoError(t, c.Refresh(context.Background(), TriggerStartup))
	return c, fl, m
}

func TestController_NotReadyBeforeRefresh(t *testing.T) {
	c, _, _ := newTestController(t)

	assert.Equal(t, StateLoading, c.Status().State)
	require.ErrorIs(t, c.CheckReadiness(context.Background()), ErrNotReady)

	_, err := c.Regions()
	require.ErrorIs(t, err, ErrNotReady)
	_, err = c.Expand("YOSE")
	require.ErrorIs(t, err, ErrNotReady)
}

func TestController_RefreshBuildsRegions(t *testing.T) {
	c, _, m := readyController(t)

	require.NoError(t, c.CheckReadiness(context.Background()))
	views, err := c.Regions()
	require.NoError(t, err)
	require.Len(t, views, 3)

	got := map[domain.Region][]string{}
	for _, v := range views {
		for _, p := range v.Parks {
			got[v.Region.ID] = append(got[v.Region.ID], p.Code)
		}
	}
	want := map[domain.Region][]string{
		domain.RegionMainland: {"YOSE"},
		domain.RegionAlaska:   {"DENA"},
		domain.RegionHawaii:   {"HALE"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("region parks mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, domain.RegionMainland, views[0].Region.ID)
	require.NotNil(t, views[0].Region.Bounds)
	assert.InDelta(t, 37.8, views[0].Region.Bounds.North, 1e-9)

	assert.InDelta(t, 1, testutil.ToFloat64(m.DashboardReady), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DataReloads.WithLabelValues(TriggerStartup)), 1e-9)
}

func TestController_Status(t *testing.T) {
	c, _, _ := readyController(t)

	s := c.Status()
	assert.Equal(t, StateReady, s.State)
	assert.Empty(t, s.Error)
	require.NotNil(t, s.LoadedAt)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *s.LoadedAt)
	assert.Equal(t, 4, s.Parks)
	assert.Equal(t, 4, s.Visits)
	assert.Equal(t, 1, s.SkippedRows)
	assert.Equal(t, 2, s.SkippedFeatures)
	assert.Equal(t, 1, s.Unclassified)
}

func TestController_RegionParks(t *testing.T) {
	c, _, _ := readyController(t)

	parks, err := c.RegionParks(domain.RegionAlaska)
	require.NoError(t, err)
	assert.Equal(t, []domain.ParkFeature{denali}, parks)

	_, err = c.RegionParks("pacific")
	require.Error(t, err)

	unclassified, err := c.Unclassified()
	require.NoError(t, err)
	assert.Equal(t, []domain.ParkFeature{offshore}, unclassified)
}

func TestController_ParkAndVisits(t *testing.T) {
	c, _, _ := readyController(t)

	p, err := c.Park("YOSE")
	require.NoError(t, err)
	assert.Equal(t, yosemite, p)

	visits, err := c.Visits("YOSE")
	require.NoError(t, err)
	assert.Len(t, visits, 3)

	visits, err = c.Visits("DENA")
	require.NoError(t, err)
	assert.Empty(t, visits)

	_, err = c.Visits("NOPE")
	require.ErrorIs(t, err, ErrUnknownPark)
}

func TestController_Heatmap(t *testing.T) {
	c, _, _ := readyController(t)

	l, err := c.Heatmap("YOSE")
	require.NoError(t, err)
	assert.Equal(t, "Yosemite National Park", l.ParkName)
	assert.Equal(t, []int{2019, 2020}, l.Years)
	assert.Len(t, l.Cells, 3)

	_, err = c.Heatmap("DENA")
	require.ErrorIs(t, err, heatmap.ErrNoData)
}

func TestController_ExpandIsSingleSelection(t *testing.T) {
	c, _, m := readyController(t)

	p, err := c.Expand("YOSE")
	require.NoError(t, err)
	assert.True(t, p.HasData)
	assert.Equal(t, 3, p.Records)
	assert.Contains(t, string(p.SVG), "<svg")

	p, err = c.Expand("HALE")
	require.NoError(t, err)
	assert.Equal(t, "HALE", p.Park.Code)

	got, ok := c.Expanded()
	require.True(t, ok)
	assert.Equal(t, "HALE", got.Park.Code, "previous park collapsed")
	assert.Equal(t, "HALE", c.Status().Expanded)

	c.Collapse()
	_, ok = c.Expanded()
	assert.False(t, ok)

	assert.InDelta(t, 2, testutil.ToFloat64(m.ParkExpansions), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(m.HeatmapRenders.WithLabelValues("rendered")), 1e-9)
}

func TestController_ExpandWithoutVisitsShowsPlaceholder(t *testing.T) {
	c, _, m := readyController(t)

	p, err := c.Expand("DENA")
	require.NoError(t, err)
	assert.False(t, p.HasData)
	assert.Contains(t, string(p.SVG), heatmap.PlaceholderText)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HeatmapRenders.WithLabelValues("placeholder")), 1e-9)
}

func TestController_ExpandUnknownParkKeepsSelection(t *testing.T) {
	c, _, _ := readyController(t)

	_, err := c.Expand("YOSE")
	require.NoError(t, err)

	_, err = c.Expand("NOPE")
	require.ErrorIs(t, err, ErrUnknownPark)

	got, ok := c.Expanded()
	require.True(t, ok)
	assert.Equal(t, "YOSE", got.Park.Code)
}

func TestController_RenderHeatmapDoesNotExpand(t *testing.T) {
	c, _, _ := readyController(t)

	p, err := c.RenderHeatmap("YOSE")
	require.NoError(t, err)
	assert.True(t, p.HasData)

	_, ok := c.Expanded()
	assert.False(t, ok)
}

func TestController_FailedRefreshDropsDataset(t *testing.T) {
	c, fl, m := readyController(t)
	_, err := c.Expand("YOSE")
	require.NoError(t, err)

	loadErr := errors.New("fetch visits: connection refused")
	fl.set(nil, loadErr)

	err = c.Refresh(context.Background(), TriggerManual)
	require.ErrorIs(t, err, loadErr)

	s := c.Status()
	assert.Equal(t, StateFailed, s.State)
	assert.Contains(t, s.Error, "connection refused")
	assert.Nil(t, s.LoadedAt)
	assert.Empty(t, s.Expanded)

	err = c.CheckReadiness(context.Background())
	require.ErrorIs(t, err, ErrNotReady)
	require.ErrorIs(t, err, loadErr)

	_, err = c.Regions()
	require.ErrorIs(t, err, ErrNotReady)
	assert.InDelta(t, 0, testutil.ToFloat64(m.DashboardReady), 1e-9)

	fl.set(testDataset(), nil)
	require.NoError(t, c.Refresh(context.Background(), TriggerManual))
	assert.Equal(t, StateReady, c.Status().State)
	assert.InDelta(t, 2, testutil.ToFloat64(m.DataReloads.WithLabelValues(TriggerManual)), 1e-9)
}

func TestController_RefreshKeepsExpandedPark(t *testing.T) {
	c, fl, _ := readyController(t)
	_, err := c.Expand("YOSE")
	require.NoError(t, err)

	require.NoError(t, c.Refresh(context.Background(), TriggerWatch))
	got, ok := c.Expanded()
	require.True(t, ok)
	assert.Equal(t, "YOSE", got.Park.Code)

	ds := testDataset()
	ds.Parks = []domain.ParkFeature{denali}
	fl.set(ds, nil)
	require.NoError(t, c.Refresh(context.Background(), TriggerWatch))
	_, ok = c.Expanded()
	assert.False(t, ok, "park no longer in dataset")
}

func TestController_ConcurrentAccess(t *testing.T) {
	c, _, _ := readyController(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = c.Refresh(context.Background(), TriggerManual)
				return
			}
			_, _ = c.Expand("YOSE")
			_ = c.Status()
			_, _ = c.Regions()
		}()
	}
	wg.Wait()

	assert.Equal(t, StateReady, c.Status().State)
}
