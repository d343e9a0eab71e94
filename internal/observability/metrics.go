package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "park_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Data loading metrics.
	DataLoads        *prometheus.CounterVec // labels: outcome={success,error}
	DataLoadDuration prometheus.Histogram
	SourceFetches    *prometheus.CounterVec   // labels: resource={parks,visits}, outcome={success,error,retry}
	SourceFetchTime  *prometheus.HistogramVec // labels: resource={parks,visits}
	SkippedRows      prometheus.Counter
	SkippedFeatures  prometheus.Counter
	DatasetParks     prometheus.Gauge
	DatasetVisits    prometheus.Gauge
	DataReloads      *prometheus.CounterVec // labels: trigger={startup,manual,watch}
	DashboardReady   prometheus.Gauge

	// Heatmap metrics.
	HeatmapRenders        *prometheus.CounterVec // labels: outcome={rendered,placeholder,error}
	HeatmapRenderDuration prometheus.Histogram
	ParkExpansions        prometheus.Counter
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewUnregisteredMetrics()
	prometheus.MustRegister(
		m.DataLoads,
		m.DataLoadDuration,
		m.SourceFetches,
		m.SourceFetchTime,
		m.SkippedRows,
		m.SkippedFeatures,
		m.DatasetParks,
		m.DatasetVisits,
		m.DataReloads,
		m.DashboardReady,
		m.HeatmapRenders,
		m.HeatmapRenderDuration,
		m.ParkExpansions,
	)
	return m
}

// NewUnregisteredMetrics creates the dashboard metrics without registering
// them. One-shot commands use it since nothing scrapes them.
func NewUnregisteredMetrics() *Metrics {
	return &Metrics{
		DataLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_loads_total",
			Help:      "Dataset loads by outcome.",
		}, []string{"outcome"}),
		DataLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "data_load_duration_seconds",
			Help:      "Duration of a complete fetch-and-parse of both data sources.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Data source fetch attempts by resource and outcome.",
		}, []string{"resource", "outcome"}),
		SourceFetchTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Time to read one data source.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"resource"}),
		SkippedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_rows_total",
			Help:      "Visit CSV rows skipped because a field failed to parse.",
		}),
		SkippedFeatures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_features_total",
			Help:      "GeoJSON features skipped because they are not usable park points.",
		}),
		DatasetParks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_parks",
			Help:      "Parks in the currently loaded dataset.",
		}),
		DatasetVisits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_visit_records",
			Help:      "Visit records in the currently loaded dataset.",
		}),
		DataReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_reloads_total",
			Help:      "Dataset refreshes by trigger.",
		}, []string{"trigger"}),
		DashboardReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ready",
			Help:      "1 when a dataset is loaded and views are built, 0 otherwise.",
		}),
		HeatmapRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heatmap_renders_total",
			Help:      "Heatmap renders by outcome.",
		}, []string{"outcome"}),
		HeatmapRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "heatmap_render_duration_seconds",
			Help:      "Time to lay out and render one heatmap.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		ParkExpansions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "park_expansions_total",
			Help:      "Parks expanded in the dashboard.",
		}),
	}
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewUnregisteredMetrics()
}
