package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/park-visits-dashboard/internal/heatmap"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Data sources: local paths or http(s) URLs.
	ParksSource       string
	VisitsSource      string
	LoadTimeout       time.Duration
	FetchAttempts     int
	NationalParksOnly bool

	// Local file watching.
	WatchEnabled  bool
	WatchDebounce time.Duration

	// Heatmap defaults.
	HeatmapWidth        float64
	HeatmapMaxCellSize  float64
	HeatmapColorScheme  string
	HighlightYear       int
	HighlightStartMonth int
	HighlightEndMonth   int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	loadTimeout, err := parseDuration("LOAD_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	debounce, err := parseDuration("DATA_WATCH_DEBOUNCE", "500ms")
	if err != nil {
		return nil, err
	}
	attempts, err := parseInt("FETCH_ATTEMPTS", 1)
	if err != nil {
		return nil, err
	}
	if attempts < 1 || attempts > 10 {
		return nil, errors.New("invalid FETCH_ATTEMPTS: must be 1-10")
	}
	nationalOnly, err := parseBool("NATIONAL_PARKS_ONLY", true)
	if err != nil {
		return nil, err
	}
	watch, err := parseBool("DATA_WATCH", false)
	if err != nil {
		return nil, err
	}
	width, err := parsePositiveFloat("HEATMAP_WIDTH", heatmap.DefaultWidth)
	if err != nil {
		return nil, err
	}
	maxCell, err := parsePositiveFloat("HEATMAP_MAX_CELL_SIZE", heatmap.DefaultMaxCellSize)
	if err != nil {
		return nil, err
	}
	highlightYear, err := parseInt("HIGHLIGHT_YEAR", heatmap.DefaultHighlightYear)
	if err != nil {
		return nil, err
	}
	startMonth, err := parseInt("HIGHLIGHT_START_MONTH", 1)
	if err != nil {
		return nil, err
	}
	endMonth, err := parseInt("HIGHLIGHT_END_MONTH", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ParksSource:       sharedcfg.EnvOrDefault("PARKS_SOURCE", "data/national-parks.geojson"),
		VisitsSource:      sharedcfg.EnvOrDefault("VISITS_SOURCE", "data/visit_data.csv"),
		LoadTimeout:       loadTimeout,
		FetchAttempts:     attempts,
		NationalParksOnly: nationalOnly,

		WatchEnabled:  watch,
		WatchDebounce: debounce,

		HeatmapWidth:        width,
		HeatmapMaxCellSize:  maxCell,
		HeatmapColorScheme:  strings.ToLower(sharedcfg.EnvOrDefault("HEATMAP_COLOR_SCHEME", heatmap.DefaultColorScheme)),
		HighlightYear:       highlightYear,
		HighlightStartMonth: startMonth,
		HighlightEndMonth:   endMonth,
	}

	if cfg.ParksSource == "" {
		return nil, errors.New("PARKS_SOURCE is required")
	}
	if cfg.VisitsSource == "" {
		return nil, errors.New("VISITS_SOURCE is required")
	}
	if _, err := heatmap.LookupScheme(cfg.HeatmapColorScheme); err != nil {
		return nil, fmt.Errorf("invalid HEATMAP_COLOR_SCHEME: %w", err)
	}
	if err := cfg.HeatmapOptions().WithDefaults().Validate(); err != nil {
		return nil, fmt.Errorf("invalid heatmap settings (HEATMAP_WIDTH, HIGHLIGHT_START_MONTH, HIGHLIGHT_END_MONTH): %w", err)
	}

	return cfg, nil
}

// HeatmapOptions converts the heatmap settings into renderer options.
func (c *Config) HeatmapOptions() heatmap.Options {
	return heatmap.Options{
		Width:           c.HeatmapWidth,
		ColorScheme:     c.HeatmapColorScheme,
		MaxCellSize:     c.HeatmapMaxCellSize,
		HighlightYear:   c.HighlightYear,
		HighlightMonths: &heatmap.MonthRange{Start: c.HighlightStartMonth, End: c.HighlightEndMonth},
	}
}

func parseDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parseBool(name string, def bool) (bool, error) {
	b, err := strconv.ParseBool(sharedcfg.EnvOrDefault(name, strconv.FormatBool(def)))
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", name)
	}
	return b, nil
}

func parseInt(name string, def int) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(name, strconv.Itoa(def)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

func parsePositiveFloat(name string, def float64) (float64, error) {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(name, strconv.FormatFloat(def, 'f', -1, 64)), 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", name)
	}
	return f, nil
}
