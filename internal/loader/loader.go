package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/park-visits-dashboard/internal/config"
	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
	"github.com/couchcryptid/park-visits-dashboard/internal/observability"
)

const (
	resourceParks  = "parks"
	resourceVisits = "visits"

	initialFetchBackoff = 250 * time.Millisecond
	maxFetchBackoff     = 2 * time.Second
)

// Dataset is one consistent snapshot of both data sources.
type Dataset struct {
	Parks           []domain.ParkFeature
	Visits          []domain.VisitRecord
	SkippedRows     []RowError
	SkippedFeatures int
	LoadedAt        time.Time
}

// Loader fetches and parses the park locations and visit statistics.
type Loader struct {
	parksSource       string
	visitsSource      string
	timeout           time.Duration
	nationalParksOnly bool

	httpClient   *http.Client
	attempts     int
	retryBackoff time.Duration

	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Loader for the configured sources.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		parksSource:       cfg.ParksSource,
		visitsSource:      cfg.VisitsSource,
		timeout:           cfg.LoadTimeout,
		nationalParksOnly: cfg.NationalParksOnly,
		httpClient: &http.Client{
			Timeout: cfg.LoadTimeout,
		},
		attempts:     max(cfg.FetchAttempts, 1),
		retryBackoff: initialFetchBackoff,
		logger:       logger,
		metrics:      metrics,
	}
}

// LocalSources returns the sources that are files on disk.
func (l *Loader) LocalSources() []string {
	var out []string
	for _, src := range []string{l.parksSource, l.visitsSource} {
		if !isRemote(src) {
			out = append(out, src)
		}
	}
	return out
}

// Load fetches both sources concurrently and parses them. Either failure
// rejects the whole load.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var (
		parks  ParksResult
		visits VisitsResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := l.fetch(gctx, resourceParks, l.parksSource)
		if err != nil {
			return fmt.Errorf("load parks from %s: %w", l.parksSource, err)
		}
		parks, err = ParseParksGeoJSON(data)
		if err != nil {
			return fmt.Errorf("parse parks from %s: %w", l.parksSource, err)
		}
		return nil
	})
	g.Go(func() error {
		data, err := l.fetch(gctx, resourceVisits, l.visitsSource)
		if err != nil {
			return fmt.Errorf("load visits from %s: %w", l.visitsSource, err)
		}
		visits, err = ParseVisitsCSV(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("parse visits from %s: %w", l.visitsSource, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		l.metrics.DataLoads.WithLabelValues("error").Inc()
		l.logger.Error("data load failed", "error", err)
		return nil, err
	}

	ds := &Dataset{
		Parks:           parks.Parks,
		Visits:          visits.Records,
		SkippedRows:     visits.Skipped,
		SkippedFeatures: parks.Skipped,
		LoadedAt:        domain.Now(),
	}
	if l.nationalParksOnly {
		ds.Parks = domain.FilterNationalParks(ds.Parks)
	}

	l.metrics.DataLoads.WithLabelValues("success").Inc()
	l.metrics.DataLoadDuration.Observe(time.Since(start).Seconds())
	l.metrics.SkippedRows.Add(float64(len(ds.SkippedRows)))
	l.metrics.SkippedFeatures.Add(float64(ds.SkippedFeatures))
	l.metrics.DatasetParks.Set(float64(len(ds.Parks)))
	l.metrics.DatasetVisits.Set(float64(len(ds.Visits)))

	if n := len(ds.SkippedRows); n > 0 {
		l.logger.Warn("skipped visit rows", "count", n, "first", ds.SkippedRows[0].Error())
	}
	if ds.SkippedFeatures > 0 {
		l.logger.Warn("skipped park features", "count", ds.SkippedFeatures)
	}
	l.logger.Info("data loaded",
		"parks", len(ds.Parks),
		"visits", len(ds.Visits),
		"duration", time.Since(start),
	)
	return ds, nil
}

func (l *Loader) fetch(ctx context.Context, resource, src string) ([]byte, error) {
	start := time.Now()
	defer func() {
		l.metrics.SourceFetchTime.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	}()

	if !isRemote(src) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(src)
		if err != nil {
			l.metrics.SourceFetches.WithLabelValues(resource, "error").Inc()
			return nil, err
		}
		l.metrics.SourceFetches.WithLabelValues(resource, "success").Inc()
		return data, nil
	}

	backoff := l.retryBackoff
	for attempt := 1; ; attempt++ {
		data, retryable, err := l.get(ctx, src)
		if err == nil {
			l.metrics.SourceFetches.WithLabelValues(resource, "success").Inc()
			return data, nil
		}
		if !retryable || attempt >= l.attempts {
			l.metrics.SourceFetches.WithLabelValues(resource, "error").Inc()
			return nil, err
		}

		l.metrics.SourceFetches.WithLabelValues(resource, "retry").Inc()
		l.logger.Warn("fetch failed, retrying",
			"resource", resource,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if !retry.SleepWithContext(ctx, backoff) {
			return nil, ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxFetchBackoff)
	}
}

// get performs one HTTP GET. Transport failures and 5xx responses are
// retryable.
func (l *Loader) get(ctx context.Context, src string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode >= 500, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	return data, false, nil
}

func isRemote(src string) bool {
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
