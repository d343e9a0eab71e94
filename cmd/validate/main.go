// Command validate performs data integrity checks on the dashboard's two data
// sources: the parks GeoJSON and the monthly visit CSV. It verifies that both
// parse cleanly, that parks and visit rows reference each other, that every
// park lands on one of the region maps, and that every park's heatmap lays
// out one cell per record.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -parks data/national-parks.geojson \
//	  -visits data/visit_data.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/park-visits-dashboard/internal/config"
	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
	"github.com/couchcryptid/park-visits-dashboard/internal/heatmap"
	"github.com/couchcryptid/park-visits-dashboard/internal/loader"
	"github.com/couchcryptid/park-visits-dashboard/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	parks := flag.String("parks", "", "parks GeoJSON path or URL")
	visits := flag.String("visits", "", "visit CSV path or URL")
	all := flag.Bool("all", false, "check every park unit, not only national parks")
	timeout := flag.Duration("timeout", 30*time.Second, "load timeout")
	flag.Parse()

	if *parks == "" || *visits == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := newConfig(*parks, *visits, *all, *timeout)
	if code := run(cfg, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

// newConfig keeps loader logging to errors so the report stays readable.
func newConfig(parks, visits string, all bool, timeout time.Duration) *config.Config {
	return &config.Config{
		LogLevel:          "error",
		LogFormat:         "text",
		ParksSource:       parks,
		VisitsSource:      visits,
		LoadTimeout:       timeout,
		FetchAttempts:     1,
		NationalParksOnly: !all,
	}
}

func run(cfg *config.Config, out io.Writer) int {
	logger := observability.NewLogger(cfg)
	ld := loader.New(cfg, logger, observability.NewUnregisteredMetrics())

	fmt.Fprintln(out, "=== Park Visit Data Validation ===")
	fmt.Fprintln(out)

	ds, err := ld.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load data: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateVisitRows(ds),
		validateParkFeatures(ds),
		validateParksHaveVisits(ds),
		validateVisitsHaveParks(ds),
		validateRegionCoverage(ds),
		validateHeatmapLayouts(ds),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d parks, %d visit rows, %d skipped rows, %d skipped features\n",
		len(ds.Parks), len(ds.Visits), len(ds.SkippedRows), ds.SkippedFeatures)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func validateVisitRows(ds *loader.Dataset) *phase {
	p := &phase{name: "Visit rows parse cleanly"}
	for _, e := range ds.SkippedRows {
		p.errorf("%s", e.Error())
	}
	return p
}

func validateParkFeatures(ds *loader.Dataset) *phase {
	p := &phase{name: "Park features are usable points"}
	if ds.SkippedFeatures > 0 {
		p.errorf("%d features skipped (not points, or missing Name/Code)", ds.SkippedFeatures)
	}
	seen := make(map[string]bool, len(ds.Parks))
	for _, park := range ds.Parks {
		if seen[park.Code] {
			p.errorf("duplicate park code %s", park.Code)
		}
		seen[park.Code] = true
	}
	return p
}

func validateParksHaveVisits(ds *loader.Dataset) *phase {
	p := &phase{name: "Every park has visit rows"}
	codes := make(map[string]bool)
	for _, c := range domain.UnitCodes(ds.Visits) {
		codes[c] = true
	}
	for _, park := range ds.Parks {
		if !codes[park.Code] {
			p.errorf("%s (%s): no visit rows", park.Code, park.Name)
		}
	}
	return p
}

func validateVisitsHaveParks(ds *loader.Dataset) *phase {
	p := &phase{name: "Every visit unit code has a park"}
	for _, code := range domain.UnitCodes(ds.Visits) {
		if _, ok := domain.FindPark(ds.Parks, code); !ok {
			p.errorf("%s: %d visit rows, no park feature", code, len(domain.VisitsForPark(ds.Visits, code)))
		}
	}
	return p
}

func validateRegionCoverage(ds *loader.Dataset) *phase {
	p := &phase{name: "Every park falls inside a map region"}
	for _, park := range domain.Unclassified(ds.Parks) {
		p.errorf("%s (%s) at lng=%.4f lat=%.4f is outside every region", park.Code, park.Name, park.Lng, park.Lat)
	}
	return p
}

func validateHeatmapLayouts(ds *loader.Dataset) *phase {
	p := &phase{name: "Heatmaps have one cell per record"}
	for _, park := range ds.Parks {
		records := domain.VisitsForPark(ds.Visits, park.Code)
		if len(records) == 0 {
			continue
		}
		l, err := heatmap.Build(park.Name, records, heatmap.Options{})
		if err != nil {
			p.errorf("%s: %v", park.Code, err)
			continue
		}
		if len(l.Cells) != len(records) {
			p.errorf("%s: %d cells for %d records", park.Code, len(l.Cells), len(records))
		}
	}
	return p
}
