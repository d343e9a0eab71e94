package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/park-visits-dashboard/internal/config"
	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
	"github.com/couchcryptid/park-visits-dashboard/internal/heatmap"
	"github.com/couchcryptid/park-visits-dashboard/internal/loader"
	"github.com/couchcryptid/park-visits-dashboard/internal/observability"
)

type renderFlags struct {
	parks       string
	visits      string
	out         string
	park        string
	optionsFile string
	scheme      string
	width       float64
	all         bool
	timeout     time.Duration
	logLevel    string
}

func newRootCmd() *cobra.Command {
	f := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render park visitation heatmaps to SVG files",
		Long: `Render one heatmap SVG per park into an output directory.

Heatmap options can be read from a YAML file:

  width: 1000
  color_scheme: greens
  max_cell_size: 12
  season_breaks: [2, 5, 8, 11]
  highlight_year: 2020
  highlight_months: {start: 1, end: 5}
  highlight_label: COVID-19 Pandemic Period

Command-line flags override values from the file.

Examples:
  render --out out                      # every national park
  render --out out --park YOSE          # one park
  render --out out --options hm.yaml    # custom options`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.parks, "parks", "data/national-parks.geojson", "parks GeoJSON path or URL")
	cmd.Flags().StringVar(&f.visits, "visits", "data/visit_data.csv", "visit CSV path or URL")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output directory (required)")
	cmd.Flags().StringVar(&f.park, "park", "", "render only this unit code")
	cmd.Flags().StringVar(&f.optionsFile, "options", "", "YAML file with heatmap options")
	cmd.Flags().StringVar(&f.scheme, "scheme", "", "color scheme ("+strings.Join(heatmap.SchemeNames(), ", ")+")")
	cmd.Flags().Float64Var(&f.width, "width", 0, "chart width in pixels")
	cmd.Flags().BoolVar(&f.all, "all", false, "include every park unit, not only national parks")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "data load timeout")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "warn", "log level")
	_ = cmd.MarkFlagRequired("out")

	cmd.AddCommand(newSchemesCmd())
	return cmd
}

func newSchemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemes",
		Short: "List the available color schemes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range heatmap.SchemeNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func runRender(cmd *cobra.Command, f *renderFlags) error {
	opts, err := loadOptions(f.optionsFile)
	if err != nil {
		return err
	}
	if f.scheme != "" {
		opts.ColorScheme = f.scheme
	}
	if f.width > 0 {
		opts.Width = f.width
	}
	if err := opts.WithDefaults().Validate(); err != nil {
		return err
	}

	cfg := &config.Config{
		LogLevel:          f.logLevel,
		LogFormat:         "text",
		ParksSource:       f.parks,
		VisitsSource:      f.visits,
		LoadTimeout:       f.timeout,
		FetchAttempts:     1,
		NationalParksOnly: !f.all,
	}
	logger := observability.NewLogger(cfg)
	ds, err := loader.New(cfg, logger, observability.NewUnregisteredMetrics()).Load(context.Background())
	if err != nil {
		return err
	}

	parks := ds.Parks
	if f.park != "" {
		p, ok := domain.FindPark(ds.Parks, f.park)
		if !ok {
			return fmt.Errorf("park %q not found in %s", f.park, f.parks)
		}
		parks = []domain.ParkFeature{p}
	}

	if err := os.MkdirAll(f.out, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var rendered, empty int
	for _, p := range parks {
		svg, err := heatmap.Render(p.Name, domain.VisitsForPark(ds.Visits, p.Code), opts)
		switch {
		case errors.Is(err, heatmap.ErrNoData):
			empty++
		case err != nil:
			return fmt.Errorf("render %s: %w", p.Code, err)
		default:
			rendered++
		}
		path, err := outputPath(f.out, p.Code)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(svg), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "rendered %d heatmaps (%d without data) to %s\n", rendered, empty, f.out)
	if n := len(ds.SkippedRows); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "skipped %d malformed visit rows\n", n)
	}
	return nil
}

// outputPath names the SVG for a unit code inside dir. Codes come from the
// input GeoJSON, so anything that is not a plain file name is rejected.
func outputPath(dir, code string) (string, error) {
	if code == "" || code == "." || code == ".." || strings.ContainsAny(code, `/\`) || filepath.Base(code) != code {
		return "", fmt.Errorf("unit code %q is not a valid file name", code)
	}
	return filepath.Join(dir, code+".svg"), nil
}

func loadOptions(path string) (heatmap.Options, error) {
	var opts heatmap.Options
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from a CLI flag
	if err != nil {
		return opts, fmt.Errorf("read options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse options %s: %w", path, err)
	}
	return opts, nil
}
