// Command render writes static heatmap SVGs, one per park, from the same
// data sources the dashboard serves.
//
// Usage:
//
//	go run ./cmd/render \
//	  --parks data/national-parks.geojson \
//	  --visits data/visit_data.csv \
//	  --out out/heatmaps \
//	  --options heatmap.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
