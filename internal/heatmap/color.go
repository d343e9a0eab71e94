package heatmap

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Interpolator maps t in [0, 1] onto a color ramp.
type Interpolator func(t float64) colorful.Color

// ColorBrewer nine-class sequential schemes, light to dark.
var (
	Blues   = ramp("#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b")
	Greens  = ramp("#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b")
	Oranges = ramp("#fff5eb", "#fee6ce", "#fdd0a2", "#fdae6b", "#fd8d3c", "#f16913", "#d94801", "#a63603", "#7f2704")
	Purples = ramp("#fcfbfd", "#efedf5", "#dadaeb", "#bcbddc", "#9e9ac8", "#807dba", "#6a51a3", "#54278f", "#3f007d")
	Reds    = ramp("#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d")
	Greys   = ramp("#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000")
)

var schemes = map[string]Interpolator{
	"blues":   Blues,
	"greens":  Greens,
	"oranges": Oranges,
	"purples": Purples,
	"reds":    Reds,
	"greys":   Greys,
}

// LookupScheme returns the named interpolator. Names are case-insensitive.
func LookupScheme(name string) (Interpolator, error) {
	interp, ok := schemes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown color scheme %q (have %s)", name, strings.Join(SchemeNames(), ", "))
	}
	return interp, nil
}

// SchemeNames lists the registered scheme names in sorted order.
func SchemeNames() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ramp builds a piecewise-linear RGB interpolator through the given stops.
func ramp(hexes ...string) Interpolator {
	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("heatmap: bad ramp color %q: %v", h, err))
		}
		stops[i] = c
	}
	last := len(stops) - 1

	return func(t float64) colorful.Color {
		switch {
		case math.IsNaN(t) || t <= 0:
			return stops[0]
		case t >= 1:
			return stops[last]
		}
		pos := t * float64(last)
		i := int(math.Floor(pos))
		return stops[i].BlendRgb(stops[i+1], pos-float64(i))
	}
}

// SequentialScale maps a continuous domain onto an interpolator.
type SequentialScale struct {
	Min, Max float64
	interp   Interpolator
}

// NewSequentialScale creates a scale over [min, max].
func NewSequentialScale(min, max float64, interp Interpolator) SequentialScale {
	return SequentialScale{Min: min, Max: max, interp: interp}
}

// Normalize maps v to [0, 1]. A degenerate domain maps everything to the
// midpoint of the ramp.
func (s SequentialScale) Normalize(v float64) float64 {
	span := s.Max - s.Min
	if span == 0 {
		return 0.5
	}
	t := (v - s.Min) / span
	return math.Max(0, math.Min(1, t))
}

// Color returns the hex color for v.
func (s SequentialScale) Color(v float64) string {
	return s.interp(s.Normalize(v)).Clamped().Hex()
}

// At returns the hex color at position t of the underlying ramp.
func (s SequentialScale) At(t float64) string {
	return s.interp(t).Clamped().Hex()
}
