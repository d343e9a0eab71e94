package heatmap

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned when Options fail validation.
var ErrInvalidOptions = errors.New("invalid heatmap options")

const (
	DefaultWidth          = 800
	DefaultMaxCellSize    = 15
	DefaultColorScheme    = "blues"
	DefaultHighlightYear  = 2020
	DefaultHighlightLabel = "COVID-19 Pandemic Period"

	// seasonGapRatio is the gap between seasonal bands relative to cell size.
	seasonGapRatio = 0.2
	// cellPadding is the share of each band left empty between cells.
	cellPadding = 0.05
	monthsPerYear = 12
)

// Margin is the space reserved around the grid for axes and the legend.
type Margin struct {
	Top    float64 `yaml:"top" json:"top"`
	Right  float64 `yaml:"right" json:"right"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
	Left   float64 `yaml:"left" json:"left"`
}

// MonthRange is an inclusive range of calendar months.
type MonthRange struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// Options configures a heatmap. Zero values fall back to defaults, see
// WithDefaults. Pointer and slice fields distinguish "unset" from an
// explicit zero.
type Options struct {
	Width       float64 `yaml:"width"`
	Margin      *Margin `yaml:"margin"`
	ColorScheme string  `yaml:"color_scheme"`
	MaxCellSize float64 `yaml:"max_cell_size"`

	// SeasonBreaks are 0-based month indices; a gap is drawn before every
	// month whose index is greater than a break.
	SeasonBreaks []int `yaml:"season_breaks"`

	HighlightYear    int         `yaml:"highlight_year"`
	HighlightMonths  *MonthRange `yaml:"highlight_months"`
	HighlightLabel   string      `yaml:"highlight_label"`
	DisableHighlight bool        `yaml:"disable_highlight"`

	// Interpolator overrides ColorScheme when set.
	Interpolator Interpolator `yaml:"-"`
}

// DefaultMargin returns the margin used when none is configured.
func DefaultMargin() Margin {
	return Margin{Top: 80, Right: 30, Bottom: 80, Left: 80}
}

// DefaultSeasonBreaks returns the breaks that split the year into four
// three-month bands.
func DefaultSeasonBreaks() []int {
	return []int{2, 5, 8, 11}
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o Options) WithDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Margin == nil {
		m := DefaultMargin()
		o.Margin = &m
	}
	if o.ColorScheme == "" {
		o.ColorScheme = DefaultColorScheme
	}
	if o.MaxCellSize == 0 {
		o.MaxCellSize = DefaultMaxCellSize
	}
	if o.SeasonBreaks == nil {
		o.SeasonBreaks = DefaultSeasonBreaks()
	}
	if o.HighlightYear == 0 {
		o.HighlightYear = DefaultHighlightYear
	}
	if o.HighlightMonths == nil {
		o.HighlightMonths = &MonthRange{Start: 1, End: 5}
	}
	if o.HighlightLabel == "" {
		o.HighlightLabel = DefaultHighlightLabel
	}
	return o
}

// Validate checks a defaulted Options value.
func (o Options) Validate() error {
	if o.Margin == nil || o.HighlightMonths == nil {
		return fmt.Errorf("%w: defaults not applied", ErrInvalidOptions)
	}
	m := *o.Margin
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return fmt.Errorf("%w: margins must not be negative", ErrInvalidOptions)
	}
	if o.AvailableWidth() <= 0 {
		return fmt.Errorf("%w: width %g leaves no room inside margins", ErrInvalidOptions, o.Width)
	}
	if o.MaxCellSize <= 0 {
		return fmt.Errorf("%w: max cell size must be positive", ErrInvalidOptions)
	}
	for _, b := range o.SeasonBreaks {
		if b < 0 || b >= monthsPerYear {
			return fmt.Errorf("%w: season break %d outside 0-11", ErrInvalidOptions, b)
		}
	}
	hm := *o.HighlightMonths
	if hm.Start < 1 || hm.End > monthsPerYear || hm.Start > hm.End {
		return fmt.Errorf("%w: highlight months %d-%d", ErrInvalidOptions, hm.Start, hm.End)
	}
	if o.Interpolator == nil {
		if _, err := LookupScheme(o.ColorScheme); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
	}
	return nil
}

// AvailableWidth is the horizontal space left for the grid.
func (o Options) AvailableWidth() float64 {
	if o.Margin == nil {
		return o.Width
	}
	return o.Width - o.Margin.Left - o.Margin.Right
}

func (o Options) interpolator() Interpolator {
	if o.Interpolator != nil {
		return o.Interpolator
	}
	interp, err := LookupScheme(o.ColorScheme)
	if err != nil {
		return Blues
	}
	return interp
}
