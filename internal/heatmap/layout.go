package heatmap

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
)

var (
	// ErrNoData is returned when there are no records to lay out.
	ErrNoData = errors.New("no visit data")
	// ErrInvalidRecord is returned for a record whose month is outside 1-12.
	ErrInvalidRecord = errors.New("invalid visit record")
)

const (
	LegendWidth  = 200
	LegendHeight = 20
	legendTicks  = 5
)

// Layout is the computed geometry of one park's heatmap. Coordinates of
// cells, ticks, legend and highlight are relative to the grid origin, which
// sits at (Margin.Left, Margin.Top) in the outer SVG.
type Layout struct {
	ParkName  string  `json:"park_name"`
	Years     []int   `json:"years"`
	CellSize  float64 `json:"cell_size"`
	Gap       float64 `json:"gap"`
	Bandwidth float64 `json:"bandwidth"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Margin    Margin  `json:"margin"`
	XAxisY    float64 `json:"x_axis_y"`
	MinVisits int     `json:"min_visitors"`
	MaxVisits int     `json:"max_visitors"`

	Cells     []Cell     `json:"cells"`
	XTicks    []XTick    `json:"x_ticks"`
	YTicks    []YTick    `json:"y_ticks"`
	Legend    Legend     `json:"legend"`
	Highlight *Highlight `json:"highlight,omitempty"`

	monthY [monthsPerYear]float64
}

// Cell is one record drawn as a square.
type Cell struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Fill     string  `json:"fill"`
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Visitors int     `json:"visitors"`
	Title    string  `json:"title"`
}

// XTick marks a year column. Label is empty for unlabelled years.
type XTick struct {
	Year  int     `json:"year"`
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// YTick marks a month row at its vertical centre.
type YTick struct {
	Month int     `json:"month"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Legend is the gradient bar and its axis.
type Legend struct {
	X          float64      `json:"x"`
	Y          float64      `json:"y"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	GradientID string       `json:"gradient_id"`
	Stops      []Stop       `json:"stops"`
	Ticks      []LegendTick `json:"ticks"`
}

// Stop is a gradient stop; Offset is a percentage.
type Stop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// LegendTick is a labelled value on the legend axis. X is relative to the
// legend's left edge.
type LegendTick struct {
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// Highlight is the dashed overlay marking the highlighted period.
type Highlight struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label"`
}

// Build computes the layout for one park's records.
func Build(parkName string, records []domain.VisitRecord, opts Options) (*Layout, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", parkName, ErrNoData)
	}

	years := distinctYears(records)
	cellSize := min(opts.AvailableWidth()/float64(len(years)), opts.MaxCellSize)
	gap := cellSize * seasonGapRatio
	bandwidth := cellSize * (1 - cellPadding)
	inset := cellSize * cellPadding / 2

	l := &Layout{
		ParkName:  parkName,
		Years:     years,
		CellSize:  cellSize,
		Gap:       gap,
		Bandwidth: bandwidth,
		Width:     float64(len(years)) * cellSize,
		Height:    monthsPerYear*cellSize + 3*gap,
		Margin:    *opts.Margin,
	}
	l.XAxisY = l.Height + cellSize

	for m := 1; m <= monthsPerYear; m++ {
		l.monthY[m-1] = float64(m-1)*cellSize + inset + float64(gapsBefore(m, opts.SeasonBreaks))*gap
	}

	yearX := make(map[int]float64, len(years))
	for i, y := range years {
		yearX[y] = float64(i)*cellSize + inset
	}

	lo, hi := visitorRange(records)
	l.MinVisits, l.MaxVisits = lo, hi
	scale := NewSequentialScale(float64(lo), float64(hi), opts.interpolator())

	l.Cells = make([]Cell, 0, len(records))
	for _, r := range records {
		if r.Month < 1 || r.Month > monthsPerYear {
			return nil, fmt.Errorf("%w: %s %d-%02d", ErrInvalidRecord, r.UnitCode, r.Year, r.Month)
		}
		l.Cells = append(l.Cells, Cell{
			X:        yearX[r.Year],
			Y:        l.monthY[r.Month-1],
			Size:     bandwidth,
			Fill:     scale.Color(float64(r.Visitors)),
			Year:     r.Year,
			Month:    r.Month,
			Visitors: r.Visitors,
			Title:    CellTitle(r.Year, r.Month, r.Visitors),
		})
	}

	first, last := years[0], years[len(years)-1]
	l.XTicks = make([]XTick, len(years))
	for i, y := range years {
		tick := XTick{Year: y, X: yearX[y] + bandwidth/2}
		if y == first || y == last || y%5 == 0 {
			tick.Label = fmt.Sprint(y)
		}
		l.XTicks[i] = tick
	}

	l.YTicks = make([]YTick, monthsPerYear)
	for m := 1; m <= monthsPerYear; m++ {
		l.YTicks[m-1] = YTick{Month: m, Y: l.monthY[m-1] + bandwidth/2, Label: MonthLabel(m)}
	}

	l.Legend = buildLegend(parkName, l.Width, l.Margin, scale)

	if !opts.DisableHighlight {
		if x, ok := yearX[opts.HighlightYear]; ok {
			hm := *opts.HighlightMonths
			top := l.MonthOffset(hm.Start)
			l.Highlight = &Highlight{
				X:      x,
				Y:      top,
				Width:  bandwidth,
				Height: l.MonthOffset(hm.End) + bandwidth - top,
				Label:  opts.HighlightLabel,
			}
		}
	}

	return l, nil
}

// MonthOffset returns the top edge of a month's row. Months outside 1-12
// return 0.
func (l *Layout) MonthOffset(month int) float64 {
	if month < 1 || month > monthsPerYear {
		return 0
	}
	return l.monthY[month-1]
}

// OuterWidth is the full SVG width including margins.
func (l *Layout) OuterWidth() float64 {
	return l.Width + l.Margin.Left + l.Margin.Right
}

// OuterHeight is the full SVG height including margins.
func (l *Layout) OuterHeight() float64 {
	return l.Height + l.Margin.Top + l.Margin.Bottom
}

func buildLegend(parkName string, gridWidth float64, margin Margin, scale SequentialScale) Legend {
	lg := Legend{
		X:          gridWidth/2 - LegendWidth/2,
		Y:          -margin.Top/2 - LegendHeight/2,
		Width:      LegendWidth,
		Height:     LegendHeight,
		GradientID: GradientID(parkName),
	}

	values := Ticks(scale.Min, scale.Max, legendTicks)
	lg.Stops = make([]Stop, len(values))
	lg.Ticks = make([]LegendTick, len(values))
	for i, v := range values {
		offset := 100 * float64(i) / float64(len(values))
		lg.Stops[i] = Stop{Offset: offset, Color: scale.Color(v)}

		x := LegendWidth / 2.0
		if span := scale.Max - scale.Min; span != 0 {
			x = (v - scale.Min) / span * LegendWidth
		}
		lg.Ticks[i] = LegendTick{Value: v, X: x, Label: FormatSI(v)}
	}
	return lg
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	idUnsafe      = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// GradientID derives the legend gradient element id from a park name.
func GradientID(parkName string) string {
	id := whitespaceRun.ReplaceAllString(parkName, "-")
	return "legend-gradient-" + idUnsafe.ReplaceAllString(id, "")
}

func gapsBefore(month int, breaks []int) int {
	idx := month - 1
	n := 0
	for _, b := range breaks {
		if idx > b {
			n++
		}
	}
	return n
}

func distinctYears(records []domain.VisitRecord) []int {
	seen := make(map[int]struct{}, len(records))
	years := make([]int, 0)
	for _, r := range records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	slices.Sort(years)
	return years
}

func visitorRange(records []domain.VisitRecord) (lo, hi int) {
	lo, hi = records[0].Visitors, records[0].Visitors
	for _, r := range records[1:] {
		lo = min(lo, r.Visitors)
		hi = max(hi, r.Visitors)
	}
	return lo, hi
}
