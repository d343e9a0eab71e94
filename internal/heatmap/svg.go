package heatmap

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"

	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
)

// PlaceholderText is shown in place of a heatmap when a park has no visit
// data.
const PlaceholderText = "No visitor data available"

var funcs = template.FuncMap{
	"num": formatNum,
	"half": func(v float64) float64 {
		return v / 2
	},
	"add": func(a, b float64) float64 {
		return a + b
	},
}

var svgTemplates = template.Must(template.New("heatmap").Funcs(funcs).Parse(heatmapSVG))

func init() {
	template.Must(svgTemplates.New("placeholder").Parse(placeholderSVG))
}

// WriteSVG renders a layout as a standalone SVG document.
func WriteSVG(w io.Writer, l *Layout) error {
	if err := svgTemplates.ExecuteTemplate(w, "heatmap", l); err != nil {
		return fmt.Errorf("render heatmap svg: %w", err)
	}
	return nil
}

// WritePlaceholder renders a small SVG carrying a message instead of a grid.
func WritePlaceholder(w io.Writer, message string) error {
	if message == "" {
		message = PlaceholderText
	}
	data := struct {
		Width, Height float64
		Message       string
	}{Width: DefaultWidth, Height: 60, Message: message}
	if err := svgTemplates.ExecuteTemplate(w, "placeholder", data); err != nil {
		return fmt.Errorf("render placeholder svg: %w", err)
	}
	return nil
}

// Render builds and renders a heatmap in one step. Parks without records
// render the placeholder and report ErrNoData alongside the markup.
func Render(parkName string, records []domain.VisitRecord, opts Options) (template.HTML, error) {
	var buf bytes.Buffer
	l, err := Build(parkName, records, opts)
	if errors.Is(err, ErrNoData) {
		if perr := WritePlaceholder(&buf, ""); perr != nil {
			return "", perr
		}
		return template.HTML(buf.String()), err //nolint:gosec // produced by html/template
	}
	if err != nil {
		return "", err
	}
	if err := WriteSVG(&buf, l); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

func formatNum(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

const heatmapSVG = `<svg xmlns="http://www.w3.org/2000/svg" class="heatmap" width="{{num .OuterWidth}}" height="{{num .OuterHeight}}" viewBox="0 0 {{num .OuterWidth}} {{num .OuterHeight}}" style="max-width: 100%; height: auto;">
<g transform="translate({{num .Margin.Left}},{{num .Margin.Top}})">
<defs>
<linearGradient id="{{.Legend.GradientID}}" x1="0%" x2="100%" y1="0%" y2="0%">
{{- range .Legend.Stops}}
<stop offset="{{num .Offset}}%" stop-color="{{.Color}}"></stop>
{{- end}}
</linearGradient>
</defs>
<rect class="legend" x="{{num .Legend.X}}" y="{{num .Legend.Y}}" width="{{num .Legend.Width}}" height="{{num .Legend.Height}}" fill="url(#{{.Legend.GradientID}})"></rect>
<g class="legend-axis" transform="translate({{num .Legend.X}},{{num .Legend.Y}})" font-size="10" text-anchor="middle">
<path stroke="currentColor" fill="none" d="M0,-6V0H{{num .Legend.Width}}V-6"></path>
{{- range .Legend.Ticks}}
<g class="tick" transform="translate({{num .X}},0)"><line stroke="currentColor" y2="-6"></line><text fill="currentColor" y="-9">{{.Label}}</text></g>
{{- end}}
</g>
{{- range .Cells}}
<rect class="cell" x="{{num .X}}" y="{{num .Y}}" width="{{num .Size}}" height="{{num .Size}}" fill="{{.Fill}}"><title>{{.Title}}</title></rect>
{{- end}}
<g class="x-axis" transform="translate(0,{{num .XAxisY}})" font-size="10">
<path stroke="currentColor" fill="none" d="M0,6V0H{{num .Width}}V6"></path>
{{- range .XTicks}}
<g class="tick" transform="translate({{num .X}},0)"><line stroke="currentColor" y2="6"></line>{{if .Label}}<text fill="currentColor" transform="rotate(90)" text-anchor="start" dx="0.8em" dy="-0.5em" y="9">{{.Label}}</text>{{end}}</g>
{{- end}}
</g>
<g class="y-axis" font-size="10">
{{- range .YTicks}}
<text x="-10" y="{{num .Y}}" text-anchor="end" dominant-baseline="middle">{{.Label}}</text><line x1="-6" x2="0" y1="{{num .Y}}" y2="{{num .Y}}" stroke="black"></line>
{{- end}}
</g>
{{- with .Highlight}}
<rect class="highlight" x="{{num .X}}" y="{{num .Y}}" width="{{num .Width}}" height="{{num .Height}}" fill="none" stroke="red" stroke-width="2" stroke-dasharray="5,5"><title>{{.Label}}</title></rect>
{{- end}}
<text transform="translate({{num (half .Width)}},{{num (add .Height .Margin.Bottom)}})" text-anchor="middle">Year</text>
<text transform="rotate(-90)" y="-{{num .Margin.Left}}" x="-{{num (half .Height)}}" dy="1em" text-anchor="middle">Month</text>
</g>
</svg>`

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" class="heatmap placeholder" width="{{num .Width}}" height="{{num .Height}}" viewBox="0 0 {{num .Width}} {{num .Height}}" style="max-width: 100%; height: auto;">
<text x="{{num (half .Width)}}" y="{{num (half .Height)}}" text-anchor="middle" dominant-baseline="middle" fill="#666">{{.Message}}</text>
</svg>`
