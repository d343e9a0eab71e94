package heatmap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
)

func TestWriteSVG(t *testing.T) {
	records := fullYears(2019, 2021)
	l, err := Build("Zion", records, Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, l))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Equal(t, len(records), strings.Count(out, `class="cell"`))
	assert.Contains(t, out, `width="155" height="349"`)
	assert.Contains(t, out, `viewBox="0 0 155 349"`)
	assert.Contains(t, out, `id="legend-gradient-Zion"`)
	assert.Contains(t, out, `fill="url(#legend-gradient-Zion)"`)
	assert.Contains(t, out, "Year: 2019, Month: 1, Visitors: 1,000")
	assert.Contains(t, out, `stroke-dasharray="5,5"`)
	assert.Contains(t, out, "<title>COVID-19 Pandemic Period</title>")
	assert.Contains(t, out, ">Jan</text>")
	assert.Contains(t, out, ">2019</text>")
}

func TestWriteSVG_NoHighlight(t *testing.T) {
	l, err := Build("Zion", fullYears(2016, 2018), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, l))
	assert.NotContains(t, buf.String(), `class="highlight"`)
}

func TestWriteSVG_EscapesText(t *testing.T) {
	l, err := Build("Zion", fullYears(2020, 2020), Options{HighlightLabel: "<closed>"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, l))
	assert.NotContains(t, buf.String(), "<closed>")
	assert.Contains(t, buf.String(), "&lt;closed&gt;")
}

func TestRender_Placeholder(t *testing.T) {
	out, err := Render("Zion", []domain.VisitRecord{}, Options{})
	require.ErrorIs(t, err, ErrNoData)
	assert.Contains(t, string(out), PlaceholderText)
	assert.Contains(t, string(out), `class="heatmap placeholder"`)
}

func TestRender(t *testing.T) {
	out, err := Render("Zion", fullYears(2019, 2019), Options{})
	require.NoError(t, err)
	assert.Equal(t, 12, strings.Count(string(out), `class="cell"`))
}

func TestWritePlaceholder_Message(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlaceholder(&buf, "Failed to load data"))
	assert.Contains(t, buf.String(), "Failed to load data")
}
