package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRampEnds(t *testing.T) {
	assert.Equal(t, "#f7fbff", Blues(0).Hex())
	assert.Equal(t, "#08306b", Blues(1).Hex())
	assert.Equal(t, "#f7fbff", Blues(-3).Hex(), "clamped below")
	assert.Equal(t, "#08306b", Blues(7).Hex(), "clamped above")
	assert.Equal(t, "#6baed6", Blues(0.5).Hex())
}

func TestSequentialScale(t *testing.T) {
	s := NewSequentialScale(100, 300, Greens)

	assert.InDelta(t, 0, s.Normalize(100), 1e-9)
	assert.InDelta(t, 0.5, s.Normalize(200), 1e-9)
	assert.InDelta(t, 1, s.Normalize(300), 1e-9)
	assert.InDelta(t, 1, s.Normalize(900), 1e-9)
	assert.Equal(t, "#f7fcf5", s.Color(100))
	assert.Equal(t, "#00441b", s.Color(300))
}

func TestSequentialScale_Degenerate(t *testing.T) {
	s := NewSequentialScale(42, 42, Blues)
	assert.InDelta(t, 0.5, s.Normalize(42), 1e-9)
	assert.InDelta(t, 0.5, s.Normalize(7), 1e-9)
	assert.Equal(t, s.At(0.5), s.Color(42))
	assert.Equal(t, "#6baed6", s.Color(42))
}

func TestLookupScheme(t *testing.T) {
	interp, err := LookupScheme("Purples")
	require.NoError(t, err)
	assert.Equal(t, "#3f007d", interp(1).Hex())

	_, err = LookupScheme("viridis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "viridis")

	assert.Equal(t, []string{"blues", "greens", "greys", "oranges", "purples", "reds"}, SchemeNames())
}
