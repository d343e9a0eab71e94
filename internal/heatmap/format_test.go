package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSI(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{1200000, "1.2M"},
		{1234567, "1.2M"},
		{450000, "450k"},
		{45000, "45k"},
		{20000, "20k"},
		{1000000, "1.0M"},
		{999999, "1.0M"},
		{5, "5.0"},
		{0.5, "500m"},
		{0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSI(tt.in))
		})
	}
}

func TestCellTitle(t *testing.T) {
	assert.Equal(t, "Year: 2019, Month: 7, Visitors: 45,000", CellTitle(2019, 7, 45000))
	assert.Equal(t, "Year: 2020, Month: 4, Visitors: 0", CellTitle(2020, 4, 0))
	assert.Equal(t, "Year: 2016, Month: 8, Visitors: 1,234,567", CellTitle(2016, 8, 1234567))
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Jan", MonthLabel(1))
	assert.Equal(t, "Sep", MonthLabel(9))
	assert.Equal(t, "Dec", MonthLabel(12))
}
