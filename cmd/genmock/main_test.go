package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
	"github.com/couchcryptid/park-visits-dashboard/internal/loader"
)

var parks = []domain.ParkFeature{
	{Lng: -119.5, Lat: 37.8, Name: "Yosemite National Park", Code: "YOSE"},
	{Lng: -151.0, Lat: 63.3, Name: "Denali National Park", Code: "DENA"},
}

func TestGenerate_Deterministic(t *testing.T) {
	a := generate(parks, 2019, 2021, 7)
	b := generate(parks, 2019, 2021, 7)
	assert.Equal(t, a, b)
	assert.Len(t, a, 2*3*12)
	assert.NotEqual(t, a, generate(parks, 2019, 2021, 8))
}

func TestGenerate_SeasonalityAndClosure(t *testing.T) {
	records := generate(parks[:1], 2019, 2020, 1)
	byKey := map[[2]int]int{}
	for _, r := range records {
		assert.GreaterOrEqual(t, r.Visitors, 0)
		byKey[[2]int{r.Year, r.Month}] = r.Visitors
	}

	assert.Greater(t, byKey[[2]int{2019, 7}], byKey[[2]int{2019, 1}], "summer beats winter")
	assert.Less(t, byKey[[2]int{2020, 4}], byKey[[2]int{2019, 4}]/5, "april 2020 closure")
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visit_data.csv")
	records := generate(parks, 2020, 2020, 1)
	require.NoError(t, writeCSV(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	res, err := loader.ParseVisitsCSV(f)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, records, res.Records)
}
