package loader

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
)

func TestParseParksGeoJSON_Fixture(t *testing.T) {
	data, err := os.ReadFile("testdata/parks.geojson")
	require.NoError(t, err)

	res, err := ParseParksGeoJSON(data)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Skipped, "polygon, missing code and null geometry")
	require.Len(t, res.Parks, 5)

	yose := res.Parks[0]
	assert.Equal(t, "Yosemite National Park", yose.Name)
	assert.Equal(t, "YOSE", yose.Code)
	assert.Equal(t, "CA", yose.State)
	assert.InDelta(t, -119.5383, yose.Lng, 1e-9)
	assert.InDelta(t, 37.8651, yose.Lat, 1e-9)
}

func TestParseParksGeoJSON_Invalid(t *testing.T) {
	_, err := ParseParksGeoJSON([]byte(`{"type": "FeatureCollection", "features": [`))
	require.Error(t, err)

	_, err = ParseParksGeoJSON([]byte(`{"type": "Feature", "geometry": null, "properties": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Feature")
}

func TestEncodeParks_RoundTrip(t *testing.T) {
	parks := []domain.ParkFeature{
		{Lng: -119.5, Lat: 37.8, Name: "Yosemite National Park", Code: "YOSE", State: "CA"},
		{Lng: -150.5, Lat: 63.3, Name: "Denali National Park", Code: "DENA", State: "AK"},
	}

	data, err := EncodeParks(parks)
	require.NoError(t, err)

	res, err := ParseParksGeoJSON(data)
	require.NoError(t, err)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, parks, res.Parks)
}

func TestEncodeParks_Empty(t *testing.T) {
	data, err := EncodeParks(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "FeatureCollection", "features": []}`, string(data))
}
