package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRecords = []VisitRecord{
	{Year: 2019, Month: 7, Visitors: 45000, ParkName: "Yosemite", UnitCode: "YOSE"},
	{Year: 2019, Month: 7, Visitors: 900, ParkName: "Denali", UnitCode: "DENA"},
	{Year: 2019, Month: 8, Visitors: 47000, ParkName: "Yosemite", UnitCode: "YOSE"},
	{Year: 2019, Month: 8, Visitors: 47000, ParkName: "Yosemite", UnitCode: "YOSE"},
}

func TestVisitsForPark(t *testing.T) {
	got := VisitsForPark(testRecords, "YOSE")
	require.Len(t, got, 3, "duplicates are kept")
	for _, r := range got {
		assert.Equal(t, "YOSE", r.UnitCode)
	}

	missing := VisitsForPark(testRecords, "ZZZZ")
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestGroupByPark(t *testing.T) {
	groups := GroupByPark(testRecords)
	require.Len(t, groups, 2)

	names := []string{groups[0].ParkName, groups[1].ParkName}
	if diff := cmp.Diff([]string{"Yosemite", "Denali"}, names); diff != "" {
		t.Fatalf("group order mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, groups[0].Records, 3)
	assert.Len(t, groups[1].Records, 1)
}

func TestUnitCodes(t *testing.T) {
	assert.Equal(t, []string{"YOSE", "DENA"}, UnitCodes(testRecords))
	assert.Empty(t, UnitCodes(nil))
}

func TestFilterNationalParks(t *testing.T) {
	parks := []ParkFeature{
		{Name: "Yosemite National Park", Code: "YOSE"},
		{Name: "Muir Woods National Monument", Code: "MUWO"},
		{Name: "Denali NATIONAL PARK and Preserve", Code: "DENA"},
	}

	got := FilterNationalParks(parks)
	require.Len(t, got, 2)
	assert.Equal(t, "YOSE", got[0].Code)
	assert.Equal(t, "DENA", got[1].Code)
}

func TestFindPark(t *testing.T) {
	parks := []ParkFeature{{Name: "Yosemite National Park", Code: "YOSE", State: "CA"}}

	p, ok := FindPark(parks, "YOSE")
	require.True(t, ok)
	assert.Equal(t, "CA", p.State)

	_, ok = FindPark(parks, "yose")
	assert.False(t, ok, "codes are compared exactly")
}
