package loader

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
)

func TestParseVisitsCSV_Row(t *testing.T) {
	in := "Year,Month,RecreationVisits,ParkName,UnitCode\n2019,7,45000,Yosemite,YOSE\n"

	res, err := ParseVisitsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Empty(t, res.Skipped)

	want := []domain.VisitRecord{{Year: 2019, Month: 7, Visitors: 45000, ParkName: "Yosemite", UnitCode: "YOSE"}}
	if diff := cmp.Diff(want, res.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVisitsCSV_Fixture(t *testing.T) {
	f, err := os.Open("testdata/visits.csv")
	require.NoError(t, err)
	defer f.Close()

	res, err := ParseVisitsCSV(f)
	require.NoError(t, err)

	require.Len(t, res.Records, 5)
	assert.Equal(t, 47250, res.Records[1].Visitors, "thousands separators accepted")
	assert.Equal(t, 0, res.Records[2].Visitors, "zero is a valid count")
	assert.Equal(t, "HALE", res.Records[4].UnitCode)

	require.Len(t, res.Skipped, 4)
	tests := []struct {
		line   int
		column string
		value  string
		err    error
	}{
		{6, ColMonth, "13", errOutOfRange},
		{7, ColYear, "twenty", errNotInteger},
		{8, ColVisitors, "-5", errOutOfRange},
		{9, ColUnitCode, "", errEmpty},
	}
	for i, tt := range tests {
		got := res.Skipped[i]
		assert.Equal(t, tt.line, got.Line)
		assert.Equal(t, tt.column, got.Column)
		assert.Equal(t, tt.value, got.Value)
		assert.ErrorIs(t, got, tt.err)
	}
}

func TestParseVisitsCSV_MissingColumn(t *testing.T) {
	in := "Year,Month,ParkName,UnitCode\n2019,7,Yosemite,YOSE\n"

	_, err := ParseVisitsCSV(strings.NewReader(in))
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), ColVisitors)
}

func TestParseVisitsCSV_Empty(t *testing.T) {
	_, err := ParseVisitsCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestParseVisitsCSV_HeaderOnly(t *testing.T) {
	res, err := ParseVisitsCSV(strings.NewReader("Year,Month,RecreationVisits,ParkName,UnitCode\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.NotNil(t, res.Records)
}

func TestParseVisitsCSV_ByteOrderMark(t *testing.T) {
	in := "\ufeffYear,Month,RecreationVisits,ParkName,UnitCode\n2021,3,10,Zion,ZION\n"

	res, err := ParseVisitsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 2021, res.Records[0].Year)
}

func TestParseVisitsCSV_ShortRow(t *testing.T) {
	in := "Year,Month,RecreationVisits,ParkName,UnitCode\n2019,7\n2019,8,10,Zion,ZION\n"

	res, err := ParseVisitsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Line)
	assert.Equal(t, ColVisitors, res.Skipped[0].Column)
}

func TestParseVisitsCSV_BareQuote(t *testing.T) {
	in := "Year,Month,RecreationVisits,ParkName,UnitCode\n2019,7,10,Zi\"on,ZION\n2019,8,10,Zion,ZION\n"

	res, err := ParseVisitsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Line)
}

func TestRowError_Error(t *testing.T) {
	e := RowError{Line: 12, Column: ColMonth, Value: "13", Err: errOutOfRange}
	assert.Equal(t, `line 12: Month "13": out of range`, e.Error())

	e = RowError{Line: 3, Err: errEmpty}
	assert.Equal(t, "line 3: empty", e.Error())
}
