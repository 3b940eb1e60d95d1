package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRecords(t *testing.T) {
	ts := decodeTimeseries(t, galvestonTimeseries)
	md, err := ExtractMetadata(ts)
	require.NoError(t, err)
	values, err := ExtractValues(ts)
	require.NoError(t, err)

	records := MergeRecords(md, values)

	want := []FlatRecord{
		{
			VariableName: testVarNGVD,
			SiteName:     testSiteGalveston,
			DateTime:     time.Date(2022, 6, 28, 13, 16, 0, 0, time.UTC),
			Value:        -64.58,
			Longitude:    -95.1102778,
			Latitude:     29.39416667,
		},
		{
			VariableName: testVarNGVD,
			SiteName:     testSiteGalveston,
			DateTime:     time.Date(2022, 9, 14, 14, 1, 0, 0, time.UTC),
			Value:        -65.87,
			Longitude:    -95.1102778,
			Latitude:     29.39416667,
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("merged records mismatch (-want +got):\n%s", diff)
	}

	// Records are independent values.
	records[0].SiteName = "changed"
	assert.Equal(t, testSiteGalveston, records[1].SiteName)
	assert.Equal(t, testSiteGalveston, md.SiteName)
}

func TestMergeRecords_Empty(t *testing.T) {
	records := MergeRecords(Metadata{SiteName: "s"}, nil)
	assert.Empty(t, records)
}

func TestExtractAllData(t *testing.T) {
	resp := loadFixture(t)

	records, err := ExtractAllData(resp)
	require.NoError(t, err)

	series, err := ExtractAllTimeseries(resp)
	require.NoError(t, err)

	perSeries := make([]int, len(series))
	total := 0
	for i, ts := range series {
		values, err := ExtractValues(ts)
		require.NoError(t, err)
		perSeries[i] = len(values)
		total += len(values)
	}
	require.Len(t, records, total)

	// Every record carries the metadata of the series it came from, in encounter order.
	i := 0
	for n, ts := range series {
		md, err := ExtractMetadata(ts)
		require.NoError(t, err)
		for range perSeries[n] {
			got := records[i]
			assert.Equal(t, md, Metadata{
				SiteName:     got.SiteName,
				Latitude:     got.Latitude,
				Longitude:    got.Longitude,
				VariableName: got.VariableName,
			})
			i++
		}
	}
}

func TestExtractAllData_NoTimeseries(t *testing.T) {
	records, err := ExtractAllData(responseWith(t, `[]`))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestExtractAllData_FailsFast(t *testing.T) {
	good, err := json.Marshal(decodeTimeseries(t, galvestonTimeseries))
	require.NoError(t, err)

	badValue := `{"name": "bad-value", "sourceInfo": {"siteName": "s", "geoLocation": {"geogLocation": {"latitude": 1, "longitude": 2}}},
		"variable": {"variableName": "v"}, "values": [{"value": [{"value": "x", "dateTime": "2022-01-01T00:00:00.000"}]}]}`
	noSite := `{"name": "no-site", "sourceInfo": {}, "variable": {"variableName": "v"}, "values": []}`

	t.Run("format error names the timeseries", func(t *testing.T) {
		_, err := ExtractAllData(responseWith(t, `[`+string(good)+`,`+badValue+`,`+noSite+`]`))
		require.Error(t, err)

		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Contains(t, err.Error(), "timeseries 1 (bad-value)")
		assert.Equal(t, "values[0].value[0].value", formatErr.Field)
	})

	t.Run("first error wins", func(t *testing.T) {
		_, err := ExtractAllData(responseWith(t, `[`+noSite+`,`+badValue+`]`))
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, err.Error(), "timeseries 0 (no-site)")
	})

	t.Run("earlier series reported before later malformed ones", func(t *testing.T) {
		badLatitude := `{"name": "bad-lat", "sourceInfo": {"siteName": "s", "geoLocation": {"geogLocation": {"latitude": "north", "longitude": 2}}},
			"variable": {"variableName": "v"}, "values": [{"value": []}]}`
		numericSite := `{"name": "numeric-site", "sourceInfo": {"siteName": 42}, "variable": {"variableName": "v"}, "values": "nope"}`

		_, err := ExtractAllData(responseWith(t, `[`+badLatitude+`,`+numericSite+`]`))
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "sourceInfo.geoLocation.geogLocation.latitude", schemaErr.Path)
		assert.Contains(t, err.Error(), "timeseries 0 (bad-lat)")
	})

	t.Run("non-string timestamp names the record", func(t *testing.T) {
		numericTime := `{"name": "numeric-time", "sourceInfo": {"siteName": "s", "geoLocation": {"geogLocation": {"latitude": 1, "longitude": 2}}},
			"variable": {"variableName": "v"}, "values": [{"value": [
				{"value": "1", "dateTime": "2022-06-28T00:00:00.000"},
				{"value": "2", "dateTime": 20220628}
			]}]}`

		_, err := ExtractAllData(responseWith(t, `[`+string(good)+`,`+numericTime+`,{"sourceInfo": 1}]`))
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, "values[0].value[1].dateTime", formatErr.Field)
		assert.Contains(t, err.Error(), "timeseries 1 (numeric-time)")
	})

	t.Run("empty values list", func(t *testing.T) {
		emptyValues := `{"name": "empty", "sourceInfo": {"siteName": "s", "geoLocation": {"geogLocation": {"latitude": 1, "longitude": 2}}},
			"variable": {"variableName": "v"}, "values": []}`
		_, err := ExtractAllData(responseWith(t, `[`+emptyValues+`]`))
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "values", schemaErr.Path)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := ExtractAllData(RawResponse{})
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
	})
}
