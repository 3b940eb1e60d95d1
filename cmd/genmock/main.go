// Command genmock turns a results CSV back into a USGS instantaneous-values
// JSON response, for use as a test fixture or as the body of a local mock
// server. Rows are grouped into one timeseries per (site_name, variable_name)
// in first-seen order. The generated document is run through the real
// extraction code before it is written, so a fixture that the ETL cannot
// read is never produced.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv artifacts/results.csv \
//	  -out internal/domain/testdata/usgs_response_generated.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/couchcryptid/groundwater-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/groundwater-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "path to a results CSV")
	out := flag.String("out", "", "output path for the generated JSON response")
	flag.Parse()

	if *csvPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -out")
	}

	records, err := csvfile.ReadTable(*csvPath)
	if err != nil {
		return err
	}
	log.Printf("read %d rows from %s", len(records), *csvPath)

	resp, err := buildResponse(records)
	if err != nil {
		return err
	}

	roundtrip, err := domain.ExtractAllData(resp)
	if err != nil {
		return fmt.Errorf("generated response does not extract: %w", err)
	}
	if len(roundtrip) != len(records) {
		return fmt.Errorf("generated response yields %d records, want %d", len(roundtrip), len(records))
	}

	if err := writeJSON(*out, resp); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(roundtrip)
	return nil
}

type seriesKey struct {
	site     string
	variable string
}

// Wire shapes of the parts of a timeseries the ETL reads.
type (
	mockTimeseries struct {
		SourceInfo mockSourceInfo `json:"sourceInfo"`
		Variable   mockVariable   `json:"variable"`
		Values     []mockValueSet `json:"values"`
		Name       string         `json:"name"`
	}
	mockSourceInfo struct {
		SiteName    string `json:"siteName"`
		GeoLocation struct {
			GeogLocation mockGeogLocation `json:"geogLocation"`
		} `json:"geoLocation"`
	}
	mockGeogLocation struct {
		SRS       string      `json:"srs"`
		Latitude  json.Number `json:"latitude"`
		Longitude json.Number `json:"longitude"`
	}
	mockVariable struct {
		VariableName string `json:"variableName"`
	}
	mockValueSet struct {
		Value []mockEntry `json:"value"`
	}
	mockEntry struct {
		Value      string   `json:"value"`
		Qualifiers []string `json:"qualifiers"`
		DateTime   string   `json:"dateTime"`
	}
)

// buildResponse groups records into timeseries and wraps them in the
// response envelope.
func buildResponse(records []domain.FlatRecord) (domain.RawResponse, error) {
	var order []seriesKey
	series := map[seriesKey]*mockTimeseries{}

	for _, r := range records {
		key := seriesKey{site: r.SiteName, variable: r.VariableName}
		ts, ok := series[key]
		if !ok {
			ts = newTimeseries(r, len(order))
			series[key] = ts
			order = append(order, key)
		}

		ts.Values[0].Value = append(ts.Values[0].Value, mockEntry{
			Value:      formatFloat(r.Value),
			Qualifiers: []string{"P"},
			DateTime:   r.DateTime.Format(domain.TimestampLayout),
		})
	}

	list := make([]*mockTimeseries, 0, len(order))
	for _, key := range order {
		list = append(list, series[key])
	}

	raw, err := json.Marshal(map[string]any{"timeSeries": list})
	if err != nil {
		return domain.RawResponse{}, fmt.Errorf("marshal timeseries: %w", err)
	}
	return domain.RawResponse{Value: raw}, nil
}

func newTimeseries(r domain.FlatRecord, n int) *mockTimeseries {
	ts := &mockTimeseries{
		Variable: mockVariable{VariableName: r.VariableName},
		Values:   []mockValueSet{{Value: []mockEntry{}}},
		Name:     fmt.Sprintf("MOCK:%06d", n),
	}
	ts.SourceInfo.SiteName = r.SiteName
	ts.SourceInfo.GeoLocation.GeogLocation = mockGeogLocation{
		SRS:       "EPSG:4326",
		Latitude:  json.Number(formatFloat(r.Latitude)),
		Longitude: json.Number(formatFloat(r.Longitude)),
	}
	return ts
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(records []domain.FlatRecord) {
	perVariable := map[string]int{}
	sites := map[string]struct{}{}
	for _, r := range records {
		perVariable[r.VariableName]++
		sites[r.SiteName] = struct{}{}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d records, %d sites\n", len(records), len(sites))

	variables := make([]string, 0, len(perVariable))
	for v := range perVariable {
		variables = append(variables, v)
	}
	slices.Sort(variables)
	for _, v := range variables {
		fmt.Printf("  %-50s %d\n", v, perVariable[v])
	}

	if len(records) == 0 {
		return
	}
	sorted := domain.SortRecords(records)
	first, last := sorted[0].DateTime, sorted[0].DateTime
	for _, r := range sorted[1:] {
		if r.DateTime.Before(first) {
			first = r.DateTime
		}
		if r.DateTime.After(last) {
			last = r.DateTime
		}
	}
	fmt.Printf("Range: %s .. %s\n", first.Format(csvfile.DateTimeLayout), last.Format(csvfile.DateTimeLayout))
}
