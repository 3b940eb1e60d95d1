// Command validate checks a CSV written by the ETL against the USGS response
// it was produced from. It verifies the column contract, the row count, the
// sort order, per-row content and per-series metadata consistency.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw internal/domain/testdata/usgs_response.json \
//	  -csv artifacts/results.csv
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/groundwater-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/groundwater-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawPath := flag.String("raw", "", "path to the USGS JSON response")
	csvPath := flag.String("csv", "", "path to the CSV written by the ETL")
	flag.Parse()

	if *rawPath == "" || *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*rawPath, *csvPath))
}

func run(rawPath, csvPath string) int {
	fmt.Println("=== Groundwater CSV Integrity Validation ===")
	fmt.Println()

	expected, err := loadExpected(rawPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw response: %v\n", err)
		return 1
	}

	actual, err := csvfile.ReadTable(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}

	phases := validate(expected, actual)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d expected from response, %d in CSV\n", len(expected), len(actual))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// loadExpected derives the sorted records the ETL should have written.
func loadExpected(path string) ([]domain.FlatRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	resp, err := domain.DecodeResponse(f)
	if err != nil {
		return nil, err
	}
	records, err := domain.ExtractAllData(resp)
	if err != nil {
		return nil, err
	}
	return domain.SortRecords(records), nil
}

func validate(expected, actual []domain.FlatRecord) []*phase {
	return []*phase{
		validateCounts(expected, actual),
		validateOrder(actual),
		validateContent(expected, actual),
		validateMetadata(actual),
	}
}

// ── Phase 1: Row Count ──

func validateCounts(expected, actual []domain.FlatRecord) *phase {
	p := &phase{name: "Phase 1: Row Count"}
	if len(expected) != len(actual) {
		p.errorf("response yields %d records, CSV has %d rows", len(expected), len(actual))
	}
	return p
}

// ── Phase 2: Ordering ──
// Rows must be non-decreasing by (variable_name, site_name, datetime).

func validateOrder(actual []domain.FlatRecord) *phase {
	p := &phase{name: "Phase 2: Ordering"}
	for i := 1; i < len(actual); i++ {
		prev, cur := actual[i-1], actual[i]
		if outOfOrder(prev, cur) {
			p.errorf("row %d (%s | %s | %s) sorts before row %d",
				i+2, cur.VariableName, cur.SiteName, cur.DateTime.Format(csvfile.DateTimeLayout), i+1)
		}
	}
	return p
}

func outOfOrder(prev, cur domain.FlatRecord) bool {
	if prev.VariableName != cur.VariableName {
		return cur.VariableName < prev.VariableName
	}
	if prev.SiteName != cur.SiteName {
		return cur.SiteName < prev.SiteName
	}
	return cur.DateTime.Before(prev.DateTime)
}

// ── Phase 3: Content Parity ──
// Each CSV row matches the record derived from the response at the same position.

func validateContent(expected, actual []domain.FlatRecord) *phase {
	p := &phase{name: "Phase 3: Content Parity (CSV vs response)"}

	n := min(len(expected), len(actual))
	for i := range n {
		want, got := expected[i], actual[i]
		line := i + 2
		if want.VariableName != got.VariableName {
			p.errorf("line %d: variable_name=%q, want %q", line, got.VariableName, want.VariableName)
		}
		if want.SiteName != got.SiteName {
			p.errorf("line %d: site_name=%q, want %q", line, got.SiteName, want.SiteName)
		}
		if !want.DateTime.Equal(got.DateTime) {
			p.errorf("line %d: datetime=%s, want %s", line, got.DateTime, want.DateTime)
		}
		checkFloat(p, line, "value", want.Value, got.Value)
		checkFloat(p, line, "longitude", want.Longitude, got.Longitude)
		checkFloat(p, line, "latitude", want.Latitude, got.Latitude)
	}
	return p
}

func checkFloat(p *phase, line int, field string, want, got float64) {
	if math.Float64bits(want) != math.Float64bits(got) {
		p.errorf("line %d: %s=%v, want %v", line, field, got, want)
	}
}

// ── Phase 4: Metadata Consistency ──
// All rows of one site carry the same coordinates.

func validateMetadata(actual []domain.FlatRecord) *phase {
	p := &phase{name: "Phase 4: Metadata Consistency"}

	type coords struct{ lat, lon float64 }
	seen := make(map[string]coords)
	for i, r := range actual {
		c := coords{lat: r.Latitude, lon: r.Longitude}
		prev, ok := seen[r.SiteName]
		if !ok {
			seen[r.SiteName] = c
			continue
		}
		if prev != c {
			p.errorf("line %d: site %q at (%v, %v), earlier rows at (%v, %v)",
				i+2, r.SiteName, c.lat, c.lon, prev.lat, prev.lon)
		}
	}
	return p
}
