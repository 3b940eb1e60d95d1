package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/groundwater-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/groundwater-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../../internal/domain/testdata/usgs_response.json"

func failed(phases []*phase) []string {
	var names []string
	for _, p := range phases {
		if !p.passed() {
			names = append(names, p.name)
		}
	}
	return names
}

func TestRun_PassesForETLOutput(t *testing.T) {
	expected, err := loadExpected(fixturePath)
	require.NoError(t, err)

	csvPath := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, csvfile.WriteTable(expected, csvPath))

	assert.Equal(t, 0, run(fixturePath, csvPath))
}

func TestRun_MissingFiles(t *testing.T) {
	assert.Equal(t, 1, run(filepath.Join(t.TempDir(), "nope.json"), "nope.csv"))
	assert.Equal(t, 1, run(fixturePath, filepath.Join(t.TempDir(), "nope.csv")))
}

func TestValidate_DetectsProblems(t *testing.T) {
	expected, err := loadExpected(fixturePath)
	require.NoError(t, err)
	require.Len(t, expected, 6)

	t.Run("missing row", func(t *testing.T) {
		got := failed(validate(expected, expected[1:]))
		assert.Contains(t, got, "Phase 1: Row Count")
	})

	t.Run("unsorted", func(t *testing.T) {
		actual := append([]domain.FlatRecord(nil), expected...)
		actual[0], actual[5] = actual[5], actual[0]
		got := failed(validate(expected, actual))
		assert.Contains(t, got, "Phase 2: Ordering")
		assert.Contains(t, got, "Phase 3: Content Parity (CSV vs response)")
	})

	t.Run("changed value", func(t *testing.T) {
		actual := append([]domain.FlatRecord(nil), expected...)
		actual[2].Value += 0.01
		got := failed(validate(expected, actual))
		assert.Equal(t, []string{"Phase 3: Content Parity (CSV vs response)"}, got)
	})

	t.Run("sub-second datetime drift", func(t *testing.T) {
		actual := append([]domain.FlatRecord(nil), expected...)
		actual[3].DateTime = actual[3].DateTime.Add(time.Millisecond)
		got := failed(validate(expected, actual))
		assert.Equal(t, []string{"Phase 3: Content Parity (CSV vs response)"}, got)
	})

	t.Run("inconsistent coordinates", func(t *testing.T) {
		actual := append([]domain.FlatRecord(nil), expected...)
		actual[1].Latitude = 0
		got := failed(validate(actual, actual))
		assert.Equal(t, []string{"Phase 4: Metadata Consistency"}, got)
	})
}

func TestOutOfOrder(t *testing.T) {
	jan := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, outOfOrder(
		domain.FlatRecord{VariableName: "v", SiteName: "s", DateTime: jun},
		domain.FlatRecord{VariableName: "v", SiteName: "s", DateTime: jan},
	))
	assert.False(t, outOfOrder(
		domain.FlatRecord{VariableName: "a", SiteName: "z", DateTime: jun},
		domain.FlatRecord{VariableName: "b", SiteName: "a", DateTime: jan},
	))
	assert.False(t, outOfOrder(
		domain.FlatRecord{VariableName: "v", SiteName: "s", DateTime: jan},
		domain.FlatRecord{VariableName: "v", SiteName: "s", DateTime: jan},
	))
}
