package domain

import (
	"cmp"
	"slices"
)

// SortRecords returns a copy of records ordered by variable name, site name
// and timestamp, ascending. Ties keep their input order.
func SortRecords(records []FlatRecord) []FlatRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, compareRecords)
	return sorted
}

func compareRecords(a, b FlatRecord) int {
	if c := cmp.Compare(a.VariableName, b.VariableName); c != 0 {
		return c
	}
	if c := cmp.Compare(a.SiteName, b.SiteName); c != 0 {
		return c
	}
	return a.DateTime.Compare(b.DateTime)
}
