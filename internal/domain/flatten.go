package domain

import "fmt"

// MergeRecords combines one timeseries' metadata with each of its values.
// Every record gets its own copy of the metadata fields.
func MergeRecords(md Metadata, values []ValueRecord) []FlatRecord {
	records := make([]FlatRecord, len(values))
	for i, v := range values {
		records[i] = FlatRecord{
			VariableName: md.VariableName,
			SiteName:     md.SiteName,
			DateTime:     v.DateTime,
			Value:        v.Value,
			Longitude:    md.Longitude,
			Latitude:     md.Latitude,
		}
	}
	return records
}

// ExtractAllData flattens every timeseries in the response into one list, in
// encounter order. The first failing timeseries aborts the whole extraction.
func ExtractAllData(resp RawResponse) ([]FlatRecord, error) {
	series, err := ExtractAllTimeseries(resp)
	if err != nil {
		return nil, err
	}

	var out []FlatRecord
	for i, ts := range series {
		md, err := ExtractMetadata(ts)
		if err != nil {
			return nil, fmt.Errorf("timeseries %d (%s): %w", i, ts.Name, err)
		}
		values, err := ExtractValues(ts)
		if err != nil {
			return nil, fmt.Errorf("timeseries %d (%s): %w", i, ts.Name, err)
		}
		out = append(out, MergeRecords(md, values)...)
	}
	if out == nil {
		out = []FlatRecord{}
	}
	return out, nil
}
