package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// RawResponse is the decoded USGS instantaneous-values document. Value stays
// raw so a wrong shape at any level is reported as a [SchemaError] by
// [ExtractAllTimeseries] instead of failing the decode.
type RawResponse struct {
	Value json.RawMessage `json:"value"`
}

// RawTimeseries is one site/variable series as returned by the service. Only
// the name is decoded up front; the body is read by [ExtractMetadata] and
// [ExtractValues], so a malformed series surfaces in encounter order.
type RawTimeseries struct {
	Name string
	body json.RawMessage
}

// NewRawTimeseries wraps the JSON of a single timeSeries element.
func NewRawTimeseries(body json.RawMessage) RawTimeseries {
	ts := RawTimeseries{body: bytes.Clone(body)}
	var head struct {
		Name json.RawMessage `json:"name"`
	}
	if json.Unmarshal(body, &head) == nil {
		_ = json.Unmarshal(head.Name, &ts.Name)
	}
	return ts
}

// UnmarshalJSON keeps the element as-is. It never fails on content.
func (ts *RawTimeseries) UnmarshalJSON(data []byte) error {
	*ts = NewRawTimeseries(data)
	return nil
}

// MarshalJSON returns the element unchanged.
func (ts RawTimeseries) MarshalJSON() ([]byte, error) {
	if ts.body == nil {
		return []byte("null"), nil
	}
	return ts.body, nil
}

// Metadata is the per-timeseries site and variable description.
type Metadata struct {
	SiteName     string  `json:"site_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	VariableName string  `json:"variable_name"`
}

// ValueRecord is a single parsed observation.
type ValueRecord struct {
	Value    float64   `json:"value"`
	DateTime time.Time `json:"datetime"`
}

// FlatRecord is one fully denormalized output row.
type FlatRecord struct {
	VariableName string    `json:"variable_name"`
	SiteName     string    `json:"site_name"`
	DateTime     time.Time `json:"datetime"`
	Value        float64   `json:"value"`
	Longitude    float64   `json:"longitude"`
	Latitude     float64   `json:"latitude"`
}
