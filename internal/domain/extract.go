package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// TimestampLayout is the fixed observation timestamp format, e.g.
// "2022-06-28T13:16:00.000". The fraction must have exactly three digits.
const TimestampLayout = "2006-01-02T15:04:05.000"

const timeSeriesPath = "value.timeSeries"

var errNotFinite = errors.New("not a finite number")

// DecodeResponse reads a full USGS JSON document. A document that is valid
// JSON but not an object is a [SchemaError].
func DecodeResponse(r io.Reader) (RawResponse, error) {
	var resp RawResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return RawResponse{}, &SchemaError{Path: "response", Reason: "not an object"}
		}
		return RawResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// ExtractAllTimeseries returns every timeseries found at value.timeSeries.
// Elements are not inspected here; see [ExtractMetadata] and [ExtractValues].
func ExtractAllTimeseries(resp RawResponse) ([]RawTimeseries, error) {
	value, err := decodeObject("value", resp.Value)
	if err != nil {
		return nil, err
	}
	items, err := decodeArray(timeSeriesPath, value["timeSeries"])
	if err != nil {
		return nil, err
	}

	series := make([]RawTimeseries, len(items))
	for i, item := range items {
		series[i] = NewRawTimeseries(item)
	}
	return series, nil
}

// ExtractMetadata reads the site name, coordinates and variable name of a
// timeseries. Coordinates may be JSON numbers or numeric strings; anything
// missing or not coercible is a [SchemaError].
func ExtractMetadata(ts RawTimeseries) (Metadata, error) {
	root, err := decodeObject("timeseries", ts.body)
	if err != nil {
		return Metadata{}, err
	}

	sourceInfo, err := decodeObject("sourceInfo", root["sourceInfo"])
	if err != nil {
		return Metadata{}, err
	}
	siteName, err := stringField("sourceInfo.siteName", sourceInfo["siteName"])
	if err != nil {
		return Metadata{}, err
	}
	geoLocation, err := decodeObject("sourceInfo.geoLocation", sourceInfo["geoLocation"])
	if err != nil {
		return Metadata{}, err
	}
	geog, err := decodeObject("sourceInfo.geoLocation.geogLocation", geoLocation["geogLocation"])
	if err != nil {
		return Metadata{}, err
	}
	variable, err := decodeObject("variable", root["variable"])
	if err != nil {
		return Metadata{}, err
	}
	variableName, err := stringField("variable.variableName", variable["variableName"])
	if err != nil {
		return Metadata{}, err
	}

	lat, err := coordinate("sourceInfo.geoLocation.geogLocation.latitude", geog["latitude"])
	if err != nil {
		return Metadata{}, err
	}
	lon, err := coordinate("sourceInfo.geoLocation.geogLocation.longitude", geog["longitude"])
	if err != nil {
		return Metadata{}, err
	}

	return Metadata{
		SiteName:     siteName,
		Latitude:     lat,
		Longitude:    lon,
		VariableName: variableName,
	}, nil
}

// ExtractValues parses the observations of the first value-set, keeping their
// order. The values list holds a single value-set in every response seen so
// far; later value-sets are ignored and an empty list is a schema error.
func ExtractValues(ts RawTimeseries) ([]ValueRecord, error) {
	root, err := decodeObject("timeseries", ts.body)
	if err != nil {
		return nil, err
	}

	sets, err := decodeArray("values", root["values"])
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, &SchemaError{Path: "values", Reason: "expected at least one value-set"}
	}
	first, err := decodeObject("values[0]", sets[0])
	if err != nil {
		return nil, err
	}
	entries, err := decodeArray("values[0].value", first["value"])
	if err != nil {
		return nil, err
	}

	records := make([]ValueRecord, 0, len(entries))
	for i, raw := range entries {
		prefix := fmt.Sprintf("values[0].value[%d]", i)
		rec, err := parseEntry(prefix, raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseEntry(prefix string, raw json.RawMessage) (ValueRecord, error) {
	entry, err := decodeObject(prefix, raw)
	if err != nil {
		return ValueRecord{}, err
	}

	if isNull(entry["value"]) {
		return ValueRecord{}, missing(prefix + ".value")
	}
	value, text, err := parseNumber(entry["value"])
	if err != nil {
		return ValueRecord{}, &FormatError{Field: prefix + ".value", Value: text, Err: err}
	}

	rawDT := entry["dateTime"]
	if isNull(rawDT) {
		return ValueRecord{}, missing(prefix + ".dateTime")
	}
	var s string
	if err := json.Unmarshal(rawDT, &s); err != nil {
		return ValueRecord{}, &FormatError{Field: prefix + ".dateTime", Value: string(rawDT), Err: errors.New("not a string")}
	}
	dt, err := ParseTimestamp(s)
	if err != nil {
		return ValueRecord{}, &FormatError{Field: prefix + ".dateTime", Value: s, Err: err}
	}

	return ValueRecord{Value: value, DateTime: dt}, nil
}

// ParseTimestamp parses an observation timestamp in TimestampLayout.
// Surrounding whitespace is not accepted.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(TimestampLayout, s)
}

type object map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) == 0 || bytes.Equal(s, []byte("null"))
}

// decodeObject reads raw as a JSON object. Absent or null is reported as
// missing.
func decodeObject(path string, raw json.RawMessage) (object, error) {
	if isNull(raw) {
		return nil, missing(path)
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &SchemaError{Path: path, Reason: "not an object"}
	}
	return obj, nil
}

func decodeArray(path string, raw json.RawMessage) ([]json.RawMessage, error) {
	if isNull(raw) {
		return nil, missing(path)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &SchemaError{Path: path, Reason: "not an array"}
	}
	return items, nil
}

func stringField(path string, raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", missing(path)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &SchemaError{Path: path, Reason: "not a string"}
	}
	return s, nil
}

func coordinate(path string, raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return 0, missing(path)
	}
	v, text, err := parseNumber(raw)
	if err != nil {
		return 0, &SchemaError{Path: path, Reason: fmt.Sprintf("not coercible to float: %s", text)}
	}
	return v, nil
}

// parseNumber coerces a JSON number or numeric string to a finite float64.
// It also returns the text it tried to parse, for error reporting.
func parseNumber(raw json.RawMessage) (float64, string, error) {
	text := string(bytes.TrimSpace(raw))
	if text != "" && text[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, text, err
		}
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, text, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, text, errNotFinite
	}
	return v, text, nil
}
