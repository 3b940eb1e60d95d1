// Package domain models USGS Water Services groundwater-level time series and
// flattens them into tabular observation records.
//
// # Data Source
//
// Observations come from the USGS "instantaneous values" service
// (https://waterservices.usgs.gov/nwis/iv/) requested with format=json. The
// response is a WaterML-flavoured JSON document; everything this package needs
// lives under value.timeSeries.
//
// # Response Conventions
//
// Each timeseries has three regions:
//
//	sourceInfo   site name and WGS-84 coordinates
//	             (sourceInfo.geoLocation.geogLocation.latitude/longitude)
//	variable     measured quantity, e.g. "Groundwater level above NGVD 1929, feet"
//	values       a list of value-sets, each holding a list of observation entries
//
// The values list always carries a single value-set in practice, even though
// each value-set can already hold any number of entries. Only values[0] is
// read. An empty values list is reported as a [SchemaError] rather than treated
// as "no observations".
//
// Observation values are strings ("-64.58"); coordinates are usually JSON
// numbers. Both are coerced to float64 whatever their JSON type, and NaN or
// infinite values are refused. A coordinate that cannot be coerced is a
// [SchemaError]; a bad observation value or timestamp is a [FormatError].
//
// Timeseries are decoded one at a time as they are extracted, so the first
// malformed series in response order is the one reported.
//
// Timestamp format:
//
//	YYYY-MM-DDTHH:MM:SS.fff  →  e.g. "2022-06-28T13:16:00.000"
//	Exactly three fractional digits and no zone suffix. Timestamps are
//	interpreted as wall-clock time and stored in UTC. Other precisions are
//	rejected with a [FormatError] instead of being truncated or padded.
//
// # Ordering
//
// Flattened records are ordered by (variable_name, site_name, datetime) with a
// stable sort, so duplicate site/variable/timestamp rows keep their response
// order. See [SortRecords].
package domain
