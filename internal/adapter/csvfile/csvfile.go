// Package csvfile writes and reads flat groundwater records as CSV with a
// fixed column contract:
//
//	variable_name,site_name,datetime,value,longitude,latitude
//
// Floats are written in plain decimal notation with the fewest digits that
// round-trip; datetimes use [DateTimeLayout].
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/couchcryptid/groundwater-etl/internal/domain"
)

// DateTimeLayout is the textual datetime format of the datetime column. It
// keeps the millisecond precision of observation timestamps.
const DateTimeLayout = "2006-01-02 15:04:05.000"

// Header is the required column order.
var Header = []string{"variable_name", "site_name", "datetime", "value", "longitude", "latitude"}

// IOError reports a failure to create, write or close the destination.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// WriteTable creates or truncates path and writes the header followed by one
// row per record. The file is closed on every return path.
func WriteTable(records []domain.FlatRecord, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Op: "close", Path: path, Err: cerr}
		}
	}()

	if err := Write(f, records); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Write encodes records onto w with the header first.
func Write(w io.Writer, records []domain.FlatRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	row := make([]string, len(Header))
	for _, r := range records {
		row[0] = r.VariableName
		row[1] = r.SiteName
		row[2] = r.DateTime.Format(DateTimeLayout)
		row[3] = formatFloat(r.Value)
		row[4] = formatFloat(r.Longitude)
		row[5] = formatFloat(r.Latitude)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTable parses a file produced by WriteTable.
func ReadTable(path string) ([]domain.FlatRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// Read decodes CSV written by Write, checking the header first.
func Read(r io.Reader) ([]domain.FlatRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	records := []domain.FlatRecord{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
}

func parseRow(row []string) (domain.FlatRecord, error) {
	dt, err := time.Parse(DateTimeLayout, row[2])
	if err != nil {
		return domain.FlatRecord{}, &domain.FormatError{Field: "datetime", Value: row[2], Err: err}
	}

	floats := make([]float64, 3)
	for i, col := range []int{3, 4, 5} {
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			return domain.FlatRecord{}, &domain.FormatError{Field: Header[col], Value: row[col], Err: err}
		}
		floats[i] = v
	}

	return domain.FlatRecord{
		VariableName: row[0],
		SiteName:     row[1],
		DateTime:     dt,
		Value:        floats[0],
		Longitude:    floats[1],
		Latitude:     floats[2],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
