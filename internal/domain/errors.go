package domain

import "fmt"

// SchemaError reports a required path or field missing from the response.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error at %s: %s", e.Path, e.Reason)
}

// FormatError reports a value that is present but cannot be parsed into its
// target type.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error in %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func missing(path string) *SchemaError {
	return &SchemaError{Path: path, Reason: "missing"}
}
