package tabular

import (
	"errors"
	"fmt"
)

// ErrMissingInput is returned when an input file does not exist.
var ErrMissingInput = errors.New("missing input file")

// SchemaError reports a required column absent from a file header.
type SchemaError struct {
	File   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.File, e.Column)
}

// ParseError reports a malformed cell. Row is the 1-based line in the file,
// counting the header.
type ParseError struct {
	File   string
	Row    int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: column %q: %v", e.File, e.Row, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	errNegative   = errors.New("value must not be negative")
	errPopularity = errors.New("popularity must be in [0, 100]")
	errEmpty      = errors.New("value is required")
	errNotFinite  = errors.New("value must be a finite number")
)
