package dataset

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is matched by errors.Is for files that are neither CSV nor Excel
var ErrUnsupportedFormat = errors.New("unsupported file format, use a .csv or .xlsx file")

// UnsupportedFormatError reports the offending path and extension
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: %q: %v", e.Path, e.Ext, ErrUnsupportedFormat)
}

// Is makes errors.Is(err, ErrUnsupportedFormat) hold
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// LoadError wraps an I/O or parse failure while reading or writing a table
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *LoadError) Unwrap() error {
	return e.Err
}
