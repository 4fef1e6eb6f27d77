// Package errors defines the error taxonomy shared by the pipeline and the
// HTTP layer. Load and schema errors are fatal: they propagate uncaught to
// the caller of the training or prediction entrypoints, since retrying a
// deterministic parse failure cannot fix it. Not-found conditions are
// recoverable and surfaced to the caller explicitly.
package errors

import (
	"errors"
	"fmt"
)

// LoadError reports a raw source file that could not be parsed into its
// expected schema. Feature correctness cannot be assumed downstream of a
// bad parse, so loaders never fall back to an empty table.
type LoadError struct {
	Source string
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %s: %v", e.Source, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError wraps a parse failure for the named source.
func NewLoadError(source, path string, err error) *LoadError {
	return &LoadError{Source: source, Path: path, Err: err}
}

// Loadf is a convenience for schema violations discovered mid-parse.
func Loadf(source, path, format string, args ...interface{}) *LoadError {
	return &LoadError{Source: source, Path: path, Err: fmt.Errorf(format, args...)}
}

// IsLoadError reports whether err is (or wraps) a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// SchemaMismatchError reports a disagreement between the feature columns
// recorded in a trained artifact and the columns produced at inference
// time. This is never silently coerced.
type SchemaMismatchError struct {
	Want []string
	Got  []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature schema mismatch: artifact has %d columns, assembler produced %d", len(e.Want), len(e.Got))
}

// NewSchemaMismatch builds a SchemaMismatchError from the two column lists.
func NewSchemaMismatch(want, got []string) *SchemaMismatchError {
	return &SchemaMismatchError{Want: append([]string(nil), want...), Got: append([]string(nil), got...)}
}

// IsSchemaMismatch reports whether err is (or wraps) a SchemaMismatchError.
func IsSchemaMismatch(err error) bool {
	var se *SchemaMismatchError
	return errors.As(err, &se)
}

// NotFoundError reports a requested country with no underlying feature
// data at all. The inference boundary returns this instead of fabricating
// a default probability.
type NotFoundError struct {
	Country string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no feature data for country %q", e.Country)
}

// NewNotFound builds a NotFoundError for the given country.
func NewNotFound(country string) *NotFoundError {
	return &NotFoundError{Country: country}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
