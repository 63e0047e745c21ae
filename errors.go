package main

import (
	"errors"
	"fmt"
)

// IOError reports a failure to open, read or write one of the files named on
// the command line.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports input that is not a single well-formed JSON document.
type ParseError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s at offset %d: %v", e.Path, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports that implant.tasks.commands is missing or has the wrong
// shape. Path is the dotted location of the fault.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: %s: %s", e.Path, e.Reason)
}

// SamplingError reports a request for more distinct codes than the code range holds.
type SamplingError struct {
	Requested int
	Available int
}

func (e *SamplingError) Error() string {
	return fmt.Sprintf("sampling error: cannot draw %d distinct codes from %d", e.Requested, e.Available)
}

// errorKind names the error class for log fields.
func errorKind(err error) string {
	var (
		ioErr       *IOError
		parseErr    *ParseError
		schemaErr   *SchemaError
		samplingErr *SamplingError
	)
	switch {
	case errors.As(err, &ioErr):
		return "io"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.As(err, &samplingErr):
		return "sampling"
	default:
		return "unknown"
	}
}
