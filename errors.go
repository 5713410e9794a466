package ckanta

import "errors"

var (
	// ErrCallerRequired is returned when a Service is created without a Caller
	ErrCallerRequired = errors.New("api caller is required")
	// ErrInvalidObject is returned for an unknown target object
	ErrInvalidObject = errors.New("invalid target object")
	// ErrUnsupported is returned when an operation does not apply to an object
	ErrUnsupported = errors.New("operation not supported")
	// ErrMissingID is returned when an object id is required but empty
	ErrMissingID = errors.New("target object id required")
	// ErrMissingInput is returned when an upload has no input file
	ErrMissingInput = errors.New("input file required")
	// ErrWriterRequired is returned when a dump has no output writer
	ErrWriterRequired = errors.New("output writer required")
	// ErrEmptyInput is returned when an upload file has no header row
	ErrEmptyInput = errors.New("input file is empty")
	// ErrUnknownState is returned when an owner org has no national-states entry
	ErrUnknownState = errors.New("national state not found")
	// ErrMalformedStates is returned when national-states cannot be parsed
	ErrMalformedStates = errors.New("malformed national-states entry")
)
