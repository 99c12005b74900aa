package model

import (
	"context"
	"errors"
)

// Error taxonomy. Wrapped at the point of failure and checked with
// errors.Is at the service boundary. Only ErrFatal aborts the service.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrParse        = errors.New("parse error")
	ErrRemote       = errors.New("remote error")
	ErrNoInputData  = errors.New("no input data")
	ErrSink         = errors.New("sink error")
	ErrFatal        = errors.New("fatal")
)

// ErrorKind maps an error to its taxonomy label for reporting.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrRemote):
		return "remote_error"
	case errors.Is(err, ErrNoInputData):
		return "no_input_data"
	case errors.Is(err, ErrSink):
		return "sink_error"
	case errors.Is(err, ErrFatal):
		return "fatal"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}
