package errors

import (
	"errors"
	"fmt"
)

// Error codes identifying the pipeline phase a failure belongs to.
const (
	CodeSourceConn    = "SOURCE_CONNECTION"
	CodeWarehouseConn = "WAREHOUSE_CONNECTION"
	CodeExtract       = "EXTRACT_FAILED"
	CodeDimensionLoad = "DIMENSION_LOAD_FAILED"
	CodeFactLoad      = "FACT_LOAD_FAILED"
	CodeRunLog        = "RUN_LOG_FAILED"
)

// Error represents a typed pipeline error carrying the failing phase.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, "INTERNAL_ERROR", "internal error")
}

// Code extracts the phase code from an error chain, or "" when untyped.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
