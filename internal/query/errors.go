package query

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes query failures.
type ErrorCode string

const (
	// ErrCodeIOFailure indicates the log could not be read.
	ErrCodeIOFailure ErrorCode = "IO_FAILURE"

	// ErrCodeDecodeFailure indicates a visible line held a malformed payload.
	ErrCodeDecodeFailure ErrorCode = "DECODE_FAILURE"

	// ErrCodeInvalidFilter indicates the filter, sort or projection was
	// rejected before any read.
	ErrCodeInvalidFilter ErrorCode = "INVALID_FILTER"
)

// Error is a failed query. Every failure is fatal to the call; there are no
// partial results.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Line is the 1-based log line of a decode failure, zero otherwise.
	Line int

	// QueryID identifies the failed query in logs.
	QueryID string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// IsIOError returns true if the log could not be read.
func IsIOError(err error) bool {
	return hasCode(err, ErrCodeIOFailure)
}

// IsDecodeError returns true if a visible log line failed to decode.
func IsDecodeError(err error) bool {
	return hasCode(err, ErrCodeDecodeFailure)
}

// IsFilterError returns true if the query was rejected before the scan.
func IsFilterError(err error) bool {
	return hasCode(err, ErrCodeInvalidFilter)
}

func hasCode(err error, code ErrorCode) bool {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

// CodeOf returns the code of a query error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}
