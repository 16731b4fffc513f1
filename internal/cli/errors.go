package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/query"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeInvalidFlag  = "E002" // Invalid or conflicting flags
	ErrCodeInvalidQuery = "E003" // Filter, sort or projection rejected
	ErrCodeConfig       = "E004" // Config file unreadable or invalid
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeReadFailed   = "E006" // Log could not be read
	ErrCodeDecodeFailed = "E007" // Malformed record payload
	ErrCodeWriteFailed  = "E008" // Export write error
)

// commandError reports a failure in the configured format and returns the
// matching ExitError.
func commandError(f *OutputFormatter, exitCode int, code, message string, details any) error {
	_ = f.Error(code, message, details)
	return NewExitError(exitCode, fmt.Sprintf("%s: %s", code, message))
}

// failure is a classified query error.
type failure struct {
	exit    int
	code    string
	message string
	details map[string]any
	traceID string
}

// classify maps a query or parse error to a CLI error code. Filter
// problems are command errors; read and decode failures are query failures.
func classify(err error) failure {
	var qe *query.Error
	if !errors.As(err, &qe) {
		var fe *filter.Error
		if errors.As(err, &fe) {
			return failure{exit: ExitCommandError, code: ErrCodeInvalidQuery, message: fe.Error()}
		}
		return failure{exit: ExitFailure, code: ErrCodeGeneric, message: err.Error()}
	}

	f := failure{
		exit:    ExitFailure,
		code:    ErrCodeGeneric,
		message: qe.Error(),
		details: map[string]any{"query_code": string(qe.Code)},
		traceID: qe.QueryID,
	}
	if qe.Line > 0 {
		f.details["line"] = qe.Line
	}
	switch qe.Code {
	case query.ErrCodeInvalidFilter:
		f.code, f.exit = ErrCodeInvalidQuery, ExitCommandError
	case query.ErrCodeIOFailure:
		f.code = ErrCodeReadFailed
	case query.ErrCodeDecodeFailure:
		f.code = ErrCodeDecodeFailed
	}
	return f
}

// report writes a classified failure without ending the command.
func report(f *OutputFormatter, err error) failure {
	fl := classify(err)
	if fl.details == nil {
		_ = f.ErrorWithTrace(fl.code, fl.message, nil, fl.traceID)
	} else {
		_ = f.ErrorWithTrace(fl.code, fl.message, fl.details, fl.traceID)
	}
	return fl
}

// queryError reports a failed query and returns the matching ExitError.
func queryError(f *OutputFormatter, err error) error {
	fl := report(f, err)
	return WrapExitError(fl.exit, fl.code, err)
}
