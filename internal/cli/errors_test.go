package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/query"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantExit int
		wantCode string
		details  map[string]any
		traceID  string
	}{
		{
			name:     "filter parse error",
			err:      &filter.Error{Path: "age.$ne", Message: "unknown operator"},
			wantExit: ExitCommandError,
			wantCode: ErrCodeInvalidQuery,
		},
		{
			name:     "rejected by engine",
			err:      &query.Error{Code: query.ErrCodeInvalidFilter, Message: "bad operand"},
			wantExit: ExitCommandError,
			wantCode: ErrCodeInvalidQuery,
			details:  map[string]any{"query_code": "INVALID_FILTER"},
		},
		{
			name:     "io failure",
			err:      &query.Error{Code: query.ErrCodeIOFailure, Message: "open", QueryID: "q1"},
			wantExit: ExitFailure,
			wantCode: ErrCodeReadFailed,
			details:  map[string]any{"query_code": "IO_FAILURE"},
			traceID:  "q1",
		},
		{
			name:     "decode failure",
			err:      &query.Error{Code: query.ErrCodeDecodeFailure, Message: "bad", Line: 7, QueryID: "q2"},
			wantExit: ExitFailure,
			wantCode: ErrCodeDecodeFailed,
			details:  map[string]any{"query_code": "DECODE_FAILURE", "line": 7},
			traceID:  "q2",
		},
		{
			name:     "anything else",
			err:      errors.New("boom"),
			wantExit: ExitFailure,
			wantCode: ErrCodeGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.Equal(t, tt.wantExit, got.exit)
			assert.Equal(t, tt.wantCode, got.code)
			assert.Equal(t, tt.details, got.details)
			assert.Equal(t, tt.traceID, got.traceID)
		})
	}
}

func TestQueryError_WrapsCause(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}
	cause := &query.Error{Code: query.ErrCodeIOFailure, Message: "open"}

	err := queryError(f, cause)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, query.IsIOError(err))
	assert.NotContains(t, buf.String(), `"details":null`)
}

func TestReport_NoDetailsOmitted(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	report(f, errors.New("boom"))
	assert.Equal(t, `{"status":"error","error":{"code":"E001","message":"boom"}}`+"\n", buf.String())
}
