package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"plain",
			&Error{Code: ErrCodeInvalidFilter, Message: "query rejected"},
			"INVALID_FILTER: query rejected",
		},
		{
			"with line and cause",
			&Error{Code: ErrCodeDecodeFailure, Message: "malformed record payload", Line: 2, Err: errors.New("boom")},
			"DECODE_FAILURE: malformed record payload (line 2): boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	ioErr := &Error{Code: ErrCodeIOFailure}
	wrapped := fmt.Errorf("outer: %w", &Error{Code: ErrCodeDecodeFailure})
	plain := errors.New("plain")

	assert.True(t, IsIOError(ioErr))
	assert.False(t, IsDecodeError(ioErr))
	assert.True(t, IsDecodeError(wrapped))
	assert.False(t, IsFilterError(wrapped))
	assert.True(t, IsFilterError(&Error{Code: ErrCodeInvalidFilter}))

	assert.False(t, IsIOError(plain))
	assert.False(t, IsDecodeError(nil))

	assert.Equal(t, ErrCodeDecodeFailure, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(plain))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &Error{Code: ErrCodeIOFailure, Err: cause}
	assert.ErrorIs(t, err, cause)
}
