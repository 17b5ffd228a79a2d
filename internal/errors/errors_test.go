package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Unwrap_PreservesCause(t *testing.T) {
	// Given: an underlying error
	cause := errors.New("connection reset")

	// When: wrapping it in a coded Error
	err := New(ErrCodeBackendCommand, "FT.SEARCH failed", cause)

	// Then: the cause is reachable through the chain
	require.NotNil(t, err)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "field error",
			code:     ErrCodeFieldNotFound,
			message:  "field price not in schema",
			expected: "[ERR_407_FIELD_NOT_FOUND] field price not in schema",
		},
		{
			name:     "network error",
			code:     ErrCodeNetworkTimeout,
			message:  "request timed out",
			expected: "[ERR_301_NETWORK_TIMEOUT] request timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	// Given: a sentinel and an error with the same code
	sentinel := Sentinel(ErrCodeMultiSort)
	err := Newf(ErrCodeMultiSort, "sort on %s rejected", "age")

	// Then: errors.Is matches by code, even through fmt wrapping
	assert.True(t, errors.Is(err, sentinel))
	assert.True(t, errors.Is(fmt.Errorf("query: %w", err), sentinel))
	assert.False(t, errors.Is(err, Sentinel(ErrCodeInvalidSort)))
}

func TestNew_DerivesCategory(t *testing.T) {
	tests := []struct {
		code     string
		expected Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeLockFailed, CategoryIO},
		{ErrCodeIndexNotFound, CategoryBackend},
		{ErrCodeInvalidSchema, CategoryValidation},
		{ErrCodeDecodeFailed, CategoryInternal},
		{"BOGUS", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.code, "x", nil).Category)
		})
	}
}

func TestNew_OnlyTransportErrorsAreRetryable(t *testing.T) {
	// Given: a transport failure and an error reply
	timeout := New(ErrCodeNetworkTimeout, "i/o timeout", nil)
	reply := New(ErrCodeBackendCommand, "ERR syntax error", nil)

	// Then: only the transport failure is retryable and warning-level
	assert.True(t, IsRetryable(timeout))
	assert.Equal(t, SeverityWarning, timeout.Severity)
	assert.False(t, IsRetryable(reply))
	assert.Equal(t, SeverityError, reply.Severity)
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrCodeIndexFailed, "create failed", nil)))
	assert.False(t, IsFatal(New(ErrCodeInvalidQuery, "bad", nil)))
	assert.False(t, IsFatal(nil))
}

func TestWrap(t *testing.T) {
	// Given: a nil error
	// Then: Wrap returns a nil *Error
	assert.Nil(t, Wrap(ErrCodeInternal, nil))

	// Given: a plain error
	cause := errors.New("boom")

	// When: wrapped
	err := Wrap(ErrCodeEncodeFailed, cause)

	// Then: the message is copied and the cause kept
	assert.Equal(t, "boom", err.Message)
	assert.Same(t, cause, err.Cause)
}

func TestError_WithDetailAndSuggestion(t *testing.T) {
	err := New(ErrCodeUnknownModel, "unknown model", nil).
		WithDetail("model", "Widget").
		WithSuggestion("Register the model in .ftmodel.yaml")

	assert.Equal(t, "Widget", err.Details["model"])
	assert.Equal(t, "Register the model in .ftmodel.yaml", err.Suggestion)
}

func TestGetCodeAndCategory_ThroughWrapping(t *testing.T) {
	// Given: a coded error wrapped by fmt
	err := fmt.Errorf("outer: %w", New(ErrCodeInvalidPageRange, "perPage must be positive", nil))

	// Then: code and category are still found
	assert.Equal(t, ErrCodeInvalidPageRange, GetCode(err))
	assert.Equal(t, CategoryValidation, GetCategory(err))
	assert.Empty(t, GetCode(errors.New("plain")))
	assert.Empty(t, GetCategory(errors.New("plain")))
}
