package backend

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

// replyError mimics a RESP error reply as go-redis surfaces it.
type replyError string

func (e replyError) Error() string { return string(e) }
func (replyError) RedisError()     {}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      string
		retryable bool
	}{
		{
			name: "unknown index reply",
			err:  replyError("Unknown Index name"),
			code: errors.ErrCodeIndexNotFound,
		},
		{
			name: "no such index reply",
			err:  replyError("db-user-idx: no such index"),
			code: errors.ErrCodeIndexNotFound,
		},
		{
			name: "other reply",
			err:  replyError("ERR Syntax error at offset 3"),
			code: errors.ErrCodeBackendCommand,
		},
		{
			name:      "deadline",
			err:       fmt.Errorf("read: %w", context.DeadlineExceeded),
			code:      errors.ErrCodeNetworkTimeout,
			retryable: true,
		},
		{
			name:      "net timeout",
			err:       &net.OpError{Op: "read", Net: "tcp", Err: timeoutError{}},
			code:      errors.ErrCodeNetworkTimeout,
			retryable: true,
		},
		{
			name:      "connection refused",
			err:       &net.OpError{Op: "dial", Net: "tcp", Err: stderrors.New("connect: connection refused")},
			code:      errors.ErrCodeNetworkUnavailable,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("FT.SEARCH", tt.err)

			require.Error(t, got)
			assert.Equal(t, tt.code, errors.GetCode(got))
			assert.Equal(t, tt.retryable, errors.IsRetryable(got))
			assert.ErrorIs(t, got, tt.err)

			e, ok := errors.As(got)
			require.True(t, ok)
			assert.Equal(t, "FT.SEARCH", e.Details["command"])
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	// Given: errors that are already final
	coded := errors.New(errors.ErrCodeCircuitOpen, "open", nil)

	// Then: they are returned unchanged
	assert.Nil(t, Classify("PING", nil))
	assert.Same(t, coded, Classify("PING", coded))
	assert.Equal(t, context.Canceled, Classify("PING", context.Canceled))
}

func TestIsUnknownIndex(t *testing.T) {
	assert.True(t, IsUnknownIndex(Classify("FT.DROPINDEX", replyError("Unknown Index name"))))
	assert.True(t, IsUnknownIndex(stderrors.New("Unknown index name")))
	assert.True(t, IsUnknownIndex(fmt.Errorf("drop: %w", ErrIndexNotFound)))
	assert.False(t, IsUnknownIndex(stderrors.New("ERR wrong number of arguments")))
	assert.False(t, IsUnknownIndex(nil))
}

func TestExecutorFunc(t *testing.T) {
	var got []string
	exec := ExecutorFunc(func(_ context.Context, command string, args ...string) (any, error) {
		got = append([]string{command}, args...)
		return "OK", nil
	})

	v, err := exec.Do(context.Background(), "JSON.SET", "k", "$", "{}")

	require.NoError(t, err)
	assert.Equal(t, "OK", v)
	assert.Equal(t, []string{"JSON.SET", "k", "$", "{}"}, got)
}

func TestReplyHelpers(t *testing.T) {
	s, ok := AsString([]byte("abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", s)
	_, ok = AsString(int64(1))
	assert.False(t, ok)

	sl, ok := AsSlice([]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, sl)
	_, ok = AsSlice("a")
	assert.False(t, ok)

	tests := []struct {
		in   any
		want int64
	}{
		{int64(7), 7},
		{3, 3},
		{"12", 12},
		{[]byte("5"), 5},
	}
	for _, tt := range tests {
		n, err := AsInt64(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, n)
	}

	_, err := AsInt64("x")
	assert.Equal(t, errors.ErrCodeDecodeFailed, errors.GetCode(err))
	_, err = AsInt64([]any{})
	assert.Equal(t, errors.ErrCodeDecodeFailed, errors.GetCode(err))
}
