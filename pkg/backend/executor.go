package backend

import (
	"context"
	stderrors "errors"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

// Executor sends one command to the backend and returns its raw reply.
//
// A missing value (nil bulk reply) is returned as (nil, nil).
// Implementations must be safe for concurrent use.
type Executor interface {
	Do(ctx context.Context, command string, args ...string) (any, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, command string, args ...string) (any, error)

// Do calls f.
func (f ExecutorFunc) Do(ctx context.Context, command string, args ...string) (any, error) {
	return f(ctx, command, args...)
}

var (
	// ErrIndexNotFound matches errors reporting an unknown search index.
	ErrIndexNotFound = errors.Sentinel(errors.ErrCodeIndexNotFound)

	// ErrCommand matches any other error reply from the backend.
	ErrCommand = errors.Sentinel(errors.ErrCodeBackendCommand)

	// ErrTimeout matches transport timeouts.
	ErrTimeout = errors.Sentinel(errors.ErrCodeNetworkTimeout)

	// ErrUnavailable matches connection failures.
	ErrUnavailable = errors.Sentinel(errors.ErrCodeNetworkUnavailable)
)

// unknownIndexReplies are the reply texts RediSearch versions use for a missing index.
var unknownIndexReplies = []string{
	"unknown index name",
	"no such index",
}

// Classify converts an adapter error into a coded error.
// Nil, coded errors and context cancellation pass through unchanged.
func Classify(command string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}

	var code string
	var replyErr redis.Error
	var netErr net.Error
	switch {
	case stderrors.As(err, &replyErr) && isUnknownIndexText(err.Error()):
		code = errors.ErrCodeIndexNotFound
	case stderrors.As(err, &replyErr):
		code = errors.ErrCodeBackendCommand
	case stderrors.Is(err, context.DeadlineExceeded):
		code = errors.ErrCodeNetworkTimeout
	case stderrors.As(err, &netErr) && netErr.Timeout():
		code = errors.ErrCodeNetworkTimeout
	default:
		code = errors.ErrCodeNetworkUnavailable
	}

	e := errors.New(code, command+": "+err.Error(), err).WithDetail("command", command)
	switch code {
	case errors.ErrCodeIndexNotFound:
		e.WithSuggestion("Create the index first: ftmodel create-index --class <model>")
	case errors.ErrCodeNetworkUnavailable, errors.ErrCodeNetworkTimeout:
		e.WithSuggestion("Check that Redis is running and redis.addr is correct (ftmodel doctor)")
	}
	return e
}

// IsUnknownIndex reports whether err says the index does not exist.
// It recognizes both coded errors and raw reply text from other executors.
func IsUnknownIndex(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrIndexNotFound) {
		return true
	}
	return isUnknownIndexText(err.Error())
}

func isUnknownIndexText(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range unknownIndexReplies {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
