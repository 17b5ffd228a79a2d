// Package backendtest provides an in-memory Executor for tests.
package backendtest

import (
	"context"
	"strings"
	"sync"
)

// Call is one recorded command.
type Call struct {
	Command string
	Args    []string
}

// Line renders the call as a single space-separated command line.
func (c Call) Line() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	return c.Command + " " + strings.Join(c.Args, " ")
}

// Reply is a scripted response.
type Reply struct {
	Value any
	Err   error
}

// Recorder records every command and answers from a per-command script.
// Commands without a scripted reply return (nil, nil).
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	replies map[string][]Reply
	handler func(Call) (any, error)
}

// New creates an empty Recorder.
func New() *Recorder {
	return &Recorder{replies: make(map[string][]Reply)}
}

// On queues a reply for the next call of command. Replies are consumed in order.
func (r *Recorder) On(command string, value any, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies[command] = append(r.replies[command], Reply{Value: value, Err: err})
	return r
}

// Handle answers calls with no queued reply through fn.
func (r *Recorder) Handle(fn func(Call) (any, error)) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = fn
	return r
}

// Do implements backend.Executor.
func (r *Recorder) Do(_ context.Context, command string, args ...string) (any, error) {
	r.mu.Lock()
	call := Call{Command: command, Args: append([]string(nil), args...)}
	r.calls = append(r.calls, call)

	if q := r.replies[command]; len(q) > 0 {
		reply := q[0]
		r.replies[command] = q[1:]
		r.mu.Unlock()
		return reply.Value, reply.Err
	}
	handler := r.handler
	r.mu.Unlock()

	if handler != nil {
		return handler(call)
	}
	return nil, nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Lines returns every recorded call rendered with Call.Line.
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Line()
	}
	return out
}

// Last returns the most recent call, or a zero Call if none.
func (r *Recorder) Last() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}
	}
	return r.calls[len(r.calls)-1]
}

// Reset forgets recorded calls and queued replies.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.replies = make(map[string][]Reply)
}
