package telemetry

import (
	"context"
	"time"

	"github.com/Aman-CERP/ftmodel/pkg/backend"
	"github.com/Aman-CERP/ftmodel/pkg/query"
)

const searchCommand = "FT.SEARCH"

// Executor decorates a backend.Executor with command metrics and search telemetry.
type Executor struct {
	next      backend.Executor
	metrics   *QueryMetrics
	collector *Collector
	now       func() time.Time
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithQueryMetrics records every successful FT.SEARCH into m.
func WithQueryMetrics(m *QueryMetrics) ExecutorOption {
	return func(e *Executor) {
		e.metrics = m
	}
}

// WithCollector records every command into c.
func WithCollector(c *Collector) ExecutorOption {
	return func(e *Executor) {
		e.collector = c
	}
}

// Instrument wraps next. Without options it only forwards.
func Instrument(next backend.Executor, opts ...ExecutorOption) *Executor {
	e := &Executor{next: next, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do runs the command on the wrapped executor and records it.
func (e *Executor) Do(ctx context.Context, command string, args ...string) (any, error) {
	start := e.now()
	reply, err := e.next.Do(ctx, command, args...)
	elapsed := e.now().Sub(start)

	if e.collector != nil {
		e.collector.ObserveCommand(command, elapsed, err)
	}
	if err != nil || command != searchCommand || len(args) < 2 {
		return reply, err
	}

	total, derr := query.DecodeTotal(reply)
	if derr != nil {
		// The caller's decoder reports the malformed reply.
		return reply, err
	}
	if e.collector != nil {
		e.collector.ObserveMatches(total)
	}
	if e.metrics != nil {
		e.metrics.Record(QueryEvent{
			Index:       args[0],
			Query:       args[1],
			Kind:        searchKind(args),
			ResultCount: total,
			Latency:     elapsed,
			Timestamp:   start,
		})
	}
	return reply, err
}

// searchKind reports KindCount for the LIMIT 0 0 form.
func searchKind(args []string) QueryKind {
	for i := 2; i+2 < len(args); i++ {
		if args[i] == "LIMIT" {
			if args[i+2] == "0" {
				return KindCount
			}
			return KindSearch
		}
	}
	return KindSearch
}
