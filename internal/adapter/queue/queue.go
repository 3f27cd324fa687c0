// Package queue implements a single-consumer, in-process FIFO queue for
// best-effort background work, generalizing the teacher's fire-and-forget
// "go s.deliverWithRetries(...)" idiom into a bounded, drainable channel.
package queue

import (
	"context"

	"github.com/rs/zerolog"
)

// AsyncQueue runs enqueued jobs one at a time on a background goroutine so
// request handlers never block on side effects like auto-order creation.
type AsyncQueue struct {
	jobs chan func(ctx context.Context)
	log  zerolog.Logger
}

// New creates a new AsyncQueue with the given backlog capacity and starts
// its consumer goroutine.
func New(capacity int, log zerolog.Logger) *AsyncQueue {
	q := &AsyncQueue{
		jobs: make(chan func(ctx context.Context), capacity),
		log:  log,
	}
	go q.consume()
	return q
}

// Enqueue schedules job to run on the consumer goroutine. If the backlog is
// full, job is dropped and logged rather than blocking the caller.
func (q *AsyncQueue) Enqueue(job func(ctx context.Context)) {
	select {
	case q.jobs <- job:
	default:
		q.log.Warn().Msg("async queue backlog full, dropping job")
	}
}

// consume drains jobs one at a time for the lifetime of the process.
func (q *AsyncQueue) consume() {
	for job := range q.jobs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					q.log.Error().Interface("panic", r).Msg("async queue job panicked")
				}
			}()
			job(context.Background())
		}()
	}
}
