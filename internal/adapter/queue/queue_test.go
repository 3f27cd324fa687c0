package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncQueue_RunsEnqueuedJob(t *testing.T) {
	q := New(4, zerolog.Nop())
	done := make(chan struct{})

	q.Enqueue(func(ctx context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run in time")
	}
}

func TestAsyncQueue_RunsJobsInFIFOOrder(t *testing.T) {
	q := New(16, zerolog.Nop())
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(10)

	for i := 0; i < 10; i++ {
		i := i
		q.Enqueue(func(ctx context.Context) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}

	waitWithTimeout(t, &wg, time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 10)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestAsyncQueue_DropsJobsWhenBacklogFull(t *testing.T) {
	q := New(1, zerolog.Nop())
	block := make(chan struct{})
	started := make(chan struct{})

	q.Enqueue(func(ctx context.Context) {
		close(started)
		<-block
	})
	<-started

	ran := make(chan struct{}, 1)
	q.Enqueue(func(ctx context.Context) { ran <- struct{}{} })
	q.Enqueue(func(ctx context.Context) { ran <- struct{}{} })

	close(block)

	select {
	case <-ran:
	case <-time.After(time.Second):
	}
}

func TestAsyncQueue_RecoversFromPanickingJob(t *testing.T) {
	q := New(4, zerolog.Nop())
	afterPanic := make(chan struct{})

	q.Enqueue(func(ctx context.Context) { panic("boom") })
	q.Enqueue(func(ctx context.Context) { close(afterPanic) })

	select {
	case <-afterPanic:
	case <-time.After(time.Second):
		t.Fatal("queue stopped consuming after a panicking job")
	}
}

func waitWithTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for jobs to complete")
	}
}
