package async

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsEveryTask(t *testing.T) {
	pool := NewPool(3)
	tasks := []Task{
		{Name: "a", Execute: func() (any, error) { return 1, nil }},
		{Name: "b", Execute: func() (any, error) { return 2, nil }},
		{Name: "c", Execute: func() (any, error) { return nil, errors.New("boom") }},
	}

	results := pool.Execute(context.Background(), tasks)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results["a"].Data)
	assert.Equal(t, 2, results["b"].Data)
	assert.EqualError(t, results["c"].Err, "boom")
	assert.EqualError(t, FirstError(results), "boom")
}

func TestExecuteCanceledContextReturnsPartial(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	pool := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tasks := []Task{
		{Name: "blocked", Execute: func() (any, error) {
			close(started)
			<-release
			return "late", nil
		}},
		{Name: "queued", Execute: func() (any, error) {
			return "never", nil
		}},
	}

	done := make(chan map[string]Result, 1)
	go func() { done <- pool.Execute(ctx, tasks) }()

	<-started
	cancel()

	// The single worker is still inside the first task, so a canceled
	// request must come back with fewer results than tasks. That size
	// mismatch is what GetSummary turns into ctx.Err() instead of
	// serving a half-built report.
	results := <-done
	assert.Less(t, len(results), len(tasks))
	_, ran := results["queued"]
	assert.False(t, ran, "undelivered task must not appear in the result set")

	// Let the abandoned task finish and take its result so the worker
	// can observe cancellation and exit.
	close(release)
	<-pool.results
}
