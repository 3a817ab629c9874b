package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingJob struct {
	ran  *int32
	done chan struct{}
}

func (j *countingJob) Execute(ctx context.Context) error {
	atomic.AddInt32(j.ran, 1)
	select {
	case j.done <- struct{}{}:
	default:
	}
	return nil
}

func TestWorkerPoolRunsJobs(t *testing.T) {
	pool := NewWorkerPool(context.Background())
	defer pool.Close()

	var ran int32
	done := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		if err := pool.Submit(&countingJob{ran: &ran, done: done}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	deadline := time.After(5 * time.Second)
	for i := 0; i < 100; i++ {
		select {
		case <-done:
		case <-deadline:
			t.Fatalf("timed out waiting for jobs, %d completed", atomic.LoadInt32(&ran))
		}
	}

	if got := atomic.LoadInt32(&ran); got != 100 {
		t.Fatalf("expected 100 jobs executed, got %d", got)
	}
}

func TestWorkerPoolSize(t *testing.T) {
	pool := NewWorkerPool(context.Background())
	defer pool.Close()
	if pool.Size() < 1 {
		t.Fatalf("pool must have at least one worker, got %d", pool.Size())
	}
}
