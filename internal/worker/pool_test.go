package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	count atomic.Int64
	done  chan struct{}
	once  sync.Once
	want  int64
}

func (j *countingJob) Process(ctx context.Context) error {
	if j.count.Add(1) >= j.want {
		j.once.Do(func() { close(j.done) })
	}
	return nil
}

type failingJob struct {
	processed chan struct{}
}

func (j *failingJob) Process(ctx context.Context) error {
	defer close(j.processed)
	return errors.New("job failed")
}

func TestPoolProcessesJobs(t *testing.T) {
	pool := NewPool(2, 10)
	pool.Start()
	defer pool.Stop()

	job := &countingJob{done: make(chan struct{}), want: 5}
	for i := 0; i < 5; i++ {
		pool.Enqueue(job)
	}

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs were not processed in time")
	}
	assert.GreaterOrEqual(t, job.count.Load(), int64(5))
}

func TestPoolSurvivesJobError(t *testing.T) {
	pool := NewPool(1, 10)
	pool.Start()
	defer pool.Stop()

	failing := &failingJob{processed: make(chan struct{})}
	pool.Enqueue(failing)
	select {
	case <-failing.processed:
	case <-time.After(2 * time.Second):
		t.Fatal("failing job was not processed")
	}

	// The worker keeps running after a job error.
	job := &countingJob{done: make(chan struct{}), want: 1}
	pool.Enqueue(job)
	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not recover after job error")
	}
}

func TestPoolTryEnqueueFull(t *testing.T) {
	// Never started, so nothing drains the queue.
	pool := NewPool(1, 1)

	job := &countingJob{done: make(chan struct{}), want: 1}
	assert.True(t, pool.TryEnqueue(job))
	assert.False(t, pool.TryEnqueue(job))
}

func TestPoolStopWaitsForWorkers(t *testing.T) {
	pool := NewPool(3, 10)
	pool.Start()

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

type sweeperStub struct {
	expired   int
	swept     int
	sweepErr  error
	gotCutoff time.Time
}

func (s *sweeperStub) ExpireStale(ctx context.Context) int { return s.expired }

func (s *sweeperStub) ReconcileOrphanedLocks(ctx context.Context, cutoff time.Time) (int, error) {
	s.gotCutoff = cutoff
	return s.swept, s.sweepErr
}

func TestTradeSweepJob(t *testing.T) {
	sweeper := &sweeperStub{expired: 2, swept: 1}
	job := &TradeSweepJob{Trades: sweeper, MaxLockAge: time.Hour}

	require.NoError(t, job.Process(context.Background()))
	assert.WithinDuration(t, time.Now().Add(-time.Hour), sweeper.gotCutoff, time.Minute)
}

func TestTradeSweepJobPropagatesError(t *testing.T) {
	sweeper := &sweeperStub{sweepErr: errors.New("db down")}
	job := &TradeSweepJob{Trades: sweeper, MaxLockAge: time.Hour}

	assert.Error(t, job.Process(context.Background()))
}
