// internal/app/system/workers/queue.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher accepts jobs for execution.
type Dispatcher interface {
	Submit(job Job) bool
}

// Queue runs jobs on a fixed pool of goroutines.
type Queue struct {
	jobs    chan Job
	log     *zap.Logger
	workers int
	timeout time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewQueue creates a queue holding up to size pending jobs, run by n
// workers. Each job gets its own context bounded by timeout.
func NewQueue(size, n int, timeout time.Duration, logger *zap.Logger) *Queue {
	if n < 1 {
		n = 1
	}
	return &Queue{
		jobs:    make(chan Job, size),
		log:     logger,
		workers: n,
		timeout: timeout,
	}
}

// Start launches the workers.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.run()
	}
	q.log.Info("job queue started",
		zap.Int("workers", q.workers),
		zap.Int("capacity", cap(q.jobs)))
}

// Submit enqueues job. It returns false when the queue is full or stopped;
// the job is dropped and logged.
func (q *Queue) Submit(job Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		q.log.Warn("job dropped: queue stopped", zap.String("job", job.Name))
		return false
	}
	select {
	case q.jobs <- job:
		return true
	default:
		q.log.Warn("job dropped: queue full", zap.String("job", job.Name))
		return false
	}
}

// Stop refuses new jobs, lets the workers drain what is queued and waits
// for them, or until ctx is done.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.stopped {
		q.stopped = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.log.Info("job queue stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) run() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.exec(job)
	}
}

func (q *Queue) exec(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			q.log.Error("job panicked", zap.String("job", job.Name), zap.Any("panic", p))
		}
	}()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		q.log.Error("job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	q.log.Debug("job done", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
}

// Inline runs jobs synchronously on the caller's goroutine. Used by tests
// and by the in-memory backend.
type Inline struct {
	Log *zap.Logger
}

func (d Inline) Submit(job Job) bool {
	if err := job.Run(context.Background()); err != nil && d.Log != nil {
		d.Log.Error("job failed", zap.String("job", job.Name), zap.Error(err))
	}
	return true
}
