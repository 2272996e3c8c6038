package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/metrics"
)

var ErrWorkerStopped = errors.New("worker pool stopped")

// Job is a unit of work for the pool. Abort is called instead of Run when
// the pool drops a queued job, and when Run panics.
type Job interface {
	Run()
	Abort(err error)
}

// Worker is a fixed-size goroutine pool shared by all requests.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	Submit(ctx context.Context, job Job) error
}

type worker struct {
	jobQueue    chan Job
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
	mu          sync.RWMutex
	stopped     bool
	logger      *zap.Logger
}

func NewWorker(concurrency, queueSize int, logger *zap.Logger) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &worker{
		jobQueue:    make(chan Job, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		logger:      logger,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("🚀 Starting worker pool", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker. Running jobs finish; queued jobs are aborted.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("🛑 Stopping worker pool...")
		close(w.stopChan)

		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()

		w.wg.Wait()

		for {
			select {
			case job := <-w.jobQueue:
				metrics.WorkerQueueDepth.Dec()
				job.Abort(ErrWorkerStopped)
			default:
				w.logger.Info("✅ Worker pool stopped")
				return
			}
		}
	})
}

// Submit implements Worker. It blocks while the queue is full.
func (w *worker) Submit(ctx context.Context, job Job) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return ErrWorkerStopped
	}

	select {
	case w.jobQueue <- job:
		metrics.WorkerQueueDepth.Inc()
		return nil
	case <-w.stopChan:
		return ErrWorkerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("👷 Worker stopped", zap.Int("worker_id", workerID))
			return
		case <-ctx.Done():
			w.logger.Debug("👷 Worker context done", zap.Int("worker_id", workerID))
			return
		case job := <-w.jobQueue:
			metrics.WorkerQueueDepth.Dec()
			w.run(workerID, job)
		}
	}
}

func (w *worker) run(workerID int, job Job) {
	metrics.WorkerJobsActive.Inc()
	defer metrics.WorkerJobsActive.Dec()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("❌ Job panicked", zap.Int("worker_id", workerID), zap.Any("panic", r))
			job.Abort(fmt.Errorf("job panicked: %v", r))
		}
	}()

	job.Run()
}

type batchOutcome[T any] struct {
	index int
	value T
	err   error
}

type batchJob[T any] struct {
	ctx     context.Context
	index   int
	fn      func(ctx context.Context, index int) (T, error)
	results chan<- batchOutcome[T]
}

func (j *batchJob[T]) Run() {
	if err := j.ctx.Err(); err != nil {
		j.Abort(err)
		return
	}
	value, err := j.fn(j.ctx, j.index)
	j.results <- batchOutcome[T]{index: j.index, value: value, err: err}
}

func (j *batchJob[T]) Abort(err error) {
	j.results <- batchOutcome[T]{index: j.index, err: err}
}

// RunBatch runs fn for indexes 0..n-1 on the pool and returns values and
// errors aligned by index. One item failing never affects another. Items
// still pending when ctx ends report ctx.Err().
func RunBatch[T any](ctx context.Context, w Worker, n int, fn func(ctx context.Context, index int) (T, error)) ([]T, []error) {
	values := make([]T, n)
	errs := make([]error, n)
	done := make([]bool, n)
	results := make(chan batchOutcome[T], n)

	for i := 0; i < n; i++ {
		job := &batchJob[T]{ctx: ctx, index: i, fn: fn, results: results}
		if err := w.Submit(ctx, job); err != nil {
			results <- batchOutcome[T]{index: i, err: err}
		}
	}

	for received := 0; received < n; received++ {
		select {
		case o := <-results:
			values[o.index], errs[o.index] = o.value, o.err
			done[o.index] = true
		case <-ctx.Done():
			for i := range errs {
				if !done[i] {
					errs[i] = ctx.Err()
				}
			}
			return values, errs
		}
	}

	return values, errs
}
