package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoJobsAvailable is returned by Dequeue when the queue is empty.
var (
	ErrNoJobsAvailable = errors.New("no jobs available")
	ErrJobNotFound     = errors.New("job not found")
	ErrNotCancellable  = errors.New("job is not pending or retrying")
)

// Worker processes jobs from a queue
type Worker struct {
	store    Store
	config   WorkerConfig
	logger   zerolog.Logger
	handlers map[string]JobHandler
	mu       sync.RWMutex
	stopped  bool
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a new job worker
func NewWorker(store Store, config WorkerConfig, logger zerolog.Logger) *Worker {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}
	return &Worker{
		store:    store,
		config:   config,
		logger:   logger.With().Str("component", "jobs").Str("queue", config.Queue).Logger(),
		handlers: make(map[string]JobHandler),
		stop:     make(chan struct{}),
	}
}

// RegisterHandler registers a job handler for a specific job type
func (w *Worker) RegisterHandler(handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[handler.GetType()] = handler
	w.logger.Info().Str("type", handler.GetType()).Msg("✅ Registered job handler")
}

// Start starts the worker goroutines
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("worker is stopped, cannot restart")
	}
	w.mu.Unlock()

	w.logger.Info().Int("concurrency", w.config.Concurrency).Msg("🚀 Starting job worker")

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.runWorker(ctx, i+1)
	}

	return nil
}

// Stop signals the workers and waits for in-flight jobs to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.stop)
	}
	w.mu.Unlock()

	w.logger.Info().Msg("🛑 Stopping job worker...")
	w.wg.Wait()
	w.logger.Info().Msg("✅ Job worker stopped")
}

// Wait waits for all workers to finish
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) runWorker(ctx context.Context, workerID int) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			if err := w.processNextJob(ctx, workerID); err != nil && !errors.Is(err, ErrNoJobsAvailable) {
				w.logger.Warn().Err(err).Int("worker", workerID).Msg("⚠️ Worker error")
			}
		}
	}
}

// processNextJob claims and runs one job
func (w *Worker) processNextJob(ctx context.Context, workerID int) error {
	job, err := w.store.Dequeue(ctx, w.config.Queue)
	if err != nil {
		return fmt.Errorf("failed to dequeue job: %w", err)
	}
	if job == nil {
		return ErrNoJobsAvailable
	}

	log := w.logger.With().
		Int("worker", workerID).
		Str("job_id", job.ID.String()).
		Str("type", job.Type).
		Int("attempt", job.Attempts).
		Logger()
	log.Debug().Msg("🔨 Processing job")

	w.mu.RLock()
	handler, exists := w.handlers[job.Type]
	w.mu.RUnlock()

	if !exists {
		log.Error().Msg("❌ No handler registered for job type")
		return w.store.MarkFailed(ctx, job.ID, fmt.Errorf("no handler registered for job type: %s", job.Type))
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	start := time.Now()
	err = runHandler(jobCtx, handler, job)
	duration := time.Since(start)

	if err != nil {
		log.Warn().Err(err).Dur("took", duration).Msg("❌ Job failed")
		if markErr := w.store.MarkFailed(ctx, job.ID, err); markErr != nil {
			return fmt.Errorf("failed to mark job as failed: %w", markErr)
		}
		return nil
	}

	log.Info().Dur("took", duration).Msg("✅ Job completed")
	if err := w.store.MarkCompleted(ctx, job.ID, nil); err != nil {
		return fmt.Errorf("failed to mark job as completed: %w", err)
	}
	return nil
}

// runHandler turns a handler panic into a job failure.
func runHandler(ctx context.Context, handler JobHandler, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, job)
}

// WorkerPool manages multiple workers across different queues
type WorkerPool struct {
	workers []*Worker
	mu      sync.RWMutex
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool() *WorkerPool {
	return &WorkerPool{}
}

// AddWorker adds a worker to the pool
func (p *WorkerPool) AddWorker(worker *Worker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.workers = append(p.workers, worker)
}

// Start starts all workers in the pool
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, worker := range p.workers {
		if err := worker.Start(ctx); err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}
	}
	return nil
}

// Stop stops all workers in the pool
func (p *WorkerPool) Stop() {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var wg sync.WaitGroup
	for _, worker := range p.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Stop()
		}(worker)
	}
	wg.Wait()
}
