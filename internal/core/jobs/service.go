package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// defaultListLimit caps ListJobs when the filter sets no limit.
const defaultListLimit = 50

// Service owns the postgres queue and the workers draining it.
type Service struct {
	queue      *Queue
	workerPool *WorkerPool
	logger     zerolog.Logger
}

func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		queue:      NewQueue(db),
		workerPool: NewWorkerPool(),
		logger:     logger,
	}
}

// Enqueue adds a job for owner. Only the first opts value is used.
func (s *Service) Enqueue(ctx context.Context, owner, jobType string, payload interface{}, opts ...EnqueueOptions) (*Job, error) {
	options := DefaultEnqueueOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	job, err := s.queue.Enqueue(ctx, owner, jobType, payload, options)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("job_id", job.ID.String()).
		Str("type", jobType).
		Str("queue", job.Queue).
		Msg("📥 Job enqueued")
	return job, nil
}

// Cancel stops a job that has not started yet. Returns ErrNotCancellable
// for running or finished jobs.
func (s *Service) Cancel(ctx context.Context, jobID uuid.UUID) error {
	if err := s.queue.Cancel(ctx, jobID); err != nil {
		return err
	}
	s.logger.Info().Str("job_id", jobID.String()).Msg("🚫 Job cancelled")
	return nil
}

// GetJob returns ErrJobNotFound for unknown ids.
func (s *Service) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	return s.queue.GetJob(ctx, jobID)
}

// ListJobs returns the newest jobs matching filter.
func (s *Service) ListJobs(ctx context.Context, filter JobFilter) ([]Job, error) {
	if filter.Limit <= 0 || filter.Limit > defaultListLimit {
		filter.Limit = defaultListLimit
	}
	return s.queue.ListJobs(ctx, filter)
}

// GetStats counts jobs by status, queue and type. Empty owner counts all.
func (s *Service) GetStats(ctx context.Context, owner string) (*JobStats, error) {
	return s.queue.GetStats(ctx, owner)
}

// RegisterWorker creates a worker for config.Queue serving handlers.
func (s *Service) RegisterWorker(config WorkerConfig, handlers ...JobHandler) *Worker {
	worker := NewWorker(s.queue, config, s.logger)
	for _, handler := range handlers {
		worker.RegisterHandler(handler)
	}

	s.workerPool.AddWorker(worker)
	return worker
}

func (s *Service) StartWorkers(ctx context.Context) error {
	return s.workerPool.Start(ctx)
}

func (s *Service) StopWorkers() {
	s.workerPool.Stop()
}

// Cleanup deletes finished jobs older than olderThan.
func (s *Service) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.queue.DeleteOldJobs(ctx, olderThan)
}
