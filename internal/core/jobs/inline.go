package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// InlineQueue runs jobs in-process as soon as they are enqueued. It backs
// the webhook when no postgres job table is configured; jobs do not survive
// a restart.
type InlineQueue struct {
	handlers map[string]JobHandler
	timeout  time.Duration
	logger   zerolog.Logger
	sleep    func(time.Duration)
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

func NewInlineQueue(timeout time.Duration, logger zerolog.Logger) *InlineQueue {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &InlineQueue{
		handlers: make(map[string]JobHandler),
		timeout:  timeout,
		logger:   logger.With().Str("component", "inline_queue").Logger(),
		sleep:    time.Sleep,
	}
}

func (q *InlineQueue) RegisterHandler(handler JobHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[handler.GetType()] = handler
}

// Enqueue starts the job in a goroutine and returns it in the processing state.
func (q *InlineQueue) Enqueue(ctx context.Context, owner, jobType string, payload interface{}, opts ...EnqueueOptions) (*Job, error) {
	options := DefaultEnqueueOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	q.mu.RLock()
	handler, ok := q.handlers[jobType]
	q.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no handler registered for job type: %s", jobType)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job := &Job{
		Owner:      owner,
		Queue:      options.Queue,
		Type:       jobType,
		Payload:    data,
		Status:     StatusProcessing,
		Priority:   options.Priority,
		MaxRetries: options.MaxRetries,
		CreatedAt:  time.Now(),
	}
	job.BeforeCreate(nil)

	q.wg.Add(1)
	go q.run(handler, job)
	return job, nil
}

// run executes the job with a detached context so it outlives the request.
func (q *InlineQueue) run(handler JobHandler, job *Job) {
	defer q.wg.Done()
	log := q.logger.With().Str("job_id", job.ID.String()).Str("type", job.Type).Logger()

	for {
		job.Attempts++
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := runHandler(ctx, handler, job)
		cancel()
		if err == nil {
			log.Debug().Int("attempt", job.Attempts).Msg("✅ Job completed")
			return
		}
		if job.Attempts > job.MaxRetries {
			log.Error().Err(err).Int("attempts", job.Attempts).Msg("❌ Job failed")
			return
		}
		log.Warn().Err(err).Int("attempt", job.Attempts).Msg("🔄 Job will retry")
		q.sleep(calculateBackoff(job.Attempts))
	}
}

// Wait blocks until every started job has finished.
func (q *InlineQueue) Wait() {
	q.wg.Wait()
}
