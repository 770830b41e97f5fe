package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence the worker needs.
type Store interface {
	Dequeue(ctx context.Context, queueName string) (*Job, error)
	MarkCompleted(ctx context.Context, jobID uuid.UUID, result interface{}) error
	MarkFailed(ctx context.Context, jobID uuid.UUID, err error) error
}

// Queue manages job queue operations
type Queue struct {
	db  *gorm.DB
	now func() time.Time
}

// NewQueue creates a new job queue
func NewQueue(db *gorm.DB) *Queue {
	return &Queue{db: db, now: time.Now}
}

// Enqueue adds a new job to the queue
func (q *Queue) Enqueue(ctx context.Context, owner, jobType string, payload interface{}, opts EnqueueOptions) (*Job, error) {
	if opts.Queue == "" {
		opts.Queue = "default"
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}

	var metadataJSON datatypes.JSON
	if opts.Metadata != nil {
		metadataBytes, err := json.Marshal(opts.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize metadata: %w", err)
		}
		metadataJSON = metadataBytes
	}

	job := &Job{
		Owner:       owner,
		Queue:       opts.Queue,
		Type:        jobType,
		Payload:     payloadJSON,
		Status:      StatusPending,
		Priority:    opts.Priority,
		MaxRetries:  opts.MaxRetries,
		ScheduledAt: opts.ScheduleAt,
		Metadata:    metadataJSON,
	}

	if err := q.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return job, nil
}

// Dequeue claims the next runnable job. Retrying jobs become runnable again
// once their backoff has elapsed. Returns nil, nil when the queue is empty.
func (q *Queue) Dequeue(ctx context.Context, queueName string) (*Job, error) {
	var job Job

	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := q.now()
		query := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("queue = ? AND status IN ?", queueName, []JobStatus{StatusPending, StatusRetrying}).
			Where("scheduled_at IS NULL OR scheduled_at <= ?", now).
			Order("priority DESC, created_at ASC").
			Limit(1)

		if err := query.First(&job).Error; err != nil {
			return err
		}

		job.Status = StatusProcessing
		job.StartedAt = &now
		job.Attempts++

		return tx.Save(&job).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	return &job, nil
}

// MarkCompleted marks a job as completed
func (q *Queue) MarkCompleted(ctx context.Context, jobID uuid.UUID, result interface{}) error {
	updates := map[string]interface{}{
		"status":       StatusCompleted,
		"completed_at": q.now(),
		"error":        "",
	}

	if result != nil {
		resultJSON, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to serialize result: %w", err)
		}
		updates["result"] = datatypes.JSON(resultJSON)
	}

	return q.db.WithContext(ctx).Model(&Job{}).Where("id = ?", jobID).Updates(updates).Error
}

// MarkFailed records the error and either schedules a retry or fails the job.
func (q *Queue) MarkFailed(ctx context.Context, jobID uuid.UUID, jobErr error) error {
	var job Job
	if err := q.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		return fmt.Errorf("failed to find job: %w", err)
	}

	applyFailure(&job, jobErr, q.now())
	return q.db.WithContext(ctx).Save(&job).Error
}

// applyFailure moves a job to retrying with exponential backoff, or to failed
// once its retries are used up.
func applyFailure(job *Job, jobErr error, now time.Time) {
	job.Error = jobErr.Error()
	job.FailedAt = &now

	if job.Attempts <= job.MaxRetries {
		scheduleAt := now.Add(calculateBackoff(job.Attempts))
		job.Status = StatusRetrying
		job.ScheduledAt = &scheduleAt
		return
	}
	job.Status = StatusFailed
	job.CompletedAt = &now
}

// Cancel cancels a pending job
func (q *Queue) Cancel(ctx context.Context, jobID uuid.UUID) error {
	result := q.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND status IN ?", jobID, []JobStatus{StatusPending, StatusRetrying}).
		Update("status", StatusCancelled)

	if result.Error != nil {
		return fmt.Errorf("failed to cancel job: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotCancellable, jobID)
	}

	return nil
}

// GetJob retrieves a job by ID
func (q *Queue) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	var job Job
	if err := q.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ListJobs lists jobs with optional filters
func (q *Queue) ListJobs(ctx context.Context, filter JobFilter) ([]Job, error) {
	query := q.filtered(ctx, filter)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var jobs []Job
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

func (q *Queue) filtered(ctx context.Context, filter JobFilter) *gorm.DB {
	query := q.db.WithContext(ctx).Model(&Job{})
	if filter.Owner != "" {
		query = query.Where("owner = ?", filter.Owner)
	}
	if filter.Queue != "" {
		query = query.Where("queue = ?", filter.Queue)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	return query
}

// GetStats retrieves statistics about jobs
func (q *Queue) GetStats(ctx context.Context, owner string) (*JobStats, error) {
	stats := &JobStats{
		JobsByQueue: make(map[string]int64),
		JobsByType:  make(map[string]int64),
	}

	var byStatus []struct {
		Status JobStatus
		Count  int64
	}
	if err := q.filtered(ctx, JobFilter{Owner: owner}).
		Select("status, COUNT(*) as count").Group("status").Find(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	for _, s := range byStatus {
		stats.TotalJobs += s.Count
		switch s.Status {
		case StatusPending:
			stats.PendingJobs = s.Count
		case StatusProcessing:
			stats.ProcessingJobs = s.Count
		case StatusRetrying:
			stats.RetryingJobs = s.Count
		case StatusCompleted:
			stats.CompletedJobs = s.Count
		case StatusFailed:
			stats.FailedJobs = s.Count
		}
	}

	var queueStats []struct {
		Queue string
		Count int64
	}
	q.filtered(ctx, JobFilter{Owner: owner}).Select("queue, COUNT(*) as count").Group("queue").Find(&queueStats)
	for _, qs := range queueStats {
		stats.JobsByQueue[qs.Queue] = qs.Count
	}

	var typeStats []struct {
		Type  string
		Count int64
	}
	q.filtered(ctx, JobFilter{Owner: owner}).Select("type, COUNT(*) as count").Group("type").Find(&typeStats)
	for _, ts := range typeStats {
		stats.JobsByType[ts.Type] = ts.Count
	}

	return stats, nil
}

// DeleteOldJobs deletes finished jobs last touched before now - olderThan.
func (q *Queue) DeleteOldJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := q.now().Add(-olderThan)

	result := q.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", []JobStatus{StatusCompleted, StatusFailed, StatusCancelled}, cutoff).
		Delete(&Job{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old jobs: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// calculateBackoff is 2^attempt seconds, capped at one hour.
func calculateBackoff(attempt int) time.Duration {
	if attempt > 12 {
		return time.Hour
	}
	backoff := time.Duration(1<<attempt) * time.Second
	if backoff > time.Hour {
		backoff = time.Hour
	}
	return backoff
}
