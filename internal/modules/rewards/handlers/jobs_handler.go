package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	corejobs "github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/jobs"
)

// JobInspector is the read and cancel side of the job queue.
type JobInspector interface {
	GetStats(ctx context.Context, owner string) (*corejobs.JobStats, error)
	ListJobs(ctx context.Context, filter corejobs.JobFilter) ([]corejobs.Job, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*corejobs.Job, error)
	Cancel(ctx context.Context, jobID uuid.UUID) error
}

// JobsHandler lets admins see why a guest's receipt was not answered.
type JobsHandler struct {
	jobs JobInspector
}

func NewJobsHandler(jobs JobInspector) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

type jobView struct {
	ID          string          `json:"id"`
	Owner       string          `json:"owner"`
	Queue       string          `json:"queue"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxRetries  int             `json:"max_retries"`
	Error       string          `json:"error,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	ScheduledAt *time.Time      `json:"scheduled_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	FailedAt    *time.Time      `json:"failed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newJobView(j *corejobs.Job) jobView {
	v := jobView{
		ID:          j.ID.String(),
		Owner:       j.Owner,
		Queue:       j.Queue,
		Type:        j.Type,
		Status:      string(j.Status),
		Attempts:    j.Attempts,
		MaxRetries:  j.MaxRetries,
		Error:       j.Error,
		ScheduledAt: j.ScheduledAt,
		CompletedAt: j.CompletedAt,
		FailedAt:    j.FailedAt,
		CreatedAt:   j.CreatedAt,
	}
	if len(j.Payload) > 0 {
		v.Payload = json.RawMessage(j.Payload)
	}
	if len(j.Result) > 0 {
		v.Result = json.RawMessage(j.Result)
	}
	return v
}

// GetStats GET /jobs/stats?owner=
func (h *JobsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.jobs.GetStats(c.UserContext(), c.Query("owner"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

// ListJobs GET /jobs?owner=&type=&status=&limit=
func (h *JobsHandler) ListJobs(c *fiber.Ctx) error {
	list, err := h.jobs.ListJobs(c.UserContext(), corejobs.JobFilter{
		Owner:  c.Query("owner"),
		Queue:  c.Query("queue"),
		Type:   c.Query("type"),
		Status: corejobs.JobStatus(c.Query("status")),
		Limit:  c.QueryInt("limit"),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	views := make([]jobView, 0, len(list))
	for i := range list {
		views = append(views, newJobView(&list[i]))
	}
	return c.JSON(fiber.Map{
		"jobs":  views,
		"count": len(views),
	})
}

// GetJob GET /jobs/:id
func (h *JobsHandler) GetJob(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid job id"})
	}

	job, err := h.jobs.GetJob(c.UserContext(), id)
	if err != nil {
		return jobErrorResponse(c, err)
	}
	return c.JSON(newJobView(job))
}

// CancelJob POST /jobs/:id/cancel
func (h *JobsHandler) CancelJob(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid job id"})
	}

	if err := h.jobs.Cancel(c.UserContext(), id); err != nil {
		return jobErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"id": id.String(), "status": corejobs.StatusCancelled})
}

func jobErrorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, corejobs.ErrJobNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, corejobs.ErrNotCancellable):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
