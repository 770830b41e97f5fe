package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/auth"
	corejobs "github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/jobs"
)

type fakeJobs struct {
	byID       map[uuid.UUID]*corejobs.Job
	lastFilter corejobs.JobFilter
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{byID: map[uuid.UUID]*corejobs.Job{}}
}

func (f *fakeJobs) add(status corejobs.JobStatus) *corejobs.Job {
	job := &corejobs.Job{
		ID:      uuid.New(),
		Owner:   "27821234567",
		Queue:   "receipts",
		Type:    "receipt.process",
		Status:  status,
		Payload: datatypes.JSON(`{"media_id":"media-1"}`),
	}
	f.byID[job.ID] = job
	return job
}

func (f *fakeJobs) GetStats(ctx context.Context, owner string) (*corejobs.JobStats, error) {
	stats := &corejobs.JobStats{JobsByQueue: map[string]int64{}, JobsByType: map[string]int64{}}
	for _, j := range f.byID {
		if owner != "" && j.Owner != owner {
			continue
		}
		stats.TotalJobs++
		if j.Status == corejobs.StatusPending {
			stats.PendingJobs++
		}
	}
	return stats, nil
}

func (f *fakeJobs) ListJobs(ctx context.Context, filter corejobs.JobFilter) ([]corejobs.Job, error) {
	f.lastFilter = filter
	var out []corejobs.Job
	for _, j := range f.byID {
		if filter.Status == "" || j.Status == filter.Status {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJobs) GetJob(ctx context.Context, id uuid.UUID) (*corejobs.Job, error) {
	j, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", corejobs.ErrJobNotFound, id)
	}
	return j, nil
}

func (f *fakeJobs) Cancel(ctx context.Context, id uuid.UUID) error {
	j, ok := f.byID[id]
	if !ok || j.Status != corejobs.StatusPending {
		return fmt.Errorf("%w: %s", corejobs.ErrNotCancellable, id)
	}
	j.Status = corejobs.StatusCancelled
	return nil
}

func TestJobsEndpoints(t *testing.T) {
	env := newTestEnv(t, false)
	pending := env.jobs.add(corejobs.StatusPending)
	done := env.jobs.add(corejobs.StatusCompleted)

	resp, body := env.do(t, httptest.NewRequest("GET", "/jobs/stats?owner=27821234567", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("stats status = %d: %s", resp.StatusCode, body)
	}
	var stats corejobs.JobStats
	json.Unmarshal(body, &stats)
	if stats.TotalJobs != 2 || stats.PendingJobs != 1 {
		t.Errorf("stats = %+v", stats)
	}

	resp, body = env.do(t, httptest.NewRequest("GET", "/jobs?status=pending&limit=5", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list status = %d: %s", resp.StatusCode, body)
	}
	var list struct {
		Jobs []struct {
			ID      string          `json:"id"`
			Status  string          `json:"status"`
			Payload json.RawMessage `json:"payload"`
		} `json:"jobs"`
		Count int `json:"count"`
	}
	json.Unmarshal(body, &list)
	if list.Count != 1 || list.Jobs[0].ID != pending.ID.String() || string(list.Jobs[0].Payload) != `{"media_id":"media-1"}` {
		t.Errorf("list = %s", body)
	}
	if env.jobs.lastFilter.Limit != 5 || env.jobs.lastFilter.Status != corejobs.StatusPending {
		t.Errorf("filter = %+v", env.jobs.lastFilter)
	}

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"get existing", "GET", "/jobs/" + done.ID.String(), fiber.StatusOK},
		{"get unknown", "GET", "/jobs/" + uuid.NewString(), fiber.StatusNotFound},
		{"get bad id", "GET", "/jobs/not-a-uuid", fiber.StatusBadRequest},
		{"cancel pending", "POST", "/jobs/" + pending.ID.String() + "/cancel", fiber.StatusOK},
		{"cancel completed", "POST", "/jobs/" + done.ID.String() + "/cancel", fiber.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, httptest.NewRequest(tt.method, tt.path, nil))
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tt.want, body)
			}
		})
	}
	if pending.Status != corejobs.StatusCancelled {
		t.Errorf("pending job status = %s", pending.Status)
	}
}

func TestJobsEndpointsNeedAdmin(t *testing.T) {
	env := newTestEnv(t, true)

	manager, _, _ := env.jwt.GenerateToken("staff-2", "", auth.RoleManager)
	req := httptest.NewRequest("GET", "/jobs/stats", nil)
	req.Header.Set("Authorization", "Bearer "+manager)
	if resp, _ := env.do(t, req); resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("manager status = %d, want 403", resp.StatusCode)
	}

	admin, _, _ := env.jwt.GenerateToken("staff-3", "", auth.RoleAdmin)
	req = httptest.NewRequest("GET", "/jobs/stats", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	if resp, _ := env.do(t, req); resp.StatusCode != fiber.StatusOK {
		t.Errorf("admin status = %d, want 200", resp.StatusCode)
	}
}
