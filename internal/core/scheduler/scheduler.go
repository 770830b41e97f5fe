package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Task is a housekeeping function run on a cron schedule.
type Task func(ctx context.Context) error

// Scheduler runs named tasks on cron schedules (with seconds field).
type Scheduler struct {
	cron    *cron.Cron
	tasks   map[string]cron.EntryID
	tasksMu sync.RWMutex
	logger  zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a stopped scheduler.
func New(logger zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DiscardLogger))),
		tasks:  make(map[string]cron.EntryID),
		logger: logger.With().Str("component", "scheduler").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("tasks", len(s.Tasks())).Msg("⏰ Scheduler started")
}

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("⏰ Scheduler stopped")
}

// AddTask schedules task under name, replacing any task with the same name.
// spec is a six-field cron expression, e.g. "0 30 3 * * *" for 03:30 daily.
func (s *Scheduler) AddTask(name, spec string, task Task) error {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	if entryID, exists := s.tasks[name]; exists {
		s.cron.Remove(entryID)
		delete(s.tasks, name)
	}

	entryID, err := s.cron.AddFunc(spec, func() { s.run(name, task) })
	if err != nil {
		return fmt.Errorf("failed to add cron task %s: %w", name, err)
	}

	s.tasks[name] = entryID
	s.logger.Info().Str("task", name).Str("schedule", spec).Msg("✅ Scheduled task")
	return nil
}

// RemoveTask removes a task from the scheduler
func (s *Scheduler) RemoveTask(name string) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	if entryID, exists := s.tasks[name]; exists {
		s.cron.Remove(entryID)
		delete(s.tasks, name)
	}
}

// Tasks returns the scheduled task names, sorted.
func (s *Scheduler) Tasks() []string {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) run(name string, task Task) {
	if err := task(s.ctx); err != nil {
		s.logger.Error().Err(err).Str("task", name).Msg("❌ Scheduled task failed")
		return
	}
	s.logger.Debug().Str("task", name).Msg("scheduled task finished")
}
