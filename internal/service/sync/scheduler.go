package sync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"crmsync/internal/domain"
)

// Scheduler fires job runs on their cron schedules. Schedule expressions are
// opaque to the runners; only this layer interprets them.
type Scheduler struct {
	cron    *cron.Cron
	svc     *Service
	jobs    JobSource
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]cron.EntryID // job name → cron entry
}

// NewScheduler creates a scheduler over the job source.
func NewScheduler(svc *Service, jobs JobSource, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		svc:     svc,
		jobs:    jobs,
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// Start registers all scheduled jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadSchedules()
	s.cron.Start()
	s.logger.Info("sync scheduler started", "entries", len(s.entries))
}

// Stop stops the cron loop and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("sync scheduler stopped")
}

// Reload clears all cron entries and re-registers from the job source.
func (s *Scheduler) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entryID := range s.entries {
		s.cron.Remove(entryID)
	}
	s.entries = make(map[string]cron.EntryID)

	s.loadSchedules()
}

// loadSchedules registers every job carrying a schedule expression. An
// invalid expression disables that job's schedule but never blocks the rest.
func (s *Scheduler) loadSchedules() {
	for _, job := range s.jobs.ScheduledJobs() {
		jobName := job.Name

		entryID, err := s.cron.AddFunc(job.Schedule, func() {
			ctx := context.Background()
			report, err := s.svc.TriggerRun(ctx, jobName, domain.TriggerTypeScheduled)
			if err != nil {
				s.logger.Warn("scheduled trigger failed", "job", jobName, "error", err)
				return
			}
			if !report.Succeeded() {
				s.logger.Warn("scheduled run had failing tasks", "job", jobName, "run_id", report.RunID)
			}
		})
		if err != nil {
			s.logger.Warn("invalid cron schedule",
				"job", jobName,
				"schedule", job.Schedule,
				"error", err,
			)
			continue
		}

		s.entries[jobName] = entryID
		s.logger.Info("scheduled job", "job", jobName, "schedule", job.Schedule)
	}
}
