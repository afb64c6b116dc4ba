package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"crmsync/internal/domain"
)

// JobSource provides job definitions. In production this is the parsed YAML
// job document; tests substitute fixtures.
type JobSource interface {
	Job(name string) (domain.Job, bool)
	AllJobs() []domain.Job
	ScheduledJobs() []domain.Job
}

// Service ties the job runner to the job source and the run-history store.
// It is the entry point for both the HTTP surface and the cron scheduler.
type Service struct {
	jobs     JobSource
	runner   *JobRunner
	runs     domain.SyncRunRepository
	auth     domain.AuthProvider
	executor domain.QueryExecutor
	logger   *slog.Logger
}

// NewService creates the sync service.
func NewService(
	jobs JobSource,
	runner *JobRunner,
	runs domain.SyncRunRepository,
	auth domain.AuthProvider,
	executor domain.QueryExecutor,
	logger *slog.Logger,
) *Service {
	return &Service{
		jobs:     jobs,
		runner:   runner,
		runs:     runs,
		auth:     auth,
		executor: executor,
		logger:   logger,
	}
}

// ListJobs returns all configured jobs.
func (s *Service) ListJobs() []domain.Job {
	return s.jobs.AllJobs()
}

// TriggerRun executes the named job synchronously and persists the run plus
// its task outcomes. The run record moves pending → running → completed; only
// the contained task outcomes carry failure.
func (s *Service) TriggerRun(ctx context.Context, jobName string, triggerType string) (*domain.JobReport, error) {
	job, ok := s.jobs.Job(jobName)
	if !ok {
		return nil, domain.ErrNotFound("job %q not found", jobName)
	}

	now := time.Now()
	run := &domain.SyncRun{
		ID:          domain.NewID(),
		JobName:     job.Name,
		Status:      domain.RunStatusPending,
		TriggerType: triggerType,
		CreatedAt:   now,
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	if err := s.runs.UpdateRunStarted(ctx, run.ID); err != nil {
		s.logger.Warn("failed to mark run started", "run_id", run.ID, "error", err)
	}

	report := s.runner.RunJob(ctx, job)
	report.RunID = run.ID

	// Persist outcomes in declaration order. History writes are best effort:
	// the caller still gets the full report even if the store misbehaves.
	ordered := make([]domain.TaskOutcome, 0, len(job.Tasks))
	for _, t := range job.Tasks {
		ordered = append(ordered, report.Outcomes[t.Name])
	}
	if err := s.runs.InsertOutcomes(ctx, run.ID, ordered); err != nil {
		s.logger.Warn("failed to persist outcomes", "run_id", run.ID, "error", err)
	}
	if err := s.runs.UpdateRunFinished(ctx, run.ID, domain.RunStatusCompleted); err != nil {
		s.logger.Warn("failed to mark run completed", "run_id", run.ID, "error", err)
	}

	return &report, nil
}

// RunQuery executes an ad-hoc, read-only query against the CRM platform and
// returns the materialized result set.
func (s *Service) RunQuery(ctx context.Context, queryText string) (*domain.ResultSet, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, domain.ErrConfiguration("query_text is blank")
	}

	sess, err := s.auth.CRMSession(ctx)
	if err != nil {
		return nil, err
	}
	columns, rows, err := s.executor.RunQuery(ctx, sess, queryText)
	if err != nil {
		return nil, err
	}

	rs, err := domain.NewResultSet(columns)
	if err != nil {
		return nil, fmt.Errorf("materialize result: %w", err)
	}
	for _, row := range rows {
		if err := rs.Append(row); err != nil {
			return nil, fmt.Errorf("materialize result: %w", err)
		}
	}
	return rs, nil
}

// GetRun returns a persisted run with its outcomes.
func (s *Service) GetRun(ctx context.Context, runID string) (*domain.SyncRun, error) {
	return s.runs.GetRun(ctx, runID)
}

// ListRuns returns run history, newest first.
func (s *Service) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.SyncRun, int64, error) {
	return s.runs.ListRuns(ctx, filter)
}
