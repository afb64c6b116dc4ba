package sync

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"crmsync/internal/domain"
)

// TaskExecutor runs one query task to a terminal outcome.
type TaskExecutor interface {
	ExecuteTask(ctx context.Context, task domain.QueryTask) domain.TaskOutcome
}

// JobRunner iterates a job's tasks through a task executor and assembles the
// job report. It never returns an error: a run where everything failed is
// still a complete report, so callers always get per-task detail.
type JobRunner struct {
	executor TaskExecutor
	logger   *slog.Logger

	// Parallelism caps concurrent task executions. The default of 1 runs
	// tasks strictly sequentially in declaration order, because tasks may
	// share rate-limited external sessions.
	Parallelism int
}

// NewJobRunner creates a sequential job runner.
func NewJobRunner(executor TaskExecutor, logger *slog.Logger) *JobRunner {
	return &JobRunner{executor: executor, logger: logger, Parallelism: 1}
}

// RunJob executes every task in the job and returns the completed report.
// A failing or skipped task never halts the job; each task yields exactly one
// outcome keyed by task name.
func (jr *JobRunner) RunJob(ctx context.Context, job domain.Job) domain.JobReport {
	report := domain.JobReport{
		JobName:   job.Name,
		StartedAt: time.Now(),
		Outcomes:  make(map[string]domain.TaskOutcome, len(job.Tasks)),
	}
	logger := jr.logger.With("job", job.Name)
	logger.Info("job run started", "tasks", len(job.Tasks))

	if jr.Parallelism > 1 {
		jr.runParallel(ctx, job, &report)
	} else {
		for _, task := range job.Tasks {
			report.Outcomes[task.Name] = jr.executor.ExecuteTask(ctx, task)
		}
	}

	report.FinishedAt = time.Now()
	logger.Info("job run completed",
		"tasks", len(job.Tasks),
		"succeeded", countStatus(report, domain.TaskStatusSucceeded),
		"failed", countStatus(report, domain.TaskStatusFailed),
		"skipped", countStatus(report, domain.TaskStatusSkipped),
	)
	return report
}

// runParallel executes independent tasks concurrently. Each task still yields
// exactly one outcome, one task's failure never aborts another's execution
// (ExecuteTask swallows all failure into the outcome), and the report is
// assembled only after every task reaches a terminal state.
func (jr *JobRunner) runParallel(ctx context.Context, job domain.Job, report *domain.JobReport) {
	outcomes := make([]domain.TaskOutcome, len(job.Tasks))

	g := new(errgroup.Group)
	g.SetLimit(jr.Parallelism)
	for i, task := range job.Tasks {
		g.Go(func() error {
			outcomes[i] = jr.executor.ExecuteTask(ctx, task)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	for i, task := range job.Tasks {
		report.Outcomes[task.Name] = outcomes[i]
	}
}

func countStatus(report domain.JobReport, status string) int {
	n := 0
	for _, o := range report.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
