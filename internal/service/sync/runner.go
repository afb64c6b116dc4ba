package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crmsync/internal/domain"
)

// Runner executes exactly one query task end-to-end, isolating all failure to
// that task. ExecuteTask never returns an error: every failure mode is
// captured in the outcome so the job runner can continue with remaining tasks.
type Runner struct {
	auth     domain.AuthProvider
	executor domain.QueryExecutor
	registry *Registry
	logger   *slog.Logger
}

// NewRunner creates a task runner over the given collaborators.
func NewRunner(auth domain.AuthProvider, executor domain.QueryExecutor, registry *Registry, logger *slog.Logger) *Runner {
	return &Runner{auth: auth, executor: executor, registry: registry, logger: logger}
}

// ExecuteTask runs one task: validate, query, materialize, stage, deliver.
// The staging spool is released on every exit path, including panics raised
// during delivery.
func (r *Runner) ExecuteTask(ctx context.Context, task domain.QueryTask) (outcome domain.TaskOutcome) {
	started := time.Now()
	logger := r.logger.With("task", task.Name, "target_kind", task.Target.Kind)

	defer func() {
		outcome.TaskName = task.Name
		outcome.StartedAt = started
		outcome.Duration = time.Since(started)
		if rec := recover(); rec != nil {
			logger.Error("task panicked", "panic", rec)
			outcome.Status = domain.TaskStatusFailed
			outcome.ErrorDetail = fmt.Sprintf("panic: %v", rec)
			outcome.RecordCount = 0
			outcome.Receipt = nil
		}
	}()

	// Validate before any external call. Invalid tasks are skipped, never
	// executed, and carry a ConfigurationError detail.
	if err := task.Validate(); err != nil {
		logger.Warn("task skipped", "error", err)
		return domain.TaskOutcome{Status: domain.TaskStatusSkipped, ErrorDetail: err.Error()}
	}
	adapter, ok := r.registry.Lookup(task.Target.Kind)
	if !ok {
		err := domain.ErrConfiguration("invalid task definition: unknown target kind %q (recognized: %v)",
			task.Target.Kind, r.registry.Kinds())
		logger.Warn("task skipped", "error", err)
		return domain.TaskOutcome{Status: domain.TaskStatusSkipped, ErrorDetail: err.Error()}
	}
	if err := adapter.ValidateDescriptor(task.Target); err != nil {
		logger.Warn("task skipped", "error", err)
		return domain.TaskOutcome{Status: domain.TaskStatusSkipped, ErrorDetail: err.Error()}
	}

	// Execute the query. No retries here: retry policy belongs to the caller.
	crmSess, err := r.auth.CRMSession(ctx)
	if err != nil {
		logger.Error("crm session failed", "error", err)
		return domain.TaskOutcome{Status: domain.TaskStatusFailed, ErrorDetail: err.Error()}
	}
	columns, rows, err := r.executor.RunQuery(ctx, crmSess, task.QueryText)
	if err != nil {
		logger.Error("query failed", "error", err)
		return domain.TaskOutcome{Status: domain.TaskStatusFailed, ErrorDetail: err.Error()}
	}

	// Materialize. Zero rows is a valid, non-error result.
	rs, err := domain.NewResultSet(columns)
	if err != nil {
		logger.Error("bad result header", "error", err)
		return domain.TaskOutcome{Status: domain.TaskStatusFailed, ErrorDetail: fmt.Sprintf("materialize result: %v", err)}
	}
	for _, row := range rows {
		if err := rs.Append(row); err != nil {
			logger.Error("bad result row", "error", err)
			return domain.TaskOutcome{Status: domain.TaskStatusFailed, ErrorDetail: fmt.Sprintf("materialize result: %v", err)}
		}
	}

	// Stage the payload. The spool must not outlive this call on any path.
	payload, cleanup, err := stageResultSet(rs)
	if err != nil {
		logger.Error("staging failed", "error", err)
		return domain.TaskOutcome{Status: domain.TaskStatusFailed, ErrorDetail: err.Error()}
	}
	defer cleanup()

	// Deliver through the adapter for this target kind.
	targetSess, err := r.auth.TargetSession(ctx, task.Target.Kind)
	if err != nil {
		logger.Error("target session failed", "error", err)
		return domain.TaskOutcome{Status: domain.TaskStatusFailed, ErrorDetail: err.Error()}
	}
	receipt, err := adapter.Deliver(ctx, targetSess, payload, task.Target)
	if err != nil {
		logger.Error("delivery failed", "error", err)
		return domain.TaskOutcome{Status: domain.TaskStatusFailed, ErrorDetail: err.Error()}
	}

	logger.Info("task succeeded", "records", rs.RowCount(), "destination", receipt.DestinationID)
	return domain.TaskOutcome{
		Status:      domain.TaskStatusSucceeded,
		RecordCount: rs.RowCount(),
		Receipt:     receipt,
	}
}
