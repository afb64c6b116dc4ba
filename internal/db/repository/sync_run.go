// Package repository persists job runs and their task outcomes.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crmsync/internal/domain"
)

// SyncRunRepo stores run history in SQLite.
type SyncRunRepo struct {
	db *sql.DB
}

// NewSyncRunRepo creates a run-history repository over the given pool.
func NewSyncRunRepo(db *sql.DB) *SyncRunRepo {
	return &SyncRunRepo{db: db}
}

// CreateRun inserts a new run record in PENDING state.
func (r *SyncRunRepo) CreateRun(ctx context.Context, run *domain.SyncRun) error {
	if run.Status == "" {
		run.Status = domain.RunStatusPending
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, job_name, status, trigger_type, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.JobName, run.Status, run.TriggerType, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// UpdateRunStarted transitions a run to RUNNING and stamps its start time.
func (r *SyncRunRepo) UpdateRunStarted(ctx context.Context, runID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sync_runs SET status = ?, started_at = ? WHERE id = ?`,
		domain.RunStatusRunning, time.Now().UTC(), runID,
	)
	if err != nil {
		return fmt.Errorf("mark run %s running: %w", runID, err)
	}
	return requireRowAffected(res, runID)
}

// UpdateRunFinished transitions a run to its terminal status and stamps its
// finish time.
func (r *SyncRunRepo) UpdateRunFinished(ctx context.Context, runID string, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sync_runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, time.Now().UTC(), runID,
	)
	if err != nil {
		return fmt.Errorf("mark run %s finished: %w", runID, err)
	}
	return requireRowAffected(res, runID)
}

// InsertOutcomes writes all task outcomes for a run in one transaction, in
// the order given.
func (r *SyncRunRepo) InsertOutcomes(ctx context.Context, runID string, outcomes []domain.TaskOutcome) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outcomes tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sync_task_outcomes
			(run_id, task_name, status, record_count, error_detail, destination_id, started_at, duration_ms, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range outcomes {
		destination := ""
		if o.Receipt != nil {
			destination = o.Receipt.DestinationID
		}
		if _, err := stmt.ExecContext(ctx,
			runID, o.TaskName, o.Status, o.RecordCount, o.ErrorDetail,
			destination, o.StartedAt.UTC(), o.Duration.Milliseconds(), i,
		); err != nil {
			return fmt.Errorf("insert outcome %q for run %s: %w", o.TaskName, runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outcomes: %w", err)
	}
	return nil
}

// GetRun loads one run with its outcomes in recorded order.
func (r *SyncRunRepo) GetRun(ctx context.Context, runID string) (*domain.SyncRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, job_name, status, trigger_type, started_at, finished_at, created_at
		FROM sync_runs WHERE id = ?`, runID)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("run %s not found", runID)
		}
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT task_name, status, record_count, error_detail, destination_id, started_at, duration_ms
		FROM sync_task_outcomes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("get run %s outcomes: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o domain.TaskOutcome
		var destination string
		var durationMS int64
		if err := rows.Scan(&o.TaskName, &o.Status, &o.RecordCount, &o.ErrorDetail,
			&destination, &o.StartedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scan outcome for run %s: %w", runID, err)
		}
		o.Duration = time.Duration(durationMS) * time.Millisecond
		if destination != "" {
			o.Receipt = &domain.DeliveryReceipt{DestinationID: destination, RecordCount: o.RecordCount}
		}
		run.Outcomes = append(run.Outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes for run %s: %w", runID, err)
	}

	return run, nil
}

// ListRuns returns run summaries newest first, without outcomes, plus the
// total count matching the filter.
func (r *SyncRunRepo) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.SyncRun, int64, error) {
	var jobFilter interface{}
	var jobName string
	if filter.JobName != nil {
		jobFilter = *filter.JobName
		jobName = *filter.JobName
	}

	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sync_runs WHERE (? IS NULL OR job_name = ?)`,
		jobFilter, jobName,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_name, status, trigger_type, started_at, finished_at, created_at
		FROM sync_runs
		WHERE (? IS NULL OR job_name = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		jobFilter, jobName, limit, filter.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, total, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var started, finished sql.NullTime
	if err := s.Scan(&run.ID, &run.JobName, &run.Status, &run.TriggerType,
		&started, &finished, &run.CreatedAt); err != nil {
		return nil, err
	}
	if started.Valid {
		t := started.Time
		run.StartedAt = &t
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

func requireRowAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("run %s not found", runID)
	}
	return nil
}

// Compile-time check that the repo satisfies the run-history contract.
var _ domain.SyncRunRepository = (*SyncRunRepo)(nil)
