package sync

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmsync/internal/domain"
	"crmsync/internal/testutil"
)

// stubExecutor returns canned outcomes keyed by task name and records the
// execution order.
type stubExecutor struct {
	mu       sync.Mutex
	outcomes map[string]domain.TaskOutcome
	order    []string
}

func (s *stubExecutor) ExecuteTask(_ context.Context, task domain.QueryTask) domain.TaskOutcome {
	s.mu.Lock()
	s.order = append(s.order, task.Name)
	s.mu.Unlock()

	if o, ok := s.outcomes[task.Name]; ok {
		o.TaskName = task.Name
		return o
	}
	return domain.TaskOutcome{TaskName: task.Name, Status: domain.TaskStatusSucceeded}
}

func task(name string, kind domain.TargetKind) domain.QueryTask {
	return domain.QueryTask{
		Name:      name,
		QueryText: "SELECT 1",
		Target:    domain.TargetDescriptor{Kind: kind, Name: name},
	}
}

func TestRunJob_OneOutcomePerTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tasks int
	}{
		{name: "zero tasks", tasks: 0},
		{name: "one task", tasks: 1},
		{name: "many tasks", tasks: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := domain.Job{Name: "J"}
			for i := 0; i < tt.tasks; i++ {
				job.Tasks = append(job.Tasks, task(string(rune('a'+i)), domain.TargetFlatFile))
			}

			jr := NewJobRunner(&stubExecutor{}, discardLogger())
			report := jr.RunJob(context.Background(), job)

			assert.Equal(t, "J", report.JobName)
			assert.Len(t, report.Outcomes, tt.tasks)
			for _, tk := range job.Tasks {
				_, ok := report.Outcome(tk.Name)
				assert.True(t, ok, "missing outcome for task %s", tk.Name)
			}
			assert.False(t, report.StartedAt.IsZero())
			assert.False(t, report.FinishedAt.Before(report.StartedAt))
		})
	}
}

func TestRunJob_FailureDoesNotHaltSubsequentTasks(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{outcomes: map[string]domain.TaskOutcome{
		"b": {Status: domain.TaskStatusFailed, ErrorDetail: "query timeout"},
	}}
	job := domain.Job{Name: "J", Tasks: []domain.QueryTask{
		task("a", domain.TargetFlatFile),
		task("b", domain.TargetFlatFile),
		task("c", domain.TargetFlatFile),
	}}

	report := NewJobRunner(exec, discardLogger()).RunJob(context.Background(), job)

	assert.Equal(t, []string{"a", "b", "c"}, exec.order, "declaration order must be execution order")
	a, _ := report.Outcome("a")
	b, _ := report.Outcome("b")
	c, _ := report.Outcome("c")
	assert.Equal(t, domain.TaskStatusSucceeded, a.Status)
	assert.Equal(t, domain.TaskStatusFailed, b.Status)
	assert.Equal(t, domain.TaskStatusSucceeded, c.Status, "tasks after a failure must still run")
	assert.False(t, report.Succeeded())
}

// The Daily scenario: a succeeding or failing t1 never affects t2's skip, and
// both outcomes always appear in the report.
func TestRunJob_DailyScenario(t *testing.T) {
	t.Parallel()

	adapter := &testutil.MockTargetAdapter{KindValue: domain.TargetDashboardServer}
	runner := newTestRunner(nil, nil, adapter, &testutil.MockTargetAdapter{KindValue: domain.TargetBIWorkspace})
	jr := NewJobRunner(runner, discardLogger())

	job := domain.Job{Name: "Daily", Tasks: []domain.QueryTask{
		{Name: "t1", QueryText: "SELECT 1", Target: domain.TargetDescriptor{Kind: domain.TargetDashboardServer, Name: "d"}},
		{Name: "t2", QueryText: "", Target: domain.TargetDescriptor{Kind: domain.TargetBIWorkspace, Name: "w"}},
	}}

	report := jr.RunJob(context.Background(), job)

	require.Len(t, report.Outcomes, 2)
	t1, _ := report.Outcome("t1")
	t2, _ := report.Outcome("t2")
	assert.Equal(t, domain.TaskStatusSucceeded, t1.Status)
	assert.Equal(t, domain.TaskStatusSkipped, t2.Status)
	assert.Contains(t, t2.ErrorDetail, "invalid task definition")
}

func TestRunJob_AllTasksFailStillCompletes(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{outcomes: map[string]domain.TaskOutcome{
		"a": {Status: domain.TaskStatusFailed, ErrorDetail: "auth"},
		"b": {Status: domain.TaskStatusSkipped, ErrorDetail: "invalid task definition"},
	}}
	job := domain.Job{Name: "J", Tasks: []domain.QueryTask{
		task("a", domain.TargetFlatFile),
		task("b", domain.TargetFlatFile),
	}}

	// RunJob has no error return by construction; the report is the only
	// failure channel.
	report := NewJobRunner(exec, discardLogger()).RunJob(context.Background(), job)
	assert.Len(t, report.Outcomes, 2)
	assert.False(t, report.Succeeded())
}

func TestRunJob_ParallelPreservesInvariants(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{outcomes: map[string]domain.TaskOutcome{
		"c": {Status: domain.TaskStatusFailed, ErrorDetail: "boom"},
	}}
	job := domain.Job{Name: "J"}
	names := []string{"a", "b", "c", "d", "e", "f"}
	for _, n := range names {
		job.Tasks = append(job.Tasks, task(n, domain.TargetFlatFile))
	}

	jr := NewJobRunner(exec, discardLogger())
	jr.Parallelism = 3
	report := jr.RunJob(context.Background(), job)

	// Exactly one outcome per task, failure isolated to "c".
	require.Len(t, report.Outcomes, len(names))
	assert.Len(t, exec.order, len(names))
	for _, n := range names {
		o, ok := report.Outcome(n)
		require.True(t, ok)
		if n == "c" {
			assert.Equal(t, domain.TaskStatusFailed, o.Status)
		} else {
			assert.Equal(t, domain.TaskStatusSucceeded, o.Status)
		}
	}
}
