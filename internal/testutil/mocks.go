// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase.
package testutil

import (
	"context"
	"sync/atomic"

	"crmsync/internal/domain"
)

// === Auth Provider Mock ===

// MockAuthProvider implements domain.AuthProvider for testing.
type MockAuthProvider struct {
	CRMSessionFn    func(ctx context.Context) (domain.Session, error)
	TargetSessionFn func(ctx context.Context, kind domain.TargetKind) (domain.Session, error)

	CRMSessionCalls    int32
	TargetSessionCalls int32
}

func (m *MockAuthProvider) CRMSession(ctx context.Context) (domain.Session, error) {
	atomic.AddInt32(&m.CRMSessionCalls, 1)
	if m.CRMSessionFn != nil {
		return m.CRMSessionFn(ctx)
	}
	return "crm-session", nil
}

func (m *MockAuthProvider) TargetSession(ctx context.Context, kind domain.TargetKind) (domain.Session, error) {
	atomic.AddInt32(&m.TargetSessionCalls, 1)
	if m.TargetSessionFn != nil {
		return m.TargetSessionFn(ctx, kind)
	}
	return "target-session", nil
}

// === Query Executor Mock ===

// MockQueryExecutor implements domain.QueryExecutor for testing. By default it
// returns a two-row result set; set RunQueryFn to override.
type MockQueryExecutor struct {
	RunQueryFn func(ctx context.Context, sess domain.Session, queryText string) ([]string, []domain.Row, error)

	Calls   int32
	Queries []string // executed query texts, in call order
}

func (m *MockQueryExecutor) RunQuery(ctx context.Context, sess domain.Session, queryText string) ([]string, []domain.Row, error) {
	atomic.AddInt32(&m.Calls, 1)
	m.Queries = append(m.Queries, queryText)
	if m.RunQueryFn != nil {
		return m.RunQueryFn(ctx, sess, queryText)
	}
	return []string{"Id", "Name"}, []domain.Row{
		{"Id": "001", "Name": "Acme"},
		{"Id": "002", "Name": "Globex"},
	}, nil
}

// CallCount returns the number of RunQuery invocations.
func (m *MockQueryExecutor) CallCount() int {
	return int(atomic.LoadInt32(&m.Calls))
}

// === Target Adapter Mock ===

// MockTargetAdapter implements domain.TargetAdapter for testing.
type MockTargetAdapter struct {
	KindValue  domain.TargetKind
	ValidateFn func(d domain.TargetDescriptor) error
	DeliverFn  func(ctx context.Context, sess domain.Session, p domain.Payload, d domain.TargetDescriptor) (*domain.DeliveryReceipt, error)

	DeliverCalls int32
	Delivered    []domain.Payload // payloads seen by Deliver, in call order
}

func (m *MockTargetAdapter) Kind() domain.TargetKind { return m.KindValue }

func (m *MockTargetAdapter) ValidateDescriptor(d domain.TargetDescriptor) error {
	if m.ValidateFn != nil {
		return m.ValidateFn(d)
	}
	return nil
}

func (m *MockTargetAdapter) Deliver(ctx context.Context, sess domain.Session, p domain.Payload, d domain.TargetDescriptor) (*domain.DeliveryReceipt, error) {
	atomic.AddInt32(&m.DeliverCalls, 1)
	m.Delivered = append(m.Delivered, p)
	if m.DeliverFn != nil {
		return m.DeliverFn(ctx, sess, p, d)
	}
	return &domain.DeliveryReceipt{DestinationID: string(m.KindValue) + "/" + d.Name, RecordCount: p.Result.RowCount()}, nil
}

// DeliverCount returns the number of Deliver invocations.
func (m *MockTargetAdapter) DeliverCount() int {
	return int(atomic.LoadInt32(&m.DeliverCalls))
}

// === Sync Run Repository Mock ===

// MockSyncRunRepo implements domain.SyncRunRepository for testing. It records
// runs and outcomes in memory for assertions.
type MockSyncRunRepo struct {
	CreateRunFn func(ctx context.Context, run *domain.SyncRun) error

	Runs     []*domain.SyncRun
	Statuses map[string][]string            // run ID → status transitions
	Outcomes map[string][]domain.TaskOutcome // run ID → stored outcomes
}

func (m *MockSyncRunRepo) init() {
	if m.Statuses == nil {
		m.Statuses = make(map[string][]string)
	}
	if m.Outcomes == nil {
		m.Outcomes = make(map[string][]domain.TaskOutcome)
	}
}

func (m *MockSyncRunRepo) CreateRun(ctx context.Context, run *domain.SyncRun) error {
	m.init()
	if m.CreateRunFn != nil {
		if err := m.CreateRunFn(ctx, run); err != nil {
			return err
		}
	}
	m.Runs = append(m.Runs, run)
	m.Statuses[run.ID] = append(m.Statuses[run.ID], run.Status)
	return nil
}

func (m *MockSyncRunRepo) UpdateRunStarted(ctx context.Context, runID string) error {
	m.init()
	m.Statuses[runID] = append(m.Statuses[runID], domain.RunStatusRunning)
	return nil
}

func (m *MockSyncRunRepo) UpdateRunFinished(ctx context.Context, runID string, status string) error {
	m.init()
	m.Statuses[runID] = append(m.Statuses[runID], status)
	return nil
}

func (m *MockSyncRunRepo) InsertOutcomes(ctx context.Context, runID string, outcomes []domain.TaskOutcome) error {
	m.init()
	m.Outcomes[runID] = append(m.Outcomes[runID], outcomes...)
	return nil
}

func (m *MockSyncRunRepo) GetRun(ctx context.Context, runID string) (*domain.SyncRun, error) {
	for _, r := range m.Runs {
		if r.ID == runID {
			out := *r
			out.Outcomes = m.Outcomes[runID]
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound("run %s not found", runID)
}

func (m *MockSyncRunRepo) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.SyncRun, int64, error) {
	var out []domain.SyncRun
	for _, r := range m.Runs {
		if filter.JobName != nil && r.JobName != *filter.JobName {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}
