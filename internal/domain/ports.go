package domain

import "context"

// Session is an opaque authenticated handle to an external system. Its
// concrete type is owned by the AuthProvider that issued it; the core never
// inspects or mutates it, only passes it through to collaborator calls.
type Session interface{}

// AuthProvider establishes sessions with the CRM platform and the BI targets.
// Sessions are long-lived and externally managed; the core treats them as
// read-only.
type AuthProvider interface {
	// CRMSession returns a session for query execution against the CRM
	// platform. Fails with an AuthError on invalid or expired credentials.
	CRMSession(ctx context.Context) (Session, error)

	// TargetSession returns a session for delivery to the given target kind.
	TargetSession(ctx context.Context, kind TargetKind) (Session, error)
}

// QueryExecutor runs a query against the CRM platform and returns the column
// order plus the rows, in the order the platform produced them. Fails with a
// QueryError on malformed queries, permission denial, or timeout.
type QueryExecutor interface {
	RunQuery(ctx context.Context, sess Session, queryText string) (columns []string, rows []Row, err error)
}

// Payload is the staged, delivery-ready form of a result set. SpoolPath
// points at a temporary JSON serialization on local disk; it is owned by the
// in-flight task execution and removed before ExecuteTask returns.
type Payload struct {
	Result    *ResultSet
	SpoolPath string
}

// TargetAdapter delivers a result set to one target kind. Adapters are
// stateless with respect to the result set: no adapter mutates or retains it
// after Deliver returns.
type TargetAdapter interface {
	// Kind returns the target kind this adapter serves.
	Kind() TargetKind

	// ValidateDescriptor checks that the descriptor carries every parameter
	// this kind requires. Returns a ConfigurationError; called before any
	// query executes.
	ValidateDescriptor(d TargetDescriptor) error

	// Deliver pushes the payload to the destination described by d. Fails
	// with a DeliveryError when the destination rejects the payload or is
	// unreachable.
	Deliver(ctx context.Context, sess Session, p Payload, d TargetDescriptor) (*DeliveryReceipt, error)
}

// SyncRunRepository persists job runs and their task outcomes. Run history is
// a collaborator of the runners, not part of them: runners produce reports,
// the service layer records them.
type SyncRunRepository interface {
	CreateRun(ctx context.Context, run *SyncRun) error
	UpdateRunStarted(ctx context.Context, runID string) error
	UpdateRunFinished(ctx context.Context, runID string, status string) error
	InsertOutcomes(ctx context.Context, runID string, outcomes []TaskOutcome) error
	GetRun(ctx context.Context, runID string) (*SyncRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]SyncRun, int64, error)
}

// RunFilter narrows run-history queries.
type RunFilter struct {
	JobName *string
	Limit   int
	Offset  int
}
