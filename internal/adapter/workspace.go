package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"crmsync/internal/domain"
)

// WorkspaceAdapter pushes result sets to the BI workspace as tables.
type WorkspaceAdapter struct {
	logger *slog.Logger
}

// NewWorkspaceAdapter creates the bi-workspace adapter.
func NewWorkspaceAdapter(logger *slog.Logger) *WorkspaceAdapter {
	return &WorkspaceAdapter{logger: logger}
}

// Kind returns the target kind this adapter serves.
func (a *WorkspaceAdapter) Kind() domain.TargetKind { return domain.TargetBIWorkspace }

// ValidateDescriptor requires a destination name and a workspace identifier.
func (a *WorkspaceAdapter) ValidateDescriptor(d domain.TargetDescriptor) error {
	if d.Name == "" {
		return domain.ErrConfiguration("%s target: missing destination name", a.Kind())
	}
	if d.Param("workspace") == "" {
		return domain.ErrConfiguration("%s target %q: missing required parameter \"workspace\"", a.Kind(), d.Name)
	}
	return nil
}

// Deliver uploads the payload as a table in the configured workspace.
func (a *WorkspaceAdapter) Deliver(ctx context.Context, sess domain.Session, p domain.Payload, d domain.TargetDescriptor) (*domain.DeliveryReceipt, error) {
	endpoint := fmt.Sprintf("/api/v1/workspaces/%s/tables", url.PathEscape(d.Param("workspace")))
	id, err := pushUpload(ctx, a.Kind(), sess, endpoint, p, d)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("workspace delivery complete", "destination", id, "rows", p.Result.RowCount())
	return &domain.DeliveryReceipt{DestinationID: id, RecordCount: p.Result.RowCount()}, nil
}

var _ domain.TargetAdapter = (*WorkspaceAdapter)(nil)
