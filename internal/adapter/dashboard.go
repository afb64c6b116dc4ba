// Package adapter holds one delivery adapter per target kind. Adapters are
// registered in a lookup keyed on kind, so adding a target kind means adding
// an adapter here, never editing the runners.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"crmsync/internal/auth"
	"crmsync/internal/domain"
)

// uploadRequest is the wire shape both HTTP targets accept for tabular
// uploads.
type uploadRequest struct {
	Name    string       `json:"name"`
	Columns []string     `json:"columns"`
	Rows    []domain.Row `json:"rows"`
}

// uploadResponse carries the destination identifier the target assigned to
// the uploaded dataset.
type uploadResponse struct {
	ID string `json:"id"`
}

// DashboardAdapter pushes result sets to the dashboarding server as project
// datasets.
type DashboardAdapter struct {
	logger *slog.Logger
}

// NewDashboardAdapter creates the dashboard-server adapter.
func NewDashboardAdapter(logger *slog.Logger) *DashboardAdapter {
	return &DashboardAdapter{logger: logger}
}

// Kind returns the target kind this adapter serves.
func (a *DashboardAdapter) Kind() domain.TargetKind { return domain.TargetDashboardServer }

// ValidateDescriptor requires a destination name and a project identifier.
func (a *DashboardAdapter) ValidateDescriptor(d domain.TargetDescriptor) error {
	if d.Name == "" {
		return domain.ErrConfiguration("%s target: missing destination name", a.Kind())
	}
	if d.Param("project") == "" {
		return domain.ErrConfiguration("%s target %q: missing required parameter \"project\"", a.Kind(), d.Name)
	}
	return nil
}

// Deliver uploads the payload as a dataset in the configured project.
func (a *DashboardAdapter) Deliver(ctx context.Context, sess domain.Session, p domain.Payload, d domain.TargetDescriptor) (*domain.DeliveryReceipt, error) {
	endpoint := fmt.Sprintf("/api/v1/projects/%s/datasets", url.PathEscape(d.Param("project")))
	id, err := pushUpload(ctx, a.Kind(), sess, endpoint, p, d)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("dashboard delivery complete", "destination", id, "rows", p.Result.RowCount())
	return &domain.DeliveryReceipt{DestinationID: id, RecordCount: p.Result.RowCount()}, nil
}

// pushUpload posts the result set to an HTTP target and returns the
// destination identifier. Shared by the dashboard and workspace adapters,
// which speak the same upload shape at different endpoints.
func pushUpload(ctx context.Context, kind domain.TargetKind, sess domain.Session, endpoint string, p domain.Payload, d domain.TargetDescriptor) (string, error) {
	hs, ok := sess.(*auth.HTTPSession)
	if !ok {
		return "", domain.ErrDelivery(kind, nil, "session is not an HTTP session")
	}

	body, err := json.Marshal(uploadRequest{
		Name:    d.Name,
		Columns: p.Result.Columns,
		Rows:    p.Result.Rows,
	})
	if err != nil {
		return "", domain.ErrDelivery(kind, err, "encode upload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hs.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.ErrDelivery(kind, err, "build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+hs.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := hs.Client.Do(req)
	if err != nil {
		return "", domain.ErrDelivery(kind, err, "destination unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", domain.ErrDelivery(kind, nil, "destination rejected payload: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.ErrDelivery(kind, err, "decode upload response: %v", err)
	}
	if out.ID == "" {
		return "", domain.ErrDelivery(kind, nil, "destination returned no identifier")
	}
	return out.ID, nil
}

// Compile-time check that the adapter satisfies the registry contract.
var _ domain.TargetAdapter = (*DashboardAdapter)(nil)
