// Package crm executes queries against the CRM platform's REST query
// endpoint. The query dialect is opaque here: query text goes out, rows come
// back.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"crmsync/internal/auth"
	"crmsync/internal/domain"
)

// queryResponse is the wire shape of the CRM query endpoint.
type queryResponse struct {
	Columns []string     `json:"columns"`
	Rows    []domain.Row `json:"rows"`
}

// errorResponse is the wire shape of a CRM error payload.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Executor implements domain.QueryExecutor over the CRM REST API.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a CRM query executor.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

// RunQuery posts the query to the CRM platform and returns columns plus rows
// in platform order. All failures surface as QueryErrors; the session is
// never mutated.
func (e *Executor) RunQuery(ctx context.Context, sess domain.Session, queryText string) ([]string, []domain.Row, error) {
	hs, ok := sess.(*auth.HTTPSession)
	if !ok {
		return nil, nil, domain.ErrQuery(nil, "run query: session is not a CRM session")
	}

	body, err := json.Marshal(map[string]string{"query": queryText})
	if err != nil {
		return nil, nil, domain.ErrQuery(err, "run query: encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hs.BaseURL+"/api/v1/query", bytes.NewReader(body))
	if err != nil {
		return nil, nil, domain.ErrQuery(err, "run query: build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+hs.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := hs.Client.Do(req)
	if err != nil {
		return nil, nil, domain.ErrQuery(err, "run query: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, domain.ErrQuery(nil, "run query: %s", readError(resp))
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, domain.ErrQuery(err, "run query: decode response: %v", err)
	}

	e.logger.Debug("query executed", "rows", len(out.Rows))
	return out.Columns, out.Rows, nil
}

// readError extracts a human-readable message from an error response,
// falling back to the HTTP status when the body is not the expected shape.
func readError(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Message != "" {
			if e.Code != "" {
				return fmt.Sprintf("%s: %s", e.Code, e.Message)
			}
			return e.Message
		}
	}
	return resp.Status
}

// Compile-time check that Executor implements the collaborator contract.
var _ domain.QueryExecutor = (*Executor)(nil)
