// Package api exposes the sync service over HTTP: ad-hoc queries, manual job
// triggers, and run history.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"crmsync/internal/domain"
)

// syncService defines the operations the API handler needs from the sync
// service.
type syncService interface {
	ListJobs() []domain.Job
	TriggerRun(ctx context.Context, jobName string, triggerType string) (*domain.JobReport, error)
	RunQuery(ctx context.Context, queryText string) (*domain.ResultSet, error)
	GetRun(ctx context.Context, runID string) (*domain.SyncRun, error)
	ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.SyncRun, int64, error)
}

// Handler serves the /v1 API.
type Handler struct {
	svc    syncService
	logger *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(svc syncService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type runQueryRequest struct {
	Query string `json:"query"`
}

type jobSummary struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule,omitempty"`
	Tasks    int    `json:"tasks"`
}

type runSummary struct {
	ID          string               `json:"id"`
	JobName     string               `json:"job_name"`
	Status      string               `json:"status"`
	TriggerType string               `json:"trigger_type"`
	StartedAt   *time.Time           `json:"started_at"`
	FinishedAt  *time.Time           `json:"finished_at"`
	CreatedAt   time.Time            `json:"created_at"`
	Outcomes    []domain.TaskOutcome `json:"outcomes,omitempty"`
}

type runListResponse struct {
	Data  []runSummary `json:"data"`
	Total int64        `json:"total"`
}

// RunQuery handles POST /v1/query: execute an ad-hoc read-only query against
// the CRM platform and return the rows as JSON.
func (h *Handler) RunQuery(w http.ResponseWriter, r *http.Request) {
	var req runQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	rs, err := h.svc.RunQuery(r.Context(), req.Query)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rs)
}

// ListJobs handles GET /v1/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.svc.ListJobs()
	out := make([]jobSummary, len(jobs))
	for i, j := range jobs {
		out[i] = jobSummary{Name: j.Name, Schedule: j.Schedule, Tasks: len(j.Tasks)}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

// TriggerRun handles POST /v1/jobs/{name}/run: execute the named job now and
// return the full report, task outcomes included.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	report, err := h.svc.TriggerRun(r.Context(), name, domain.TriggerTypeManual)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// GetRun handles GET /v1/runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, runToAPI(run, true))
}

// ListRuns handles GET /v1/runs with optional job, limit, and offset params.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := domain.RunFilter{}
	if job := r.URL.Query().Get("job"); job != "" {
		filter.JobName = &job
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, r, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	runs, total, err := h.svc.ListRuns(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := runListResponse{Data: make([]runSummary, len(runs)), Total: total}
	for i := range runs {
		out.Data[i] = runToAPI(&runs[i], false)
	}
	h.writeJSON(w, http.StatusOK, out)
}

func runToAPI(run *domain.SyncRun, includeOutcomes bool) runSummary {
	s := runSummary{
		ID:          run.ID,
		JobName:     run.JobName,
		Status:      run.Status,
		TriggerType: run.TriggerType,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		CreatedAt:   run.CreatedAt,
	}
	if includeOutcomes {
		s.Outcomes = run.Outcomes
	}
	return s
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	h.writeError(w, r, status, err.Error())
}

func (h *Handler) writeError(w http.ResponseWriter, _ *http.Request, status int, msg string) {
	h.writeJSON(w, status, errorBody{Code: status, Message: msg})
}
