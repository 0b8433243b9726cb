/*
handlers.go - HTTP API handlers for the viability engine

PURPOSE:
  Exposes the scheduling engine via REST API. Handles HTTP request and
  response, JSON serialization, and delegates to the project package.
  Schedules are recomputed from stored inputs on every read.

ENDPOINTS:
  Evaluation:
    POST   /api/evaluate                     Schedules for ad-hoc inputs

  Projects:
    GET    /api/projects                     List saved projects
    POST   /api/projects                     Save inputs (JSON)
    POST   /api/projects/import              Save inputs (xlsx upload)
    GET    /api/projects/{id}                Project with its inputs
    PUT    /api/projects/{id}                Replace inputs
    DELETE /api/projects/{id}                Remove project

  Schedules of a saved project:
    GET    /api/projects/{id}/summary
    GET    /api/projects/{id}/sales
    GET    /api/projects/{id}/financing
    GET    /api/projects/{id}/expenses
    GET    /api/projects/{id}/cashflow
    GET    /api/projects/{id}/export.xlsx    All schedules as a workbook
    GET    /api/projects/{id}/inputs.xlsx    Inputs as an editable workbook

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON, unreadable workbook
  - 404: Project not found
  - 422: Configuration or input shape error in the model
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Bundled sample projects
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/warp/viability/factory"
	"github.com/warp/viability/project"
	"github.com/warp/viability/schedule"
	"github.com/warp/viability/workbook"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    project.Store
	Logger   *zap.Logger
	Loader   *workbook.Loader
	Exporter *workbook.Exporter

	// MaxUploadBytes caps workbook uploads.
	MaxUploadBytes int64
}

// NewHandler creates a handler. A nil logger disables logging.
func NewHandler(store project.Store, logger *zap.Logger, export workbook.ExportOptions) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:          store,
		Logger:         logger,
		Loader:         workbook.NewLoader(logger),
		Exporter:       workbook.NewExporter(export, logger),
		MaxUploadBytes: 10 << 20,
	}
}

// evaluation is every schedule of one project.
type evaluation struct {
	project   *project.Project
	sales     project.SalesMatrix
	financing schedule.Matrix
	expenses  schedule.Matrix
	cash      project.CashFlow
}

func evaluate(in project.Inputs) (*evaluation, error) {
	p, err := project.New(in)
	if err != nil {
		return nil, err
	}
	ev := &evaluation{project: p}
	if ev.sales, err = p.SalesSchedule(); err != nil {
		return nil, err
	}
	if ev.financing, err = p.FinancingSchedule(); err != nil {
		return nil, err
	}
	if ev.expenses, err = p.ExpenseSchedule(); err != nil {
		return nil, err
	}
	if ev.cash, err = p.CashFlow(); err != nil {
		return nil, err
	}
	return ev, nil
}

func (ev *evaluation) response() EvaluateResponse {
	months := ev.project.TotalMonths()
	return EvaluateResponse{
		Summary:   toSummaryDTO(ev.project, ev.cash),
		Sales:     toSalesDTO(ev.sales, months),
		Financing: toMatrixDTO(ev.financing, months),
		Expenses:  toMatrixDTO(ev.expenses, months),
		CashFlow:  toCashFlowDTO(ev.cash),
	}
}

// =============================================================================
// EVALUATION
// =============================================================================

// Evaluate computes every schedule for the posted inputs without saving them.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInputs(w, r)
	if !ok {
		return
	}
	ev, err := evaluate(in)
	if err != nil {
		h.writeFailure(w, r, "Failed to evaluate project", err)
		return
	}
	writeJSON(w, http.StatusOK, ev.response())
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all saved projects, newest first.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.List(r.Context())
	if err != nil {
		h.writeFailure(w, r, "Failed to list projects", err)
		return
	}
	dtos := make([]ProjectDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toProjectDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProject saves posted JSON inputs once they evaluate cleanly.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInputs(w, r)
	if !ok {
		return
	}
	h.create(w, r, in)
}

// ImportProject saves inputs read from an uploaded workbook (form field
// "workbook").
func (h *Handler) ImportProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	file, _, err := r.FormFile("workbook")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing workbook upload", err)
		return
	}
	defer file.Close()

	in, err := h.Loader.LoadReader(file)
	if err != nil {
		h.writeFailure(w, r, "Failed to read workbook", err)
		return
	}
	if name := r.FormValue("name"); name != "" {
		in.Name = name
	}
	h.create(w, r, in)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, in project.Inputs) {
	if _, err := evaluate(in); err != nil {
		h.writeFailure(w, r, "Invalid project", err)
		return
	}
	rec, err := h.Store.Create(r.Context(), in)
	if err != nil {
		h.writeFailure(w, r, "Failed to save project", err)
		return
	}
	h.Logger.Info("project saved",
		zap.String("project_id", rec.ID),
		zap.String("name", rec.Name),
		zap.String("request_id", middleware.GetReqID(r.Context())))
	writeJSON(w, http.StatusCreated, toProjectDTO(*rec))
}

// GetProject returns a saved project with its inputs.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, "Failed to get project", err)
		return
	}
	writeJSON(w, http.StatusOK, ProjectDetailDTO{
		ProjectDTO: toProjectDTO(*rec),
		Inputs:     factory.ToJSON(rec.Inputs),
	})
}

// UpdateProject replaces the inputs of a saved project.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInputs(w, r)
	if !ok {
		return
	}
	if _, err := evaluate(in); err != nil {
		h.writeFailure(w, r, "Invalid project", err)
		return
	}
	rec, err := h.Store.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeFailure(w, r, "Failed to update project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*rec))
}

// DeleteProject removes a saved project.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.writeFailure(w, r, "Failed to delete project", err)
		return
	}
	h.Logger.Info("project deleted", zap.String("project_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// loadEvaluation fetches a saved project and evaluates it, writing the
// error response itself when that fails.
func (h *Handler) loadEvaluation(w http.ResponseWriter, r *http.Request) (*evaluation, bool) {
	rec, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, "Failed to get project", err)
		return nil, false
	}
	ev, err := evaluate(rec.Inputs)
	if err != nil {
		h.writeFailure(w, r, "Failed to evaluate project", err)
		return nil, false
	}
	return ev, true
}

// GetSummary returns the headline totals of a saved project.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if ev, ok := h.loadEvaluation(w, r); ok {
		writeJSON(w, http.StatusOK, toSummaryDTO(ev.project, ev.cash))
	}
}

// GetSales returns the sales matrix of a saved project.
func (h *Handler) GetSales(w http.ResponseWriter, r *http.Request) {
	if ev, ok := h.loadEvaluation(w, r); ok {
		writeJSON(w, http.StatusOK, toSalesDTO(ev.sales, ev.project.TotalMonths()))
	}
}

// GetFinancing returns one receivable row per unit sold.
func (h *Handler) GetFinancing(w http.ResponseWriter, r *http.Request) {
	if ev, ok := h.loadEvaluation(w, r); ok {
		writeJSON(w, http.StatusOK, toMatrixDTO(ev.financing, ev.project.TotalMonths()))
	}
}

// GetExpenses returns the expense matrix of a saved project.
func (h *Handler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	if ev, ok := h.loadEvaluation(w, r); ok {
		writeJSON(w, http.StatusOK, toMatrixDTO(ev.expenses, ev.project.TotalMonths()))
	}
}

// GetCashFlow returns the per-month cash flow of a saved project.
func (h *Handler) GetCashFlow(w http.ResponseWriter, r *http.Request) {
	if ev, ok := h.loadEvaluation(w, r); ok {
		writeJSON(w, http.StatusOK, toCashFlowDTO(ev.cash))
	}
}

// ExportProject streams every schedule as an xlsx workbook.
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadEvaluation(w, r)
	if !ok {
		return
	}
	// Buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.Exporter.Export(&buf, ev.project); err != nil {
		h.writeFailure(w, r, "Failed to export project", err)
		return
	}
	writeXLSX(w, "schedules.xlsx", buf.Bytes())
}

// ExportInputs streams the stored inputs as an editable workbook.
func (h *Handler) ExportInputs(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, "Failed to get project", err)
		return
	}
	var buf bytes.Buffer
	if err := workbook.SaveInputs(&buf, rec.Inputs); err != nil {
		h.writeFailure(w, r, "Failed to export inputs", err)
		return
	}
	writeXLSX(w, "inputs.xlsx", buf.Bytes())
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decodeInputs(w http.ResponseWriter, r *http.Request) (project.Inputs, bool) {
	var doc factory.InputsJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return project.Inputs{}, false
	}
	in, err := factory.FromJSON(doc)
	if err != nil {
		h.writeFailure(w, r, "Invalid project", err)
		return project.Inputs{}, false
	}
	return in, true
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case schedule.IsModelError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, project.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, workbook.ErrUnreadable),
		errors.Is(err, workbook.ErrMissingSheet),
		errors.Is(err, workbook.ErrMissingColumn),
		errors.Is(err, workbook.ErrBadCell):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure writes err with its mapped status and logs internal errors.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(message,
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	}

	resp := ErrorResponse{Error: message, Details: err.Error()}
	var cfg *schedule.ConfigurationError
	var shape *schedule.InputShapeError
	switch {
	case errors.As(err, &cfg):
		resp.Subject = cfg.Subject
		if cfg.Month != schedule.NoMonth {
			month := cfg.Month
			resp.Month = &month
		}
	case errors.As(err, &shape):
		resp.Subject = shape.Subject
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
