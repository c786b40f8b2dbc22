/*
handlers.go - HTTP API handlers for the time clock

ENDPOINTS:
  People:
    GET    /api/people                  List people
    POST   /api/people                  Register (CPF + name)
    GET    /api/people/{id}             Get person
    POST   /api/people/{id}/punches     Punch
    GET    /api/people/{id}/punches     Punches of one day (?date=YYYY-MM-DD)

  Reports:
    GET    /api/punches                 Raw punch log
    GET    /api/reports/hours           Worked hours per person-day
    GET    /api/reports/balance         Cumulative balance (?workload=8)

  Export:
    GET    /api/export/punches.xlsx     Spreadsheet of the punch log
    GET    /api/export/punches.csv      CSV of the punch log

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Missing location, unknown kind, bad input
  - 404: Person not registered
  - 409: Invalid punch sequence (body carries last_kind)
  - 500: Store failures, integrity errors

SECURITY NOTE:
  No authentication. Identity is self-asserted CPF + name.
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/timeclock/export"
	"github.com/warp/timeclock/punch"
	"github.com/warp/timeclock/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo     punch.Repository
	Recorder *punch.Recorder
	Workload decimal.Decimal
	Logger   *zap.Logger
}

// NewHandler creates a handler. workload is the default target daily hours.
func NewHandler(repo punch.Repository, recorder *punch.Recorder, workload decimal.Decimal, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Repo:     repo,
		Recorder: recorder,
		Workload: workload,
		Logger:   logger,
	}
}

// =============================================================================
// PEOPLE HANDLERS
// =============================================================================

// ListPeople returns all registered people.
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.Repo.ListPeople(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list people", err)
		return
	}

	dtos := make([]PersonDTO, len(people))
	for i, p := range people {
		dtos[i] = toPersonDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Register creates a person on first sight, or returns the existing one.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, created, err := h.Recorder.Register(r.Context(), punch.PersonID(req.ID), req.Name)
	if err != nil {
		h.writePunchError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, RegisterResponse{Person: toPersonDTO(p), Created: created})
}

// GetPerson returns a single person.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := punch.PersonID(chi.URLParam(r, "id"))

	p, err := h.Repo.GetPerson(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to get person", err)
		return
	}
	if p == nil {
		h.writeError(w, http.StatusNotFound, "Person not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTO(*p))
}

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// Punch records a punch at the current time.
func (h *Handler) Punch(w http.ResponseWriter, r *http.Request) {
	var req PunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	kind, err := punch.ParseKind(req.Kind)
	if err != nil {
		h.writePunchError(w, err)
		return
	}

	e, err := h.Recorder.Punch(r.Context(), punch.PunchRequest{
		PersonID: punch.PersonID(chi.URLParam(r, "id")),
		Kind:     kind,
		Location: punch.Location{Latitude: req.Latitude, Longitude: req.Longitude},
	})
	if err != nil {
		h.writePunchError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(e))
}

// GetDay returns one person's punches for ?date= (default today).
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	id := punch.PersonID(chi.URLParam(r, "id"))

	date := punch.Today(h.Recorder.Clock())
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := punch.ParseDate(s)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		date = d
	}

	events, err := h.Recorder.Day(r.Context(), id, date)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// ListPunches returns the whole punch log.
func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	events, err := h.Repo.All(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// HoursReport returns worked hours per person-day.
func (h *Handler) HoursReport(w http.ResponseWriter, r *http.Request) {
	events, err := h.Repo.All(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
		return
	}

	totals := report.DailyTotals(events)
	dtos := make([]DailyTotalDTO, len(totals))
	for i, t := range totals {
		dtos[i] = toDailyTotalDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// BalanceReport returns the cumulative balance of every person.
func (h *Handler) BalanceReport(w http.ResponseWriter, r *http.Request) {
	workload := h.Workload
	if s := r.URL.Query().Get("workload"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() {
			h.writeError(w, http.StatusBadRequest, "Invalid workload", err)
			return
		}
		workload = d
	}

	ctx := r.Context()
	events, err := h.Repo.All(ctx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
		return
	}
	people, err := h.Repo.ListPeople(ctx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list people", err)
		return
	}

	rows, err := report.ComputeBalance(report.ComputeHours(events), people, workload)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Punch log references an unregistered person", err)
		return
	}

	dtos := make([]BalanceDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toBalanceDTO(row)
	}
	writeJSON(w, http.StatusOK, BalanceReportDTO{
		WorkloadHours: workload.InexactFloat64(),
		Rows:          dtos,
	})
}

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// ExportXLSX downloads the punch log as a workbook.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	events, err := h.Repo.All(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
		return
	}

	data, err := export.XLSX(events)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="punches.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ExportCSV downloads the punch log as CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	events, err := h.Repo.All(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
		return
	}

	var buf bytes.Buffer
	if err := export.CSV(&buf, events); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to build csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="punches.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error(message, zap.Error(err))
	}
	writeJSON(w, status, resp)
}

// writePunchError maps punch errors to status codes.
func (h *Handler) writePunchError(w http.ResponseWriter, err error) {
	var seqErr *punch.InvalidSequenceError
	switch {
	case errors.As(err, &seqErr):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:    "Invalid punch sequence",
			Details:  seqErr.Error(),
			LastKind: seqErr.Last.String(),
		})
	case errors.Is(err, punch.ErrMissingLocation):
		h.writeError(w, http.StatusBadRequest, "Location not captured; allow location access and retry", err)
	case punch.IsNotFound(err):
		h.writeError(w, http.StatusNotFound, "Person not registered", err)
	case punch.IsClientError(err):
		h.writeError(w, http.StatusBadRequest, "Invalid input", err)
	default:
		h.writeError(w, http.StatusInternalServerError, "Failed to record punch", err)
	}
}
