/*
handlers.go - HTTP API handlers for the worktime engine

PURPOSE:
  Exposes tracker.Service via REST API. Handles HTTP request/response and
  JSON serialization; every rule lives in the service or the engine.

ENDPOINTS:
  Entries:
    GET    /api/entries                 List entries (optional from, to)
    POST   /api/entries/work            Record a work interval
    POST   /api/entries/absence         Record an absence day or range
    PUT    /api/entries/{id}            Edit an entry
    DELETE /api/entries/{id}            Delete an entry

  Stats:
    GET    /api/stats                   Four overtime windows (optional today)
    GET    /api/absences                Year absence counts (optional year)
    GET    /api/absences/recent         Most recent absence records (optional limit)
    GET    /api/reports/{month}         Monthly report, month as YYYY-MM

  History:
    GET    /api/history                 Snapshots and compensations
    POST   /api/history/snapshot        Upsert the snapshot (optional today)
    GET    /api/history/compensations   Compensations and their total

  Settings:
    GET|PUT /api/settings/targets       Weekly target hours
    GET|PUT /api/settings/absence       Vacation entitlement

  Storage:
    GET    /api/backup                  Export blob
    POST   /api/backup                  Import blob (replaces everything)
    GET    /api/storage                 Counts and last export time
    POST   /api/reset                   Clear all data

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, invalid backup
  - 404: Entry not found
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. The engine is single-user and meant
  to run locally.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - tracker/tracker.go: The operations behind every endpoint
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/tracker"
	"github.com/warp/worktime-engine/worktime"
)

// maxBackupBytes bounds an uploaded backup blob.
const maxBackupBytes = 32 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *tracker.Service
	Logger  *slog.Logger
}

// NewHandler creates a new handler over the given service.
func NewHandler(service *tracker.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Service: service, Logger: logger}
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns the ledger, optionally restricted to [from, to].
// Either bound may be omitted.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	fromRaw, toRaw := r.URL.Query().Get("from"), r.URL.Query().Get("to")

	var (
		entries []worktime.TimeEntry
		err     error
	)
	if fromRaw == "" && toRaw == "" {
		entries, err = h.Service.Entries(r.Context())
	} else {
		from, to := generic.MinDate, generic.MaxDate
		if fromRaw != "" {
			if from, err = generic.ParseDate(fromRaw); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid from date", err)
				return
			}
		}
		if toRaw != "" {
			if to, err = generic.ParseDate(toRaw); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid to date", err)
				return
			}
		}
		entries, err = h.Service.EntriesBetween(r.Context(), from, to)
	}
	if err != nil {
		h.writeServiceError(w, "Failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// RecordWork stores a work interval.
func (h *Handler) RecordWork(w http.ResponseWriter, r *http.Request) {
	var req WorkEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := h.Service.RecordWork(r.Context(), tracker.WorkInput{
		Date:         req.Date,
		Start:        req.StartTime,
		End:          req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Note:         req.Note,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to record work", err)
		return
	}

	EntriesRecorded.WithLabelValues(string(entry.Type)).Inc()
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// RecordAbsence stores one absence record per day of the range.
func (h *Handler) RecordAbsence(w http.ResponseWriter, r *http.Request) {
	var req AbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	typ, err := worktime.ParseEntryType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid absence type", err)
		return
	}
	in := tracker.AbsenceInput{
		From:              req.From,
		Type:              typ,
		Note:              req.Note,
		CompensationHours: decimal.NewFromFloat(req.CompensationHours),
	}
	if req.To != nil {
		in.To = *req.To
	}

	result, err := h.Service.RecordAbsence(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, "Failed to record absence", err)
		return
	}

	EntriesRecorded.WithLabelValues(string(typ)).Add(float64(len(result.Entries)))

	resp := AbsenceResponse{Entries: toEntryDTOs(result.Entries)}
	if result.Compensation != nil {
		item := toHistoryItemDTO(result.Compensation)
		resp.Compensation = &item
	}
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateEntry edits an entry in place.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := h.Service.UpdateEntry(r.Context(), id, tracker.EntryUpdate{
		Start:        req.StartTime,
		End:          req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Note:         req.Note,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to update entry", err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// DeleteEntry removes an entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.DeleteEntry(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete entry", err)
		return
	}

	EntriesDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STATS HANDLERS
// =============================================================================

// GetStats returns the four overtime windows.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	today, ok := h.todayParam(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.Stats(r.Context(), today)
	if err != nil {
		h.writeServiceError(w, "Failed to compute stats", err)
		return
	}

	observeOvertime(stats)
	writeJSON(w, http.StatusOK, toStatsDTO(today, stats))
}

// GetYearAbsences returns vacation, sick, and holiday counts for a year.
func (h *Handler) GetYearAbsences(w http.ResponseWriter, r *http.Request) {
	year := h.Service.Today().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 9999 {
			writeError(w, http.StatusBadRequest, "Invalid year", fmt.Errorf("%w: year %q", generic.ErrInvalidDate, raw))
			return
		}
		year = parsed
	}

	stats, err := h.Service.YearAbsences(r.Context(), year)
	if err != nil {
		h.writeServiceError(w, "Failed to compute absences", err)
		return
	}

	writeJSON(w, http.StatusOK, YearAbsencesDTO{
		Year: stats.Year,
		Vacation: VacationDTO{
			Used:      stats.Vacation.Used,
			Remaining: stats.Vacation.Remaining.Float64(),
			Total:     stats.Vacation.Total.Float64(),
		},
		Sick:    stats.SickUsed,
		Holiday: stats.HolidayUsed,
	})
}

// GetRecentAbsences returns the most recent absence records, newest first.
func (h *Handler) GetRecentAbsences(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	entries, err := h.Service.RecentAbsences(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, "Failed to list absences", err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// GetMonthlyReport aggregates one calendar month.
func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	month, err := generic.ParseYearMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	report, err := h.Service.MonthlyReport(r.Context(), month)
	if err != nil {
		h.writeServiceError(w, "Failed to build report", err)
		return
	}

	writeJSON(w, http.StatusOK, toMonthlyReportDTO(report))
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// GetHistory returns the log in insertion order.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Service.History(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load history", err)
		return
	}

	dtos := make([]HistoryItemDTO, len(history))
	for i, item := range history {
		dtos[i] = toHistoryItemDTO(item)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// TakeSnapshot upserts the snapshot for today.
func (h *Handler) TakeSnapshot(w http.ResponseWriter, r *http.Request) {
	today, ok := h.todayParam(w, r)
	if !ok {
		return
	}

	snap, err := h.Service.Snapshot(r.Context(), today)
	if err != nil {
		h.writeServiceError(w, "Failed to take snapshot", err)
		return
	}

	observeSnapshot(snap, "api")
	writeJSON(w, http.StatusOK, toHistoryItemDTO(snap))
}

// GetCompensations returns the compensations, newest first, with their total.
func (h *Handler) GetCompensations(w http.ResponseWriter, r *http.Request) {
	comps, total, err := h.Service.Compensations(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load compensations", err)
		return
	}

	dtos := make([]HistoryItemDTO, len(comps))
	for i, c := range comps {
		dtos[i] = toHistoryItemDTO(c)
	}
	writeJSON(w, http.StatusOK, CompensationsResponse{Compensations: dtos, Total: total.Float64()})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetWeeklyTargets returns the weekly schedule.
func (h *Handler) GetWeeklyTargets(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Settings(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeeklyTargetsDTO(settings.WeeklyTargets))
}

// UpdateWeeklyTargets replaces the weekly schedule. All seven days are required.
func (h *Handler) UpdateWeeklyTargets(w http.ResponseWriter, r *http.Request) {
	var req WeeklyTargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	targets, missing := req.weeklyTargets()
	if missing != "" {
		writeError(w, http.StatusBadRequest, "Missing weekday", fmt.Errorf("%w: %s is required", generic.ErrInvalidSettings, missing))
		return
	}

	settings, err := h.Service.UpdateWeeklyTargets(r.Context(), targets)
	if err != nil {
		h.writeServiceError(w, "Failed to update targets", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeeklyTargetsDTO(settings.WeeklyTargets))
}

// GetAbsenceSettings returns the vacation entitlement.
func (h *Handler) GetAbsenceSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Settings(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceSettingsDTO(settings.Absence))
}

// UpdateAbsenceSettings replaces the vacation entitlement.
func (h *Handler) UpdateAbsenceSettings(w http.ResponseWriter, r *http.Request) {
	var req AbsenceSettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	settings, err := h.Service.UpdateAbsenceSettings(r.Context(), req.absenceSettings())
	if err != nil {
		h.writeServiceError(w, "Failed to update absence settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toAbsenceSettingsDTO(settings.Absence))
}

// =============================================================================
// STORAGE HANDLERS
// =============================================================================

// ExportBackup returns the whole dataset as a backup blob.
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.Export(r.Context())
	if err != nil {
		BackupOperations.WithLabelValues("export", "error").Inc()
		h.writeServiceError(w, "Failed to export", err)
		return
	}
	BackupOperations.WithLabelValues("export", "ok").Inc()

	filename := fmt.Sprintf("worktime-backup-%s.json", h.Service.Today())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportBackup validates a blob and replaces all data with it.
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Backup too large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read backup", err)
		return
	}

	summary, err := h.Service.Import(r.Context(), data)
	if err != nil {
		BackupOperations.WithLabelValues("import", "error").Inc()
		h.writeServiceError(w, "Failed to import", err)
		return
	}
	BackupOperations.WithLabelValues("import", "ok").Inc()

	writeJSON(w, http.StatusOK, ImportResponse{Entries: summary.Entries, History: summary.History})
}

// GetStorageInfo returns counts and the last export time.
func (h *Handler) GetStorageInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.Service.StorageInfo(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to read storage info", err)
		return
	}
	writeJSON(w, http.StatusOK, StorageInfoDTO{
		TotalEntries:   info.TotalEntries,
		WorkEntries:    info.WorkEntries,
		AbsenceEntries: info.AbsenceEntries,
		HistoryEntries: info.HistoryEntries,
		LastBackup:     info.LastBackup,
	})
}

// ResetData clears all entries and history and restores default settings.
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Clear(r.Context()); err != nil {
		h.writeServiceError(w, "Failed to reset data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

// todayParam reads ?today=YYYY-MM-DD, defaulting to the service clock.
func (h *Handler) todayParam(w http.ResponseWriter, r *http.Request) (generic.Date, bool) {
	raw := r.URL.Query().Get("today")
	if raw == "" {
		return h.Service.Today(), true
	}
	today, err := generic.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid today", err)
		return generic.Date{}, false
	}
	return today, true
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

// writeServiceError maps domain errors to status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.Error(message, "error", err)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
