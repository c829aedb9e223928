/*
tracker.go - Application service over the worktime engine

PURPOSE:
  Everything that changes the ledger goes through Service. It validates raw
  input, assigns IDs, persists through worktime.Store, and keeps the
  overtime history current. Reads load the ledger and hand it to the pure
  calculators in package worktime.

TODAY:
  Every window is relative to a calendar day. Read operations take today
  explicitly; write operations that refresh the history use Service.Now.

HISTORY UPKEEP:
  - RecordWork and work edits upsert the snapshot for today
  - RecordAbsence may append a compensation
  - Snapshot (and the scheduler) upsert on demand

CONCURRENCY:
  Writes that read-modify-write the history are serialized by a mutex so
  two concurrent upserts cannot produce two snapshots for one date.

SEE ALSO:
  - worktime/overtime.go: The four windows
  - backup/backup.go: Export / import format
  - api/handlers.go: HTTP surface
  - cmd/worktime: CLI surface
*/
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/worktime-engine/backup"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

// maxAbsenceRangeDays bounds a single absence request.
const maxAbsenceRangeDays = 366

// Service orchestrates the store and the engine.
type Service struct {
	Store  worktime.Store
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string

	// Defaults are the settings Clear restores.
	Defaults worktime.Settings

	mu sync.Mutex
}

// New creates a service with the wall clock and random UUIDs.
func New(store worktime.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Store:    store,
		Logger:   logger,
		Now:      time.Now,
		NewID:    func() string { return uuid.NewString() },
		Defaults: worktime.DefaultSettings(),
	}
}

// Today is the current calendar day according to Now.
func (s *Service) Today() generic.Date {
	return generic.DateOf(s.Now())
}

// =============================================================================
// ENTRY LIFECYCLE
// =============================================================================

// WorkInput is a raw work record as typed by the user.
type WorkInput struct {
	Date         generic.Date
	Start        string // HH:MM
	End          string // HH:MM
	BreakMinutes int
	Note         string
}

// RecordWork stores a work record and refreshes today's snapshot.
func (s *Service) RecordWork(ctx context.Context, in WorkInput) (worktime.TimeEntry, error) {
	start, end, err := parseInterval(in.Start, in.End)
	if err != nil {
		return worktime.TimeEntry{}, err
	}
	if in.Date.IsZero() {
		return worktime.TimeEntry{}, &generic.EntryValidationError{Field: "date", Message: "is required"}
	}
	if in.BreakMinutes < 0 {
		return worktime.TimeEntry{}, &generic.EntryValidationError{Field: "breakMinutes", Message: "must not be negative"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := worktime.NewWorkEntry(s.NewID(), in.Date, start, end, in.BreakMinutes, in.Note)
	if err := s.Store.SaveEntries(ctx, []worktime.TimeEntry{entry}); err != nil {
		return worktime.TimeEntry{}, fmt.Errorf("failed to save work entry: %w", err)
	}

	s.Logger.Info("work recorded",
		"id", entry.ID,
		"date", entry.Date.String(),
		"hours", entry.WorkedHours.Value.String(),
	)

	s.refreshSnapshotLocked(ctx)
	return entry, nil
}

// refreshSnapshotLocked upserts today's snapshot after a ledger write. The
// write has already succeeded, so a failure is logged and left to the next
// scheduler run.
func (s *Service) refreshSnapshotLocked(ctx context.Context) {
	if _, err := s.upsertSnapshotLocked(ctx, s.Today()); err != nil {
		s.Logger.Warn("snapshot refresh failed", "error", err)
	}
}

// AbsenceInput is a raw absence request. To may be zero for a single day.
type AbsenceInput struct {
	From              generic.Date
	To                generic.Date
	Type              worktime.EntryType
	Note              string
	CompensationHours decimal.Decimal // > 0 books a compensation
}

// AbsenceResult is what RecordAbsence wrote.
type AbsenceResult struct {
	Entries      []worktime.TimeEntry
	Compensation *worktime.Compensation
}

// RecordAbsence stores one absence record per day.
//
// A single day is always recorded. A range skips days whose weekday target
// is zero (days off); a range made only of days off is rejected.
func (s *Service) RecordAbsence(ctx context.Context, in AbsenceInput) (AbsenceResult, error) {
	// 1. Validate input
	if !in.Type.Valid() || !in.Type.IsAbsence() {
		return AbsenceResult{}, &generic.EntryValidationError{Field: "type", Message: "must be vacation, sick or holiday"}
	}
	if in.From.IsZero() {
		return AbsenceResult{}, &generic.EntryValidationError{Field: "from", Message: "is required"}
	}
	to := in.To
	if to.IsZero() {
		to = in.From
	}
	if to.Before(in.From) {
		return AbsenceResult{}, &generic.EntryValidationError{Field: "to", Message: "must not be before from"}
	}
	if to.Time.Sub(in.From.Time) >= maxAbsenceRangeDays*24*time.Hour {
		return AbsenceResult{}, &generic.EntryValidationError{Field: "to", Message: fmt.Sprintf("range exceeds %d days", maxAbsenceRangeDays)}
	}
	days := generic.Period{Start: in.From, End: to}.Days()
	if in.CompensationHours.IsNegative() {
		return AbsenceResult{}, &generic.EntryValidationError{Field: "compensationHours", Message: "must not be negative"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.Store.LoadSettings(ctx)
	if err != nil {
		return AbsenceResult{}, fmt.Errorf("failed to load settings: %w", err)
	}

	// 2. Expand the range
	var entries []worktime.TimeEntry
	for _, day := range days {
		if len(days) > 1 && settings.WeeklyTargets.For(day).IsZero() {
			continue
		}
		entries = append(entries, worktime.NewAbsenceEntry(s.NewID(), day, in.Type, in.Note))
	}
	if len(entries) == 0 {
		return AbsenceResult{}, &generic.EntryValidationError{Field: "to", Message: "range contains no working days"}
	}

	var (
		history worktime.History
		comp    *worktime.Compensation
	)
	if in.CompensationHours.IsPositive() {
		comp = &worktime.Compensation{
			ID:          "overtime-compensation-" + s.NewID(),
			Date:        in.From,
			Hours:       generic.Amount{Value: in.CompensationHours.Neg(), Unit: generic.UnitHours},
			Description: "Overtime compensation for " + string(in.Type),
		}
		if history, err = s.Store.LoadHistory(ctx); err != nil {
			return AbsenceResult{}, fmt.Errorf("failed to load history: %w", err)
		}
	}

	// 3. Persist
	if err := s.Store.SaveEntries(ctx, entries); err != nil {
		return AbsenceResult{}, fmt.Errorf("failed to save absence: %w", err)
	}
	result := AbsenceResult{Entries: entries}

	// 4. Optional compensation; the absence days go if it cannot be booked
	if comp != nil {
		if err := s.Store.SaveHistory(ctx, worktime.AddCompensation(history, *comp)); err != nil {
			s.removeEntriesLocked(ctx, entries)
			return AbsenceResult{}, fmt.Errorf("failed to save compensation: %w", err)
		}
		result.Compensation = comp
		s.Logger.Info("compensation booked", "date", comp.Date.String(), "hours", comp.Hours.Value.String())
	}

	s.Logger.Info("absence recorded",
		"type", string(in.Type),
		"from", in.From.String(),
		"to", to.String(),
		"days", len(entries),
	)

	return result, nil
}

func (s *Service) removeEntriesLocked(ctx context.Context, entries []worktime.TimeEntry) {
	for _, e := range entries {
		if err := s.Store.DeleteEntry(ctx, e.ID); err != nil {
			s.Logger.Error("failed to remove entry", "id", e.ID, "error", err)
		}
	}
}

// EntryUpdate carries the fields to change. Nil means unchanged.
type EntryUpdate struct {
	Start        *string
	End          *string
	BreakMinutes *int
	Note         *string
}

// UpdateEntry edits an entry in place. Work entries get their worked hours
// recomputed; absence entries may only change their note.
func (s *Service) UpdateEntry(ctx context.Context, id string, upd EntryUpdate) (worktime.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.Store.GetEntry(ctx, id)
	if err != nil {
		return worktime.TimeEntry{}, err
	}

	if entry.IsAbsence() {
		if upd.Start != nil || upd.End != nil || upd.BreakMinutes != nil {
			return worktime.TimeEntry{}, &generic.EntryValidationError{Field: "type", Message: "absence entries have no times"}
		}
	} else {
		start, end := entry.Start.String(), entry.End.String()
		if upd.Start != nil {
			start = *upd.Start
		}
		if upd.End != nil {
			end = *upd.End
		}
		entry.Start, entry.End, err = parseInterval(start, end)
		if err != nil {
			return worktime.TimeEntry{}, err
		}
		if upd.BreakMinutes != nil {
			if *upd.BreakMinutes < 0 {
				return worktime.TimeEntry{}, &generic.EntryValidationError{Field: "breakMinutes", Message: "must not be negative"}
			}
			entry.BreakMinutes = *upd.BreakMinutes
		}
		entry.WorkedHours = worktime.WorkedHours(entry.Start, entry.End, entry.BreakMinutes)
	}
	if upd.Note != nil {
		entry.Note = *upd.Note
	}

	if err := s.Store.SaveEntries(ctx, []worktime.TimeEntry{entry}); err != nil {
		return worktime.TimeEntry{}, fmt.Errorf("failed to update entry: %w", err)
	}
	s.Logger.Info("entry updated", "id", entry.ID, "type", string(entry.Type))

	if !entry.IsAbsence() {
		s.refreshSnapshotLocked(ctx)
	}
	return entry, nil
}

// DeleteEntry removes an entry.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Store.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.Logger.Info("entry deleted", "id", id)
	return nil
}

// Entries returns the ledger in insertion order.
func (s *Service) Entries(ctx context.Context) ([]worktime.TimeEntry, error) {
	return s.Store.ListEntries(ctx)
}

// EntriesBetween returns the entries dated in [from, to].
func (s *Service) EntriesBetween(ctx context.Context, from, to generic.Date) ([]worktime.TimeEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", generic.ErrInvalidDate, to, from)
	}
	return s.Store.ListEntriesInRange(ctx, from, to)
}

func parseInterval(startRaw, endRaw string) (worktime.ClockTime, worktime.ClockTime, error) {
	if startRaw == "" {
		return 0, 0, &generic.EntryValidationError{Field: "start", Message: "is required"}
	}
	if endRaw == "" {
		return 0, 0, &generic.EntryValidationError{Field: "end", Message: "is required"}
	}
	start, err := worktime.ParseClockTime(startRaw)
	if err != nil {
		return 0, 0, err
	}
	end, err := worktime.ParseClockTime(endRaw)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// =============================================================================
// READ MODELS
// =============================================================================

// Stats computes the four overtime windows relative to today.
func (s *Service) Stats(ctx context.Context, today generic.Date) (worktime.OvertimeStats, error) {
	entries, settings, err := s.load(ctx)
	if err != nil {
		return worktime.OvertimeStats{}, err
	}
	return worktime.NewOvertimeCalculator(settings.WeeklyTargets).Compute(entries, today), nil
}

// YearAbsences counts the absence records of a calendar year.
func (s *Service) YearAbsences(ctx context.Context, year int) (worktime.YearAbsenceStats, error) {
	entries, err := s.Store.ListEntriesInRange(ctx, generic.StartOfYear(year), generic.EndOfYear(year))
	if err != nil {
		return worktime.YearAbsenceStats{}, err
	}
	settings, err := s.Store.LoadSettings(ctx)
	if err != nil {
		return worktime.YearAbsenceStats{}, err
	}
	return worktime.YearStats(entries, year, settings.Absence), nil
}

// MonthlyReport aggregates one calendar month.
func (s *Service) MonthlyReport(ctx context.Context, month generic.YearMonth) (worktime.MonthlyReport, error) {
	p := month.Period()
	entries, err := s.Store.ListEntriesInRange(ctx, p.Start, p.End)
	if err != nil {
		return worktime.MonthlyReport{}, err
	}
	settings, err := s.Store.LoadSettings(ctx)
	if err != nil {
		return worktime.MonthlyReport{}, err
	}
	return worktime.NewReportBuilder(settings.WeeklyTargets).Build(month, entries), nil
}

// RecentAbsences returns the n most recent absence records, newest date
// first. Records sharing a date stay in ledger order.
func (s *Service) RecentAbsences(ctx context.Context, n int) ([]worktime.TimeEntry, error) {
	entries, err := s.Store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	// ledger order; the stable sort keeps it for records on the same date
	absences := []worktime.TimeEntry{}
	for _, e := range entries {
		if e.IsAbsence() {
			absences = append(absences, e)
		}
	}
	sort.SliceStable(absences, func(i, j int) bool { return absences[i].Date.After(absences[j].Date) })

	if n >= 0 && len(absences) > n {
		absences = absences[:n]
	}
	return absences, nil
}

func (s *Service) load(ctx context.Context) ([]worktime.TimeEntry, worktime.Settings, error) {
	entries, err := s.Store.ListEntries(ctx)
	if err != nil {
		return nil, worktime.Settings{}, fmt.Errorf("failed to load entries: %w", err)
	}
	settings, err := s.Store.LoadSettings(ctx)
	if err != nil {
		return nil, worktime.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return entries, settings, nil
}

// =============================================================================
// HISTORY
// =============================================================================

// Snapshot recomputes the windows for today and upserts the snapshot.
func (s *Service) Snapshot(ctx context.Context, today generic.Date) (*worktime.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertSnapshotLocked(ctx, today)
}

func (s *Service) upsertSnapshotLocked(ctx context.Context, today generic.Date) (*worktime.Snapshot, error) {
	entries, settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.Store.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	stats := worktime.NewOvertimeCalculator(settings.WeeklyTargets).Compute(entries, today)
	history = worktime.UpsertSnapshot(history, today, stats)
	if err := s.Store.SaveHistory(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	snap, _ := history.SnapshotFor(today)
	s.Logger.Debug("snapshot upserted",
		"date", today.String(),
		"cumulative", snap.CumulativeOvertime.Value.String(),
	)
	return snap, nil
}

// History returns the log in insertion order.
func (s *Service) History(ctx context.Context) (worktime.History, error) {
	return s.Store.LoadHistory(ctx)
}

// Compensations returns the compensations, newest first, and their total.
func (s *Service) Compensations(ctx context.Context) ([]*worktime.Compensation, generic.Amount, error) {
	history, err := s.Store.LoadHistory(ctx)
	if err != nil {
		return nil, generic.Amount{}, err
	}
	return history.Compensations(), history.CompensationTotal(), nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings returns the persisted settings.
func (s *Service) Settings(ctx context.Context) (worktime.Settings, error) {
	return s.Store.LoadSettings(ctx)
}

// UpdateWeeklyTargets replaces the weekly schedule.
func (s *Service) UpdateWeeklyTargets(ctx context.Context, targets worktime.WeeklyTargetHours) (worktime.Settings, error) {
	if err := targets.Validate(); err != nil {
		return worktime.Settings{}, err
	}
	return s.updateSettings(ctx, func(st *worktime.Settings) { st.WeeklyTargets = targets })
}

// UpdateAbsenceSettings replaces the vacation entitlement.
func (s *Service) UpdateAbsenceSettings(ctx context.Context, absence worktime.AbsenceSettings) (worktime.Settings, error) {
	if err := absence.Validate(); err != nil {
		return worktime.Settings{}, err
	}
	return s.updateSettings(ctx, func(st *worktime.Settings) { st.Absence = absence })
}

func (s *Service) updateSettings(ctx context.Context, apply func(*worktime.Settings)) (worktime.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.Store.LoadSettings(ctx)
	if err != nil {
		return worktime.Settings{}, err
	}
	apply(&settings)
	if err := s.Store.SaveSettings(ctx, settings); err != nil {
		return worktime.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	s.Logger.Info("settings updated")
	return settings, nil
}

// =============================================================================
// BACKUP
// =============================================================================

// Export writes the whole dataset as a backup blob and records the export time.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.Store.LoadHistory(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	data, err := backup.Encode(worktime.Dataset{Entries: entries, History: history, Settings: settings}, now)
	if err != nil {
		return nil, err
	}

	settings.LastBackup = &now
	if err := s.Store.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to record export time: %w", err)
	}

	s.Logger.Info("data exported", "entries", len(entries), "history", len(history))
	return data, nil
}

// ImportSummary reports what an import replaced the data with.
type ImportSummary struct {
	Entries int
	History int
}

// Import validates a backup blob and replaces all data with it. On any
// validation error nothing is changed.
func (s *Service) Import(ctx context.Context, data []byte) (ImportSummary, error) {
	dataset, err := backup.Decode(data)
	if err != nil {
		return ImportSummary{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Store.Replace(ctx, dataset); err != nil {
		return ImportSummary{}, fmt.Errorf("failed to import: %w", err)
	}

	summary := ImportSummary{Entries: len(dataset.Entries), History: len(dataset.History)}
	s.Logger.Info("data imported", "entries", summary.Entries, "history", summary.History)
	return summary, nil
}

// =============================================================================
// STORAGE
// =============================================================================

// StorageInfo summarizes what is stored.
type StorageInfo struct {
	TotalEntries   int
	WorkEntries    int
	AbsenceEntries int
	HistoryEntries int
	LastBackup     *time.Time
}

func (s *Service) StorageInfo(ctx context.Context) (StorageInfo, error) {
	entries, settings, err := s.load(ctx)
	if err != nil {
		return StorageInfo{}, err
	}
	history, err := s.Store.LoadHistory(ctx)
	if err != nil {
		return StorageInfo{}, err
	}

	info := StorageInfo{
		TotalEntries:   len(entries),
		HistoryEntries: len(history),
		LastBackup:     settings.LastBackup,
	}
	for _, e := range entries {
		if e.IsAbsence() {
			info.AbsenceEntries++
		} else {
			info.WorkEntries++
		}
	}
	return info, nil
}

// Clear removes all entries and history and restores the default settings.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.Store.Replace(ctx, worktime.Dataset{
		Entries:  []worktime.TimeEntry{},
		History:  worktime.History{},
		Settings: s.Defaults,
	})
	if err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	s.Logger.Warn("all data cleared")
	return nil
}
