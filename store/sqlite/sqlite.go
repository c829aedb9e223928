/*
Package sqlite provides a SQLite-backed implementation of worktime.Store.

PURPOSE:
  Persists the ledger, the overtime history log, and the settings row.
  Everything the engine computes is derived on read; nothing cached is stored.

KEY TABLES:
  time_entries: One row per ledger record. seq keeps insertion order; an
                upsert on id updates in place so edits keep their position.
  history:      Snapshots and compensations in log order (seq).
  settings:     Single row (id = 1) with weekly targets and vacation days.

INDEXES:
  - idx_time_entries_date:     Range queries (reports, windows)
  - idx_history_snapshot_date: Enforces one snapshot per date

NUMBERS:
  Hours and days are stored as decimal strings so values survive a round
  trip exactly.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/worktime.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - worktime/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

// Store implements worktime.Store using SQLite.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

func (s *Store) migrate() error {
	schema := `
	-- Ledger records in insertion order
	CREATE TABLE IF NOT EXISTS time_entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		date TEXT NOT NULL,
		start_minutes INTEGER NOT NULL DEFAULT -1,
		end_minutes INTEGER NOT NULL DEFAULT -1,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		worked_hours TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('work', 'vacation', 'sick', 'holiday')),
		note TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_time_entries_date
		ON time_entries(date);

	-- Overtime history log: snapshots and compensations
	CREATE TABLE IF NOT EXISTS history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL CHECK (kind IN ('snapshot', 'compensation')),
		date TEXT NOT NULL,
		compensation_id TEXT,
		hours TEXT,
		description TEXT,
		daily_overtime TEXT,
		weekly_overtime TEXT,
		monthly_overtime TEXT,
		cumulative_overtime TEXT
	);

	-- At most one snapshot per date; compensations may share dates
	CREATE UNIQUE INDEX IF NOT EXISTS idx_history_snapshot_date
		ON history(date) WHERE kind = 'snapshot';

	-- Settings (single row)
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		weekly_targets_json TEXT NOT NULL,
		annual_vacation_days TEXT NOT NULL,
		current_year_vacation_days TEXT NOT NULL,
		daily_target_hours TEXT NOT NULL,
		last_backup TEXT,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

const entryColumns = `id, date, start_minutes, end_minutes, break_minutes, worked_hours, type, note`

// ListEntries returns all entries in insertion order.
func (s *Store) ListEntries(ctx context.Context) ([]worktime.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, `SELECT `+entryColumns+` FROM time_entries ORDER BY seq ASC`)
}

// ListEntriesInRange returns entries dated in [from, to] in insertion order.
func (s *Store) ListEntriesInRange(ctx context.Context, from, to generic.Date) ([]worktime.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + entryColumns + ` FROM time_entries
		WHERE date >= ? AND date <= ?
		ORDER BY seq ASC`
	return s.queryEntries(ctx, query, from.String(), to.String())
}

// GetEntry returns a single entry by ID.
func (s *Store) GetEntry(ctx context.Context, id string) (worktime.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.queryEntries(ctx, `SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return worktime.TimeEntry{}, err
	}
	if len(entries) == 0 {
		return worktime.TimeEntry{}, generic.ErrEntryNotFound
	}
	return entries[0], nil
}

// SaveEntries upserts entries atomically. Updated rows keep their seq.
func (s *Store) SaveEntries(ctx context.Context, entries []worktime.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, e := range entries {
		if err := upsertEntry(ctx, sqlTx, e); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

func upsertEntry(ctx context.Context, db execer, e worktime.TimeEntry) error {
	if e.ID == "" {
		return &generic.EntryValidationError{Field: "id", Message: "must not be empty"}
	}

	query := `
		INSERT INTO time_entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			start_minutes = excluded.start_minutes,
			end_minutes = excluded.end_minutes,
			break_minutes = excluded.break_minutes,
			worked_hours = excluded.worked_hours,
			type = excluded.type,
			note = excluded.note
	`

	_, err := db.ExecContext(ctx, query,
		e.ID,
		e.Date.String(),
		e.Start.Minutes(),
		e.End.Minutes(),
		e.BreakMinutes,
		e.WorkedHours.Value.String(),
		string(e.Type),
		e.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to save entry %s: %w", e.ID, err)
	}
	return nil
}

// DeleteEntry removes an entry by ID.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return generic.ErrEntryNotFound
	}
	return nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]worktime.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []worktime.TimeEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (worktime.TimeEntry, error) {
	var (
		e           worktime.TimeEntry
		date        string
		start, end  int
		workedHours string
		typ         string
	)

	err := rows.Scan(&e.ID, &date, &start, &end, &e.BreakMinutes, &workedHours, &typ, &e.Note)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	if e.Date, err = generic.ParseDate(date); err != nil {
		return e, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	worked, err := decimal.NewFromString(workedHours)
	if err != nil {
		return e, fmt.Errorf("entry %s: bad worked hours %q: %w", e.ID, workedHours, err)
	}
	e.Start = worktime.ClockTime(start)
	e.End = worktime.ClockTime(end)
	e.WorkedHours = generic.Amount{Value: worked, Unit: generic.UnitHours}
	e.Type = worktime.EntryType(typ)

	return e, nil
}

// =============================================================================
// HISTORY
// =============================================================================

// LoadHistory returns the log in insertion order.
func (s *Store) LoadHistory(ctx context.Context) (worktime.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, date, compensation_id, hours, description,
		       daily_overtime, weekly_overtime, monthly_overtime, cumulative_overtime
		FROM history
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	h := worktime.History{}
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		h = append(h, entry)
	}
	return h, rows.Err()
}

func scanHistoryEntry(rows *sql.Rows) (worktime.HistoryEntry, error) {
	var (
		kind, date                         string
		compID, hours, description         sql.NullString
		daily, weekly, monthly, cumulative sql.NullString
	)
	if err := rows.Scan(&kind, &date, &compID, &hours, &description,
		&daily, &weekly, &monthly, &cumulative); err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}

	d, err := generic.ParseDate(date)
	if err != nil {
		return nil, err
	}

	switch worktime.HistoryKind(kind) {
	case worktime.KindCompensation:
		return &worktime.Compensation{
			ID:          compID.String,
			Date:        d,
			Hours:       parseHours(hours),
			Description: description.String,
		}, nil
	default:
		return &worktime.Snapshot{
			Date:               d,
			DailyOvertime:      parseHours(daily),
			WeeklyOvertime:     parseHours(weekly),
			MonthlyOvertime:    parseHours(monthly),
			CumulativeOvertime: parseHours(cumulative),
		}, nil
	}
}

// SaveHistory replaces the log.
func (s *Store) SaveHistory(ctx context.Context, h worktime.History) error {
	if err := worktime.ValidateHistory(h); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := writeHistory(ctx, sqlTx, h); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func writeHistory(ctx context.Context, db execer, h worktime.History) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	for _, entry := range h {
		var err error
		switch e := entry.(type) {
		case *worktime.Snapshot:
			_, err = db.ExecContext(ctx, `
				INSERT INTO history (kind, date, daily_overtime, weekly_overtime, monthly_overtime, cumulative_overtime)
				VALUES (?, ?, ?, ?, ?, ?)`,
				string(worktime.KindSnapshot), e.Date.String(),
				e.DailyOvertime.Value.String(), e.WeeklyOvertime.Value.String(),
				e.MonthlyOvertime.Value.String(), e.CumulativeOvertime.Value.String(),
			)
		case *worktime.Compensation:
			_, err = db.ExecContext(ctx, `
				INSERT INTO history (kind, date, compensation_id, hours, description)
				VALUES (?, ?, ?, ?, ?)`,
				string(worktime.KindCompensation), e.Date.String(),
				nullString(e.ID), e.Hours.Value.String(), e.Description,
			)
		}
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: %s", generic.ErrSnapshotConflict, entry.EntryDate())
			}
			return fmt.Errorf("failed to write history: %w", err)
		}
	}
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// LoadSettings returns the stored settings, or defaults if none were saved.
func (s *Store) LoadSettings(ctx context.Context) (worktime.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		targetsJSON, annual, current, daily string
		lastBackup                          sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT weekly_targets_json, annual_vacation_days, current_year_vacation_days,
		       daily_target_hours, last_backup
		FROM settings WHERE id = 1
	`).Scan(&targetsJSON, &annual, &current, &daily, &lastBackup)

	if errors.Is(err, sql.ErrNoRows) {
		return worktime.DefaultSettings(), nil
	}
	if err != nil {
		return worktime.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := worktime.DefaultSettings()
	if settings.WeeklyTargets, err = decodeTargets(targetsJSON); err != nil {
		return worktime.Settings{}, err
	}
	settings.Absence.AnnualVacationDays = generic.Amount{Value: parseDecimal(annual), Unit: generic.UnitDays}
	settings.Absence.CurrentYearVacationDays = generic.Amount{Value: parseDecimal(current), Unit: generic.UnitDays}
	settings.DailyTargetHours = parseDecimal(daily)
	if lastBackup.Valid {
		if t, err := time.Parse(time.RFC3339, lastBackup.String); err == nil {
			settings.LastBackup = &t
		}
	}
	return settings, nil
}

// SaveSettings upserts the settings row.
func (s *Store) SaveSettings(ctx context.Context, settings worktime.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeSettings(ctx, s.db, settings)
}

func writeSettings(ctx context.Context, db execer, settings worktime.Settings) error {
	targetsJSON, err := encodeTargets(settings.WeeklyTargets)
	if err != nil {
		return err
	}

	var lastBackup sql.NullString
	if settings.LastBackup != nil {
		lastBackup = sql.NullString{String: settings.LastBackup.UTC().Format(time.RFC3339), Valid: true}
	}

	query := `
		INSERT INTO settings (id, weekly_targets_json, annual_vacation_days, current_year_vacation_days,
		                      daily_target_hours, last_backup, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			weekly_targets_json = excluded.weekly_targets_json,
			annual_vacation_days = excluded.annual_vacation_days,
			current_year_vacation_days = excluded.current_year_vacation_days,
			daily_target_hours = excluded.daily_target_hours,
			last_backup = excluded.last_backup,
			updated_at = excluded.updated_at
	`
	_, err = db.ExecContext(ctx, query,
		targetsJSON,
		settings.Absence.AnnualVacationDays.Value.String(),
		settings.Absence.CurrentYearVacationDays.Value.String(),
		settings.DailyTargetHours.String(),
		lastBackup,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// encodeTargets stores the week as {"monday": "8", ...}.
func encodeTargets(w worktime.WeeklyTargetHours) (string, error) {
	m := make(map[string]string, 7)
	for _, day := range worktime.Weekdays {
		m[worktime.WeekdayName(day)] = w.Weekday(day).Value.String()
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode weekly targets: %w", err)
	}
	return string(b), nil
}

func decodeTargets(s string) (worktime.WeeklyTargetHours, error) {
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return worktime.WeeklyTargetHours{}, fmt.Errorf("failed to decode weekly targets: %w", err)
	}
	w := worktime.WeeklyTargetHours{}
	for _, day := range worktime.Weekdays {
		w = w.Set(day, parseDecimal(m[worktime.WeekdayName(day)]))
	}
	return w, nil
}

// =============================================================================
// BULK REPLACE
// =============================================================================

// Replace swaps the whole dataset in a single transaction.
func (s *Store) Replace(ctx context.Context, d worktime.Dataset) error {
	if err := worktime.ValidateHistory(d.History); err != nil {
		return err
	}
	seen := make(map[string]bool, len(d.Entries))
	for _, e := range d.Entries {
		if seen[e.ID] {
			return &generic.EntryValidationError{Field: "id", Message: fmt.Sprintf("duplicate id %q", e.ID)}
		}
		seen[e.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, `DELETE FROM time_entries`); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	for _, e := range d.Entries {
		if err := upsertEntry(ctx, sqlTx, e); err != nil {
			return err
		}
	}
	if err := writeHistory(ctx, sqlTx, d.History); err != nil {
		return err
	}
	if err := writeSettings(ctx, sqlTx, d.Settings); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseHours(s sql.NullString) generic.Amount {
	if !s.Valid {
		return generic.ZeroHours()
	}
	return generic.Amount{Value: parseDecimal(s.String), Unit: generic.UnitHours}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
