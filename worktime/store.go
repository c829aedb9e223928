/*
store.go - Persistence interface for the ledger, history, and settings

PURPOSE:
  The engine is stateless; everything it reads lives behind this interface.
  Different implementations can use SQLite or in-memory storage.

CONTRACT:
  - ListEntries returns entries in insertion order. Editing an entry keeps
    its position.
  - SaveEntries is all-or-nothing (an absence range is one write).
  - SaveHistory replaces the whole log; order is preserved. A store must
    reject a log holding two snapshots for the same date.
  - Replace swaps the complete dataset atomically (backup import).

IMPLEMENTATIONS:
  - store/sqlite: SQLite with WAL
  - store/memory: In-memory for testing

SEE ALSO:
  - tracker/tracker.go: The only writer
*/
package worktime

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/worktime-engine/generic"
)

// Settings is the process-wide configuration persisted next to the ledger.
type Settings struct {
	WeeklyTargets WeeklyTargetHours
	Absence       AbsenceSettings

	// DailyTargetHours is a legacy scalar carried for backup compatibility.
	// No calculation reads it.
	DailyTargetHours decimal.Decimal

	LastBackup *time.Time
}

// DefaultSettings is Mon-Fri 8h, 30/30 vacation days.
func DefaultSettings() Settings {
	return Settings{
		WeeklyTargets:    DefaultWeeklyTargets(),
		Absence:          DefaultAbsenceSettings(),
		DailyTargetHours: StandardDayHours,
	}
}

// Dataset is everything a store holds.
type Dataset struct {
	Entries  []TimeEntry
	History  History
	Settings Settings
}

// Store handles persistence for a single user's data.
type Store interface {
	// ListEntries returns all entries in insertion order.
	ListEntries(ctx context.Context) ([]TimeEntry, error)

	// ListEntriesInRange returns entries dated in [from, to], insertion order.
	ListEntriesInRange(ctx context.Context, from, to generic.Date) ([]TimeEntry, error)

	// GetEntry returns generic.ErrEntryNotFound when id is unknown.
	GetEntry(ctx context.Context, id string) (TimeEntry, error)

	// SaveEntries inserts new entries or updates existing ones in place, atomically.
	SaveEntries(ctx context.Context, entries []TimeEntry) error

	// DeleteEntry returns generic.ErrEntryNotFound when id is unknown.
	DeleteEntry(ctx context.Context, id string) error

	LoadHistory(ctx context.Context) (History, error)
	SaveHistory(ctx context.Context, h History) error

	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error

	// Replace swaps the whole dataset atomically.
	Replace(ctx context.Context, d Dataset) error
}

// ValidateHistory enforces one snapshot per date.
func ValidateHistory(h History) error {
	seen := make(map[generic.Date]bool)
	for _, entry := range h {
		s, ok := entry.(*Snapshot)
		if !ok {
			continue
		}
		if seen[s.Date] {
			return &snapshotConflictError{date: s.Date}
		}
		seen[s.Date] = true
	}
	return nil
}

type snapshotConflictError struct {
	date generic.Date
}

func (e *snapshotConflictError) Error() string {
	return generic.ErrSnapshotConflict.Error() + ": " + e.date.String()
}

func (e *snapshotConflictError) Unwrap() error { return generic.ErrSnapshotConflict }
