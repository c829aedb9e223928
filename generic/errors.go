/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place for consistency and discoverability.
  The accounting calculations themselves never fail; errors only appear at
  the edges: parsing input, validating imported blobs, and persistence.

ERROR CATEGORIES:
  1. Input errors - Malformed dates, clock times, entries
  2. Backup errors - Structurally invalid or unsupported blobs
  3. Store errors - Missing records, persistence failures

USAGE:
  if errors.Is(err, generic.ErrEntryNotFound) {
      // 404
  }

SEE ALSO:
  - backup/backup.go: Wraps ErrInvalidBackup with the offending field
  - tracker/tracker.go: Wraps ErrInvalidEntry with the offending field
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEntryNotFound is returned when a referenced time entry doesn't exist.
	ErrEntryNotFound = errors.New("time entry not found")

	// ErrInvalidEntry is returned when a time entry violates its shape rules.
	ErrInvalidEntry = errors.New("invalid time entry")

	// ErrInvalidDate is returned for unparseable calendar days or months.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidClockTime is returned for clock times that are not HH:MM.
	ErrInvalidClockTime = errors.New("invalid clock time")

	// ErrInvalidSettings is returned for negative targets or entitlements.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrInvalidBackup is returned when an imported blob fails structural validation.
	ErrInvalidBackup = errors.New("invalid backup")

	// ErrUnsupportedVersion is returned for backup blobs from an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported backup version")

	// ErrSnapshotConflict is returned when a store would hold two snapshots for one date.
	ErrSnapshotConflict = errors.New("duplicate snapshot for date")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// EntryValidationError names the field that made an entry invalid.
type EntryValidationError struct {
	Field   string
	Message string
}

func (e *EntryValidationError) Error() string {
	return fmt.Sprintf("invalid time entry: %s: %s", e.Field, e.Message)
}

func (e *EntryValidationError) Unwrap() error {
	return ErrInvalidEntry
}

// BackupValidationError names the path inside the blob that failed validation.
type BackupValidationError struct {
	Path    string // e.g. "timeEntries[3].type"
	Message string
}

func (e *BackupValidationError) Error() string {
	return fmt.Sprintf("invalid backup: %s: %s", e.Path, e.Message)
}

func (e *BackupValidationError) Unwrap() error {
	return ErrInvalidBackup
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidEntry) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidClockTime) ||
		errors.Is(err, ErrInvalidSettings) ||
		errors.Is(err, ErrInvalidBackup) ||
		errors.Is(err, ErrUnsupportedVersion) ||
		errors.Is(err, ErrSnapshotConflict)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound)
}
