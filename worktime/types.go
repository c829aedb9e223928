// Package worktime implements the time-accounting and overtime-aggregation engine.
// It consumes a ledger of daily work/absence records plus a weekly target-hours
// schedule and derives overtime windows, vacation balances, history snapshots,
// and monthly reports. Every calculation is a pure function of its inputs.
package worktime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/warp/worktime-engine/generic"
)

// =============================================================================
// ENTRY TYPE
// =============================================================================

type EntryType string

const (
	EntryWork     EntryType = "work"
	EntryVacation EntryType = "vacation"
	EntrySick     EntryType = "sick"
	EntryHoliday  EntryType = "holiday"
)

// EntryTypes lists every valid type in display order.
var EntryTypes = []EntryType{EntryWork, EntryVacation, EntrySick, EntryHoliday}

// IsAbsence reports whether the type is anything other than work.
func (t EntryType) IsAbsence() bool { return t != EntryWork }

func (t EntryType) Valid() bool {
	for _, known := range EntryTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseEntryType validates a raw type string.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(s)
	if !t.Valid() {
		return "", &generic.EntryValidationError{Field: "type", Message: fmt.Sprintf("unknown type %q", s)}
	}
	return t, nil
}

// =============================================================================
// CLOCK TIME - Local wall-clock time as minutes since midnight
// =============================================================================

type ClockTime int

// NoClockTime marks the start/end of an absence record.
const NoClockTime ClockTime = -1

// NewClockTime builds a clock time from hour and minute.
func NewClockTime(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

// ParseClockTime parses "HH:MM". The empty string yields NoClockTime.
func ParseClockTime(s string) (ClockTime, error) {
	if s == "" {
		return NoClockTime, nil
	}
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return NoClockTime, fmt.Errorf("%w: %q", generic.ErrInvalidClockTime, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return NoClockTime, fmt.Errorf("%w: %q", generic.ErrInvalidClockTime, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 || len(mm) != 2 {
		return NoClockTime, fmt.Errorf("%w: %q", generic.ErrInvalidClockTime, s)
	}
	return NewClockTime(hour, minute), nil
}

func (c ClockTime) IsSet() bool  { return c >= 0 }
func (c ClockTime) Minutes() int { return int(c) }

func (c ClockTime) String() string {
	if !c.IsSet() {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// =============================================================================
// TIME ENTRY - One ledger row
// =============================================================================

// TimeEntry is one row of the ledger. For absence types Start, End,
// BreakMinutes and WorkedHours carry no accounting meaning.
type TimeEntry struct {
	ID           string
	Date         generic.Date
	Start        ClockTime
	End          ClockTime
	BreakMinutes int
	WorkedHours  generic.Amount // stored at creation/edit time
	Type         EntryType
	Note         string
}

// IsAbsence reports whether the entry is a vacation, sick, or holiday record.
func (e TimeEntry) IsAbsence() bool { return e.Type.IsAbsence() }

// NewWorkEntry builds a work record and precomputes its worked hours.
func NewWorkEntry(id string, date generic.Date, start, end ClockTime, breakMinutes int, note string) TimeEntry {
	return TimeEntry{
		ID:           id,
		Date:         date,
		Start:        start,
		End:          end,
		BreakMinutes: breakMinutes,
		WorkedHours:  WorkedHours(start, end, breakMinutes),
		Type:         EntryWork,
		Note:         note,
	}
}

// NewAbsenceEntry builds a single-day absence record.
func NewAbsenceEntry(id string, date generic.Date, typ EntryType, note string) TimeEntry {
	return TimeEntry{
		ID:          id,
		Date:        date,
		Start:       NoClockTime,
		End:         NoClockTime,
		WorkedHours: generic.ZeroHours(),
		Type:        typ,
		Note:        note,
	}
}
