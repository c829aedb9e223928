/*
overtime.go - Four-window overtime aggregation

PURPOSE:
  Answers "how far ahead or behind am I?" for today, this week, this month,
  and all time. Each window reports worked hours, target hours, and their
  difference. Nothing is cached: every call replays the full ledger.

ABSENCE SUBSTITUTION:
  A day touched by any vacation, sick, or holiday record is accounted as one
  standard day: 8h worked and 8h target. How that is applied differs between
  windows and both behaviours are load-bearing:

  Daily window (single evaluation per date):
    today has an absence -> worked = 8, target = 8 (work records discarded)
    otherwise            -> worked = sum(work hours), target = weekday target

  Weekly, monthly, cumulative windows (per-record accumulation):
    work record    -> worked += its hours, target += its weekday's target
    absence record -> worked += 8,         target += 8

  So a date with one 6h work record and one absence contributes 8/8 to the
  daily window but 14/(target+8) to the other three.

WINDOWS:
  Daily:      records dated today
  Weekly:     records in [Monday of today's ISO week, today]
  Monthly:    records in [1st of today's month, today]
  Cumulative: every record in the ledger

SEE ALSO:
  - hours.go: WorkedHours and WeeklyTargetHours
  - history.go: Snapshotting the result into the history log
*/
package worktime

import (
	"github.com/shopspring/decimal"
	"github.com/warp/worktime-engine/generic"
)

// =============================================================================
// ABSENCE RULE
// =============================================================================

// StandardDayHours is the fixed worked/target value of an absence day.
var StandardDayHours = decimal.NewFromInt(8)

// AbsenceRule forces worked and target hours of an absence day to a constant.
type AbsenceRule struct {
	DayHours generic.Amount
}

// DefaultAbsenceRule accounts an absence day as 8h worked and 8h target.
func DefaultAbsenceRule() AbsenceRule {
	return AbsenceRule{DayHours: generic.Amount{Value: StandardDayHours, Unit: generic.UnitHours}}
}

// HasAbsence reports whether any record on date is not a work record.
func (r AbsenceRule) HasAbsence(entries []TimeEntry, date generic.Date) bool {
	for _, e := range entries {
		if e.Date == date && e.IsAbsence() {
			return true
		}
	}
	return false
}

// AbsenceDates returns the set of dates that carry at least one absence record.
func (r AbsenceRule) AbsenceDates(entries []TimeEntry) map[generic.Date]bool {
	dates := make(map[generic.Date]bool)
	for _, e := range entries {
		if e.IsAbsence() {
			dates[e.Date] = true
		}
	}
	return dates
}

// =============================================================================
// WINDOW STATS
// =============================================================================

// WindowStats is the {worked, target, overtime} triple of one window.
type WindowStats struct {
	Worked   generic.Amount
	Target   generic.Amount
	Overtime generic.Amount
}

func newWindowStats(worked, target generic.Amount) WindowStats {
	worked = worked.Round(SumPrecision)
	target = target.Round(SumPrecision)
	return WindowStats{Worked: worked, Target: target, Overtime: worked.Sub(target)}
}

// OvertimeStats holds all four windows.
type OvertimeStats struct {
	Daily      WindowStats
	Weekly     WindowStats
	Monthly    WindowStats
	Cumulative WindowStats
}

// =============================================================================
// OVERTIME CALCULATOR
// =============================================================================

// OvertimeCalculator computes the four overtime windows.
type OvertimeCalculator struct {
	Targets WeeklyTargetHours
	Rule    AbsenceRule
}

// NewOvertimeCalculator uses the default 8h absence rule.
func NewOvertimeCalculator(targets WeeklyTargetHours) *OvertimeCalculator {
	return &OvertimeCalculator{Targets: targets, Rule: DefaultAbsenceRule()}
}

// Compute evaluates every window relative to today. The ledger is not modified.
func (c *OvertimeCalculator) Compute(entries []TimeEntry, today generic.Date) OvertimeStats {
	week := generic.WeekToDate(today)
	month := generic.MonthToDate(today)

	return OvertimeStats{
		Daily:      c.Day(entries, today),
		Weekly:     c.accumulate(entries, week.Contains),
		Monthly:    c.accumulate(entries, month.Contains),
		Cumulative: c.accumulate(entries, func(generic.Date) bool { return true }),
	}
}

// Day evaluates a single date once: an absence anywhere on the date replaces
// both sums with the absence rule's constant.
func (c *OvertimeCalculator) Day(entries []TimeEntry, date generic.Date) WindowStats {
	if c.Rule.HasAbsence(entries, date) {
		return newWindowStats(c.Rule.DayHours, c.Rule.DayHours)
	}

	worked := generic.ZeroHours()
	for _, e := range entries {
		if e.Date == date && e.Type == EntryWork {
			worked = worked.Add(e.WorkedHours)
		}
	}
	return newWindowStats(worked, c.Targets.For(date))
}

// accumulate applies the absence rule per record to every entry whose date
// satisfies in. Target accrues only from records, never from empty days.
func (c *OvertimeCalculator) accumulate(entries []TimeEntry, in func(generic.Date) bool) WindowStats {
	worked := generic.ZeroHours()
	target := generic.ZeroHours()

	for _, e := range entries {
		if !in(e.Date) {
			continue
		}
		if e.IsAbsence() {
			worked = worked.Add(c.Rule.DayHours)
			target = target.Add(c.Rule.DayHours)
			continue
		}
		worked = worked.Add(e.WorkedHours)
		target = target.Add(c.Targets.For(e.Date))
	}

	return newWindowStats(worked, target)
}
