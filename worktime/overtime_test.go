package worktime_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(s string) generic.Date { return generic.MustParseDate(s) }

func hours(f float64) generic.Amount { return generic.Hours(f) }

func clock(h, m int) worktime.ClockTime { return worktime.NewClockTime(h, m) }

func work(id, day string, start, end worktime.ClockTime, breakMinutes int) worktime.TimeEntry {
	return worktime.NewWorkEntry(id, date(day), start, end, breakMinutes, "")
}

// workHours builds a work record worth exactly h hours starting at 08:00.
func workHours(id, day string, h float64) worktime.TimeEntry {
	minutes := int(h * 60)
	return work(id, day, clock(8, 0), worktime.ClockTime(8*60+minutes), 0)
}

func absence(id, day string, typ worktime.EntryType) worktime.TimeEntry {
	return worktime.NewAbsenceEntry(id, date(day), typ, "")
}

func assertHours(t *testing.T, want float64, got generic.Amount, msg string) {
	t.Helper()
	assert.True(t, hours(want).Value.Equal(got.Value), "%s: want %v, got %v", msg, want, got.Value)
}

func standardCalculator() *worktime.OvertimeCalculator {
	return worktime.NewOvertimeCalculator(worktime.DefaultWeeklyTargets())
}

// 2025-03-10 is a Monday.
const monday = "2025-03-10"

// =============================================================================
// DAILY WINDOW
// =============================================================================

func TestOvertime_Daily_SingleWorkRecord(t *testing.T) {
	// GIVEN: Monday target 8h, one work record 09:00-17:00 with 30 min break
	// WHEN: Computing stats for that Monday
	// THEN: worked 7.5, target 8, overtime -0.5

	entries := []worktime.TimeEntry{work("w1", monday, clock(9, 0), clock(17, 0), 30)}

	stats := standardCalculator().Compute(entries, date(monday))

	assertHours(t, 7.5, stats.Daily.Worked, "daily worked")
	assertHours(t, 8, stats.Daily.Target, "daily target")
	assertHours(t, -0.5, stats.Daily.Overtime, "daily overtime")
}

func TestOvertime_Daily_MultipleWorkRecordsSum(t *testing.T) {
	entries := []worktime.TimeEntry{
		workHours("w1", monday, 4),
		workHours("w2", monday, 5.25),
	}

	stats := standardCalculator().Compute(entries, date(monday))

	assertHours(t, 9.25, stats.Daily.Worked, "daily worked")
	assertHours(t, 1.25, stats.Daily.Overtime, "daily overtime")
}

func TestOvertime_Daily_NoEntries_TargetStillResolved(t *testing.T) {
	stats := standardCalculator().Compute(nil, date(monday))

	assertHours(t, 0, stats.Daily.Worked, "daily worked")
	assertHours(t, 8, stats.Daily.Target, "daily target")
	assertHours(t, -8, stats.Daily.Overtime, "daily overtime")
}

func TestOvertime_Daily_AbsenceDiscardsWork(t *testing.T) {
	// GIVEN: One absence and one 6h work record on the same date
	// WHEN: Computing the daily window
	// THEN: The date counts once as a standard day: 8/8/0

	entries := []worktime.TimeEntry{
		workHours("w1", monday, 6),
		absence("a1", monday, worktime.EntrySick),
	}

	stats := standardCalculator().Compute(entries, date(monday))

	assertHours(t, 8, stats.Daily.Worked, "daily worked")
	assertHours(t, 8, stats.Daily.Target, "daily target")
	assertHours(t, 0, stats.Daily.Overtime, "daily overtime")
}

func TestOvertime_Daily_TwoAbsencesStillOneDay(t *testing.T) {
	entries := []worktime.TimeEntry{
		absence("a1", monday, worktime.EntryVacation),
		absence("a2", monday, worktime.EntryHoliday),
	}

	stats := standardCalculator().Compute(entries, date(monday))

	assertHours(t, 8, stats.Daily.Worked, "daily worked")
	assertHours(t, 8, stats.Daily.Target, "daily target")
}

func TestOvertime_Daily_AbsenceOnWeekendStillEightHours(t *testing.T) {
	// Saturday target is 0, the absence rule overrides it
	entries := []worktime.TimeEntry{absence("a1", "2025-03-15", worktime.EntryHoliday)}

	stats := standardCalculator().Compute(entries, date("2025-03-15"))

	assertHours(t, 8, stats.Daily.Target, "daily target")
}

// =============================================================================
// PER-RECORD WINDOWS
// =============================================================================

func TestOvertime_Windows_AbsenceAndWorkAreAdditive(t *testing.T) {
	// GIVEN: The same mixed date as above, and nothing else in the ledger
	// WHEN: Computing weekly, monthly, cumulative
	// THEN: worked = 6 + 8 = 14, target = 8 (Monday) + 8 = 16

	entries := []worktime.TimeEntry{
		workHours("w1", monday, 6),
		absence("a1", monday, worktime.EntrySick),
	}

	stats := standardCalculator().Compute(entries, date(monday))

	for name, w := range map[string]worktime.WindowStats{
		"weekly":     stats.Weekly,
		"monthly":    stats.Monthly,
		"cumulative": stats.Cumulative,
	} {
		assertHours(t, 14, w.Worked, name+" worked")
		assertHours(t, 16, w.Target, name+" target")
		assertHours(t, -2, w.Overtime, name+" overtime")
	}
}

func TestOvertime_Windows_TwoAbsencesDoubleCount(t *testing.T) {
	entries := []worktime.TimeEntry{
		absence("a1", monday, worktime.EntryVacation),
		absence("a2", monday, worktime.EntryHoliday),
	}

	stats := standardCalculator().Compute(entries, date(monday))

	assertHours(t, 16, stats.Weekly.Worked, "weekly worked")
	assertHours(t, 16, stats.Weekly.Target, "weekly target")
	assertHours(t, 0, stats.Weekly.Overtime, "weekly overtime")
}

func TestOvertime_Windows_RecordWeekdayTargetNotToday(t *testing.T) {
	// A Saturday work record contributes Saturday's target (0h), not today's
	targets := worktime.DefaultWeeklyTargets().Set(time.Saturday, decimal.NewFromInt(4))
	calc := worktime.NewOvertimeCalculator(targets)

	entries := []worktime.TimeEntry{workHours("w1", "2025-03-15", 5)}

	stats := calc.Compute(entries, date("2025-03-16"))

	assertHours(t, 5, stats.Weekly.Worked, "weekly worked")
	assertHours(t, 4, stats.Weekly.Target, "weekly target")
}

func TestOvertime_ThirdsOfAnHourSumExactly(t *testing.T) {
	// GIVEN: Monday target 1h, three 20-minute work records on Monday
	// WHEN: Computing stats for that Monday
	// THEN: Every window has worked 1h and overtime exactly 0

	calc := worktime.NewOvertimeCalculator(
		worktime.DefaultWeeklyTargets().Set(time.Monday, decimal.NewFromInt(1)))
	entries := []worktime.TimeEntry{
		work("w1", monday, clock(9, 0), clock(9, 20), 0),
		work("w2", monday, clock(10, 0), clock(10, 20), 0),
		work("w3", monday, clock(11, 0), clock(11, 20), 0),
	}

	stats := calc.Compute(entries, date(monday))

	for name, w := range map[string]worktime.WindowStats{
		"daily": stats.Daily, "weekly": stats.Weekly, "cumulative": stats.Cumulative,
	} {
		assertHours(t, 1, w.Worked, name+" worked")
		assert.True(t, w.Overtime.IsZero(), "%s overtime: %v", name, w.Overtime.Value)
		assert.Equal(t, 0.0, w.Overtime.Float64(), name)
	}
}

func TestOvertime_WindowBoundaries(t *testing.T) {
	// GIVEN: today = Wednesday 2025-04-02
	//   - 2025-03-30 Sunday (previous ISO week, previous month)
	//   - 2025-03-31 Monday (this week, previous month)
	//   - 2025-04-01 Tuesday (this week, this month)
	//   - 2025-04-03 Thursday (after today, only cumulative)
	entries := []worktime.TimeEntry{
		workHours("sun", "2025-03-30", 1),
		workHours("mon", "2025-03-31", 2),
		workHours("tue", "2025-04-01", 3),
		workHours("thu", "2025-04-03", 4),
	}

	stats := standardCalculator().Compute(entries, date("2025-04-02"))

	assertHours(t, 0, stats.Daily.Worked, "daily worked")
	assertHours(t, 5, stats.Weekly.Worked, "weekly worked")
	assertHours(t, 3, stats.Monthly.Worked, "monthly worked")
	assertHours(t, 10, stats.Cumulative.Worked, "cumulative worked")

	// Sunday target 0, weekday targets 8 each
	assertHours(t, 16, stats.Weekly.Target, "weekly target")
	assertHours(t, 8, stats.Monthly.Target, "monthly target")
	assertHours(t, 24, stats.Cumulative.Target, "cumulative target")
}

func TestOvertime_SundayBelongsToPreviousMondayWeek(t *testing.T) {
	entries := []worktime.TimeEntry{
		workHours("mon", monday, 8),
		workHours("sun", "2025-03-16", 2),
	}

	stats := standardCalculator().Compute(entries, date("2025-03-16"))

	assertHours(t, 10, stats.Weekly.Worked, "weekly worked")
}

func TestOvertime_EmptyLedger(t *testing.T) {
	stats := standardCalculator().Compute([]worktime.TimeEntry{}, date(monday))

	for name, w := range map[string]worktime.WindowStats{
		"weekly":     stats.Weekly,
		"monthly":    stats.Monthly,
		"cumulative": stats.Cumulative,
	} {
		assert.True(t, w.Worked.IsZero(), name)
		assert.True(t, w.Target.IsZero(), name)
		assert.True(t, w.Overtime.IsZero(), name)
	}
}

func TestOvertime_DoesNotMutateLedger(t *testing.T) {
	entries := []worktime.TimeEntry{
		workHours("w1", monday, 6),
		absence("a1", "2025-03-01", worktime.EntryVacation),
	}
	before := append([]worktime.TimeEntry(nil), entries...)

	standardCalculator().Compute(entries, date(monday))

	assert.Equal(t, before, entries)
}

func TestAbsenceRule_HasAbsence(t *testing.T) {
	rule := worktime.DefaultAbsenceRule()
	entries := []worktime.TimeEntry{
		workHours("w1", monday, 8),
		absence("a1", "2025-03-11", worktime.EntrySick),
	}

	assert.False(t, rule.HasAbsence(entries, date(monday)))
	assert.True(t, rule.HasAbsence(entries, date("2025-03-11")))
	assert.False(t, rule.HasAbsence(entries, date("2025-03-12")))
}
