package worktime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

// =============================================================================
// MONTHLY REPORT
// =============================================================================

func TestMonthlyReport_EmptyMonth(t *testing.T) {
	builder := worktime.NewReportBuilder(worktime.DefaultWeeklyTargets())
	ledger := []worktime.TimeEntry{workHours("w1", "2025-02-03", 8)}

	report := builder.Build(generic.YearMonth{Year: 2025, Month: 3}, ledger)

	assert.Equal(t, 0, report.WorkDays)
	assert.True(t, report.TotalWorkedHours.IsZero())
	assert.True(t, report.TotalTargetHours.IsZero())
	assert.True(t, report.MonthlyOvertime.IsZero())
	assert.NotNil(t, report.Entries)
	assert.Empty(t, report.Entries)
}

func TestMonthlyReport_TargetIteratesCalendarDays(t *testing.T) {
	// GIVEN: March 2025 has 21 weekdays (Mon-Fri), 8h each = 168h
	//   - one work record on Mon 03-03 (7.5h)
	//   - two absence records on Tue 03-04 (vacation + holiday)
	//   - one absence on Sat 03-08 (target is already 0)
	// THEN: target = 168 - 8 (Tuesday) = 160h
	builder := worktime.NewReportBuilder(worktime.DefaultWeeklyTargets())
	ledger := []worktime.TimeEntry{
		work("w1", "2025-03-03", clock(9, 0), clock(17, 0), 30),
		absence("a1", "2025-03-04", worktime.EntryVacation),
		absence("a2", "2025-03-04", worktime.EntryHoliday),
		absence("a3", "2025-03-08", worktime.EntrySick),
	}

	report := builder.Build(generic.YearMonth{Year: 2025, Month: 3}, ledger)

	assert.Equal(t, 1, report.WorkDays)
	assertHours(t, 7.5, report.TotalWorkedHours, "worked")
	assertHours(t, 160, report.TotalTargetHours, "target")
	assertHours(t, -152.5, report.MonthlyOvertime, "overtime")
	assert.Equal(t, 1, report.VacationDays)
	assert.Equal(t, 1, report.SickDays)
	assert.Equal(t, 1, report.HolidayDays)
}

func TestMonthlyReport_EntriesSortedStable(t *testing.T) {
	builder := worktime.NewReportBuilder(worktime.DefaultWeeklyTargets())
	ledger := []worktime.TimeEntry{
		workHours("late", "2025-03-20", 8),
		workHours("first-on-5th", "2025-03-05", 4),
		workHours("outside", "2025-04-01", 8),
		workHours("second-on-5th", "2025-03-05", 4),
		workHours("early", "2025-03-01", 2),
	}

	report := builder.Build(generic.YearMonth{Year: 2025, Month: 3}, ledger)

	require.Len(t, report.Entries, 4)
	ids := make([]string, len(report.Entries))
	for i, e := range report.Entries {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"early", "first-on-5th", "second-on-5th", "late"}, ids)

	// ledger order untouched
	assert.Equal(t, "late", ledger[0].ID)
}

func TestMonthlyReport_WorkOnAbsenceDayStillCountsWorked(t *testing.T) {
	builder := worktime.NewReportBuilder(worktime.DefaultWeeklyTargets())
	ledger := []worktime.TimeEntry{
		workHours("w1", "2025-03-04", 3),
		absence("a1", "2025-03-04", worktime.EntrySick),
	}

	report := builder.Build(generic.YearMonth{Year: 2025, Month: 3}, ledger)

	assertHours(t, 3, report.TotalWorkedHours, "worked")
	assertHours(t, 160, report.TotalTargetHours, "target")
}

func TestMonthlyReport_ThirdsOfAnHourSumExactly(t *testing.T) {
	builder := worktime.NewReportBuilder(worktime.DefaultWeeklyTargets())
	ledger := []worktime.TimeEntry{
		work("w1", "2025-03-03", clock(9, 0), clock(9, 20), 0),
		work("w2", "2025-03-04", clock(9, 0), clock(9, 20), 0),
		work("w3", "2025-03-05", clock(9, 0), clock(9, 20), 0),
	}

	report := builder.Build(generic.YearMonth{Year: 2025, Month: 3}, ledger)

	assertHours(t, 1, report.TotalWorkedHours, "worked")
	assertHours(t, -167, report.MonthlyOvertime, "overtime")
	assert.Equal(t, -167.0, report.MonthlyOvertime.Float64())
}
