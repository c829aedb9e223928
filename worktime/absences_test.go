package worktime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

// =============================================================================
// ABSENCE LEDGER
// =============================================================================

func settings(current int) worktime.AbsenceSettings {
	return worktime.AbsenceSettings{
		AnnualVacationDays:      generic.NewAmountFromInt(30, generic.UnitDays),
		CurrentYearVacationDays: generic.NewAmountFromInt(current, generic.UnitDays),
	}
}

func vacationDays(year, n int) []worktime.TimeEntry {
	var out []worktime.TimeEntry
	start := generic.NewDate(year, 1, 1)
	for i := 0; i < n; i++ {
		out = append(out, worktime.NewAbsenceEntry("v", start.AddDays(i), worktime.EntryVacation, ""))
	}
	return out
}

func TestYearStats_RemainingVacation(t *testing.T) {
	entries := vacationDays(2025, 5)
	entries = append(entries, vacationDays(2024, 3)...)
	entries = append(entries,
		absence("s1", "2025-06-02", worktime.EntrySick),
		absence("h1", "2025-12-25", worktime.EntryHoliday),
		workHours("w1", "2025-06-03", 8),
	)

	stats := worktime.YearStats(entries, 2025, settings(30))

	assert.Equal(t, 5, stats.Vacation.Used)
	assert.True(t, stats.Vacation.Remaining.Equal(generic.NewAmountFromInt(25, generic.UnitDays)))
	assert.True(t, stats.Vacation.Total.Equal(generic.NewAmountFromInt(30, generic.UnitDays)))
	assert.Equal(t, 1, stats.SickUsed)
	assert.Equal(t, 1, stats.HolidayUsed)
}

func TestYearStats_OverdrawnIsNegative(t *testing.T) {
	stats := worktime.YearStats(vacationDays(2025, 32), 2025, settings(30))

	assert.Equal(t, 32, stats.Vacation.Used)
	assert.True(t, stats.Vacation.Remaining.Equal(generic.NewAmountFromInt(-2, generic.UnitDays)),
		"got %v", stats.Vacation.Remaining)
}

func TestYearStats_UsesCurrentYearEntitlement(t *testing.T) {
	s := worktime.AbsenceSettings{
		AnnualVacationDays:      generic.Days(30),
		CurrentYearVacationDays: generic.Days(12.5),
	}

	stats := worktime.YearStats(vacationDays(2025, 2), 2025, s)

	assert.True(t, stats.Vacation.Remaining.Value.Equal(generic.Days(10.5).Value))
}

func TestAbsenceSettings_Validate(t *testing.T) {
	assert.NoError(t, worktime.DefaultAbsenceSettings().Validate())
	assert.ErrorIs(t, settings(-1).Validate(), generic.ErrInvalidSettings)
}
