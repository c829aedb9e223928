package worktime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

func TestUpsertSnapshot_SameDateTwice_LastWriteWins(t *testing.T) {
	// GIVEN: An empty history and a ledger that changes between two calls
	// WHEN: Upserting the snapshot for the same date twice
	// THEN: Exactly one snapshot for that date, equal to the second stats

	calc := standardCalculator()
	today := date(monday)

	first := calc.Compute([]worktime.TimeEntry{workHours("w1", monday, 6)}, today)
	h := worktime.UpsertSnapshot(nil, today, first)

	ledger := []worktime.TimeEntry{workHours("w1", monday, 6), workHours("w2", monday, 3)}
	second := calc.Compute(ledger, today)
	h = worktime.UpsertSnapshot(h, today, second)

	snaps := h.Snapshots()
	require.Len(t, snaps, 1)
	assertHours(t, 1, snaps[0].DailyOvertime, "daily")
	assert.Equal(t, today, snaps[0].Date)
	assert.Equal(t, worktime.NewSnapshot(today, second), snaps[0])
}

func TestUpsertSnapshot_Idempotent(t *testing.T) {
	calc := standardCalculator()
	today := date(monday)
	ledger := []worktime.TimeEntry{workHours("w1", monday, 9)}

	h := worktime.UpsertSnapshot(nil, today, calc.Compute(ledger, today))
	again := worktime.UpsertSnapshot(h, today, calc.Compute(ledger, today))

	assert.Equal(t, h, again)
}

func TestUpsertSnapshot_LeavesCompensationsAndOtherDates(t *testing.T) {
	today := date(monday)
	yesterday := today.AddDays(-1)

	h := worktime.History{
		worktime.NewSnapshot(yesterday, worktime.OvertimeStats{}),
		&worktime.Compensation{ID: "c1", Date: today, Hours: hours(-4), Description: "afternoon off"},
		worktime.NewSnapshot(today, worktime.OvertimeStats{}),
	}

	updated := worktime.UpsertSnapshot(h, today, standardCalculator().Compute(nil, today))

	require.Len(t, updated, 3)
	assert.Equal(t, worktime.KindSnapshot, updated[0].Kind())
	assert.Equal(t, yesterday, updated[0].EntryDate())
	assert.Equal(t, worktime.KindCompensation, updated[1].Kind())
	assert.Equal(t, today, updated[2].EntryDate())

	// input untouched
	assert.Len(t, h, 3)
	s, ok := h.SnapshotFor(today)
	require.True(t, ok)
	assert.True(t, s.DailyOvertime.Value.IsZero())
}

func TestHistory_Compensations(t *testing.T) {
	var h worktime.History
	h = worktime.AddCompensation(h, worktime.Compensation{ID: "c1", Date: date("2025-03-01"), Hours: hours(-8)})
	h = worktime.UpsertSnapshot(h, date(monday), worktime.OvertimeStats{})
	h = worktime.AddCompensation(h, worktime.Compensation{ID: "c2", Date: date("2025-03-05"), Hours: hours(-2.5)})
	h = worktime.AddCompensation(h, worktime.Compensation{ID: "c3", Date: date("2025-03-05"), Hours: hours(1)})

	comps := h.Compensations()
	require.Len(t, comps, 3)
	assert.Equal(t, "c2", comps[0].ID)
	assert.Equal(t, "c3", comps[1].ID)
	assert.Equal(t, "c1", comps[2].ID)

	assertHours(t, -9.5, h.CompensationTotal(), "total")
	assert.Len(t, h.Snapshots(), 1)
}

func TestValidateHistory_DuplicateSnapshot(t *testing.T) {
	h := worktime.History{
		worktime.NewSnapshot(date(monday), worktime.OvertimeStats{}),
		&worktime.Compensation{Date: date(monday)},
		&worktime.Compensation{Date: date(monday)},
	}
	assert.NoError(t, worktime.ValidateHistory(h))

	h = append(h, worktime.NewSnapshot(date(monday), worktime.OvertimeStats{}))
	assert.ErrorIs(t, worktime.ValidateHistory(h), generic.ErrSnapshotConflict)
}
