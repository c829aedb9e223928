package worktime_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

func TestWorkedHours(t *testing.T) {
	tests := []struct {
		name  string
		start worktime.ClockTime
		end   worktime.ClockTime
		brk   int
		want  float64
	}{
		{"standard day", clock(9, 0), clock(17, 0), 30, 7.5},
		{"no break", clock(8, 0), clock(12, 15), 0, 4.25},
		{"break eats interval", clock(9, 0), clock(9, 20), 30, 0},
		{"break equals interval", clock(9, 0), clock(9, 30), 30, 0},
		{"end before start", clock(22, 0), clock(6, 0), 0, 0},
		{"zero interval", clock(10, 0), clock(10, 0), 0, 0},
		{"unset start", worktime.NoClockTime, clock(10, 0), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := worktime.WorkedHours(tt.start, tt.end, tt.brk)
			assertHours(t, tt.want, got, "worked hours")
			assert.False(t, got.IsNegative())
		})
	}
}

func TestWorkedHours_ThirdOfAnHour(t *testing.T) {
	got := worktime.WorkedHours(clock(9, 0), clock(9, 20), 0)
	want := decimal.NewFromInt(20).Div(decimal.NewFromInt(60))
	assert.True(t, want.Equal(got.Value), "got %v", got.Value)
}

func TestParseClockTime(t *testing.T) {
	c, err := worktime.ParseClockTime("07:05")
	require.NoError(t, err)
	assert.Equal(t, 7*60+5, c.Minutes())
	assert.Equal(t, "07:05", c.String())

	empty, err := worktime.ParseClockTime("")
	require.NoError(t, err)
	assert.False(t, empty.IsSet())
	assert.Equal(t, "", empty.String())

	for _, bad := range []string{"7", "24:00", "12:60", "ab:cd", "12:5"} {
		_, err := worktime.ParseClockTime(bad)
		assert.True(t, errors.Is(err, generic.ErrInvalidClockTime), bad)
	}
}

func TestNewWorkEntry_PrecomputesHours(t *testing.T) {
	e := worktime.NewWorkEntry("w1", date(monday), clock(9, 0), clock(17, 0), 30, "desk")

	assert.Equal(t, worktime.EntryWork, e.Type)
	assertHours(t, 7.5, e.WorkedHours, "worked hours")
	assert.False(t, e.IsAbsence())
}

func TestParseEntryType(t *testing.T) {
	typ, err := worktime.ParseEntryType("sick")
	require.NoError(t, err)
	assert.True(t, typ.IsAbsence())

	_, err = worktime.ParseEntryType("overtime")
	var verr *generic.EntryValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)
}

// =============================================================================
// TARGET RESOLUTION
// =============================================================================

func TestWeeklyTargets_ResolveByWeekday(t *testing.T) {
	targets := worktime.WeeklyTargetHours{
		Monday: decimal.NewFromInt(1), Tuesday: decimal.NewFromInt(2), Wednesday: decimal.NewFromInt(3),
		Thursday: decimal.NewFromInt(4), Friday: decimal.NewFromInt(5), Saturday: decimal.NewFromInt(6),
		Sunday: decimal.NewFromInt(7),
	}

	// 2025-03-10 Monday .. 2025-03-16 Sunday
	start := date(monday)
	for i := 0; i < 7; i++ {
		assertHours(t, float64(i+1), targets.For(start.AddDays(i)), start.AddDays(i).String())
	}
	assertHours(t, 28, targets.Total(), "total")
}

func TestWeeklyTargets_Validate(t *testing.T) {
	assert.NoError(t, worktime.DefaultWeeklyTargets().Validate())

	bad := worktime.DefaultWeeklyTargets().Set(time.Friday, decimal.NewFromInt(-1))
	err := bad.Validate()
	assert.ErrorIs(t, err, generic.ErrInvalidSettings)
	assert.Contains(t, err.Error(), "friday")
}

func TestWeekdayNames(t *testing.T) {
	for _, day := range worktime.Weekdays {
		parsed, ok := worktime.ParseWeekdayName(worktime.WeekdayName(day))
		assert.True(t, ok)
		assert.Equal(t, day, parsed)
	}
	_, ok := worktime.ParseWeekdayName("funday")
	assert.False(t, ok)
}
