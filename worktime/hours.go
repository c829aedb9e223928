package worktime

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/worktime-engine/generic"
)

var minutesPerHour = decimal.NewFromInt(60)

// SumPrecision is the number of decimal places hour totals are rounded to.
// Three 20-minute records must total exactly 1h.
const SumPrecision int32 = 10

// WorkedHours returns max(0, (end - start - break) / 60) hours.
//
// Shifts crossing midnight are not supported: end before start underflows
// and clamps to zero, as does a break longer than the interval. An unset
// start or end yields zero.
func WorkedHours(start, end ClockTime, breakMinutes int) generic.Amount {
	if !start.IsSet() || !end.IsSet() {
		return generic.ZeroHours()
	}
	minutes := end.Minutes() - start.Minutes() - breakMinutes
	if minutes <= 0 {
		return generic.ZeroHours()
	}
	return generic.Amount{
		Value: decimal.NewFromInt(int64(minutes)).Div(minutesPerHour),
		Unit:  generic.UnitHours,
	}
}

// =============================================================================
// WEEKLY TARGET HOURS - Weekday -> target resolver
// =============================================================================

// WeeklyTargetHours maps every weekday to its target. All seven fields are
// always present; there is no partial configuration.
type WeeklyTargetHours struct {
	Monday    decimal.Decimal
	Tuesday   decimal.Decimal
	Wednesday decimal.Decimal
	Thursday  decimal.Decimal
	Friday    decimal.Decimal
	Saturday  decimal.Decimal
	Sunday    decimal.Decimal
}

// DefaultWeeklyTargets is Monday-Friday 8h, weekend 0h.
func DefaultWeeklyTargets() WeeklyTargetHours {
	eight := decimal.NewFromInt(8)
	return WeeklyTargetHours{
		Monday: eight, Tuesday: eight, Wednesday: eight, Thursday: eight, Friday: eight,
		Saturday: decimal.Zero, Sunday: decimal.Zero,
	}
}

// Weekday returns the target for a weekday.
func (w WeeklyTargetHours) Weekday(day time.Weekday) generic.Amount {
	var v decimal.Decimal
	switch day {
	case time.Monday:
		v = w.Monday
	case time.Tuesday:
		v = w.Tuesday
	case time.Wednesday:
		v = w.Wednesday
	case time.Thursday:
		v = w.Thursday
	case time.Friday:
		v = w.Friday
	case time.Saturday:
		v = w.Saturday
	default:
		v = w.Sunday
	}
	return generic.Amount{Value: v, Unit: generic.UnitHours}
}

// For resolves the target for the weekday of d.
func (w WeeklyTargetHours) For(d generic.Date) generic.Amount {
	return w.Weekday(d.Weekday())
}

// Set returns a copy with one weekday changed.
func (w WeeklyTargetHours) Set(day time.Weekday, hours decimal.Decimal) WeeklyTargetHours {
	switch day {
	case time.Monday:
		w.Monday = hours
	case time.Tuesday:
		w.Tuesday = hours
	case time.Wednesday:
		w.Wednesday = hours
	case time.Thursday:
		w.Thursday = hours
	case time.Friday:
		w.Friday = hours
	case time.Saturday:
		w.Saturday = hours
	default:
		w.Sunday = hours
	}
	return w
}

// Total is the sum over the week.
func (w WeeklyTargetHours) Total() generic.Amount {
	total := generic.ZeroHours()
	for _, day := range Weekdays {
		total = total.Add(w.Weekday(day))
	}
	return total
}

// Validate rejects negative targets.
func (w WeeklyTargetHours) Validate() error {
	for _, day := range Weekdays {
		if w.Weekday(day).IsNegative() {
			return fmt.Errorf("%w: %s target hours must not be negative", generic.ErrInvalidSettings, WeekdayName(day))
		}
	}
	return nil
}

// Weekdays lists the week Monday first.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// WeekdayName is the lowercase English name used in configuration and blobs.
func WeekdayName(day time.Weekday) string {
	switch day {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

// ParseWeekdayName is the inverse of WeekdayName.
func ParseWeekdayName(name string) (time.Weekday, bool) {
	for _, day := range Weekdays {
		if WeekdayName(day) == name {
			return day, true
		}
	}
	return time.Sunday, false
}
