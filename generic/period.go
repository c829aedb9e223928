package generic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - Inclusive date range used for aggregation windows
// =============================================================================

// Period is the inclusive range [Start, End].
//
// Examples:
//   - Week to date:  Monday of the current week .. today
//   - Month to date: 1st of the current month .. today
//   - Calendar month: 1st .. last day of a month
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if the date is within the period [Start, End]
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every calendar day in the period, in order.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// WeekToDate is [WeekStart(today), today].
func WeekToDate(today Date) Period {
	return Period{Start: today.WeekStart(), End: today}
}

// MonthToDate is [first of today's month, today].
func MonthToDate(today Date) Period {
	return Period{Start: today.MonthStart(), End: today}
}

// =============================================================================
// YEAR-MONTH - Key for monthly reports
// =============================================================================

type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return YearMonth{}, fmt.Errorf("%w: %q (use YYYY-MM)", ErrInvalidDate, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return YearMonth{Year: year, Month: time.Month(month)}, nil
}

// YearMonthOf returns the month containing d.
func YearMonthOf(d Date) YearMonth { return YearMonth{Year: d.Year(), Month: d.Month()} }

// Period returns the whole calendar month.
func (ym YearMonth) Period() Period {
	return Period{Start: StartOfMonth(ym.Year, ym.Month), End: EndOfMonth(ym.Year, ym.Month)}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}
