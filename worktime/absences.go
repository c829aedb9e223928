package worktime

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/worktime-engine/generic"
)

// AbsenceSettings is the vacation entitlement configuration.
//
// AnnualVacationDays is the contractual entitlement; CurrentYearVacationDays
// is what is actually available this year (e.g. pro-rated) and is the only
// one used for balances.
type AbsenceSettings struct {
	AnnualVacationDays      generic.Amount
	CurrentYearVacationDays generic.Amount
}

// DefaultAbsenceSettings is 30 days for both.
func DefaultAbsenceSettings() AbsenceSettings {
	return AbsenceSettings{
		AnnualVacationDays:      generic.NewAmountFromInt(30, generic.UnitDays),
		CurrentYearVacationDays: generic.NewAmountFromInt(30, generic.UnitDays),
	}
}

// Validate rejects negative entitlements.
func (s AbsenceSettings) Validate() error {
	if s.AnnualVacationDays.IsNegative() {
		return fmt.Errorf("%w: annual vacation days must not be negative", generic.ErrInvalidSettings)
	}
	if s.CurrentYearVacationDays.IsNegative() {
		return fmt.Errorf("%w: current year vacation days must not be negative", generic.ErrInvalidSettings)
	}
	return nil
}

// VacationBalance is used/remaining/total for one year. Remaining may be
// negative when more days were taken than available.
type VacationBalance struct {
	Used      int
	Remaining generic.Amount
	Total     generic.Amount
}

// YearAbsenceStats counts absence records of one calendar year.
type YearAbsenceStats struct {
	Year        int
	Vacation    VacationBalance
	SickUsed    int
	HolidayUsed int
}

// YearStats counts vacation, sick, and holiday records dated in year. One
// record is one day; ranges are expected to be expanded upstream.
func YearStats(entries []TimeEntry, year int, settings AbsenceSettings) YearAbsenceStats {
	counts := make(map[EntryType]int)
	for _, e := range entries {
		if e.Date.Year() == year {
			counts[e.Type]++
		}
	}

	total := settings.CurrentYearVacationDays
	used := counts[EntryVacation]

	return YearAbsenceStats{
		Year: year,
		Vacation: VacationBalance{
			Used:      used,
			Remaining: total.Sub(generic.Amount{Value: decimal.NewFromInt(int64(used)), Unit: generic.UnitDays}),
			Total:     total,
		},
		SickUsed:    counts[EntrySick],
		HolidayUsed: counts[EntryHoliday],
	}
}
