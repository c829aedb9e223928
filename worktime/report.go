package worktime

import (
	"sort"

	"github.com/warp/worktime-engine/generic"
)

// MonthlyReport aggregates one calendar month.
type MonthlyReport struct {
	Month            generic.YearMonth
	WorkDays         int // number of work records, not distinct dates
	TotalWorkedHours generic.Amount
	TotalTargetHours generic.Amount
	MonthlyOvertime  generic.Amount
	VacationDays     int
	SickDays         int
	HolidayDays      int
	Entries          []TimeEntry // ascending by date, ledger order within a date
}

// ReportBuilder builds monthly reports against a weekly schedule.
type ReportBuilder struct {
	Targets WeeklyTargetHours
	Rule    AbsenceRule
}

// NewReportBuilder uses the default absence rule.
func NewReportBuilder(targets WeeklyTargetHours) *ReportBuilder {
	return &ReportBuilder{Targets: targets, Rule: DefaultAbsenceRule()}
}

// Build aggregates month from the full ledger.
//
// Unlike the overtime windows, the target here is calendar driven: every day
// of the month without an absence record contributes its weekday target,
// whether or not anything was recorded on it.
func (b *ReportBuilder) Build(month generic.YearMonth, entries []TimeEntry) MonthlyReport {
	period := month.Period()

	report := MonthlyReport{
		Month:            month,
		TotalWorkedHours: generic.ZeroHours(),
		TotalTargetHours: generic.ZeroHours(),
		Entries:          []TimeEntry{},
	}

	for _, e := range entries {
		if !period.Contains(e.Date) {
			continue
		}
		report.Entries = append(report.Entries, e)
		switch e.Type {
		case EntryWork:
			report.WorkDays++
			report.TotalWorkedHours = report.TotalWorkedHours.Add(e.WorkedHours)
		case EntryVacation:
			report.VacationDays++
		case EntrySick:
			report.SickDays++
		case EntryHoliday:
			report.HolidayDays++
		}
	}

	if len(report.Entries) == 0 {
		report.MonthlyOvertime = generic.ZeroHours()
		return report
	}

	absent := b.Rule.AbsenceDates(report.Entries)
	for _, day := range period.Days() {
		if absent[day] {
			continue
		}
		report.TotalTargetHours = report.TotalTargetHours.Add(b.Targets.For(day))
	}

	report.TotalWorkedHours = report.TotalWorkedHours.Round(SumPrecision)
	report.TotalTargetHours = report.TotalTargetHours.Round(SumPrecision)
	report.MonthlyOvertime = report.TotalWorkedHours.Sub(report.TotalTargetHours)

	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].Date.Before(report.Entries[j].Date)
	})
	return report
}
