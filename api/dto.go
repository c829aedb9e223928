/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Hours and days
  are exact decimals inside the engine and float64 on the wire.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Entries:
    EntryDTO, WorkEntryRequest, AbsenceRequest, UpdateEntryRequest, AbsenceResponse

  Stats and reports:
    StatsDTO, WindowDTO, YearAbsencesDTO, MonthlyReportDTO

  History:
    HistoryItemDTO, CompensationsResponse

  Settings:
    WeeklyTargetsDTO, WeeklyTargetsRequest, AbsenceSettingsDTO

  Storage:
    StorageInfoDTO, ImportResponse

VALIDATION:
  Validation is done by tracker.Service, not in DTOs. DTOs are pure data
  carriers; the to* helpers convert domain values for responses.

SEE ALSO:
  - handlers.go: Uses these types
  - backup/backup.go: The export format, which has its own field names
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

// =============================================================================
// ENTRIES
// =============================================================================

// EntryDTO represents a time entry in API responses.
type EntryDTO struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	BreakMinutes int     `json:"breakMinutes"`
	WorkedHours  float64 `json:"workedHours"`
	Type         string  `json:"type"`
	Note         string  `json:"note,omitempty"`
}

// WorkEntryRequest is the body of POST /api/entries/work.
type WorkEntryRequest struct {
	Date         generic.Date `json:"date"`
	StartTime    string       `json:"startTime"`
	EndTime      string       `json:"endTime"`
	BreakMinutes int          `json:"breakMinutes"`
	Note         string       `json:"note"`
}

// AbsenceRequest is the body of POST /api/entries/absence. To is optional
// for a single day.
type AbsenceRequest struct {
	From              generic.Date  `json:"from"`
	To                *generic.Date `json:"to,omitempty"`
	Type              string        `json:"type"`
	Note              string        `json:"note"`
	CompensationHours float64       `json:"compensationHours"`
}

// AbsenceResponse lists the records written and the optional compensation.
type AbsenceResponse struct {
	Entries      []EntryDTO      `json:"entries"`
	Compensation *HistoryItemDTO `json:"compensation,omitempty"`
}

// UpdateEntryRequest is the body of PUT /api/entries/{id}. Omitted fields
// are left unchanged.
type UpdateEntryRequest struct {
	StartTime    *string `json:"startTime,omitempty"`
	EndTime      *string `json:"endTime,omitempty"`
	BreakMinutes *int    `json:"breakMinutes,omitempty"`
	Note         *string `json:"note,omitempty"`
}

// =============================================================================
// STATS & REPORTS
// =============================================================================

// WindowDTO is one overtime window.
type WindowDTO struct {
	Worked   float64 `json:"worked"`
	Target   float64 `json:"target"`
	Overtime float64 `json:"overtime"`
}

// StatsDTO holds the four windows relative to Today.
type StatsDTO struct {
	Today      string    `json:"today"`
	Daily      WindowDTO `json:"daily"`
	Weekly     WindowDTO `json:"weekly"`
	Monthly    WindowDTO `json:"monthly"`
	Cumulative WindowDTO `json:"cumulative"`
}

// VacationDTO is the vacation balance of one year.
type VacationDTO struct {
	Used      int     `json:"used"`
	Remaining float64 `json:"remaining"`
	Total     float64 `json:"total"`
}

// YearAbsencesDTO is GET /api/absences.
type YearAbsencesDTO struct {
	Year     int         `json:"year"`
	Vacation VacationDTO `json:"vacation"`
	Sick     int         `json:"sick"`
	Holiday  int         `json:"holiday"`
}

// MonthlyReportDTO is GET /api/reports/{month}.
type MonthlyReportDTO struct {
	Month            string     `json:"month"`
	WorkDays         int        `json:"workDays"`
	TotalWorkedHours float64    `json:"totalWorkedHours"`
	TotalTargetHours float64    `json:"totalTargetHours"`
	MonthlyOvertime  float64    `json:"monthlyOvertime"`
	VacationDays     int        `json:"vacationDays"`
	SickDays         int        `json:"sickDays"`
	HolidayDays      int        `json:"holidayDays"`
	Entries          []EntryDTO `json:"entries"`
}

// =============================================================================
// HISTORY
// =============================================================================

// HistoryItemDTO is either a snapshot (the four overtime fields) or a
// compensation (id, hours, description), told apart by Kind.
type HistoryItemDTO struct {
	Kind               string   `json:"kind"`
	Date               string   `json:"date"`
	DailyOvertime      *float64 `json:"dailyOvertime,omitempty"`
	WeeklyOvertime     *float64 `json:"weeklyOvertime,omitempty"`
	MonthlyOvertime    *float64 `json:"monthlyOvertime,omitempty"`
	CumulativeOvertime *float64 `json:"cumulativeOvertime,omitempty"`
	ID                 string   `json:"id,omitempty"`
	Hours              *float64 `json:"hours,omitempty"`
	Description        string   `json:"description,omitempty"`
}

// CompensationsResponse is GET /api/history/compensations.
type CompensationsResponse struct {
	Compensations []HistoryItemDTO `json:"compensations"`
	Total         float64          `json:"total"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// WeeklyTargetsDTO is the weekly schedule in responses.
type WeeklyTargetsDTO struct {
	Monday    float64 `json:"monday"`
	Tuesday   float64 `json:"tuesday"`
	Wednesday float64 `json:"wednesday"`
	Thursday  float64 `json:"thursday"`
	Friday    float64 `json:"friday"`
	Saturday  float64 `json:"saturday"`
	Sunday    float64 `json:"sunday"`
}

// WeeklyTargetsRequest is PUT /api/settings/targets. Every day is required.
type WeeklyTargetsRequest struct {
	Monday    *float64 `json:"monday"`
	Tuesday   *float64 `json:"tuesday"`
	Wednesday *float64 `json:"wednesday"`
	Thursday  *float64 `json:"thursday"`
	Friday    *float64 `json:"friday"`
	Saturday  *float64 `json:"saturday"`
	Sunday    *float64 `json:"sunday"`
}

// AbsenceSettingsDTO is the vacation entitlement, used both ways.
type AbsenceSettingsDTO struct {
	AnnualVacationDays      float64 `json:"annualVacationDays"`
	CurrentYearVacationDays float64 `json:"currentYearVacationDays"`
}

// =============================================================================
// STORAGE
// =============================================================================

// StorageInfoDTO is GET /api/storage.
type StorageInfoDTO struct {
	TotalEntries   int        `json:"totalEntries"`
	WorkEntries    int        `json:"workEntries"`
	AbsenceEntries int        `json:"absenceEntries"`
	HistoryEntries int        `json:"historyEntries"`
	LastBackup     *time.Time `json:"lastBackup,omitempty"`
}

// ImportResponse is POST /api/backup.
type ImportResponse struct {
	Entries int `json:"entries"`
	History int `json:"history"`
}

// ErrorResponse is the standard error format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEntryDTO(e worktime.TimeEntry) EntryDTO {
	return EntryDTO{
		ID:           e.ID,
		Date:         e.Date.String(),
		StartTime:    e.Start.String(),
		EndTime:      e.End.String(),
		BreakMinutes: e.BreakMinutes,
		WorkedHours:  e.WorkedHours.Float64(),
		Type:         string(e.Type),
		Note:         e.Note,
	}
}

func toEntryDTOs(entries []worktime.TimeEntry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

func toWindowDTO(w worktime.WindowStats) WindowDTO {
	return WindowDTO{
		Worked:   w.Worked.Float64(),
		Target:   w.Target.Float64(),
		Overtime: w.Overtime.Float64(),
	}
}

func toStatsDTO(today generic.Date, s worktime.OvertimeStats) StatsDTO {
	return StatsDTO{
		Today:      today.String(),
		Daily:      toWindowDTO(s.Daily),
		Weekly:     toWindowDTO(s.Weekly),
		Monthly:    toWindowDTO(s.Monthly),
		Cumulative: toWindowDTO(s.Cumulative),
	}
}

func toMonthlyReportDTO(r worktime.MonthlyReport) MonthlyReportDTO {
	return MonthlyReportDTO{
		Month:            r.Month.String(),
		WorkDays:         r.WorkDays,
		TotalWorkedHours: r.TotalWorkedHours.Float64(),
		TotalTargetHours: r.TotalTargetHours.Float64(),
		MonthlyOvertime:  r.MonthlyOvertime.Float64(),
		VacationDays:     r.VacationDays,
		SickDays:         r.SickDays,
		HolidayDays:      r.HolidayDays,
		Entries:          toEntryDTOs(r.Entries),
	}
}

func floatPtr(a generic.Amount) *float64 {
	f := a.Float64()
	return &f
}

func toHistoryItemDTO(item worktime.HistoryEntry) HistoryItemDTO {
	dto := HistoryItemDTO{Kind: string(item.Kind()), Date: item.EntryDate().String()}
	switch v := item.(type) {
	case *worktime.Snapshot:
		dto.DailyOvertime = floatPtr(v.DailyOvertime)
		dto.WeeklyOvertime = floatPtr(v.WeeklyOvertime)
		dto.MonthlyOvertime = floatPtr(v.MonthlyOvertime)
		dto.CumulativeOvertime = floatPtr(v.CumulativeOvertime)
	case *worktime.Compensation:
		dto.ID = v.ID
		dto.Hours = floatPtr(v.Hours)
		dto.Description = v.Description
	}
	return dto
}

func toWeeklyTargetsDTO(w worktime.WeeklyTargetHours) WeeklyTargetsDTO {
	return WeeklyTargetsDTO{
		Monday:    w.Monday.InexactFloat64(),
		Tuesday:   w.Tuesday.InexactFloat64(),
		Wednesday: w.Wednesday.InexactFloat64(),
		Thursday:  w.Thursday.InexactFloat64(),
		Friday:    w.Friday.InexactFloat64(),
		Saturday:  w.Saturday.InexactFloat64(),
		Sunday:    w.Sunday.InexactFloat64(),
	}
}

// weeklyTargets returns the name of the first missing day, if any.
func (req WeeklyTargetsRequest) weeklyTargets() (worktime.WeeklyTargetHours, string) {
	days := []*float64{req.Sunday, req.Monday, req.Tuesday, req.Wednesday, req.Thursday, req.Friday, req.Saturday}
	var targets worktime.WeeklyTargetHours
	for _, day := range worktime.Weekdays {
		v := days[day]
		if v == nil {
			return worktime.WeeklyTargetHours{}, worktime.WeekdayName(day)
		}
		targets = targets.Set(day, decimal.NewFromFloat(*v))
	}
	return targets, ""
}

func toAbsenceSettingsDTO(s worktime.AbsenceSettings) AbsenceSettingsDTO {
	return AbsenceSettingsDTO{
		AnnualVacationDays:      s.AnnualVacationDays.Float64(),
		CurrentYearVacationDays: s.CurrentYearVacationDays.Float64(),
	}
}

func (dto AbsenceSettingsDTO) absenceSettings() worktime.AbsenceSettings {
	return worktime.AbsenceSettings{
		AnnualVacationDays:      generic.Days(dto.AnnualVacationDays),
		CurrentYearVacationDays: generic.Days(dto.CurrentYearVacationDays),
	}
}
