/*
backup.go - Versioned JSON backup blob

PURPOSE:
  Export and import the complete dataset (ledger, history, settings) as one
  JSON document. The field names match the blob written by the browser
  version of the tracker, so files move freely between the two.

FORMAT (version "1.0"):
  {
    "timeEntries":       [{id, date, startTime, endTime, breakMinutes, workedHours, type, note}],
    "dailyTargetHours":  8,
    "weeklyTargetHours": {monday..sunday},
    "overtimeHistory":   [snapshot | compensation],
    "absenceSettings":   {annualVacationDays, currentYearVacationDays},
    "exportDate":        "2025-03-10T12:00:00Z",
    "version":           "1.0"
  }

  Snapshot history items carry the four overtime fields and no type.
  Compensation items carry type "overtime_free" (older files: "compensation"),
  hours, and description.

NUMBERS:
  Hours are JSON numbers. Conversion to and from decimal happens only here.

SEE ALSO:
  - tracker/tracker.go: Export / Import
  - generic/errors.go: BackupValidationError
*/
package backup

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

// Version is the only blob format this package reads and writes.
const Version = "1.0"

const (
	historyTypeOvertimeFree = "overtime_free"
	historyTypeCompensation = "compensation"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// Blob is the top-level backup document.
type Blob struct {
	TimeEntries       []Entry         `json:"timeEntries"`
	DailyTargetHours  *float64        `json:"dailyTargetHours,omitempty"`
	WeeklyTargetHours WeeklyTargets   `json:"weeklyTargetHours"`
	OvertimeHistory   []HistoryItem   `json:"overtimeHistory"`
	AbsenceSettings   AbsenceSettings `json:"absenceSettings"`
	ExportDate        string          `json:"exportDate,omitempty"`
	Version           string          `json:"version,omitempty"`
}

type Entry struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	BreakMinutes int     `json:"breakMinutes"`
	WorkedHours  float64 `json:"workedHours"`
	Type         string  `json:"type"`
	Note         string  `json:"note,omitempty"`
}

type WeeklyTargets struct {
	Monday    float64 `json:"monday"`
	Tuesday   float64 `json:"tuesday"`
	Wednesday float64 `json:"wednesday"`
	Thursday  float64 `json:"thursday"`
	Friday    float64 `json:"friday"`
	Saturday  float64 `json:"saturday"`
	Sunday    float64 `json:"sunday"`
}

// HistoryItem is either a snapshot (four overtime fields) or a compensation
// (Type set, Hours and Description).
type HistoryItem struct {
	ID                 string   `json:"id,omitempty"`
	Date               string   `json:"date"`
	DailyOvertime      *float64 `json:"dailyOvertime,omitempty"`
	WeeklyOvertime     *float64 `json:"weeklyOvertime,omitempty"`
	MonthlyOvertime    *float64 `json:"monthlyOvertime,omitempty"`
	CumulativeOvertime *float64 `json:"cumulativeOvertime,omitempty"`
	Type               string   `json:"type,omitempty"`
	Hours              *float64 `json:"hours,omitempty"`
	Description        string   `json:"description,omitempty"`
}

func (h HistoryItem) isCompensation() bool {
	return h.Type == historyTypeOvertimeFree || h.Type == historyTypeCompensation
}

type AbsenceSettings struct {
	AnnualVacationDays      *float64 `json:"annualVacationDays,omitempty"`
	CurrentYearVacationDays *float64 `json:"currentYearVacationDays,omitempty"`
}

// =============================================================================
// EXPORT
// =============================================================================

// FromDataset converts a dataset into its blob form.
func FromDataset(d worktime.Dataset, exportedAt time.Time) Blob {
	b := Blob{
		TimeEntries:     make([]Entry, 0, len(d.Entries)),
		OvertimeHistory: make([]HistoryItem, 0, len(d.History)),
		ExportDate:      exportedAt.UTC().Format(time.RFC3339),
		Version:         Version,
	}

	for _, e := range d.Entries {
		b.TimeEntries = append(b.TimeEntries, Entry{
			ID:           e.ID,
			Date:         e.Date.String(),
			StartTime:    e.Start.String(),
			EndTime:      e.End.String(),
			BreakMinutes: e.BreakMinutes,
			WorkedHours:  e.WorkedHours.Float64(),
			Type:         string(e.Type),
			Note:         e.Note,
		})
	}

	daily := d.Settings.DailyTargetHours.InexactFloat64()
	b.DailyTargetHours = &daily

	w := d.Settings.WeeklyTargets
	b.WeeklyTargetHours = WeeklyTargets{
		Monday:    w.Monday.InexactFloat64(),
		Tuesday:   w.Tuesday.InexactFloat64(),
		Wednesday: w.Wednesday.InexactFloat64(),
		Thursday:  w.Thursday.InexactFloat64(),
		Friday:    w.Friday.InexactFloat64(),
		Saturday:  w.Saturday.InexactFloat64(),
		Sunday:    w.Sunday.InexactFloat64(),
	}

	for _, entry := range d.History {
		switch h := entry.(type) {
		case *worktime.Snapshot:
			b.OvertimeHistory = append(b.OvertimeHistory, HistoryItem{
				Date:               h.Date.String(),
				DailyOvertime:      floatPtr(h.DailyOvertime),
				WeeklyOvertime:     floatPtr(h.WeeklyOvertime),
				MonthlyOvertime:    floatPtr(h.MonthlyOvertime),
				CumulativeOvertime: floatPtr(h.CumulativeOvertime),
			})
		case *worktime.Compensation:
			b.OvertimeHistory = append(b.OvertimeHistory, HistoryItem{
				ID:          h.ID,
				Date:        h.Date.String(),
				Type:        historyTypeOvertimeFree,
				Hours:       floatPtr(h.Hours),
				Description: h.Description,
			})
		}
	}

	annual := d.Settings.Absence.AnnualVacationDays.Float64()
	current := d.Settings.Absence.CurrentYearVacationDays.Float64()
	b.AbsenceSettings = AbsenceSettings{AnnualVacationDays: &annual, CurrentYearVacationDays: &current}

	return b
}

// Encode writes the dataset as an indented JSON blob.
func Encode(d worktime.Dataset, exportedAt time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(FromDataset(d, exportedAt), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

func floatPtr(a generic.Amount) *float64 {
	f := a.Float64()
	return &f
}

// =============================================================================
// IMPORT
// =============================================================================

// Decode validates data and converts it into a dataset. Missing optional
// parts take their defaults.
func Decode(data []byte) (worktime.Dataset, error) {
	if err := Validate(data); err != nil {
		return worktime.Dataset{}, err
	}

	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		return worktime.Dataset{}, fmt.Errorf("%w: %v", generic.ErrInvalidBackup, err)
	}
	return b.Dataset()
}

// Dataset converts the blob into engine types.
func (b Blob) Dataset() (worktime.Dataset, error) {
	if b.Version != "" && b.Version != Version {
		return worktime.Dataset{}, fmt.Errorf("%w: %q", generic.ErrUnsupportedVersion, b.Version)
	}

	d := worktime.Dataset{
		Entries:  make([]worktime.TimeEntry, 0, len(b.TimeEntries)),
		History:  make(worktime.History, 0, len(b.OvertimeHistory)),
		Settings: worktime.DefaultSettings(),
	}

	seen := make(map[string]bool, len(b.TimeEntries))
	for i, e := range b.TimeEntries {
		path := fmt.Sprintf("timeEntries[%d]", i)
		if seen[e.ID] {
			return worktime.Dataset{}, invalid(path+".id", "duplicate id %q", e.ID)
		}
		seen[e.ID] = true

		entry, err := e.toEntry(path)
		if err != nil {
			return worktime.Dataset{}, err
		}
		d.Entries = append(d.Entries, entry)
	}

	snapshotDates := make(map[generic.Date]bool)
	for i, h := range b.OvertimeHistory {
		path := fmt.Sprintf("overtimeHistory[%d]", i)
		date, err := parseBlobDate(h.Date)
		if err != nil {
			return worktime.Dataset{}, invalid(path+".date", "%v", err)
		}

		if h.isCompensation() {
			d.History = append(d.History, &worktime.Compensation{
				ID:          h.ID,
				Date:        date,
				Hours:       hoursOf(h.Hours),
				Description: h.Description,
			})
			continue
		}

		if snapshotDates[date] {
			return worktime.Dataset{}, invalid(path+".date", "duplicate snapshot for %s", date)
		}
		snapshotDates[date] = true
		d.History = append(d.History, &worktime.Snapshot{
			Date:               date,
			DailyOvertime:      hoursOf(h.DailyOvertime),
			WeeklyOvertime:     hoursOf(h.WeeklyOvertime),
			MonthlyOvertime:    hoursOf(h.MonthlyOvertime),
			CumulativeOvertime: hoursOf(h.CumulativeOvertime),
		})
	}

	if b.DailyTargetHours != nil && *b.DailyTargetHours != 0 {
		d.Settings.DailyTargetHours = decimal.NewFromFloat(*b.DailyTargetHours)
	}

	w := b.WeeklyTargetHours
	d.Settings.WeeklyTargets = worktime.WeeklyTargetHours{
		Monday:    decimal.NewFromFloat(w.Monday),
		Tuesday:   decimal.NewFromFloat(w.Tuesday),
		Wednesday: decimal.NewFromFloat(w.Wednesday),
		Thursday:  decimal.NewFromFloat(w.Thursday),
		Friday:    decimal.NewFromFloat(w.Friday),
		Saturday:  decimal.NewFromFloat(w.Saturday),
		Sunday:    decimal.NewFromFloat(w.Sunday),
	}
	if err := d.Settings.WeeklyTargets.Validate(); err != nil {
		return worktime.Dataset{}, invalid("weeklyTargetHours", "%v", err)
	}

	if v := b.AbsenceSettings.AnnualVacationDays; v != nil {
		d.Settings.Absence.AnnualVacationDays = generic.Days(*v)
	}
	if v := b.AbsenceSettings.CurrentYearVacationDays; v != nil {
		d.Settings.Absence.CurrentYearVacationDays = generic.Days(*v)
	}
	if err := d.Settings.Absence.Validate(); err != nil {
		return worktime.Dataset{}, invalid("absenceSettings", "%v", err)
	}

	return d, nil
}

func (e Entry) toEntry(path string) (worktime.TimeEntry, error) {
	date, err := parseBlobDate(e.Date)
	if err != nil {
		return worktime.TimeEntry{}, invalid(path+".date", "%v", err)
	}
	typ, err := worktime.ParseEntryType(e.Type)
	if err != nil {
		return worktime.TimeEntry{}, invalid(path+".type", "unknown type %q", e.Type)
	}
	start, err := worktime.ParseClockTime(e.StartTime)
	if err != nil {
		return worktime.TimeEntry{}, invalid(path+".startTime", "%v", err)
	}
	end, err := worktime.ParseClockTime(e.EndTime)
	if err != nil {
		return worktime.TimeEntry{}, invalid(path+".endTime", "%v", err)
	}

	// Prefer the exact value when the clock times reproduce the stored number.
	worked := generic.Amount{Value: decimal.NewFromFloat(e.WorkedHours), Unit: generic.UnitHours}
	if typ == worktime.EntryWork {
		if exact := worktime.WorkedHours(start, end, e.BreakMinutes); exact.Float64() == e.WorkedHours {
			worked = exact
		}
	}

	return worktime.TimeEntry{
		ID:           e.ID,
		Date:         date,
		Start:        start,
		End:          end,
		BreakMinutes: e.BreakMinutes,
		WorkedHours:  worked,
		Type:         typ,
		Note:         e.Note,
	}, nil
}

// parseBlobDate accepts "YYYY-MM-DD" and full ISO timestamps.
func parseBlobDate(s string) (generic.Date, error) {
	if i := strings.IndexByte(s, 'T'); i == len(generic.DateLayout) {
		s = s[:i]
	}
	return generic.ParseDate(s)
}

func hoursOf(f *float64) generic.Amount {
	if f == nil {
		return generic.ZeroHours()
	}
	return generic.Amount{Value: decimal.NewFromFloat(*f), Unit: generic.UnitHours}
}

func invalid(path, format string, args ...any) error {
	return &generic.BackupValidationError{Path: path, Message: fmt.Sprintf(format, args...)}
}
