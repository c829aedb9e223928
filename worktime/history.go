package worktime

import (
	"sort"

	"github.com/warp/worktime-engine/generic"
)

// =============================================================================
// HISTORY - Ordered log of snapshots and compensations
// =============================================================================

// HistoryKind tags the variant of a history entry.
type HistoryKind string

const (
	KindSnapshot     HistoryKind = "snapshot"
	KindCompensation HistoryKind = "compensation"
)

// HistoryEntry is one item of the history log: either a *Snapshot or a
// *Compensation. The interface is closed; no other implementations exist.
type HistoryEntry interface {
	Kind() HistoryKind
	EntryDate() generic.Date
	historyEntry()
}

// Snapshot is the persisted daily summary of the four overtime windows.
// At most one Snapshot exists per date.
type Snapshot struct {
	Date               generic.Date
	DailyOvertime      generic.Amount
	WeeklyOvertime     generic.Amount
	MonthlyOvertime    generic.Amount
	CumulativeOvertime generic.Amount
}

func (*Snapshot) Kind() HistoryKind         { return KindSnapshot }
func (s *Snapshot) EntryDate() generic.Date { return s.Date }
func (*Snapshot) historyEntry()             {}

// NewSnapshot freezes the overtime of every window on date.
func NewSnapshot(date generic.Date, stats OvertimeStats) *Snapshot {
	return &Snapshot{
		Date:               date,
		DailyOvertime:      stats.Daily.Overtime,
		WeeklyOvertime:     stats.Weekly.Overtime,
		MonthlyOvertime:    stats.Monthly.Overtime,
		CumulativeOvertime: stats.Cumulative.Overtime,
	}
}

// Compensation is a manual, signed adjustment of the overtime account.
// Any number may share a date.
type Compensation struct {
	ID          string
	Date        generic.Date
	Hours       generic.Amount // negative when overtime is taken off
	Description string
}

func (*Compensation) Kind() HistoryKind         { return KindCompensation }
func (c *Compensation) EntryDate() generic.Date { return c.Date }
func (*Compensation) historyEntry()             {}

// History is the ordered log. Order is insertion order.
type History []HistoryEntry

// UpsertSnapshot returns a new log without any snapshot dated today, followed
// by a fresh snapshot of stats. Compensations keep their positions. The input
// slice is not modified.
func UpsertSnapshot(h History, today generic.Date, stats OvertimeStats) History {
	out := make(History, 0, len(h)+1)
	for _, entry := range h {
		if s, ok := entry.(*Snapshot); ok && s.Date == today {
			continue
		}
		out = append(out, entry)
	}
	return append(out, NewSnapshot(today, stats))
}

// AddCompensation returns a new log with c appended.
func AddCompensation(h History, c Compensation) History {
	out := make(History, 0, len(h)+1)
	out = append(out, h...)
	return append(out, &c)
}

// SnapshotFor returns the snapshot keyed by date, if any.
func (h History) SnapshotFor(date generic.Date) (*Snapshot, bool) {
	for _, entry := range h {
		if s, ok := entry.(*Snapshot); ok && s.Date == date {
			return s, true
		}
	}
	return nil, false
}

// Snapshots returns the snapshot variant in log order.
func (h History) Snapshots() []*Snapshot {
	var out []*Snapshot
	for _, entry := range h {
		if s, ok := entry.(*Snapshot); ok {
			out = append(out, s)
		}
	}
	return out
}

// Compensations returns the compensation variant, newest date first.
func (h History) Compensations() []*Compensation {
	var out []*Compensation
	for _, entry := range h {
		if c, ok := entry.(*Compensation); ok {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// CompensationTotal sums the signed hours of all compensations.
func (h History) CompensationTotal() generic.Amount {
	total := generic.ZeroHours()
	for _, entry := range h {
		if c, ok := entry.(*Compensation); ok {
			total = total.Add(c.Hours)
		}
	}
	return total
}
