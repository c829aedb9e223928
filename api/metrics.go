package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/warp/worktime-engine/worktime"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// EntriesRecorded counts records written, by entry type.
var EntriesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "worktime",
	Subsystem: "ledger",
	Name:      "entries_recorded_total",
	Help:      "Total time entries recorded, by type.",
}, []string{"type"})

// EntriesDeleted counts deleted records.
var EntriesDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "worktime",
	Subsystem: "ledger",
	Name:      "entries_deleted_total",
	Help:      "Total time entries deleted.",
})

// BackupOperations counts exports and imports, by outcome.
var BackupOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "worktime",
	Subsystem: "backup",
	Name:      "operations_total",
	Help:      "Total backup exports and imports, by operation and result.",
}, []string{"operation", "result"})

// ─── Overtime Metrics ───────────────────────────────────────────────────────

// SnapshotsTaken counts snapshot upserts, by trigger.
var SnapshotsTaken = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "worktime",
	Subsystem: "history",
	Name:      "snapshots_total",
	Help:      "Total overtime snapshots upserted, by trigger (api, scheduler).",
}, []string{"trigger"})

// OvertimeHours is the overtime of each window at the last computation.
var OvertimeHours = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "worktime",
	Subsystem: "overtime",
	Name:      "hours",
	Help:      "Overtime hours per window (daily, weekly, monthly, cumulative) at the last computation.",
}, []string{"window"})

func observeOvertime(stats worktime.OvertimeStats) {
	OvertimeHours.WithLabelValues("daily").Set(stats.Daily.Overtime.Float64())
	OvertimeHours.WithLabelValues("weekly").Set(stats.Weekly.Overtime.Float64())
	OvertimeHours.WithLabelValues("monthly").Set(stats.Monthly.Overtime.Float64())
	OvertimeHours.WithLabelValues("cumulative").Set(stats.Cumulative.Overtime.Float64())
}

func observeSnapshot(snap *worktime.Snapshot, trigger string) {
	SnapshotsTaken.WithLabelValues(trigger).Inc()
	OvertimeHours.WithLabelValues("daily").Set(snap.DailyOvertime.Float64())
	OvertimeHours.WithLabelValues("weekly").Set(snap.WeeklyOvertime.Float64())
	OvertimeHours.WithLabelValues("monthly").Set(snap.MonthlyOvertime.Float64())
	OvertimeHours.WithLabelValues("cumulative").Set(snap.CumulativeOvertime.Float64())
}
