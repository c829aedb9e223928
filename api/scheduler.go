/*
scheduler.go - Automated overtime snapshot scheduler

PURPOSE:
  Periodically upserts the overtime snapshot for the current day, so the
  history gets one entry per active day even when nothing is recorded.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Upserting is idempotent: repeated runs on one day replace that day's
    snapshot, they never add a second one

CONFIGURATION:
  - Interval: How often to snapshot (default: 1 hour, config snapshot_interval)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSnapshotScheduler(service, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TakeSnapshot endpoint (manual snapshot)
  - worktime/history.go: UpsertSnapshot
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/worktime-engine/tracker"
)

// SnapshotScheduler handles the periodic snapshot.
type SnapshotScheduler struct {
	Service  *tracker.Service
	Logger   *slog.Logger
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSnapshotScheduler creates a new scheduler.
func NewSnapshotScheduler(service *tracker.Service, logger *slog.Logger) *SnapshotScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotScheduler{
		Service:  service,
		Logger:   logger.With("component", "scheduler"),
		Interval: 1 * time.Hour,
		Enabled:  true,
	}
}

// Start begins the scheduler.
func (ss *SnapshotScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		ss.Logger.Info("disabled, not starting")
		return
	}
	if ss.ticker != nil {
		return
	}

	ss.ticker = time.NewTicker(ss.Interval)
	ss.stop = make(chan bool)
	ss.wg.Add(1)

	go ss.run()

	ss.Logger.Info("started", "interval", ss.Interval.String())
}

// Stop stops the scheduler and waits for a running snapshot to finish.
func (ss *SnapshotScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		ss.ticker = nil
		ss.Logger.Info("stopped")
	}
}

func (ss *SnapshotScheduler) run() {
	defer ss.wg.Done()

	// Run immediately on start
	ss.snapshot()

	for {
		select {
		case <-ss.ticker.C:
			ss.snapshot()
		case <-ss.stop:
			return
		}
	}
}

func (ss *SnapshotScheduler) snapshot() {
	ctx := context.Background()
	today := ss.Service.Today()

	snap, err := ss.Service.Snapshot(ctx, today)
	if err != nil {
		ss.Logger.Error("snapshot failed", "date", today.String(), "error", err)
		return
	}

	observeSnapshot(snap, "scheduler")
	ss.Logger.Debug("snapshot taken",
		"date", today.String(),
		"cumulative", snap.CumulativeOvertime.Value.String(),
	)
}

// RunNow triggers an immediate snapshot (for testing/admin).
func (ss *SnapshotScheduler) RunNow() {
	ss.snapshot()
}

// NextRunTime returns when the next scheduled snapshot will occur.
func (ss *SnapshotScheduler) NextRunTime() time.Time {
	return ss.Service.Now().Add(ss.Interval)
}
