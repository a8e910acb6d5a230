package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/globalentry/slot-alerter/internal/metrics"
)

// Scheduler runs the periodic check cycle and seen-state pruning.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger

	checkEntryID cron.EntryID
	pruneEntryID cron.EntryID
}

// NewScheduler creates a Scheduler that runs engine tasks on a fixed cadence.
// A pruneInterval of zero disables the prune job (used by the memory store
// when a deployment prefers process-lifetime state).
func NewScheduler(
	eng *Engine,
	checkInterval time.Duration,
	pruneInterval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		engine: eng,
		log:    log,
	}

	id, err := c.AddFunc("@every "+checkInterval.String(), s.runCheck)
	if err != nil {
		return nil, err
	}
	s.checkEntryID = id

	if pruneInterval > 0 {
		id, err := c.AddFunc("@every "+pruneInterval.String(), s.runPrune)
		if err != nil {
			return nil, err
		}
		s.pruneEntryID = id
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
	s.SyncNextRunTimestamp()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// SyncNextRunTimestamp publishes the next check time as a gauge so dashboards
// can show when the next poll happens.
func (s *Scheduler) SyncNextRunTimestamp() {
	entry := s.cron.Entry(s.checkEntryID)
	if !entry.Next.IsZero() {
		metrics.SchedulerNextCheckTimestamp.Set(float64(entry.Next.Unix()))
	}
}

func (s *Scheduler) runCheck() {
	ctx := context.Background()
	s.log.Debug("scheduled check starting")
	if err := s.engine.RunCheck(ctx); err != nil {
		s.log.Error("scheduled check failed", "error", err)
	}
	s.SyncNextRunTimestamp()
}

func (s *Scheduler) runPrune() {
	ctx := context.Background()
	if err := s.engine.RunPrune(ctx); err != nil {
		s.log.Error("scheduled prune failed", "error", err)
	}
}
