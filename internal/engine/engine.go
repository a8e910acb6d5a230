// Package engine orchestrates the check cycle: poll the scheduler API for
// each configured location, detect slots that have not been alerted, and
// deliver notifications.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/globalentry/slot-alerter/internal/metrics"
	"github.com/globalentry/slot-alerter/internal/notify"
	"github.com/globalentry/slot-alerter/internal/store"
	"github.com/globalentry/slot-alerter/internal/ttp"
	domain "github.com/globalentry/slot-alerter/pkg/types"
)

const defaultBatchThreshold = 5

// Engine runs check cycles over a fixed location list.
type Engine struct {
	store    store.Store
	checker  ttp.SchedulerClient
	notifier notify.Notifier
	log      *slog.Logger

	locations      []domain.Location
	staggerOffset  time.Duration
	batchThreshold int
	nowFunc        func() time.Time
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	s store.Store,
	c ttp.SchedulerClient,
	n notify.Notifier,
	locations []domain.Location,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:          s,
		checker:        c,
		notifier:       n,
		locations:      locations,
		log:            slog.Default(),
		batchThreshold: defaultBatchThreshold,
		nowFunc:        time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithStaggerOffset sets the delay between checking each location.
func WithStaggerOffset(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.staggerOffset = d
	}
}

// WithBatchThreshold sets the alert count at which a location's alerts are
// collapsed into one batch notification.
func WithBatchThreshold(n int) EngineOption {
	return func(e *Engine) {
		e.batchThreshold = n
	}
}

// WithNowFunc overrides the time source, used by tests and pruning.
func WithNowFunc(f func() time.Time) EngineOption {
	return func(e *Engine) {
		e.nowFunc = f
	}
}

// Locations returns the location list the engine polls.
func (eng *Engine) Locations() []domain.Location {
	return eng.locations
}

// RunCheck executes one availability check cycle across all locations in
// sequence. A failure at one location never prevents checking the rest;
// those errors are logged, counted, and retried on the next cycle.
func (eng *Engine) RunCheck(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.CheckCycleDuration.Observe(time.Since(start).Seconds())
	}()

	for i := range eng.locations {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		loc := eng.locations[i]

		if err := eng.checkLocation(ctx, loc); err != nil {
			metrics.CheckErrorsTotal.Inc()
			eng.log.Error("availability check failed",
				"location", loc.Label(),
				"location_id", loc.ID,
				"error", err,
			)
		}

		if i < len(eng.locations)-1 && eng.staggerOffset > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(eng.staggerOffset):
			}
		}
	}

	return nil
}

func (eng *Engine) checkLocation(ctx context.Context, loc domain.Location) error {
	metrics.ChecksTotal.Inc()

	slots, err := eng.checker.Slots(ctx, loc.ID)
	if err != nil {
		return fmt.Errorf("fetching slots: %w", err)
	}

	slots = Dedupe(slots)
	metrics.SlotsObservedTotal.Add(float64(len(slots)))

	newSlots, err := eng.store.FilterUnseen(ctx, slots)
	if err != nil {
		return fmt.Errorf("filtering seen slots: %w", err)
	}

	if len(newSlots) == 0 {
		eng.log.Debug("no new availability",
			"location", loc.Label(),
			"open_slots", len(slots),
		)
		return nil
	}

	metrics.NewSlotsTotal.Add(float64(len(newSlots)))
	eng.log.Info("new availability detected",
		"location", loc.Label(),
		"location_id", loc.ID,
		"new_slots", len(newSlots),
		"soonest", newSlots[0].Date(),
	)

	return eng.notifyNewSlots(ctx, loc, newSlots)
}

// RunPrune drops seen-state records for slots that are already in the past.
// A past slot can never be offered again, so keeping it only grows the store.
func (eng *Engine) RunPrune(ctx context.Context) error {
	removed, err := eng.store.Prune(ctx, eng.nowFunc())
	if err != nil {
		return fmt.Errorf("pruning seen slots: %w", err)
	}

	if removed > 0 {
		metrics.SeenSlotsPrunedTotal.Add(float64(removed))
		eng.log.Info("pruned expired seen slots", "removed", removed)
	}
	return nil
}

// ResolveLocations enriches configured location IDs with display names from
// the scheduler API directory. Lookup failure is non-fatal: alerts then show
// the numeric ID instead of a name.
func ResolveLocations(
	ctx context.Context,
	client ttp.SchedulerClient,
	ids []int,
	log *slog.Logger,
) []domain.Location {
	byID := make(map[int]domain.Location)

	directory, err := client.Locations(ctx)
	if err != nil {
		log.Warn("location directory lookup failed, alerts will show numeric ids", "error", err)
	} else {
		for _, l := range directory {
			byID[l.ID] = l
		}
	}

	out := make([]domain.Location, 0, len(ids))
	for _, id := range ids {
		if loc, ok := byID[id]; ok {
			out = append(out, loc)
			continue
		}
		out = append(out, domain.Location{ID: id})
	}
	return out
}
