package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/globalentry/slot-alerter/internal/metrics"
	"github.com/globalentry/slot-alerter/internal/notify"
	domain "github.com/globalentry/slot-alerter/pkg/types"
)

// notifyNewSlots delivers alerts for newly detected slots at one location
// and records them as seen. Slots whose notification failed are not marked,
// so they are retried on the next cycle. Above the batch threshold all slots
// go out as a single message.
func (eng *Engine) notifyNewSlots(
	ctx context.Context,
	loc domain.Location,
	slots []domain.Slot,
) error {
	if len(slots) >= eng.batchThreshold {
		return eng.sendBatch(ctx, loc, slots)
	}

	var errs []error
	for i := range slots {
		if err := eng.sendSingle(ctx, loc, slots[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (eng *Engine) sendSingle(ctx context.Context, loc domain.Location, slot domain.Slot) error {
	payload := buildAlertPayload(loc, slot, false)

	if err := eng.notifier.SendAlert(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return fmt.Errorf("sending alert for %s: %w", slot.Key(), err)
	}

	metrics.AlertsFiredTotal.Inc()

	return eng.store.MarkNotified(ctx, []domain.Slot{slot})
}

func (eng *Engine) sendBatch(ctx context.Context, loc domain.Location, slots []domain.Slot) error {
	payloads := make([]notify.AlertPayload, 0, len(slots))
	for i := range slots {
		payloads = append(payloads, *buildAlertPayload(loc, slots[i], false))
	}

	if err := eng.notifier.SendBatchAlert(ctx, payloads, loc.Label()); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return fmt.Errorf("sending batch alert: %w", err)
	}

	metrics.AlertsFiredTotal.Add(float64(len(slots)))

	return eng.store.MarkNotified(ctx, slots)
}

// SendStartupTest delivers a synthetic alert so topic subscribers can verify
// delivery end to end before waiting on real availability.
func (eng *Engine) SendStartupTest(ctx context.Context) error {
	loc := domain.Location{}
	if len(eng.locations) > 0 {
		loc = eng.locations[0]
	}

	now := eng.nowFunc()
	payload := buildAlertPayload(loc, domain.Slot{
		LocationID: loc.ID,
		StartTime:  now,
	}, true)

	if err := eng.notifier.SendAlert(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return fmt.Errorf("sending startup test notification: %w", err)
	}

	eng.log.Info("startup test notification sent", "location", loc.Label())
	return nil
}

func buildAlertPayload(loc domain.Location, slot domain.Slot, test bool) *notify.AlertPayload {
	return &notify.AlertPayload{
		LocationName: loc.Label(),
		LocationID:   loc.ID,
		Date:         slot.Date(),
		Time:         slot.Clock(),
		Duration:     slot.Duration,
		Test:         test,
	}
}
