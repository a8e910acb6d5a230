package engine_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/globalentry/slot-alerter/internal/notify"
	domain "github.com/globalentry/slot-alerter/pkg/types"
)

// quietLogger returns a logger that discards output for tests.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func slotAt(locationID int, start time.Time) domain.Slot {
	return domain.Slot{
		LocationID: locationID,
		StartTime:  start,
		EndTime:    start.Add(15 * time.Minute),
		Duration:   15,
	}
}

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) Slots(ctx context.Context, locationID int) ([]domain.Slot, error) {
	args := m.Called(ctx, locationID)
	if v := args.Get(0); v != nil {
		return v.([]domain.Slot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockChecker) Locations(ctx context.Context) ([]domain.Location, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]domain.Location), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendAlert(ctx context.Context, alert *notify.AlertPayload) error {
	return m.Called(ctx, alert).Error(0)
}

func (m *mockNotifier) SendBatchAlert(
	ctx context.Context,
	alerts []notify.AlertPayload,
	locationName string,
) error {
	return m.Called(ctx, alerts, locationName).Error(0)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FilterUnseen(ctx context.Context, slots []domain.Slot) ([]domain.Slot, error) {
	args := m.Called(ctx, slots)
	if v := args.Get(0); v != nil {
		return v.([]domain.Slot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) MarkNotified(ctx context.Context, slots []domain.Slot) error {
	return m.Called(ctx, slots).Error(0)
}

func (m *mockStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() {
	m.Called()
}
