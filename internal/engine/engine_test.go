package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/globalentry/slot-alerter/internal/engine"
	"github.com/globalentry/slot-alerter/internal/notify"
	"github.com/globalentry/slot-alerter/internal/store"
	domain "github.com/globalentry/slot-alerter/pkg/types"
)

var (
	charlotte = domain.Location{ID: 14321, Name: "Charlotte-Douglas International Airport"}
	jfk       = domain.Location{ID: 5140, Name: "JFK International Global Entry"}
)

func newEngine(
	s store.Store,
	c *mockChecker,
	n *mockNotifier,
	locations []domain.Location,
	opts ...engine.EngineOption,
) *engine.Engine {
	opts = append([]engine.EngineOption{engine.WithLogger(quietLogger())}, opts...)
	return engine.NewEngine(s, c, n, locations, opts...)
}

func TestRunCheck_EachLocationCheckedOncePerCycle(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte, jfk})

	mc.On("Slots", mock.Anything, 14321).Return([]domain.Slot{}, nil).Once()
	mc.On("Slots", mock.Anything, 5140).Return([]domain.Slot{}, nil).Once()

	require.NoError(t, eng.RunCheck(context.Background()))

	mc.AssertExpectations(t)
	mn.AssertNotCalled(t, "SendAlert", mock.Anything, mock.Anything)
}

func TestRunCheck_NewSlotNotifiedExactlyOnce(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte})

	slot := slotAt(14321, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	mc.On("Slots", mock.Anything, 14321).Return([]domain.Slot{slot}, nil)
	mn.On("SendAlert", mock.Anything, mock.Anything).Return(nil)

	// The same open slot observed on three consecutive cycles.
	for range 3 {
		require.NoError(t, eng.RunCheck(context.Background()))
	}

	mn.AssertNumberOfCalls(t, "SendAlert", 1)
}

func TestRunCheck_AlertPayloadFields(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte})

	slot := slotAt(14321, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	mc.On("Slots", mock.Anything, 14321).Return([]domain.Slot{slot}, nil).Once()

	mn.On("SendAlert", mock.Anything, mock.MatchedBy(func(a *notify.AlertPayload) bool {
		return a.LocationName == charlotte.Name &&
			a.Date == "2026-03-14" &&
			a.Time == "10:00" &&
			!a.Test
	})).Return(nil).Once()

	require.NoError(t, eng.RunCheck(context.Background()))
	mn.AssertExpectations(t)
}

func TestRunCheck_DisappearedSlotNotRenotifiedOnReturn(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte})

	slot := slotAt(14321, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))

	mc.On("Slots", mock.Anything, 14321).Return([]domain.Slot{slot}, nil).Once()
	mn.On("SendAlert", mock.Anything, mock.Anything).Return(nil).Once()
	require.NoError(t, eng.RunCheck(context.Background()))

	// Slot booked away, then the booking falls through and it reappears.
	mc.On("Slots", mock.Anything, 14321).Return([]domain.Slot{}, nil).Once()
	require.NoError(t, eng.RunCheck(context.Background()))

	mc.On("Slots", mock.Anything, 14321).Return([]domain.Slot{slot}, nil).Once()
	require.NoError(t, eng.RunCheck(context.Background()))

	// Still in the seen store, so no second alert.
	mn.AssertNumberOfCalls(t, "SendAlert", 1)
}

func TestRunCheck_ErrorAtOneLocationDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte, jfk})

	slot := slotAt(5140, time.Date(2026, 3, 20, 8, 30, 0, 0, time.UTC))

	mc.On("Slots", mock.Anything, 14321).Return(nil, errors.New("connection refused")).Once()
	mc.On("Slots", mock.Anything, 5140).Return([]domain.Slot{slot}, nil).Once()
	mn.On("SendAlert", mock.Anything, mock.Anything).Return(nil).Once()

	// The cycle itself succeeds; the per-location failure is logged.
	require.NoError(t, eng.RunCheck(context.Background()))

	mc.AssertExpectations(t)
	mn.AssertExpectations(t)
}

func TestRunCheck_FailedNotificationRetriedNextCycle(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte})

	slot := slotAt(14321, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	mc.On("Slots", mock.Anything, 14321).Return([]domain.Slot{slot}, nil)

	// First delivery fails; the slot must not be marked seen.
	mn.On("SendAlert", mock.Anything, mock.Anything).Return(errors.New("ntfy down")).Once()
	require.NoError(t, eng.RunCheck(context.Background()))

	// Second cycle retries and succeeds.
	mn.On("SendAlert", mock.Anything, mock.Anything).Return(nil).Once()
	require.NoError(t, eng.RunCheck(context.Background()))

	// Third cycle: already seen, nothing sent.
	require.NoError(t, eng.RunCheck(context.Background()))

	mn.AssertNumberOfCalls(t, "SendAlert", 2)
}

func TestRunCheck_BatchAboveThreshold(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte})

	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	slots := make([]domain.Slot, 6)
	for i := range slots {
		slots[i] = slotAt(14321, base.Add(time.Duration(i)*time.Hour))
	}

	mc.On("Slots", mock.Anything, 14321).Return(slots, nil)
	mn.On("SendBatchAlert", mock.Anything, mock.Anything, charlotte.Name).Return(nil).Once()

	require.NoError(t, eng.RunCheck(context.Background()))
	require.NoError(t, eng.RunCheck(context.Background())) // no re-send

	mn.AssertExpectations(t)
	mn.AssertNotCalled(t, "SendAlert", mock.Anything, mock.Anything)
	mn.AssertNumberOfCalls(t, "SendBatchAlert", 1)
}

func TestRunCheck_DuplicateSlotsInResponseCollapsed(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte})

	slot := slotAt(14321, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	mc.On("Slots", mock.Anything, 14321).Return([]domain.Slot{slot, slot, slot}, nil).Once()
	mn.On("SendAlert", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, eng.RunCheck(context.Background()))
	mn.AssertNumberOfCalls(t, "SendAlert", 1)
}

func TestRunCheck_CanceledContext(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.RunCheck(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	mc.AssertNotCalled(t, "Slots", mock.Anything, mock.Anything)
}

func TestRunCheck_StoreErrorCountedNotFatal(t *testing.T) {
	t.Parallel()

	ms := &mockStore{}
	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(ms, mc, mn, []domain.Location{charlotte, jfk})

	slot := slotAt(14321, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	mc.On("Slots", mock.Anything, 14321).Return([]domain.Slot{slot}, nil).Once()
	mc.On("Slots", mock.Anything, 5140).Return([]domain.Slot{}, nil).Once()

	ms.On("FilterUnseen", mock.Anything, mock.Anything).Return(nil, errors.New("db gone"))

	require.NoError(t, eng.RunCheck(context.Background()))
	mc.AssertExpectations(t)
	mn.AssertNotCalled(t, "SendAlert", mock.Anything, mock.Anything)
}

func TestRunPrune(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)

	ms := &mockStore{}
	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(ms, mc, mn, []domain.Location{charlotte},
		engine.WithNowFunc(func() time.Time { return now }),
	)

	ms.On("Prune", mock.Anything, now).Return(int64(3), nil).Once()

	require.NoError(t, eng.RunPrune(context.Background()))
	ms.AssertExpectations(t)
}

func TestSendStartupTest(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte})

	mn.On("SendAlert", mock.Anything, mock.MatchedBy(func(a *notify.AlertPayload) bool {
		return a.Test && a.LocationName == charlotte.Name
	})).Return(nil).Once()

	require.NoError(t, eng.SendStartupTest(context.Background()))
	mn.AssertExpectations(t)
}

func TestSendStartupTest_FailureSurfaces(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mn := &mockNotifier{}
	eng := newEngine(store.NewMemoryStore(), mc, mn, []domain.Location{charlotte})

	mn.On("SendAlert", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()

	err := eng.SendStartupTest(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "startup test notification")
}

func TestResolveLocations(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mc.On("Locations", mock.Anything).Return([]domain.Location{charlotte, jfk}, nil).Once()

	locs := engine.ResolveLocations(context.Background(), mc, []int{5140, 99999}, quietLogger())

	require.Len(t, locs, 2)
	assert.Equal(t, "JFK International Global Entry", locs[0].Name)
	assert.Equal(t, 99999, locs[1].ID)
	assert.Equal(t, "location 99999", locs[1].Label())
}

func TestResolveLocations_DirectoryUnavailable(t *testing.T) {
	t.Parallel()

	mc := &mockChecker{}
	mc.On("Locations", mock.Anything).Return(nil, errors.New("503")).Once()

	locs := engine.ResolveLocations(context.Background(), mc, []int{14321}, quietLogger())

	require.Len(t, locs, 1)
	assert.Equal(t, 14321, locs[0].ID)
	assert.Empty(t, locs[0].Name)
}
