//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/globalentry/slot-alerter/internal/store"
	domain "github.com/globalentry/slot-alerter/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("slot_alerter_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgresStore_FilterAndMark(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	s1 := slotAt(14321, base)
	s2 := slotAt(14321, base.Add(time.Hour))

	unseen, err := s.FilterUnseen(ctx, []domain.Slot{s1, s2})
	require.NoError(t, err)
	assert.Len(t, unseen, 2)

	require.NoError(t, s.MarkNotified(ctx, []domain.Slot{s1}))

	unseen, err = s.FilterUnseen(ctx, []domain.Slot{s1, s2})
	require.NoError(t, err)
	require.Len(t, unseen, 1)
	assert.Equal(t, s2.Key(), unseen[0].Key())

	// Marking the same slot again is idempotent.
	require.NoError(t, s.MarkNotified(ctx, []domain.Slot{s1}))
}

func TestPostgresStore_Prune(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	cutoff := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	past := slotAt(5140, cutoff.Add(-48*time.Hour))
	future := slotAt(5140, cutoff.Add(48*time.Hour))

	require.NoError(t, s.MarkNotified(ctx, []domain.Slot{past, future}))

	removed, err := s.Prune(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	unseen, err := s.FilterUnseen(ctx, []domain.Slot{past, future})
	require.NoError(t, err)
	require.Len(t, unseen, 1)
	assert.Equal(t, past.Key(), unseen[0].Key())
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	assert.NoError(t, s.Ping(context.Background()))
}
