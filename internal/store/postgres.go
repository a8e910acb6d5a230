package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/globalentry/slot-alerter/pkg/types"
)

// PostgresStore implements Store using pgxpool. It makes seen state durable,
// so a restart does not re-alert slots that were already notified.
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// FilterUnseen returns the slots whose keys are not yet recorded.
func (s *PostgresStore) FilterUnseen(ctx context.Context, slots []domain.Slot) ([]domain.Slot, error) {
	if len(slots) == 0 {
		return nil, nil
	}

	keys := make([]string, len(slots))
	for i, sl := range slots {
		keys[i] = sl.Key()
	}

	rows, err := s.pool.Query(ctx, querySeenKeys, keys)
	if err != nil {
		return nil, fmt.Errorf("querying seen keys: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{}, len(keys))
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning seen key: %w", err)
		}
		seen[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating seen keys: %w", err)
	}

	unseen := make([]domain.Slot, 0, len(slots))
	for _, sl := range slots {
		if _, ok := seen[sl.Key()]; !ok {
			unseen = append(unseen, sl)
		}
	}
	return unseen, nil
}

// MarkNotified records the slots as notified. Conflicting keys are ignored
// so marking is idempotent across overlapping cycles.
func (s *PostgresStore) MarkNotified(ctx context.Context, slots []domain.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, sl := range slots {
		batch.Queue(queryInsertNotifiedSlot, pgx.NamedArgs{
			"id":          uuid.NewString(),
			"slot_key":    sl.Key(),
			"location_id": sl.LocationID,
			"slot_start":  sl.StartTime,
			"notified_at": time.Now().UTC(),
		})
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range slots {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("inserting notified slot: %w", err)
		}
	}
	return nil
}

// Prune deletes records for slots that started before the cutoff.
func (s *PostgresStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, queryPruneNotifiedSlots, before)
	if err != nil {
		return 0, fmt.Errorf("pruning notified slots: %w", err)
	}
	return tag.RowsAffected(), nil
}
