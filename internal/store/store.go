// Package store defines the seen-slot store abstraction. The engine depends
// on the Store interface, never on concrete implementations, so change
// detection can be tested without a running database.
//
// A slot is "seen" once a notification for it has been delivered. Seen slots
// are never re-alerted while they remain recorded; a slot that disappears
// from the API and later reappears is only treated as new after its record
// has been pruned.
package store

import (
	"context"
	"time"

	domain "github.com/globalentry/slot-alerter/pkg/types"
)

// Store defines all seen-state operations for slot-alerter.
type Store interface {
	// FilterUnseen returns the subset of slots that have not yet been
	// notified, preserving input order.
	FilterUnseen(ctx context.Context, slots []domain.Slot) ([]domain.Slot, error)

	// MarkNotified records slots as notified. Called only after a
	// successful send so that failed deliveries retry next cycle.
	MarkNotified(ctx context.Context, slots []domain.Slot) error

	// Prune removes records whose slot start time is before the cutoff.
	// Past slots can never be offered again, so this bounds growth.
	// Returns the number of records removed.
	Prune(ctx context.Context, before time.Time) (int64, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close()
}
