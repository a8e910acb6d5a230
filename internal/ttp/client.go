// Package ttp provides a client for the CBP Trusted Traveler Program
// scheduler API, abstracted behind an interface for testability.
package ttp

import (
	"context"

	domain "github.com/globalentry/slot-alerter/pkg/types"
)

// SchedulerClient defines the interface for querying the scheduler API.
type SchedulerClient interface {
	// Slots returns the currently open interview slots for a location
	// within the client's search window. An empty slice means no
	// availability; an error means the check could not complete.
	Slots(ctx context.Context, locationID int) ([]domain.Slot, error)

	// Locations returns the enrollment center directory.
	Locations(ctx context.Context) ([]domain.Location, error)
}
