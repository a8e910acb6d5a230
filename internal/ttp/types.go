package ttp

import (
	"time"

	domain "github.com/globalentry/slot-alerter/pkg/types"
)

// apiSlot is the scheduler API wire format for an open slot.
type apiSlot struct {
	LocationID     int    `json:"locationId"`
	StartTimestamp string `json:"startTimestamp"`
	EndTimestamp   string `json:"endTimestamp"`
	Duration       int    `json:"duration"`
}

// apiLocation is the scheduler API wire format for an enrollment center.
type apiLocation struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

// toSlots converts wire slots to domain slots. Entries with unparseable
// timestamps are dropped; the API occasionally returns placeholder rows.
func toSlots(in []apiSlot, locationID int) []domain.Slot {
	out := make([]domain.Slot, 0, len(in))

	for _, s := range in {
		start, err := time.Parse(domain.TimestampLayout, s.StartTimestamp)
		if err != nil {
			continue
		}

		slot := domain.Slot{
			LocationID: locationID,
			StartTime:  start,
			Duration:   s.Duration,
		}

		if end, err := time.Parse(domain.TimestampLayout, s.EndTimestamp); err == nil {
			slot.EndTime = end
		}

		out = append(out, slot)
	}

	return out
}

func toLocations(in []apiLocation) []domain.Location {
	out := make([]domain.Location, 0, len(in))
	for _, l := range in {
		out = append(out, domain.Location{
			ID:         l.ID,
			Name:       l.Name,
			Address:    l.Address,
			City:       l.City,
			State:      l.State,
			PostalCode: l.PostalCode,
		})
	}
	return out
}
