// Package domain defines the core business types for slot-alerter.
package domain

import (
	"fmt"
	"time"
)

// TimestampLayout is the timestamp format used by the TTP scheduler API.
// The API omits seconds and zone information; timestamps are local to the
// enrollment center.
const TimestampLayout = "2006-01-02T15:04"

// Location is a Global Entry enrollment center in the scheduler system.
// Only the ID matters for polling; the rest is informational and used to
// make notifications readable.
type Location struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Label returns a human-readable identifier for the location, falling back
// to the numeric ID when no name is known.
func (l Location) Label() string {
	if l.Name == "" {
		return fmt.Sprintf("location %d", l.ID)
	}
	return l.Name
}

// Slot is a single bookable interview opening at a location.
type Slot struct {
	LocationID int       `json:"locationId"`
	StartTime  time.Time `json:"startTimestamp"`
	EndTime    time.Time `json:"endTimestamp"`
	Duration   int       `json:"duration"` // minutes
}

// Key returns the slot's dedup identity. Two polls that observe the same
// opening produce the same key, so a slot is alerted at most once while it
// remains recorded in the seen store.
func (s Slot) Key() string {
	return fmt.Sprintf("%d:%s", s.LocationID, s.StartTime.Format(TimestampLayout))
}

// Date returns the slot date formatted for notifications.
func (s Slot) Date() string {
	return s.StartTime.Format("2006-01-02")
}

// Clock returns the slot start time-of-day formatted for notifications.
func (s Slot) Clock() string {
	return s.StartTime.Format("15:04")
}

// Alert records a slot opening that should be (or has been) notified.
type Alert struct {
	ID           string    `json:"id"`
	LocationID   int       `json:"location_id"`
	LocationName string    `json:"location_name"`
	Slot         Slot      `json:"slot"`
	CreatedAt    time.Time `json:"created_at"`
}
