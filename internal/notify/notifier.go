// Package notify defines the notification interface and implementations
// for slot alert delivery.
package notify

import (
	"context"
)

// AlertPayload contains the data needed to send a slot alert notification.
type AlertPayload struct {
	LocationName string
	LocationID   int
	Date         string // YYYY-MM-DD
	Time         string // HH:MM
	Duration     int    // minutes, 0 when unknown
	Test         bool   // startup test notification
}

// Notifier defines the interface for sending slot alert notifications.
type Notifier interface {
	// SendAlert delivers a single slot alert.
	SendAlert(ctx context.Context, alert *AlertPayload) error

	// SendBatchAlert delivers multiple alerts for one location as a single
	// message, used when a location opens many slots at once.
	SendBatchAlert(ctx context.Context, alerts []AlertPayload, locationName string) error
}
