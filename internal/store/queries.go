package store

const (
	querySeenKeys = `
		SELECT slot_key
		FROM notified_slots
		WHERE slot_key = ANY($1)
	`

	queryInsertNotifiedSlot = `
		INSERT INTO notified_slots (id, slot_key, location_id, slot_start, notified_at)
		VALUES (@id, @slot_key, @location_id, @slot_start, @notified_at)
		ON CONFLICT (slot_key) DO NOTHING
	`

	queryPruneNotifiedSlots = `
		DELETE FROM notified_slots
		WHERE slot_start < $1
	`
)
