package engine

import (
	domain "github.com/globalentry/slot-alerter/pkg/types"
)

// Dedupe collapses slots with duplicate keys, preserving first-occurrence
// order. The scheduler API occasionally repeats a slot within one response.
func Dedupe(slots []domain.Slot) []domain.Slot {
	if len(slots) < 2 {
		return slots
	}

	seen := make(map[string]struct{}, len(slots))
	out := slots[:0:0]

	for _, s := range slots {
		key := s.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	return out
}

// Diff returns the slots in current whose keys are absent from seen,
// preserving order. This is the pure change-detection step; the store
// variants of it add persistence.
func Diff(current []domain.Slot, seen map[string]struct{}) []domain.Slot {
	out := make([]domain.Slot, 0, len(current))
	for _, s := range current {
		if _, ok := seen[s.Key()]; !ok {
			out = append(out, s)
		}
	}
	return out
}
