package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/globalentry/slot-alerter/internal/engine"
	domain "github.com/globalentry/slot-alerter/pkg/types"
)

func TestDedupe(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	a := slotAt(14321, base)
	b := slotAt(14321, base.Add(time.Hour))
	c := slotAt(5140, base) // same time, different location

	tests := []struct {
		name string
		in   []domain.Slot
		want []string
	}{
		{name: "nil", in: nil, want: []string{}},
		{name: "single", in: []domain.Slot{a}, want: []string{a.Key()}},
		{name: "no duplicates", in: []domain.Slot{a, b}, want: []string{a.Key(), b.Key()}},
		{
			name: "duplicates collapsed preserving order",
			in:   []domain.Slot{b, a, b, a, b},
			want: []string{b.Key(), a.Key()},
		},
		{
			name: "same time different location kept",
			in:   []domain.Slot{a, c},
			want: []string{a.Key(), c.Key()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := engine.Dedupe(tt.in)
			keys := make([]string, 0, len(got))
			for _, s := range got {
				keys = append(keys, s.Key())
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	a := slotAt(14321, base)
	b := slotAt(14321, base.Add(time.Hour))

	seen := map[string]struct{}{a.Key(): {}}

	got := engine.Diff([]domain.Slot{a, b}, seen)
	assert.Len(t, got, 1)
	assert.Equal(t, b.Key(), got[0].Key())

	// Nothing seen: everything is new.
	got = engine.Diff([]domain.Slot{a, b}, map[string]struct{}{})
	assert.Len(t, got, 2)

	// Everything seen: nothing is new.
	seen[b.Key()] = struct{}{}
	assert.Empty(t, engine.Diff([]domain.Slot{a, b}, seen))
}
