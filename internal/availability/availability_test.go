package availability

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSlots держит слоты одного жилья в памяти
type fakeSlots struct {
	slots  map[int64]*model.AvailabilitySlot
	nextID int64
	flags  map[int64]bool
}

func newFakeSlots() *fakeSlots {
	return &fakeSlots{slots: map[int64]*model.AvailabilitySlot{}, flags: map[int64]bool{}}
}

func (f *fakeSlots) ListAvailable(_ context.Context, accommodationID int64) ([]*model.AvailabilitySlot, error) {
	var out []*model.AvailabilitySlot
	for _, s := range f.slots {
		if s.AccommodationID == accommodationID && s.IsAvailable {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

func (f *fakeSlots) FindCovering(ctx context.Context, accommodationID int64, from, to time.Time) (*model.AvailabilitySlot, error) {
	slots, _ := f.ListAvailable(ctx, accommodationID)
	for _, s := range slots {
		if s.Covers(from, to) {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSlots) AnyAvailable(ctx context.Context, accommodationID int64) (bool, error) {
	slots, _ := f.ListAvailable(ctx, accommodationID)
	return len(slots) > 0, nil
}

func (f *fakeSlots) Create(_ context.Context, slot *model.AvailabilitySlot) error {
	f.nextID++
	slot.ID = f.nextID
	cp := *slot
	f.slots[slot.ID] = &cp
	return nil
}

func (f *fakeSlots) Update(_ context.Context, slot *model.AvailabilitySlot) error {
	cp := *slot
	f.slots[slot.ID] = &cp
	return nil
}

func (f *fakeSlots) Delete(_ context.Context, id int64) error {
	delete(f.slots, id)
	return nil
}

func (f *fakeSlots) SetAvailability(_ context.Context, accommodationID int64, available bool) error {
	f.flags[accommodationID] = available
	return nil
}

func d(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := ParseDate(s)
	require.NoError(t, err)
	return v
}

func ranges(t *testing.T, f *fakeSlots, accommodationID int64) []string {
	t.Helper()
	slots, err := f.ListAvailable(context.Background(), accommodationID)
	require.NoError(t, err)
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, FormatDate(s.StartDate)+".."+FormatDate(s.EndDate))
	}
	return out
}

func TestSplit(t *testing.T) {
	slot := &model.AvailabilitySlot{ID: 7, AccommodationID: 1, StartDate: d(t, "2025-01-01"), EndDate: d(t, "2025-01-31"), IsAvailable: true}

	t.Run("middle", func(t *testing.T) {
		before, after, err := Split(slot, d(t, "2025-01-10"), d(t, "2025-01-15"))
		require.NoError(t, err)
		require.NotNil(t, before)
		require.NotNil(t, after)
		assert.Equal(t, d(t, "2025-01-01"), before.StartDate)
		assert.Equal(t, d(t, "2025-01-09"), before.EndDate)
		assert.Equal(t, d(t, "2025-01-16"), after.StartDate)
		assert.Equal(t, d(t, "2025-01-31"), after.EndDate)
		assert.True(t, before.IsAvailable && after.IsAvailable)
	})

	t.Run("prefix leaves no before", func(t *testing.T) {
		before, after, err := Split(slot, d(t, "2025-01-01"), d(t, "2025-01-05"))
		require.NoError(t, err)
		assert.Nil(t, before)
		require.NotNil(t, after)
		assert.Equal(t, d(t, "2025-01-06"), after.StartDate)
	})

	t.Run("whole slot", func(t *testing.T) {
		before, after, err := Split(slot, d(t, "2025-01-01"), d(t, "2025-01-31"))
		require.NoError(t, err)
		assert.Nil(t, before)
		assert.Nil(t, after)
	})

	t.Run("errors", func(t *testing.T) {
		_, _, err := Split(slot, d(t, "2025-01-10"), d(t, "2025-01-05"))
		assert.ErrorIs(t, err, ErrInvalidRange)

		_, _, err = Split(slot, d(t, "2024-12-30"), d(t, "2025-01-05"))
		assert.ErrorIs(t, err, ErrSlotNotCovering)

		unavailable := *slot
		unavailable.IsAvailable = false
		_, _, err = Split(&unavailable, d(t, "2025-01-10"), d(t, "2025-01-15"))
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	})

	assert.Equal(t, d(t, "2025-01-01"), slot.StartDate, "original slot must not change")
	assert.Equal(t, d(t, "2025-01-31"), slot.EndDate)
}

func TestConsumeThenReleaseRestoresSlot(t *testing.T) {
	ctx := context.Background()
	f := newFakeSlots()

	slot := &model.AvailabilitySlot{AccommodationID: 1, StartDate: d(t, "2025-01-01"), EndDate: d(t, "2025-01-31"), IsAvailable: true}
	require.NoError(t, f.Create(ctx, slot))

	_, _, err := Consume(ctx, f, slot, d(t, "2025-01-10"), d(t, "2025-01-15"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01..2025-01-09", "2025-01-16..2025-01-31"}, ranges(t, f, 1))

	_, err = Release(ctx, f, 1, d(t, "2025-01-10"), d(t, "2025-01-15"))
	require.NoError(t, err)

	merged, err := MergeAdjacent(ctx, f, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, merged)
	assert.Equal(t, []string{"2025-01-01..2025-01-31"}, ranges(t, f, 1))
}

func TestMergeAdjacentLeavesGapsAndOverlaps(t *testing.T) {
	ctx := context.Background()
	f := newFakeSlots()

	for _, r := range [][2]string{
		{"2025-01-01", "2025-01-05"},
		{"2025-01-06", "2025-01-10"},
		{"2025-01-12", "2025-01-15"},
		{"2025-01-14", "2025-01-20"},
	} {
		require.NoError(t, f.Create(ctx, &model.AvailabilitySlot{
			AccommodationID: 1, StartDate: d(t, r[0]), EndDate: d(t, r[1]), IsAvailable: true,
		}))
	}
	require.NoError(t, f.Create(ctx, &model.AvailabilitySlot{
		AccommodationID: 2, StartDate: d(t, "2025-01-11"), EndDate: d(t, "2025-01-11"), IsAvailable: true,
	}))

	merged, err := MergeAdjacent(ctx, f, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, merged)
	assert.Equal(t, []string{
		"2025-01-01..2025-01-10",
		"2025-01-12..2025-01-15",
		"2025-01-14..2025-01-20",
	}, ranges(t, f, 1))
	assert.Equal(t, []string{"2025-01-11..2025-01-11"}, ranges(t, f, 2))
}

func TestCheckNoOverlapIsInclusive(t *testing.T) {
	ctx := context.Background()
	f := newFakeSlots()
	require.NoError(t, f.Create(ctx, &model.AvailabilitySlot{
		AccommodationID: 1, StartDate: d(t, "2025-01-10"), EndDate: d(t, "2025-01-20"), IsAvailable: true,
	}))

	assert.ErrorIs(t, CheckNoOverlap(ctx, f, 1, d(t, "2025-01-20"), d(t, "2025-01-25")), ErrSlotOverlap)
	assert.NoError(t, CheckNoOverlap(ctx, f, 1, d(t, "2025-01-21"), d(t, "2025-01-25")))
	assert.NoError(t, CheckNoOverlap(ctx, f, 2, d(t, "2025-01-10"), d(t, "2025-01-20")))
}

func TestUpdateAvailabilityWritesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	f := newFakeSlots()
	acc := &model.Accommodation{ID: 1}

	changed, err := UpdateAvailability(ctx, f, f, acc)
	require.NoError(t, err)
	assert.False(t, changed)
	_, written := f.flags[1]
	assert.False(t, written)

	require.NoError(t, f.Create(ctx, &model.AvailabilitySlot{
		AccommodationID: 1, StartDate: d(t, "2025-01-10"), EndDate: d(t, "2025-01-20"), IsAvailable: true,
	}))

	changed, err = UpdateAvailability(ctx, f, f, acc)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, acc.IsAvailable)
	assert.True(t, f.flags[1])
}

func TestUpdateAvailabilityStates(t *testing.T) {
	type span struct {
		from, to  string
		available bool
	}

	tests := []struct {
		name    string
		slots   []span
		initial bool
		want    bool
		changed bool
	}{
		{name: "no slots", initial: true, want: false, changed: true},
		{
			name: "all unavailable",
			slots: []span{
				{"2025-01-01", "2025-01-10", false},
				{"2025-02-01", "2025-02-10", false},
			},
			initial: true,
			want:    false,
			changed: true,
		},
		{
			name: "mixed",
			slots: []span{
				{"2025-01-01", "2025-01-10", false},
				{"2025-02-01", "2025-02-10", true},
			},
			initial: false,
			want:    true,
			changed: true,
		},
		{
			name:    "mixed already available",
			slots:   []span{{"2025-01-01", "2025-01-10", false}, {"2025-03-01", "2025-03-05", true}},
			initial: true,
			want:    true,
			changed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFakeSlots()
			for _, sp := range tt.slots {
				require.NoError(t, f.Create(ctx, &model.AvailabilitySlot{
					AccommodationID: 1, StartDate: d(t, sp.from), EndDate: d(t, sp.to), IsAvailable: sp.available,
				}))
			}
			acc := &model.Accommodation{ID: 1, IsAvailable: tt.initial}

			changed, err := UpdateAvailability(ctx, f, f, acc)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, acc.IsAvailable)

			flag, written := f.flags[1]
			assert.Equal(t, tt.changed, written)
			if written {
				assert.Equal(t, tt.want, flag)
			}
		})
	}
}

func TestIsAvailableForDates(t *testing.T) {
	ctx := context.Background()
	f := newFakeSlots()
	acc := &model.Accommodation{ID: 1, MinReservationDays: 3}
	require.NoError(t, f.Create(ctx, &model.AvailabilitySlot{
		AccommodationID: 1, StartDate: d(t, "2025-01-10"), EndDate: d(t, "2025-01-20"), IsAvailable: true,
	}))

	ok, err := IsAvailableForDates(ctx, f, acc, d(t, "2025-01-10"), d(t, "2025-01-12"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsAvailableForDates(ctx, f, acc, d(t, "2025-01-10"), d(t, "2025-01-11"))
	require.NoError(t, err)
	assert.False(t, ok, "below minimum stay")

	ok, err = IsAvailableForDates(ctx, f, acc, d(t, "2025-01-18"), d(t, "2025-01-22"))
	require.NoError(t, err)
	assert.False(t, ok, "not covered")
}
