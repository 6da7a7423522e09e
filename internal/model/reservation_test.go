package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestReservationStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ReservationStatus
		want     bool
	}{
		{ReservationStatusPending, ReservationStatusConfirmed, true},
		{ReservationStatusPending, ReservationStatusCancelled, true},
		{ReservationStatusPending, ReservationStatusCompleted, false},
		{ReservationStatusConfirmed, ReservationStatusCompleted, true},
		{ReservationStatusConfirmed, ReservationStatusPending, false},
		{ReservationStatusConfirmed, ReservationStatusCancelled, false},
		{ReservationStatusCancelled, ReservationStatusPending, false},
		{ReservationStatusCompleted, ReservationStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestReservationStatusFlags(t *testing.T) {
	assert.True(t, ReservationStatusPending.IsActive())
	assert.True(t, ReservationStatusConfirmed.IsActive())
	assert.False(t, ReservationStatusCancelled.IsActive())
	assert.False(t, ReservationStatusCompleted.IsActive())

	assert.True(t, ReservationStatus("COMPLETED").Valid())
	assert.False(t, ReservationStatus("pending").Valid())
	assert.Equal(t, "Confirmed", ReservationStatusConfirmed.Display())
}

func TestReservationOverlapIsHalfOpen(t *testing.T) {
	r := &Reservation{ReservedFrom: day("2025-03-10"), ReservedTo: day("2025-03-15")}

	assert.True(t, r.Overlaps(day("2025-03-12"), day("2025-03-20")))
	assert.True(t, r.Overlaps(day("2025-03-01"), day("2025-03-11")))
	// Общая граничная дата не считается пересечением
	assert.False(t, r.Overlaps(day("2025-03-15"), day("2025-03-20")))
	assert.False(t, r.Overlaps(day("2025-03-01"), day("2025-03-10")))

	assert.Equal(t, 6, r.DurationDays())
	assert.True(t, (&Reservation{Status: ReservationStatusPending}).CanBeCancelled())
	assert.False(t, (&Reservation{Status: ReservationStatusConfirmed}).CanBeCancelled())
}

func TestAvailabilitySlotPredicates(t *testing.T) {
	s := &AvailabilitySlot{StartDate: day("2025-01-01"), EndDate: day("2025-01-31"), IsAvailable: true}

	assert.Equal(t, 31, s.DurationDays())
	assert.True(t, s.Covers(day("2025-01-01"), day("2025-01-31")))
	assert.False(t, s.Covers(day("2024-12-31"), day("2025-01-10")))
	assert.True(t, s.Overlaps(day("2025-01-31"), day("2025-02-05")))
	assert.True(t, s.Overlaps(day("2024-12-01"), day("2025-01-01")))
	assert.False(t, s.Overlaps(day("2025-02-01"), day("2025-02-05")))

	next := &AvailabilitySlot{StartDate: day("2025-02-01"), EndDate: day("2025-02-10")}
	assert.True(t, s.IsAdjacentTo(next))
	assert.True(t, next.IsAdjacentTo(s))
	assert.False(t, s.IsAdjacentTo(&AvailabilitySlot{StartDate: day("2025-02-02"), EndDate: day("2025-02-10")}))
	assert.False(t, s.IsAdjacentTo(nil))
}

func TestAccommodationMinimumStay(t *testing.T) {
	acc := &Accommodation{MinReservationDays: 3, UniversityIDs: []int64{1, 2}}

	assert.False(t, acc.MeetsMinimumStay(day("2025-01-01"), day("2025-01-02")))
	assert.True(t, acc.MeetsMinimumStay(day("2025-01-01"), day("2025-01-03")))
	assert.True(t, acc.ServesUniversity(2))
	assert.False(t, acc.ServesUniversity(3))

	zero := &Accommodation{}
	assert.True(t, zero.MeetsMinimumStay(day("2025-01-01"), day("2025-01-01")))
}
