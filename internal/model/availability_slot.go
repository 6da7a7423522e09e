package model

import "time"

// AvailabilitySlot is an inclusive date range of an accommodation.
// Dates are UTC midnights; both ends belong to the slot.
type AvailabilitySlot struct {
	ID              int64     `json:"id"`
	AccommodationID int64     `json:"accommodation_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	IsAvailable     bool      `json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DurationDays counts both ends, so a one-day slot has duration 1.
func (s *AvailabilitySlot) DurationDays() int {
	return daysBetween(s.StartDate, s.EndDate) + 1
}

// Covers reports whether [from, to] lies entirely inside the slot.
func (s *AvailabilitySlot) Covers(from, to time.Time) bool {
	return !s.StartDate.After(from) && !s.EndDate.Before(to)
}

// Overlaps reports whether the slot and the inclusive range [from, to] share a day.
func (s *AvailabilitySlot) Overlaps(from, to time.Time) bool {
	return !s.StartDate.After(to) && !s.EndDate.Before(from)
}

// IsAdjacentTo reports whether one slot ends exactly one day before the other starts.
func (s *AvailabilitySlot) IsAdjacentTo(other *AvailabilitySlot) bool {
	if other == nil {
		return false
	}
	return s.EndDate.AddDate(0, 0, 1).Equal(other.StartDate) ||
		other.EndDate.AddDate(0, 0, 1).Equal(s.StartDate)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
