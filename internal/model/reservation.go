package model

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"   // Ожидает подтверждения
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED" // Подтверждено
	ReservationStatusCancelled ReservationStatus = "CANCELLED" // Отменено
	ReservationStatusCompleted ReservationStatus = "COMPLETED" // Проживание завершено
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusCompleted},
}

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed,
		ReservationStatusCancelled, ReservationStatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether a reservation in this status still blocks its dates.
func (s ReservationStatus) IsActive() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

// CanTransitionTo follows the reservation state machine.
// CANCELLED and COMPLETED are terminal.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Display возвращает название статуса для уведомлений
func (s ReservationStatus) Display() string {
	switch s {
	case ReservationStatusPending:
		return "Pending"
	case ReservationStatusConfirmed:
		return "Confirmed"
	case ReservationStatusCancelled:
		return "Cancelled"
	case ReservationStatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

type Reservation struct {
	ID              int64             `json:"id"`
	AccommodationID int64             `json:"accommodation_id"`
	MemberID        int64             `json:"member_id"`
	ReservedFrom    time.Time         `json:"reserved_from"`
	ReservedTo      time.Time         `json:"reserved_to"`
	ContactName     string            `json:"contact_name"`
	ContactPhone    string            `json:"contact_phone"`
	Status          ReservationStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	// Заполняются сервисом для уведомлений (не из БД)
	Accommodation *Accommodation `json:"-"`
	Member        *Member        `json:"-"`
}

func (r *Reservation) IsCancelled() bool {
	return r.Status == ReservationStatusCancelled
}

// CanBeCancelled applies the strict policy: only PENDING reservations.
func (r *Reservation) CanBeCancelled() bool {
	return r.Status == ReservationStatusPending
}

func (r *Reservation) DurationDays() int {
	return daysBetween(r.ReservedFrom, r.ReservedTo) + 1
}

// Overlaps uses the same half-open test as AvailabilitySlot.Overlaps.
func (r *Reservation) Overlaps(from, to time.Time) bool {
	return r.ReservedFrom.Before(to) && r.ReservedTo.After(from)
}
