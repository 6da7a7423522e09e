package model

import "time"

type ActionType string

const (
	ActionCreateAccommodation     ActionType = "CREATE_ACCOMMODATION"
	ActionDeleteAccommodation     ActionType = "DELETE_ACCOMMODATION"
	ActionMarkUnavailable         ActionType = "MARK_UNAVAILABLE"
	ActionAddAvailability         ActionType = "ADD_AVAILABILITY"
	ActionCreateReservation       ActionType = "CREATE_RESERVATION"
	ActionUpdateReservationStatus ActionType = "UPDATE_RESERVATION_STATUS"
	ActionCancelReservation       ActionType = "CANCEL_RESERVATION"
	ActionCompleteReservation     ActionType = "COMPLETE_RESERVATION"
	ActionCreateRating            ActionType = "CREATE_RATING"
	ActionModerateRating          ActionType = "MODERATE_RATING"
)

// Actor type constants
const (
	ActorSpecialist = "SPECIALIST"
	ActorMember     = "MEMBER"
	ActorSystem     = "SYSTEM"
)

// ActionLog is an audit record; nil ids mean the action had no such subject.
type ActionLog struct {
	ID              int64      `json:"id"`
	ActionType      ActionType `json:"action_type"`
	UserType        string     `json:"user_type"`
	UserID          *int64     `json:"user_id"`
	AccommodationID *int64     `json:"accommodation_id"`
	ReservationID   *int64     `json:"reservation_id"`
	RatingID        *int64     `json:"rating_id"`
	Details         string     `json:"details"`
	CreatedAt       time.Time  `json:"created_at"`
}
