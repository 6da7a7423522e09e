package model

import "time"

const (
	MinRatingScore = 0
	MaxRatingScore = 5
)

type Rating struct {
	ID              int64      `json:"id"`
	AccommodationID int64      `json:"accommodation_id"`
	MemberID        int64      `json:"member_id"`
	ReservationID   int64      `json:"reservation_id"`
	Score           int        `json:"score"`
	Comment         string     `json:"comment"`
	IsApproved      bool       `json:"is_approved"`
	ModeratedBy     *int64     `json:"moderated_by"`
	ModerationDate  *time.Time `json:"moderation_date"`
	ModerationNote  string     `json:"moderation_note"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsModerated reports whether a specialist has reviewed the rating.
func (r *Rating) IsModerated() bool {
	return r.ModeratedBy != nil
}

// RatingStats aggregates the scores of one accommodation.
type RatingStats struct {
	Average *float64 `json:"average_rating"`
	Count   int      `json:"rating_count"`
}
