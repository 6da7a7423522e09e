package model

import (
	"time"

	"github.com/google/uuid"
)

// University authenticates API calls with its Token.
type University struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Address   string    `json:"address"`
	Token     uuid.UUID `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Campus is used as the reference point for distance ranking.
type Campus struct {
	ID           int64     `json:"id"`
	UniversityID int64     `json:"university_id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
}
