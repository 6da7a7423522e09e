package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/unihaven/internal/availability"
	"github.com/Freeeeeet/unihaven/internal/model"
)

// Getters return (nil, nil) when the row does not exist.

type AccommodationStore interface {
	Create(ctx context.Context, acc *model.Accommodation) error
	GetByID(ctx context.Context, id int64) (*model.Accommodation, error)
	// LockByID loads the accommodation and holds a row lock until the transaction ends.
	LockByID(ctx context.Context, id int64) (*model.Accommodation, error)
	SetUniversities(ctx context.Context, accommodationID int64, universityIDs []int64) error
	SetAvailability(ctx context.Context, accommodationID int64, available bool) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, filter AccommodationFilter) ([]*model.Accommodation, error)
	UpsertOwner(ctx context.Context, owner *model.Owner) error
}

type SlotStore interface {
	availability.SlotStore
	ListByAccommodation(ctx context.Context, accommodationID int64) ([]*model.AvailabilitySlot, error)
	MarkAllUnavailable(ctx context.Context, accommodationID int64) (int64, error)
}

type ReservationStore interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status model.ReservationStatus) error
	// HasActiveOverlap checks PENDING/CONFIRMED reservations with the half-open overlap test.
	HasActiveOverlap(ctx context.Context, accommodationID int64, from, to time.Time) (bool, error)
	HasActive(ctx context.Context, accommodationID int64) (bool, error)
	ListByMember(ctx context.Context, memberID int64) ([]*model.Reservation, error)
	// ListForUniversity returns reservations made by the university's members for
	// accommodations linked to the same university.
	ListForUniversity(ctx context.Context, universityID int64) ([]*model.Reservation, error)
	ListConfirmedEndingBefore(ctx context.Context, day time.Time) ([]*model.Reservation, error)
}

type MemberStore interface {
	GetMember(ctx context.Context, id int64) (*model.Member, error)
	GetSpecialist(ctx context.Context, id int64) (*model.Specialist, error)
	ListSpecialistsByUniversity(ctx context.Context, universityID int64) ([]*model.Specialist, error)
}

type UniversityStore interface {
	GetByID(ctx context.Context, id int64) (*model.University, error)
	GetByToken(ctx context.Context, token string) (*model.University, error)
	GetCampus(ctx context.Context, id int64) (*model.Campus, error)
}

type RatingStore interface {
	Create(ctx context.Context, rating *model.Rating) error
	GetByID(ctx context.Context, id int64) (*model.Rating, error)
	ExistsForReservation(ctx context.Context, reservationID int64) (bool, error)
	UpdateModeration(ctx context.Context, rating *model.Rating) error
	ListPending(ctx context.Context, limit, offset int) ([]*model.Rating, error)
	ListByAccommodation(ctx context.Context, accommodationID *int64) ([]*model.Rating, error)
	Stats(ctx context.Context, accommodationID int64) (*model.RatingStats, error)
}

type ActionLogStore interface {
	Create(ctx context.Context, entry *model.ActionLog) error
	List(ctx context.Context, filter ActionLogFilter, limit, offset int) ([]*model.ActionLog, error)
}

// Repositories groups the stores bound to one connection or transaction.
type Repositories interface {
	Accommodations() AccommodationStore
	Slots() SlotStore
	Reservations() ReservationStore
	Members() MemberStore
	Universities() UniversityStore
	Ratings() RatingStore
	ActionLogs() ActionLogStore
}

// Store is the unit of work: outside WithinTx every call autocommits.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// AccommodationFilter narrows Search. Zero values mean "no filter".
type AccommodationFilter struct {
	UniversityID  int64
	OnlyAvailable bool
	Type          model.AccommodationType
	MinBeds       int
	MinBedrooms   int
	MinRent       *int64
	MaxRent       *int64
	OrderBy       string // "", "price_asc", "price_desc"
}

type ActionLogFilter struct {
	ActionType      model.ActionType
	UserType        string
	UserID          *int64
	AccommodationID *int64
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
