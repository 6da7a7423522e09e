package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/unihaven/internal/availability"
	"github.com/Freeeeeet/unihaven/internal/geo"
	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type AccommodationService struct {
	store    repository.Store
	geocoder geo.Resolver
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAccommodationService(store repository.Store, geocoder geo.Resolver, logger *zap.Logger) *AccommodationService {
	return &AccommodationService{
		store:    store,
		geocoder: geocoder,
		validate: validator.New(),
		logger:   logger,
	}
}

type OwnerInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=20"`
	Address string `json:"address"`
}

type CreateAccommodationInput struct {
	Name               string                  `json:"name" validate:"required,max=100"`
	BuildingName       string                  `json:"building_name" validate:"required,max=100"`
	Description        string                  `json:"description"`
	Type               model.AccommodationType `json:"type" validate:"required,oneof=APARTMENT HOUSE SHARED STUDIO"`
	RoomNumber         string                  `json:"room_number" validate:"max=20"`
	FlatNumber         string                  `json:"flat_number" validate:"max=20"`
	FloorNumber        string                  `json:"floor_number" validate:"max=20"`
	NumBedrooms        int                     `json:"num_bedrooms" validate:"gte=0"`
	NumBeds            int                     `json:"num_beds" validate:"gte=1"`
	Address            string                  `json:"address" validate:"required"`
	GeoAddress         string                  `json:"geo_address"`
	Latitude           *float64                `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude          *float64                `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	AvailableFrom      string                  `json:"available_from" validate:"omitempty,datetime=2006-01-02"`
	AvailableTo        string                  `json:"available_to" validate:"omitempty,datetime=2006-01-02"`
	MonthlyRent        int64                   `json:"monthly_rent" validate:"gte=0"`
	MinReservationDays int                     `json:"min_reservation_days" validate:"omitempty,gte=1"`
	Owner              OwnerInput              `json:"owner_details"`
	UniversityIDs      []int64                 `json:"university_ids" validate:"required,min=1"`
	SpecialistID       *int64                  `json:"specialist_id"`
}

// Create registers an accommodation. Missing coordinates are resolved from the
// building name before any write happens.
func (s *AccommodationService) Create(ctx context.Context, in CreateAccommodationInput) (*model.Accommodation, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	acc := &model.Accommodation{
		Name:               in.Name,
		BuildingName:       in.BuildingName,
		Description:        in.Description,
		Type:               in.Type,
		RoomNumber:         in.RoomNumber,
		FlatNumber:         in.FlatNumber,
		FloorNumber:        in.FloorNumber,
		NumBedrooms:        in.NumBedrooms,
		NumBeds:            in.NumBeds,
		Address:            in.Address,
		GeoAddress:         in.GeoAddress,
		MonthlyRent:        in.MonthlyRent,
		MinReservationDays: in.MinReservationDays,
		OwnerEmail:         in.Owner.Email,
	}
	if acc.MinReservationDays == 0 {
		acc.MinReservationDays = 1
	}

	if in.AvailableFrom != "" || in.AvailableTo != "" {
		if in.AvailableFrom == "" || in.AvailableTo == "" {
			return nil, validationf("available_from and available_to must be given together")
		}
		from, to, err := parseDateRange(in.AvailableFrom, in.AvailableTo, "available_from", "available_to")
		if err != nil {
			return nil, err
		}
		acc.AvailableFrom = &from
		acc.AvailableTo = &to
	}

	if in.Latitude != nil && in.Longitude != nil && in.GeoAddress != "" {
		acc.Latitude = *in.Latitude
		acc.Longitude = *in.Longitude
	} else {
		loc, err := s.geocode(ctx, in.BuildingName)
		if err != nil {
			return nil, err
		}
		acc.Latitude = loc.Latitude
		acc.Longitude = loc.Longitude
		acc.GeoAddress = loc.GeoAddress
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for _, id := range in.UniversityIDs {
			u, err := repos.Universities().GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("get university: %w", err)
			}
			if u == nil {
				return validationf("university %d not found", id)
			}
		}

		owner := &model.Owner{
			Email:   in.Owner.Email,
			Name:    in.Owner.Name,
			Phone:   in.Owner.Phone,
			Address: in.Owner.Address,
		}
		if err := repos.Accommodations().UpsertOwner(ctx, owner); err != nil {
			return fmt.Errorf("upsert owner: %w", err)
		}

		if err := repos.Accommodations().Create(ctx, acc); err != nil {
			return fmt.Errorf("create accommodation: %w", err)
		}
		if err := repos.Accommodations().SetUniversities(ctx, acc.ID, in.UniversityIDs); err != nil {
			return fmt.Errorf("link universities: %w", err)
		}

		if acc.AvailableFrom != nil {
			if _, err := availability.Release(ctx, repos.Slots(), acc.ID, *acc.AvailableFrom, *acc.AvailableTo); err != nil {
				return fmt.Errorf("create initial slot: %w", err)
			}
		}

		if _, err := availability.UpdateAvailability(ctx, repos.Slots(), repos.Accommodations(), acc); err != nil {
			return err
		}

		userType := model.ActorSystem
		if in.SpecialistID != nil {
			userType = model.ActorSpecialist
		}
		return logAction(ctx, repos, &model.ActionLog{
			ActionType:      model.ActionCreateAccommodation,
			UserType:        userType,
			UserID:          in.SpecialistID,
			AccommodationID: int64Ptr(acc.ID),
			Details:         fmt.Sprintf("Created accommodation '%s' with universities %v", acc.Name, in.UniversityIDs),
		})
	})
	if err != nil {
		return nil, err
	}

	created, err := s.store.Accommodations().GetByID(ctx, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("get accommodation: %w", err)
	}

	s.logger.Info("Accommodation created",
		zap.Int64("accommodation_id", created.ID),
		zap.String("name", created.Name),
		zap.Int64s("university_ids", created.UniversityIDs),
		zap.Bool("is_available", created.IsAvailable),
	)

	return created, nil
}

func (s *AccommodationService) geocode(ctx context.Context, building string) (*geo.Location, error) {
	if s.geocoder == nil {
		return nil, validationf("latitude, longitude and geo_address are required")
	}

	loc, err := s.geocoder.Lookup(ctx, building)
	if err != nil {
		s.logger.Error("Failed to get location data", zap.String("building", building), zap.Error(err))
		return nil, validationf("failed to get location data: %v", err)
	}
	if loc == nil {
		return nil, validationf("no address found for this building name")
	}
	return loc, nil
}

// AddAvailability opens [start, end] for reservations and merges it with its
// neighbours. The returned slot contains the new range.
func (s *AccommodationService) AddAvailability(ctx context.Context, caller Caller, id int64, startRaw, endRaw string, specialistID *int64) (*model.AvailabilitySlot, error) {
	start, end, err := parseDateRange(startRaw, endRaw, "start_date", "end_date")
	if err != nil {
		return nil, err
	}

	var result *model.AvailabilitySlot

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		acc, err := visibleAccommodation(ctx, repos, caller, id, true)
		if err != nil {
			return err
		}

		if err := availability.CheckNoOverlap(ctx, repos.Slots(), acc.ID, start, end); err != nil {
			if errors.Is(err, availability.ErrSlotOverlap) {
				return conflictf("the range overlaps an existing available slot")
			}
			return err
		}

		// Widening by a day turns the half-open reservation test into an inclusive one.
		reserved, err := repos.Reservations().HasActiveOverlap(ctx, acc.ID, availability.AddDays(start, -1), availability.AddDays(end, 1))
		if err != nil {
			return fmt.Errorf("check overlapping reservations: %w", err)
		}
		if reserved {
			return conflictf("the range overlaps an active reservation")
		}

		if _, err := availability.Release(ctx, repos.Slots(), acc.ID, start, end); err != nil {
			return fmt.Errorf("create slot: %w", err)
		}
		if _, err := availability.MergeAdjacent(ctx, repos.Slots(), acc.ID); err != nil {
			return fmt.Errorf("merge slots: %w", err)
		}

		result, err = repos.Slots().FindCovering(ctx, acc.ID, start, end)
		if err != nil {
			return fmt.Errorf("find slot: %w", err)
		}

		if _, err := availability.UpdateAvailability(ctx, repos.Slots(), repos.Accommodations(), acc); err != nil {
			return err
		}

		userType, userID, err := specialistActor(ctx, repos, specialistID)
		if err != nil {
			return err
		}
		return logAction(ctx, repos, &model.ActionLog{
			ActionType:      model.ActionAddAvailability,
			UserType:        userType,
			UserID:          userID,
			AccommodationID: int64Ptr(acc.ID),
			Details: fmt.Sprintf("Added availability %s to %s for '%s'",
				availability.FormatDate(start), availability.FormatDate(end), acc.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Availability added",
		zap.Int64("accommodation_id", id),
		zap.String("start", availability.FormatDate(start)),
		zap.String("end", availability.FormatDate(end)),
		zap.Int64("slot_id", result.ID),
	)

	return result, nil
}

// MarkUnavailable closes every available slot of the accommodation.
func (s *AccommodationService) MarkUnavailable(ctx context.Context, caller Caller, id int64, specialistID *int64) (*model.Accommodation, error) {
	var (
		acc    *model.Accommodation
		closed int64
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		acc, err = visibleAccommodation(ctx, repos, caller, id, true)
		if err != nil {
			return err
		}

		closed, err = repos.Slots().MarkAllUnavailable(ctx, acc.ID)
		if err != nil {
			return fmt.Errorf("mark slots unavailable: %w", err)
		}

		if _, err := availability.UpdateAvailability(ctx, repos.Slots(), repos.Accommodations(), acc); err != nil {
			return err
		}

		userType, userID, err := specialistActor(ctx, repos, specialistID)
		if err != nil {
			return err
		}
		return logAction(ctx, repos, &model.ActionLog{
			ActionType:      model.ActionMarkUnavailable,
			UserType:        userType,
			UserID:          userID,
			AccommodationID: int64Ptr(acc.ID),
			Details:         fmt.Sprintf("Marked accommodation '%s' as unavailable", acc.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Accommodation marked unavailable",
		zap.Int64("accommodation_id", acc.ID),
		zap.Int64("closed_slots", closed),
	)

	return acc, nil
}

// Delete removes an accommodation without active reservations. Slots go with it.
func (s *AccommodationService) Delete(ctx context.Context, caller Caller, id int64, specialistID *int64) (string, error) {
	var name string

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		acc, err := visibleAccommodation(ctx, repos, caller, id, true)
		if err != nil {
			return err
		}
		name = acc.Name

		active, err := repos.Reservations().HasActive(ctx, acc.ID)
		if err != nil {
			return fmt.Errorf("check active reservations: %w", err)
		}
		if active {
			return conflictf("cannot delete accommodation with active reservations")
		}

		if err := repos.Accommodations().Delete(ctx, acc.ID); err != nil {
			return fmt.Errorf("delete accommodation: %w", err)
		}

		userType, userID, err := specialistActor(ctx, repos, specialistID)
		if err != nil {
			return err
		}
		return logAction(ctx, repos, &model.ActionLog{
			ActionType: model.ActionDeleteAccommodation,
			UserType:   userType,
			UserID:     userID,
			Details:    fmt.Sprintf("Deleted accommodation '%s'", name),
		})
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Accommodation deleted", zap.Int64("accommodation_id", id), zap.String("name", name))

	return name, nil
}

// Get returns an accommodation linked to the caller's university.
func (s *AccommodationService) Get(ctx context.Context, caller Caller, id int64) (*model.Accommodation, error) {
	return visibleAccommodation(ctx, s.store, caller, id, false)
}

// ListSlots returns every slot of the accommodation, available or not.
func (s *AccommodationService) ListSlots(ctx context.Context, caller Caller, id int64) ([]*model.AvailabilitySlot, error) {
	acc, err := visibleAccommodation(ctx, s.store, caller, id, false)
	if err != nil {
		return nil, err
	}

	slots, err := s.store.Slots().ListByAccommodation(ctx, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("get slots: %w", err)
	}
	return slots, nil
}

type SearchQuery struct {
	Type          string
	AvailableFrom string
	AvailableTo   string
	MinBeds       int
	MinBedrooms   int
	MinPrice      *int64
	MaxPrice      *int64
	CampusID      *int64
	SortBy        string
}

// SearchResult is an accommodation with its distance to the requested campus.
type SearchResult struct {
	*model.Accommodation
	Distance *float64 `json:"distance,omitempty"`
}

// Search lists available accommodations of the caller's university. With both
// dates given only accommodations bookable for that range remain. Price sorting
// takes precedence over distance ranking.
func (s *AccommodationService) Search(ctx context.Context, caller Caller, q SearchQuery) ([]SearchResult, error) {
	filter := repository.AccommodationFilter{
		UniversityID:  caller.UniversityID,
		OnlyAvailable: true,
		MinBeds:       q.MinBeds,
		MinBedrooms:   q.MinBedrooms,
		MinRent:       q.MinPrice,
		MaxRent:       q.MaxPrice,
	}

	if q.Type != "" {
		t := model.AccommodationType(strings.ToUpper(q.Type))
		if !t.Valid() {
			return nil, validationf("unknown accommodation type %q", q.Type)
		}
		filter.Type = t
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "distance"
	}
	switch sortBy {
	case "price_asc", "price_desc":
		filter.OrderBy = sortBy
	case "distance":
	default:
		return nil, validationf("sort_by must be one of distance, price_asc, price_desc")
	}

	var campus *model.Campus
	if sortBy == "distance" && q.CampusID != nil {
		c, err := s.store.Universities().GetCampus(ctx, *q.CampusID)
		if err != nil {
			return nil, fmt.Errorf("get campus: %w", err)
		}
		if c == nil || c.UniversityID != caller.UniversityID {
			return nil, notFoundf("campus not found")
		}
		campus = c
	}

	var (
		from, to  time.Time
		withDates = q.AvailableFrom != "" && q.AvailableTo != ""
	)
	if withDates {
		var err error
		from, to, err = parseDateRange(q.AvailableFrom, q.AvailableTo, "available_from", "available_to")
		if err != nil {
			return nil, err
		}
	}

	accs, err := s.store.Accommodations().Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search accommodations: %w", err)
	}

	results := make([]SearchResult, 0, len(accs))
	for _, acc := range accs {
		if withDates {
			ok, err := s.bookable(ctx, acc, from, to)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}

		result := SearchResult{Accommodation: acc}
		if campus != nil {
			d := geo.Round2(geo.Distance(acc.Latitude, acc.Longitude, campus.Latitude, campus.Longitude))
			result.Distance = &d
		}
		results = append(results, result)
	}

	if campus != nil {
		sort.SliceStable(results, func(i, j int) bool {
			return *results[i].Distance < *results[j].Distance
		})
	}

	return results, nil
}

func (s *AccommodationService) bookable(ctx context.Context, acc *model.Accommodation, from, to time.Time) (bool, error) {
	ok, err := availability.IsAvailableForDates(ctx, s.store.Slots(), acc, from, to)
	if err != nil || !ok {
		return false, err
	}

	reserved, err := s.store.Reservations().HasActiveOverlap(ctx, acc.ID, from, to)
	if err != nil {
		return false, fmt.Errorf("check overlapping reservations: %w", err)
	}
	return !reserved, nil
}

func (s *AccommodationService) validateInput(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return validationf("invalid input: %s", strings.Join(msgs, "; "))
}

// specialistActor resolves the optional acting specialist. Unknown ids are
// logged without an actor.
func specialistActor(ctx context.Context, repos repository.Repositories, specialistID *int64) (string, *int64, error) {
	if specialistID == nil {
		return "", nil, nil
	}

	sp, err := repos.Members().GetSpecialist(ctx, *specialistID)
	if err != nil {
		return "", nil, fmt.Errorf("get specialist: %w", err)
	}
	if sp == nil {
		return "", nil, nil
	}
	return model.ActorSpecialist, int64Ptr(sp.ID), nil
}
