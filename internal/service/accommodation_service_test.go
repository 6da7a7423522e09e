package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/unihaven/internal/geo"
	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func baseInput(universityID int64) service.CreateAccommodationInput {
	return service.CreateAccommodationInput{
		Name:          "Studio",
		BuildingName:  "Tower Two",
		Type:          model.AccommodationTypeStudio,
		NumBeds:       1,
		Address:       "2 Main Street",
		Owner:         service.OwnerInput{Name: "Owner", Email: "owner@example.com"},
		UniversityIDs: []int64{universityID},
	}
}

func TestCreateAccommodationWithoutDates(t *testing.T) {
	f := newFixture(t, service.ReservationPolicy{})
	acc := f.createAccommodation(t, accOpts{})

	assert.False(t, acc.IsAvailable)
	assert.Equal(t, 1, acc.MinReservationDays)
	assert.Equal(t, []int64{f.uni.ID}, acc.UniversityIDs)
	assert.Empty(t, f.slotRanges(t, acc.ID))
}

func TestCreateAccommodationGeocodes(t *testing.T) {
	f := newFixture(t, service.ReservationPolicy{})
	ctx := context.Background()

	t.Run("resolved", func(t *testing.T) {
		svc := service.NewAccommodationService(f.store, stubGeocoder{loc: &geo.Location{
			Latitude: 22.3, Longitude: 114.2, GeoAddress: "GEO-1",
		}}, zap.NewNop())

		acc, err := svc.Create(ctx, baseInput(f.uni.ID))
		require.NoError(t, err)
		assert.Equal(t, 22.3, acc.Latitude)
		assert.Equal(t, 114.2, acc.Longitude)
		assert.Equal(t, "GEO-1", acc.GeoAddress)
	})

	t.Run("no match", func(t *testing.T) {
		svc := service.NewAccommodationService(f.store, stubGeocoder{}, zap.NewNop())
		_, err := svc.Create(ctx, baseInput(f.uni.ID))
		require.ErrorIs(t, err, service.ErrValidation)
		assert.Equal(t, "no address found for this building name", service.Message(err))
	})

	t.Run("lookup failure", func(t *testing.T) {
		svc := service.NewAccommodationService(f.store, stubGeocoder{err: errors.New("timeout")}, zap.NewNop())
		_, err := svc.Create(ctx, baseInput(f.uni.ID))
		require.ErrorIs(t, err, service.ErrValidation)
		assert.Equal(t, "failed to get location data: timeout", service.Message(err))
	})
}

func TestCreateAccommodationValidation(t *testing.T) {
	f := newFixture(t, service.ReservationPolicy{})
	ctx := context.Background()
	lat, lng := 22.0, 114.0

	valid := baseInput(f.uni.ID)
	valid.Latitude, valid.Longitude, valid.GeoAddress = &lat, &lng, "GEO"

	tests := []struct {
		name   string
		mutate func(in *service.CreateAccommodationInput)
	}{
		{"missing name", func(in *service.CreateAccommodationInput) { in.Name = "" }},
		{"unknown type", func(in *service.CreateAccommodationInput) { in.Type = "CASTLE" }},
		{"no universities", func(in *service.CreateAccommodationInput) { in.UniversityIDs = nil }},
		{"unknown university", func(in *service.CreateAccommodationInput) { in.UniversityIDs = []int64{999} }},
		{"only one date", func(in *service.CreateAccommodationInput) { in.AvailableFrom = "2025-01-01" }},
		{"reversed dates", func(in *service.CreateAccommodationInput) {
			in.AvailableFrom, in.AvailableTo = "2025-02-01", "2025-01-01"
		}},
		{"bad owner email", func(in *service.CreateAccommodationInput) { in.Owner.Email = "nope" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.accommodations.Create(ctx, in)
			require.ErrorIs(t, err, service.ErrValidation)
		})
	}

	accs, err := f.store.Accommodations().Search(ctx, repositoryAccFilter(f.uni.ID))
	require.NoError(t, err)
	assert.Empty(t, accs)
}

func TestAddAvailability(t *testing.T) {
	f := newFixture(t, service.ReservationPolicy{})
	ctx := context.Background()
	acc := f.createAccommodation(t, accOpts{from: "2025-01-01", to: "2025-01-31"})
	_, err := f.reserve(t, acc.ID, "2025-01-10", "2025-01-15")
	require.NoError(t, err)

	t.Run("overlaps an available slot", func(t *testing.T) {
		_, err := f.accommodations.AddAvailability(ctx, f.caller, acc.ID, "2025-01-31", "2025-02-05", nil)
		require.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("overlaps an active reservation", func(t *testing.T) {
		_, err := f.accommodations.AddAvailability(ctx, f.caller, acc.ID, "2025-01-12", "2025-01-13", nil)
		require.ErrorIs(t, err, service.ErrConflict)
		_, err = f.accommodations.AddAvailability(ctx, f.caller, acc.ID, "2025-01-15", "2025-01-15", nil)
		require.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("adjacent range merges", func(t *testing.T) {
		sp := f.store.AddSpecialist(f.uni.ID, "Sam", "sam@example.com", nil)
		slot, err := f.accommodations.AddAvailability(ctx, f.caller, acc.ID, "2025-02-01", "2025-02-10", &sp.ID)
		require.NoError(t, err)
		assert.Equal(t, "2025-01-16", slot.StartDate.Format("2006-01-02"))
		assert.Equal(t, "2025-02-10", slot.EndDate.Format("2006-01-02"))
		assert.Equal(t, []string{"2025-01-01..2025-01-09", "2025-01-16..2025-02-10"}, f.slotRanges(t, acc.ID))

		logs, err := f.audit.List(ctx, repositoryFilter(model.ActionAddAvailability), 1)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, model.ActorSpecialist, logs[0].UserType)
		assert.Equal(t, sp.ID, *logs[0].UserID)
	})

	t.Run("invisible accommodation", func(t *testing.T) {
		_, err := f.accommodations.AddAvailability(ctx, service.Caller{UniversityID: f.other.ID}, acc.ID, "2025-03-01", "2025-03-02", nil)
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestAddAvailabilityTurnsAccommodationAvailable(t *testing.T) {
	f := newFixture(t, service.ReservationPolicy{})
	acc := f.createAccommodation(t, accOpts{})
	require.False(t, f.isAvailable(t, acc.ID))

	_, err := f.accommodations.AddAvailability(context.Background(), f.caller, acc.ID, "2025-03-01", "2025-03-31", nil)
	require.NoError(t, err)
	assert.True(t, f.isAvailable(t, acc.ID))
}

func TestMarkUnavailable(t *testing.T) {
	f := newFixture(t, service.ReservationPolicy{})
	ctx := context.Background()
	acc := f.createAccommodation(t, accOpts{from: "2025-01-01", to: "2025-01-31"})
	res, err := f.reserve(t, acc.ID, "2025-01-10", "2025-01-15")
	require.NoError(t, err)

	updated, err := f.accommodations.MarkUnavailable(ctx, f.caller, acc.ID, nil)
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)
	assert.Empty(t, f.slotRanges(t, acc.ID))

	slots, err := f.accommodations.ListSlots(ctx, f.caller, acc.ID)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
	for _, s := range slots {
		assert.False(t, s.IsAvailable)
	}

	_, err = f.reserve(t, acc.ID, "2025-01-20", "2025-01-22")
	require.ErrorIs(t, err, service.ErrConflict)

	// Существующая бронь остаётся активной
	got, err := f.reservations.Get(ctx, f.caller, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusPending, got.Status)
}

func TestDeleteAccommodation(t *testing.T) {
	f := newFixture(t, service.ReservationPolicy{})
	ctx := context.Background()
	acc := f.createAccommodation(t, accOpts{from: "2025-01-01", to: "2025-01-31"})
	res, err := f.reserve(t, acc.ID, "2025-01-10", "2025-01-15")
	require.NoError(t, err)

	_, err = f.accommodations.Delete(ctx, f.caller, acc.ID, nil)
	require.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, "cannot delete accommodation with active reservations", service.Message(err))

	_, err = f.reservations.Cancel(ctx, f.caller, res.ID)
	require.NoError(t, err)

	name, err := f.accommodations.Delete(ctx, f.caller, acc.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Flat", name)

	_, err = f.accommodations.Get(ctx, f.caller, acc.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
	assert.Empty(t, f.slotRanges(t, acc.ID))
}

func TestSearch(t *testing.T) {
	f := newFixture(t, service.ReservationPolicy{})
	ctx := context.Background()
	campus := f.store.AddCampus(f.uni.ID, "Main", 22.28, 114.13)
	foreignCampus := f.store.AddCampus(f.other.ID, "Other", 22.33, 114.26)

	far := f.createAccommodation(t, accOpts{from: "2025-01-01", to: "2025-01-31", rent: 500, lat: 22.40, lng: 114.20})
	near := f.createAccommodation(t, accOpts{from: "2025-01-01", to: "2025-01-31", rent: 900, lat: 22.29, lng: 114.14})
	f.createAccommodation(t, accOpts{rent: 100})
	f.createAccommodation(t, accOpts{from: "2025-01-01", to: "2025-01-31", unis: []int64{f.other.ID}})

	t.Run("distance", func(t *testing.T) {
		results, err := f.accommodations.Search(ctx, f.caller, service.SearchQuery{CampusID: &campus.ID})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, near.ID, results[0].ID)
		assert.Equal(t, far.ID, results[1].ID)
		require.NotNil(t, results[0].Distance)
		assert.Less(t, *results[0].Distance, *results[1].Distance)
	})

	t.Run("price", func(t *testing.T) {
		results, err := f.accommodations.Search(ctx, f.caller, service.SearchQuery{SortBy: "price_desc", CampusID: &campus.ID})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, near.ID, results[0].ID)
		assert.Nil(t, results[0].Distance)

		maxPrice := int64(600)
		results, err = f.accommodations.Search(ctx, f.caller, service.SearchQuery{MaxPrice: &maxPrice})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, far.ID, results[0].ID)
	})

	t.Run("dates", func(t *testing.T) {
		_, err := f.reserve(t, near.ID, "2025-01-10", "2025-01-15")
		require.NoError(t, err)

		results, err := f.accommodations.Search(ctx, f.caller, service.SearchQuery{
			AvailableFrom: "2025-01-12",
			AvailableTo:   "2025-01-14",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, far.ID, results[0].ID)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := f.accommodations.Search(ctx, f.caller, service.SearchQuery{Type: "castle"})
		require.ErrorIs(t, err, service.ErrValidation)

		_, err = f.accommodations.Search(ctx, f.caller, service.SearchQuery{SortBy: "rating"})
		require.ErrorIs(t, err, service.ErrValidation)

		_, err = f.accommodations.Search(ctx, f.caller, service.SearchQuery{CampusID: &foreignCampus.ID})
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}
