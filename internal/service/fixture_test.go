package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/unihaven/internal/availability"
	"github.com/Freeeeeet/unihaven/internal/geo"
	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/notify"
	"github.com/Freeeeeet/unihaven/internal/repository/memory"
	"github.com/Freeeeeet/unihaven/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Dispatch(event notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) kinds() []notify.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.EventKind, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Kind)
	}
	return out
}

type stubGeocoder struct {
	loc *geo.Location
	err error
}

func (g stubGeocoder) Lookup(context.Context, string) (*geo.Location, error) {
	return g.loc, g.err
}

type fixture struct {
	store    *memory.Store
	uni      *model.University
	other    *model.University
	member   *model.Member
	caller   service.Caller
	notifier *recordingNotifier

	accommodations *service.AccommodationService
	reservations   *service.ReservationService
	ratings        *service.RatingService
	audit          *service.AuditService
}

func newFixture(t *testing.T, policy service.ReservationPolicy) *fixture {
	t.Helper()

	store := memory.NewStore().WithClock(func() time.Time { return testNow })
	logger := zap.NewNop()

	f := &fixture{
		store:    store,
		uni:      store.AddUniversity("HKU", "HK"),
		other:    store.AddUniversity("HKUST", "HK"),
		notifier: &recordingNotifier{},
	}
	f.member = store.AddMember(f.uni.ID, "Alice", "alice@example.com", "+85200000000")
	f.caller = service.Caller{UniversityID: f.uni.ID}

	f.accommodations = service.NewAccommodationService(store, nil, logger)
	f.reservations = service.NewReservationService(store, f.notifier, policy, logger).
		WithClock(func() time.Time { return testNow })
	f.ratings = service.NewRatingService(store, logger)
	f.audit = service.NewAuditService(store)

	return f
}

type accOpts struct {
	from, to string
	minDays  int
	rent     int64
	lat, lng float64
	unis     []int64
}

func (f *fixture) createAccommodation(t *testing.T, o accOpts) *model.Accommodation {
	t.Helper()

	if o.lat == 0 && o.lng == 0 {
		o.lat, o.lng = 22.28, 114.14
	}
	if o.unis == nil {
		o.unis = []int64{f.uni.ID}
	}

	acc, err := f.accommodations.Create(context.Background(), service.CreateAccommodationInput{
		Name:               "Flat",
		BuildingName:       "Tower One",
		Type:               model.AccommodationTypeApartment,
		NumBeds:            1,
		Address:            "1 Main Street",
		GeoAddress:         "3657162889T20050430",
		Latitude:           &o.lat,
		Longitude:          &o.lng,
		AvailableFrom:      o.from,
		AvailableTo:        o.to,
		MonthlyRent:        o.rent,
		MinReservationDays: o.minDays,
		Owner:              service.OwnerInput{Name: "Owner", Email: "owner@example.com"},
		UniversityIDs:      o.unis,
	})
	require.NoError(t, err)
	return acc
}

func (f *fixture) reserve(t *testing.T, accommodationID int64, from, to string) (*model.Reservation, error) {
	t.Helper()
	return f.reservations.Create(context.Background(), f.caller, service.CreateReservationInput{
		AccommodationID: accommodationID,
		MemberID:        f.member.ID,
		ReservedFrom:    from,
		ReservedTo:      to,
		ContactName:     "Alice",
		ContactPhone:    "+85200000000",
	})
}

func (f *fixture) slotRanges(t *testing.T, accommodationID int64) []string {
	t.Helper()
	slots, err := f.store.Slots().ListAvailable(context.Background(), accommodationID)
	require.NoError(t, err)
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, availability.FormatDate(s.StartDate)+".."+availability.FormatDate(s.EndDate))
	}
	return out
}

func (f *fixture) isAvailable(t *testing.T, accommodationID int64) bool {
	t.Helper()
	acc, err := f.store.Accommodations().GetByID(context.Background(), accommodationID)
	require.NoError(t, err)
	require.NotNil(t, acc)
	return acc.IsAvailable
}
