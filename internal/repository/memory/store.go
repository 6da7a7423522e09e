// Package memory keeps the whole booking graph in process memory. It backs tests
// and local runs without Postgres.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository"
	"github.com/google/uuid"
)

type state struct {
	nextID         int64
	universities   map[int64]model.University
	campuses       map[int64]model.Campus
	members        map[int64]model.Member
	specialists    map[int64]model.Specialist
	owners         map[string]model.Owner
	accommodations map[int64]model.Accommodation
	slots          map[int64]model.AvailabilitySlot
	reservations   map[int64]model.Reservation
	ratings        map[int64]model.Rating
	logs           []model.ActionLog
}

func newState() *state {
	return &state{
		universities:   make(map[int64]model.University),
		campuses:       make(map[int64]model.Campus),
		members:        make(map[int64]model.Member),
		specialists:    make(map[int64]model.Specialist),
		owners:         make(map[string]model.Owner),
		accommodations: make(map[int64]model.Accommodation),
		slots:          make(map[int64]model.AvailabilitySlot),
		reservations:   make(map[int64]model.Reservation),
		ratings:        make(map[int64]model.Rating),
	}
}

func (s *state) clone() *state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.universities {
		c.universities[k] = v
	}
	for k, v := range s.campuses {
		c.campuses[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.specialists {
		c.specialists[k] = v
	}
	for k, v := range s.owners {
		c.owners[k] = v
	}
	for k, v := range s.accommodations {
		v.UniversityIDs = append([]int64(nil), v.UniversityIDs...)
		c.accommodations[k] = v
	}
	for k, v := range s.slots {
		c.slots[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.ratings {
		c.ratings[k] = v
	}
	c.logs = append([]model.ActionLog(nil), s.logs...)
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store implements repository.Store. Transactions are serialized by txMu and
// rolled back by restoring the snapshot taken when they began.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
	now  func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		st:  newState(),
		now: time.Now,
	}
}

// WithClock overrides the timestamp source used for created_at columns.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	err := fn(ctx, s)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}

	return nil
}

func (s *Store) Accommodations() repository.AccommodationStore { return accommodations{s} }
func (s *Store) Slots() repository.SlotStore                   { return slots{s} }
func (s *Store) Reservations() repository.ReservationStore     { return reservations{s} }
func (s *Store) Members() repository.MemberStore               { return members{s} }
func (s *Store) Universities() repository.UniversityStore      { return universities{s} }
func (s *Store) Ratings() repository.RatingStore               { return ratings{s} }
func (s *Store) ActionLogs() repository.ActionLogStore         { return actionLogs{s} }

// Seeding helpers. Universities, campuses, members and specialists are managed
// by other systems, so the store only needs a way to load them.

func (s *Store) AddUniversity(name, country string) *model.University {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := model.University{
		ID:        s.st.id(),
		Name:      name,
		Country:   country,
		Token:     uuid.New(),
		CreatedAt: s.now(),
	}
	s.st.universities[u.ID] = u
	return &u
}

func (s *Store) AddCampus(universityID int64, name string, lat, lng float64) *model.Campus {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := model.Campus{
		ID:           s.st.id(),
		UniversityID: universityID,
		Name:         name,
		Latitude:     lat,
		Longitude:    lng,
		CreatedAt:    s.now(),
	}
	s.st.campuses[c.ID] = c
	return &c
}

func (s *Store) AddMember(universityID int64, name, email, phone string) *model.Member {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := model.Member{
		ID:           s.st.id(),
		UniversityID: universityID,
		Name:         name,
		Email:        email,
		Phone:        phone,
		CreatedAt:    s.now(),
	}
	s.st.members[m.ID] = m
	return &m
}

func (s *Store) AddSpecialist(universityID int64, name, email string, chatID *int64) *model.Specialist {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp := model.Specialist{
		ID:             s.st.id(),
		UniversityID:   universityID,
		Name:           name,
		Email:          email,
		TelegramChatID: chatID,
		CreatedAt:      s.now(),
	}
	s.st.specialists[sp.ID] = sp
	return &sp
}
