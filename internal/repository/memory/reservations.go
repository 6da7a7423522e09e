package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
)

type reservations struct{ s *Store }

func (r reservations) Create(_ context.Context, res *model.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.accommodations[res.AccommodationID]; !ok {
		return fmt.Errorf("create reservation: accommodation %d not found", res.AccommodationID)
	}
	if _, ok := r.s.st.members[res.MemberID]; !ok {
		return fmt.Errorf("create reservation: member %d not found", res.MemberID)
	}

	res.ID = r.s.st.id()
	res.CreatedAt = r.s.now()
	res.UpdatedAt = res.CreatedAt
	r.s.st.reservations[res.ID] = stripReservation(*res)
	return nil
}

func (r reservations) GetByID(_ context.Context, id int64) (*model.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.st.reservations[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r reservations) UpdateStatus(_ context.Context, id int64, status model.ReservationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.st.reservations[id]
	if !ok {
		return fmt.Errorf("reservation not found")
	}
	res.Status = status
	res.UpdatedAt = r.s.now()
	r.s.st.reservations[id] = res
	return nil
}

func (r reservations) HasActiveOverlap(_ context.Context, accommodationID int64, from, to time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, res := range r.s.st.reservations {
		if res.AccommodationID == accommodationID && res.Status.IsActive() && res.Overlaps(from, to) {
			return true, nil
		}
	}
	return false, nil
}

func (r reservations) HasActive(_ context.Context, accommodationID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, res := range r.s.st.reservations {
		if res.AccommodationID == accommodationID && res.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r reservations) ListByMember(_ context.Context, memberID int64) ([]*model.Reservation, error) {
	return r.filter(func(res model.Reservation) bool {
		return res.MemberID == memberID
	}, newestFirst), nil
}

func (r reservations) ListForUniversity(_ context.Context, universityID int64) ([]*model.Reservation, error) {
	// keep runs under the read lock, so the maps can be read directly.
	return r.filter(func(res model.Reservation) bool {
		member, ok := r.s.st.members[res.MemberID]
		if !ok || member.UniversityID != universityID {
			return false
		}
		acc, ok := r.s.st.accommodations[res.AccommodationID]
		return ok && acc.ServesUniversity(universityID)
	}, newestFirst), nil
}

func (r reservations) ListConfirmedEndingBefore(_ context.Context, day time.Time) ([]*model.Reservation, error) {
	return r.filter(func(res model.Reservation) bool {
		return res.Status == model.ReservationStatusConfirmed && res.ReservedTo.Before(day)
	}, func(a, b *model.Reservation) bool {
		if !a.ReservedTo.Equal(b.ReservedTo) {
			return a.ReservedTo.Before(b.ReservedTo)
		}
		return a.ID < b.ID
	}), nil
}

func (r reservations) filter(keep func(model.Reservation) bool, less func(a, b *model.Reservation) bool) []*model.Reservation {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*model.Reservation
	for _, res := range r.s.st.reservations {
		if !keep(res) {
			continue
		}
		res := res
		result = append(result, &res)
	}
	sort.Slice(result, func(i, j int) bool { return less(result[i], result[j]) })
	return result
}

func newestFirst(a, b *model.Reservation) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func stripReservation(res model.Reservation) model.Reservation {
	res.Accommodation = nil
	res.Member = nil
	return res
}
