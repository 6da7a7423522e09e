package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
)

type slots struct{ s *Store }

func (r slots) Create(_ context.Context, slot *model.AvailabilitySlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.accommodations[slot.AccommodationID]; !ok {
		return fmt.Errorf("create slot: accommodation %d not found", slot.AccommodationID)
	}

	slot.ID = r.s.st.id()
	slot.CreatedAt = r.s.now()
	slot.UpdatedAt = slot.CreatedAt
	r.s.st.slots[slot.ID] = *slot
	return nil
}

func (r slots) Update(_ context.Context, slot *model.AvailabilitySlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.slots[slot.ID]; !ok {
		return fmt.Errorf("slot not found")
	}
	slot.UpdatedAt = r.s.now()
	r.s.st.slots[slot.ID] = *slot
	return nil
}

func (r slots) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.slots[id]; !ok {
		return fmt.Errorf("slot not found")
	}
	delete(r.s.st.slots, id)
	return nil
}

func (r slots) ListAvailable(_ context.Context, accommodationID int64) ([]*model.AvailabilitySlot, error) {
	return r.list(accommodationID, true), nil
}

func (r slots) ListByAccommodation(_ context.Context, accommodationID int64) ([]*model.AvailabilitySlot, error) {
	return r.list(accommodationID, false), nil
}

func (r slots) FindCovering(_ context.Context, accommodationID int64, from, to time.Time) (*model.AvailabilitySlot, error) {
	for _, slot := range r.list(accommodationID, true) {
		if slot.Covers(from, to) {
			return slot, nil
		}
	}
	return nil, nil
}

func (r slots) AnyAvailable(_ context.Context, accommodationID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, slot := range r.s.st.slots {
		if slot.AccommodationID == accommodationID && slot.IsAvailable {
			return true, nil
		}
	}
	return false, nil
}

func (r slots) MarkAllUnavailable(_ context.Context, accommodationID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var affected int64
	for id, slot := range r.s.st.slots {
		if slot.AccommodationID != accommodationID || !slot.IsAvailable {
			continue
		}
		slot.IsAvailable = false
		slot.UpdatedAt = r.s.now()
		r.s.st.slots[id] = slot
		affected++
	}
	return affected, nil
}

func (r slots) list(accommodationID int64, onlyAvailable bool) []*model.AvailabilitySlot {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*model.AvailabilitySlot
	for _, slot := range r.s.st.slots {
		if slot.AccommodationID != accommodationID {
			continue
		}
		if onlyAvailable && !slot.IsAvailable {
			continue
		}
		slot := slot
		result = append(result, &slot)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].ID < result[j].ID
	})

	return result
}
