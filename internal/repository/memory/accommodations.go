package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository"
)

type accommodations struct{ s *Store }

func (r accommodations) Create(_ context.Context, acc *model.Accommodation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	acc.ID = r.s.st.id()
	acc.CreatedAt = r.s.now()
	acc.UpdatedAt = acc.CreatedAt

	stored := *acc
	stored.UniversityIDs = nil
	r.s.st.accommodations[acc.ID] = stored
	return nil
}

func (r accommodations) GetByID(_ context.Context, id int64) (*model.Accommodation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	acc, ok := r.s.st.accommodations[id]
	if !ok {
		return nil, nil
	}
	return copyAccommodation(acc), nil
}

// LockByID relies on WithinTx holding the transaction mutex.
func (r accommodations) LockByID(ctx context.Context, id int64) (*model.Accommodation, error) {
	return r.GetByID(ctx, id)
}

func (r accommodations) SetUniversities(_ context.Context, accommodationID int64, universityIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	acc, ok := r.s.st.accommodations[accommodationID]
	if !ok {
		return fmt.Errorf("accommodation not found")
	}

	seen := make(map[int64]bool, len(universityIDs))
	ids := make([]int64, 0, len(universityIDs))
	for _, id := range universityIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	acc.UniversityIDs = ids
	r.s.st.accommodations[accommodationID] = acc
	return nil
}

func (r accommodations) SetAvailability(_ context.Context, accommodationID int64, available bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	acc, ok := r.s.st.accommodations[accommodationID]
	if !ok {
		return fmt.Errorf("accommodation not found")
	}
	acc.IsAvailable = available
	acc.UpdatedAt = r.s.now()
	r.s.st.accommodations[accommodationID] = acc
	return nil
}

func (r accommodations) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.accommodations[id]; !ok {
		return fmt.Errorf("accommodation not found")
	}
	delete(r.s.st.accommodations, id)

	for slotID, slot := range r.s.st.slots {
		if slot.AccommodationID == id {
			delete(r.s.st.slots, slotID)
		}
	}
	for resID, res := range r.s.st.reservations {
		if res.AccommodationID == id {
			delete(r.s.st.reservations, resID)
		}
	}
	for ratingID, rating := range r.s.st.ratings {
		if rating.AccommodationID == id {
			delete(r.s.st.ratings, ratingID)
		}
	}
	return nil
}

func (r accommodations) Search(_ context.Context, filter repository.AccommodationFilter) ([]*model.Accommodation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*model.Accommodation
	for _, acc := range r.s.st.accommodations {
		if filter.UniversityID != 0 && !acc.ServesUniversity(filter.UniversityID) {
			continue
		}
		if filter.OnlyAvailable && !acc.IsAvailable {
			continue
		}
		if filter.Type != "" && acc.Type != filter.Type {
			continue
		}
		if acc.NumBeds < filter.MinBeds || acc.NumBedrooms < filter.MinBedrooms {
			continue
		}
		if filter.MinRent != nil && acc.MonthlyRent < *filter.MinRent {
			continue
		}
		if filter.MaxRent != nil && acc.MonthlyRent > *filter.MaxRent {
			continue
		}
		result = append(result, copyAccommodation(acc))
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		switch filter.OrderBy {
		case "price_asc":
			if a.MonthlyRent != b.MonthlyRent {
				return a.MonthlyRent < b.MonthlyRent
			}
		case "price_desc":
			if a.MonthlyRent != b.MonthlyRent {
				return a.MonthlyRent > b.MonthlyRent
			}
		}
		return a.ID < b.ID
	})

	return result, nil
}

func (r accommodations) UpsertOwner(_ context.Context, owner *model.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.st.owners[owner.Email]; ok {
		owner.CreatedAt = existing.CreatedAt
	} else {
		owner.CreatedAt = r.s.now()
	}
	r.s.st.owners[owner.Email] = *owner
	return nil
}

func copyAccommodation(acc model.Accommodation) *model.Accommodation {
	acc.UniversityIDs = append([]int64(nil), acc.UniversityIDs...)
	return &acc
}
