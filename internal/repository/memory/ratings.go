package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository"
)

type ratings struct{ s *Store }

func (r ratings) Create(_ context.Context, rating *model.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.st.ratings {
		if existing.ReservationID == rating.ReservationID {
			return fmt.Errorf("create rating: reservation %d already rated", rating.ReservationID)
		}
	}

	rating.ID = r.s.st.id()
	rating.CreatedAt = r.s.now()
	r.s.st.ratings[rating.ID] = *rating
	return nil
}

func (r ratings) GetByID(_ context.Context, id int64) (*model.Rating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rating, ok := r.s.st.ratings[id]
	if !ok {
		return nil, nil
	}
	return &rating, nil
}

func (r ratings) ExistsForReservation(_ context.Context, reservationID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rating := range r.s.st.ratings {
		if rating.ReservationID == reservationID {
			return true, nil
		}
	}
	return false, nil
}

func (r ratings) UpdateModeration(_ context.Context, rating *model.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.st.ratings[rating.ID]
	if !ok {
		return fmt.Errorf("rating not found")
	}
	stored.IsApproved = rating.IsApproved
	stored.ModeratedBy = rating.ModeratedBy
	stored.ModerationDate = rating.ModerationDate
	stored.ModerationNote = rating.ModerationNote
	r.s.st.ratings[rating.ID] = stored
	return nil
}

func (r ratings) ListPending(_ context.Context, limit, offset int) ([]*model.Rating, error) {
	pending := r.filter(func(rt model.Rating) bool { return rt.ModeratedBy == nil })
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return pending[i].ID < pending[j].ID
	})
	return page(pending, limit, offset), nil
}

func (r ratings) ListByAccommodation(_ context.Context, accommodationID *int64) ([]*model.Rating, error) {
	result := r.filter(func(rt model.Rating) bool {
		return accommodationID == nil || rt.AccommodationID == *accommodationID
	})
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r ratings) Stats(_ context.Context, accommodationID int64) (*model.RatingStats, error) {
	scored := r.filter(func(rt model.Rating) bool {
		return rt.AccommodationID == accommodationID
	})

	stats := &model.RatingStats{Count: len(scored)}
	if len(scored) == 0 {
		return stats, nil
	}

	sum := 0
	for _, rt := range scored {
		sum += rt.Score
	}
	avg := math.Round(float64(sum)/float64(len(scored))*10) / 10
	stats.Average = &avg
	return stats, nil
}

func (r ratings) filter(keep func(model.Rating) bool) []*model.Rating {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*model.Rating
	for _, rt := range r.s.st.ratings {
		if !keep(rt) {
			continue
		}
		rt := rt
		result = append(result, &rt)
	}
	return result
}

type actionLogs struct{ s *Store }

func (r actionLogs) Create(_ context.Context, entry *model.ActionLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry.ID = r.s.st.id()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.s.now()
	}
	r.s.st.logs = append(r.s.st.logs, *entry)
	return nil
}

func (r actionLogs) List(_ context.Context, filter repository.ActionLogFilter, limit, offset int) ([]*model.ActionLog, error) {
	r.s.mu.RLock()
	var result []*model.ActionLog
	for _, entry := range r.s.st.logs {
		if !matchesLog(entry, filter) {
			continue
		}
		entry := entry
		result = append(result, &entry)
	}
	r.s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return page(result, limit, offset), nil
}

func matchesLog(entry model.ActionLog, f repository.ActionLogFilter) bool {
	if f.ActionType != "" && entry.ActionType != f.ActionType {
		return false
	}
	if f.UserType != "" && entry.UserType != f.UserType {
		return false
	}
	if f.UserID != nil && (entry.UserID == nil || *entry.UserID != *f.UserID) {
		return false
	}
	if f.AccommodationID != nil && (entry.AccommodationID == nil || *entry.AccommodationID != *f.AccommodationID) {
		return false
	}
	if f.CreatedFrom != nil && entry.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && entry.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
