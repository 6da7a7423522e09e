package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
)

var (
	ErrInvalidRange    = errors.New("availability: start date is after end date")
	ErrSlotUnavailable = errors.New("availability: slot is not available")
	ErrSlotNotCovering = errors.New("availability: slot does not cover the requested range")
	ErrSlotOverlap     = errors.New("availability: range overlaps an available slot")
)

// Split carves [from, to] out of slot and returns the residual slots.
// A side whose residual would be empty is returned as nil. Nothing is persisted
// and the original slot is left untouched.
func Split(slot *model.AvailabilitySlot, from, to time.Time) (before, after *model.AvailabilitySlot, err error) {
	if from.After(to) {
		return nil, nil, ErrInvalidRange
	}
	if !slot.IsAvailable {
		return nil, nil, ErrSlotUnavailable
	}
	if !slot.Covers(from, to) {
		return nil, nil, ErrSlotNotCovering
	}

	if from.After(slot.StartDate) {
		before = &model.AvailabilitySlot{
			AccommodationID: slot.AccommodationID,
			StartDate:       slot.StartDate,
			EndDate:         AddDays(from, -1),
			IsAvailable:     true,
		}
	}

	if to.Before(slot.EndDate) {
		after = &model.AvailabilitySlot{
			AccommodationID: slot.AccommodationID,
			StartDate:       AddDays(to, 1),
			EndDate:         slot.EndDate,
			IsAvailable:     true,
		}
	}

	return before, after, nil
}

// Consume splits slot around [from, to], persists the residuals and only then
// deletes the original slot.
func Consume(ctx context.Context, store SlotStore, slot *model.AvailabilitySlot, from, to time.Time) (before, after *model.AvailabilitySlot, err error) {
	before, after, err = Split(slot, from, to)
	if err != nil {
		return nil, nil, err
	}

	for _, residual := range []*model.AvailabilitySlot{before, after} {
		if residual == nil {
			continue
		}
		if err := store.Create(ctx, residual); err != nil {
			return nil, nil, fmt.Errorf("create residual slot: %w", err)
		}
	}

	if err := store.Delete(ctx, slot.ID); err != nil {
		return nil, nil, fmt.Errorf("delete consumed slot: %w", err)
	}

	return before, after, nil
}

// Release hands [from, to] back to the accommodation as a new available slot.
// Adjacent slots are not merged here; callers run MergeAdjacent afterwards.
func Release(ctx context.Context, store SlotStore, accommodationID int64, from, to time.Time) (*model.AvailabilitySlot, error) {
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	slot := &model.AvailabilitySlot{
		AccommodationID: accommodationID,
		StartDate:       from,
		EndDate:         to,
		IsAvailable:     true,
	}
	if err := store.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create released slot: %w", err)
	}

	return slot, nil
}

// CheckNoOverlap fails with ErrSlotOverlap when [from, to] shares at least one day
// with an available slot of the accommodation.
func CheckNoOverlap(ctx context.Context, store SlotStore, accommodationID int64, from, to time.Time) error {
	slots, err := store.ListAvailable(ctx, accommodationID)
	if err != nil {
		return fmt.Errorf("list available slots: %w", err)
	}

	for _, s := range slots {
		if s.Overlaps(from, to) {
			return ErrSlotOverlap
		}
	}

	return nil
}
