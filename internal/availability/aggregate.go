package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
)

// UpdateAvailability recomputes acc.IsAvailable from the slot set: true iff at least
// one available slot exists. The flag is written only when it changes.
func UpdateAvailability(ctx context.Context, slots SlotStore, flags FlagStore, acc *model.Accommodation) (bool, error) {
	available, err := slots.AnyAvailable(ctx, acc.ID)
	if err != nil {
		return false, fmt.Errorf("check available slots: %w", err)
	}

	if acc.IsAvailable == available {
		return false, nil
	}

	if err := flags.SetAvailability(ctx, acc.ID, available); err != nil {
		return false, fmt.Errorf("set accommodation availability: %w", err)
	}
	acc.IsAvailable = available

	return true, nil
}

// IsAvailableForDates reports whether [from, to] can be booked as far as slots go:
// an available slot covers it and it meets the minimum stay.
func IsAvailableForDates(ctx context.Context, slots SlotStore, acc *model.Accommodation, from, to time.Time) (bool, error) {
	if from.After(to) || !acc.MeetsMinimumStay(from, to) {
		return false, nil
	}

	slot, err := slots.FindCovering(ctx, acc.ID, from, to)
	if err != nil {
		return false, fmt.Errorf("find covering slot: %w", err)
	}

	return slot != nil, nil
}
