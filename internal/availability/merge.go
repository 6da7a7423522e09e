package availability

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/unihaven/internal/model"
)

// MergeAdjacent coalesces day-adjacent available slots of an accommodation.
//
// Slots are scanned in start-date order. When two consecutive slots are adjacent the
// earlier one is extended to the later one's end date and the later one is deleted;
// scanning continues from the combined slot. Full passes repeat until one performs no
// merge. Overlapping slots are not adjacent and are left as they are.
func MergeAdjacent(ctx context.Context, store SlotStore, accommodationID int64) (int, error) {
	merged := 0

	for {
		slots, err := store.ListAvailable(ctx, accommodationID)
		if err != nil {
			return merged, fmt.Errorf("list available slots: %w", err)
		}

		n, err := mergePass(ctx, store, slots)
		merged += n
		if err != nil {
			return merged, err
		}
		if n == 0 {
			return merged, nil
		}
	}
}

func mergePass(ctx context.Context, store SlotStore, slots []*model.AvailabilitySlot) (int, error) {
	merged := 0

	i := 0
	for i < len(slots)-1 {
		earlier, later := slots[i], slots[i+1]
		if !earlier.IsAdjacentTo(later) {
			i++
			continue
		}

		earlier.EndDate = later.EndDate
		if err := store.Update(ctx, earlier); err != nil {
			return merged, fmt.Errorf("update merged slot: %w", err)
		}
		if err := store.Delete(ctx, later.ID); err != nil {
			return merged, fmt.Errorf("delete absorbed slot: %w", err)
		}

		slots = append(slots[:i+1], slots[i+2:]...)
		merged++
	}

	return merged, nil
}
