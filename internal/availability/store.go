package availability

import (
	"context"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
)

// SlotStore is the slot set of accommodations as seen by the core.
// Implementations must run every call inside the caller's transaction.
type SlotStore interface {
	// ListAvailable returns available slots ordered by start date, then id.
	ListAvailable(ctx context.Context, accommodationID int64) ([]*model.AvailabilitySlot, error)
	// FindCovering returns the first available slot covering [from, to] or nil.
	FindCovering(ctx context.Context, accommodationID int64, from, to time.Time) (*model.AvailabilitySlot, error)
	AnyAvailable(ctx context.Context, accommodationID int64) (bool, error)
	Create(ctx context.Context, slot *model.AvailabilitySlot) error
	Update(ctx context.Context, slot *model.AvailabilitySlot) error
	Delete(ctx context.Context, id int64) error
}

// FlagStore persists the aggregate availability flag of an accommodation.
type FlagStore interface {
	SetAvailability(ctx context.Context, accommodationID int64, available bool) error
}
