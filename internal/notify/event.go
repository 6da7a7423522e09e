// Package notify tells university specialists about reservation changes.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/unihaven/internal/availability"
	"github.com/Freeeeeet/unihaven/internal/model"
)

type EventKind string

const (
	EventCreated       EventKind = "created"
	EventCancelled     EventKind = "cancelled"
	EventStatusChanged EventKind = "status_changed"
)

// Event describes a committed reservation change. Reservation must carry its
// Accommodation and Member.
type Event struct {
	Kind        EventKind
	Reservation *model.Reservation
	OldStatus   model.ReservationStatus
}

// Notifier delivers one event. Implementations may block; the Dispatcher bounds them.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// SpecialistDirectory finds who has to hear about a university's reservations.
type SpecialistDirectory interface {
	ListSpecialistsByUniversity(ctx context.Context, universityID int64) ([]*model.Specialist, error)
}

// UniversityID is the university whose specialists receive the event.
func (e Event) UniversityID() int64 {
	if e.Reservation == nil || e.Reservation.Member == nil {
		return 0
	}
	return e.Reservation.Member.UniversityID
}

func (e Event) Subject() string {
	switch e.Kind {
	case EventCreated:
		return "New Reservation Created"
	case EventCancelled:
		return "Reservation Cancelled"
	case EventStatusChanged:
		return fmt.Sprintf("Reservation Status Changed: %s → %s", e.OldStatus, e.Reservation.Status.Display())
	default:
		return "Reservation Update"
	}
}

func (e Event) Body() string {
	r := e.Reservation
	var b strings.Builder

	switch e.Kind {
	case EventCreated:
		b.WriteString("A new reservation has been created.\n\n")
	case EventCancelled:
		b.WriteString("A reservation has been cancelled.\n\n")
	case EventStatusChanged:
		fmt.Fprintf(&b, "A reservation status has changed from %s to %s.\n\n", e.OldStatus, r.Status.Display())
	}

	if acc := r.Accommodation; acc != nil {
		fmt.Fprintf(&b, "Accommodation: %s\n", acc.Name)
		fmt.Fprintf(&b, "Type: %s\n", acc.Type.Display())
		fmt.Fprintf(&b, "Building: %s\n", acc.BuildingName)
		fmt.Fprintf(&b, "Address: %s\n\n", acc.Address)
	}

	if m := r.Member; m != nil {
		fmt.Fprintf(&b, "Reserved by: %s (%s)\n", m.Name, m.Email)
	}
	fmt.Fprintf(&b, "Period: %s to %s\n",
		availability.FormatDate(r.ReservedFrom), availability.FormatDate(r.ReservedTo))
	if e.Kind != EventStatusChanged {
		fmt.Fprintf(&b, "Status: %s\n", r.Status.Display())
	}
	fmt.Fprintf(&b, "\nReservation ID: %d\n", r.ID)

	return b.String()
}
