package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/unihaven/internal/availability"
	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/notify"
	"github.com/Freeeeeet/unihaven/internal/repository"
	"go.uber.org/zap"
)

// ReservationPolicy holds deployment-specific business rules.
type ReservationPolicy struct {
	// AllowConfirmedCancellation lets CONFIRMED reservations be cancelled too.
	AllowConfirmedCancellation bool
}

type ReservationService struct {
	store    repository.Store
	notifier Notifier
	policy   ReservationPolicy
	logger   *zap.Logger
	now      func() time.Time
}

func NewReservationService(
	store repository.Store,
	notifier Notifier,
	policy ReservationPolicy,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		store:    store,
		notifier: notifier,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock подменяет источник текущего времени (для тестов)
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now = now
	return s
}

type CreateReservationInput struct {
	AccommodationID int64  `json:"accommodation_id" validate:"required"`
	MemberID        int64  `json:"member_id" validate:"required"`
	ReservedFrom    string `json:"reserved_from" validate:"required"`
	ReservedTo      string `json:"reserved_to" validate:"required"`
	ContactName     string `json:"contact_name" validate:"required,max=100"`
	ContactPhone    string `json:"contact_phone" validate:"required,max=20"`
}

// Create reserves [reserved_from, reserved_to] out of a covering available slot.
func (s *ReservationService) Create(ctx context.Context, caller Caller, in CreateReservationInput) (*model.Reservation, error) {
	from, to, err := parseDateRange(in.ReservedFrom, in.ReservedTo, "reserved_from", "reserved_to")
	if err != nil {
		return nil, err
	}

	if from.Before(availability.Day(s.now())) {
		return nil, validationf("reservation start date cannot be in the past")
	}

	var (
		reservation *model.Reservation
		acc         *model.Accommodation
		member      *model.Member
	)

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error

		// Блокировка жилья сериализует все изменения его слотов
		acc, err = visibleAccommodation(ctx, repos, caller, in.AccommodationID, true)
		if err != nil {
			return err
		}

		member, err = repos.Members().GetMember(ctx, in.MemberID)
		if err != nil {
			return fmt.Errorf("get member: %w", err)
		}
		if member == nil {
			return notFoundf("member %d not found", in.MemberID)
		}

		if !acc.ServesUniversity(member.UniversityID) {
			return validationf("you can only reserve accommodations associated with your university")
		}

		if !acc.MeetsMinimumStay(from, to) {
			return validationf("reservation must be at least %d days long", acc.MinReservationDays)
		}

		overlap, err := repos.Reservations().HasActiveOverlap(ctx, acc.ID, from, to)
		if err != nil {
			return fmt.Errorf("check overlapping reservations: %w", err)
		}
		if overlap {
			return conflictf("the accommodation is already reserved for the selected dates")
		}

		slot, err := repos.Slots().FindCovering(ctx, acc.ID, from, to)
		if err != nil {
			return fmt.Errorf("find covering slot: %w", err)
		}
		if slot == nil {
			return conflictf("no available slot found for these dates")
		}

		if _, _, err := availability.Consume(ctx, repos.Slots(), slot, from, to); err != nil {
			return fmt.Errorf("consume slot: %w", err)
		}

		reservation = &model.Reservation{
			AccommodationID: acc.ID,
			MemberID:        member.ID,
			ReservedFrom:    from,
			ReservedTo:      to,
			ContactName:     in.ContactName,
			ContactPhone:    in.ContactPhone,
			Status:          model.ReservationStatusPending,
		}
		if err := repos.Reservations().Create(ctx, reservation); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}

		if _, err := availability.UpdateAvailability(ctx, repos.Slots(), repos.Accommodations(), acc); err != nil {
			return err
		}

		return logAction(ctx, repos, &model.ActionLog{
			ActionType:      model.ActionCreateReservation,
			UserType:        model.ActorMember,
			UserID:          int64Ptr(member.ID),
			AccommodationID: int64Ptr(acc.ID),
			ReservationID:   int64Ptr(reservation.ID),
			Details:         fmt.Sprintf("Created reservation for '%s'", acc.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reservation created",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("accommodation_id", acc.ID),
		zap.Int64("member_id", member.ID),
		zap.String("from", availability.FormatDate(from)),
		zap.String("to", availability.FormatDate(to)),
		zap.Bool("accommodation_available", acc.IsAvailable),
	)

	reservation.Accommodation = acc
	reservation.Member = member
	s.dispatch(notify.Event{Kind: notify.EventCreated, Reservation: reservation})

	return reservation, nil
}

// Cancel cancels a reservation and hands its dates back to the accommodation.
func (s *ReservationService) Cancel(ctx context.Context, caller Caller, id int64) (*model.Reservation, error) {
	return s.cancel(ctx, caller, id, model.ActionCancelReservation)
}

func (s *ReservationService) cancel(ctx context.Context, caller Caller, id int64, action model.ActionType) (*model.Reservation, error) {
	var (
		reservation *model.Reservation
		oldStatus   model.ReservationStatus
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		reservation, err = s.lockReservation(ctx, repos, caller, id)
		if err != nil {
			return err
		}

		if reservation.IsCancelled() {
			return statef("this reservation has already been cancelled")
		}
		if !s.cancellable(reservation) {
			return statef("this reservation cannot be cancelled")
		}

		oldStatus = reservation.Status
		if err := repos.Reservations().UpdateStatus(ctx, reservation.ID, model.ReservationStatusCancelled); err != nil {
			return fmt.Errorf("update reservation status: %w", err)
		}
		reservation.Status = model.ReservationStatusCancelled

		if _, err := availability.Release(ctx, repos.Slots(), reservation.AccommodationID, reservation.ReservedFrom, reservation.ReservedTo); err != nil {
			return fmt.Errorf("release slot: %w", err)
		}
		if _, err := availability.MergeAdjacent(ctx, repos.Slots(), reservation.AccommodationID); err != nil {
			return fmt.Errorf("merge slots: %w", err)
		}
		if _, err := availability.UpdateAvailability(ctx, repos.Slots(), repos.Accommodations(), reservation.Accommodation); err != nil {
			return err
		}

		details := fmt.Sprintf("Reservation cancelled; status changed from %s to CANCELLED", oldStatus)
		if action == model.ActionUpdateReservationStatus {
			details = fmt.Sprintf("Reservation status updated from %s to CANCELLED", oldStatus)
		}
		return logAction(ctx, repos, &model.ActionLog{
			ActionType:      action,
			UserType:        model.ActorMember,
			UserID:          int64Ptr(reservation.MemberID),
			AccommodationID: int64Ptr(reservation.AccommodationID),
			ReservationID:   int64Ptr(reservation.ID),
			Details:         details,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reservation cancelled",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("accommodation_id", reservation.AccommodationID),
		zap.String("old_status", string(oldStatus)),
	)

	s.dispatch(notify.Event{Kind: notify.EventCancelled, Reservation: reservation, OldStatus: oldStatus})

	return reservation, nil
}

// UpdateStatus moves a reservation along the state machine. The boolean result is
// false when the reservation already had the requested status.
func (s *ReservationService) UpdateStatus(ctx context.Context, caller Caller, id int64, status string) (*model.Reservation, bool, error) {
	next := model.ReservationStatus(status)
	if !next.Valid() {
		return nil, false, validationf("invalid status value")
	}

	current, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, false, err
	}
	if current.Status == next {
		return current, false, nil
	}

	if next == model.ReservationStatusCancelled {
		reservation, err := s.cancel(ctx, caller, id, model.ActionUpdateReservationStatus)
		if err != nil {
			return nil, false, err
		}
		return reservation, true, nil
	}

	var (
		reservation *model.Reservation
		oldStatus   model.ReservationStatus
	)

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		reservation, err = s.lockReservation(ctx, repos, caller, id)
		if err != nil {
			return err
		}

		oldStatus = reservation.Status
		if !oldStatus.CanTransitionTo(next) {
			return statef("cannot change reservation status from %s to %s", oldStatus, next)
		}

		if err := repos.Reservations().UpdateStatus(ctx, reservation.ID, next); err != nil {
			return fmt.Errorf("update reservation status: %w", err)
		}
		reservation.Status = next

		return logAction(ctx, repos, &model.ActionLog{
			ActionType:      model.ActionUpdateReservationStatus,
			UserType:        model.ActorMember,
			UserID:          int64Ptr(reservation.MemberID),
			AccommodationID: int64Ptr(reservation.AccommodationID),
			ReservationID:   int64Ptr(reservation.ID),
			Details:         fmt.Sprintf("Reservation status updated from %s to %s", oldStatus, next),
		})
	})
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("Reservation status updated",
		zap.Int64("reservation_id", reservation.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(next)),
	)

	s.dispatch(notify.Event{Kind: notify.EventStatusChanged, Reservation: reservation, OldStatus: oldStatus})

	return reservation, true, nil
}

// CompleteElapsed marks CONFIRMED reservations that ended before today as COMPLETED.
// Completion changes the status only; slots are left as they are.
func (s *ReservationService) CompleteElapsed(ctx context.Context, today time.Time) (int, error) {
	candidates, err := s.store.Reservations().ListConfirmedEndingBefore(ctx, availability.Day(today))
	if err != nil {
		return 0, fmt.Errorf("get elapsed reservations: %w", err)
	}

	completed := 0
	for _, candidate := range candidates {
		var reservation *model.Reservation

		err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			if _, err := repos.Accommodations().LockByID(ctx, candidate.AccommodationID); err != nil {
				return fmt.Errorf("lock accommodation: %w", err)
			}

			current, err := repos.Reservations().GetByID(ctx, candidate.ID)
			if err != nil {
				return fmt.Errorf("get reservation: %w", err)
			}
			// Статус мог измениться после выборки кандидатов
			if current == nil || current.Status != model.ReservationStatusConfirmed {
				return nil
			}

			if err := repos.Reservations().UpdateStatus(ctx, current.ID, model.ReservationStatusCompleted); err != nil {
				return fmt.Errorf("update reservation status: %w", err)
			}
			current.Status = model.ReservationStatusCompleted
			reservation = current

			if current.Accommodation, err = repos.Accommodations().GetByID(ctx, current.AccommodationID); err != nil {
				return fmt.Errorf("get accommodation: %w", err)
			}
			if current.Member, err = repos.Members().GetMember(ctx, current.MemberID); err != nil {
				return fmt.Errorf("get member: %w", err)
			}

			return logAction(ctx, repos, &model.ActionLog{
				ActionType:      model.ActionCompleteReservation,
				UserType:        model.ActorSystem,
				AccommodationID: int64Ptr(current.AccommodationID),
				ReservationID:   int64Ptr(current.ID),
				Details:         "Reservation completed after the stay ended",
			})
		})
		if err != nil {
			return completed, fmt.Errorf("complete reservation %d: %w", candidate.ID, err)
		}
		if reservation == nil {
			continue
		}

		completed++
		s.dispatch(notify.Event{
			Kind:        notify.EventStatusChanged,
			Reservation: reservation,
			OldStatus:   model.ReservationStatusConfirmed,
		})
	}

	if completed > 0 {
		s.logger.Info("Elapsed reservations completed", zap.Int("count", completed))
	}

	return completed, nil
}

// Get returns a reservation visible to the caller's university.
func (s *ReservationService) Get(ctx context.Context, caller Caller, id int64) (*model.Reservation, error) {
	reservation, err := s.store.Reservations().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if reservation == nil {
		return nil, notFoundf("reservation %d not found", id)
	}

	if err := s.attach(ctx, s.store, caller, reservation); err != nil {
		return nil, err
	}

	return reservation, nil
}

// ListForUniversity returns reservations made by the caller's members for
// accommodations linked to the caller.
func (s *ReservationService) ListForUniversity(ctx context.Context, caller Caller) ([]*model.Reservation, error) {
	reservations, err := s.store.Reservations().ListForUniversity(ctx, caller.UniversityID)
	if err != nil {
		return nil, fmt.Errorf("get reservations: %w", err)
	}
	return reservations, nil
}

// ListByMember returns all reservations of a member of the caller's university.
func (s *ReservationService) ListByMember(ctx context.Context, caller Caller, memberID int64) ([]*model.Reservation, error) {
	member, err := s.store.Members().GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	if member == nil || member.UniversityID != caller.UniversityID {
		return nil, notFoundf("member %d not found", memberID)
	}

	reservations, err := s.store.Reservations().ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("get member reservations: %w", err)
	}
	return reservations, nil
}

// lockReservation locks the reservation's accommodation, then re-reads the
// reservation so the status checks see committed state.
func (s *ReservationService) lockReservation(ctx context.Context, repos repository.Repositories, caller Caller, id int64) (*model.Reservation, error) {
	reservation, err := repos.Reservations().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if reservation == nil {
		return nil, notFoundf("reservation %d not found", id)
	}

	if _, err := repos.Accommodations().LockByID(ctx, reservation.AccommodationID); err != nil {
		return nil, fmt.Errorf("lock accommodation: %w", err)
	}

	reservation, err = repos.Reservations().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if reservation == nil {
		return nil, notFoundf("reservation %d not found", id)
	}

	if err := s.attach(ctx, repos, caller, reservation); err != nil {
		return nil, err
	}

	return reservation, nil
}

// attach fills the accommodation and member of a reservation and hides
// reservations outside the caller's university.
func (s *ReservationService) attach(ctx context.Context, repos repository.Repositories, caller Caller, reservation *model.Reservation) error {
	acc, err := repos.Accommodations().GetByID(ctx, reservation.AccommodationID)
	if err != nil {
		return fmt.Errorf("get accommodation: %w", err)
	}
	member, err := repos.Members().GetMember(ctx, reservation.MemberID)
	if err != nil {
		return fmt.Errorf("get member: %w", err)
	}

	if acc == nil || member == nil ||
		member.UniversityID != caller.UniversityID || !acc.ServesUniversity(caller.UniversityID) {
		return notFoundf("reservation %d not found", reservation.ID)
	}

	reservation.Accommodation = acc
	reservation.Member = member
	return nil
}

func (s *ReservationService) cancellable(reservation *model.Reservation) bool {
	if reservation.CanBeCancelled() {
		return true
	}
	return s.policy.AllowConfirmedCancellation && reservation.Status == model.ReservationStatusConfirmed
}

func (s *ReservationService) dispatch(event notify.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Dispatch(event)
}
