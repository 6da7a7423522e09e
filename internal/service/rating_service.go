package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository"
	"go.uber.org/zap"
)

const PendingRatingsPageSize = 10

type RatingService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewRatingService(store repository.Store, logger *zap.Logger) *RatingService {
	return &RatingService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

type CreateRatingInput struct {
	ReservationID int64  `json:"reservation_id"`
	Score         int    `json:"score"`
	Comment       string `json:"comment"`
}

// Create rates a completed reservation. Each reservation can be rated once.
func (s *RatingService) Create(ctx context.Context, caller Caller, in CreateRatingInput) (*model.Rating, error) {
	if in.Score < model.MinRatingScore || in.Score > model.MaxRatingScore {
		return nil, validationf("score must be between %d and %d", model.MinRatingScore, model.MaxRatingScore)
	}
	if in.ReservationID == 0 {
		return nil, validationf("reservation is required for rating")
	}

	var rating *model.Rating

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		reservation, err := repos.Reservations().GetByID(ctx, in.ReservationID)
		if err != nil {
			return fmt.Errorf("get reservation: %w", err)
		}
		if reservation == nil {
			return notFoundf("reservation %d not found", in.ReservationID)
		}

		member, err := repos.Members().GetMember(ctx, reservation.MemberID)
		if err != nil {
			return fmt.Errorf("get member: %w", err)
		}
		if member == nil || member.UniversityID != caller.UniversityID {
			return notFoundf("reservation %d not found", in.ReservationID)
		}

		if reservation.Status != model.ReservationStatusCompleted {
			return validationf("can only rate completed reservations")
		}

		rated, err := repos.Ratings().ExistsForReservation(ctx, reservation.ID)
		if err != nil {
			return fmt.Errorf("check existing rating: %w", err)
		}
		if rated {
			return validationf("this reservation has already been rated")
		}

		rating = &model.Rating{
			AccommodationID: reservation.AccommodationID,
			MemberID:        reservation.MemberID,
			ReservationID:   reservation.ID,
			Score:           in.Score,
			Comment:         in.Comment,
			IsApproved:      true,
		}
		if err := repos.Ratings().Create(ctx, rating); err != nil {
			return fmt.Errorf("create rating: %w", err)
		}

		return logAction(ctx, repos, &model.ActionLog{
			ActionType:      model.ActionCreateRating,
			UserType:        model.ActorMember,
			UserID:          int64Ptr(member.ID),
			AccommodationID: int64Ptr(reservation.AccommodationID),
			ReservationID:   int64Ptr(reservation.ID),
			RatingID:        int64Ptr(rating.ID),
			Details:         fmt.Sprintf("Rated reservation %d with score %d", reservation.ID, in.Score),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Rating created",
		zap.Int64("rating_id", rating.ID),
		zap.Int64("reservation_id", rating.ReservationID),
		zap.Int("score", rating.Score),
	)

	return rating, nil
}

type ModerateRatingInput struct {
	SpecialistID   int64  `json:"specialist_id"`
	IsApproved     *bool  `json:"is_approved"`
	ModerationNote string `json:"moderation_note"`
}

// Moderate records a specialist's verdict. Approval defaults to true.
func (s *RatingService) Moderate(ctx context.Context, caller Caller, ratingID int64, in ModerateRatingInput) (*model.Rating, error) {
	if in.SpecialistID == 0 {
		return nil, validationf("specialist ID is required")
	}

	approved := true
	if in.IsApproved != nil {
		approved = *in.IsApproved
	}

	var rating *model.Rating

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		rating, err = repos.Ratings().GetByID(ctx, ratingID)
		if err != nil {
			return fmt.Errorf("get rating: %w", err)
		}
		if rating == nil {
			return notFoundf("rating not found")
		}

		specialist, err := repos.Members().GetSpecialist(ctx, in.SpecialistID)
		if err != nil {
			return fmt.Errorf("get specialist: %w", err)
		}
		if specialist == nil || specialist.UniversityID != caller.UniversityID {
			return notFoundf("specialist not found")
		}

		moderatedAt := s.now()
		rating.IsApproved = approved
		rating.ModeratedBy = int64Ptr(specialist.ID)
		rating.ModerationDate = &moderatedAt
		rating.ModerationNote = in.ModerationNote

		if err := repos.Ratings().UpdateModeration(ctx, rating); err != nil {
			return fmt.Errorf("update rating moderation: %w", err)
		}

		return logAction(ctx, repos, &model.ActionLog{
			ActionType:      model.ActionModerateRating,
			UserType:        model.ActorSpecialist,
			UserID:          int64Ptr(specialist.ID),
			AccommodationID: int64Ptr(rating.AccommodationID),
			RatingID:        int64Ptr(rating.ID),
			Details:         fmt.Sprintf("Rating %s: %s", verdict(approved), in.ModerationNote),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Rating moderated",
		zap.Int64("rating_id", rating.ID),
		zap.Int64("specialist_id", in.SpecialistID),
		zap.Bool("approved", approved),
	)

	return rating, nil
}

// Pending returns one page of unmoderated ratings, oldest first. Pages start at 1.
func (s *RatingService) Pending(ctx context.Context, page int) ([]*model.Rating, error) {
	if page < 1 {
		page = 1
	}

	ratings, err := s.store.Ratings().ListPending(ctx, PendingRatingsPageSize, (page-1)*PendingRatingsPageSize)
	if err != nil {
		return nil, fmt.Errorf("get pending ratings: %w", err)
	}
	return ratings, nil
}

// ListByAccommodation returns ratings of one accommodation, or all when id is nil.
func (s *RatingService) ListByAccommodation(ctx context.Context, accommodationID *int64) ([]*model.Rating, error) {
	ratings, err := s.store.Ratings().ListByAccommodation(ctx, accommodationID)
	if err != nil {
		return nil, fmt.Errorf("get ratings: %w", err)
	}
	return ratings, nil
}

func (s *RatingService) Stats(ctx context.Context, accommodationID int64) (*model.RatingStats, error) {
	stats, err := s.store.Ratings().Stats(ctx, accommodationID)
	if err != nil {
		return nil, fmt.Errorf("get rating stats: %w", err)
	}
	return stats, nil
}

func verdict(approved bool) string {
	if approved {
		return "approved"
	}
	return "rejected"
}
