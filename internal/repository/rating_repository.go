package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const ratingColumns = `
	id, accommodation_id, member_id, reservation_id, score, comment, is_approved,
	moderated_by, moderation_date, moderation_note, created_at`

type RatingRepository struct {
	*base.Repository
}

func NewRatingRepository(db base.DBTX) *RatingRepository {
	return &RatingRepository{Repository: base.NewRepository(db)}
}

// Create создаёт новую оценку
func (r *RatingRepository) Create(ctx context.Context, rating *model.Rating) error {
	query := `
		INSERT INTO ratings (accommodation_id, member_id, reservation_id, score, comment, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		rating.AccommodationID,
		rating.MemberID,
		rating.ReservationID,
		rating.Score,
		rating.Comment,
		rating.IsApproved,
	).Scan(&rating.ID, &rating.CreatedAt)

	if err != nil {
		return fmt.Errorf("create rating: %w", err)
	}

	return nil
}

// GetByID получает оценку по ID
func (r *RatingRepository) GetByID(ctx context.Context, id int64) (*model.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE id = $1`

	rating, err := scanRating(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rating by id: %w", err)
	}

	return rating, nil
}

// ExistsForReservation проверяет оценено ли бронирование
func (r *RatingRepository) ExistsForReservation(ctx context.Context, reservationID int64) (bool, error) {
	exists, err := r.Exists(ctx, `SELECT EXISTS(SELECT 1 FROM ratings WHERE reservation_id = $1)`, reservationID)
	if err != nil {
		return false, fmt.Errorf("check rating exists: %w", err)
	}
	return exists, nil
}

// UpdateModeration сохраняет результат модерации
func (r *RatingRepository) UpdateModeration(ctx context.Context, rating *model.Rating) error {
	query := `
		UPDATE ratings
		SET is_approved = $1, moderated_by = $2, moderation_date = $3, moderation_note = $4
		WHERE id = $5
	`

	affected, err := r.ExecAffected(ctx, query,
		rating.IsApproved,
		rating.ModeratedBy,
		rating.ModerationDate,
		rating.ModerationNote,
		rating.ID,
	)
	if err != nil {
		return fmt.Errorf("update rating moderation: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("rating not found")
	}

	return nil
}

// ListPending получает оценки без модерации, старые первыми
func (r *RatingRepository) ListPending(ctx context.Context, limit, offset int) ([]*model.Rating, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE moderated_by IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get pending ratings: %w", err)
	}

	return scanRatings(rows)
}

// ListByAccommodation получает оценки жилья; nil - все оценки
func (r *RatingRepository) ListByAccommodation(ctx context.Context, accommodationID *int64) ([]*model.Rating, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE $1::bigint IS NULL OR accommodation_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.Query(ctx, query, accommodationID)
	if err != nil {
		return nil, fmt.Errorf("get ratings: %w", err)
	}

	return scanRatings(rows)
}

// Stats считает среднюю оценку и количество
func (r *RatingRepository) Stats(ctx context.Context, accommodationID int64) (*model.RatingStats, error) {
	query := `
		SELECT AVG(score)::float8, COUNT(*)
		FROM ratings
		WHERE accommodation_id = $1
	`

	var (
		avg   *float64
		stats model.RatingStats
	)
	if err := r.QueryRow(ctx, query, accommodationID).Scan(&avg, &stats.Count); err != nil {
		return nil, fmt.Errorf("get rating stats: %w", err)
	}

	if avg != nil {
		rounded := math.Round(*avg*10) / 10
		stats.Average = &rounded
	}

	return &stats, nil
}

func scanRating(row pgx.Row) (*model.Rating, error) {
	var rating model.Rating
	err := row.Scan(
		&rating.ID,
		&rating.AccommodationID,
		&rating.MemberID,
		&rating.ReservationID,
		&rating.Score,
		&rating.Comment,
		&rating.IsApproved,
		&rating.ModeratedBy,
		&rating.ModerationDate,
		&rating.ModerationNote,
		&rating.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func scanRatings(rows pgx.Rows) ([]*model.Rating, error) {
	defer rows.Close()

	var ratings []*model.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}

	return ratings, rows.Err()
}
