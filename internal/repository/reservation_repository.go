package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const reservationColumns = `
	r.id, r.accommodation_id, r.member_id, r.reserved_from, r.reserved_to,
	r.contact_name, r.contact_phone, r.status, r.created_at, r.updated_at`

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(db base.DBTX) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(db)}
}

// Create создаёт новое бронирование
func (r *ReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	query := `
		INSERT INTO reservations (accommodation_id, member_id, reserved_from, reserved_to, contact_name, contact_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		reservation.AccommodationID,
		reservation.MemberID,
		reservation.ReservedFrom,
		reservation.ReservedTo,
		reservation.ContactName,
		reservation.ContactPhone,
		reservation.Status,
	).Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = $1`

	var reservation model.Reservation
	err := r.QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.AccommodationID,
		&reservation.MemberID,
		&reservation.ReservedFrom,
		&reservation.ReservedTo,
		&reservation.ContactName,
		&reservation.ContactPhone,
		&reservation.Status,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}

	return &reservation, nil
}

// UpdateStatus обновляет статус бронирования
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status model.ReservationStatus) error {
	query := `
		UPDATE reservations
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("reservation not found")
	}

	return nil
}

// HasActiveOverlap проверяет пересечение с активными бронированиями
func (r *ReservationRepository) HasActiveOverlap(ctx context.Context, accommodationID int64, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM reservations
			WHERE accommodation_id = $1
			  AND status IN ('PENDING', 'CONFIRMED')
			  AND reserved_from < $3
			  AND reserved_to > $2
		)
	`

	exists, err := r.Exists(ctx, query, accommodationID, from, to)
	if err != nil {
		return false, fmt.Errorf("check overlapping reservations: %w", err)
	}

	return exists, nil
}

// HasActive проверяет есть ли у жилья активные бронирования
func (r *ReservationRepository) HasActive(ctx context.Context, accommodationID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM reservations
			WHERE accommodation_id = $1 AND status IN ('PENDING', 'CONFIRMED')
		)
	`

	exists, err := r.Exists(ctx, query, accommodationID)
	if err != nil {
		return false, fmt.Errorf("check active reservations: %w", err)
	}

	return exists, nil
}

// ListByMember получает все бронирования участника
func (r *ReservationRepository) ListByMember(ctx context.Context, memberID int64) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.member_id = $1
		ORDER BY r.created_at DESC, r.id DESC
	`

	rows, err := r.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("get reservations by member: %w", err)
	}

	return scanReservations(rows)
}

// ListForUniversity получает бронирования, видимые университету
func (r *ReservationRepository) ListForUniversity(ctx context.Context, universityID int64) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		JOIN members m ON m.id = r.member_id
		WHERE m.university_id = $1
		  AND EXISTS (
			SELECT 1 FROM accommodation_universities au
			WHERE au.accommodation_id = r.accommodation_id AND au.university_id = $1
		  )
		ORDER BY r.created_at DESC, r.id DESC
	`

	rows, err := r.Query(ctx, query, universityID)
	if err != nil {
		return nil, fmt.Errorf("get reservations by university: %w", err)
	}

	return scanReservations(rows)
}

// ListConfirmedEndingBefore получает подтверждённые бронирования, закончившиеся до day
func (r *ReservationRepository) ListConfirmedEndingBefore(ctx context.Context, day time.Time) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.status = 'CONFIRMED' AND r.reserved_to < $1
		ORDER BY r.reserved_to, r.id
	`

	rows, err := r.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("get elapsed reservations: %w", err)
	}

	return scanReservations(rows)
}

func scanReservations(rows pgx.Rows) ([]*model.Reservation, error) {
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		var reservation model.Reservation
		err := rows.Scan(
			&reservation.ID,
			&reservation.AccommodationID,
			&reservation.MemberID,
			&reservation.ReservedFrom,
			&reservation.ReservedTo,
			&reservation.ContactName,
			&reservation.ContactPhone,
			&reservation.Status,
			&reservation.CreatedAt,
			&reservation.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, &reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}

	return reservations, nil
}
