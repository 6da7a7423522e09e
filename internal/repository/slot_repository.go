package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const slotColumns = `id, accommodation_id, start_date, end_date, is_available, created_at, updated_at`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(db base.DBTX) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(db)}
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (accommodation_id, start_date, end_date, is_available)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.AccommodationID,
		slot.StartDate,
		slot.EndDate,
		slot.IsAvailable,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// Update сохраняет границы и флаг слота
func (r *SlotRepository) Update(ctx context.Context, slot *model.AvailabilitySlot) error {
	query := `
		UPDATE availability_slots
		SET start_date = $1, end_date = $2, is_available = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, slot.StartDate, slot.EndDate, slot.IsAvailable, slot.ID).Scan(&slot.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("slot not found")
		}
		return fmt.Errorf("update slot: %w", err)
	}

	return nil
}

// Delete удаляет слот
func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM availability_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

// ListAvailable получает доступные слоты жилья по возрастанию даты начала
func (r *SlotRepository) ListAvailable(ctx context.Context, accommodationID int64) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE accommodation_id = $1 AND is_available
		ORDER BY start_date, id
	`

	rows, err := r.Query(ctx, query, accommodationID)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}

	return scanSlots(rows)
}

// ListByAccommodation получает все слоты жилья, включая недоступные
func (r *SlotRepository) ListByAccommodation(ctx context.Context, accommodationID int64) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE accommodation_id = $1
		ORDER BY start_date, id
	`

	rows, err := r.Query(ctx, query, accommodationID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	return scanSlots(rows)
}

// FindCovering ищет доступный слот, полностью покрывающий [from, to]
func (r *SlotRepository) FindCovering(ctx context.Context, accommodationID int64, from, to time.Time) (*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE accommodation_id = $1
		  AND is_available
		  AND start_date <= $2
		  AND end_date >= $3
		ORDER BY start_date, id
		LIMIT 1
	`

	var slot model.AvailabilitySlot
	err := r.QueryRow(ctx, query, accommodationID, from, to).Scan(
		&slot.ID,
		&slot.AccommodationID,
		&slot.StartDate,
		&slot.EndDate,
		&slot.IsAvailable,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find covering slot: %w", err)
	}

	return &slot, nil
}

// AnyAvailable проверяет есть ли у жилья хотя бы один доступный слот
func (r *SlotRepository) AnyAvailable(ctx context.Context, accommodationID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM availability_slots
			WHERE accommodation_id = $1 AND is_available
		)
	`

	exists, err := r.Exists(ctx, query, accommodationID)
	if err != nil {
		return false, fmt.Errorf("check available slots: %w", err)
	}

	return exists, nil
}

// MarkAllUnavailable снимает доступность со всех слотов жилья
func (r *SlotRepository) MarkAllUnavailable(ctx context.Context, accommodationID int64) (int64, error) {
	query := `
		UPDATE availability_slots
		SET is_available = FALSE, updated_at = NOW()
		WHERE accommodation_id = $1 AND is_available
	`

	affected, err := r.ExecAffected(ctx, query, accommodationID)
	if err != nil {
		return 0, fmt.Errorf("mark slots unavailable: %w", err)
	}

	return affected, nil
}

func scanSlots(rows pgx.Rows) ([]*model.AvailabilitySlot, error) {
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		var slot model.AvailabilitySlot
		err := rows.Scan(
			&slot.ID,
			&slot.AccommodationID,
			&slot.StartDate,
			&slot.EndDate,
			&slot.IsAvailable,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}
