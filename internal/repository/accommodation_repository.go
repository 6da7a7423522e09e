package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const accommodationColumns = `
	a.id, a.name, a.building_name, a.description, a.type, a.room_number, a.flat_number,
	a.floor_number, a.num_bedrooms, a.num_beds, a.address, a.geo_address, a.latitude,
	a.longitude, a.available_from, a.available_to, a.monthly_rent, a.min_reservation_days,
	a.owner_email, a.is_available, a.created_at, a.updated_at,
	COALESCE((
		SELECT array_agg(au.university_id ORDER BY au.university_id)
		FROM accommodation_universities au
		WHERE au.accommodation_id = a.id
	), '{}')`

type AccommodationRepository struct {
	*base.Repository
}

func NewAccommodationRepository(db base.DBTX) *AccommodationRepository {
	return &AccommodationRepository{Repository: base.NewRepository(db)}
}

// Create создаёт новое жильё (без привязки к университетам)
func (r *AccommodationRepository) Create(ctx context.Context, acc *model.Accommodation) error {
	query := `
		INSERT INTO accommodations (
			name, building_name, description, type, room_number, flat_number, floor_number,
			num_bedrooms, num_beds, address, geo_address, latitude, longitude,
			available_from, available_to, monthly_rent, min_reservation_days, owner_email, is_available
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		acc.Name,
		acc.BuildingName,
		acc.Description,
		acc.Type,
		acc.RoomNumber,
		acc.FlatNumber,
		acc.FloorNumber,
		acc.NumBedrooms,
		acc.NumBeds,
		acc.Address,
		acc.GeoAddress,
		acc.Latitude,
		acc.Longitude,
		acc.AvailableFrom,
		acc.AvailableTo,
		acc.MonthlyRent,
		acc.MinReservationDays,
		acc.OwnerEmail,
		acc.IsAvailable,
	).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create accommodation: %w", err)
	}

	return nil
}

// GetByID получает жильё по ID
func (r *AccommodationRepository) GetByID(ctx context.Context, id int64) (*model.Accommodation, error) {
	query := `SELECT ` + accommodationColumns + ` FROM accommodations a WHERE a.id = $1`

	acc, err := scanAccommodation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get accommodation by id: %w", err)
	}

	return acc, nil
}

// LockByID получает жильё и блокирует строку до конца транзакции.
// Все изменения набора слотов одного жилья проходят через эту блокировку.
func (r *AccommodationRepository) LockByID(ctx context.Context, id int64) (*model.Accommodation, error) {
	query := `SELECT ` + accommodationColumns + ` FROM accommodations a WHERE a.id = $1 FOR UPDATE OF a`

	acc, err := scanAccommodation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock accommodation: %w", err)
	}

	return acc, nil
}

// SetUniversities заменяет список университетов жилья
func (r *AccommodationRepository) SetUniversities(ctx context.Context, accommodationID int64, universityIDs []int64) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM accommodation_universities WHERE accommodation_id = $1`, accommodationID); err != nil {
		return fmt.Errorf("clear accommodation universities: %w", err)
	}

	query := `
		INSERT INTO accommodation_universities (accommodation_id, university_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`

	if _, err := r.ExecAffected(ctx, query, accommodationID, universityIDs); err != nil {
		return fmt.Errorf("set accommodation universities: %w", err)
	}

	return nil
}

// SetAvailability обновляет агрегированный флаг доступности
func (r *AccommodationRepository) SetAvailability(ctx context.Context, accommodationID int64, available bool) error {
	query := `
		UPDATE accommodations
		SET is_available = $1, updated_at = NOW()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, available, accommodationID)
	if err != nil {
		return fmt.Errorf("set accommodation availability: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("accommodation not found")
	}

	return nil
}

// Delete удаляет жильё; слоты удаляются каскадом
func (r *AccommodationRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM accommodations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete accommodation: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("accommodation not found")
	}

	return nil
}

// Search получает жильё по фильтру
func (r *AccommodationRepository) Search(ctx context.Context, filter AccommodationFilter) ([]*model.Accommodation, error) {
	var (
		conditions []string
		args       []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.UniversityID != 0 {
		add(`EXISTS (SELECT 1 FROM accommodation_universities au WHERE au.accommodation_id = a.id AND au.university_id = $%d)`, filter.UniversityID)
	}
	if filter.OnlyAvailable {
		conditions = append(conditions, `a.is_available`)
	}
	if filter.Type != "" {
		add(`a.type = $%d`, filter.Type)
	}
	if filter.MinBeds > 0 {
		add(`a.num_beds >= $%d`, filter.MinBeds)
	}
	if filter.MinBedrooms > 0 {
		add(`a.num_bedrooms >= $%d`, filter.MinBedrooms)
	}
	if filter.MinRent != nil {
		add(`a.monthly_rent >= $%d`, *filter.MinRent)
	}
	if filter.MaxRent != nil {
		add(`a.monthly_rent <= $%d`, *filter.MaxRent)
	}

	query := `SELECT ` + accommodationColumns + ` FROM accommodations a`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}

	switch filter.OrderBy {
	case "price_asc":
		query += ` ORDER BY a.monthly_rent ASC, a.id`
	case "price_desc":
		query += ` ORDER BY a.monthly_rent DESC, a.id`
	default:
		query += ` ORDER BY a.id`
	}

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search accommodations: %w", err)
	}
	defer rows.Close()

	var result []*model.Accommodation
	for rows.Next() {
		acc, err := scanAccommodation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan accommodation: %w", err)
		}
		result = append(result, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accommodations: %w", err)
	}

	return result, nil
}

// UpsertOwner создаёт владельца или обновляет его контакты
func (r *AccommodationRepository) UpsertOwner(ctx context.Context, owner *model.Owner) error {
	query := `
		INSERT INTO owners (email, name, phone, address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, phone = EXCLUDED.phone, address = EXCLUDED.address
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query, owner.Email, owner.Name, owner.Phone, owner.Address).Scan(&owner.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert owner: %w", err)
	}

	return nil
}

func scanAccommodation(row pgx.Row) (*model.Accommodation, error) {
	var acc model.Accommodation
	err := row.Scan(
		&acc.ID,
		&acc.Name,
		&acc.BuildingName,
		&acc.Description,
		&acc.Type,
		&acc.RoomNumber,
		&acc.FlatNumber,
		&acc.FloorNumber,
		&acc.NumBedrooms,
		&acc.NumBeds,
		&acc.Address,
		&acc.GeoAddress,
		&acc.Latitude,
		&acc.Longitude,
		&acc.AvailableFrom,
		&acc.AvailableTo,
		&acc.MonthlyRent,
		&acc.MinReservationDays,
		&acc.OwnerEmail,
		&acc.IsAvailable,
		&acc.CreatedAt,
		&acc.UpdatedAt,
		&acc.UniversityIDs,
	)
	if err != nil {
		return nil, err
	}

	return &acc, nil
}
