package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository/base"
)

type ActionLogRepository struct {
	*base.Repository
}

func NewActionLogRepository(db base.DBTX) *ActionLogRepository {
	return &ActionLogRepository{Repository: base.NewRepository(db)}
}

// Create записывает действие в журнал
func (r *ActionLogRepository) Create(ctx context.Context, entry *model.ActionLog) error {
	query := `
		INSERT INTO action_logs (action_type, user_type, user_id, accommodation_id, reservation_id, rating_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		entry.ActionType,
		entry.UserType,
		entry.UserID,
		entry.AccommodationID,
		entry.ReservationID,
		entry.RatingID,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("create action log: %w", err)
	}

	return nil
}

// List получает записи журнала, новые первыми
func (r *ActionLogRepository) List(ctx context.Context, filter ActionLogFilter, limit, offset int) ([]*model.ActionLog, error) {
	var (
		conditions []string
		args       []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.ActionType != "" {
		add(`action_type = $%d`, filter.ActionType)
	}
	if filter.UserType != "" {
		add(`user_type = $%d`, filter.UserType)
	}
	if filter.UserID != nil {
		add(`user_id = $%d`, *filter.UserID)
	}
	if filter.AccommodationID != nil {
		add(`accommodation_id = $%d`, *filter.AccommodationID)
	}
	if filter.CreatedFrom != nil {
		add(`created_at >= $%d`, *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		add(`created_at <= $%d`, *filter.CreatedTo)
	}

	query := `
		SELECT id, action_type, user_type, user_id, accommodation_id, reservation_id, rating_id, details, created_at
		FROM action_logs`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list action logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.ActionLog
	for rows.Next() {
		var entry model.ActionLog
		err := rows.Scan(
			&entry.ID,
			&entry.ActionType,
			&entry.UserType,
			&entry.UserID,
			&entry.AccommodationID,
			&entry.ReservationID,
			&entry.RatingID,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan action log: %w", err)
		}
		logs = append(logs, &entry)
	}

	return logs, rows.Err()
}
